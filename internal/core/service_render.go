package core

import (
	"context"
	"io"
	"strings"

	"laudocore/internal/geo"
	"laudocore/internal/outline"
	"laudocore/internal/render"
	"laudocore/pkg/domain"
)

// RenderedDocument is the byte stream of one rendered report.
type RenderedDocument struct {
	Filename    string
	ContentType string
	Bytes       []byte
}

// RenderPDF assembles the outline and renders the report document. The
// operation is read-only and admits closed reports; only authorship is
// required.
func (s *Service) RenderPDF(ctx context.Context, principal domain.Principal, reportID string) (RenderedDocument, error) {
	var doc RenderedDocument
	err := s.instrument(ctx, "render_pdf", func(ctx context.Context) error {
		r, err := s.ownedReport(principal, reportID)
		if err != nil {
			return err
		}

		blocks := s.store.ListTextBlocks(reportID)
		objects := s.store.ListExamObjects(reportID)

		bodyAt := func(p domain.Placement) string {
			for _, b := range blocks {
				if b.Placement == p {
					return strings.TrimSpace(b.Body)
				}
			}
			return ""
		}
		intros := make(map[domain.GroupKey]string)
		for _, b := range blocks {
			if b.Placement == domain.PlacementObjectGroupIntro {
				intros[b.GroupKey] = strings.TrimSpace(b.Body)
			}
		}
		imagesByOwner := make(map[string][]domain.ObjectImage, len(objects))
		for _, obj := range objects {
			h := obj.Header()
			imagesByOwner[h.ID] = s.store.ListObjectImages(obj.Kind(), h.ID)
		}

		var objective string
		if r.Objective != "" {
			objective = r.Objective.Display()
		}
		enum := outline.NewEnumerator()
		tree := outline.Assemble(enum, outline.Input{
			Prepend: []outline.PrependBlock{
				{Label: "Objetivo", Text: objective},
				{Label: "Resumo", Text: bodyAt(domain.PlacementSummary)},
				{Label: "Sumário", Text: bodyAt(domain.PlacementTOC)},
			},
			Objects:       objects,
			IntroByGroup:  intros,
			ImagesByOwner: imagesByOwner,
			Geo:           geo.Resolve,
		})

		conclusion := bodyAt(domain.PlacementConclusion)
		if conclusion == "" {
			conclusion = strings.TrimSpace(r.Conclusion)
		}
		tails := outline.Tail(enum, bodyAt(domain.PlacementFinalConsiderations), conclusion)

		header, primary, secondary := s.headerWithEmblems(ctx, r)

		renderer := render.Renderer{LoadImage: func(ref string) ([]byte, error) {
			return s.loadAsset(ctx, ref)
		}}
		pdf, err := renderer.Render(render.Document{
			Header:          header,
			ReportNumber:    r.ReportNumber,
			Typification:    r.Typification,
			Preamble:        bodyAt(domain.PlacementPreamble),
			Outline:         tree,
			Tails:           tails,
			EmblemPrimary:   primary,
			EmblemSecondary: secondary,
		})
		if err != nil {
			return domain.Infraf("render pdf: %v", err)
		}
		doc = RenderedDocument{
			Filename:    render.DocumentFilename(r.ReportNumber, r.Typification),
			ContentType: render.ContentTypePDF,
			Bytes:       pdf,
		}
		return nil
	})
	return doc, err
}

// headerWithEmblems derives the header context and loads the emblem bytes
// from the keys the context names. Missing emblems degrade to a text-only
// header rather than failing the render.
func (s *Service) headerWithEmblems(ctx context.Context, r domain.Report) (domain.HeaderContext, []byte, []byte) {
	var inst *domain.Institution
	var nucleus *domain.Nucleus
	var team *domain.Team
	if !r.Frozen() {
		if r.InstitutionID != nil {
			if v, ok := s.store.GetInstitution(*r.InstitutionID); ok {
				inst = &v
			}
		}
		if r.NucleusID != nil {
			if v, ok := s.store.GetNucleus(*r.NucleusID); ok {
				nucleus = &v
			}
		}
		if r.TeamID != nil {
			if v, ok := s.store.GetTeam(*r.TeamID); ok {
				team = &v
			}
		}
	}
	header := r.HeaderContext(inst, nucleus, team)

	var primary, secondary []byte
	if header.EmblemPrimaryKey != "" {
		primary, _ = s.loadAsset(ctx, header.EmblemPrimaryKey)
	}
	if header.EmblemSecondaryKey != "" {
		secondary, _ = s.loadAsset(ctx, header.EmblemSecondaryKey)
	}
	return header, primary, secondary
}

// loadAsset resolves an image reference. Media, static, and http(s) refs go
// through the asset fetcher when one is configured; everything else is read
// as a blob key.
func (s *Service) loadAsset(ctx context.Context, ref string) ([]byte, error) {
	if s.assets != nil && s.assets.Handles(ref) {
		return s.assets.Fetch(ref)
	}
	return s.readBlob(ctx, ref)
}

func (s *Service) readBlob(ctx context.Context, key string) ([]byte, error) {
	_, rc, err := s.blobs.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
