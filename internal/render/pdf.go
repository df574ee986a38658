package render

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"laudocore/internal/outline"
	"laudocore/pkg/domain"
)

// Document bundles everything the renderer needs for one report.
type Document struct {
	Header          domain.HeaderContext
	ReportNumber    string
	Typification    string
	Preamble        string
	Outline         outline.Outline
	Tails           []outline.TailSection
	EmblemPrimary   []byte
	EmblemSecondary []byte
}

// ImageLoader resolves a stored image key to its raw bytes. A failed load
// drops the figure from the output rather than aborting the render.
type ImageLoader func(key string) ([]byte, error)

// Renderer produces the PDF byte stream for a document.
type Renderer struct {
	LoadImage ImageLoader
}

const (
	pageMargin   = 20.0
	emblemSide   = 22.0
	figureWidth  = 120.0
	qrSide       = 28.0
	bodyFontSize = 11.0
)

// Render walks the outline and emits the final PDF bytes.
func (r *Renderer) Render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	r.renderHeader(pdf, tr, doc)

	if doc.Preamble != "" {
		pdf.SetFont("Arial", "", bodyFontSize)
		pdf.MultiCell(0, 6, tr(doc.Preamble), "", "J", false)
		pdf.Ln(4)
	}

	for _, g := range doc.Outline.Groups {
		if g.Number != "" {
			pdf.SetFont("Arial", "B", 13)
			pdf.MultiCell(0, 7, tr(g.Number+". "+g.Title), "", "L", false)
			pdf.Ln(1)
			if g.Intro != "" {
				pdf.SetFont("Arial", "", bodyFontSize)
				pdf.MultiCell(0, 6, tr(g.Intro), "", "J", false)
				pdf.Ln(2)
			}
		}
		for _, obj := range g.Objects {
			r.renderObject(pdf, tr, obj)
		}
	}

	for _, t := range doc.Tails {
		pdf.SetFont("Arial", "B", 13)
		pdf.MultiCell(0, 7, tr(t.Number+". "+t.Title), "", "L", false)
		pdf.SetFont("Arial", "", bodyFontSize)
		pdf.MultiCell(0, 6, tr(t.Text), "", "J", false)
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) renderHeader(pdf *gofpdf.Fpdf, tr func(string) string, doc Document) {
	top := pdf.GetY()
	if len(doc.EmblemPrimary) > 0 {
		placeImage(pdf, "emblem_primary", doc.EmblemPrimary, pageMargin, top, emblemSide)
	}
	if len(doc.EmblemSecondary) > 0 {
		pageW, _ := pdf.GetPageSize()
		placeImage(pdf, "emblem_secondary", doc.EmblemSecondary, pageW-pageMargin-emblemSide, top, emblemSide)
	}

	pdf.SetFont("Arial", "B", 12)
	for _, line := range []string{
		doc.Header.InstitutionName,
		doc.Header.InstitutionAcronym,
		doc.Header.UnitLine,
		doc.Header.HonoreeLine,
	} {
		if line == "" {
			continue
		}
		pdf.CellFormat(0, 6, tr(line), "", 1, "C", false, 0, "")
		pdf.SetFont("Arial", "", 10)
	}
	if top+emblemSide+4 > pdf.GetY() {
		pdf.SetY(top + emblemSide + 4)
	}

	pdf.SetFont("Arial", "B", 14)
	title := "Laudo " + doc.ReportNumber
	if doc.Typification != "" {
		title += " - " + doc.Typification
	}
	pdf.CellFormat(0, 8, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(4)
}

func (r *Renderer) renderObject(pdf *gofpdf.Fpdf, tr func(string) string, obj outline.Object) {
	pdf.SetFont("Arial", "B", 12)
	pdf.MultiCell(0, 7, tr(obj.Number+". "+obj.Title), "", "L", false)
	pdf.Ln(1)

	for _, sec := range obj.Sections {
		if sec.Number != "" || sec.Label != "" {
			heading := sec.Label
			if sec.Number != "" {
				heading = sec.Number + ". " + sec.Label
			}
			pdf.SetFont("Arial", "B", bodyFontSize)
			pdf.MultiCell(0, 6, tr(heading), "", "L", false)
		}
		pdf.SetFont("Arial", "", bodyFontSize)
		pdf.MultiCell(0, 6, tr(sec.Text), "", "J", false)
		if sec.MapsURL != "" {
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(0, 5, tr(sec.MapsURL), "", "L", false)
			if len(sec.QRCode) > 0 {
				y := pdf.GetY()
				placeImage(pdf, "qr_"+obj.ID+"_"+sec.Number+sec.Label, sec.QRCode, pageMargin, y, qrSide)
				pdf.SetY(y + qrSide + 2)
			}
		}
		pdf.Ln(2)
	}

	for _, fig := range obj.Figures {
		data, err := r.loadFigure(fig.BlobKey)
		if err != nil {
			continue
		}
		pageW, pageH := pdf.GetPageSize()
		if pdf.GetY()+60 > pageH-pageMargin {
			pdf.AddPage()
		}
		x := (pageW - figureWidth) / 2
		flowImage(pdf, fig.BlobKey, data, x, figureWidth)
		caption := fig.Label
		if fig.Caption != "" {
			caption += " - " + fig.Caption
		}
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 5, tr(caption), "", 1, "C", false, 0, "")
		pdf.Ln(2)
	}
	pdf.Ln(2)
}

func (r *Renderer) loadFigure(key string) ([]byte, error) {
	if r.LoadImage == nil {
		return nil, fmt.Errorf("no image loader configured")
	}
	return r.LoadImage(key)
}

// placeImage registers raw image bytes under name and draws them at a fixed
// position with the given width, keeping aspect ratio. Unrecognized formats
// are skipped.
func placeImage(pdf *gofpdf.Fpdf, name string, data []byte, x, y, w float64) {
	kind := imageType(data)
	if kind == "" {
		return
	}
	opts := gofpdf.ImageOptions{ImageType: kind, ReadDpi: true}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	pdf.ImageOptions(name, x, y, w, 0, false, opts, 0, "")
}

// flowImage draws the image at the current Y and advances the cursor past it.
func flowImage(pdf *gofpdf.Fpdf, name string, data []byte, x, w float64) {
	kind := imageType(data)
	if kind == "" {
		return
	}
	opts := gofpdf.ImageOptions{ImageType: kind, ReadDpi: true}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	pdf.SetX(x)
	pdf.ImageOptions(name, x, 0, w, 0, true, opts, 0, "")
}

// imageType sniffs the format from magic bytes.
func imageType(data []byte) string {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}):
		return "PNG"
	case len(data) >= 3 && bytes.Equal(data[:3], []byte{0xff, 0xd8, 0xff}):
		return "JPG"
	case len(data) >= 6 && (bytes.Equal(data[:6], []byte("GIF87a")) || bytes.Equal(data[:6], []byte("GIF89a"))):
		return "GIF"
	default:
		return ""
	}
}
