package core

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"laudocore/internal/blob"
	"laudocore/internal/render"
	"laudocore/pkg/domain"
)

// Service exposes the transactional command surface over reports, exam
// objects, text blocks, and images. Every command authorizes the principal
// first and owns the report's blob footprint: emblem snapshots and the final
// PDF are written on close, and prefix cleanup runs after a successful
// delete commit.
type Service struct {
	store   domain.PersistentStore
	blobs   blob.Store
	assets  *render.Fetcher
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
	nowFn   func() time.Time
}

// ServiceOption customizes service construction.
type ServiceOption func(*Service)

// WithLogger installs a structured logger.
func WithLogger(l Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics installs a metrics recorder.
func WithMetrics(m MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer installs an operation tracer.
func WithTracer(t Tracer) ServiceOption {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithAssetFetcher installs the read-through fetcher used to resolve image
// references under the media/static URL namespaces or plain http(s) URLs.
// References outside those namespaces stay blob keys.
func WithAssetFetcher(f *render.Fetcher) ServiceOption {
	return func(s *Service) {
		s.assets = f
	}
}

// WithNow overrides the service clock, for tests.
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// NewService constructs a service backed by the supplied store and blob store.
func NewService(store domain.PersistentStore, blobs blob.Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		blobs:   blobs,
		logger:  noopLogger{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
		nowFn:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying persistent store.
func (s *Service) Store() domain.PersistentStore { return s.store }

// Blobs returns the underlying blob store.
func (s *Service) Blobs() blob.Store { return s.blobs }

func (s *Service) instrument(ctx context.Context, op string, fn func(context.Context) error) error {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, op)
	err := fn(ctx)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	if err != nil && domain.KindOf(err) == domain.KindInfra {
		s.logger.Error(op, "error", err)
	}
	return err
}

// ownedReport loads a report and enforces the existence-disclosure rule: an
// absent row and an author mismatch are indistinguishable.
func (s *Service) ownedReport(principal domain.Principal, id string) (domain.Report, error) {
	r, ok := s.store.GetReport(id)
	if !ok || r.AuthorID != principal.ID {
		return domain.Report{}, domain.NotFoundf("report not found")
	}
	return r, nil
}

// editableReport runs the full write gate: ownership, then effective edit
// permission, then report state.
func (s *Service) editableReport(principal domain.Principal, id string) (domain.Report, error) {
	r, err := s.ownedReport(principal, id)
	if err != nil {
		return domain.Report{}, err
	}
	if !principal.CanEditReportsEffective() {
		return domain.Report{}, domain.Authf("principal lacks report edit permission")
	}
	if !r.CanEdit() {
		return domain.Report{}, domain.Statef("report %s is closed", r.ReportNumber)
	}
	return r, nil
}

// CreateReport opens a new report authored by the principal.
func (s *Service) CreateReport(ctx context.Context, principal domain.Principal, report domain.Report) (domain.Report, error) {
	var created domain.Report
	err := s.instrument(ctx, "create_report", func(ctx context.Context) error {
		if !principal.CanCreateReportsEffective(s.nowFn()) {
			return domain.Authf("principal lacks report create permission")
		}
		if report.ReportNumber == "" {
			return domain.Validationf("report number required").WithField("report_number", "required")
		}
		report.AuthorID = principal.ID
		report.Status = domain.StatusOpen
		report.IsLocked = false
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = tx.CreateReport(report)
			return err
		})
		return err
	})
	return created, err
}

// GetReport returns one of the principal's reports.
func (s *Service) GetReport(ctx context.Context, principal domain.Principal, id string) (domain.Report, error) {
	var out domain.Report
	err := s.instrument(ctx, "get_report", func(context.Context) error {
		var err error
		out, err = s.ownedReport(principal, id)
		return err
	})
	return out, err
}

// ListReports returns every report authored by the principal.
func (s *Service) ListReports(ctx context.Context, principal domain.Principal) ([]domain.Report, error) {
	var out []domain.Report
	err := s.instrument(ctx, "list_reports", func(context.Context) error {
		out = s.store.ListReportsByAuthor(principal.ID)
		return nil
	})
	return out, err
}

// UpdateReport applies the mutator to one of the principal's open reports.
func (s *Service) UpdateReport(ctx context.Context, principal domain.Principal, id string, mutator func(*domain.Report) error) (domain.Report, error) {
	var updated domain.Report
	err := s.instrument(ctx, "update_report", func(ctx context.Context) error {
		if _, err := s.editableReport(principal, id); err != nil {
			return err
		}
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			updated, err = tx.UpdateReport(id, mutator)
			return err
		})
		return err
	})
	return updated, err
}

// DeleteReport removes an open report and, after the commit, its whole blob
// prefix.
func (s *Service) DeleteReport(ctx context.Context, principal domain.Principal, id string) error {
	return s.instrument(ctx, "delete_report", func(ctx context.Context) error {
		if _, err := s.editableReport(principal, id); err != nil {
			return err
		}
		if _, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.DeleteReport(id)
		}); err != nil {
			return err
		}
		if n, err := s.blobs.DeletePrefix(ctx, reportPrefix(id)); err != nil {
			s.logger.Warn("report blob cleanup failed", "report_id", id, "error", err)
		} else if n > 0 {
			s.logger.Debug("report blobs removed", "report_id", id, "count", n)
		}
		return nil
	})
}

// CloseReport freezes the report: it snapshots the organizational header,
// copies the emblem bytes into report-owned keys, stores the final PDF, and
// flips the status to closed. Closing an already closed report is a no-op
// returning the stored state.
func (s *Service) CloseReport(ctx context.Context, principal domain.Principal, id string, pdf []byte) (domain.Report, error) {
	var closed domain.Report
	err := s.instrument(ctx, "close_report", func(ctx context.Context) error {
		r, err := s.ownedReport(principal, id)
		if err != nil {
			return err
		}
		if !principal.CanEditReportsEffective() {
			return domain.Authf("principal lacks report edit permission")
		}
		if r.Status == domain.StatusClosed {
			closed = r
			return nil
		}
		if !r.CanEdit() {
			return domain.Statef("report %s is locked", r.ReportNumber)
		}
		if len(pdf) == 0 {
			return domain.Validationf("final pdf required to close").WithField("pdf", "required")
		}

		inst, nucleus, team, err := s.resolveOrganization(r)
		if err != nil {
			return err
		}

		written, snapshot, err := s.freezeArtifacts(ctx, r, inst, pdf)
		if err != nil {
			return err
		}

		now := s.nowFn()
		teamName := team.Name
		if team.IsNucleusTeam {
			teamName = nucleus.Name
		}
		_, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			closed, txErr = tx.UpdateReport(id, func(rep *domain.Report) error {
				rep.InstitutionAcronymSnapshot = inst.Acronym
				rep.InstitutionNameSnapshot = inst.Name
				rep.InstitutionKindSnapshot = inst.Kind
				rep.NucleusNameSnapshot = nucleus.Name
				rep.TeamNameSnapshot = teamName
				rep.HonoreeTitleSnapshot = inst.HonoreeTitle
				rep.HonoreeNameSnapshot = inst.HonoreeName
				rep.EmblemPrimarySnapshot = snapshot.emblemPrimary
				rep.EmblemSecondarySnapshot = snapshot.emblemSecondary
				rep.OrganizationFrozenAt = &now
				rep.PDFKey = snapshot.pdfKey
				rep.Status = domain.StatusClosed
				rep.IsLocked = true
				rep.ConcludedAt = &now
				return nil
			})
			return txErr
		})
		if err != nil {
			for _, key := range written {
				if _, delErr := s.blobs.Delete(ctx, key); delErr != nil {
					s.logger.Warn("close rollback cleanup failed", "key", key, "error", delErr)
				}
			}
			return err
		}
		s.logger.Info("report closed", "report_id", id, "pdf_key", snapshot.pdfKey)
		return nil
	})
	return closed, err
}

func (s *Service) resolveOrganization(r domain.Report) (domain.Institution, domain.Nucleus, domain.Team, error) {
	verr := domain.Validationf("organization incomplete on close")
	incomplete := false
	if r.InstitutionID == nil {
		verr.WithField("institution", "required")
		incomplete = true
	}
	if r.NucleusID == nil {
		verr.WithField("nucleus", "required")
		incomplete = true
	}
	if r.TeamID == nil {
		verr.WithField("team", "required")
		incomplete = true
	}
	if incomplete {
		return domain.Institution{}, domain.Nucleus{}, domain.Team{}, verr
	}
	inst, ok := s.store.GetInstitution(*r.InstitutionID)
	if !ok {
		return domain.Institution{}, domain.Nucleus{}, domain.Team{}, domain.Validationf("institution %s not found", *r.InstitutionID).WithField("institution", "unknown")
	}
	nucleus, ok := s.store.GetNucleus(*r.NucleusID)
	if !ok {
		return domain.Institution{}, domain.Nucleus{}, domain.Team{}, domain.Validationf("nucleus %s not found", *r.NucleusID).WithField("nucleus", "unknown")
	}
	team, ok := s.store.GetTeam(*r.TeamID)
	if !ok {
		return domain.Institution{}, domain.Nucleus{}, domain.Team{}, domain.Validationf("team %s not found", *r.TeamID).WithField("team", "unknown")
	}
	return inst, nucleus, team, nil
}

type frozenArtifacts struct {
	emblemPrimary   string
	emblemSecondary string
	pdfKey          string
}

// freezeArtifacts copies the institution emblem bytes into report-owned keys
// and stores the final PDF. It returns the keys written so a failed commit
// can undo them.
func (s *Service) freezeArtifacts(ctx context.Context, r domain.Report, inst domain.Institution, pdf []byte) ([]string, frozenArtifacts, error) {
	var written []string
	var out frozenArtifacts

	copyEmblem := func(srcKey, name string) (string, error) {
		if srcKey == "" {
			return "", domain.Validationf("institution emblem missing").WithField(name, "required")
		}
		_, rc, err := s.blobs.Get(ctx, srcKey)
		if err != nil {
			return "", domain.Infraf("read emblem %s: %v", srcKey, err)
		}
		defer func() { _ = rc.Close() }()
		ext := path.Ext(srcKey)
		if ext == "" {
			ext = ".png"
		}
		dst := fmt.Sprintf("%sheader/%s%s", reportPrefix(r.ID), name, ext)
		if _, err := s.blobs.Put(ctx, dst, rc, blob.PutOptions{}); err != nil {
			return "", domain.Infraf("store emblem snapshot %s: %v", dst, err)
		}
		written = append(written, dst)
		return dst, nil
	}

	undo := func() {
		for _, key := range written {
			_, _ = s.blobs.Delete(ctx, key)
		}
	}

	var err error
	if out.emblemPrimary, err = copyEmblem(inst.EmblemPrimaryKey, "emblem_primary"); err != nil {
		undo()
		return nil, frozenArtifacts{}, err
	}
	if out.emblemSecondary, err = copyEmblem(inst.EmblemSecondaryKey, "emblem_secondary"); err != nil {
		undo()
		return nil, frozenArtifacts{}, err
	}

	out.pdfKey = fmt.Sprintf("%sfinal/laudo_%s.pdf", reportPrefix(r.ID), render.NormalizeFilePart(r.ReportNumber))
	if _, err := s.blobs.Put(ctx, out.pdfKey, bytes.NewReader(pdf), blob.PutOptions{ContentType: render.ContentTypePDF}); err != nil {
		undo()
		return nil, frozenArtifacts{}, domain.Infraf("store final pdf: %v", err)
	}
	written = append(written, out.pdfKey)
	return written, out, nil
}

func reportPrefix(reportID string) string {
	return "reports/" + reportID + "/"
}

func objectPrefix(reportID string, kind domain.ExamKind, objectID string) string {
	return fmt.Sprintf("%sobjects/%s/%s/", reportPrefix(reportID), kind, objectID)
}
