package core

import (
	"context"
	"fmt"

	"laudocore/pkg/domain"
)

// NewClosedReportIntegrityRule returns the rule enforcing that every closed
// report carries its final PDF, the edit lock, a complete organizational
// snapshot, and a freeze timestamp.
func NewClosedReportIntegrityRule() domain.Rule {
	return closedReportIntegrityRule{}
}

type closedReportIntegrityRule struct{}

func (closedReportIntegrityRule) Name() string { return "closed_report_integrity" }

func (closedReportIntegrityRule) Evaluate(_ context.Context, view domain.TransactionView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, r := range view.ListReports() {
		if r.Status != domain.StatusClosed {
			continue
		}
		var missing []string
		if r.PDFKey == "" {
			missing = append(missing, "pdf_key")
		}
		if !r.IsLocked {
			missing = append(missing, "is_locked")
		}
		if !r.SnapshotComplete() {
			missing = append(missing, "snapshot")
		}
		if r.OrganizationFrozenAt == nil {
			missing = append(missing, "organization_frozen_at")
		}
		if len(missing) == 0 {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "closed_report_integrity",
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("closed report %s missing %v", r.ReportNumber, missing),
			Entity:   domain.EntityReport,
			EntityID: r.ID,
		})
	}
	return res, nil
}
