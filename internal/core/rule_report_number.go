package core

import (
	"context"
	"fmt"
	"strings"

	"laudocore/pkg/domain"
)

// NewReportNumberUniqueRule returns the rule enforcing report number
// uniqueness across all reports.
func NewReportNumberUniqueRule() domain.Rule {
	return reportNumberUniqueRule{}
}

type reportNumberUniqueRule struct{}

func (reportNumberUniqueRule) Name() string { return "report_number_unique" }

func (reportNumberUniqueRule) Evaluate(_ context.Context, view domain.TransactionView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	seen := make(map[string]string)
	for _, r := range view.ListReports() {
		number := strings.TrimSpace(r.ReportNumber)
		if number == "" {
			continue
		}
		if firstID, dup := seen[number]; dup {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "report_number_unique",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("report number %s already used by report %s", number, firstID),
				Entity:   domain.EntityReport,
				EntityID: r.ID,
			})
			continue
		}
		seen[number] = r.ID
	}
	return res, nil
}
