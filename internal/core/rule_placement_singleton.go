package core

import (
	"context"
	"fmt"

	"laudocore/pkg/domain"
)

// NewPlacementSingletonRule returns the rule enforcing text block uniqueness:
// one block per singleton placement per report, and one group intro per
// (report, group key).
func NewPlacementSingletonRule() domain.Rule {
	return placementSingletonRule{}
}

type placementSingletonRule struct{}

func (placementSingletonRule) Name() string { return "placement_singleton" }

func (placementSingletonRule) Evaluate(_ context.Context, view domain.TransactionView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, r := range view.ListReports() {
		type slot struct {
			placement domain.Placement
			group     domain.GroupKey
		}
		counts := make(map[slot]int)
		for _, b := range view.ListTextBlocks(r.ID) {
			if b.Placement.Singleton() {
				counts[slot{placement: b.Placement}]++
			} else if b.Placement == domain.PlacementObjectGroupIntro {
				counts[slot{placement: b.Placement, group: b.GroupKey}]++
			}
		}
		for s, n := range counts {
			if n <= 1 {
				continue
			}
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "placement_singleton",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("report %s has %d blocks at placement %s %s", r.ReportNumber, n, s.placement, s.group),
				Entity:   domain.EntityTextBlock,
				EntityID: r.ID,
			})
		}
	}
	return res, nil
}
