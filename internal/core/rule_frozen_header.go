package core

import (
	"context"
	"fmt"

	"laudocore/pkg/domain"
)

// NewFrozenHeaderImmutableRule returns the rule blocking any change to the
// organizational links or snapshot columns of an already frozen report.
func NewFrozenHeaderImmutableRule() domain.Rule {
	return frozenHeaderImmutableRule{}
}

type frozenHeaderImmutableRule struct{}

func (frozenHeaderImmutableRule) Name() string { return "frozen_header_immutable" }

func (frozenHeaderImmutableRule) Evaluate(_ context.Context, _ domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, ch := range changes {
		if ch.Entity != domain.EntityReport || ch.Action != domain.ActionUpdate {
			continue
		}
		before, ok := ch.Before.(domain.Report)
		if !ok || !before.Frozen() {
			continue
		}
		after, ok := ch.After.(domain.Report)
		if !ok {
			continue
		}
		if field, same := frozenFieldsEqual(before, after); !same {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "frozen_header_immutable",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("report %s is frozen; %s may not change", before.ReportNumber, field),
				Entity:   domain.EntityReport,
				EntityID: before.ID,
			})
		}
	}
	return res, nil
}

func frozenFieldsEqual(before, after domain.Report) (string, bool) {
	if !strPtrEqual(before.InstitutionID, after.InstitutionID) {
		return "institution", false
	}
	if !strPtrEqual(before.NucleusID, after.NucleusID) {
		return "nucleus", false
	}
	if !strPtrEqual(before.TeamID, after.TeamID) {
		return "team", false
	}
	pairs := [][2]string{
		{before.InstitutionAcronymSnapshot, after.InstitutionAcronymSnapshot},
		{before.InstitutionNameSnapshot, after.InstitutionNameSnapshot},
		{before.InstitutionKindSnapshot, after.InstitutionKindSnapshot},
		{before.NucleusNameSnapshot, after.NucleusNameSnapshot},
		{before.TeamNameSnapshot, after.TeamNameSnapshot},
		{before.HonoreeTitleSnapshot, after.HonoreeTitleSnapshot},
		{before.HonoreeNameSnapshot, after.HonoreeNameSnapshot},
		{before.EmblemPrimarySnapshot, after.EmblemPrimarySnapshot},
		{before.EmblemSecondarySnapshot, after.EmblemSecondarySnapshot},
	}
	for _, p := range pairs {
		if p[0] != p[1] {
			return "snapshot", false
		}
	}
	bt, at := before.OrganizationFrozenAt, after.OrganizationFrozenAt
	if at == nil || !bt.Equal(*at) {
		return "organization_frozen_at", false
	}
	return "", true
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
