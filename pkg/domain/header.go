package domain

import "strings"

// HeaderContext is the derived institutional header of a report. While the
// report is editable it reflects the live organization; once frozen it is
// built exclusively from the snapshot columns.
type HeaderContext struct {
	InstitutionAcronym string `json:"institution_acronym"`
	InstitutionName    string `json:"institution_name"`
	InstitutionKind    string `json:"institution_kind"`
	UnitLine           string `json:"unit_line"`
	HonoreeLine        string `json:"honoree_line"`
	EmblemPrimaryKey   string `json:"emblem_primary_key,omitempty"`
	EmblemSecondaryKey string `json:"emblem_secondary_key,omitempty"`
	Frozen             bool   `json:"frozen"`
}

// UnitLine joins nucleus and team for the header, collapsing the pair when
// the team repeats the nucleus (case-insensitive) or is flagged as the
// nucleus's default team.
func UnitLine(nucleusName, teamName string, isNucleusTeam bool) string {
	nucleusName = strings.TrimSpace(nucleusName)
	teamName = strings.TrimSpace(teamName)
	if teamName == "" || isNucleusTeam || strings.EqualFold(nucleusName, teamName) {
		return nucleusName
	}
	if nucleusName == "" {
		return teamName
	}
	return nucleusName + " - " + teamName
}

// HonoreeLine joins the honoree title and name.
func HonoreeLine(title, name string) string {
	title = strings.TrimSpace(title)
	name = strings.TrimSpace(name)
	switch {
	case title == "":
		return name
	case name == "":
		return title
	}
	return title + " " + name
}

// HeaderContext derives the institutional header. The live arguments may be
// nil; they are only consulted while the report is still editable. A frozen
// report ignores them entirely.
func (r Report) HeaderContext(inst *Institution, nucleus *Nucleus, team *Team) HeaderContext {
	if r.Frozen() {
		return HeaderContext{
			InstitutionAcronym: r.InstitutionAcronymSnapshot,
			InstitutionName:    r.InstitutionNameSnapshot,
			InstitutionKind:    r.InstitutionKindSnapshot,
			UnitLine:           UnitLine(r.NucleusNameSnapshot, r.TeamNameSnapshot, false),
			HonoreeLine:        HonoreeLine(r.HonoreeTitleSnapshot, r.HonoreeNameSnapshot),
			EmblemPrimaryKey:   r.EmblemPrimarySnapshot,
			EmblemSecondaryKey: r.EmblemSecondarySnapshot,
			Frozen:             true,
		}
	}
	var ctx HeaderContext
	if inst != nil {
		ctx.InstitutionAcronym = inst.Acronym
		ctx.InstitutionName = inst.Name
		ctx.InstitutionKind = inst.Kind
		ctx.HonoreeLine = HonoreeLine(inst.HonoreeTitle, inst.HonoreeName)
		ctx.EmblemPrimaryKey = inst.EmblemPrimaryKey
		ctx.EmblemSecondaryKey = inst.EmblemSecondaryKey
	}
	var nucleusName, teamName string
	var isNucleusTeam bool
	if nucleus != nil {
		nucleusName = nucleus.Name
	}
	if team != nil {
		teamName = team.Name
		isNucleusTeam = team.IsNucleusTeam
	}
	ctx.UnitLine = UnitLine(nucleusName, teamName, isNucleusTeam)
	return ctx
}
