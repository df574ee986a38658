package domain

import (
	"testing"
	"time"
)

func TestUnitLine(t *testing.T) {
	cases := []struct {
		nucleus, team string
		nucleusTeam   bool
		want          string
	}{
		{"Núcleo Campinas", "Equipe 01", false, "Núcleo Campinas - Equipe 01"},
		{"Núcleo Campinas", "núcleo campinas", false, "Núcleo Campinas"},
		{"Núcleo Campinas", "Equipe 01", true, "Núcleo Campinas"},
		{"Núcleo Campinas", "", false, "Núcleo Campinas"},
		{"", "Equipe 01", false, "Equipe 01"},
	}
	for i, c := range cases {
		if got := UnitLine(c.nucleus, c.team, c.nucleusTeam); got != c.want {
			t.Fatalf("case %d: UnitLine = %q, want %q", i, got, c.want)
		}
	}
}

func TestHonoreeLine(t *testing.T) {
	if got := HonoreeLine("Perito Criminal Dr.", "Octávio Eduardo de Brito Alvarenga"); got != "Perito Criminal Dr. Octávio Eduardo de Brito Alvarenga" {
		t.Fatalf("HonoreeLine = %q", got)
	}
	if got := HonoreeLine("", "Fulano"); got != "Fulano" {
		t.Fatalf("HonoreeLine without title = %q", got)
	}
	if got := HonoreeLine("Dr.", ""); got != "Dr." {
		t.Fatalf("HonoreeLine without name = %q", got)
	}
}

func TestFrozenHeaderIgnoresLiveOrganization(t *testing.T) {
	frozenAt := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	r := Report{
		InstitutionAcronymSnapshot: "SPTC",
		InstitutionNameSnapshot:    "Superintendência da Polícia Técnico-Científica",
		InstitutionKindSnapshot:    "state",
		NucleusNameSnapshot:        "Núcleo Campinas",
		TeamNameSnapshot:           "Equipe 01",
		HonoreeTitleSnapshot:       "Perito Criminal Dr.",
		HonoreeNameSnapshot:        "Octávio Eduardo de Brito Alvarenga",
		EmblemPrimarySnapshot:      "reports/r1/header/emblem_primary.png",
		EmblemSecondarySnapshot:    "reports/r1/header/emblem_secondary.png",
		OrganizationFrozenAt:       &frozenAt,
	}
	renamed := Institution{Acronym: "XPTC", Name: "Renamed"}
	ctx := r.HeaderContext(&renamed, &Nucleus{Name: "Outro"}, &Team{Name: "Outra"})
	if ctx.InstitutionAcronym != "SPTC" {
		t.Fatalf("frozen header leaked live acronym: %q", ctx.InstitutionAcronym)
	}
	if ctx.UnitLine != "Núcleo Campinas - Equipe 01" {
		t.Fatalf("unit line = %q", ctx.UnitLine)
	}
	if !ctx.Frozen {
		t.Fatalf("expected frozen context")
	}
	if ctx.EmblemPrimaryKey != "reports/r1/header/emblem_primary.png" {
		t.Fatalf("emblem key = %q", ctx.EmblemPrimaryKey)
	}
}

func TestLiveHeaderDerivesFromOrganization(t *testing.T) {
	r := Report{}
	inst := Institution{Acronym: "SPTC", Name: "Superintendência", Kind: "state", HonoreeTitle: "Dr.", HonoreeName: "Fulano"}
	ctx := r.HeaderContext(&inst, &Nucleus{Name: "Núcleo"}, &Team{Name: "Equipe", IsNucleusTeam: true})
	if ctx.InstitutionAcronym != "SPTC" || ctx.UnitLine != "Núcleo" {
		t.Fatalf("live header = %+v", ctx)
	}
	if ctx.Frozen {
		t.Fatalf("open report must not be frozen")
	}
}

func TestSnapshotComplete(t *testing.T) {
	var r Report
	if r.SnapshotComplete() {
		t.Fatalf("empty snapshot reported complete")
	}
	r = Report{
		InstitutionAcronymSnapshot: "SPTC",
		InstitutionNameSnapshot:    "Nome",
		InstitutionKindSnapshot:    "state",
		NucleusNameSnapshot:        "Núcleo",
		TeamNameSnapshot:           "Equipe",
		HonoreeTitleSnapshot:       "Dr.",
		HonoreeNameSnapshot:        "Fulano",
		EmblemPrimarySnapshot:      "k1",
		EmblemSecondarySnapshot:    "k2",
	}
	if !r.SnapshotComplete() {
		t.Fatalf("complete snapshot reported incomplete")
	}
}

func TestPrincipalEffectivePermissions(t *testing.T) {
	team := "t1"
	today := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)

	p := Principal{CanEditReports: true}
	if p.CanEditReportsEffective() {
		t.Fatalf("edit permission without a team must be ineffective")
	}
	p.TeamID = &team
	if !p.CanEditReportsEffective() {
		t.Fatalf("expected effective edit permission")
	}

	p.CanCreateReports = true
	if !p.CanCreateReportsEffective(today) {
		t.Fatalf("expected effective create permission without limit")
	}
	limit := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	p.CanCreateReportsUntil = &limit
	if !p.CanCreateReportsEffective(today) {
		t.Fatalf("limit day itself must still be allowed")
	}
	past := limit.AddDate(0, 0, -1)
	p.CanCreateReportsUntil = &past
	if p.CanCreateReportsEffective(today) {
		t.Fatalf("expired limit must revoke create permission")
	}
}
