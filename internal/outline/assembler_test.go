package outline

import (
	"testing"

	"laudocore/pkg/domain"
)

func locationObj(id, title, description string) domain.ExamObject {
	return domain.LocationExam{
		ExamHeader:  domain.ExamHeader{Base: domain.Base{ID: id}, ReportID: "r1", Title: title},
		Description: description,
	}
}

func vehicleObj(id, title, description string) domain.ExamObject {
	return domain.VehicleExam{
		ExamHeader:  domain.ExamHeader{Base: domain.Base{ID: id}, ReportID: "r1", Title: title},
		Description: description,
	}
}

func TestSingleObjectGroupsHaveNoHeader(t *testing.T) {
	e := NewEnumerator()
	out := Assemble(e, Input{
		Objects: []domain.ExamObject{
			locationObj("loc1", "Local do fato", "Via pública."),
			vehicleObj("veh1", "Veículo 1", "Sedan."),
		},
	})
	if len(out.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(out.Groups))
	}
	loc := out.Groups[0]
	if loc.Number != "" {
		t.Fatalf("single-object group should have no header, got %q", loc.Number)
	}
	if got := loc.Objects[0].Number; got != "1" {
		t.Fatalf("location number = %q, want 1", got)
	}
	if got := out.Groups[1].Objects[0].Number; got != "2" {
		t.Fatalf("vehicle number = %q, want 2", got)
	}
	if out.NextTop != 3 {
		t.Fatalf("next top = %d, want 3", out.NextTop)
	}
}

func TestTwoObjectGroupGetsHeader(t *testing.T) {
	e := NewEnumerator()
	out := Assemble(e, Input{
		Objects: []domain.ExamObject{
			locationObj("loc1", "Local 1", "Primeiro."),
			locationObj("loc2", "Local 2", "Segundo."),
			vehicleObj("veh1", "Veículo 1", "Sedan."),
		},
	})
	loc := out.Groups[0]
	if loc.Number != "1" {
		t.Fatalf("group number = %q, want 1", loc.Number)
	}
	if loc.Title == "" {
		t.Fatalf("headed group missing title")
	}
	if loc.Objects[0].Number != "1.1" || loc.Objects[1].Number != "1.2" {
		t.Fatalf("object numbers = %q, %q", loc.Objects[0].Number, loc.Objects[1].Number)
	}
	if got := out.Groups[1].Objects[0].Number; got != "2" {
		t.Fatalf("vehicle number = %q, want 2", got)
	}
}

func TestIntroTextForcesHeader(t *testing.T) {
	e := NewEnumerator()
	out := Assemble(e, Input{
		Objects:      []domain.ExamObject{locationObj("loc1", "Local 1", "Texto.")},
		IntroByGroup: map[domain.GroupKey]string{domain.GroupLocations: "Os locais examinados."},
	})
	if out.Groups[0].Number != "1" {
		t.Fatalf("intro text should force a header, got %q", out.Groups[0].Number)
	}
	if out.Groups[0].Intro == "" {
		t.Fatalf("intro text lost")
	}
}

func TestSingleSectionRendersInline(t *testing.T) {
	e := NewEnumerator()
	out := Assemble(e, Input{
		Objects: []domain.ExamObject{locationObj("loc1", "Local 1", "Apenas descrição.")},
	})
	obj := out.Groups[0].Objects[0]
	if len(obj.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(obj.Sections))
	}
	if obj.Sections[0].Number != "" || obj.Sections[0].Label != "" {
		t.Fatalf("inline section should drop number and label, got %q %q", obj.Sections[0].Number, obj.Sections[0].Label)
	}

	e = NewEnumerator()
	withTwo := domain.LocationExam{
		ExamHeader:  domain.ExamHeader{Base: domain.Base{ID: "loc2"}, ReportID: "r1", Title: "Local 2"},
		Description: "Descrição.",
		Methodology: "Metodologia.",
	}
	out = Assemble(e, Input{Objects: []domain.ExamObject{withTwo}})
	obj = out.Groups[0].Objects[0]
	if len(obj.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(obj.Sections))
	}
	if obj.Sections[0].Number != "1.1" || obj.Sections[1].Number != "1.2" {
		t.Fatalf("section numbers = %q, %q", obj.Sections[0].Number, obj.Sections[1].Number)
	}
	if obj.Sections[0].Label == "" {
		t.Fatalf("numbered sections keep labels")
	}
}

func TestGeoSectionKeepsLabelWhenInline(t *testing.T) {
	e := NewEnumerator()
	obj := domain.LocationExam{
		ExamHeader:  domain.ExamHeader{Base: domain.Base{ID: "loc1"}, ReportID: "r1", Title: "Local"},
		GeoLocation: "-22.9, -47.06",
	}
	out := Assemble(e, Input{
		Objects: []domain.ExamObject{obj},
		Geo: func(raw string) (string, []byte, bool) {
			return "https://maps.example/" + raw, []byte{1}, true
		},
	})
	sections := out.Groups[0].Objects[0].Sections
	if len(sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(sections))
	}
	if sections[0].Label != "Localização" {
		t.Fatalf("geo section lost its label: %q", sections[0].Label)
	}
	if sections[0].MapsURL == "" || len(sections[0].QRCode) == 0 {
		t.Fatalf("geo section missing resolver output")
	}
}

func TestGeoResolverFailureDropsSection(t *testing.T) {
	e := NewEnumerator()
	obj := domain.LocationExam{
		ExamHeader:  domain.ExamHeader{Base: domain.Base{ID: "loc1"}, ReportID: "r1", Title: "Local"},
		GeoLocation: "???",
		Description: "Texto.",
	}
	out := Assemble(e, Input{
		Objects: []domain.ExamObject{obj},
		Geo:     func(string) (string, []byte, bool) { return "", nil, false },
	})
	sections := out.Groups[0].Objects[0].Sections
	if len(sections) != 1 {
		t.Fatalf("expected unresolved geo block dropped, got %d sections", len(sections))
	}
}

func TestFigureCounterContinuity(t *testing.T) {
	e := NewEnumerator()
	images := map[string][]domain.ObjectImage{
		"loc1": {{BlobKey: "a"}, {BlobKey: "b"}, {BlobKey: "c"}},
		"veh1": {{BlobKey: "d"}, {BlobKey: "e"}},
	}
	out := Assemble(e, Input{
		Objects: []domain.ExamObject{
			locationObj("loc1", "Local", "Texto."),
			vehicleObj("veh1", "Veículo", "Texto."),
		},
		ImagesByOwner: images,
	})
	first := out.Groups[0].Objects[0].Figures
	second := out.Groups[1].Objects[0].Figures
	if first[0].Label != "Figura 1" || first[2].Label != "Figura 3" {
		t.Fatalf("first object figures: %q..%q", first[0].Label, first[2].Label)
	}
	if second[0].Label != "Figura 4" || second[1].Label != "Figura 5" {
		t.Fatalf("second object figures: %q..%q", second[0].Label, second[1].Label)
	}
	if e.FigureCount() != 5 {
		t.Fatalf("figure count = %d, want 5", e.FigureCount())
	}
}

func TestPrependBlocksAndEmptyObjetivoDropped(t *testing.T) {
	e := NewEnumerator()
	out := Assemble(e, Input{
		Prepend: []PrependBlock{
			{Label: "Objetivo", Text: ""},
			{Label: "Resumo", Text: "Resumo do laudo."},
		},
		Objects: []domain.ExamObject{locationObj("loc1", "Local", "Texto.")},
	})
	if len(out.Groups) != 2 {
		t.Fatalf("expected 2 groups (prepend + locations), got %d", len(out.Groups))
	}
	resumo := out.Groups[0].Objects[0]
	if resumo.Title != "Resumo" || resumo.Number != "1" {
		t.Fatalf("prepend block = %q %q", resumo.Title, resumo.Number)
	}
	if got := out.Groups[1].Objects[0].Number; got != "2" {
		t.Fatalf("object after prepend = %q, want 2", got)
	}
}

func TestUngroupedNeverGetsHeader(t *testing.T) {
	e := NewEnumerator()
	generic := func(id string) domain.ExamObject {
		return domain.GenericObject{
			ExamHeader: domain.ExamHeader{Base: domain.Base{ID: id}, ReportID: "r1", Title: "Objeto " + id},
			Sections:   map[string]string{"historico": "Histórico."},
		}
	}
	out := Assemble(e, Input{Objects: []domain.ExamObject{generic("g1"), generic("g2")}})
	if len(out.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(out.Groups))
	}
	g := out.Groups[0]
	if g.Number != "" {
		t.Fatalf("ungrouped pseudo-group must not have a header")
	}
	if g.Objects[0].Number != "1" || g.Objects[1].Number != "2" {
		t.Fatalf("ungrouped numbers = %q, %q", g.Objects[0].Number, g.Objects[1].Number)
	}
}

func TestTailSections(t *testing.T) {
	e := NewEnumerator()
	out := Assemble(e, Input{
		Objects: []domain.ExamObject{locationObj("loc1", "Local", "Texto.")},
	})
	tails := Tail(e, "Nada mais havendo.", "Conclui-se que.")
	if len(tails) != 2 {
		t.Fatalf("expected 2 tails, got %d", len(tails))
	}
	if tails[0].Number != "2" || tails[0].Title != "Considerações Finais" {
		t.Fatalf("first tail = %q %q", tails[0].Number, tails[0].Title)
	}
	if tails[1].Number != "3" || tails[1].Title != "Conclusão" {
		t.Fatalf("second tail = %q %q", tails[1].Number, tails[1].Title)
	}
	if out.NextTop != 2 {
		t.Fatalf("next top = %d, want 2", out.NextTop)
	}

	e2 := NewEnumerator()
	_, _ = e2.Enumerate(1)
	only := Tail(e2, "", "Conclusão apenas.")
	if len(only) != 1 || only[0].Number != "2" || only[0].Title != "Conclusão" {
		t.Fatalf("conclusion-only tail = %+v", only)
	}
}
