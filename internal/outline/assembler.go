package outline

import (
	"laudocore/pkg/domain"
)

// PrependBlock is an editorial block emitted before the exam-object groups
// (Objetivo, Resumo, Sumário and similar). Blocks with empty text are dropped
// so a bare label never appears in the document.
type PrependBlock struct {
	Label string
	Text  string
}

// Figure is one numbered image attached to an object.
type Figure struct {
	Label   string
	BlobKey string
	Caption string
}

// Section is one resolved render-block entry of an object. Number and Label
// are empty when the section is inlined under its object heading.
type Section struct {
	Number  string
	Label   string
	Format  domain.BlockFormat
	Text    string
	MapsURL string
	QRCode  []byte
}

// Object is one numbered entry of the outline, either a concrete exam object
// or a virtual prepend object.
type Object struct {
	ID       string
	Number   string
	Title    string
	Sections []Section
	Figures  []Figure
}

// Group is one emitted outline group. Number and Title are empty when the
// group has no header and its objects were promoted to the top level.
type Group struct {
	Key     domain.GroupKey
	Number  string
	Title   string
	Intro   string
	Objects []Object
}

// Outline is the assembled document tree plus the next available top-level
// number, consumed afterwards by the tail sections.
type Outline struct {
	Groups  []Group
	NextTop int
}

// GeoResolver turns a raw location string into a maps URL and a QR code PNG.
// A false return drops the geo block silently.
type GeoResolver func(raw string) (mapsURL string, qr []byte, ok bool)

// Input carries everything the assembler needs. It is a pure function of
// these values plus the enumerator state.
type Input struct {
	Prepend       []PrependBlock
	Objects       []domain.ExamObject
	IntroByGroup  map[domain.GroupKey]string
	ImagesByOwner map[string][]domain.ObjectImage
	Geo           GeoResolver
}

// Portuguese group headings in fixed editorial order.
var groupTitles = map[domain.GroupKey]string{
	domain.GroupLocations: "Dos Locais",
	domain.GroupVehicles:  "Dos Veículos",
	domain.GroupParts:     "Das Peças",
	domain.GroupCadavers:  "Dos Cadáveres",
	domain.GroupOther:     "Outros Exames",
}

var groupOrder = []domain.GroupKey{
	domain.GroupLocations,
	domain.GroupVehicles,
	domain.GroupParts,
	domain.GroupCadavers,
}

// Assemble walks prepend blocks then grouped exam objects, numbering
// everything through the enumerator. Groups are emitted in fixed order
// (locations, vehicles, parts, cadavers, unknown keys, ungrouped, other
// last). A group gets its own header only when it carries intro text or at
// least two objects; the ungrouped pseudo-group never does.
func Assemble(e *Enumerator, in Input) Outline {
	var out Outline

	for _, p := range in.Prepend {
		if p.Text == "" {
			continue
		}
		n, _ := e.Enumerate(1)
		out.Groups = append(out.Groups, Group{Objects: []Object{{
			Number:   n,
			Title:    p.Label,
			Sections: []Section{{Format: domain.FormatText, Text: p.Text}},
		}}})
	}

	byGroup := make(map[domain.GroupKey][]domain.ExamObject)
	var unknown []domain.GroupKey
	seen := make(map[domain.GroupKey]bool)
	for _, obj := range in.Objects {
		key := obj.Group()
		byGroup[key] = append(byGroup[key], obj)
		if key == domain.GroupNone || key == domain.GroupOther {
			continue
		}
		known := false
		for _, k := range groupOrder {
			if k == key {
				known = true
				break
			}
		}
		if !known && !seen[key] {
			seen[key] = true
			unknown = append(unknown, key)
		}
	}

	order := append(append([]domain.GroupKey{}, groupOrder...), unknown...)
	order = append(order, domain.GroupNone, domain.GroupOther)
	for _, key := range order {
		objs := byGroup[key]
		if len(objs) == 0 {
			continue
		}
		intro := in.IntroByGroup[key]
		header := key != domain.GroupNone && (intro != "" || len(objs) >= 2)

		group := Group{Key: key, Intro: intro}
		objLevel := 1
		if header {
			group.Number, _ = e.Enumerate(1)
			group.Title = groupTitles[key]
			objLevel = 2
		}
		for _, obj := range objs {
			group.Objects = append(group.Objects, assembleObject(e, in, obj, objLevel))
		}
		out.Groups = append(out.Groups, group)
	}

	out.NextTop = e.NextTop()
	return out
}

func assembleObject(e *Enumerator, in Input, obj domain.ExamObject, level int) Object {
	h := obj.Header()
	n, _ := e.Enumerate(level)
	o := Object{ID: h.ID, Number: n, Title: h.Title}

	var sections []Section
	for _, block := range obj.RenderBlocks() {
		value, ok := domain.ResolveBlock(obj, block)
		if !ok {
			continue
		}
		sec := Section{Label: block.Label, Format: block.Format, Text: value}
		if block.Kind == domain.BlockGeoLocation {
			if in.Geo == nil {
				continue
			}
			mapsURL, qr, ok := in.Geo(value)
			if !ok {
				continue
			}
			sec.MapsURL = mapsURL
			sec.QRCode = qr
		}
		sections = append(sections, sec)
	}

	if len(sections) == 1 {
		// Single section renders inline under the object heading; only a geo
		// block keeps its label.
		if sections[0].MapsURL == "" {
			sections[0].Label = ""
		}
	} else {
		for i := range sections {
			sections[i].Number, _ = e.Enumerate(level + 1)
		}
	}
	o.Sections = sections

	for _, img := range in.ImagesByOwner[h.ID] {
		label, _ := e.Enumerate(0)
		o.Figures = append(o.Figures, Figure{Label: label, BlobKey: img.BlobKey, Caption: img.Caption})
	}
	return o
}

// TailSection is one of the closing sections appended after the groups.
type TailSection struct {
	Number string
	Title  string
	Text   string
}

// Tail numbers the closing sections in fixed order: final considerations
// first when present, then the conclusion.
func Tail(e *Enumerator, finalConsiderations, conclusion string) []TailSection {
	var tails []TailSection
	if finalConsiderations != "" {
		n, _ := e.Enumerate(1)
		tails = append(tails, TailSection{Number: n, Title: "Considerações Finais", Text: finalConsiderations})
	}
	if conclusion != "" {
		n, _ := e.Enumerate(1)
		tails = append(tails, TailSection{Number: n, Title: "Conclusão", Text: conclusion})
	}
	return tails
}
