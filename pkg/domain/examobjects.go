package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExamKind is the concrete type tag of an exam object. It names the blob
// subdirectory holding the object's images and selects the decode target for
// persisted records.
type ExamKind string

// Exam object kinds.
const (
	KindGeneric    ExamKind = "generic"
	KindPublicRoad ExamKind = "public_road"
	KindVehicle    ExamKind = "vehicle"
	KindCadaver    ExamKind = "cadaver"
	KindLocation   ExamKind = "location"
)

// ExamHeader carries the fields shared by every exam object variant.
type ExamHeader struct {
	Base
	ReportID string `json:"report_id"`
	Title    string `json:"title"`
	Order    int    `json:"order"`
}

// ExamObject is the closed set of typed exam entities under a report. Each
// variant statically publishes its render-block descriptor; fields not listed
// there never reach the outline even when populated.
type ExamObject interface {
	Kind() ExamKind
	Group() GroupKey
	Header() ExamHeader
	WithHeader(ExamHeader) ExamObject
	Clone() ExamObject
	// RenderBlocks returns the ordered descriptor driving outline assembly.
	RenderBlocks() []RenderBlock
	// Field resolves a named section_field or geo_location value. Unknown
	// names resolve to the empty string.
	Field(name string) string
	// SectionValue resolves a render_section registry key. Unknown keys
	// resolve to the empty string.
	SectionValue(key string) string
}

// SectionDefinition is one entry of the generic-object section registry.
type SectionDefinition struct {
	Key   string
	Label string
}

// ReportSections is the fixed registry backing the generic variant. Order
// here is document order.
var ReportSections = []SectionDefinition{
	{Key: "historico", Label: "Histórico"},
	{Key: "exame", Label: "Do Exame"},
	{Key: "vestigios", Label: "Dos Vestígios"},
	{Key: "consideracoes", Label: "Considerações Técnicas"},
}

// GenericObject is the catch-all variant backed by the section registry.
// It is ungrouped: generic objects appear flat at the top level.
type GenericObject struct {
	ExamHeader
	Sections map[string]string `json:"sections"`
}

func (o GenericObject) Kind() ExamKind      { return KindGeneric }
func (o GenericObject) Group() GroupKey     { return GroupNone }
func (o GenericObject) Header() ExamHeader  { return o.ExamHeader }
func (o GenericObject) Field(string) string { return "" }

// SectionValue resolves a registry key against the stored section texts.
func (o GenericObject) SectionValue(key string) string { return o.Sections[key] }

// WithHeader returns a copy with the shared header replaced.
func (o GenericObject) WithHeader(h ExamHeader) ExamObject {
	o.ExamHeader = h
	return o
}

// Clone deep-copies the section map.
func (o GenericObject) Clone() ExamObject {
	if o.Sections != nil {
		sections := make(map[string]string, len(o.Sections))
		for k, v := range o.Sections {
			sections[k] = v
		}
		o.Sections = sections
	}
	return o
}

// RenderBlocks exposes one render_section entry per registry key.
func (o GenericObject) RenderBlocks() []RenderBlock {
	blocks := make([]RenderBlock, 0, len(ReportSections))
	for _, def := range ReportSections {
		blocks = append(blocks, RenderBlock{
			Kind:   BlockRenderSection,
			Label:  def.Label,
			Field:  def.Key,
			Format: FormatMarkdown,
		})
	}
	return blocks
}

// LocationExam describes a generic examined location.
type LocationExam struct {
	ExamHeader
	Address     string `json:"address"`
	GeoLocation string `json:"geo_location"`
	Description string `json:"description"`
	Methodology string `json:"methodology"`
}

func (o LocationExam) Kind() ExamKind     { return KindLocation }
func (o LocationExam) Group() GroupKey    { return GroupLocations }
func (o LocationExam) Header() ExamHeader { return o.ExamHeader }

func (o LocationExam) WithHeader(h ExamHeader) ExamObject {
	o.ExamHeader = h
	return o
}

func (o LocationExam) Clone() ExamObject { return o }

func (o LocationExam) Field(name string) string {
	switch name {
	case "address":
		return o.Address
	case "geo_location":
		return o.GeoLocation
	case "description":
		return o.Description
	case "methodology":
		return o.Methodology
	}
	return ""
}

func (o LocationExam) SectionValue(string) string { return "" }

func (o LocationExam) RenderBlocks() []RenderBlock {
	return []RenderBlock{
		{Kind: BlockSectionField, Label: "Endereço", Field: "address", Format: FormatText},
		{Kind: BlockGeoLocation, Label: "Localização", Field: "geo_location", Format: FormatText},
		{Kind: BlockSectionField, Label: "Descrição", Field: "description", Format: FormatMarkdown},
		{Kind: BlockSectionField, Label: "Metodologia", Field: "methodology", Format: FormatMarkdown},
	}
}

// PublicRoadExam describes an examined stretch of public road.
type PublicRoadExam struct {
	ExamHeader
	RoadName     string `json:"road_name"`
	RoadSurface  string `json:"road_surface"`
	Signage      string `json:"signage"`
	Surroundings string `json:"surroundings"`
	GeoLocation  string `json:"geo_location"`
	Description  string `json:"description"`
}

func (o PublicRoadExam) Kind() ExamKind     { return KindPublicRoad }
func (o PublicRoadExam) Group() GroupKey    { return GroupLocations }
func (o PublicRoadExam) Header() ExamHeader { return o.ExamHeader }

func (o PublicRoadExam) WithHeader(h ExamHeader) ExamObject {
	o.ExamHeader = h
	return o
}

func (o PublicRoadExam) Clone() ExamObject { return o }

func (o PublicRoadExam) Field(name string) string {
	switch name {
	case "road_name":
		return o.RoadName
	case "road_surface":
		return o.RoadSurface
	case "signage":
		return o.Signage
	case "surroundings":
		return o.Surroundings
	case "geo_location":
		return o.GeoLocation
	case "description":
		return o.Description
	}
	return ""
}

func (o PublicRoadExam) SectionValue(string) string { return "" }

func (o PublicRoadExam) RenderBlocks() []RenderBlock {
	return []RenderBlock{
		{Kind: BlockSectionField, Label: "Via", Field: "road_name", Format: FormatText},
		{Kind: BlockSectionField, Label: "Pavimentação", Field: "road_surface", Format: FormatText},
		{Kind: BlockSectionField, Label: "Sinalização", Field: "signage", Format: FormatText},
		{Kind: BlockSectionField, Label: "Adjacências", Field: "surroundings", Format: FormatMarkdown},
		{Kind: BlockGeoLocation, Label: "Localização", Field: "geo_location", Format: FormatText},
		{Kind: BlockSectionField, Label: "Descrição", Field: "description", Format: FormatMarkdown},
	}
}

// VehicleExam describes a vehicle inspection.
type VehicleExam struct {
	ExamHeader
	Make          string `json:"make"`
	Model         string `json:"model"`
	Plate         string `json:"plate"`
	Color         string `json:"color"`
	ChassisNumber string `json:"chassis_number"`
	Damage        string `json:"damage"`
	Description   string `json:"description"`
}

func (o VehicleExam) Kind() ExamKind     { return KindVehicle }
func (o VehicleExam) Group() GroupKey    { return GroupVehicles }
func (o VehicleExam) Header() ExamHeader { return o.ExamHeader }

func (o VehicleExam) WithHeader(h ExamHeader) ExamObject {
	o.ExamHeader = h
	return o
}

func (o VehicleExam) Clone() ExamObject { return o }

func (o VehicleExam) Field(name string) string {
	switch name {
	case "identification":
		return keyValueLines([][2]string{
			{"Marca", o.Make},
			{"Modelo", o.Model},
			{"Placa", o.Plate},
			{"Cor", o.Color},
			{"Chassi", o.ChassisNumber},
		})
	case "damage":
		return o.Damage
	case "description":
		return o.Description
	}
	return ""
}

func (o VehicleExam) SectionValue(string) string { return "" }

func (o VehicleExam) RenderBlocks() []RenderBlock {
	return []RenderBlock{
		{Kind: BlockSectionField, Label: "Identificação", Field: "identification", Format: FormatKeyValue},
		{Kind: BlockSectionField, Label: "Avarias", Field: "damage", Format: FormatMarkdown},
		{Kind: BlockSectionField, Label: "Descrição", Field: "description", Format: FormatMarkdown},
	}
}

// CadaverExam describes a cadaver examination.
type CadaverExam struct {
	ExamHeader
	Name               string `json:"name"`
	Sex                string `json:"sex"`
	EstimatedAge       string `json:"estimated_age"`
	Clothing           string `json:"clothing"`
	Perinecroscopy     string `json:"perinecroscopy"`
	CadavericPhenomena string `json:"cadaveric_phenomena"`
}

func (o CadaverExam) Kind() ExamKind     { return KindCadaver }
func (o CadaverExam) Group() GroupKey    { return GroupCadavers }
func (o CadaverExam) Header() ExamHeader { return o.ExamHeader }

func (o CadaverExam) WithHeader(h ExamHeader) ExamObject {
	o.ExamHeader = h
	return o
}

func (o CadaverExam) Clone() ExamObject { return o }

func (o CadaverExam) Field(name string) string {
	switch name {
	case "identification":
		return keyValueLines([][2]string{
			{"Nome", o.Name},
			{"Sexo", o.Sex},
			{"Idade aparente", o.EstimatedAge},
		})
	case "clothing":
		return o.Clothing
	case "perinecroscopy":
		return o.Perinecroscopy
	case "cadaveric_phenomena":
		return o.CadavericPhenomena
	}
	return ""
}

func (o CadaverExam) SectionValue(string) string { return "" }

func (o CadaverExam) RenderBlocks() []RenderBlock {
	return []RenderBlock{
		{Kind: BlockSectionField, Label: "Identificação", Field: "identification", Format: FormatKeyValue},
		{Kind: BlockSectionField, Label: "Vestes", Field: "clothing", Format: FormatMarkdown},
		{Kind: BlockSectionField, Label: "Perinecroscopia", Field: "perinecroscopy", Format: FormatMarkdown},
		{Kind: BlockSectionField, Label: "Fenômenos Cadavéricos", Field: "cadaveric_phenomena", Format: FormatMarkdown},
	}
}

func keyValueLines(pairs [][2]string) string {
	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if strings.TrimSpace(p[1]) == "" {
			continue
		}
		lines = append(lines, p[0]+": "+p[1])
	}
	return strings.Join(lines, "\n")
}

// ExamObjectRecord is the persisted envelope for a typed exam object.
type ExamObjectRecord struct {
	Kind    ExamKind        `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeExamObject wraps an exam object in its persistence envelope.
func EncodeExamObject(o ExamObject) (ExamObjectRecord, error) {
	payload, err := json.Marshal(o)
	if err != nil {
		return ExamObjectRecord{}, err
	}
	return ExamObjectRecord{Kind: o.Kind(), Payload: payload}, nil
}

// DecodeExamObject restores a typed exam object from its envelope.
func DecodeExamObject(rec ExamObjectRecord) (ExamObject, error) {
	switch rec.Kind {
	case KindGeneric:
		var o GenericObject
		if err := json.Unmarshal(rec.Payload, &o); err != nil {
			return nil, err
		}
		return o, nil
	case KindPublicRoad:
		var o PublicRoadExam
		if err := json.Unmarshal(rec.Payload, &o); err != nil {
			return nil, err
		}
		return o, nil
	case KindVehicle:
		var o VehicleExam
		if err := json.Unmarshal(rec.Payload, &o); err != nil {
			return nil, err
		}
		return o, nil
	case KindCadaver:
		var o CadaverExam
		if err := json.Unmarshal(rec.Payload, &o); err != nil {
			return nil, err
		}
		return o, nil
	case KindLocation:
		var o LocationExam
		if err := json.Unmarshal(rec.Payload, &o); err != nil {
			return nil, err
		}
		return o, nil
	default:
		return nil, fmt.Errorf("unknown exam object kind %q", rec.Kind)
	}
}
