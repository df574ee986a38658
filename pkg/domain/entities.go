// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives of the report authoring core.
package domain

import (
	"strings"
	"time"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityReport identifies a report aggregate record.
	EntityReport EntityType = "report"
	// EntityExamObject identifies any typed exam object record.
	EntityExamObject EntityType = "exam_object"
	// EntityTextBlock identifies a free-text editorial block record.
	EntityTextBlock EntityType = "text_block"
	// EntityObjectImage identifies an ordered exam-object image record.
	EntityObjectImage EntityType = "object_image"
	// EntityInstitution identifies an institution record.
	EntityInstitution EntityType = "institution"
	// EntityNucleus identifies a nucleus record.
	EntityNucleus EntityType = "nucleus"
	// EntityTeam identifies a team record.
	EntityTeam EntityType = "team"
	// EntityPrincipal identifies an authenticated user record.
	EntityPrincipal EntityType = "principal"
)

// ReportStatus represents the report lifecycle states.
type ReportStatus string

// Report lifecycle states. The only transition is open -> closed.
const (
	StatusOpen   ReportStatus = "open"
	StatusClosed ReportStatus = "closed"
)

// Objective enumerates the requested examination objectives.
type Objective string

// Canonical examination objectives.
const (
	ObjectiveInitialExam             Objective = "initial_exam"
	ObjectiveComplementaryExam       Objective = "complementary_exam"
	ObjectiveVehicleExam             Objective = "vehicle_exam"
	ObjectiveSimulatedReconstruction Objective = "simulated_reconstruction"
	ObjectiveOther                   Objective = "other"
)

// Display returns the Portuguese label used in the rendered document.
func (o Objective) Display() string {
	switch o {
	case ObjectiveInitialExam:
		return "Exame pericial inicial"
	case ObjectiveComplementaryExam:
		return "Exame pericial complementar"
	case ObjectiveVehicleExam:
		return "Exame pericial em veículo"
	case ObjectiveSimulatedReconstruction:
		return "Reprodução simulada dos fatos"
	case ObjectiveOther:
		return "Outro"
	default:
		return string(o)
	}
}

// GroupKey is the fixed editorial bucket a typed exam object belongs to.
type GroupKey string

// Editorial group buckets in their fixed document order. GroupNone marks
// ungrouped objects and GroupOther always sorts last.
const (
	GroupLocations GroupKey = "locations"
	GroupVehicles  GroupKey = "vehicles"
	GroupParts     GroupKey = "parts"
	GroupCadavers  GroupKey = "cadavers"
	GroupOther     GroupKey = "other"
	GroupNone      GroupKey = ""
)

// Placement is the editorial position a text block occupies within a report.
type Placement string

// Text block placements.
const (
	PlacementPreamble            Placement = "preamble"
	PlacementSummary             Placement = "summary"
	PlacementTOC                 Placement = "toc"
	PlacementObjectGroupIntro    Placement = "object_group_intro"
	PlacementObservations        Placement = "observations"
	PlacementFinalConsiderations Placement = "final_considerations"
	PlacementConclusion          Placement = "conclusion"
)

// Singleton reports whether at most one block of this placement may exist per
// report. Group intros are unique per (report, group key) instead.
func (p Placement) Singleton() bool {
	switch p {
	case PlacementPreamble, PlacementSummary, PlacementTOC,
		PlacementObservations, PlacementFinalConsiderations, PlacementConclusion:
		return true
	}
	return false
}

// Valid reports whether the placement is one of the fixed editorial positions.
func (p Placement) Valid() bool {
	return p.Singleton() || p == PlacementObjectGroupIntro
}

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Institution is the top level of the organizational hierarchy. Emblems are
// blob keys owned by the institution; reports copy the bytes on close.
type Institution struct {
	Base
	Acronym            string `json:"acronym"`
	Name               string `json:"name"`
	Kind               string `json:"kind"`
	HonoreeTitle       string `json:"honoree_title"`
	HonoreeName        string `json:"honoree_name"`
	EmblemPrimaryKey   string `json:"emblem_primary_key"`
	EmblemSecondaryKey string `json:"emblem_secondary_key"`
}

// Nucleus is an institutional subdivision grouping teams.
type Nucleus struct {
	Base
	InstitutionID string `json:"institution_id"`
	Name          string `json:"name"`
}

// Team is the unit a principal belongs to. IsNucleusTeam marks the default
// team of a nucleus; the header unit line collapses it into the nucleus name.
type Team struct {
	Base
	NucleusID     string `json:"nucleus_id"`
	Name          string `json:"name"`
	IsNucleusTeam bool   `json:"is_nucleus_team"`
}

// Principal is the authenticated user issuing commands. Authentication itself
// is an external collaborator; only the permission surface lives here.
type Principal struct {
	Base
	Name                  string     `json:"name"`
	CanEditReports        bool       `json:"can_edit_reports"`
	CanCreateReports      bool       `json:"can_create_reports"`
	CanCreateReportsUntil *time.Time `json:"can_create_reports_until,omitempty"`
	TeamID                *string    `json:"team_id,omitempty"`
}

// CanEditReportsEffective combines the explicit flag with a team assignment.
func (p Principal) CanEditReportsEffective() bool {
	return p.CanEditReports && p.TeamID != nil
}

// CanCreateReportsEffective combines the explicit flag, a team assignment,
// and the optional validity date (inclusive, compared by calendar day).
func (p Principal) CanCreateReportsEffective(today time.Time) bool {
	if !p.CanCreateReports || p.TeamID == nil {
		return false
	}
	if p.CanCreateReportsUntil == nil {
		return true
	}
	limit := p.CanCreateReportsUntil.Truncate(24 * time.Hour)
	return !today.Truncate(24 * time.Hour).After(limit)
}

// Report is the top-level document aggregate.
type Report struct {
	Base
	AuthorID            string     `json:"author_id"`
	ReportNumber        string     `json:"report_number"`
	Protocol            string     `json:"protocol"`
	Objective           Objective  `json:"objective"`
	Typification        string     `json:"typification"`
	RequestingAuthority string     `json:"requesting_authority"`
	OccurredAt          *time.Time `json:"occurred_at,omitempty"`
	AssignedAt          *time.Time `json:"assigned_at,omitempty"`
	ExaminedAt          *time.Time `json:"examined_at,omitempty"`
	Conclusion          string     `json:"conclusion"`

	Status      ReportStatus `json:"status"`
	IsLocked    bool         `json:"is_locked"`
	PDFKey      string       `json:"pdf_key,omitempty"`
	ConcludedAt *time.Time   `json:"concluded_at,omitempty"`

	InstitutionID *string `json:"institution_id,omitempty"`
	NucleusID     *string `json:"nucleus_id,omitempty"`
	TeamID        *string `json:"team_id,omitempty"`

	InstitutionAcronymSnapshot string     `json:"institution_acronym_snapshot,omitempty"`
	InstitutionNameSnapshot    string     `json:"institution_name_snapshot,omitempty"`
	InstitutionKindSnapshot    string     `json:"institution_kind_snapshot,omitempty"`
	NucleusNameSnapshot        string     `json:"nucleus_name_snapshot,omitempty"`
	TeamNameSnapshot           string     `json:"team_name_snapshot,omitempty"`
	HonoreeTitleSnapshot       string     `json:"honoree_title_snapshot,omitempty"`
	HonoreeNameSnapshot        string     `json:"honoree_name_snapshot,omitempty"`
	EmblemPrimarySnapshot      string     `json:"emblem_primary_snapshot,omitempty"`
	EmblemSecondarySnapshot    string     `json:"emblem_secondary_snapshot,omitempty"`
	OrganizationFrozenAt       *time.Time `json:"organization_frozen_at,omitempty"`
}

// CanEdit is the report-level predicate admitting state changes.
func (r Report) CanEdit() bool {
	return r.Status == StatusOpen && !r.IsLocked
}

// Frozen reports whether the organizational snapshot has been captured.
// Once frozen, neither the snapshot fields nor the organizational links
// may change.
func (r Report) Frozen() bool {
	return r.OrganizationFrozenAt != nil
}

// SnapshotComplete reports whether every snapshot field required on a closed
// report is populated.
func (r Report) SnapshotComplete() bool {
	fields := []string{
		r.InstitutionAcronymSnapshot,
		r.InstitutionNameSnapshot,
		r.InstitutionKindSnapshot,
		r.NucleusNameSnapshot,
		r.TeamNameSnapshot,
		r.HonoreeTitleSnapshot,
		r.HonoreeNameSnapshot,
		r.EmblemPrimarySnapshot,
		r.EmblemSecondarySnapshot,
	}
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return false
		}
	}
	return true
}

// TextBlock is a free-text entry attached to a fixed editorial position.
// Placement and group key are immutable after creation.
type TextBlock struct {
	Base
	ReportID  string    `json:"report_id"`
	Placement Placement `json:"placement"`
	GroupKey  GroupKey  `json:"group_key,omitempty"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Position  int       `json:"position"`
}

// ObjectImage is an ordered image attached to a typed exam object. The owner
// is referenced polymorphically by kind tag plus id, and Index is unique
// among images of the same owner.
type ObjectImage struct {
	Base
	ReportID string   `json:"report_id"`
	OwnerTag ExamKind `json:"owner_tag"`
	OwnerID  string   `json:"owner_id"`
	BlobKey  string   `json:"blob_key"`
	Caption  string   `json:"caption"`
	Index    int      `json:"index"`
}
