package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView

	CreateReport(Report) (Report, error)
	UpdateReport(id string, mutator func(*Report) error) (Report, error)
	DeleteReport(id string) error
	FindReport(id string) (Report, bool)

	CreateExamObject(ExamObject) (ExamObject, error)
	UpdateExamObject(id string, mutator func(ExamObject) (ExamObject, error)) (ExamObject, error)
	DeleteExamObject(id string) error
	FindExamObject(id string) (ExamObject, bool)
	ListExamObjects(reportID string) []ExamObject

	CreateTextBlock(TextBlock) (TextBlock, error)
	UpdateTextBlock(id string, mutator func(*TextBlock) error) (TextBlock, error)
	DeleteTextBlock(id string) error
	FindTextBlock(id string) (TextBlock, bool)
	ListTextBlocks(reportID string) []TextBlock

	CreateObjectImage(ObjectImage) (ObjectImage, error)
	UpdateObjectImage(id string, mutator func(*ObjectImage) error) (ObjectImage, error)
	DeleteObjectImage(id string) error
	FindObjectImage(id string) (ObjectImage, bool)
	ListObjectImages(owner ExamKind, ownerID string) []ObjectImage

	CreateInstitution(Institution) (Institution, error)
	UpdateInstitution(id string, mutator func(*Institution) error) (Institution, error)
	FindInstitution(id string) (Institution, bool)
	CreateNucleus(Nucleus) (Nucleus, error)
	FindNucleus(id string) (Nucleus, bool)
	CreateTeam(Team) (Team, error)
	FindTeam(id string) (Team, bool)
	CreatePrincipal(Principal) (Principal, error)
	FindPrincipal(id string) (Principal, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView interface {
	ListReports() []Report
	FindReport(id string) (Report, bool)
	ListExamObjects(reportID string) []ExamObject
	ListTextBlocks(reportID string) []TextBlock
	ListObjectImages(owner ExamKind, ownerID string) []ObjectImage
	FindInstitution(id string) (Institution, bool)
	FindNucleus(id string) (Nucleus, bool)
	FindTeam(id string) (Team, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetReport(id string) (Report, bool)
	ListReports() []Report
	ListReportsByAuthor(authorID string) []Report
	ListExamObjects(reportID string) []ExamObject
	ListTextBlocks(reportID string) []TextBlock
	ListObjectImages(owner ExamKind, ownerID string) []ObjectImage
	GetInstitution(id string) (Institution, bool)
	GetNucleus(id string) (Nucleus, bool)
	GetTeam(id string) (Team, bool)
	GetPrincipal(id string) (Principal, bool)
}
