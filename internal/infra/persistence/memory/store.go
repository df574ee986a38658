// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"laudocore/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain
// persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type memoryState struct {
	reports      map[string]domain.Report
	objects      map[string]domain.ExamObject
	textBlocks   map[string]domain.TextBlock
	images       map[string]domain.ObjectImage
	institutions map[string]domain.Institution
	nuclei       map[string]domain.Nucleus
	teams        map[string]domain.Team
	principals   map[string]domain.Principal
}

func newMemoryState() memoryState {
	return memoryState{
		reports:      make(map[string]domain.Report),
		objects:      make(map[string]domain.ExamObject),
		textBlocks:   make(map[string]domain.TextBlock),
		images:       make(map[string]domain.ObjectImage),
		institutions: make(map[string]domain.Institution),
		nuclei:       make(map[string]domain.Nucleus),
		teams:        make(map[string]domain.Team),
		principals:   make(map[string]domain.Principal),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.reports {
		cloned.reports[k] = v
	}
	for k, v := range s.objects {
		cloned.objects[k] = v.Clone()
	}
	for k, v := range s.textBlocks {
		cloned.textBlocks[k] = v
	}
	for k, v := range s.images {
		cloned.images[k] = v
	}
	for k, v := range s.institutions {
		cloned.institutions[k] = v
	}
	for k, v := range s.nuclei {
		cloned.nuclei[k] = v
	}
	for k, v := range s.teams {
		cloned.teams[k] = v
	}
	for k, v := range s.principals {
		cloned.principals[k] = v
	}
	return cloned
}

// Store provides an in-memory transactional store for the report domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *domain.RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *domain.RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// SetNow overrides the transaction clock; tests use it for deterministic
// timestamps.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now != nil {
		s.nowFn = now
	}
}

func newID() string { return uuid.NewString() }

// Transaction represents a mutation set applied to the store state.
type Transaction struct {
	state   memoryState
	changes []domain.Change
	now     time.Time
}

var _ domain.Transaction = (*Transaction)(nil)

// transactionView exposes a read-only snapshot of the transactional state.
type transactionView struct {
	state *memoryState
}

var _ domain.TransactionView = transactionView{}

// ListReports returns all reports ordered by creation time then id.
func (v transactionView) ListReports() []domain.Report {
	out := make([]domain.Report, 0, len(v.state.reports))
	for _, r := range v.state.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FindReport retrieves a report by id.
func (v transactionView) FindReport(id string) (domain.Report, bool) {
	r, ok := v.state.reports[id]
	return r, ok
}

// ListExamObjects returns the report's exam objects in declaration order:
// ascending order value, creation time and id break ties.
func (v transactionView) ListExamObjects(reportID string) []domain.ExamObject {
	var out []domain.ExamObject
	for _, o := range v.state.objects {
		if o.Header().ReportID == reportID {
			out = append(out, o.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		hi, hj := out[i].Header(), out[j].Header()
		if hi.Order != hj.Order {
			return hi.Order < hj.Order
		}
		if !hi.CreatedAt.Equal(hj.CreatedAt) {
			return hi.CreatedAt.Before(hj.CreatedAt)
		}
		return hi.ID < hj.ID
	})
	return out
}

// ListTextBlocks returns the report's text blocks ordered by position.
func (v transactionView) ListTextBlocks(reportID string) []domain.TextBlock {
	var out []domain.TextBlock
	for _, b := range v.state.textBlocks {
		if b.ReportID == reportID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ListObjectImages returns an owner's images ordered by index.
func (v transactionView) ListObjectImages(owner domain.ExamKind, ownerID string) []domain.ObjectImage {
	var out []domain.ObjectImage
	for _, img := range v.state.images {
		if img.OwnerTag == owner && img.OwnerID == ownerID {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Index != out[j].Index {
			return out[i].Index < out[j].Index
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FindInstitution retrieves an institution by id.
func (v transactionView) FindInstitution(id string) (domain.Institution, bool) {
	inst, ok := v.state.institutions[id]
	return inst, ok
}

// FindNucleus retrieves a nucleus by id.
func (v transactionView) FindNucleus(id string) (domain.Nucleus, bool) {
	n, ok := v.state.nuclei[id]
	return n, ok
}

// FindTeam retrieves a team by id.
func (v transactionView) FindTeam(id string) (domain.Team, bool) {
	t, ok := v.state.teams[id]
	return t, ok
}

// RunInTransaction executes fn within a transactional copy of the store state.
// Registered rules are evaluated against the resulting snapshot; a blocking
// violation discards the whole mutation set.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		view := transactionView{state: &tx.state}
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(ctx context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(transactionView{state: &snapshot})
}

// Snapshot exposes the transactional state to rules mid-transaction.
func (tx *Transaction) Snapshot() domain.TransactionView {
	return transactionView{state: &tx.state}
}

func (tx *Transaction) recordChange(change domain.Change) {
	tx.changes = append(tx.changes, change)
}
