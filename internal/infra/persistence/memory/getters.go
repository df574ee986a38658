package memory

import (
	"laudocore/pkg/domain"
)

// GetReport returns a report by id.
func (s *Store) GetReport(id string) (domain.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.state.reports[id]
	return r, ok
}

// ListReports returns all reports ordered by creation time.
func (s *Store) ListReports() []domain.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionView{state: &s.state}.ListReports()
}

// ListReportsByAuthor returns the author's reports ordered by creation time.
func (s *Store) ListReportsByAuthor(authorID string) []domain.Report {
	all := s.ListReports()
	out := all[:0]
	for _, r := range all {
		if r.AuthorID == authorID {
			out = append(out, r)
		}
	}
	return out
}

// ListExamObjects returns the report's exam objects in declaration order.
func (s *Store) ListExamObjects(reportID string) []domain.ExamObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionView{state: &s.state}.ListExamObjects(reportID)
}

// ListTextBlocks returns the report's text blocks ordered by position.
func (s *Store) ListTextBlocks(reportID string) []domain.TextBlock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionView{state: &s.state}.ListTextBlocks(reportID)
}

// ListObjectImages returns an owner's images ordered by index.
func (s *Store) ListObjectImages(owner domain.ExamKind, ownerID string) []domain.ObjectImage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return transactionView{state: &s.state}.ListObjectImages(owner, ownerID)
}

// GetInstitution returns an institution by id.
func (s *Store) GetInstitution(id string) (domain.Institution, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.state.institutions[id]
	return inst, ok
}

// GetNucleus returns a nucleus by id.
func (s *Store) GetNucleus(id string) (domain.Nucleus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.state.nuclei[id]
	return n, ok
}

// GetTeam returns a team by id.
func (s *Store) GetTeam(id string) (domain.Team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.state.teams[id]
	return t, ok
}

// GetPrincipal returns a principal by id.
func (s *Store) GetPrincipal(id string) (domain.Principal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.principals[id]
	return p, ok
}
