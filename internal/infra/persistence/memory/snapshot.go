package memory

import (
	"fmt"

	"laudocore/pkg/domain"
)

// Snapshot is the serializable full-state export used by the durable backends
// to persist the store after each successful transaction.
type Snapshot struct {
	Reports      []domain.Report           `json:"reports"`
	Objects      []domain.ExamObjectRecord `json:"objects"`
	TextBlocks   []domain.TextBlock        `json:"text_blocks"`
	Images       []domain.ObjectImage      `json:"images"`
	Institutions []domain.Institution      `json:"institutions"`
	Nuclei       []domain.Nucleus          `json:"nuclei"`
	Teams        []domain.Team             `json:"teams"`
	Principals   []domain.Principal        `json:"principals"`
}

// ExportState captures the current store contents. Exam objects are wrapped
// in their typed envelopes so the snapshot round-trips through JSON.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snap Snapshot
	view := transactionView{state: &s.state}
	snap.Reports = view.ListReports()
	for _, r := range snap.Reports {
		for _, o := range view.ListExamObjects(r.ID) {
			rec, err := domain.EncodeExamObject(o)
			if err != nil {
				panic(fmt.Errorf("memory store export object: %w", err))
			}
			snap.Objects = append(snap.Objects, rec)
		}
		snap.TextBlocks = append(snap.TextBlocks, view.ListTextBlocks(r.ID)...)
	}
	for _, img := range s.state.images {
		snap.Images = append(snap.Images, img)
	}
	for _, inst := range s.state.institutions {
		snap.Institutions = append(snap.Institutions, inst)
	}
	for _, n := range s.state.nuclei {
		snap.Nuclei = append(snap.Nuclei, n)
	}
	for _, t := range s.state.teams {
		snap.Teams = append(snap.Teams, t)
	}
	for _, p := range s.state.principals {
		snap.Principals = append(snap.Principals, p)
	}
	return snap
}

// ImportState replaces the store contents with the snapshot. Invalid exam
// object envelopes fail the import.
func (s *Store) ImportState(snap Snapshot) error {
	state := newMemoryState()
	for _, r := range snap.Reports {
		state.reports[r.ID] = r
	}
	for _, rec := range snap.Objects {
		o, err := domain.DecodeExamObject(rec)
		if err != nil {
			return fmt.Errorf("import exam object: %w", err)
		}
		state.objects[o.Header().ID] = o
	}
	for _, b := range snap.TextBlocks {
		state.textBlocks[b.ID] = b
	}
	for _, img := range snap.Images {
		state.images[img.ID] = img
	}
	for _, inst := range snap.Institutions {
		state.institutions[inst.ID] = inst
	}
	for _, n := range snap.Nuclei {
		state.nuclei[n.ID] = n
	}
	for _, t := range snap.Teams {
		state.teams[t.ID] = t
	}
	for _, p := range snap.Principals {
		state.principals[p.ID] = p
	}

	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	return nil
}
