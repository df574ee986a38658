package core

import (
	"context"

	"laudocore/pkg/domain"
)

// Organizational records are administered outside the report authoring
// surface; these operations carry no principal gate.

// CreateInstitution persists a new institution.
func (s *Service) CreateInstitution(ctx context.Context, inst domain.Institution) (domain.Institution, error) {
	var created domain.Institution
	err := s.instrument(ctx, "create_institution", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = tx.CreateInstitution(inst)
			return err
		})
		return err
	})
	return created, err
}

// UpdateInstitution applies the mutator to an institution. Frozen reports are
// unaffected; their header derives from the snapshot columns.
func (s *Service) UpdateInstitution(ctx context.Context, id string, mutator func(*domain.Institution) error) (domain.Institution, error) {
	var updated domain.Institution
	err := s.instrument(ctx, "update_institution", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			updated, err = tx.UpdateInstitution(id, mutator)
			return err
		})
		return err
	})
	return updated, err
}

// CreateNucleus persists a new nucleus.
func (s *Service) CreateNucleus(ctx context.Context, nucleus domain.Nucleus) (domain.Nucleus, error) {
	var created domain.Nucleus
	err := s.instrument(ctx, "create_nucleus", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = tx.CreateNucleus(nucleus)
			return err
		})
		return err
	})
	return created, err
}

// CreateTeam persists a new team.
func (s *Service) CreateTeam(ctx context.Context, team domain.Team) (domain.Team, error) {
	var created domain.Team
	err := s.instrument(ctx, "create_team", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = tx.CreateTeam(team)
			return err
		})
		return err
	})
	return created, err
}

// CreatePrincipal persists a new principal.
func (s *Service) CreatePrincipal(ctx context.Context, principal domain.Principal) (domain.Principal, error) {
	var created domain.Principal
	err := s.instrument(ctx, "create_principal", func(ctx context.Context) error {
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = tx.CreatePrincipal(principal)
			return err
		})
		return err
	})
	return created, err
}
