package core

import (
	"context"

	"laudocore/pkg/domain"
)

// CreateTextBlock adds a text block to an open report.
func (s *Service) CreateTextBlock(ctx context.Context, principal domain.Principal, reportID string, block domain.TextBlock) (domain.TextBlock, error) {
	var created domain.TextBlock
	err := s.instrument(ctx, "create_text_block", func(ctx context.Context) error {
		if _, err := s.editableReport(principal, reportID); err != nil {
			return err
		}
		block.ReportID = reportID
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = tx.CreateTextBlock(block)
			return err
		})
		return err
	})
	return created, err
}

// UpdateTextBlock applies the mutator to a text block of an open report.
// Placement and group key are immutable.
func (s *Service) UpdateTextBlock(ctx context.Context, principal domain.Principal, reportID, blockID string, mutator func(*domain.TextBlock) error) (domain.TextBlock, error) {
	var updated domain.TextBlock
	err := s.instrument(ctx, "update_text_block", func(ctx context.Context) error {
		if _, err := s.editableReport(principal, reportID); err != nil {
			return err
		}
		if !s.blockBelongs(reportID, blockID) {
			return domain.NotFoundf("text block not found")
		}
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			updated, err = tx.UpdateTextBlock(blockID, mutator)
			return err
		})
		return err
	})
	return updated, err
}

// DeleteTextBlock removes a text block from an open report.
func (s *Service) DeleteTextBlock(ctx context.Context, principal domain.Principal, reportID, blockID string) error {
	return s.instrument(ctx, "delete_text_block", func(ctx context.Context) error {
		if _, err := s.editableReport(principal, reportID); err != nil {
			return err
		}
		if !s.blockBelongs(reportID, blockID) {
			return domain.NotFoundf("text block not found")
		}
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.DeleteTextBlock(blockID)
		})
		return err
	})
}

// ListTextBlocks returns the report's text blocks in position order.
func (s *Service) ListTextBlocks(ctx context.Context, principal domain.Principal, reportID string) ([]domain.TextBlock, error) {
	var out []domain.TextBlock
	err := s.instrument(ctx, "list_text_blocks", func(context.Context) error {
		if _, err := s.ownedReport(principal, reportID); err != nil {
			return err
		}
		out = s.store.ListTextBlocks(reportID)
		return nil
	})
	return out, err
}

func (s *Service) blockBelongs(reportID, blockID string) bool {
	for _, b := range s.store.ListTextBlocks(reportID) {
		if b.ID == blockID {
			return true
		}
	}
	return false
}

// UpsertTextBlock writes the body of the block addressed by (report,
// placement[, group key]): an existing match is updated in place, otherwise a
// new block is created with the placement locked to the request. A group
// intro without a group key is a degenerate request.
func (s *Service) UpsertTextBlock(ctx context.Context, principal domain.Principal, reportID string, placement domain.Placement, groupKey domain.GroupKey, title, body string) (domain.TextBlock, error) {
	var out domain.TextBlock
	err := s.instrument(ctx, "upsert_text_block", func(ctx context.Context) error {
		if _, err := s.editableReport(principal, reportID); err != nil {
			return err
		}
		if !placement.Valid() {
			return domain.Validationf("unknown placement %q", placement).WithField("placement", "invalid")
		}
		if placement == domain.PlacementObjectGroupIntro && groupKey == domain.GroupNone {
			return domain.Validationf("group intro requires a group key").WithField("group_key", "required")
		}
		if placement != domain.PlacementObjectGroupIntro {
			groupKey = domain.GroupNone
		}

		var existing *domain.TextBlock
		for _, b := range s.store.ListTextBlocks(reportID) {
			if b.Placement != placement {
				continue
			}
			if placement == domain.PlacementObjectGroupIntro && b.GroupKey != groupKey {
				continue
			}
			match := b
			existing = &match
			break
		}

		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			if existing != nil {
				out, txErr = tx.UpdateTextBlock(existing.ID, func(b *domain.TextBlock) error {
					b.Title = title
					b.Body = body
					return nil
				})
				return txErr
			}
			out, txErr = tx.CreateTextBlock(domain.TextBlock{
				ReportID:  reportID,
				Placement: placement,
				GroupKey:  groupKey,
				Title:     title,
				Body:      body,
			})
			return txErr
		})
		return err
	})
	return out, err
}
