package core

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"laudocore/internal/blob"
	"laudocore/pkg/domain"
)

// CreateExamObject adds a typed exam object to an open report. The object's
// header report id is forced to the addressed report.
func (s *Service) CreateExamObject(ctx context.Context, principal domain.Principal, reportID string, obj domain.ExamObject) (domain.ExamObject, error) {
	var created domain.ExamObject
	err := s.instrument(ctx, "create_exam_object", func(ctx context.Context) error {
		if _, err := s.editableReport(principal, reportID); err != nil {
			return err
		}
		h := obj.Header()
		h.ReportID = reportID
		obj = obj.WithHeader(h)
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			created, err = tx.CreateExamObject(obj)
			return err
		})
		return err
	})
	return created, err
}

// UpdateExamObject applies the mutator to an exam object of an open report.
// The object's kind is immutable.
func (s *Service) UpdateExamObject(ctx context.Context, principal domain.Principal, reportID, objectID string, mutator func(domain.ExamObject) (domain.ExamObject, error)) (domain.ExamObject, error) {
	var updated domain.ExamObject
	err := s.instrument(ctx, "update_exam_object", func(ctx context.Context) error {
		if _, err := s.editableReport(principal, reportID); err != nil {
			return err
		}
		if err := s.requireObject(reportID, objectID); err != nil {
			return err
		}
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var err error
			updated, err = tx.UpdateExamObject(objectID, mutator)
			return err
		})
		return err
	})
	return updated, err
}

// DeleteExamObject removes an exam object and, after commit, its image blob
// prefix.
func (s *Service) DeleteExamObject(ctx context.Context, principal domain.Principal, reportID, objectID string) error {
	return s.instrument(ctx, "delete_exam_object", func(ctx context.Context) error {
		if _, err := s.editableReport(principal, reportID); err != nil {
			return err
		}
		var kind domain.ExamKind
		found := false
		for _, obj := range s.store.ListExamObjects(reportID) {
			if obj.Header().ID == objectID {
				kind = obj.Kind()
				found = true
				break
			}
		}
		if !found {
			return domain.NotFoundf("exam object not found")
		}
		if _, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.DeleteExamObject(objectID)
		}); err != nil {
			return err
		}
		if _, err := s.blobs.DeletePrefix(ctx, objectPrefix(reportID, kind, objectID)); err != nil {
			s.logger.Warn("object blob cleanup failed", "object_id", objectID, "error", err)
		}
		return nil
	})
}

// ListExamObjects returns the report's exam objects in document order.
func (s *Service) ListExamObjects(ctx context.Context, principal domain.Principal, reportID string) ([]domain.ExamObject, error) {
	var out []domain.ExamObject
	err := s.instrument(ctx, "list_exam_objects", func(context.Context) error {
		if _, err := s.ownedReport(principal, reportID); err != nil {
			return err
		}
		out = s.store.ListExamObjects(reportID)
		return nil
	})
	return out, err
}

// ReorderItem is one entry of a reorder request. A nil Order means "use the
// list position".
type ReorderItem struct {
	ID    string `json:"id"`
	Kind  string `json:"type"`
	Order *int   `json:"order,omitempty"`
}

// ReorderExamObjects rewrites the order fields of the listed objects. An
// empty list is a no-op; an unknown object id fails the whole request.
func (s *Service) ReorderExamObjects(ctx context.Context, principal domain.Principal, reportID string, items []ReorderItem) error {
	return s.instrument(ctx, "reorder_exam_objects", func(ctx context.Context) error {
		if _, err := s.editableReport(principal, reportID); err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for _, item := range items {
			if item.ID == "" {
				return domain.Validationf("reorder item missing id").WithField("id", "required")
			}
		}
		known := make(map[string]bool)
		for _, obj := range s.store.ListExamObjects(reportID) {
			known[obj.Header().ID] = true
		}
		for _, item := range items {
			if !known[item.ID] {
				return domain.NotFoundf("exam object not found")
			}
		}
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			for pos, item := range items {
				order := pos + 1
				if item.Order != nil {
					order = *item.Order
				}
				if _, err := tx.UpdateExamObject(item.ID, func(obj domain.ExamObject) (domain.ExamObject, error) {
					h := obj.Header()
					h.Order = order
					return obj.WithHeader(h), nil
				}); err != nil {
					return err
				}
			}
			return nil
		})
		return err
	})
}

func (s *Service) requireObject(reportID, objectID string) error {
	for _, obj := range s.store.ListExamObjects(reportID) {
		if obj.Header().ID == objectID {
			return nil
		}
	}
	return domain.NotFoundf("exam object not found")
}

// AttachObjectImage stores the image bytes under the object's blob prefix and
// records the ordered image row. A failed row commit removes the blob again.
func (s *Service) AttachObjectImage(ctx context.Context, principal domain.Principal, reportID, objectID, filename string, data []byte, caption string) (domain.ObjectImage, error) {
	var created domain.ObjectImage
	err := s.instrument(ctx, "attach_object_image", func(ctx context.Context) error {
		if _, err := s.editableReport(principal, reportID); err != nil {
			return err
		}
		var kind domain.ExamKind
		found := false
		for _, obj := range s.store.ListExamObjects(reportID) {
			if obj.Header().ID == objectID {
				kind = obj.Kind()
				found = true
				break
			}
		}
		if !found {
			return domain.NotFoundf("exam object not found")
		}
		if len(data) == 0 {
			return domain.Validationf("image bytes required").WithField("file", "required")
		}
		if filename == "" {
			filename = "image"
		}

		key := s.uniqueImageKey(ctx, objectPrefix(reportID, kind, objectID), filename)
		if _, err := s.blobs.Put(ctx, key, bytes.NewReader(data), blob.PutOptions{}); err != nil {
			return domain.Infraf("store image: %v", err)
		}
		_, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			created, txErr = tx.CreateObjectImage(domain.ObjectImage{
				ReportID: reportID,
				OwnerTag: kind,
				OwnerID:  objectID,
				BlobKey:  key,
				Caption:  caption,
			})
			return txErr
		})
		if err != nil {
			if _, delErr := s.blobs.Delete(ctx, key); delErr != nil {
				s.logger.Warn("image rollback cleanup failed", "key", key, "error", delErr)
			}
			return err
		}
		return nil
	})
	return created, err
}

// uniqueImageKey returns prefix+filename, suffixing the stem with a counter
// when that key is already taken.
func (s *Service) uniqueImageKey(ctx context.Context, prefix, filename string) string {
	key := prefix + filename
	if _, err := s.blobs.Head(ctx, key); err != nil {
		return key
	}
	ext := path.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for i := 2; ; i++ {
		key = fmt.Sprintf("%s%s_%d%s", prefix, stem, i, ext)
		if _, err := s.blobs.Head(ctx, key); err != nil {
			return key
		}
	}
}

// DeleteObjectImage removes the image row and, after commit, its bytes.
func (s *Service) DeleteObjectImage(ctx context.Context, principal domain.Principal, reportID, imageID string) error {
	return s.instrument(ctx, "delete_object_image", func(ctx context.Context) error {
		if _, err := s.editableReport(principal, reportID); err != nil {
			return err
		}
		var key string
		found := false
		for _, obj := range s.store.ListExamObjects(reportID) {
			for _, img := range s.store.ListObjectImages(obj.Kind(), obj.Header().ID) {
				if img.ID == imageID {
					key = img.BlobKey
					found = true
					break
				}
			}
		}
		if !found {
			return domain.NotFoundf("image not found")
		}
		if _, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.DeleteObjectImage(imageID)
		}); err != nil {
			return err
		}
		if key != "" {
			if _, err := s.blobs.Delete(ctx, key); err != nil {
				s.logger.Warn("image blob cleanup failed", "key", key, "error", err)
			}
		}
		return nil
	})
}
