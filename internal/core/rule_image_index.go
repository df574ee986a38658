package core

import (
	"context"
	"fmt"
	"sort"

	"laudocore/pkg/domain"
)

// NewImageIndexRule returns the rule enforcing that the images of an exam
// object carry index values forming the prefix 1..n.
func NewImageIndexRule() domain.Rule {
	return imageIndexRule{}
}

type imageIndexRule struct{}

func (imageIndexRule) Name() string { return "image_index_prefix" }

func (imageIndexRule) Evaluate(_ context.Context, view domain.TransactionView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, r := range view.ListReports() {
		for _, obj := range view.ListExamObjects(r.ID) {
			h := obj.Header()
			images := view.ListObjectImages(obj.Kind(), h.ID)
			if len(images) == 0 {
				continue
			}
			indexes := make([]int, 0, len(images))
			for _, img := range images {
				indexes = append(indexes, img.Index)
			}
			sort.Ints(indexes)
			for i, idx := range indexes {
				if idx != i+1 {
					res.Violations = append(res.Violations, domain.Violation{
						Rule:     "image_index_prefix",
						Severity: domain.SeverityBlock,
						Message:  fmt.Sprintf("object %s images do not form index prefix 1..%d", h.ID, len(images)),
						Entity:   domain.EntityObjectImage,
						EntityID: h.ID,
					})
					break
				}
			}
		}
	}
	return res, nil
}
