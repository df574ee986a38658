package memory

import (
	"laudocore/pkg/domain"
)

// CreateReport stores a new report within the transaction.
func (tx *Transaction) CreateReport(r domain.Report) (domain.Report, error) {
	if r.ID == "" {
		r.ID = newID()
	}
	if _, exists := tx.state.reports[r.ID]; exists {
		return domain.Report{}, domain.Validationf("report %q already exists", r.ID)
	}
	r.CreatedAt = tx.now
	r.UpdatedAt = tx.now
	if r.Status == "" {
		r.Status = domain.StatusOpen
	}
	tx.state.reports[r.ID] = r
	tx.recordChange(domain.Change{Entity: domain.EntityReport, Action: domain.ActionCreate, After: r})
	return r, nil
}

// UpdateReport mutates a report using the provided mutator function.
func (tx *Transaction) UpdateReport(id string, mutator func(*domain.Report) error) (domain.Report, error) {
	current, ok := tx.state.reports[id]
	if !ok {
		return domain.Report{}, domain.NotFoundf("report %q not found", id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.Report{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.reports[id] = current
	tx.recordChange(domain.Change{Entity: domain.EntityReport, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteReport removes a report together with its child rows.
func (tx *Transaction) DeleteReport(id string) error {
	current, ok := tx.state.reports[id]
	if !ok {
		return domain.NotFoundf("report %q not found", id)
	}
	for oid, o := range tx.state.objects {
		if o.Header().ReportID == id {
			delete(tx.state.objects, oid)
		}
	}
	for bid, b := range tx.state.textBlocks {
		if b.ReportID == id {
			delete(tx.state.textBlocks, bid)
		}
	}
	for iid, img := range tx.state.images {
		if img.ReportID == id {
			delete(tx.state.images, iid)
		}
	}
	delete(tx.state.reports, id)
	tx.recordChange(domain.Change{Entity: domain.EntityReport, Action: domain.ActionDelete, Before: current})
	return nil
}

// FindReport retrieves a report within the transaction state.
func (tx *Transaction) FindReport(id string) (domain.Report, bool) {
	r, ok := tx.state.reports[id]
	return r, ok
}

// CreateExamObject stores a typed exam object. A zero order is assigned
// max(sibling order)+1 among objects of the same report and kind.
func (tx *Transaction) CreateExamObject(o domain.ExamObject) (domain.ExamObject, error) {
	h := o.Header()
	if h.ID == "" {
		h.ID = newID()
	}
	if _, exists := tx.state.objects[h.ID]; exists {
		return nil, domain.Validationf("exam object %q already exists", h.ID)
	}
	if h.Order <= 0 {
		maxOrder := 0
		for _, sibling := range tx.state.objects {
			sh := sibling.Header()
			if sh.ReportID == h.ReportID && sibling.Kind() == o.Kind() && sh.Order > maxOrder {
				maxOrder = sh.Order
			}
		}
		h.Order = maxOrder + 1
	}
	h.CreatedAt = tx.now
	h.UpdatedAt = tx.now
	o = o.WithHeader(h)
	tx.state.objects[h.ID] = o.Clone()
	tx.recordChange(domain.Change{Entity: domain.EntityExamObject, Action: domain.ActionCreate, After: o.Clone()})
	return o, nil
}

// UpdateExamObject mutates an exam object. The mutator receives a clone and
// returns the replacement value; identity fields are preserved.
func (tx *Transaction) UpdateExamObject(id string, mutator func(domain.ExamObject) (domain.ExamObject, error)) (domain.ExamObject, error) {
	current, ok := tx.state.objects[id]
	if !ok {
		return nil, domain.NotFoundf("exam object %q not found", id)
	}
	before := current.Clone()
	next, err := mutator(current.Clone())
	if err != nil {
		return nil, err
	}
	if next.Kind() != before.Kind() {
		return nil, domain.Validationf("exam object kind is immutable")
	}
	h := next.Header()
	bh := before.Header()
	h.ID = id
	h.ReportID = bh.ReportID
	h.CreatedAt = bh.CreatedAt
	h.UpdatedAt = tx.now
	next = next.WithHeader(h)
	tx.state.objects[id] = next.Clone()
	tx.recordChange(domain.Change{Entity: domain.EntityExamObject, Action: domain.ActionUpdate, Before: before, After: next.Clone()})
	return next, nil
}

// DeleteExamObject removes an exam object and its image rows.
func (tx *Transaction) DeleteExamObject(id string) error {
	current, ok := tx.state.objects[id]
	if !ok {
		return domain.NotFoundf("exam object %q not found", id)
	}
	for iid, img := range tx.state.images {
		if img.OwnerTag == current.Kind() && img.OwnerID == id {
			delete(tx.state.images, iid)
			tx.recordChange(domain.Change{Entity: domain.EntityObjectImage, Action: domain.ActionDelete, Before: img})
		}
	}
	delete(tx.state.objects, id)
	tx.recordChange(domain.Change{Entity: domain.EntityExamObject, Action: domain.ActionDelete, Before: current})
	return nil
}

// FindExamObject retrieves an exam object within the transaction state.
func (tx *Transaction) FindExamObject(id string) (domain.ExamObject, bool) {
	o, ok := tx.state.objects[id]
	if !ok {
		return nil, false
	}
	return o.Clone(), true
}

// ListExamObjects returns the report's objects in declaration order.
func (tx *Transaction) ListExamObjects(reportID string) []domain.ExamObject {
	return transactionView{state: &tx.state}.ListExamObjects(reportID)
}

// CreateTextBlock stores a text block. A zero position is assigned
// max(sibling position)+1 within the owning report.
func (tx *Transaction) CreateTextBlock(b domain.TextBlock) (domain.TextBlock, error) {
	if b.ID == "" {
		b.ID = newID()
	}
	if _, exists := tx.state.textBlocks[b.ID]; exists {
		return domain.TextBlock{}, domain.Validationf("text block %q already exists", b.ID)
	}
	if !b.Placement.Valid() {
		return domain.TextBlock{}, domain.Validationf("unknown placement %q", b.Placement).WithField("placement", "unknown value")
	}
	if b.Placement == domain.PlacementObjectGroupIntro && b.GroupKey == domain.GroupNone {
		return domain.TextBlock{}, domain.Validationf("group intro requires a group key").WithField("group_key", "required")
	}
	if b.Placement != domain.PlacementObjectGroupIntro && b.GroupKey != domain.GroupNone {
		return domain.TextBlock{}, domain.Validationf("group key is only valid on group intros").WithField("group_key", "must be empty")
	}
	if b.Position <= 0 {
		maxPos := 0
		for _, sibling := range tx.state.textBlocks {
			if sibling.ReportID == b.ReportID && sibling.Position > maxPos {
				maxPos = sibling.Position
			}
		}
		b.Position = maxPos + 1
	}
	b.CreatedAt = tx.now
	b.UpdatedAt = tx.now
	tx.state.textBlocks[b.ID] = b
	tx.recordChange(domain.Change{Entity: domain.EntityTextBlock, Action: domain.ActionCreate, After: b})
	return b, nil
}

// UpdateTextBlock mutates a text block. Placement and group key are immutable
// after creation.
func (tx *Transaction) UpdateTextBlock(id string, mutator func(*domain.TextBlock) error) (domain.TextBlock, error) {
	current, ok := tx.state.textBlocks[id]
	if !ok {
		return domain.TextBlock{}, domain.NotFoundf("text block %q not found", id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.TextBlock{}, err
	}
	if current.Placement != before.Placement {
		return domain.TextBlock{}, domain.Validationf("placement is immutable").WithField("placement", "immutable")
	}
	if current.GroupKey != before.GroupKey {
		return domain.TextBlock{}, domain.Validationf("group key is immutable").WithField("group_key", "immutable")
	}
	current.ID = id
	current.ReportID = before.ReportID
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.textBlocks[id] = current
	tx.recordChange(domain.Change{Entity: domain.EntityTextBlock, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteTextBlock removes a text block.
func (tx *Transaction) DeleteTextBlock(id string) error {
	current, ok := tx.state.textBlocks[id]
	if !ok {
		return domain.NotFoundf("text block %q not found", id)
	}
	delete(tx.state.textBlocks, id)
	tx.recordChange(domain.Change{Entity: domain.EntityTextBlock, Action: domain.ActionDelete, Before: current})
	return nil
}

// FindTextBlock retrieves a text block within the transaction state.
func (tx *Transaction) FindTextBlock(id string) (domain.TextBlock, bool) {
	b, ok := tx.state.textBlocks[id]
	return b, ok
}

// ListTextBlocks returns the report's text blocks ordered by position.
func (tx *Transaction) ListTextBlocks(reportID string) []domain.TextBlock {
	return transactionView{state: &tx.state}.ListTextBlocks(reportID)
}

// CreateObjectImage stores an image row. A zero index is assigned
// max(sibling index)+1 among images of the same owner.
func (tx *Transaction) CreateObjectImage(img domain.ObjectImage) (domain.ObjectImage, error) {
	if img.ID == "" {
		img.ID = newID()
	}
	if _, exists := tx.state.images[img.ID]; exists {
		return domain.ObjectImage{}, domain.Validationf("image %q already exists", img.ID)
	}
	if img.Index <= 0 {
		maxIdx := 0
		for _, sibling := range tx.state.images {
			if sibling.OwnerTag == img.OwnerTag && sibling.OwnerID == img.OwnerID && sibling.Index > maxIdx {
				maxIdx = sibling.Index
			}
		}
		img.Index = maxIdx + 1
	}
	img.CreatedAt = tx.now
	img.UpdatedAt = tx.now
	tx.state.images[img.ID] = img
	tx.recordChange(domain.Change{Entity: domain.EntityObjectImage, Action: domain.ActionCreate, After: img})
	return img, nil
}

// UpdateObjectImage mutates an image row.
func (tx *Transaction) UpdateObjectImage(id string, mutator func(*domain.ObjectImage) error) (domain.ObjectImage, error) {
	current, ok := tx.state.images[id]
	if !ok {
		return domain.ObjectImage{}, domain.NotFoundf("image %q not found", id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.ObjectImage{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.images[id] = current
	tx.recordChange(domain.Change{Entity: domain.EntityObjectImage, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteObjectImage removes an image row and compacts the surviving sibling
// indices back into the prefix 1..n.
func (tx *Transaction) DeleteObjectImage(id string) error {
	current, ok := tx.state.images[id]
	if !ok {
		return domain.NotFoundf("image %q not found", id)
	}
	delete(tx.state.images, id)
	tx.recordChange(domain.Change{Entity: domain.EntityObjectImage, Action: domain.ActionDelete, Before: current})
	for i, sibling := range tx.ListObjectImages(current.OwnerTag, current.OwnerID) {
		if sibling.Index == i+1 {
			continue
		}
		before := sibling
		sibling.Index = i + 1
		sibling.UpdatedAt = tx.now
		tx.state.images[sibling.ID] = sibling
		tx.recordChange(domain.Change{Entity: domain.EntityObjectImage, Action: domain.ActionUpdate, Before: before, After: sibling})
	}
	return nil
}

// FindObjectImage retrieves an image row within the transaction state.
func (tx *Transaction) FindObjectImage(id string) (domain.ObjectImage, bool) {
	img, ok := tx.state.images[id]
	return img, ok
}

// ListObjectImages returns an owner's images ordered by index.
func (tx *Transaction) ListObjectImages(owner domain.ExamKind, ownerID string) []domain.ObjectImage {
	return transactionView{state: &tx.state}.ListObjectImages(owner, ownerID)
}

// CreateInstitution stores an institution record.
func (tx *Transaction) CreateInstitution(inst domain.Institution) (domain.Institution, error) {
	if inst.ID == "" {
		inst.ID = newID()
	}
	if _, exists := tx.state.institutions[inst.ID]; exists {
		return domain.Institution{}, domain.Validationf("institution %q already exists", inst.ID)
	}
	inst.CreatedAt = tx.now
	inst.UpdatedAt = tx.now
	tx.state.institutions[inst.ID] = inst
	tx.recordChange(domain.Change{Entity: domain.EntityInstitution, Action: domain.ActionCreate, After: inst})
	return inst, nil
}

// UpdateInstitution mutates an institution record.
func (tx *Transaction) UpdateInstitution(id string, mutator func(*domain.Institution) error) (domain.Institution, error) {
	current, ok := tx.state.institutions[id]
	if !ok {
		return domain.Institution{}, domain.NotFoundf("institution %q not found", id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.Institution{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.institutions[id] = current
	tx.recordChange(domain.Change{Entity: domain.EntityInstitution, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// FindInstitution retrieves an institution within the transaction state.
func (tx *Transaction) FindInstitution(id string) (domain.Institution, bool) {
	inst, ok := tx.state.institutions[id]
	return inst, ok
}

// CreateNucleus stores a nucleus record.
func (tx *Transaction) CreateNucleus(n domain.Nucleus) (domain.Nucleus, error) {
	if n.ID == "" {
		n.ID = newID()
	}
	if _, exists := tx.state.nuclei[n.ID]; exists {
		return domain.Nucleus{}, domain.Validationf("nucleus %q already exists", n.ID)
	}
	n.CreatedAt = tx.now
	n.UpdatedAt = tx.now
	tx.state.nuclei[n.ID] = n
	tx.recordChange(domain.Change{Entity: domain.EntityNucleus, Action: domain.ActionCreate, After: n})
	return n, nil
}

// FindNucleus retrieves a nucleus within the transaction state.
func (tx *Transaction) FindNucleus(id string) (domain.Nucleus, bool) {
	n, ok := tx.state.nuclei[id]
	return n, ok
}

// CreateTeam stores a team record.
func (tx *Transaction) CreateTeam(t domain.Team) (domain.Team, error) {
	if t.ID == "" {
		t.ID = newID()
	}
	if _, exists := tx.state.teams[t.ID]; exists {
		return domain.Team{}, domain.Validationf("team %q already exists", t.ID)
	}
	t.CreatedAt = tx.now
	t.UpdatedAt = tx.now
	tx.state.teams[t.ID] = t
	tx.recordChange(domain.Change{Entity: domain.EntityTeam, Action: domain.ActionCreate, After: t})
	return t, nil
}

// FindTeam retrieves a team within the transaction state.
func (tx *Transaction) FindTeam(id string) (domain.Team, bool) {
	t, ok := tx.state.teams[id]
	return t, ok
}

// CreatePrincipal stores a principal record.
func (tx *Transaction) CreatePrincipal(p domain.Principal) (domain.Principal, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	if _, exists := tx.state.principals[p.ID]; exists {
		return domain.Principal{}, domain.Validationf("principal %q already exists", p.ID)
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.principals[p.ID] = p
	tx.recordChange(domain.Change{Entity: domain.EntityPrincipal, Action: domain.ActionCreate, After: p})
	return p, nil
}

// FindPrincipal retrieves a principal within the transaction state.
func (tx *Transaction) FindPrincipal(id string) (domain.Principal, bool) {
	p, ok := tx.state.principals[id]
	return p, ok
}
