package core

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"laudocore/internal/blob"
	"laudocore/internal/infra/persistence/memory"
	"laudocore/internal/render"
	"laudocore/pkg/domain"
)

var pdfBytes = []byte("%PDF-1.4 fake document")

type fixture struct {
	svc    *Service
	store  *memory.Store
	blobs  blob.Store
	author domain.Principal
	instID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore(NewDefaultRulesEngine())
	blobs := blob.NewMemory()
	svc := NewService(store, blobs)

	if _, err := blobs.Put(ctx, "institutions/i1/emblem_primary.png", strings.NewReader("primary-bytes"), blob.PutOptions{ContentType: "image/png"}); err != nil {
		t.Fatalf("seed primary emblem: %v", err)
	}
	if _, err := blobs.Put(ctx, "institutions/i1/emblem_secondary.png", strings.NewReader("secondary-bytes"), blob.PutOptions{ContentType: "image/png"}); err != nil {
		t.Fatalf("seed secondary emblem: %v", err)
	}

	if _, err := svc.CreateInstitution(ctx, domain.Institution{
		Base:               domain.Base{ID: "i1"},
		Acronym:            "SPTC",
		Name:               "Superintendência da Polícia Técnico-Científica",
		Kind:               "state",
		HonoreeTitle:       "Perito Criminal Dr.",
		HonoreeName:        "Octávio Eduardo de Brito Alvarenga",
		EmblemPrimaryKey:   "institutions/i1/emblem_primary.png",
		EmblemSecondaryKey: "institutions/i1/emblem_secondary.png",
	}); err != nil {
		t.Fatalf("seed institution: %v", err)
	}
	if _, err := svc.CreateNucleus(ctx, domain.Nucleus{
		Base: domain.Base{ID: "n1"}, InstitutionID: "i1", Name: "Núcleo Campinas",
	}); err != nil {
		t.Fatalf("seed nucleus: %v", err)
	}
	if _, err := svc.CreateTeam(ctx, domain.Team{
		Base: domain.Base{ID: "t1"}, NucleusID: "n1", Name: "Equipe 01",
	}); err != nil {
		t.Fatalf("seed team: %v", err)
	}
	teamID := "t1"
	author, err := svc.CreatePrincipal(ctx, domain.Principal{
		Base: domain.Base{ID: "p1"}, Name: "Perita Ana",
		CanEditReports: true, CanCreateReports: true, TeamID: &teamID,
	})
	if err != nil {
		t.Fatalf("seed principal: %v", err)
	}
	return &fixture{svc: svc, store: store, blobs: blobs, author: author, instID: "i1"}
}

func (f *fixture) openReport(t *testing.T, number string) domain.Report {
	t.Helper()
	inst, nucleus, team := "i1", "n1", "t1"
	r, err := f.svc.CreateReport(context.Background(), f.author, domain.Report{
		ReportNumber:  number,
		Typification:  "Art. 302 CTB",
		Objective:     domain.ObjectiveInitialExam,
		InstitutionID: &inst,
		NucleusID:     &nucleus,
		TeamID:        &team,
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	return r
}

func TestCloseReportFreezesHeader(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.openReport(t, "99/2026")

	closed, err := f.svc.CloseReport(ctx, f.author, r.ID, pdfBytes)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != domain.StatusClosed || !closed.IsLocked {
		t.Fatalf("close left report editable: %+v", closed)
	}
	if closed.PDFKey != "reports/"+r.ID+"/final/laudo_99_2026.pdf" {
		t.Fatalf("pdf key = %q", closed.PDFKey)
	}
	if closed.InstitutionAcronymSnapshot != "SPTC" || closed.NucleusNameSnapshot != "Núcleo Campinas" || closed.TeamNameSnapshot != "Equipe 01" {
		t.Fatalf("snapshot fields = %+v", closed)
	}
	if closed.HonoreeNameSnapshot != "Octávio Eduardo de Brito Alvarenga" {
		t.Fatalf("honoree snapshot = %q", closed.HonoreeNameSnapshot)
	}
	if !closed.SnapshotComplete() || closed.OrganizationFrozenAt == nil || closed.ConcludedAt == nil {
		t.Fatalf("freeze incomplete: %+v", closed)
	}

	_, rc, err := f.blobs.Get(ctx, closed.EmblemPrimarySnapshot)
	if err != nil {
		t.Fatalf("emblem snapshot missing: %v", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		t.Fatalf("read emblem snapshot: %v", err)
	}
	_ = rc.Close()
	if buf.String() != "primary-bytes" {
		t.Fatalf("emblem snapshot is not a byte copy: %q", buf.String())
	}
	if _, err := f.blobs.Head(ctx, closed.PDFKey); err != nil {
		t.Fatalf("final pdf missing: %v", err)
	}

	// A later institution rename must not reach the frozen header.
	if _, err := f.svc.UpdateInstitution(ctx, f.instID, func(inst *domain.Institution) error {
		inst.Acronym = "XPTC"
		inst.Name = "Renomeada"
		return nil
	}); err != nil {
		t.Fatalf("rename institution: %v", err)
	}
	stored, _ := f.store.GetReport(r.ID)
	inst, _ := f.store.GetInstitution(f.instID)
	header := stored.HeaderContext(&inst, nil, nil)
	if header.InstitutionAcronym != "SPTC" {
		t.Fatalf("frozen header leaked rename: %q", header.InstitutionAcronym)
	}
}

func TestCloseReportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.openReport(t, "10/2026")

	first, err := f.svc.CloseReport(ctx, f.author, r.ID, pdfBytes)
	if err != nil {
		t.Fatalf("first close: %v", err)
	}
	before, err := f.blobs.List(ctx, "reports/"+r.ID+"/")
	if err != nil {
		t.Fatalf("list blobs: %v", err)
	}

	second, err := f.svc.CloseReport(ctx, f.author, r.ID, []byte("different bytes"))
	if err != nil {
		t.Fatalf("second close: %v", err)
	}
	if second.PDFKey != first.PDFKey || !second.OrganizationFrozenAt.Equal(*first.OrganizationFrozenAt) {
		t.Fatalf("second close altered state: %+v vs %+v", second, first)
	}
	after, err := f.blobs.List(ctx, "reports/"+r.ID+"/")
	if err != nil {
		t.Fatalf("list blobs: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("second close wrote blobs: %d -> %d", len(before), len(after))
	}
}

func TestCloseReportRequiresPDF(t *testing.T) {
	f := newFixture(t)
	r := f.openReport(t, "11/2026")
	_, err := f.svc.CloseReport(context.Background(), f.author, r.ID, nil)
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("close without pdf: err = %v", err)
	}
}

func TestCloseReportRequiresCompleteOrganization(t *testing.T) {
	f := newFixture(t)
	r, err := f.svc.CreateReport(context.Background(), f.author, domain.Report{ReportNumber: "12/2026"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = f.svc.CloseReport(context.Background(), f.author, r.ID, pdfBytes)
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("close without organization: err = %v", err)
	}
	if !strings.Contains(err.Error(), "institution") {
		t.Fatalf("field detail missing: %v", err)
	}
	if stored, _ := f.store.GetReport(r.ID); stored.Status != domain.StatusOpen {
		t.Fatalf("failed close mutated status")
	}
	if blobs, _ := f.blobs.List(context.Background(), "reports/"+r.ID+"/"); len(blobs) != 0 {
		t.Fatalf("failed close left blobs behind: %d", len(blobs))
	}
}

func TestNucleusTeamCollapsesIntoNucleusName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if _, err := f.svc.CreateTeam(ctx, domain.Team{
		Base: domain.Base{ID: "t2"}, NucleusID: "n1", Name: "Equipe padrão", IsNucleusTeam: true,
	}); err != nil {
		t.Fatalf("seed nucleus team: %v", err)
	}
	inst, nucleus, team := "i1", "n1", "t2"
	r, err := f.svc.CreateReport(ctx, f.author, domain.Report{
		ReportNumber: "13/2026", InstitutionID: &inst, NucleusID: &nucleus, TeamID: &team,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	closed, err := f.svc.CloseReport(ctx, f.author, r.ID, pdfBytes)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.TeamNameSnapshot != "Núcleo Campinas" {
		t.Fatalf("nucleus team snapshot = %q", closed.TeamNameSnapshot)
	}
	if !closed.SnapshotComplete() {
		t.Fatalf("collapsed snapshot reported incomplete")
	}
	header := closed.HeaderContext(nil, nil, nil)
	if header.UnitLine != "Núcleo Campinas" {
		t.Fatalf("unit line = %q", header.UnitLine)
	}
}

func TestFrozenSnapshotIsImmutable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.openReport(t, "14/2026")
	if _, err := f.svc.CloseReport(ctx, f.author, r.ID, pdfBytes); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err := f.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateReport(r.ID, func(rep *domain.Report) error {
			rep.InstitutionAcronymSnapshot = "HACKED"
			return nil
		})
		return err
	})
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("snapshot mutation: err = %v", err)
	}
	stored, _ := f.store.GetReport(r.ID)
	if stored.InstitutionAcronymSnapshot != "SPTC" {
		t.Fatalf("snapshot leaked mutation: %q", stored.InstitutionAcronymSnapshot)
	}
}

func TestClosedReportRejectsEdits(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.openReport(t, "15/2026")
	if _, err := f.svc.CloseReport(ctx, f.author, r.ID, pdfBytes); err != nil {
		t.Fatalf("close: %v", err)
	}
	_, err := f.svc.UpdateReport(ctx, f.author, r.ID, func(rep *domain.Report) error {
		rep.Typification = "Outro"
		return nil
	})
	if !domain.IsKind(err, domain.KindState) {
		t.Fatalf("closed edit: err = %v", err)
	}
	err = f.svc.ReorderExamObjects(ctx, f.author, r.ID, []ReorderItem{{ID: "x"}})
	if !domain.IsKind(err, domain.KindState) {
		t.Fatalf("closed reorder: err = %v", err)
	}
}

func TestDeleteReportRemovesBlobPrefix(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.openReport(t, "16/2026")
	obj, err := f.svc.CreateExamObject(ctx, f.author, r.ID, domain.LocationExam{
		ExamHeader: domain.ExamHeader{Title: "Local do fato"},
	})
	if err != nil {
		t.Fatalf("create object: %v", err)
	}
	if _, err := f.svc.AttachObjectImage(ctx, f.author, r.ID, obj.Header().ID, "vista.jpg", []byte("jpg-bytes"), "Vista geral"); err != nil {
		t.Fatalf("attach image: %v", err)
	}
	if blobs, _ := f.blobs.List(ctx, "reports/"+r.ID+"/"); len(blobs) != 1 {
		t.Fatalf("expected 1 blob before delete, got %d", len(blobs))
	}

	if err := f.svc.DeleteReport(ctx, f.author, r.ID); err != nil {
		t.Fatalf("delete report: %v", err)
	}
	if _, ok := f.store.GetReport(r.ID); ok {
		t.Fatalf("report row survived")
	}
	if blobs, _ := f.blobs.List(ctx, "reports/"+r.ID+"/"); len(blobs) != 0 {
		t.Fatalf("blob prefix survived delete: %d", len(blobs))
	}
}

func TestAttachAndDeleteObjectImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.openReport(t, "17/2026")
	obj, err := f.svc.CreateExamObject(ctx, f.author, r.ID, domain.LocationExam{
		ExamHeader: domain.ExamHeader{Title: "Local"},
	})
	if err != nil {
		t.Fatalf("create object: %v", err)
	}
	oid := obj.Header().ID

	var imgs []domain.ObjectImage
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		img, err := f.svc.AttachObjectImage(ctx, f.author, r.ID, oid, name, []byte("bytes-"+name), name)
		if err != nil {
			t.Fatalf("attach %s: %v", name, err)
		}
		imgs = append(imgs, img)
	}
	for i, img := range imgs {
		if img.Index != i+1 {
			t.Fatalf("image %d index = %d", i, img.Index)
		}
	}

	if err := f.svc.DeleteObjectImage(ctx, f.author, r.ID, imgs[1].ID); err != nil {
		t.Fatalf("delete image: %v", err)
	}
	remaining := f.store.ListObjectImages(domain.KindLocation, oid)
	if len(remaining) != 2 {
		t.Fatalf("expected 2 images, got %d", len(remaining))
	}
	if remaining[0].Index != 1 || remaining[1].Index != 2 {
		t.Fatalf("indices not compacted: %d, %d", remaining[0].Index, remaining[1].Index)
	}
	if _, err := f.blobs.Head(ctx, imgs[1].BlobKey); err == nil {
		t.Fatalf("deleted image blob survived")
	}
	if _, err := f.blobs.Head(ctx, imgs[0].BlobKey); err != nil {
		t.Fatalf("sibling blob lost: %v", err)
	}

	_, err = f.svc.AttachObjectImage(ctx, f.author, r.ID, oid, "empty.jpg", nil, "")
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("empty upload: err = %v", err)
	}
}

func TestReorderExamObjects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.openReport(t, "18/2026")
	var ids []string
	for _, title := range []string{"Local 1", "Local 2"} {
		obj, err := f.svc.CreateExamObject(ctx, f.author, r.ID, domain.LocationExam{
			ExamHeader: domain.ExamHeader{Title: title},
		})
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
		ids = append(ids, obj.Header().ID)
	}

	if err := f.svc.ReorderExamObjects(ctx, f.author, r.ID, nil); err != nil {
		t.Fatalf("empty reorder must be a no-op: %v", err)
	}

	err := f.svc.ReorderExamObjects(ctx, f.author, r.ID, []ReorderItem{{ID: "ghost"}})
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("unknown id: err = %v", err)
	}

	if err := f.svc.ReorderExamObjects(ctx, f.author, r.ID, []ReorderItem{{ID: ids[1]}, {ID: ids[0]}}); err != nil {
		t.Fatalf("reorder: %v", err)
	}
	objects := f.store.ListExamObjects(r.ID)
	if objects[0].Header().ID != ids[1] || objects[1].Header().ID != ids[0] {
		t.Fatalf("order not applied: %s, %s", objects[0].Header().ID, objects[1].Header().ID)
	}
}

func TestUpsertTextBlock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.openReport(t, "19/2026")

	first, err := f.svc.UpsertTextBlock(ctx, f.author, r.ID, domain.PlacementSummary, domain.GroupNone, "Resumo", "Primeira versão.")
	if err != nil {
		t.Fatalf("upsert create: %v", err)
	}
	second, err := f.svc.UpsertTextBlock(ctx, f.author, r.ID, domain.PlacementSummary, domain.GroupNone, "Resumo", "Segunda versão.")
	if err != nil {
		t.Fatalf("upsert update: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert created a duplicate block")
	}
	blocks := f.store.ListTextBlocks(r.ID)
	if len(blocks) != 1 || blocks[0].Body != "Segunda versão." {
		t.Fatalf("blocks = %+v", blocks)
	}

	_, err = f.svc.UpsertTextBlock(ctx, f.author, r.ID, domain.PlacementObjectGroupIntro, domain.GroupNone, "", "Intro.")
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("intro without group: err = %v", err)
	}

	if _, err := f.svc.UpsertTextBlock(ctx, f.author, r.ID, domain.PlacementObjectGroupIntro, domain.GroupLocations, "", "Dos locais."); err != nil {
		t.Fatalf("group intro upsert: %v", err)
	}
	if _, err := f.svc.UpsertTextBlock(ctx, f.author, r.ID, domain.PlacementObjectGroupIntro, domain.GroupVehicles, "", "Dos veículos."); err != nil {
		t.Fatalf("second group intro must coexist: %v", err)
	}
	if got := len(f.store.ListTextBlocks(r.ID)); got != 3 {
		t.Fatalf("expected 3 blocks, got %d", got)
	}
}

func TestForeignReportIsInvisible(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.openReport(t, "20/2026")

	teamID := "t1"
	other, err := f.svc.CreatePrincipal(ctx, domain.Principal{
		Base: domain.Base{ID: "p2"}, Name: "Perito Beto",
		CanEditReports: true, CanCreateReports: true, TeamID: &teamID,
	})
	if err != nil {
		t.Fatalf("seed other principal: %v", err)
	}

	if _, err := f.svc.GetReport(ctx, other, r.ID); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("foreign read: err = %v", err)
	}
	if _, err := f.svc.CloseReport(ctx, other, r.ID, pdfBytes); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("foreign close must not disclose existence: err = %v", err)
	}
	if err := f.svc.DeleteReport(ctx, other, r.ID); !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("foreign delete: err = %v", err)
	}
}

func TestCreateReportPermissionGate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	teamID := "t1"
	expired := time.Now().UTC().AddDate(0, 0, -2)
	revoked, err := f.svc.CreatePrincipal(ctx, domain.Principal{
		Base: domain.Base{ID: "p3"}, Name: "Perito Caio",
		CanCreateReports: true, CanCreateReportsUntil: &expired, TeamID: &teamID,
	})
	if err != nil {
		t.Fatalf("seed principal: %v", err)
	}
	_, err = f.svc.CreateReport(ctx, revoked, domain.Report{ReportNumber: "21/2026"})
	if !domain.IsKind(err, domain.KindAuth) {
		t.Fatalf("expired create permission: err = %v", err)
	}

	_, err = f.svc.CreateReport(ctx, f.author, domain.Report{})
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("missing report number: err = %v", err)
	}
}

func TestDuplicateReportNumberBlocked(t *testing.T) {
	f := newFixture(t)
	f.openReport(t, "22/2026")
	_, err := f.svc.CreateReport(context.Background(), f.author, domain.Report{ReportNumber: "22/2026"})
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("duplicate number: err = %v", err)
	}
}

func TestRenderPDFAdmitsClosedReports(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.openReport(t, "23/2026")
	if _, err := f.svc.CreateExamObject(ctx, f.author, r.ID, domain.LocationExam{
		ExamHeader:  domain.ExamHeader{Title: "Local do fato"},
		Description: "Via pública em aclive.",
	}); err != nil {
		t.Fatalf("create object: %v", err)
	}
	if _, err := f.svc.CloseReport(ctx, f.author, r.ID, pdfBytes); err != nil {
		t.Fatalf("close: %v", err)
	}

	doc, err := f.svc.RenderPDF(ctx, f.author, r.ID)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if doc.Filename != "23_2026$art302ctb.pdf" {
		t.Fatalf("filename = %q", doc.Filename)
	}
	if doc.ContentType != "application/pdf" || !bytes.HasPrefix(doc.Bytes, []byte("%PDF")) {
		t.Fatalf("rendered document malformed")
	}
}

func TestRenderPDFResolvesExternalImageRefs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.openReport(t, "7/2026")

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte("remote-asset"))
	}))
	defer srv.Close()

	obj, err := f.svc.CreateExamObject(ctx, f.author, r.ID, domain.LocationExam{
		ExamHeader:  domain.ExamHeader{Title: "Local do fato"},
		Description: "Via pública.",
	})
	if err != nil {
		t.Fatalf("create object: %v", err)
	}
	if _, err := f.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateObjectImage(domain.ObjectImage{
			ReportID: r.ID,
			OwnerTag: obj.Kind(),
			OwnerID:  obj.Header().ID,
			BlobKey:  srv.URL + "/figures/vista.jpg",
			Caption:  "Vista geral",
		})
		return err
	}); err != nil {
		t.Fatalf("seed external image ref: %v", err)
	}

	fetcher := &render.Fetcher{MediaURL: "/media/", StaticURL: "/static/", Client: srv.Client()}
	svc := NewService(f.store, f.blobs, WithAssetFetcher(fetcher))
	doc, err := svc.RenderPDF(ctx, f.author, r.ID)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if hits == 0 {
		t.Fatalf("external image ref never reached the fetcher")
	}
	if !bytes.HasPrefix(doc.Bytes, []byte("%PDF")) {
		t.Fatalf("output is not a pdf")
	}
}

func TestCloseReportRejectsLockedOpenReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.openReport(t, "55/2026")

	if _, err := f.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateReport(r.ID, func(rep *domain.Report) error {
			rep.IsLocked = true
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("lock report: %v", err)
	}

	if _, err := f.svc.CloseReport(ctx, f.author, r.ID, pdfBytes); !domain.IsKind(err, domain.KindState) {
		t.Fatalf("expected state error, got %v", err)
	}
	got, _ := f.store.GetReport(r.ID)
	if got.Status != domain.StatusOpen || got.PDFKey != "" {
		t.Fatalf("locked report mutated by close: %+v", got)
	}
}

func TestAttachImageDuplicateFilenameGetsSuffix(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := f.openReport(t, "8/2026")
	obj, err := f.svc.CreateExamObject(ctx, f.author, r.ID, domain.LocationExam{
		ExamHeader: domain.ExamHeader{Title: "Local"},
	})
	if err != nil {
		t.Fatalf("create object: %v", err)
	}
	oid := obj.Header().ID

	first, err := f.svc.AttachObjectImage(ctx, f.author, r.ID, oid, "vista.jpg", []byte("jpg-a"), "Vista 1")
	if err != nil {
		t.Fatalf("attach first: %v", err)
	}
	second, err := f.svc.AttachObjectImage(ctx, f.author, r.ID, oid, "vista.jpg", []byte("jpg-b"), "Vista 2")
	if err != nil {
		t.Fatalf("attach duplicate filename: %v", err)
	}
	if second.BlobKey == first.BlobKey {
		t.Fatalf("duplicate filename reused key %q", first.BlobKey)
	}
	if !strings.HasSuffix(second.BlobKey, "/vista_2.jpg") {
		t.Fatalf("second key = %q", second.BlobKey)
	}
	if second.Index != 2 {
		t.Fatalf("second index = %d", second.Index)
	}
	for _, key := range []string{first.BlobKey, second.BlobKey} {
		if _, err := f.blobs.Head(ctx, key); err != nil {
			t.Fatalf("blob %s missing: %v", key, err)
		}
	}
}
