package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"laudocore/pkg/domain"
)

func TestRunInTransactionSnapshotsState(t *testing.T) {
	db, conn := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateReport(domain.Report{
			Base:         domain.Base{ID: "r1"},
			AuthorID:     "p1",
			ReportNumber: "99/2026",
			Typification: "Art. 302 CTB",
		})
		return err
	}); err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}

	var sawDDL bool
	for _, stmt := range conn.execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE") {
			sawDDL = true
			break
		}
	}
	if !sawDDL {
		t.Fatalf("expected state table DDL, got execs: %v", conn.execs)
	}
	if len(conn.state["reports"]) == 0 {
		t.Fatalf("reports bucket not persisted: %v", conn.state)
	}
}

func TestStatePersistsAcrossReconnect(t *testing.T) {
	db, _ := newStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("", nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.CreateReport(domain.Report{
			Base:         domain.Base{ID: "r1"},
			AuthorID:     "p1",
			ReportNumber: "99/2026",
		}); err != nil {
			return err
		}
		if _, err := tx.CreateExamObject(domain.LocationExam{
			ExamHeader:  domain.ExamHeader{Base: domain.Base{ID: "loc1"}, ReportID: "r1", Title: "Local do fato"},
			Description: "Via pública em aclive.",
		}); err != nil {
			return err
		}
		_, err := tx.CreateObjectImage(domain.ObjectImage{
			Base: domain.Base{ID: "i1"}, ReportID: "r1",
			OwnerTag: domain.KindLocation, OwnerID: "loc1",
			BlobKey: "reports/r1/objects/location/loc1/a.jpg", Caption: "Vista geral",
		})
		return err
	}); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	reconnected, err := NewStore("", nil)
	if err != nil {
		t.Fatalf("reconnect: %v", err)
	}

	r, ok := reconnected.GetReport("r1")
	if !ok {
		t.Fatalf("report lost on reload")
	}
	if r.ReportNumber != "99/2026" || r.Status != domain.StatusOpen {
		t.Fatalf("report fields lost: %+v", r)
	}

	objects := reconnected.ListExamObjects("r1")
	if len(objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(objects))
	}
	loc, ok := objects[0].(domain.LocationExam)
	if !ok {
		t.Fatalf("object decoded to wrong type %T", objects[0])
	}
	if loc.Description != "Via pública em aclive." {
		t.Fatalf("location payload lost: %+v", loc)
	}

	images := reconnected.ListObjectImages(domain.KindLocation, "loc1")
	if len(images) != 1 || images[0].Index != 1 {
		t.Fatalf("images lost: %+v", images)
	}

	if _, err := reconnected.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.UpdateReport("r1", func(rep *domain.Report) error {
			rep.Typification = "Art. 129"
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("update after reload: %v", err)
	}
	r, _ = reconnected.GetReport("r1")
	if r.Typification != "Art. 129" {
		t.Fatalf("mutation lost: %+v", r)
	}
}

// --- stub driver helpers ---

type stubDriver struct {
	conn *stubConn
}

func (d *stubDriver) Open(string) (driver.Conn, error) {
	return d.conn, nil
}

type stubConn struct {
	execs []string
	state map[string][]byte
}

func newStubDB() (*sql.DB, *stubConn) {
	conn := &stubConn{state: make(map[string][]byte)}
	name := fmt.Sprintf("stubpg%d", time.Now().UnixNano())
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	if err != nil {
		panic(err)
	}
	return db, conn
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }
func (c *stubConn) Close() error                        { return nil }
func (c *stubConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

func (c *stubConn) Ping(context.Context) error { return nil }

func (c *stubConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return stubTx{}, nil
}

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.execs = append(c.execs, query)
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "INSERT INTO STATE") {
		if len(args) != 2 {
			return nil, fmt.Errorf("state upsert wants 2 args, got %d", len(args))
		}
		bucket, ok := args[0].Value.(string)
		if !ok {
			return nil, fmt.Errorf("bucket arg is %T", args[0].Value)
		}
		payload, ok := args[1].Value.([]byte)
		if !ok {
			return nil, fmt.Errorf("payload arg is %T", args[1].Value)
		}
		buf := make([]byte, len(payload))
		copy(buf, payload)
		c.state[bucket] = buf
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if !strings.Contains(strings.ToUpper(query), "FROM STATE") {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	values := make([][]driver.Value, 0, len(c.state))
	for bucket, payload := range c.state {
		values = append(values, []driver.Value{bucket, payload})
	}
	return &stubRows{cols: []string{"bucket", "payload"}, rows: values}, nil
}

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

type stubRows struct {
	cols []string
	rows [][]driver.Value
	idx  int
}

func (r *stubRows) Columns() []string { return r.cols }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.idx])
	r.idx++
	return nil
}
