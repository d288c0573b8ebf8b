package sheets_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cashbook/internal/core"
	"cashbook/internal/sheets"
	"cashbook/internal/sheets/memory"
)

type staticSnapshot struct{ doc *core.Document }

func (s staticSnapshot) Snapshot(context.Context) *core.Document { return s.doc }

type failingWriter struct{}

func (failingWriter) WriteRows(context.Context, [][]string) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestPush(t *testing.T) {
	doc := core.NewDocument()
	doc.Incomes = []core.Income{{ID: 1, Amount: 5000, Source: "client A", Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}}
	w := memory.New()

	ref, err := sheets.Push(context.Background(), staticSnapshot{doc}, w)
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if ref != "mem:2 rows" {
		t.Errorf("ref = %q", ref)
	}
	rows := w.Rows()
	if len(rows) != 2 || rows[0][0] != "type" || rows[1][3] != "client A" {
		t.Errorf("unexpected rows %v", rows)
	}
}

func TestPushRefusesDegradedDocument(t *testing.T) {
	w := memory.New()
	_, err := sheets.Push(context.Background(), staticSnapshot{&core.Document{}}, w)
	if !errors.Is(err, core.ErrStoreUnavailable) {
		t.Fatalf("error = %v, want ErrStoreUnavailable", err)
	}
	if w.Writes() != 0 {
		t.Error("degraded document was written")
	}
}

func TestPushWriterError(t *testing.T) {
	_, err := sheets.Push(context.Background(), staticSnapshot{core.NewDocument()}, failingWriter{})
	if err == nil {
		t.Fatal("expected error")
	}
}
