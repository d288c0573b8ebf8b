package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cashbook/internal/core"
)

func TestFileStoreCreatesDefaultDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "database.json")
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	doc, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Budget != core.DefaultBudget || doc.LastTaskID != 1 {
		t.Fatalf("expected default document, got %+v", doc)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default document should be persisted immediately: %v", err)
	}
}

func TestFileStoreSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")
	s, _ := NewFileStore(path)
	ctx := context.Background()

	doc := core.NewDocument()
	when := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	doc.Incomes = append(doc.Incomes, core.Income{ID: 1, Amount: 5000, Source: "client A", Date: when})
	doc.LastIncomeID = 2
	doc.Budget = 45000
	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file should be renamed away, stat err=%v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Budget != 45000 || len(got.Incomes) != 1 || got.LastIncomeID != 2 {
		t.Fatalf("unexpected document: %+v", got)
	}
	if !got.Incomes[0].Date.Equal(when) || got.Incomes[0].Source != "client A" {
		t.Fatalf("unexpected income: %+v", got.Incomes[0])
	}
}

func TestFileStoreCorruptFileDegrades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, _ := NewFileStore(path)

	doc, err := s.Load(context.Background())
	if !errors.Is(err, ErrUnreadable) {
		t.Fatalf("expected ErrUnreadable, got %v", err)
	}
	if doc == nil {
		t.Fatalf("load must return a document even on failure")
	}
	if doc.Validate() == nil {
		t.Fatalf("degenerate document should fail validation")
	}
	if doc.Incomes == nil || doc.Expenses == nil || doc.Tasks == nil {
		t.Fatalf("degenerate document should carry empty collections")
	}

	data, _ := os.ReadFile(path)
	if string(data) != "{not json" {
		t.Fatalf("load must not touch an unreadable file, got %q", data)
	}
}

func TestFileStoreEmptyObjectIsDegenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, _ := NewFileStore(path)

	doc, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("valid JSON should load: %v", err)
	}
	if !errors.Is(doc.Validate(), core.ErrDegradedDocument) {
		t.Fatalf("document without counters should be degraded")
	}
}
