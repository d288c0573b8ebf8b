package storage

import (
	"context"
	"path/filepath"
	"testing"

	"cashbook/internal/core"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cashbook.db"))
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	doc, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if doc.Budget != core.DefaultBudget || doc.MonthlyRent != core.DefaultMonthlyRent {
		t.Fatalf("expected defaults, got %+v", doc)
	}

	doc.Budget = 38800
	doc.Expenses = append(doc.Expenses, core.Expense{ID: 1, Amount: 1200, Category: core.Unspecified})
	doc.LastExpenseID = 2
	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc.Budget = 1
	if err := s.Save(ctx, doc); err != nil {
		t.Fatalf("second save should overwrite: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Budget != 1 || len(got.Expenses) != 1 || got.LastExpenseID != 2 {
		t.Fatalf("unexpected document: %+v", got)
	}
}

func TestSQLiteStoreMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cashbook.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second run: %v", err)
	}
}
