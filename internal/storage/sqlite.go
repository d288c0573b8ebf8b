package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cashbook/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the ledger document as a single JSON row. It has the same
// whole-document semantics as FileStore; SQLite only provides the container.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*core.Document, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM ledger_document WHERE id = 1`).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		doc := core.NewDocument()
		if err := s.Save(ctx, doc); err != nil {
			return doc, fmt.Errorf("initialize ledger row: %w", err)
		}
		slog.InfoContext(ctx, "Created ledger row with defaults")
		return doc, nil
	}
	if err != nil {
		return degenerate(), fmt.Errorf("%w: query ledger row: %v", ErrUnreadable, err)
	}

	var doc core.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return degenerate(), fmt.Errorf("%w: decode ledger row: %v", ErrUnreadable, err)
	}
	doc.Normalize()
	return &doc, nil
}

func (s *SQLiteStore) Save(ctx context.Context, doc *core.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ledger_document (id, body, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP`,
		string(body))
	if err != nil {
		return fmt.Errorf("write ledger row: %w", err)
	}
	return nil
}
