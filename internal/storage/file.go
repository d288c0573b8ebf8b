package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cashbook/internal/core"
)

// FileStore keeps the ledger document in a single JSON file.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) (*core.Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		doc := core.NewDocument()
		if err := s.Save(ctx, doc); err != nil {
			return doc, fmt.Errorf("initialize ledger file: %w", err)
		}
		slog.InfoContext(ctx, "Created ledger file with defaults", "path", s.path)
		return doc, nil
	}
	if err != nil {
		return degenerate(), fmt.Errorf("%w: read %s: %v", ErrUnreadable, s.path, err)
	}

	var doc core.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return degenerate(), fmt.Errorf("%w: decode %s: %v", ErrUnreadable, s.path, err)
	}
	doc.Normalize()
	return &doc, nil
}

// Save writes the document to a temporary file and renames it over the
// ledger file, so readers never observe a half-written document.
func (s *FileStore) Save(_ context.Context, doc *core.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp ledger file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
