// Package storage persists the ledger document.
//
// Every backend stores the whole document as one unit: Load reads all of it,
// Save overwrites all of it. There is no locking between processes sharing the
// same backing data; the last Save wins.
package storage

import (
	"context"
	"errors"

	"cashbook/internal/core"
)

// ErrUnreadable wraps failures to read or decode persisted data. Load returns
// a degenerate document alongside it instead of failing hard.
var ErrUnreadable = errors.New("ledger data unreadable")

// Store loads and saves the full ledger document.
type Store interface {
	// Load returns the current document. When nothing has been persisted yet
	// it creates, saves and returns core.NewDocument().
	Load(ctx context.Context) (*core.Document, error)
	// Save overwrites the persisted document in one shot.
	Save(ctx context.Context, doc *core.Document) error
	Close() error
}

// degenerate is what Load hands back when persisted data cannot be read.
// It fails core.Document.Validate so mutations refuse to overwrite the data.
func degenerate() *core.Document {
	d := &core.Document{}
	d.Normalize()
	return d
}
