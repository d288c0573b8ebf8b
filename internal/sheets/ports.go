// Package sheets pushes the ledger export to a spreadsheet.
package sheets

import (
	"context"
	"fmt"

	"cashbook/internal/core"
	"cashbook/internal/services"
)

// Ports for outbound adapters.
type (
	// LedgerWriter replaces the contents of the target sheet with rows.
	LedgerWriter interface {
		WriteRows(ctx context.Context, rows [][]string) (updatedRange string, err error)
	}

	// Snapshotter supplies the ledger document to export.
	Snapshotter interface {
		Snapshot(ctx context.Context) *core.Document
	}
)

// Push writes the current ledger export rows through w. A degraded document is
// not pushed, so a read failure never blanks the sheet.
func Push(ctx context.Context, src Snapshotter, w LedgerWriter) (string, error) {
	doc := src.Snapshot(ctx)
	if err := doc.Validate(); err != nil {
		return "", fmt.Errorf("push ledger: %w: %w", core.ErrStoreUnavailable, err)
	}
	ref, err := w.WriteRows(ctx, services.ExportRows(doc))
	if err != nil {
		return "", fmt.Errorf("push ledger: %w", err)
	}
	return ref, nil
}
