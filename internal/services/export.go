package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"cashbook/internal/core"
	"cashbook/internal/log"
)

// ExportHeader is the first row of every ledger export.
var ExportHeader = []string{"type", "id", "amount", "category_or_source", "date"}

// ExportRows returns the header followed by one row per income and then one
// row per expense, in store order.
func ExportRows(doc *core.Document) [][]string {
	rows := make([][]string, 0, 1+len(doc.Incomes)+len(doc.Expenses))
	rows = append(rows, ExportHeader)
	for _, in := range doc.Incomes {
		rows = append(rows, []string{string(core.KindIncome), strconv.FormatInt(in.ID, 10), formatAmount(in.Amount), in.Source, formatDate(in.Date)})
	}
	for _, ex := range doc.Expenses {
		rows = append(rows, []string{string(core.KindExpense), strconv.FormatInt(ex.ID, 10), formatAmount(ex.Amount), ex.Category, formatDate(ex.Date)})
	}
	return rows
}

// Export writes the current ledger as CSV to w.
func (s *LedgerService) Export(ctx context.Context, w io.Writer) error {
	doc := s.Snapshot(ctx)
	rows := ExportRows(doc)

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write ledger export: %w", err)
	}
	s.logger.DebugContext(ctx, "Ledger exported", log.FieldOperation, log.OpExport, "rows", len(rows)-1)
	return nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// dateLayout always carries milliseconds, so 09:00:00 exports as 09:00:00.000Z.
const dateLayout = "2006-01-02T15:04:05.000Z07:00"

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}
