package core

import "fmt"

// NextID hands out the next id for kind and advances the matching counter in
// the same document, so the counter is persisted together with the record it
// names. Ids are never reused.
func NextID(d *Document, kind EntityKind) (int64, error) {
	var counter *int64
	switch kind {
	case KindIncome:
		counter = &d.LastIncomeID
	case KindExpense:
		counter = &d.LastExpenseID
	case KindTask:
		counter = &d.LastTaskID
	default:
		return 0, fmt.Errorf("unknown entity kind %q", kind)
	}
	id := *counter
	*counter++
	return id, nil
}
