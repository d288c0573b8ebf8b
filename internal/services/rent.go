package services

import (
	"context"
	"time"

	"cashbook/internal/core"
	"cashbook/internal/log"
)

// ChargeRent appends the monthly rent as an expense, exactly like AddExpense
// with the rent category. It charges at most once per calendar month: when an
// automatic rent expense already exists for the current month, or the rent is
// zero, nothing is written. The returned bool reports whether a charge was made.
func (s *LedgerService) ChargeRent(ctx context.Context) (*core.Document, bool, error) {
	now := s.now()
	charged := false
	doc, err := s.apply(ctx, log.OpChargeRent, func(doc *core.Document) (core.Event, error) {
		if doc.MonthlyRent == 0 {
			s.logger.InfoContext(ctx, "Monthly rent is zero, nothing to charge")
			return core.Event{}, errNoChange
		}
		if last, ok := lastRentCharge(doc); ok && !rentDue(last, now) {
			s.logger.InfoContext(ctx, "Rent already charged this month", "last_charge", last.Format(time.RFC3339))
			return core.Event{}, errNoChange
		}
		ev, err := s.appendExpense(doc, log.OpChargeRent, doc.MonthlyRent, core.RentCategory)
		if err != nil {
			return core.Event{}, err
		}
		charged = true
		return ev, nil
	})
	return doc, charged, err
}

// lastRentCharge finds the date of the most recent automatic rent expense.
func lastRentCharge(doc *core.Document) (time.Time, bool) {
	var last time.Time
	found := false
	for _, ex := range doc.Expenses {
		if ex.Category != core.RentCategory {
			continue
		}
		if !found || ex.Date.After(last) {
			last = ex.Date
			found = true
		}
	}
	return last, found
}

// rentDue reports whether now falls in a later calendar month than
// lastCharge, comparing both in now's location.
func rentDue(lastCharge, now time.Time) bool {
	if lastCharge.IsZero() {
		return true
	}
	last := lastCharge.In(now.Location())
	if last.Year() == now.Year() && last.Month() == now.Month() {
		return false
	}
	return now.After(last)
}
