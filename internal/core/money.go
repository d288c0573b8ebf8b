// Package core provides the ledger document model and amount handling.
//
// This file contains helpers for parsing amounts from request input and
// checking that an amount can safely enter the budget arithmetic.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to an amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional sign. Blank or non-numeric input returns ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("5000")   -> 5000, nil
//	ParseAmount("12,5")   -> 12.5, nil
//	ParseAmount("-3.25")  -> -3.25, nil
//	ParseAmount("abc")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	f, _ := d.Float64()
	if err := CheckFinite(f); err != nil {
		return 0, err
	}
	return f, nil
}

// CheckFinite rejects NaN and infinities.
func CheckFinite(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ErrInvalidAmount
	}
	return nil
}

// CheckNewAmount validates the amount of a record being created: it must be
// finite and non-zero. Any sign is accepted.
func CheckNewAmount(amount float64) error {
	if err := CheckFinite(amount); err != nil {
		return err
	}
	if amount == 0 {
		return ErrInvalidAmount
	}
	return nil
}
