package core

import "time"

// Event describes one committed ledger mutation.
type Event struct {
	Operation string     `json:"operation"`
	Entity    EntityKind `json:"entity,omitempty"`
	ID        int64      `json:"id,omitempty"`
	Amount    float64    `json:"amount,omitempty"`
	Budget    float64    `json:"budget"`
	Timestamp time.Time  `json:"timestamp"`
}
