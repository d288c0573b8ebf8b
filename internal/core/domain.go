package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusDone       TaskStatus = "done"
)

const (
	KindIncome  EntityKind = "income"
	KindExpense EntityKind = "expense"
	KindTask    EntityKind = "task"
)

// Unspecified replaces a blank income source or expense category.
const Unspecified = "unspecified"

// RentCategory marks expenses created by the scheduled rent debit.
const RentCategory = "rent (auto)"

// Defaults for a freshly created ledger document.
const (
	DefaultBudget            = 40000
	DefaultMonthlyRent       = 10000
	DefaultMonthlyIncomeGoal = 150000
)

type (
	TaskStatus string

	EntityKind string

	Goals struct {
		MonthlyIncomeGoal float64 `json:"monthlyIncomeGoal"`
	}

	Income struct {
		ID     int64     `json:"id"`
		Amount float64   `json:"amount"`
		Source string    `json:"source"`
		Date   time.Time `json:"date"`
	}

	Expense struct {
		ID       int64     `json:"id"`
		Amount   float64   `json:"amount"`
		Category string    `json:"category"`
		Date     time.Time `json:"date"`
	}

	Task struct {
		ID          int64      `json:"id"`
		Title       string     `json:"title"`
		Description string     `json:"description"`
		Status      TaskStatus `json:"status"`
		CreatedAt   time.Time  `json:"createdAt"`
	}

	// Document is the whole persisted ledger. It is loaded and saved as a unit.
	Document struct {
		Budget        float64   `json:"budget"`
		MonthlyRent   float64   `json:"monthlyRent"`
		Goals         Goals     `json:"goals"`
		Tasks         []Task    `json:"tasks"`
		Expenses      []Expense `json:"expenses"`
		Incomes       []Income  `json:"incomes"`
		LastIncomeID  int64     `json:"lastIncomeId"`
		LastExpenseID int64     `json:"lastExpenseId"`
		LastTaskID    int64     `json:"lastTaskId"`
	}
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyTitle       = errors.New("empty task title")
	ErrDegradedDocument = errors.New("ledger document is missing required fields")
	ErrStoreUnavailable = errors.New("ledger store unavailable")
)

// NewDocument returns the document used when no backing data exists yet.
func NewDocument() *Document {
	return &Document{
		Budget:        DefaultBudget,
		MonthlyRent:   DefaultMonthlyRent,
		Goals:         Goals{MonthlyIncomeGoal: DefaultMonthlyIncomeGoal},
		Tasks:         []Task{},
		Expenses:      []Expense{},
		Incomes:       []Income{},
		LastIncomeID:  1,
		LastExpenseID: 1,
		LastTaskID:    1,
	}
}

// Normalize replaces nil collections with empty ones so the document always
// serializes with arrays.
func (d *Document) Normalize() {
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
	if d.Expenses == nil {
		d.Expenses = []Expense{}
	}
	if d.Incomes == nil {
		d.Incomes = []Income{}
	}
}

// Validate reports whether the document carries the fields a mutation relies
// on. A document decoded from "{}" or returned after a read failure fails here.
func (d *Document) Validate() error {
	if d == nil {
		return ErrDegradedDocument
	}
	if d.LastIncomeID < 1 || d.LastExpenseID < 1 || d.LastTaskID < 1 {
		return ErrDegradedDocument
	}
	return nil
}

// FindIncome returns the index of the income with the given id, or -1.
func (d *Document) FindIncome(id int64) int {
	for i := range d.Incomes {
		if d.Incomes[i].ID == id {
			return i
		}
	}
	return -1
}

// FindExpense returns the index of the expense with the given id, or -1.
func (d *Document) FindExpense(id int64) int {
	for i := range d.Expenses {
		if d.Expenses[i].ID == id {
			return i
		}
	}
	return -1
}

// FindTask returns the index of the task with the given id, or -1.
func (d *Document) FindTask(id int64) int {
	for i := range d.Tasks {
		if d.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Label returns the dashboard label for a status. Unknown statuses have none.
func (s TaskStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In progress"
	case StatusDone:
		return "Done"
	default:
		return ""
	}
}

// Known reports whether s is one of the statuses the dashboard offers.
func (s TaskStatus) Known() bool {
	return s.Label() != ""
}

// DefaultText trims s and substitutes Unspecified when nothing is left.
func DefaultText(s string) string {
	if strings.TrimSpace(s) == "" {
		return Unspecified
	}
	return s
}
