package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"cashbook/internal/core"
	"cashbook/internal/log"
	"cashbook/internal/storage"
)

// Notifier receives an event for every committed mutation. Delivery failures
// are logged and never fail the operation.
type Notifier interface {
	Notify(ctx context.Context, ev core.Event) error
}

// ConfigUpdate carries the optional fields of an update-config request. Nil
// fields are left untouched.
type ConfigUpdate struct {
	Budget            *float64
	MonthlyRent       *float64
	MonthlyIncomeGoal *float64
}

// LedgerService is the only writer of the ledger document. Each operation
// loads the whole document, applies one change, saves the whole document and
// returns it. Operations are serialized within the process; nothing protects
// the backing data from a second process.
type LedgerService struct {
	store    storage.Store
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time

	mu sync.Mutex
}

type Option func(*LedgerService)

// WithClock replaces time.Now for record timestamps and rent periods.
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

// WithNotifier publishes committed mutations to n.
func WithNotifier(n Notifier) Option {
	return func(s *LedgerService) { s.notifier = n }
}

func NewLedgerService(store storage.Store, logger *log.Logger, opts ...Option) *LedgerService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	s := &LedgerService{
		store:  store,
		logger: logger.WithComponent(log.ComponentLedger),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// errNoChange tells apply the change decided to leave the document alone, so
// nothing is written or published.
var errNoChange = errors.New("no change")

// change mutates a loaded document and describes what it did. An event with
// an empty Operation means nothing matched; the document is still saved.
type change func(doc *core.Document) (core.Event, error)

func (s *LedgerService) apply(ctx context.Context, op string, fn change) (*core.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Ledger load failed", log.FieldOperation, op, log.FieldError, err)
	}
	if err := doc.Validate(); err != nil {
		operationsTotal.WithLabelValues(op, resultUnavailable).Inc()
		return nil, fmt.Errorf("%s: %w: %w", op, core.ErrStoreUnavailable, err)
	}

	ev, err := fn(doc)
	if errors.Is(err, errNoChange) {
		operationsTotal.WithLabelValues(op, resultSkipped).Inc()
		return doc, nil
	}
	if err != nil {
		operationsTotal.WithLabelValues(op, resultRejected).Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := core.CheckFinite(doc.Budget); err != nil {
		operationsTotal.WithLabelValues(op, resultRejected).Inc()
		return nil, fmt.Errorf("%s: %w: budget: %w", op, core.ErrInvalidInput, err)
	}

	// A caller that goes away after Load must not abort the write.
	if err := s.store.Save(context.WithoutCancel(ctx), doc); err != nil {
		// The caller still gets the in-memory result; it is not durable.
		persistFailuresTotal.Inc()
		s.logger.ErrorContext(ctx, "Ledger save failed, change not persisted",
			log.FieldOperation, op, log.FieldError, err)
	}
	operationsTotal.WithLabelValues(op, resultOK).Inc()
	budgetGauge.Set(doc.Budget)

	if ev.Operation == "" {
		s.logger.InfoContext(ctx, "Ledger record not found, nothing changed", log.FieldOperation, op)
		return doc, nil
	}
	ev.Budget = doc.Budget
	s.logger.InfoContext(ctx, "Ledger updated",
		log.NewFields().WithOperation(op).WithRecord(string(ev.Entity), ev.ID).WithAmounts(ev.Amount, doc.Budget).ToSlice()...)
	s.publish(ctx, ev)
	return doc, nil
}

func (s *LedgerService) publish(ctx context.Context, ev core.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldOperation, ev.Operation, log.FieldError, err)
	}
}

func (s *LedgerService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Snapshot returns the current document. A document that could not be read
// is returned in its degenerate form rather than as an error.
func (s *LedgerService) Snapshot(ctx context.Context) *core.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Ledger load failed, serving degraded document",
			log.FieldOperation, log.OpSnapshot, log.FieldError, err)
	}
	return doc
}

// Ready reports whether the store currently yields a usable document.
func (s *LedgerService) Ready(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	return doc.Validate()
}

// UpdateConfig overwrites each supplied field verbatim. Setting the budget
// re-baselines it: later operations adjust from the new value.
func (s *LedgerService) UpdateConfig(ctx context.Context, u ConfigUpdate) (*core.Document, error) {
	for _, v := range []*float64{u.Budget, u.MonthlyRent, u.MonthlyIncomeGoal} {
		if v != nil {
			if err := core.CheckFinite(*v); err != nil {
				return nil, fmt.Errorf("%s: %w: %w", log.OpUpdateConfig, core.ErrInvalidInput, err)
			}
		}
	}
	return s.apply(ctx, log.OpUpdateConfig, func(doc *core.Document) (core.Event, error) {
		if u.Budget != nil {
			doc.Budget = *u.Budget
		}
		if u.MonthlyRent != nil {
			doc.MonthlyRent = *u.MonthlyRent
		}
		if u.MonthlyIncomeGoal != nil {
			doc.Goals.MonthlyIncomeGoal = *u.MonthlyIncomeGoal
		}
		return core.Event{Operation: log.OpUpdateConfig, Timestamp: s.timestamp()}, nil
	})
}

func (s *LedgerService) AddIncome(ctx context.Context, amount float64, source string) (*core.Document, error) {
	if err := core.CheckNewAmount(amount); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", log.OpAddIncome, core.ErrInvalidInput, err)
	}
	return s.apply(ctx, log.OpAddIncome, func(doc *core.Document) (core.Event, error) {
		id, err := core.NextID(doc, core.KindIncome)
		if err != nil {
			return core.Event{}, err
		}
		now := s.timestamp()
		doc.Incomes = append(doc.Incomes, core.Income{
			ID:     id,
			Amount: amount,
			Source: core.DefaultText(source),
			Date:   now,
		})
		doc.Budget = plus(doc.Budget, amount)
		return core.Event{Operation: log.OpAddIncome, Entity: core.KindIncome, ID: id, Amount: amount, Timestamp: now}, nil
	})
}

// EditIncome replaces the amount and source of an income. The old amount is
// taken out of the budget before the new one is put in. An unknown id leaves
// the document unchanged and is not an error.
func (s *LedgerService) EditIncome(ctx context.Context, id int64, amount float64, source string) (*core.Document, error) {
	if err := core.CheckFinite(amount); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", log.OpEditIncome, core.ErrInvalidInput, err)
	}
	return s.apply(ctx, log.OpEditIncome, func(doc *core.Document) (core.Event, error) {
		i := doc.FindIncome(id)
		if i < 0 {
			return core.Event{}, nil
		}
		rec := &doc.Incomes[i]
		doc.Budget = minus(doc.Budget, rec.Amount)
		rec.Amount = amount
		rec.Source = core.DefaultText(source)
		doc.Budget = plus(doc.Budget, rec.Amount)
		return core.Event{Operation: log.OpEditIncome, Entity: core.KindIncome, ID: id, Amount: amount, Timestamp: s.timestamp()}, nil
	})
}

func (s *LedgerService) AddExpense(ctx context.Context, amount float64, category string) (*core.Document, error) {
	if err := core.CheckNewAmount(amount); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", log.OpAddExpense, core.ErrInvalidInput, err)
	}
	return s.apply(ctx, log.OpAddExpense, func(doc *core.Document) (core.Event, error) {
		return s.appendExpense(doc, log.OpAddExpense, amount, category)
	})
}

func (s *LedgerService) appendExpense(doc *core.Document, op string, amount float64, category string) (core.Event, error) {
	id, err := core.NextID(doc, core.KindExpense)
	if err != nil {
		return core.Event{}, err
	}
	now := s.timestamp()
	doc.Expenses = append(doc.Expenses, core.Expense{
		ID:       id,
		Amount:   amount,
		Category: core.DefaultText(category),
		Date:     now,
	})
	doc.Budget = minus(doc.Budget, amount)
	return core.Event{Operation: op, Entity: core.KindExpense, ID: id, Amount: amount, Timestamp: now}, nil
}

// EditExpense mirrors EditIncome with the budget adjustments reversed.
func (s *LedgerService) EditExpense(ctx context.Context, id int64, amount float64, category string) (*core.Document, error) {
	if err := core.CheckFinite(amount); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", log.OpEditExpense, core.ErrInvalidInput, err)
	}
	return s.apply(ctx, log.OpEditExpense, func(doc *core.Document) (core.Event, error) {
		i := doc.FindExpense(id)
		if i < 0 {
			return core.Event{}, nil
		}
		rec := &doc.Expenses[i]
		doc.Budget = plus(doc.Budget, rec.Amount)
		rec.Amount = amount
		rec.Category = core.DefaultText(category)
		doc.Budget = minus(doc.Budget, rec.Amount)
		return core.Event{Operation: log.OpEditExpense, Entity: core.KindExpense, ID: id, Amount: amount, Timestamp: s.timestamp()}, nil
	})
}

func (s *LedgerService) AddTask(ctx context.Context, title, description string) (*core.Document, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%s: %w: %w", log.OpAddTask, core.ErrInvalidInput, core.ErrEmptyTitle)
	}
	return s.apply(ctx, log.OpAddTask, func(doc *core.Document) (core.Event, error) {
		id, err := core.NextID(doc, core.KindTask)
		if err != nil {
			return core.Event{}, err
		}
		now := s.timestamp()
		doc.Tasks = append(doc.Tasks, core.Task{
			ID:          id,
			Title:       title,
			Description: description,
			Status:      core.StatusPending,
			CreatedAt:   now,
		})
		return core.Event{Operation: log.OpAddTask, Entity: core.KindTask, ID: id, Timestamp: now}, nil
	})
}

// UpdateTaskStatus stores status as given. Values outside the known set are
// kept; the dashboard shows them with an empty label.
func (s *LedgerService) UpdateTaskStatus(ctx context.Context, id int64, status core.TaskStatus) (*core.Document, error) {
	if !status.Known() {
		s.logger.WarnContext(ctx, "Storing unrecognized task status", log.FieldEntityID, id, log.FieldStatus, string(status))
	}
	return s.apply(ctx, log.OpUpdateTask, func(doc *core.Document) (core.Event, error) {
		i := doc.FindTask(id)
		if i < 0 {
			return core.Event{}, nil
		}
		doc.Tasks[i].Status = status
		return core.Event{Operation: log.OpUpdateTask, Entity: core.KindTask, ID: id, Timestamp: s.timestamp()}, nil
	})
}

// EditTask overwrites title and description; unlike AddTask, empty values
// are allowed.
func (s *LedgerService) EditTask(ctx context.Context, id int64, title, description string) (*core.Document, error) {
	return s.apply(ctx, log.OpEditTask, func(doc *core.Document) (core.Event, error) {
		i := doc.FindTask(id)
		if i < 0 {
			return core.Event{}, nil
		}
		doc.Tasks[i].Title = title
		doc.Tasks[i].Description = description
		return core.Event{Operation: log.OpEditTask, Entity: core.KindTask, ID: id, Timestamp: s.timestamp()}, nil
	})
}

// plus and minus do budget arithmetic in decimal so that taking an amount out
// and putting it back restores the exact previous budget.
func plus(budget, amount float64) float64 {
	return decimal.NewFromFloat(budget).Add(decimal.NewFromFloat(amount)).InexactFloat64()
}

func minus(budget, amount float64) float64 {
	return decimal.NewFromFloat(budget).Sub(decimal.NewFromFloat(amount)).InexactFloat64()
}
