// Package scheduler runs the unattended monthly rent debit.
//
// The debit fires on day 1 of every month at 09:00 in the scheduler's
// location. Occurrences missed while the process is down are not caught up.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"cashbook/internal/core"
	"cashbook/internal/log"
)

// RentSchedule is the cron expression for the rent debit. It is fixed.
const RentSchedule = "0 9 1 * *"

type State string

const (
	Disarmed State = "disarmed"
	Armed    State = "armed"
	Firing   State = "firing"
)

var ErrAlreadyArmed = errors.New("rent scheduler already armed")

// RentCharger is the ledger entry point the scheduler drives.
type RentCharger interface {
	ChargeRent(ctx context.Context) (*core.Document, bool, error)
}

type RentScheduler struct {
	charger  RentCharger
	logger   *log.Logger
	location *time.Location

	mu      sync.Mutex
	state   State
	cron    *cron.Cron
	entryID cron.EntryID
}

func NewRentScheduler(charger RentCharger, logger *log.Logger, location *time.Location) *RentScheduler {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if location == nil {
		location = time.Local
	}
	return &RentScheduler{
		charger:  charger,
		logger:   logger.WithComponent(log.ComponentScheduler),
		location: location,
		state:    Disarmed,
	}
}

// State returns the current scheduler state.
func (s *RentScheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Arm registers the rent job and starts the cron runner.
func (s *RentScheduler) Arm() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Disarmed {
		return ErrAlreadyArmed
	}

	c := cron.New(
		cron.WithLocation(s.location),
		cron.WithChain(cron.Recover(cronLogger{s.logger})),
	)
	id, err := c.AddFunc(RentSchedule, func() { s.Run(context.Background()) })
	if err != nil {
		return fmt.Errorf("schedule rent debit: %w", err)
	}
	c.Start()

	s.cron = c
	s.entryID = id
	s.state = Armed
	s.logger.Info("Rent debit armed",
		log.FieldSchedule, RentSchedule,
		"next_run", c.Entry(id).Next.Format(time.RFC3339))
	return nil
}

// Disarm stops the cron runner and waits for a running debit to finish or
// ctx to expire.
func (s *RentScheduler) Disarm(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.state = Disarmed
	s.mu.Unlock()

	if c == nil {
		return nil
	}
	select {
	case <-c.Stop().Done():
		s.logger.Info("Rent debit disarmed")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run performs one rent debit. Failures are logged and swallowed so the next
// occurrence runs independently.
func (s *RentScheduler) Run(ctx context.Context) {
	s.setFiring(true)
	defer s.setFiring(false)

	s.logger.InfoContext(ctx, "Charging monthly rent")
	doc, charged, err := s.charger.ChargeRent(ctx)
	switch {
	case err != nil:
		rentRun("failed")
		s.logger.ErrorContext(ctx, "Rent debit failed", log.FieldOperation, log.OpChargeRent, log.FieldError, err)
	case !charged:
		rentRun("skipped")
		s.logger.InfoContext(ctx, "Rent debit skipped", log.FieldOperation, log.OpChargeRent)
	default:
		rentRun("charged")
		s.logger.InfoContext(ctx, "Rent debit complete",
			log.FieldOperation, log.OpChargeRent,
			log.FieldAmount, doc.MonthlyRent,
			log.FieldBudget, doc.Budget)
	}
}

func (s *RentScheduler) setFiring(firing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Disarmed {
		return
	}
	if firing {
		s.state = Firing
	} else {
		s.state = Armed
	}
}

// NextRun returns the first scheduled debit strictly after from.
func (s *RentScheduler) NextRun(from time.Time) time.Time {
	sched, err := cron.ParseStandard(RentSchedule)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(from.In(s.location))
}

// cronLogger adapts log.Logger to cron.Logger.
type cronLogger struct {
	l *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, log.FieldError, err)...)
}
