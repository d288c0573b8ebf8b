// Package backend assembles the ledger's storage and event publishing from
// configuration.
package backend

import (
	"context"
	"errors"
	"fmt"

	"cashbook/internal/amqp"
	"cashbook/internal/config"
	"cashbook/internal/log"
	"cashbook/internal/services"
	"cashbook/internal/storage"
)

// CleanupFunc releases resources acquired by Open.
type CleanupFunc func() error

// Result holds the opened store, the optional event notifier and a cleanup
// function that closes both.
type Result struct {
	Store    storage.Store
	Notifier services.Notifier
	Cleanup  CleanupFunc
}

// Open creates the store selected by cfg.DataBackend. When AMQP is configured
// but unreachable the ledger keeps running without events.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Result, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentStorage)

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Ledger store opened", log.FieldBackend, cfg.DataBackend)

	res := &Result{Store: store}
	closers := []func() error{store.Close}

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without ledger events", log.FieldError, err)
		} else {
			res.Notifier = client
			closers = append(closers, client.Close)
			logger.InfoContext(ctx, "AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.InfoContext(ctx, "AMQP disabled, ledger events will not be published")
	}

	res.Cleanup = func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
	return res, nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.DataBackend {
	case config.BackendFile:
		store, err := storage.NewFileStore(cfg.LedgerFile)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return store, nil
	case config.BackendSQLite:
		store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}
}
