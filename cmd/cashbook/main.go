package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"cashbook/internal/backend"
	"cashbook/internal/cli"
	"cashbook/internal/config"
	apphttp "cashbook/internal/http"
	"cashbook/internal/log"
	"cashbook/internal/scheduler"
	"cashbook/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentApp, nil)

	if err := run(cfg, logger); err != nil {
		logger.Error("Cashbook stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Cashbook stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	}()

	var opts []services.Option
	if res.Notifier != nil {
		opts = append(opts, services.WithNotifier(res.Notifier))
	}
	ledger := services.NewLedgerService(res.Store, logger, opts...)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	for _, register := range []func(prometheus.Registerer) error{
		services.RegisterMetrics,
		scheduler.RegisterMetrics,
		apphttp.RegisterMetrics,
	} {
		if err := register(reg); err != nil {
			return err
		}
	}

	// First load creates the ledger with defaults when nothing exists yet.
	if err := ledger.Ready(ctx); err != nil {
		logger.Warn("Ledger not readable at startup, mutations will be rejected", log.FieldError, err)
	}

	srv := apphttp.NewServer(cfg.Addr(), ledger, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Gatherer:           reg,
		Logger:             logger,
	})

	rent := scheduler.NewRentScheduler(ledger, logger, time.Local)
	if cfg.CronEnabled {
		if err := rent.Arm(); err != nil {
			return err
		}
	} else {
		logger.Info("Rent debit disabled, set CRON_ENABLED=true to enable")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting cashbook server",
			"port", cfg.Port,
			log.FieldBackend, cfg.DataBackend,
			"cron_enabled", cfg.CronEnabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := rent.Disarm(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
