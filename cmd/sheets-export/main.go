// Command sheets-export pushes the current ledger export to a Google Sheet.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"time"

	"cashbook/internal/backend"
	"cashbook/internal/cli"
	"cashbook/internal/config"
	"cashbook/internal/log"
	"cashbook/internal/services"
	"cashbook/internal/sheets"
	gsheet "cashbook/internal/sheets/google"
	"cashbook/internal/sheets/memory"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "print the rows instead of writing to Google Sheets")
	timeout := flag.Duration("timeout", time.Minute, "overall timeout")
	flag.Parse()

	// The export only reads the ledger; AMQP is never needed here.
	cfg, logger := cli.Bootstrap(log.ComponentSheets, func(c *config.Config) { c.AMQPURL = "" })
	if !*dryRun {
		if err := cfg.ValidateSheets(); err != nil {
			logger.Error("Sheets configuration validation failed", log.FieldError, err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, cfg, logger, *dryRun); err != nil {
		logger.Error("Sheets export failed", log.FieldError, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger, dryRun bool) error {
	res, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer res.Cleanup()

	ledger := services.NewLedgerService(res.Store, logger)

	var writer sheets.LedgerWriter
	mem := memory.New()
	if dryRun {
		writer = mem
	} else {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
		}, logger)
		if err != nil {
			return err
		}
		writer = client
	}

	ref, err := sheets.Push(ctx, ledger, writer)
	if err != nil {
		return err
	}
	logger.Info("Ledger exported", log.FieldOperation, log.OpExport, "range", ref)

	if dryRun {
		w := csv.NewWriter(os.Stdout)
		if err := w.WriteAll(mem.Rows()); err != nil {
			return fmt.Errorf("print rows: %w", err)
		}
	}
	return nil
}
