package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	gsheet "fintrack/internal/export/google"
	"fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting export-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if !cfg.ExportEnabled() {
		logger.Error("Export disabled - GOOGLE_SPREADSHEET_ID is required for the worker")
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sheetsClient, err := gsheet.NewFromEnv(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	exportWorker := worker.NewExportWorker(repo, sheetsClient, cfg.ExportBatchSize, logger)

	// Drain anything queued while the worker was down.
	if err := exportWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup export check failed", log.FieldError, err)
		// Keep running; the periodic sweep retries.
	}

	// The event feed shortens export latency; without it the periodic sweep
	// alone moves rows.
	if cfg.EventsEnabled() {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			if err := amqpClient.ConsumeTransactionEvents(ctx, exportWorker.HandleEvent); err != nil {
				if err != context.Canceled {
					logger.Error("Event consumption failed", log.FieldError, err)
				}
				cancel()
			}
		}()
	} else {
		logger.Info("AMQP event feed disabled - relying on periodic sweeps")
	}

	go exportWorker.Run(ctx, cfg.ExportInterval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	case <-ctx.Done():
	}

	logger.Info("Worker stopped gracefully")
}
