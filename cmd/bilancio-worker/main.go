package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"bilancio/internal/amqp"
	"bilancio/internal/backend"
	"bilancio/internal/config"
	gsheet "bilancio/internal/export/google"
	"bilancio/internal/storage"
	"bilancio/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting bilancio-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The worker reads and updates export state, so it needs a durable
	// repository. The memory backend has nothing to recover.
	var store worker.Store
	switch backend.Type(cfg.DataBackend) {
	case backend.SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		store = repo
	case backend.PostgresBackend:
		repo, err := storage.NewPostgresRepository(ctx, cfg.PostgresURL)
		if err != nil {
			logger.Error("Failed to initialize Postgres repository", "error", err)
			os.Exit(1)
		}
		defer repo.Close()
		store = repo
	default:
		logger.Error("Worker requires a durable backend", "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// Google Sheets export is optional.
	var exportWorker *worker.ExportWorker
	if cfg.GoogleSpreadsheetID != "" {
		sheetsClient, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

		exportWorker = worker.NewExportWorker(store, sheetsClient, cfg.ExportBatchSize)
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.ExportQueue, cfg.AlertQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	g, gctx := errgroup.WithContext(ctx)

	if exportWorker != nil {
		logger.Info("Performing startup export check...")
		if err := exportWorker.StartupCheck(ctx); err != nil {
			logger.Error("Startup export check failed", "error", err)
			// Keep going, the periodic sweep retries.
		}

		g.Go(func() error {
			return amqpClient.ConsumeTransactionExports(gctx, func(msg *amqp.TransactionExportMessage) error {
				return exportWorker.HandleExportMessage(gctx, msg)
			})
		})

		if err := exportWorker.StartPeriodicSweep(ctx, cfg.ExportInterval); err != nil {
			logger.Error("Failed to start export sweep", "error", err)
			os.Exit(1)
		}
		defer exportWorker.StopPeriodicSweep()
	} else {
		logger.Info("Skipping export consumption - no Google Sheets client available")
	}

	alertWorker := worker.NewAlertWorker()
	g.Go(func() error {
		return amqpClient.ConsumeBudgetAlerts(gctx, func(msg *amqp.BudgetAlertMessage) error {
			return alertWorker.HandleAlertMessage(gctx, msg)
		})
	})

	go func() {
		if err := g.Wait(); err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", "error", err)
		}
		cancel()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Shutting down worker...")
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}
