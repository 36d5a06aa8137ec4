package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/export"
	applog "bilancio/internal/log"
)

// Store is the slice of the repository the export worker needs.
type Store interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	ListPendingExport(ctx context.Context, limit int) ([]core.Transaction, error)
	MarkExported(ctx context.Context, id int64) error
	MarkExportError(ctx context.Context, id int64) error
}

// ExportWorker drains the export queue into the configured spreadsheet.
type ExportWorker struct {
	store     Store
	appender  export.TransactionAppender
	batchSize int
	cron      *cron.Cron
}

func NewExportWorker(store Store, appender export.TransactionAppender, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:     store,
		appender:  appender,
		batchSize: batchSize,
		cron:      cron.New(),
	}
}

// HandleExportMessage processes a single transaction export message.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.TransactionExportMessage) error {
	slog.InfoContext(ctx, "Processing export message", "id", msg.ID)

	t, err := w.store.GetTransaction(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	return w.exportTransaction(ctx, t)
}

func (w *ExportWorker) exportTransaction(ctx context.Context, t core.Transaction) error {
	ref, err := w.appender.AppendTransaction(ctx, t)
	if err != nil {
		if markErr := w.store.MarkExportError(ctx, t.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", t.ID, "error", markErr)
		}
		return fmt.Errorf("append transaction to sheet: %w", err)
	}

	if err := w.store.MarkExported(ctx, t.ID); err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}

	slog.InfoContext(ctx, "Transaction exported",
		applog.FieldRecordID, t.ID, applog.FieldOperation, applog.OpExport, "row", ref)
	return nil
}

// ProcessPending exports transactions still marked pending. It is the
// backup path for lost queue messages.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.ListPendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending exports: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	for _, t := range pending {
		if err := w.exportTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction", "id", t.ID, "error", err)
		}
	}

	return nil
}

// StartupCheck sweeps a larger batch once, to recover from worker
// downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.store.ListPendingExport(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending exports for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup", "count", len(pending))

	synced, failed := 0, 0
	for _, t := range pending {
		if err := w.exportTransaction(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to export during startup", "id", t.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup export check completed",
		"total", len(pending), "synced", synced, "errors", failed)
	return nil
}

// StartPeriodicSweep schedules ProcessPending at the given interval.
func (w *ExportWorker) StartPeriodicSweep(ctx context.Context, interval time.Duration) error {
	spec := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	_, err := w.cron.AddFunc(spec, func() {
		if err := w.ProcessPending(ctx); err != nil {
			slog.ErrorContext(ctx, "Periodic export sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule export sweep: %w", err)
	}
	w.cron.Start()
	return nil
}

// StopPeriodicSweep stops the scheduler and waits for running jobs.
func (w *ExportWorker) StopPeriodicSweep() {
	<-w.cron.Stop().Done()
}
