// Package worker drains the pending-export queue into the spreadsheet.
package worker

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// LedgerAppender is the slice of the Sheets client the worker needs.
type LedgerAppender interface {
	AppendLedgerRow(ctx context.Context, p storage.PendingExport) error
}

type ExportWorker struct {
	storage   *storage.Repository
	sheets    LedgerAppender
	batchSize int
	logger    *log.Logger
}

func NewExportWorker(storage *storage.Repository, sheets LedgerAppender, batchSize int, logger *log.Logger) *ExportWorker {
	if batchSize < 1 {
		batchSize = 1
	}
	return &ExportWorker{
		storage:   storage,
		sheets:    sheets,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// ProcessPending drains one batch of pending rows and reports how many were
// exported. A row that fails to append is marked failed and does not stop
// the rest of the batch.
func (w *ExportWorker) ProcessPending(ctx context.Context) (int, error) {
	pending, err := w.storage.PendingExports(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("load pending exports: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	exported := 0
	for _, p := range pending {
		if err := w.sheets.AppendLedgerRow(ctx, p); err != nil {
			w.logger.ErrorContext(ctx, "Failed to append ledger row",
				log.FieldRecordID, p.TransactionID,
				log.FieldError, err)
			if markErr := w.storage.MarkExportFailed(ctx, p.TransactionID); markErr != nil {
				w.logger.ErrorContext(ctx, "Failed to mark export failed",
					log.FieldRecordID, p.TransactionID,
					log.FieldError, markErr)
			}
			continue
		}
		if err := w.storage.MarkExported(ctx, p.TransactionID); err != nil {
			return exported, fmt.Errorf("mark exported %s: %w", p.TransactionID, err)
		}
		exported++
	}

	w.logger.InfoContext(ctx, "Processed export batch",
		log.FieldBatchSize, len(pending),
		"exported", exported)
	return exported, nil
}

// HandleEvent reacts to one transaction event from the feed. The event only
// says that something changed; the batch sweep picks up the actual rows, so
// deleted-transaction events need no special case.
func (w *ExportWorker) HandleEvent(event *amqp.TransactionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	w.logger.InfoContext(ctx, "Handling transaction event",
		log.FieldRecordID, event.ID,
		log.FieldAction, event.Action)

	_, err := w.ProcessPending(ctx)
	return err
}

// StartupCheck drains everything queued while the worker was down.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	for {
		n, err := w.ProcessPending(ctx)
		if err != nil {
			return err
		}
		if n < w.batchSize {
			return nil
		}
	}
}

// Run sweeps the queue on a fixed interval until the context is cancelled,
// catching rows whose events were lost.
func (w *ExportWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Export worker stopping", "reason", ctx.Err())
			return
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic export sweep failed", log.FieldError, err)
			}
		}
	}
}
