// Package worker moves saved transactions to the export destination.
// It consumes AMQP messages and sweeps the pending backlog as a backup
// for lost messages.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cesaralej/agastar/internal/amqp"
	"github.com/cesaralej/agastar/internal/core"
	"github.com/cesaralej/agastar/internal/sheets"
	"github.com/cesaralej/agastar/internal/storage"
)

// ExportStore is the slice of the storage surface the worker needs.
type ExportStore interface {
	GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error)
	GetPendingSyncTransactions(ctx context.Context, limit int) ([]storage.PendingSyncTransaction, error)
	MarkSynced(ctx context.Context, id string) error
	MarkSyncError(ctx context.Context, id string) error
}

// ExportWorker exports transactions from the store to Google Sheets.
type ExportWorker struct {
	store     ExportStore
	appender  sheets.TransactionAppender
	batchSize int
}

func NewExportWorker(store ExportStore, appender sheets.TransactionAppender, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:     store,
		appender:  appender,
		batchSize: batchSize,
	}
}

// HandleExportMessage processes a single export message from AMQP
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.ExportMessage) error {
	slog.InfoContext(ctx, "Processing export message",
		"transaction_id", msg.TransactionID,
		"user_id", msg.UserID)

	return w.export(ctx, msg.UserID, msg.TransactionID)
}

// ProcessPending exports transactions that never made it through the
// queue. This is a backup mechanism in case AMQP messages are lost.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.GetPendingSyncTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		if err := w.export(ctx, p.UserID, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction",
				"transaction_id", p.ID, "error", err)
		}
	}

	return nil
}

// StartupCheck sweeps a larger backlog once at startup to recover from
// worker downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.store.GetPendingSyncTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0
	for _, p := range pending {
		if err := w.export(ctx, p.UserID, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during startup",
				"transaction_id", p.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(pending),
		"exported", successCount,
		"errors", errorCount)

	return nil
}

func (w *ExportWorker) export(ctx context.Context, userID, id string) error {
	tx, err := w.store.GetTransaction(ctx, userID, id)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "transaction_id", id, "error", markErr)
		}
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	ref, err := w.appender.Append(ctx, userID, tx)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "transaction_id", id, "error", markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.store.MarkSynced(ctx, id); err != nil {
		// the export itself succeeded, don't requeue
		slog.ErrorContext(ctx, "Failed to mark as synced", "transaction_id", id, "error", err)
	}

	slog.InfoContext(ctx, "Transaction exported",
		"transaction_id", id,
		"sheets_ref", ref,
		"amount_cents", tx.Amount.Cents)

	return nil
}
