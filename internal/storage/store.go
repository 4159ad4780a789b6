// Package storage persists transactions, budgets and recurring bills,
// scoped per user. The SQLite store is the production path; the memory
// store backs tests and throwaway setups.
package storage

import (
	"context"
	"time"

	"github.com/cesaralej/agastar/internal/core"
)

// SyncStatus tracks a transaction's export state.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

// PendingSyncTransaction is the minimal row the export worker queues.
type PendingSyncTransaction struct {
	ID        string
	UserID    string
	CreatedAt time.Time
}

// Store is the persistence contract the services are written against.
// Every call is scoped by an opaque user id; reads never leak another
// user's rows. Implementations map missing rows to core.ErrNotFound
// and infrastructure failures to core.ErrStoreUnavailable.
type Store interface {
	CreateTransaction(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id string, patch core.TransactionPatch) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
	ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)

	// UpsertBudget writes the budget row keyed by its composite id;
	// a second write for the same (category, month, year) overwrites
	// the first. Reserved categories are rejected, never stored.
	UpsertBudget(ctx context.Context, userID string, b core.Budget) (core.Budget, error)
	DeleteBudget(ctx context.Context, userID, id string) error
	ListBudgets(ctx context.Context, userID string, year int, month time.Month) ([]core.Budget, error)

	CreateRecurring(ctx context.Context, userID string, r core.Recurring) (core.Recurring, error)
	GetRecurring(ctx context.Context, userID, id string) (core.Recurring, error)
	UpdateRecurring(ctx context.Context, userID, id string, patch core.RecurringPatch) (core.Recurring, error)
	DeleteRecurring(ctx context.Context, userID, id string) error
	ListRecurrings(ctx context.Context, userID string) ([]core.Recurring, error)

	Close() error
}

// SyncStore is the extra surface the export worker needs on top of
// Store. Only the SQLite store implements it.
type SyncStore interface {
	Store
	GetPendingSyncTransactions(ctx context.Context, limit int) ([]PendingSyncTransaction, error)
	MarkSynced(ctx context.Context, id string) error
	MarkSyncError(ctx context.Context, id string) error
}
