package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cesaralej/agastar/internal/core"
	"github.com/cesaralej/agastar/internal/push"
	"github.com/cesaralej/agastar/internal/storage"
)

// ExportPublisher queues a transaction for the export worker.
type ExportPublisher interface {
	PublishExport(ctx context.Context, transactionID, userID string) error
}

// Notifier pushes change events to a user's connected clients.
type Notifier interface {
	Notify(userID string, ev push.Event)
}

// Invalidator drops cached derived views for a user.
type Invalidator interface {
	DeletePrefix(prefix string) int
}

// TransactionService orchestrates transaction writes: persist, settle
// the linked recurring bill, queue the export and push the change.
type TransactionService struct {
	store     storage.Store
	publisher ExportPublisher
	notifier  Notifier
	cache     Invalidator
}

func NewTransactionService(store storage.Store, publisher ExportPublisher, notifier Notifier, cache Invalidator) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
		notifier:  notifier,
		cache:     cache,
	}
}

// Create validates and persists a transaction, then runs the side
// effects. Settlement and export failures never fail the request; the
// transaction is already saved.
func (s *TransactionService) Create(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.CreateTransaction(ctx, userID, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.settle(ctx, userID, saved); err != nil {
		slog.ErrorContext(ctx, "Failed to settle recurring bill",
			"transaction_id", saved.ID, "error", err)
	}

	s.publishExport(ctx, saved.ID, userID)
	s.invalidate(userID, "transactions", saved)

	return saved, nil
}

// Update applies a partial update and re-runs settlement, so an edit
// that fixes a description or link still marks the bill paid.
func (s *TransactionService) Update(ctx context.Context, userID, id string, patch core.TransactionPatch) (core.Transaction, error) {
	updated, err := s.store.UpdateTransaction(ctx, userID, id, patch)
	if err != nil {
		return core.Transaction{}, err
	}

	if err := s.settle(ctx, userID, updated); err != nil {
		slog.ErrorContext(ctx, "Failed to settle recurring bill",
			"transaction_id", updated.ID, "error", err)
	}

	s.publishExport(ctx, updated.ID, userID)
	s.invalidate(userID, "transactions", updated)

	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	s.invalidate(userID, "transactions", core.Transaction{ID: id})
	return nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

// List returns the user's transactions, optionally restricted to one
// month by effective date. A zero month means everything.
func (s *TransactionService) List(ctx context.Context, userID string, year int, month int) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if month == 0 {
		return txs, nil
	}
	filtered := txs[:0]
	for _, tx := range txs {
		if tx.EffectiveOrDate().SameMonth(year, time.Month(month)) {
			filtered = append(filtered, tx)
		}
	}
	return filtered, nil
}

// settle links the transaction to the recurring bill it pays, if any,
// and records the payment date. Setting the same date again is a
// no-op, so replayed settlements keep the same result.
func (s *TransactionService) settle(ctx context.Context, userID string, tx core.Transaction) error {
	if tx.Type != core.Expense {
		return nil
	}
	if tx.RecurringID == "" && tx.Category != core.CategoryFixed {
		return nil
	}

	bills, err := s.store.ListRecurrings(ctx, userID)
	if err != nil {
		return fmt.Errorf("list recurring bills: %w", err)
	}

	bill, ok := FindSettlement(bills, tx)
	if !ok {
		return nil
	}

	paid := tx.EffectiveOrDate()
	if bill.LastPaymentDate.Equal(paid.Time) {
		return nil
	}

	_, err = s.store.UpdateRecurring(ctx, userID, bill.ID, core.RecurringPatch{
		LastPaymentDate: &paid,
	})
	if err != nil {
		return fmt.Errorf("record payment on %q: %w", bill.Description, err)
	}

	slog.InfoContext(ctx, "Recurring bill settled",
		"recurring_id", bill.ID,
		"description", bill.Description,
		"paid_on", paid.String())
	return nil
}

func (s *TransactionService) publishExport(ctx context.Context, id, userID string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExport(ctx, id, userID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"transaction_id", id, "error", err)
	}
}

func (s *TransactionService) invalidate(userID, collection string, tx core.Transaction) {
	if s.cache != nil {
		s.cache.DeletePrefix(userID + "/")
	}
	if s.notifier != nil {
		ev := push.Event{
			Type:       "record_changed",
			Collection: collection,
			RecordID:   tx.ID,
		}
		if eff := tx.EffectiveOrDate(); !eff.IsEmpty() {
			ev.Year = eff.Year()
			ev.Month = int(eff.Month())
		}
		s.notifier.Notify(userID, ev)
	}
}
