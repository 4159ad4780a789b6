package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cesaralej/agastar/internal/core"
	"github.com/cesaralej/agastar/internal/push"
	"github.com/cesaralej/agastar/internal/storage"
)

// BillView is one recurring bill with its derived state.
type BillView struct {
	Bill           core.Recurring
	Status         DueStatus
	RecentPayments []core.Transaction
}

// RecurringService manages recurring bill definitions and their
// derived views.
type RecurringService struct {
	store        storage.Store
	transactions *TransactionService
	notifier     Notifier
	cache        Invalidator
	now          func() time.Time
}

func NewRecurringService(store storage.Store, transactions *TransactionService, notifier Notifier, cache Invalidator) *RecurringService {
	return &RecurringService{
		store:        store,
		transactions: transactions,
		notifier:     notifier,
		cache:        cache,
		now:          time.Now,
	}
}

func (s *RecurringService) Create(ctx context.Context, userID string, r core.Recurring) (core.Recurring, error) {
	if err := r.Validate(); err != nil {
		return core.Recurring{}, err
	}
	saved, err := s.store.CreateRecurring(ctx, userID, r)
	if err != nil {
		return core.Recurring{}, err
	}
	s.changed(userID, saved.ID)
	return saved, nil
}

func (s *RecurringService) Update(ctx context.Context, userID, id string, patch core.RecurringPatch) (core.Recurring, error) {
	updated, err := s.store.UpdateRecurring(ctx, userID, id, patch)
	if err != nil {
		return core.Recurring{}, err
	}
	s.changed(userID, id)
	return updated, nil
}

func (s *RecurringService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteRecurring(ctx, userID, id); err != nil {
		return err
	}
	s.changed(userID, id)
	return nil
}

func (s *RecurringService) Get(ctx context.Context, userID, id string) (core.Recurring, error) {
	return s.store.GetRecurring(ctx, userID, id)
}

func (s *RecurringService) List(ctx context.Context, userID string) ([]core.Recurring, error) {
	return s.store.ListRecurrings(ctx, userID)
}

// Summary lists every bill with its due status as of now and its last
// few payments, plus the paid vs. remaining progress for the month.
func (s *RecurringService) Summary(ctx context.Context, userID string) ([]BillView, BillProgress, error) {
	bills, err := s.store.ListRecurrings(ctx, userID)
	if err != nil {
		return nil, BillProgress{}, err
	}
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, BillProgress{}, err
	}

	today := s.now()
	views := make([]BillView, len(bills))
	for i, bill := range bills {
		views[i] = BillView{
			Bill:           bill,
			Status:         Status(bill, today),
			RecentPayments: RecentPayments(bill, txs, 3),
		}
	}
	return views, SummarizeBills(bills, today), nil
}

// Pay records a payment for a bill: it creates a fixed-category
// expense linked by id, which settles the bill through the normal
// transaction path.
func (s *RecurringService) Pay(ctx context.Context, userID, id string, date core.Date) (core.Transaction, error) {
	bill, err := s.store.GetRecurring(ctx, userID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if date.IsEmpty() {
		now := s.now()
		date = core.NewDate(now.Year(), now.Month(), now.Day())
	}

	tx := core.Transaction{
		Amount:      bill.Amount,
		Type:        core.Expense,
		Account:     bill.Account,
		Category:    core.CategoryFixed,
		Date:        date,
		Description: bill.Description,
		RecurringID: bill.ID,
	}
	saved, err := s.transactions.Create(ctx, userID, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("pay bill %q: %w", bill.Description, err)
	}
	return saved, nil
}

func (s *RecurringService) changed(userID, id string) {
	if s.cache != nil {
		s.cache.DeletePrefix(userID + "/")
	}
	if s.notifier != nil {
		s.notifier.Notify(userID, push.Event{
			Type:       "record_changed",
			Collection: "recurrings",
			RecordID:   id,
		})
	}
}
