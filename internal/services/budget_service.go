package services

import (
	"context"
	"time"

	"github.com/cesaralej/agastar/internal/core"
	"github.com/cesaralej/agastar/internal/push"
	"github.com/cesaralej/agastar/internal/storage"
)

// BudgetService manages explicit budget rows. The two reserved
// categories never pass through here; they exist only in resolved
// views.
type BudgetService struct {
	store    storage.Store
	notifier Notifier
	cache    Invalidator
}

func NewBudgetService(store storage.Store, notifier Notifier, cache Invalidator) *BudgetService {
	return &BudgetService{store: store, notifier: notifier, cache: cache}
}

// Upsert validates and writes a budget row. Writing the same
// (category, month, year) twice keeps one row with the latest amount.
func (s *BudgetService) Upsert(ctx context.Context, userID string, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	saved, err := s.store.UpsertBudget(ctx, userID, b)
	if err != nil {
		return core.Budget{}, err
	}
	s.changed(userID, saved.ID, saved.Year, saved.Month)
	return saved, nil
}

func (s *BudgetService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteBudget(ctx, userID, id); err != nil {
		return err
	}
	s.changed(userID, id, 0, 0)
	return nil
}

func (s *BudgetService) List(ctx context.Context, userID string, year int, month time.Month) ([]core.Budget, error) {
	return s.store.ListBudgets(ctx, userID, year, month)
}

func (s *BudgetService) changed(userID, id string, year int, month time.Month) {
	if s.cache != nil {
		s.cache.DeletePrefix(userID + "/")
	}
	if s.notifier != nil {
		s.notifier.Notify(userID, push.Event{
			Type:       "record_changed",
			Collection: "budgets",
			RecordID:   id,
			Year:       year,
			Month:      int(month),
		})
	}
}
