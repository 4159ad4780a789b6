package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cesaralej/agastar/internal/core"
)

// MemoryStore is an in-process Store used by tests and for running
// without a database file. Safe for concurrent use.
type MemoryStore struct {
	mu           sync.RWMutex
	transactions map[string]map[string]core.Transaction
	budgets      map[string]map[string]core.Budget
	recurrings   map[string]map[string]core.Recurring
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string]map[string]core.Transaction),
		budgets:      make(map[string]map[string]core.Budget),
		recurrings:   make(map[string]map[string]core.Recurring),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateTransaction(_ context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = uuid.NewString()
	if s.transactions[userID] == nil {
		s.transactions[userID] = make(map[string]core.Transaction)
	}
	s.transactions[userID][tx.ID] = tx
	return tx, nil
}

func (s *MemoryStore) GetTransaction(_ context.Context, userID, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.transactions[userID][id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", core.ErrNotFound)
	}
	return tx, nil
}

func (s *MemoryStore) UpdateTransaction(ctx context.Context, userID, id string, patch core.TransactionPatch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[userID][id]
	if !ok {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", core.ErrNotFound)
	}
	applyTransactionPatch(&tx, patch)
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.transactions[userID][id] = tx
	return tx, nil
}

func (s *MemoryStore) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[userID][id]; !ok {
		return fmt.Errorf("delete transaction: %w", core.ErrNotFound)
	}
	delete(s.transactions[userID], id)
	return nil
}

func (s *MemoryStore) ListTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	txs := make([]core.Transaction, 0, len(s.transactions[userID]))
	for _, tx := range s.transactions[userID] {
		txs = append(txs, tx)
	}
	sort.Slice(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date.Time)
	})
	return txs, nil
}

func (s *MemoryStore) UpsertBudget(_ context.Context, userID string, b core.Budget) (core.Budget, error) {
	if b.Category.IsReserved() {
		return core.Budget{}, core.ErrReservedCategory
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = core.BudgetID(b.Category, b.Month, b.Year)
	b.LastUpdated = time.Now().UTC()
	if s.budgets[userID] == nil {
		s.budgets[userID] = make(map[string]core.Budget)
	}
	s.budgets[userID][b.ID] = b
	return b, nil
}

func (s *MemoryStore) DeleteBudget(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[userID][id]; !ok {
		return fmt.Errorf("delete budget: %w", core.ErrNotFound)
	}
	delete(s.budgets[userID], id)
	return nil
}

func (s *MemoryStore) ListBudgets(_ context.Context, userID string, year int, month time.Month) ([]core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var budgets []core.Budget
	for _, b := range s.budgets[userID] {
		if b.Year == year && b.Month == month {
			budgets = append(budgets, b)
		}
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].ID < budgets[j].ID })
	return budgets, nil
}

func (s *MemoryStore) CreateRecurring(_ context.Context, userID string, r core.Recurring) (core.Recurring, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = uuid.NewString()
	r.LastUpdated = time.Now().UTC()
	if s.recurrings[userID] == nil {
		s.recurrings[userID] = make(map[string]core.Recurring)
	}
	s.recurrings[userID][r.ID] = r
	return r, nil
}

func (s *MemoryStore) GetRecurring(_ context.Context, userID, id string) (core.Recurring, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.recurrings[userID][id]
	if !ok {
		return core.Recurring{}, fmt.Errorf("get recurring: %w", core.ErrNotFound)
	}
	return r, nil
}

func (s *MemoryStore) UpdateRecurring(_ context.Context, userID, id string, patch core.RecurringPatch) (core.Recurring, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recurrings[userID][id]
	if !ok {
		return core.Recurring{}, fmt.Errorf("update recurring: %w", core.ErrNotFound)
	}
	applyRecurringPatch(&r, patch)
	if err := r.Validate(); err != nil {
		return core.Recurring{}, err
	}
	r.LastUpdated = time.Now().UTC()
	s.recurrings[userID][id] = r
	return r, nil
}

func (s *MemoryStore) DeleteRecurring(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recurrings[userID][id]; !ok {
		return fmt.Errorf("delete recurring: %w", core.ErrNotFound)
	}
	delete(s.recurrings[userID], id)
	return nil
}

func (s *MemoryStore) ListRecurrings(_ context.Context, userID string) ([]core.Recurring, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]core.Recurring, 0, len(s.recurrings[userID]))
	for _, r := range s.recurrings[userID] {
		items = append(items, r)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].DueDay < items[j].DueDay })
	return items, nil
}
