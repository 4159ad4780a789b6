package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cesaralej/agastar/internal/core"
)

func TestMemoryStoreTransactionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	tx, err := s.CreateTransaction(ctx, "u1", core.Transaction{
		Amount:      core.Money{Cents: 5000},
		Type:        core.Expense,
		Account:     core.Savings,
		Category:    core.CategoryGroceries,
		Date:        core.NewDate(2025, time.April, 3),
		Description: "market",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tx.ID == "" {
		t.Fatal("store must assign an id")
	}

	newAmount := core.Money{Cents: 6000}
	updated, err := s.UpdateTransaction(ctx, "u1", tx.ID, core.TransactionPatch{Amount: &newAmount})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Amount.Cents != 6000 || updated.Description != "market" {
		t.Fatalf("patch applied wrong: %+v", updated)
	}

	if _, err := s.GetTransaction(ctx, "u2", tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-user read must be not found, got %v", err)
	}

	if err := s.DeleteTransaction(ctx, "u1", tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, "u1", tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete must be not found, got %v", err)
	}
}

func TestMemoryStoreBudgetUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first := core.Budget{Category: core.CategoryGroceries, Month: time.May, Year: 2025, Amount: core.Money{Cents: 30000}}
	if _, err := s.UpsertBudget(ctx, "u1", first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second := first
	second.Amount = core.Money{Cents: 45000}
	if _, err := s.UpsertBudget(ctx, "u1", second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	budgets, err := s.ListBudgets(ctx, "u1", 2025, time.May)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("same period must keep one row, got %d", len(budgets))
	}
	if budgets[0].Amount.Cents != 45000 {
		t.Fatalf("latest write must win, got %d", budgets[0].Amount.Cents)
	}
	if budgets[0].ID != "groceries-5-2025" {
		t.Fatalf("composite id = %q", budgets[0].ID)
	}
}

func TestMemoryStoreRejectsReservedBudget(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.UpsertBudget(context.Background(), "u1", core.Budget{
		Category: core.CategoryFixed, Month: time.May, Year: 2025, Amount: core.Money{Cents: 100},
	})
	if !errors.Is(err, core.ErrReservedCategory) {
		t.Fatalf("expected ErrReservedCategory, got %v", err)
	}
}

func TestMemoryStoreRecurringPatch(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	r, err := s.CreateRecurring(ctx, "u1", core.Recurring{
		Description: "Internet", Amount: core.Money{Cents: 4500}, DueDay: 15, Account: core.Savings,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	paid := core.NewDate(2025, time.June, 14)
	updated, err := s.UpdateRecurring(ctx, "u1", r.ID, core.RecurringPatch{LastPaymentDate: &paid})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.LastPaymentDate.SameMonth(2025, time.June) {
		t.Fatalf("LastPaymentDate = %v", updated.LastPaymentDate)
	}
	if updated.Description != "Internet" || updated.DueDay != 15 {
		t.Fatalf("patch clobbered other fields: %+v", updated)
	}
}
