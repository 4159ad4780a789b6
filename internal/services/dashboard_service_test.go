package services

import (
	"context"
	"testing"
	"time"

	"github.com/cesaralej/agastar/internal/cache"
	"github.com/cesaralej/agastar/internal/core"
	"github.com/cesaralej/agastar/internal/storage"
)

func TestOverviewDerivesBudgetsFromIncomeAndBills(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	// Income 1000.00 in January, one bill of 200.00, no explicit
	// budgets: fixed carries the bill total and discretionary the rest.
	store.CreateTransaction(ctx, "u1", core.Transaction{
		Amount: core.Money{Cents: 100000}, Type: core.Income, Account: core.Savings,
		Category: core.CategorySalary, Date: core.NewDate(2025, time.January, 1),
		Description: "salary",
	})
	store.CreateRecurring(ctx, "u1", core.Recurring{
		Description: "Rent", Amount: core.Money{Cents: 20000}, DueDay: 1, Account: core.Savings,
	})

	svc := NewDashboardService(store, nil)
	o, err := svc.Overview(ctx, "u1", 2025, time.January)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}

	fixed := findResolved(t, o.Budgets, core.CategoryFixed)
	if fixed.Amount.Cents != 20000 {
		t.Fatalf("fixed = %d", fixed.Amount.Cents)
	}
	disc := findResolved(t, o.Budgets, core.CategoryDiscretionary)
	if disc.Amount.Cents != 80000 {
		t.Fatalf("discretionary = %d", disc.Amount.Cents)
	}
	if o.Budget.TotalBudgeted.Cents != 100000 || o.Budget.Remaining.Cents != 0 {
		t.Fatalf("summary = %+v", o.Budget)
	}
	if o.Income.Cents != 100000 {
		t.Fatalf("income = %d", o.Income.Cents)
	}
	if len(o.Daily) != 31 {
		t.Fatalf("daily entries = %d", len(o.Daily))
	}
	if len(o.Bills) != 1 {
		t.Fatalf("bills = %d", len(o.Bills))
	}
}

func TestOverviewCacheInvalidation(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	c := cache.NewLRUCache[Overview](16, time.Minute)

	dash := NewDashboardService(store, c)
	txSvc := NewTransactionService(store, nil, nil, c)

	before, err := dash.Overview(ctx, "u1", 2025, time.March)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if before.Spent.Cents != 0 {
		t.Fatalf("fresh month should be empty, got %d", before.Spent.Cents)
	}

	_, err = txSvc.Create(ctx, "u1", core.Transaction{
		Amount: core.Money{Cents: 3000}, Type: core.Expense, Account: core.Savings,
		Category: core.CategoryFood, Date: core.NewDate(2025, time.March, 5),
		Description: "lunch",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	after, err := dash.Overview(ctx, "u1", 2025, time.March)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if after.Spent.Cents != 3000 {
		t.Fatalf("stale snapshot served after mutation, spent = %d", after.Spent.Cents)
	}
}

func TestPayBillCreatesLinkedTransaction(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	txSvc := NewTransactionService(store, nil, nil, nil)
	recSvc := NewRecurringService(store, txSvc, nil, nil)
	recSvc.now = func() time.Time { return time.Date(2025, time.April, 12, 0, 0, 0, 0, time.UTC) }

	bill, err := recSvc.Create(ctx, "u1", core.Recurring{
		Description: "Electricity", Amount: core.Money{Cents: 8000}, DueDay: 10, Account: core.Savings,
	})
	if err != nil {
		t.Fatalf("create bill: %v", err)
	}

	paid, err := recSvc.Pay(ctx, "u1", bill.ID, core.NewDate(2025, time.April, 9))
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if paid.RecurringID != bill.ID || paid.Category != core.CategoryFixed {
		t.Fatalf("payment = %+v", paid)
	}
	if paid.Amount.Cents != 8000 {
		t.Fatalf("amount = %d", paid.Amount.Cents)
	}

	settled, _ := store.GetRecurring(ctx, "u1", bill.ID)
	if !settled.LastPaymentDate.SameMonth(2025, time.April) {
		t.Fatalf("LastPaymentDate = %v", settled.LastPaymentDate)
	}

	views, progress, err := recSvc.Summary(ctx, "u1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if progress.Total.Cents != 8000 || progress.Paid.Cents != 8000 {
		t.Fatalf("progress = %+v", progress)
	}
	if progress.Remaining.Cents != 0 || progress.PercentPaid != 100 {
		t.Fatalf("progress = %+v", progress)
	}
	if len(views) != 1 || len(views[0].RecentPayments) != 1 {
		t.Fatalf("views = %+v", views)
	}
}
