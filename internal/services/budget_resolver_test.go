package services

import (
	"testing"

	"github.com/cesaralej/agastar/internal/core"
)

func findResolved(t *testing.T, resolved []ResolvedBudget, c core.Category) ResolvedBudget {
	t.Helper()
	for _, rb := range resolved {
		if rb.Category == c {
			return rb
		}
	}
	t.Fatalf("no resolved budget for %s", c)
	return ResolvedBudget{}
}

func TestResolveBudgetsDerivedCategories(t *testing.T) {
	// Income 1000.00, no explicit budgets, bills total 200.00. The
	// leftover flows to the discretionary bucket in full.
	income := core.Money{Cents: 100000}
	recurring := core.Money{Cents: 20000}
	resolved := ResolveBudgets(nil, nil, income, recurring)

	if len(resolved) != len(core.BudgetableCategories()) {
		t.Fatalf("expected %d rows, got %d", len(core.BudgetableCategories()), len(resolved))
	}
	fixed := findResolved(t, resolved, core.CategoryFixed)
	if fixed.Amount.Cents != 20000 || !fixed.Derived {
		t.Fatalf("fixed = %+v", fixed)
	}
	disc := findResolved(t, resolved, core.CategoryDiscretionary)
	if disc.Amount.Cents != 80000 || !disc.Derived {
		t.Fatalf("discretionary = %+v", disc)
	}

	s := Summarize(resolved, income)
	if s.TotalBudgeted.Cents != 100000 {
		t.Fatalf("TotalBudgeted = %d", s.TotalBudgeted.Cents)
	}
	if s.Remaining.Cents != 0 {
		t.Fatalf("Remaining = %d", s.Remaining.Cents)
	}
	if s.OverBudget {
		t.Fatal("should not be over budget")
	}
}

func TestResolveBudgetsExplicitRows(t *testing.T) {
	income := core.Money{Cents: 100000}
	recurring := core.Money{Cents: 20000}
	stored := []core.Budget{
		{Category: core.CategoryGroceries, Amount: core.Money{Cents: 30000}},
		{Category: core.CategoryFun, Amount: core.Money{Cents: 10000}},
	}
	spent := map[core.Category]core.Money{
		core.CategoryGroceries: {Cents: 12345},
	}
	resolved := ResolveBudgets(stored, spent, income, recurring)

	g := findResolved(t, resolved, core.CategoryGroceries)
	if g.Amount.Cents != 30000 || g.Spent.Cents != 12345 || g.Derived {
		t.Fatalf("groceries = %+v", g)
	}
	if rides := findResolved(t, resolved, core.CategoryRides); rides.Amount.Cents != 0 {
		t.Fatalf("unset category should resolve to zero, got %d", rides.Amount.Cents)
	}
	// 1000 - 300 - 100 - 200 = 400 left over
	if disc := findResolved(t, resolved, core.CategoryDiscretionary); disc.Amount.Cents != 40000 {
		t.Fatalf("discretionary = %d", disc.Amount.Cents)
	}
}

func TestResolveBudgetsDiscretionaryFloorsAtZero(t *testing.T) {
	income := core.Money{Cents: 10000}
	recurring := core.Money{Cents: 8000}
	stored := []core.Budget{
		{Category: core.CategoryGroceries, Amount: core.Money{Cents: 5000}},
	}
	resolved := ResolveBudgets(stored, nil, income, recurring)
	if disc := findResolved(t, resolved, core.CategoryDiscretionary); disc.Amount.Cents != 0 {
		t.Fatalf("discretionary must floor at zero, got %d", disc.Amount.Cents)
	}
	s := Summarize(resolved, income)
	if !s.OverBudget {
		t.Fatal("allocations exceed income, should be over budget")
	}
	if s.Remaining.Cents != -3000 {
		t.Fatalf("Remaining = %d", s.Remaining.Cents)
	}
	if s.PercentUsed != 100 {
		t.Fatalf("PercentUsed should cap at 100, got %d", s.PercentUsed)
	}
}

func TestSummarizeZeroIncome(t *testing.T) {
	resolved := ResolveBudgets(nil, nil, core.Money{}, core.Money{Cents: 5000})
	s := Summarize(resolved, core.Money{})
	if s.PercentUsed != 0 {
		t.Fatalf("zero income must read 0%%, got %d", s.PercentUsed)
	}
	if !s.OverBudget {
		t.Fatal("budgeting against zero income is over budget")
	}
}
