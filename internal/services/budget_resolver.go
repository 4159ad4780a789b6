package services

import (
	"github.com/cesaralej/agastar/internal/core"
)

// ResolvedBudget is one category's allocation for a month after the
// reserved categories have been derived. Derived marks the two rows
// that never come from storage.
type ResolvedBudget struct {
	Category core.Category
	Amount   core.Money
	Spent    core.Money
	Derived  bool
}

// BudgetSummary rolls a month's resolved budgets into the headline
// numbers the dashboard shows. Remaining may go negative when the
// allocations outrun the month's income.
type BudgetSummary struct {
	Income        core.Money
	TotalBudgeted core.Money
	TotalSpent    core.Money
	Remaining     core.Money
	// PercentUsed is the budgeted share of income, capped at 100.
	// A month with no income reads as 0, not a division blowup.
	PercentUsed int
	OverBudget  bool
}

// ResolveBudgets merges the stored budgets for a month with the two
// derived ones: the fixed category carries the recurring bill total,
// and the discretionary category absorbs whatever income is left after
// every explicit budget and the bills, floored at zero. Categories
// with no stored row resolve to a zero allocation. The result is in
// taxonomy order, one row per budgetable or reserved category.
func ResolveBudgets(stored []core.Budget, spent map[core.Category]core.Money, income, recurringTotal core.Money) []ResolvedBudget {
	byCategory := make(map[core.Category]core.Money, len(stored))
	var explicitTotal core.Money
	for _, b := range stored {
		byCategory[b.Category] = b.Amount
		explicitTotal = explicitTotal.Add(b.Amount)
	}

	leftover := income.Sub(explicitTotal).Sub(recurringTotal)
	if leftover.IsNegative() {
		leftover = core.Money{}
	}

	out := make([]ResolvedBudget, 0, len(core.BudgetableCategories()))
	for _, c := range core.BudgetableCategories() {
		rb := ResolvedBudget{Category: c, Spent: spent[c]}
		switch c {
		case core.CategoryFixed:
			rb.Amount, rb.Derived = recurringTotal, true
		case core.CategoryDiscretionary:
			rb.Amount, rb.Derived = leftover, true
		default:
			rb.Amount = byCategory[c]
		}
		out = append(out, rb)
	}
	return out
}

// Summarize folds resolved budgets into the month's summary.
func Summarize(resolved []ResolvedBudget, income core.Money) BudgetSummary {
	s := BudgetSummary{Income: income}
	for _, rb := range resolved {
		s.TotalBudgeted = s.TotalBudgeted.Add(rb.Amount)
		s.TotalSpent = s.TotalSpent.Add(rb.Spent)
	}
	s.Remaining = income.Sub(s.TotalBudgeted)
	s.OverBudget = s.TotalBudgeted.Cents > income.Cents
	if income.Cents > 0 {
		pct := s.TotalBudgeted.Cents * 100 / income.Cents
		if pct > 100 {
			pct = 100
		}
		s.PercentUsed = int(pct)
	}
	return s
}
