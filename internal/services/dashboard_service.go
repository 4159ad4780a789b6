package services

import (
	"context"
	"time"

	"github.com/cesaralej/agastar/internal/cache"
	"github.com/cesaralej/agastar/internal/core"
	"github.com/cesaralej/agastar/internal/storage"
)

// Overview is the dashboard snapshot for one month, recomputed fresh
// from the latest data on every cache miss.
type Overview struct {
	Year    int
	Month   time.Month
	Balance BalanceSummary
	Budget  BudgetSummary
	Budgets []ResolvedBudget
	Daily   []DaySpend
	Bills   []BillView
	Income  core.Money
	Spent   core.Money
}

// DashboardService assembles the derived monthly views. Results are
// cached per (user, period) and dropped whenever anything mutates.
type DashboardService struct {
	store storage.Store
	cache *cache.LRUCache[Overview]
	now   func() time.Time
}

func NewDashboardService(store storage.Store, c *cache.LRUCache[Overview]) *DashboardService {
	return &DashboardService{store: store, cache: c, now: time.Now}
}

// Overview computes or serves the cached dashboard for a month.
func (s *DashboardService) Overview(ctx context.Context, userID string, year int, month time.Month) (Overview, error) {
	key := cache.SnapshotKey(userID, year, month)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}
	}

	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	budgets, err := s.store.ListBudgets(ctx, userID, year, month)
	if err != nil {
		return Overview{}, err
	}
	bills, err := s.store.ListRecurrings(ctx, userID)
	if err != nil {
		return Overview{}, err
	}

	income := IncomeForMonth(txs, year, month)
	recurringTotal := TotalRecurring(bills)
	spent := CategorySpend(txs)[year][month]

	resolved := ResolveBudgets(budgets, spent, income, recurringTotal)

	today := s.now()
	views := make([]BillView, len(bills))
	for i, bill := range bills {
		views[i] = BillView{
			Bill:           bill,
			Status:         Status(bill, today),
			RecentPayments: RecentPayments(bill, txs, 3),
		}
	}

	o := Overview{
		Year:    year,
		Month:   month,
		Balance: SplitIncomeExpense(txs),
		Budget:  Summarize(resolved, income),
		Budgets: resolved,
		Daily:   DailySpend(txs, year, month),
		Bills:   views,
		Income:  income,
		Spent:   SpentForMonth(txs, year, month),
	}

	if s.cache != nil {
		s.cache.Set(key, o)
	}
	return o, nil
}
