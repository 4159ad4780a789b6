// Package services holds the domain logic that sits between the HTTP
// layer and storage: aggregation over transactions, budget resolution
// and recurring bill matching.
package services

import (
	"time"

	"github.com/cesaralej/agastar/internal/core"
)

// BalanceSummary is the income/expense split over a set of transactions
// plus the running balance of each account. Credit card payments move
// money between accounts and count toward neither Income nor Expenses.
type BalanceSummary struct {
	Income   core.Money
	Expenses core.Money
	Balance  core.Money
	Savings  core.Money
	Credit   core.Money
}

// DaySpend is the expense total for one day of a month.
type DaySpend struct {
	Day   int
	Spent core.Money
}

// SplitIncomeExpense walks the transactions once and produces the
// balance summary. Card spending grows the credit balance and counts as
// an expense no matter the transaction type; a credit card payment
// nets against both running balances and skips classification entirely.
func SplitIncomeExpense(txs []core.Transaction) BalanceSummary {
	var s BalanceSummary
	for _, tx := range txs {
		if tx.IsCreditCardPayment {
			s.Credit = s.Credit.Sub(tx.Amount)
			s.Savings = s.Savings.Sub(tx.Amount)
			continue
		}
		if tx.Account == core.Savings {
			if tx.Type == core.Income {
				s.Savings = s.Savings.Add(tx.Amount)
				s.Income = s.Income.Add(tx.Amount)
			} else {
				s.Savings = s.Savings.Sub(tx.Amount)
				s.Expenses = s.Expenses.Add(tx.Amount)
			}
		} else {
			s.Credit = s.Credit.Add(tx.Amount)
			s.Expenses = s.Expenses.Add(tx.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expenses)
	return s
}

// CategorySpend groups expense totals by year, month and category,
// keyed by each transaction's effective date. Credit card payments are
// skipped.
func CategorySpend(txs []core.Transaction) map[int]map[time.Month]map[core.Category]core.Money {
	out := make(map[int]map[time.Month]map[core.Category]core.Money)
	for _, tx := range txs {
		if tx.Type != core.Expense || tx.IsCreditCardPayment {
			continue
		}
		eff := tx.EffectiveOrDate()
		year, month := eff.Year(), eff.Month()
		if out[year] == nil {
			out[year] = make(map[time.Month]map[core.Category]core.Money)
		}
		if out[year][month] == nil {
			out[year][month] = make(map[core.Category]core.Money)
		}
		out[year][month][tx.Category] = out[year][month][tx.Category].Add(tx.Amount)
	}
	return out
}

// IncomeForMonth sums income whose effective date falls in the given
// month. Credit card payments never count as income.
func IncomeForMonth(txs []core.Transaction, year int, month time.Month) core.Money {
	var total core.Money
	for _, tx := range txs {
		if tx.Type != core.Income || tx.IsCreditCardPayment {
			continue
		}
		if tx.EffectiveOrDate().SameMonth(year, month) {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// SpentForMonth sums expenses whose effective date falls in the given
// month, excluding credit card payments.
func SpentForMonth(txs []core.Transaction, year int, month time.Month) core.Money {
	var total core.Money
	for _, tx := range txs {
		if tx.Type != core.Expense || tx.IsCreditCardPayment {
			continue
		}
		if tx.EffectiveOrDate().SameMonth(year, month) {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// DailySpend returns one entry per calendar day of the month, in
// ascending day order, with zero totals for days without spending.
// Days are keyed by the transaction's actual date, not the effective
// one: the chart answers "what left the account and when".
func DailySpend(txs []core.Transaction, year int, month time.Month) []DaySpend {
	days := make([]DaySpend, core.DaysInMonth(year, month))
	for i := range days {
		days[i].Day = i + 1
	}
	for _, tx := range txs {
		if tx.Type != core.Expense || tx.IsCreditCardPayment {
			continue
		}
		if !tx.Date.SameMonth(year, month) {
			continue
		}
		d := tx.Date.Day()
		days[d-1].Spent = days[d-1].Spent.Add(tx.Amount)
	}
	return days
}
