package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/cesaralej/agastar/internal/core"
)

// DueState is derived from a bill's last payment and due day; it is
// never stored.
type DueState int

const (
	Paid DueState = iota
	DueToday
	Due
	Overdue
)

// DueStatus is a bill's state relative to a reference day, with the
// day distance for the due and overdue cases.
type DueStatus struct {
	State DueState
	Days  int
}

func (s DueStatus) String() string {
	switch s.State {
	case Paid:
		return "Paid this month"
	case DueToday:
		return "Due today"
	case Due:
		return fmt.Sprintf("Due in %d days", s.Days)
	default:
		return fmt.Sprintf("Overdue by %d days", s.Days)
	}
}

// Status computes a bill's due status as of today. A last payment in
// the current calendar month means paid; otherwise the distance to the
// due day decides. A due day past the end of the month (day 31 in
// February) clamps to the month's last day.
func Status(r core.Recurring, today time.Time) DueStatus {
	if !r.LastPaymentDate.IsEmpty() && r.LastPaymentDate.SameMonth(today.Year(), today.Month()) {
		return DueStatus{State: Paid}
	}
	due := r.DueDay
	if max := core.DaysInMonth(today.Year(), today.Month()); due > max {
		due = max
	}
	diff := due - today.Day()
	switch {
	case diff == 0:
		return DueStatus{State: DueToday}
	case diff > 0:
		return DueStatus{State: Due, Days: diff}
	default:
		return DueStatus{State: Overdue, Days: -diff}
	}
}

// BillProgress is the month's bill load and how much of it is already
// settled.
type BillProgress struct {
	Total       core.Money
	Paid        core.Money
	Remaining   core.Money
	PercentPaid int
}

// SummarizeBills rolls the bills into paid vs. remaining totals as of
// today. No bills means zero percent, not a division blowup.
func SummarizeBills(bills []core.Recurring, today time.Time) BillProgress {
	var p BillProgress
	for _, b := range bills {
		p.Total = p.Total.Add(b.Amount)
		if Status(b, today).State == Paid {
			p.Paid = p.Paid.Add(b.Amount)
		}
	}
	p.Remaining = p.Total.Sub(p.Paid)
	if p.Total.Cents > 0 {
		p.PercentPaid = int(p.Paid.Cents * 100 / p.Total.Cents)
	}
	return p
}

// TotalRecurring sums every bill's amount. This total backs the fixed
// category's derived budget.
func TotalRecurring(items []core.Recurring) core.Money {
	var total core.Money
	for _, r := range items {
		total = total.Add(r.Amount)
	}
	return total
}

// matchesBill reports whether a transaction settles the given bill.
// An explicit RecurringID link wins; unlinked fixed-category expenses
// fall back to exact description equality.
func matchesBill(tx core.Transaction, r core.Recurring) bool {
	if tx.RecurringID != "" {
		return tx.RecurringID == r.ID
	}
	return tx.Type == core.Expense &&
		tx.Category == core.CategoryFixed &&
		tx.Description == r.Description
}

// FindSettlement picks the bill a transaction settles, or false when
// none matches. Linked transactions resolve by ID; the description
// heuristic only applies to fixed-category expenses.
func FindSettlement(bills []core.Recurring, tx core.Transaction) (core.Recurring, bool) {
	for _, r := range bills {
		if matchesBill(tx, r) {
			return r, true
		}
	}
	return core.Recurring{}, false
}

// RecentPayments returns the bill's most recent settling transactions,
// newest first, at most limit entries.
func RecentPayments(r core.Recurring, txs []core.Transaction, limit int) []core.Transaction {
	var matched []core.Transaction
	for _, tx := range txs {
		if matchesBill(tx, r) {
			matched = append(matched, tx)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date.Time)
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}
