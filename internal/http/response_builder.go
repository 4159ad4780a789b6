// Package http provides the JSON API server and handler implementations.
//
// This file builds the wire representations of domain records and maps
// domain errors to HTTP status codes. Money travels as a decimal string
// plus raw cents so clients never parse floats.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cesaralej/agastar/internal/core"
	"github.com/cesaralej/agastar/internal/log"
	"github.com/cesaralej/agastar/internal/services"
)

// formatCents renders cents as a decimal string, e.g. 1234 -> "12.34".
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

type moneyJSON struct {
	Amount string `json:"amount"`
	Cents  int64  `json:"cents"`
}

func toMoneyJSON(m core.Money) moneyJSON {
	return moneyJSON{Amount: formatCents(m.Cents), Cents: m.Cents}
}

type transactionJSON struct {
	ID                  string    `json:"id"`
	Amount              moneyJSON `json:"amount"`
	Type                string    `json:"type"`
	Account             string    `json:"account"`
	Category            string    `json:"category"`
	Date                core.Date `json:"date"`
	EffectiveDate       core.Date `json:"effectiveDate"`
	Description         string    `json:"description"`
	Comment             string    `json:"comment,omitempty"`
	IsCreditCardPayment bool      `json:"isCreditCardPayment"`
	RecurringID         string    `json:"recurringId,omitempty"`
}

func toTransactionJSON(tx core.Transaction) transactionJSON {
	return transactionJSON{
		ID:                  tx.ID,
		Amount:              toMoneyJSON(tx.Amount),
		Type:                string(tx.Type),
		Account:             string(tx.Account),
		Category:            string(tx.Category),
		Date:                tx.Date,
		EffectiveDate:       tx.EffectiveDate,
		Description:         tx.Description,
		Comment:             tx.Comment,
		IsCreditCardPayment: tx.IsCreditCardPayment,
		RecurringID:         tx.RecurringID,
	}
}

func toTransactionListJSON(txs []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionJSON(tx)
	}
	return out
}

type budgetJSON struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	Amount      moneyJSON `json:"amount"`
	LastUpdated string    `json:"lastUpdated,omitempty"`
}

func toBudgetJSON(b core.Budget) budgetJSON {
	out := budgetJSON{
		ID:       b.ID,
		Category: string(b.Category),
		Month:    int(b.Month),
		Year:     b.Year,
		Amount:   toMoneyJSON(b.Amount),
	}
	if !b.LastUpdated.IsZero() {
		out.LastUpdated = b.LastUpdated.UTC().Format(time.RFC3339)
	}
	return out
}

type resolvedBudgetJSON struct {
	Category string    `json:"category"`
	Amount   moneyJSON `json:"amount"`
	Spent    moneyJSON `json:"spent"`
	Derived  bool      `json:"derived"`
}

func toResolvedBudgetJSON(rb services.ResolvedBudget) resolvedBudgetJSON {
	return resolvedBudgetJSON{
		Category: string(rb.Category),
		Amount:   toMoneyJSON(rb.Amount),
		Spent:    toMoneyJSON(rb.Spent),
		Derived:  rb.Derived,
	}
}

type budgetSummaryJSON struct {
	Income        moneyJSON `json:"income"`
	TotalBudgeted moneyJSON `json:"totalBudgeted"`
	TotalSpent    moneyJSON `json:"totalSpent"`
	Remaining     moneyJSON `json:"remaining"`
	PercentUsed   int       `json:"percentUsed"`
	OverBudget    bool      `json:"overBudget"`
}

func toBudgetSummaryJSON(s services.BudgetSummary) budgetSummaryJSON {
	return budgetSummaryJSON{
		Income:        toMoneyJSON(s.Income),
		TotalBudgeted: toMoneyJSON(s.TotalBudgeted),
		TotalSpent:    toMoneyJSON(s.TotalSpent),
		Remaining:     toMoneyJSON(s.Remaining),
		PercentUsed:   s.PercentUsed,
		OverBudget:    s.OverBudget,
	}
}

type balanceJSON struct {
	Income   moneyJSON `json:"income"`
	Expenses moneyJSON `json:"expenses"`
	Balance  moneyJSON `json:"balance"`
	Savings  moneyJSON `json:"savings"`
	Credit   moneyJSON `json:"credit"`
}

func toBalanceJSON(b services.BalanceSummary) balanceJSON {
	return balanceJSON{
		Income:   toMoneyJSON(b.Income),
		Expenses: toMoneyJSON(b.Expenses),
		Balance:  toMoneyJSON(b.Balance),
		Savings:  toMoneyJSON(b.Savings),
		Credit:   toMoneyJSON(b.Credit),
	}
}

type daySpendJSON struct {
	Day   int       `json:"day"`
	Spent moneyJSON `json:"spent"`
}

type billJSON struct {
	ID              string            `json:"id"`
	Description     string            `json:"description"`
	Amount          moneyJSON         `json:"amount"`
	DueDay          int               `json:"dueDay"`
	Account         string            `json:"account"`
	LastPaymentDate core.Date         `json:"lastPaymentDate"`
	Status          string            `json:"status"`
	RecentPayments  []transactionJSON `json:"recentPayments"`
}

func toBillJSON(v services.BillView) billJSON {
	return billJSON{
		ID:              v.Bill.ID,
		Description:     v.Bill.Description,
		Amount:          toMoneyJSON(v.Bill.Amount),
		DueDay:          v.Bill.DueDay,
		Account:         string(v.Bill.Account),
		LastPaymentDate: v.Bill.LastPaymentDate,
		Status:          v.Status.String(),
		RecentPayments:  toTransactionListJSON(v.RecentPayments),
	}
}

type billProgressJSON struct {
	Total       moneyJSON `json:"total"`
	Paid        moneyJSON `json:"paid"`
	Remaining   moneyJSON `json:"remaining"`
	PercentPaid int       `json:"percentPaid"`
}

func toBillProgressJSON(p services.BillProgress) billProgressJSON {
	return billProgressJSON{
		Total:       toMoneyJSON(p.Total),
		Paid:        toMoneyJSON(p.Paid),
		Remaining:   toMoneyJSON(p.Remaining),
		PercentPaid: p.PercentPaid,
	}
}

type recurringJSON struct {
	ID              string    `json:"id"`
	Description     string    `json:"description"`
	Amount          moneyJSON `json:"amount"`
	DueDay          int       `json:"dueDay"`
	Account         string    `json:"account"`
	LastPaymentDate core.Date `json:"lastPaymentDate"`
	LastUpdated     string    `json:"lastUpdated,omitempty"`
}

func toRecurringJSON(r core.Recurring) recurringJSON {
	out := recurringJSON{
		ID:              r.ID,
		Description:     r.Description,
		Amount:          toMoneyJSON(r.Amount),
		DueDay:          r.DueDay,
		Account:         string(r.Account),
		LastPaymentDate: r.LastPaymentDate,
	}
	if !r.LastUpdated.IsZero() {
		out.LastUpdated = r.LastUpdated.UTC().Format(time.RFC3339)
	}
	return out
}

type overviewJSON struct {
	Year    int                  `json:"year"`
	Month   int                  `json:"month"`
	Balance balanceJSON          `json:"balance"`
	Budget  budgetSummaryJSON    `json:"budget"`
	Budgets []resolvedBudgetJSON `json:"budgets"`
	Daily   []daySpendJSON       `json:"daily"`
	Bills   []billJSON           `json:"bills"`
	Income  moneyJSON            `json:"income"`
	Spent   moneyJSON            `json:"spent"`
}

func toOverviewJSON(o services.Overview) overviewJSON {
	budgets := make([]resolvedBudgetJSON, len(o.Budgets))
	for i, rb := range o.Budgets {
		budgets[i] = toResolvedBudgetJSON(rb)
	}
	daily := make([]daySpendJSON, len(o.Daily))
	for i, d := range o.Daily {
		daily[i] = daySpendJSON{Day: d.Day, Spent: toMoneyJSON(d.Spent)}
	}
	bills := make([]billJSON, len(o.Bills))
	for i, b := range o.Bills {
		bills[i] = toBillJSON(b)
	}
	return overviewJSON{
		Year:    o.Year,
		Month:   int(o.Month),
		Balance: toBalanceJSON(o.Balance),
		Budget:  toBudgetSummaryJSON(o.Budget),
		Budgets: budgets,
		Daily:   daily,
		Bills:   bills,
		Income:  toMoneyJSON(o.Income),
		Spent:   toMoneyJSON(o.Spent),
	}
}

// validationErrs is the family of input errors that map to 422.
var validationErrs = []error{
	core.ErrValidation,
	core.ErrInvalidAmount,
	core.ErrInvalidType,
	core.ErrInvalidAccount,
	core.ErrInvalidCategory,
	core.ErrInvalidDueDay,
	core.ErrEmptyDescription,
	core.ErrReservedCategory,
	core.ErrUnbudgetedCategory,
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest
	}
	for _, v := range validationErrs {
		if errors.Is(err, v) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	msg := err.Error()
	logger := log.FromContext(r.Context())
	switch {
	case status == http.StatusInternalServerError:
		logger.ErrorContext(r.Context(), "Request failed",
			log.FieldError, err, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
		msg = "internal error"
	case status == http.StatusServiceUnavailable:
		logger.ErrorContext(r.Context(), "Store unavailable",
			log.FieldError, err, log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
