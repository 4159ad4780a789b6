// Package http provides the JSON API server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request
// data. Request bodies are JSON; monetary amounts are accepted both as
// decimal strings ("12.34") and bare numbers, and coerced to cents at
// this boundary.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cesaralej/agastar/internal/core"
)

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month int
}

// ParseMonthParams extracts year and month from query parameters, using the
// current date as defaults.
func ParseMonthParams(query url.Values) MonthParams {
	now := time.Now()
	params := MonthParams{
		Year:  now.Year(),
		Month: int(now.Month()),
	}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			params.Month = m
		}
	}

	return params
}

// ParseOptionalMonthParams is like ParseMonthParams but leaves both values
// zero when absent, so list endpoints can distinguish "this month" from
// "everything".
func ParseOptionalMonthParams(query url.Values) MonthParams {
	var params MonthParams
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			params.Year = y
		}
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			params.Month = m
		}
	}
	return params
}

var errMalformedBody = errors.New("malformed request body")

// decodeJSON reads a JSON request body into dst. An empty body leaves
// dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

// amountField accepts a monetary amount as either a JSON string
// ("12.34", "12,34") or a bare number, keeping the raw text so
// ParseDecimalToCents does the coercion in one place.
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	*a = amountField(s)
	return nil
}

func parseAmount(a amountField) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(string(a))
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

type transactionRequest struct {
	Amount              amountField `json:"amount"`
	Type                string      `json:"type"`
	Account             string      `json:"account"`
	Category            string      `json:"category"`
	Date                string      `json:"date"`
	EffectiveDate       string      `json:"effectiveDate"`
	Description         string      `json:"description"`
	Comment             string      `json:"comment"`
	IsCreditCardPayment bool        `json:"isCreditCardPayment"`
	RecurringID         string      `json:"recurringId"`
}

func (req transactionRequest) toTransaction() (core.Transaction, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	effective, err := core.ParseDate(req.EffectiveDate)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Amount:              amount,
		Type:                core.TransactionType(req.Type),
		Account:             core.Account(req.Account),
		Category:            core.Category(req.Category),
		Date:                date,
		EffectiveDate:       effective,
		Description:         strings.TrimSpace(req.Description),
		Comment:             strings.TrimSpace(req.Comment),
		IsCreditCardPayment: req.IsCreditCardPayment,
		RecurringID:         req.RecurringID,
	}, nil
}

// transactionPatchRequest mirrors transactionRequest with every field
// optional; absent fields leave the stored value untouched.
type transactionPatchRequest struct {
	Amount              *amountField `json:"amount"`
	Type                *string      `json:"type"`
	Account             *string      `json:"account"`
	Category            *string      `json:"category"`
	Date                *string      `json:"date"`
	EffectiveDate       *string      `json:"effectiveDate"`
	Description         *string      `json:"description"`
	Comment             *string      `json:"comment"`
	IsCreditCardPayment *bool        `json:"isCreditCardPayment"`
	RecurringID         *string      `json:"recurringId"`
}

func (req transactionPatchRequest) toPatch() (core.TransactionPatch, error) {
	var patch core.TransactionPatch
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			return patch, err
		}
		patch.Amount = &amount
	}
	if req.Type != nil {
		t := core.TransactionType(*req.Type)
		patch.Type = &t
	}
	if req.Account != nil {
		a := core.Account(*req.Account)
		patch.Account = &a
	}
	if req.Category != nil {
		c := core.Category(*req.Category)
		patch.Category = &c
	}
	if req.Date != nil {
		d, err := core.ParseDate(*req.Date)
		if err != nil {
			return patch, err
		}
		patch.Date = &d
	}
	if req.EffectiveDate != nil {
		d, err := core.ParseDate(*req.EffectiveDate)
		if err != nil {
			return patch, err
		}
		patch.EffectiveDate = &d
	}
	if req.Description != nil {
		s := strings.TrimSpace(*req.Description)
		patch.Description = &s
	}
	if req.Comment != nil {
		s := strings.TrimSpace(*req.Comment)
		patch.Comment = &s
	}
	if req.IsCreditCardPayment != nil {
		patch.IsCreditCardPayment = req.IsCreditCardPayment
	}
	if req.RecurringID != nil {
		patch.RecurringID = req.RecurringID
	}
	return patch, nil
}

type budgetRequest struct {
	Category string      `json:"category"`
	Month    int         `json:"month"`
	Year     int         `json:"year"`
	Amount   amountField `json:"amount"`
}

func (req budgetRequest) toBudget() (core.Budget, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Budget{}, err
	}
	return core.Budget{
		Category: core.Category(req.Category),
		Month:    time.Month(req.Month),
		Year:     req.Year,
		Amount:   amount,
	}, nil
}

type recurringRequest struct {
	Description string      `json:"description"`
	Amount      amountField `json:"amount"`
	DueDay      int         `json:"dueDay"`
	Account     string      `json:"account"`
}

func (req recurringRequest) toRecurring() (core.Recurring, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Recurring{}, err
	}
	return core.Recurring{
		Description: strings.TrimSpace(req.Description),
		Amount:      amount,
		DueDay:      req.DueDay,
		Account:     core.Account(req.Account),
	}, nil
}

type recurringPatchRequest struct {
	Description *string      `json:"description"`
	Amount      *amountField `json:"amount"`
	DueDay      *int         `json:"dueDay"`
	Account     *string      `json:"account"`
}

func (req recurringPatchRequest) toPatch() (core.RecurringPatch, error) {
	var patch core.RecurringPatch
	if req.Description != nil {
		s := strings.TrimSpace(*req.Description)
		patch.Description = &s
	}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			return patch, err
		}
		patch.Amount = &amount
	}
	if req.DueDay != nil {
		patch.DueDay = req.DueDay
	}
	if req.Account != nil {
		a := core.Account(*req.Account)
		patch.Account = &a
	}
	return patch, nil
}

type payRequest struct {
	Date string `json:"date"`
}
