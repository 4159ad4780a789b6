package http

import (
	"encoding/json"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/cesaralej/agastar/internal/core"
)

func newBody(s string) io.Reader {
	return strings.NewReader(s)
}

func TestParseMonthParams(t *testing.T) {
	q := url.Values{"year": {"2025"}, "month": {"3"}}
	p := ParseMonthParams(q)
	if p.Year != 2025 || p.Month != 3 {
		t.Fatalf("got %+v", p)
	}

	// Missing values default to the current month.
	now := time.Now()
	p = ParseMonthParams(url.Values{})
	if p.Year != now.Year() || p.Month != int(now.Month()) {
		t.Fatalf("expected current month defaults, got %+v", p)
	}

	// Garbage values fall back to defaults too.
	p = ParseMonthParams(url.Values{"year": {"soon"}, "month": {"13th"}})
	if p.Year != now.Year() || p.Month != int(now.Month()) {
		t.Fatalf("expected defaults for garbage input, got %+v", p)
	}
}

func TestParseOptionalMonthParams(t *testing.T) {
	p := ParseOptionalMonthParams(url.Values{})
	if p.Year != 0 || p.Month != 0 {
		t.Fatalf("expected zero params when absent, got %+v", p)
	}
}

func TestTransactionRequestCoercesAmounts(t *testing.T) {
	cases := []struct {
		body string
		want int64
	}{
		{`{"amount":"12.34"}`, 1234},
		{`{"amount":"12,34"}`, 1234},
		{`{"amount":12.34}`, 1234},
		{`{"amount":50}`, 5000},
	}
	for _, tc := range cases {
		var req transactionRequest
		if err := json.NewDecoder(newBody(tc.body)).Decode(&req); err != nil {
			t.Fatalf("decode %q: %v", tc.body, err)
		}
		amount, err := parseAmount(req.Amount)
		if err != nil {
			t.Fatalf("parseAmount %q: %v", tc.body, err)
		}
		if amount.Cents != tc.want {
			t.Fatalf("amount for %q = %d, want %d", tc.body, amount.Cents, tc.want)
		}
	}

	var req transactionRequest
	if err := json.NewDecoder(newBody(`{"amount":"free"}`)).Decode(&req); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := parseAmount(req.Amount); err == nil {
		t.Fatal("expected error for non-numeric amount")
	}
}

func TestTransactionPatchRequestOmitsAbsentFields(t *testing.T) {
	var req transactionPatchRequest
	if err := json.NewDecoder(newBody(`{"description":"renamed"}`)).Decode(&req); err != nil {
		t.Fatalf("decode: %v", err)
	}
	patch, err := req.toPatch()
	if err != nil {
		t.Fatalf("toPatch: %v", err)
	}
	if patch.Description == nil || *patch.Description != "renamed" {
		t.Fatalf("description = %v", patch.Description)
	}
	if patch.Amount != nil || patch.Type != nil || patch.Date != nil {
		t.Fatal("absent fields must stay nil")
	}
}

func TestBudgetRequestToBudget(t *testing.T) {
	var req budgetRequest
	if err := json.Unmarshal([]byte(`{"category":"groceries","month":11,"year":2025,"amount":"300.00"}`), &req); err != nil {
		t.Fatalf("decode: %v", err)
	}
	b, err := req.toBudget()
	if err != nil {
		t.Fatalf("toBudget: %v", err)
	}
	if b.Category != core.CategoryGroceries || b.Month != time.November || b.Year != 2025 {
		t.Fatalf("got %+v", b)
	}
	if b.Amount.Cents != 30000 {
		t.Fatalf("amount = %d", b.Amount.Cents)
	}
}
