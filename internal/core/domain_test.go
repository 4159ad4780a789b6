package core

import (
	"testing"
	"time"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Amount:      Money{Cents: 1250},
		Type:        Expense,
		Account:     Savings,
		Category:    CategoryGroceries,
		Date:        NewDate(2025, time.March, 12),
		Description: "weekly shop",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Amount: Money{Cents: -1}, Type: Expense, Account: Savings, Category: CategoryFood, Date: NewDate(2025, 3, 1), Description: "a"},
		{Amount: Money{Cents: 1}, Type: "transfer", Account: Savings, Category: CategoryFood, Date: NewDate(2025, 3, 1), Description: "a"},
		{Amount: Money{Cents: 1}, Type: Expense, Account: "cash", Category: CategoryFood, Date: NewDate(2025, 3, 1), Description: "a"},
		{Amount: Money{Cents: 1}, Type: Expense, Account: Savings, Category: "pets", Date: NewDate(2025, 3, 1), Description: "a"},
		{Amount: Money{Cents: 1}, Type: Expense, Account: Savings, Category: CategoryFood, Description: "a"}, // zero date
		{Amount: Money{Cents: 1}, Type: Expense, Account: Savings, Category: CategoryFood, Date: NewDate(2025, 3, 1), Description: ""},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionEffectiveOrDate(t *testing.T) {
	tx := Transaction{Date: NewDate(2025, time.January, 28)}
	if got := tx.EffectiveOrDate(); !got.Equal(tx.Date.Time) {
		t.Fatalf("expected fallback to Date, got %v", got)
	}
	tx.EffectiveDate = NewDate(2025, time.February, 1)
	if got := tx.EffectiveOrDate(); got.Month() != time.February {
		t.Fatalf("expected effective date, got %v", got)
	}
}

func TestBudgetValidate(t *testing.T) {
	good := Budget{Category: CategoryGroceries, Month: time.May, Year: 2025, Amount: Money{Cents: 30000}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		b    Budget
		want error
	}{
		{"salary takes no budget", Budget{Category: CategorySalary, Month: time.May, Year: 2025}, ErrUnbudgetedCategory},
		{"fixed is derived", Budget{Category: CategoryFixed, Month: time.May, Year: 2025}, ErrReservedCategory},
		{"discretionary is derived", Budget{Category: CategoryDiscretionary, Month: time.May, Year: 2025}, ErrReservedCategory},
		{"unknown category", Budget{Category: "pets", Month: time.May, Year: 2025}, ErrInvalidCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.b.Validate(); err != tc.want {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRecurringValidate(t *testing.T) {
	good := Recurring{Description: "Internet", Amount: Money{Cents: 4500}, DueDay: 15, Account: Savings}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Recurring{
		{Description: "", Amount: Money{Cents: 1}, DueDay: 15, Account: Savings},
		{Description: "a", Amount: Money{Cents: -1}, DueDay: 15, Account: Savings},
		{Description: "a", Amount: Money{Cents: 1}, DueDay: 0, Account: Savings},
		{Description: "a", Amount: Money{Cents: 1}, DueDay: 32, Account: Savings},
		{Description: "a", Amount: Money{Cents: 1}, DueDay: 15, Account: "cash"},
	}
	for i, r := range bads {
		if err := r.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBudgetID(t *testing.T) {
	if got := BudgetID(CategoryGroceries, time.November, 2025); got != "groceries-11-2025" {
		t.Fatalf("BudgetID = %q", got)
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.January, 31},
		{2025, time.February, 28},
		{2024, time.February, 29}, // leap year
		{2025, time.April, 30},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.year, tc.month); got != tc.want {
			t.Fatalf("DaysInMonth(%d, %v) = %d, want %d", tc.year, tc.month, got, tc.want)
		}
	}
}

func TestReservedCategories(t *testing.T) {
	if !CategoryFixed.IsReserved() || !CategoryDiscretionary.IsReserved() {
		t.Fatal("fixed and discretionary must be reserved")
	}
	if CategoryGroceries.IsReserved() {
		t.Fatal("groceries must not be reserved")
	}
	for _, c := range BudgetableCategories() {
		if c == CategorySalary {
			t.Fatal("salary must not be budgetable")
		}
	}
}
