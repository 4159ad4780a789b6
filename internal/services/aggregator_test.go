package services

import (
	"testing"
	"time"

	"github.com/cesaralej/agastar/internal/core"
)

func tx(amount int64, typ core.TransactionType, account core.Account, category core.Category, date core.Date) core.Transaction {
	return core.Transaction{
		Amount:      core.Money{Cents: amount},
		Type:        typ,
		Account:     account,
		Category:    category,
		Date:        date,
		Description: "test",
	}
}

func TestSplitIncomeExpense(t *testing.T) {
	d := core.NewDate(2025, time.March, 10)
	txs := []core.Transaction{
		tx(200000, core.Income, core.Savings, core.CategorySalary, d),
		tx(5000, core.Expense, core.Savings, core.CategoryGroceries, d),
		tx(3000, core.Expense, core.Credit, core.CategoryFun, d),
	}
	s := SplitIncomeExpense(txs)
	if s.Income.Cents != 200000 {
		t.Fatalf("Income = %d", s.Income.Cents)
	}
	if s.Expenses.Cents != 8000 {
		t.Fatalf("Expenses = %d", s.Expenses.Cents)
	}
	if s.Balance.Cents != 192000 {
		t.Fatalf("Balance = %d", s.Balance.Cents)
	}
	if s.Savings.Cents != 195000 {
		t.Fatalf("Savings = %d", s.Savings.Cents)
	}
	if s.Credit.Cents != 3000 {
		t.Fatalf("Credit = %d", s.Credit.Cents)
	}
}

func TestSplitIncomeExpenseCreditAccountIncome(t *testing.T) {
	d := core.NewDate(2025, time.March, 3)
	txs := []core.Transaction{
		tx(1000, core.Income, core.Credit, core.CategoryOther, d),
	}
	s := SplitIncomeExpense(txs)
	if s.Income.Cents != 0 || s.Expenses.Cents != 1000 {
		t.Fatalf("income=%d expenses=%d", s.Income.Cents, s.Expenses.Cents)
	}
	if s.Credit.Cents != 1000 {
		t.Fatalf("Credit = %d", s.Credit.Cents)
	}
}

func TestSplitIncomeExpenseCardPayoff(t *testing.T) {
	d := core.NewDate(2025, time.March, 25)
	fromCredit := tx(5000, core.Expense, core.Credit, core.CategoryOther, d)
	fromCredit.IsCreditCardPayment = true
	fromSavings := tx(5000, core.Expense, core.Savings, core.CategoryOther, d)
	fromSavings.IsCreditCardPayment = true
	s := SplitIncomeExpense([]core.Transaction{fromCredit, fromSavings})
	if s.Income.Cents != 0 || s.Expenses.Cents != 0 {
		t.Fatalf("payoff leaked into totals: income=%d expenses=%d", s.Income.Cents, s.Expenses.Cents)
	}
	if s.Credit.Cents != -10000 {
		t.Fatalf("Credit = %d, want a negative net change", s.Credit.Cents)
	}
	if s.Savings.Cents != -10000 {
		t.Fatalf("Savings = %d, want a negative net change", s.Savings.Cents)
	}
}

func TestSplitIncomeExpenseCreditCardPayment(t *testing.T) {
	d := core.NewDate(2025, time.March, 20)
	payment := tx(3000, core.Expense, core.Savings, core.CategoryOther, d)
	payment.IsCreditCardPayment = true
	txs := []core.Transaction{
		tx(100000, core.Income, core.Savings, core.CategorySalary, d),
		tx(3000, core.Expense, core.Credit, core.CategoryFun, d),
		payment,
	}
	s := SplitIncomeExpense(txs)
	if s.Income.Cents != 100000 || s.Expenses.Cents != 3000 {
		t.Fatalf("payment leaked into totals: income=%d expenses=%d", s.Income.Cents, s.Expenses.Cents)
	}
	if s.Credit.Cents != 0 {
		t.Fatalf("payment should clear credit debt, got %d", s.Credit.Cents)
	}
	if s.Savings.Cents != 97000 {
		t.Fatalf("Savings = %d", s.Savings.Cents)
	}
}

func TestCategorySpendUsesEffectiveDate(t *testing.T) {
	early := tx(4500, core.Expense, core.Savings, core.CategoryUtilities, core.NewDate(2025, time.January, 28))
	early.EffectiveDate = core.NewDate(2025, time.February, 1)
	txs := []core.Transaction{
		early,
		tx(2000, core.Expense, core.Savings, core.CategoryGroceries, core.NewDate(2025, time.February, 5)),
	}
	spend := CategorySpend(txs)
	if len(spend[2025][time.January]) != 0 {
		t.Fatal("early payment must count against February, not January")
	}
	feb := spend[2025][time.February]
	if feb[core.CategoryUtilities].Cents != 4500 || feb[core.CategoryGroceries].Cents != 2000 {
		t.Fatalf("February = %v", feb)
	}
}

func TestIncomeForMonth(t *testing.T) {
	txs := []core.Transaction{
		tx(200000, core.Income, core.Savings, core.CategorySalary, core.NewDate(2025, time.March, 1)),
		tx(15000, core.Income, core.Savings, core.CategoryOther, core.NewDate(2025, time.March, 14)),
		tx(200000, core.Income, core.Savings, core.CategorySalary, core.NewDate(2025, time.April, 1)),
		tx(9999, core.Expense, core.Savings, core.CategoryFood, core.NewDate(2025, time.March, 2)),
	}
	if got := IncomeForMonth(txs, 2025, time.March); got.Cents != 215000 {
		t.Fatalf("IncomeForMonth = %d", got.Cents)
	}
	if got := IncomeForMonth(txs, 2025, time.May); got.Cents != 0 {
		t.Fatalf("empty month should be zero, got %d", got.Cents)
	}
}

func TestDailySpend(t *testing.T) {
	txs := []core.Transaction{
		tx(1000, core.Expense, core.Savings, core.CategoryFood, core.NewDate(2025, time.February, 3)),
		tx(500, core.Expense, core.Savings, core.CategoryFood, core.NewDate(2025, time.February, 3)),
		tx(700, core.Expense, core.Credit, core.CategoryRides, core.NewDate(2025, time.February, 28)),
		tx(9000, core.Expense, core.Savings, core.CategoryFun, core.NewDate(2025, time.March, 1)),
	}
	days := DailySpend(txs, 2025, time.February)
	if len(days) != 28 {
		t.Fatalf("expected 28 entries, got %d", len(days))
	}
	for i, d := range days {
		if d.Day != i+1 {
			t.Fatalf("entry %d has day %d", i, d.Day)
		}
	}
	if days[2].Spent.Cents != 1500 {
		t.Fatalf("day 3 = %d", days[2].Spent.Cents)
	}
	if days[27].Spent.Cents != 700 {
		t.Fatalf("day 28 = %d", days[27].Spent.Cents)
	}
	if days[0].Spent.Cents != 0 {
		t.Fatalf("day 1 should be zero, got %d", days[0].Spent.Cents)
	}
}
