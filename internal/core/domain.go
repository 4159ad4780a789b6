package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	Savings Account = "savings"
	Credit  Account = "credit"
)

// Canonical category set. Two incompatible taxonomies existed historically
// ("rides" vs "transportation", with and without "investment"); every record
// is validated against this reconciled set.
const (
	CategoryInvestment Category = "investment"
	CategoryUtilities  Category = "utilities"
	CategoryGroceries  Category = "groceries"
	CategoryRides      Category = "rides"
	CategoryFood       Category = "food"
	CategoryFun        Category = "fun"
	CategoryLuxury     Category = "luxury"
	CategorySalary     Category = "salary"
	CategoryOther      Category = "other"
)

// Reserved category roles. "utilities" holds the fixed recurring bills and its
// budget is always the recurring total; "luxury" is the discretionary bucket
// and its budget is always the income leftover. Neither is directly budgetable.
const (
	CategoryFixed         = CategoryUtilities
	CategoryDiscretionary = CategoryLuxury
)

type (
	TransactionType string
	Account         string
	Category        string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single money movement. Amount is always a positive
	// magnitude; direction is carried by Type. A credit-card payment is an
	// inter-account transfer and is excluded from income/expense aggregates.
	Transaction struct {
		ID       string
		Amount   Money
		Type     TransactionType
		Account  Account
		Category Category
		Date     Date
		// EffectiveDate is the budget month the transaction counts against.
		// Defaults to Date when unset (e.g. a bill paid early but budgeted
		// for the next month).
		EffectiveDate       Date
		Description         string
		Comment             string
		IsCreditCardPayment bool
		// RecurringID links a payment to the recurring bill it settles.
		// Optional; exact description matching remains as a fallback.
		RecurringID string
	}

	// TransactionPatch carries a partial update; nil fields are left as is.
	TransactionPatch struct {
		Amount              *Money
		Type                *TransactionType
		Account             *Account
		Category            *Category
		Date                *Date
		EffectiveDate       *Date
		Description         *string
		Comment             *string
		IsCreditCardPayment *bool
		RecurringID         *string
	}

	// Budget is an explicit monthly allocation for one category. At most one
	// row exists per (user, category, month, year); its ID is the composite
	// "category-month-year" key so a second write overwrites the first.
	Budget struct {
		ID          string
		Category    Category
		Month       time.Month
		Year        int
		Amount      Money
		LastUpdated time.Time
	}

	// Recurring is a recurring bill definition. DueDay is a day of month;
	// status (paid / due / overdue) is derived, never stored.
	Recurring struct {
		ID              string
		Description     string
		Amount          Money
		DueDay          int
		Account         Account
		LastPaymentDate Date
		LastUpdated     time.Time
	}

	RecurringPatch struct {
		Description     *string
		Amount          *Money
		DueDay          *int
		Account         *Account
		LastPaymentDate *Date
	}
)

var (
	ErrUnauthenticated  = errors.New("no authenticated user")
	ErrNotFound         = errors.New("record not found")
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrValidation is the common root of every input validation failure,
	// so transport layers can map the whole family to one status.
	ErrValidation = errors.New("validation failed")

	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidDueDay      = errors.New("due day must be between 1 and 31")
	ErrEmptyDescription   = errors.New("empty description")
	ErrReservedCategory   = errors.New("reserved category budgets are derived, not stored")
	ErrUnbudgetedCategory = errors.New("category takes no budget")
)

// Categories returns the canonical category set in display order.
func Categories() []Category {
	return []Category{
		CategoryInvestment, CategoryUtilities, CategoryGroceries,
		CategoryRides, CategoryFood, CategoryFun, CategoryLuxury,
		CategorySalary, CategoryOther,
	}
}

// BudgetableCategories returns every category that appears in a resolved
// budget view: the full set minus the pure-income category.
func BudgetableCategories() []Category {
	out := make([]Category, 0, 8)
	for _, c := range Categories() {
		if c == CategorySalary {
			continue
		}
		out = append(out, c)
	}
	return out
}

// IsValid reports whether c belongs to the canonical set.
func (c Category) IsValid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// IsReserved reports whether c's budget is derived rather than user-set.
func (c Category) IsReserved() bool {
	return c == CategoryFixed || c == CategoryDiscretionary
}

func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

func (a Account) IsValid() bool {
	return a == Savings || a == Credit
}

// NewDate creates a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// IsEmpty reports whether the date was never set.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// SameMonth reports whether d falls in the given calendar month.
func (d Date) SameMonth(year int, month time.Month) bool {
	return !d.IsZero() && d.Year() == year && d.Month() == month
}

// DateLayout is the wire and storage format for dates.
const DateLayout = "2006-01-02"

// ParseDate parses a yyyy-mm-dd string. The empty string is the empty
// date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: bad date %q", ErrValidation, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as "yyyy-mm-dd", or null when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns the difference of two amounts; the result may be negative.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Cents < 0
}

// EffectiveOrDate returns EffectiveDate, falling back to Date when unset.
func (t Transaction) EffectiveOrDate() Date {
	if t.EffectiveDate.IsZero() {
		return t.Date
	}
	return t.EffectiveDate
}

func (t Transaction) Validate() error {
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if !t.Account.IsValid() {
		return ErrInvalidAccount
	}
	if !t.Category.IsValid() {
		return ErrInvalidCategory
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrValidation)
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	}
	return nil
}

func (b Budget) Validate() error {
	if !b.Category.IsValid() {
		return ErrInvalidCategory
	}
	if b.Category == CategorySalary {
		return ErrUnbudgetedCategory
	}
	if b.Category.IsReserved() {
		return ErrReservedCategory
	}
	if b.Month < time.January || b.Month > time.December {
		return fmt.Errorf("%w: invalid month", ErrValidation)
	}
	if b.Year < 1970 || b.Year > 9999 {
		return fmt.Errorf("%w: invalid year", ErrValidation)
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

func (r Recurring) Validate() error {
	if len(strings.TrimSpace(r.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(r.Description) > 200 {
		return fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if r.DueDay < 1 || r.DueDay > 31 {
		return ErrInvalidDueDay
	}
	if !r.Account.IsValid() {
		return ErrInvalidAccount
	}
	return nil
}

// BudgetID builds the composite budget document key. Using the key as the
// record ID makes the (category, month, year) uniqueness invariant structural.
func BudgetID(category Category, month time.Month, year int) string {
	return string(category) + "-" + strconv.Itoa(int(month)) + "-" + strconv.Itoa(year)
}

// DaysInMonth returns the number of calendar days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
