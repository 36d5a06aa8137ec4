package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Kind is the direction of a transaction. It is a closed choice:
	// anything other than income or expense is rejected.
	Kind string

	// Date is a calendar day. The time of day is always midnight UTC.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          int64
		Date        Date
		Amount      Money
		Category    string
		Description string
		Kind        Kind
		CreatedAt   time.Time
	}

	// Budget is a per-category spending ceiling. Spent is advanced only
	// at ingestion time, when an expense transaction in the same category
	// is created.
	Budget struct {
		ID        int64
		Category  string
		Limit     Money
		Spent     Money
		CreatedAt time.Time
	}

	// Goal is a named savings target. Current is advanced only by an
	// explicit progress addition, never from transactions.
	Goal struct {
		ID        int64
		Name      string
		Target    Money
		Current   Money
		Deadline  Date
		CreatedAt time.Time
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar day in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// IsEmpty reports whether the date is unset. An empty bound means
// "unbounded" in aggregation filters.
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// Before reports whether d is on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d is on a later calendar day than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// DaysUntil returns the number of whole days from d to other, negative
// when other is in the past relative to d.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time.Sub(d.Time).Hours() / 24)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate returns the per-field validation failures for a transaction.
// The result is empty when the transaction is valid.
func (t Transaction) Validate() FieldErrors {
	errs := FieldErrors{}
	if t.Amount.Cents < 0 {
		errs.Add("amount", MsgNotANumber)
	}
	if strings.TrimSpace(t.Category) == "" {
		errs.Add("category", MsgBlank)
	}
	if strings.TrimSpace(string(t.Kind)) == "" {
		errs.Add("type", MsgBlank)
	} else if !t.Kind.Valid() {
		errs.Add("type", MsgNotIncluded)
	}
	if t.Date.IsEmpty() {
		errs.Add("date", MsgBlank)
	}
	return errs
}

// Validate returns the per-field validation failures for a budget.
// Category uniqueness is a store concern, checked at creation time.
func (b Budget) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(b.Category) == "" {
		errs.Add("category", MsgBlank)
	}
	if b.Limit.Cents < 0 {
		errs.Add("amount", MsgNotANumber)
	}
	return errs
}

// Validate returns the per-field validation failures for a goal.
func (g Goal) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(g.Name) == "" {
		errs.Add("name", MsgBlank)
	}
	if g.Target.Cents < 0 {
		errs.Add("target_amount", MsgNotANumber)
	}
	if g.Deadline.IsEmpty() {
		errs.Add("deadline", MsgBlank)
	}
	return errs
}

// Remaining returns how much of the budget limit is left. It goes
// negative once the budget is overspent.
func (b Budget) Remaining() Money {
	return Money{Cents: b.Limit.Cents - b.Spent.Cents}
}

// PercentUsed returns spent/limit as a percentage rounded to two decimal
// places. A zero limit yields 0 rather than a division error.
func (b Budget) PercentUsed() decimal.Decimal {
	return Percent(b.Spent, b.Limit)
}

// Overspent reports whether accumulated spending exceeds the limit.
func (b Budget) Overspent() bool {
	return b.Spent.Cents > b.Limit.Cents
}

// Remaining returns the amount still missing to reach the target.
func (g Goal) Remaining() Money {
	return Money{Cents: g.Target.Cents - g.Current.Cents}
}

// ProgressPercent returns current/target as a percentage rounded to two
// decimal places. A zero target yields 0 rather than a division error.
func (g Goal) ProgressPercent() decimal.Decimal {
	return Percent(g.Current, g.Target)
}

// DaysRemaining returns whole days from today until the deadline,
// negative when the deadline has passed.
func (g Goal) DaysRemaining(today Date) int {
	return today.DaysUntil(g.Deadline)
}
