package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for day-granular dates.
const DateLayout = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds to 2 decimal places for currency
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// CalculateTotalDue applies the flat up-front markup to the principal.
// Formula: Principal * (1 + Markup)
func CalculateTotalDue(principal, markup decimal.Decimal) decimal.Decimal {
	return RoundMoney(principal.Mul(decimal.NewFromInt(1).Add(markup)))
}

// CalculateWeeklyPayment calculates the weekly installment amount
// Formula: TotalDue / Duration
func CalculateWeeklyPayment(totalDue decimal.Decimal, weeks int) decimal.Decimal {
	if weeks <= 0 {
		return decimal.Zero
	}
	return RoundMoney(totalDue.Div(decimal.NewFromInt(int64(weeks))))
}

// SplitEvenly divides amount across n parts rounded to cents. The caller
// is expected to give the last part the exact remainder.
func SplitEvenly(amount decimal.Decimal, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	return RoundMoney(amount.Div(decimal.NewFromInt(int64(n))))
}

// UnitsPayable is the number of whole installments covered by amount.
func UnitsPayable(amount, installment decimal.Decimal) int {
	if !installment.IsPositive() || !amount.IsPositive() {
		return 0
	}
	return int(amount.Div(installment).Floor().IntPart())
}

// MaxZero floors d at zero.
func MaxZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Cents returns the fractional part of d in cents, always non-negative.
func Cents(d decimal.Decimal) int64 {
	d = RoundMoney(d)
	return d.Sub(d.Truncate(0)).Abs().Mul(hundred).IntPart()
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

// AddWeeks moves t forward by n weeks.
func AddWeeks(t time.Time, n int) time.Time {
	return DateOnly(t).AddDate(0, 0, 7*n)
}

// CalculateDueDate calculates the due date for a specific week
// Week 1 is due 7 days after start, Week 2 is due 14 days after, etc.
func CalculateDueDate(loanStartDate time.Time, weekNumber int) time.Time {
	return AddWeeks(loanStartDate, weekNumber)
}

// GetCurrentWeek calculates which week we're currently in based on loan start date
func GetCurrentWeek(loanStartDate time.Time, now time.Time) int {
	days := int(DateOnly(now).Sub(DateOnly(loanStartDate)).Hours() / 24)
	week := (days / 7) + 1

	if week < 1 {
		return 1
	}

	return week
}

// IsAfterDay reports whether a falls on a later calendar day than b.
func IsAfterDay(a, b time.Time) bool {
	return DateOnly(a).After(DateOnly(b))
}
