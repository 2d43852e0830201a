package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusOnTime              PaymentStatus = "on_time"
	PaymentStatusLate                PaymentStatus = "late"
	PaymentStatusPartial             PaymentStatus = "partial"
	PaymentStatusLateAndPartial      PaymentStatus = "late_and_partial"
	PaymentStatusOutOfTime           PaymentStatus = "out_of_time"
	PaymentStatusOutOfTimeAndPartial PaymentStatus = "out_of_time_and_partial"
)

// Valid reports whether s is one of the six known statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusOnTime, PaymentStatusLate, PaymentStatusPartial,
		PaymentStatusLateAndPartial, PaymentStatusOutOfTime, PaymentStatusOutOfTimeAndPartial:
		return true
	}
	return false
}

func (s PaymentStatus) IsPartial() bool {
	return s == PaymentStatusPartial || s == PaymentStatusLateAndPartial || s == PaymentStatusOutOfTimeAndPartial
}

func (s PaymentStatus) IsOutOfTime() bool {
	return s == PaymentStatusOutOfTime || s == PaymentStatusOutOfTimeAndPartial
}

// ComposeStatus builds one of the six statuses from its two axes.
func ComposeStatus(late, outOfTime, partial bool) PaymentStatus {
	switch {
	case outOfTime && partial:
		return PaymentStatusOutOfTimeAndPartial
	case outOfTime:
		return PaymentStatusOutOfTime
	case late && partial:
		return PaymentStatusLateAndPartial
	case late:
		return PaymentStatusLate
	case partial:
		return PaymentStatusPartial
	default:
		return PaymentStatusOnTime
	}
}

// Payment is one weekly record of a loan. Arrears placeholders have a zero
// amount and mark a missed week.
type Payment struct {
	ID                     uuid.UUID       `json:"id" db:"id"`
	LoanID                 uuid.UUID       `json:"loan_id" db:"loan_id"`
	Week                   int             `json:"week" db:"week"`
	Date                   time.Time       `json:"date" db:"date"`
	Amount                 decimal.Decimal `json:"amount" db:"amount"`
	ExtraAmount            decimal.Decimal `json:"extra_amount" db:"extra_amount"`
	TotalReceived          decimal.Decimal `json:"total_received" db:"total_received"`
	Status                 PaymentStatus   `json:"status" db:"status"`
	IsArrearsPlaceholder   bool            `json:"is_arrears_placeholder" db:"is_arrears_placeholder"`
	IsPartOfAutoSettlement bool            `json:"is_part_of_auto_settlement" db:"is_part_of_auto_settlement"`
	ExpectedDate           *time.Time      `json:"expected_date,omitempty" db:"expected_date"`
	// ArrearsCleared and AppliedAmount record how a payment was split
	// between past misses and the current week.
	ArrearsCleared int             `json:"arrears_cleared" db:"arrears_cleared"`
	AppliedAmount  decimal.Decimal `json:"applied_amount" db:"applied_amount"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

func NewPayment(loanID uuid.UUID, week int, date time.Time, amount, extra decimal.Decimal, status PaymentStatus) *Payment {
	now := time.Now().UTC()
	return &Payment{
		ID:            uuid.New(),
		LoanID:        loanID,
		Week:          week,
		Date:          date,
		Amount:        amount,
		ExtraAmount:   extra,
		TotalReceived: amount.Add(extra),
		Status:        status,
		AppliedAmount: amount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// NewArrearsPlaceholder records a missed week.
func NewArrearsPlaceholder(loanID uuid.UUID, week int, date time.Time, expected *time.Time) *Payment {
	p := NewPayment(loanID, week, date, decimal.Zero, decimal.Zero, PaymentStatusLate)
	p.IsArrearsPlaceholder = true
	p.ExpectedDate = expected
	return p
}

// Overwrite replaces the received amounts, date and status of the record.
func (p *Payment) Overwrite(date time.Time, amount, extra decimal.Decimal, status PaymentStatus) {
	p.Date = date
	p.Amount = amount
	p.ExtraAmount = extra
	p.TotalReceived = amount.Add(extra)
	p.AppliedAmount = amount
	p.Status = status
	p.UpdatedAt = time.Now().UTC()
}

// WeekSet indexes payments by week.
func WeekSet(payments []*Payment) map[int]*Payment {
	set := make(map[int]*Payment, len(payments))
	for _, p := range payments {
		set[p.Week] = p
	}
	return set
}

// SumReceived totals TotalReceived over payments.
func SumReceived(payments []*Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.TotalReceived)
	}
	return total
}
