package domain

import (
	"github.com/shopspring/decimal"

	"github.com/segyhp/installment-ledger/pkg/utils"
)

// LoanCounters are the historical payment tallies of a loan. They only ever
// grow; every mutation goes through one of the record methods.
type LoanCounters struct {
	PaymentsOnTime  int `json:"payments_on_time" db:"payments_on_time"`
	PaymentsLate    int `json:"payments_late" db:"payments_late"`
	PaymentsPartial int `json:"payments_partial" db:"payments_partial"`
}

func (c *LoanCounters) RecordOnTime() { c.PaymentsOnTime++ }

func (c *LoanCounters) RecordLate() { c.PaymentsLate++ }

func (c *LoanCounters) RecordPartial() { c.PaymentsPartial++ }

// RecordOnTimeN is used by settlement, which books several weeks at once.
func (c *LoanCounters) RecordOnTimeN(n int) {
	if n > 0 {
		c.PaymentsOnTime += n
	}
}

// RecordClassified updates the tallies for a freshly registered payment.
// Payments that resolve a past miss (out_of_time family) only count as
// partial when they fall short of the installment.
func (c *LoanCounters) RecordClassified(s PaymentStatus) {
	switch s {
	case PaymentStatusOnTime:
		c.RecordOnTime()
	case PaymentStatusLate:
		c.RecordLate()
	case PaymentStatusLateAndPartial:
		c.RecordLate()
		c.RecordPartial()
	case PaymentStatusPartial, PaymentStatusOutOfTimeAndPartial:
		c.RecordPartial()
	}
}

// ArrearsState tracks the misses that are still unpaid. Unlike LoanCounters
// it shrinks as arrears are cleared.
type ArrearsState struct {
	UnpaidArrearsCount      int             `json:"unpaid_arrears_count" db:"unpaid_arrears_count"`
	UnpaidArrearsAmount     decimal.Decimal `json:"unpaid_arrears_amount" db:"unpaid_arrears_amount"`
	ConsecutiveArrearsWeeks int             `json:"consecutive_arrears_weeks" db:"consecutive_arrears_weeks"`
}

// HasArrears reports whether any miss is still unpaid.
func (a ArrearsState) HasArrears() bool {
	return a.UnpaidArrearsCount > 0
}

// RecordMiss adds one unpaid installment.
func (a *ArrearsState) RecordMiss(installment decimal.Decimal) {
	a.UnpaidArrearsCount++
	a.UnpaidArrearsAmount = a.UnpaidArrearsAmount.Add(installment)
	a.ConsecutiveArrearsWeeks++
}

// Clear settles up to units arrears and returns how many were cleared.
func (a *ArrearsState) Clear(units int, installment decimal.Decimal) int {
	if units <= 0 || a.UnpaidArrearsCount <= 0 {
		return 0
	}
	cleared := units
	if cleared > a.UnpaidArrearsCount {
		cleared = a.UnpaidArrearsCount
	}
	a.UnpaidArrearsCount -= cleared
	a.UnpaidArrearsAmount = utils.MaxZero(a.UnpaidArrearsAmount.Sub(installment.Mul(decimal.NewFromInt(int64(cleared)))))
	if a.UnpaidArrearsCount == 0 {
		a.ConsecutiveArrearsWeeks = 0
	}
	return cleared
}

// ResolveOne clears a single arrear, flooring both the count and amount at zero.
func (a *ArrearsState) ResolveOne(installment decimal.Decimal) {
	if a.UnpaidArrearsCount > 0 {
		a.UnpaidArrearsCount--
	}
	a.UnpaidArrearsAmount = utils.MaxZero(a.UnpaidArrearsAmount.Sub(installment))
	if a.UnpaidArrearsCount == 0 {
		a.ConsecutiveArrearsWeeks = 0
	}
}

// Reset drops every pending arrear.
func (a *ArrearsState) Reset() {
	a.UnpaidArrearsCount = 0
	a.UnpaidArrearsAmount = decimal.Zero
	a.ConsecutiveArrearsWeeks = 0
}
