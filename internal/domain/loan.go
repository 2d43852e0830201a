package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/installment-ledger/pkg/errors"
	"github.com/segyhp/installment-ledger/pkg/utils"
)

type LoanStatus string

const (
	LoanStatusActive        LoanStatus = "active"
	LoanStatusPaid          LoanStatus = "paid"
	LoanStatusDelinquent    LoanStatus = "delinquent"
	LoanStatusPartiallyPaid LoanStatus = "partially_paid"
)

// DefaultTermWeeks is the current business rule for loan length.
const DefaultTermWeeks = 13

// Loan represents a loan entity
type Loan struct {
	ID       uuid.UUID `json:"id" db:"id"`
	ClientID uuid.UUID `json:"client_id" db:"client_id"`

	Principal    decimal.Decimal `json:"principal" db:"principal"`
	TermWeeks    int             `json:"term_weeks" db:"term_weeks"`
	Installment  decimal.Decimal `json:"installment" db:"installment"`
	TotalDue     decimal.Decimal `json:"total_due" db:"total_due"`
	StartDate    time.Time       `json:"start_date" db:"start_date"`
	MaturityDate time.Time       `json:"maturity_date" db:"maturity_date"`

	CurrentWeek     int             `json:"current_week" db:"current_week"`
	TotalPaid       decimal.Decimal `json:"total_paid" db:"total_paid"`
	ExtraPaid       decimal.Decimal `json:"extra_paid" db:"extra_paid"`
	LastPaymentDate *time.Time      `json:"last_payment_date,omitempty" db:"last_payment_date"`
	NextDueDate     *time.Time      `json:"next_due_date,omitempty" db:"next_due_date"`
	LastArrearsDate *time.Time      `json:"last_arrears_date,omitempty" db:"last_arrears_date"`

	LoanCounters
	ArrearsState

	Status    LoanStatus `json:"status" db:"status"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// NewLoan builds a loan at week 1 with the flat markup applied. A zero
// installment is derived from the total due.
func NewLoan(clientID uuid.UUID, principal, markup decimal.Decimal, termWeeks int, installment decimal.Decimal, startDate time.Time) *Loan {
	start := utils.DateOnly(startDate)
	totalDue := utils.CalculateTotalDue(principal, markup)
	if !installment.IsPositive() {
		installment = utils.CalculateWeeklyPayment(totalDue, termWeeks)
	}
	nextDue := utils.AddWeeks(start, 1)
	now := time.Now().UTC()

	return &Loan{
		ID:           uuid.New(),
		ClientID:     clientID,
		Principal:    principal,
		TermWeeks:    termWeeks,
		Installment:  installment,
		TotalDue:     totalDue,
		StartDate:    start,
		MaturityDate: utils.AddWeeks(start, termWeeks),
		CurrentWeek:  1,
		TotalPaid:    decimal.Zero,
		ExtraPaid:    decimal.Zero,
		NextDueDate:  &nextDue,
		ArrearsState: ArrearsState{UnpaidArrearsAmount: decimal.Zero},
		Status:       LoanStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// OutstandingBalance is what is still owed, never negative.
func (l *Loan) OutstandingBalance() decimal.Decimal {
	return utils.MaxZero(l.TotalDue.Sub(l.TotalPaid))
}

// WouldSettle reports whether receiving amount clears the loan.
func (l *Loan) WouldSettle(received decimal.Decimal) bool {
	return l.TotalPaid.Add(received).GreaterThanOrEqual(l.TotalDue)
}

// RemainingWeeks counts the weeks left including the current one.
func (l *Loan) RemainingWeeks() int {
	return l.TermWeeks - l.CurrentWeek + 1
}

// ApplyToArrears uses whole installments of amount to clear pending
// arrears. It returns how many were cleared and the residual that goes to
// the current week.
func (l *Loan) ApplyToArrears(amount decimal.Decimal) (int, decimal.Decimal) {
	if !l.HasArrears() {
		return 0, amount
	}
	cleared := l.ArrearsState.Clear(utils.UnitsPayable(amount, l.Installment), l.Installment)
	residual := amount.Sub(l.Installment.Mul(decimal.NewFromInt(int64(cleared))))
	return cleared, residual
}

// Classify derives the status of a payment of portion received on date.
// outOfTime marks a payment that followed arrears application.
func (l *Loan) Classify(date time.Time, portion decimal.Decimal, outOfTime bool) PaymentStatus {
	late := l.NextDueDate != nil && utils.IsAfterDay(date, *l.NextDueDate)
	partial := portion.LessThan(l.Installment)
	return ComposeStatus(late, outOfTime, partial)
}

// RecordPayment advances the schedule by one week for p.
func (l *Loan) RecordPayment(p *Payment) {
	date := utils.DateOnly(p.Date)
	next := utils.AddWeeks(date, 1)

	l.CurrentWeek++
	l.TotalPaid = l.TotalPaid.Add(p.TotalReceived)
	l.ExtraPaid = l.ExtraPaid.Add(p.ExtraAmount)
	l.LastPaymentDate = &date
	l.NextDueDate = &next
	l.touch()
}

// RecordArrears books a missed week. A miss always makes the loan delinquent.
func (l *Loan) RecordArrears(p *Payment) {
	date := utils.DateOnly(p.Date)
	next := utils.AddWeeks(date, 1)

	l.RecordLate()
	l.RecordMiss(l.Installment)
	l.CurrentWeek++
	l.NextDueDate = &next
	l.LastArrearsDate = &date
	l.Status = LoanStatusDelinquent
	l.touch()
}

// ResolveArrears books the money of a placeholder that was turned into a
// real late payment.
func (l *Loan) ResolveArrears(p *Payment) {
	l.TotalPaid = l.TotalPaid.Add(p.TotalReceived)
	l.ExtraPaid = l.ExtraPaid.Add(p.ExtraAmount)
	l.ResolveOne(l.Installment)
	if p.Amount.LessThan(l.Installment) {
		l.RecordPartial()
	}
	l.touch()
}

// Settle closes the loan after settlement booked received, extra included,
// across created weekly records.
func (l *Loan) Settle(date time.Time, received, extra decimal.Decimal, created int) {
	d := utils.DateOnly(date)

	l.TotalPaid = l.TotalPaid.Add(received)
	l.ExtraPaid = l.ExtraPaid.Add(extra)
	l.CurrentWeek = l.TermWeeks
	l.LastPaymentDate = &d
	l.RecordOnTimeN(created)
	l.ArrearsState.Reset()
	l.Status = LoanStatusPaid
	l.touch()
}

// Revert undoes the totals of p. Counters and arrears are left as they are.
func (l *Loan) Revert(p *Payment) error {
	totalPaid := l.TotalPaid.Sub(p.TotalReceived)
	extraPaid := l.ExtraPaid.Sub(p.ExtraAmount)
	if totalPaid.IsNegative() || extraPaid.IsNegative() {
		return customError.WrapArithmeticInvariant(fmt.Sprintf(
			"reverting payment %s would leave loan %s with total paid %s and extra paid %s",
			p.ID, l.ID, totalPaid.StringFixed(2), extraPaid.StringFixed(2)))
	}

	l.TotalPaid = totalPaid
	l.ExtraPaid = extraPaid
	if l.CurrentWeek > 0 {
		l.CurrentWeek--
	}
	switch {
	case !l.TotalPaid.IsPositive():
		l.Status = LoanStatusActive
	case l.Status == LoanStatusPaid && l.TotalPaid.LessThan(l.TotalDue):
		// paid requires totalPaid >= totalDue
		l.Status = EvaluateLoanStatus(l, "")
	}
	l.touch()
	return nil
}

// Evaluate recomputes Status from the counters and the status of the most
// recent payment.
func (l *Loan) Evaluate(last PaymentStatus) {
	l.Status = EvaluateLoanStatus(l, last)
}

// CanDelete reports whether the loan may be removed: nothing paid yet, or
// fully paid off.
func (l *Loan) CanDelete() bool {
	return !l.TotalPaid.IsPositive() || l.Status == LoanStatusPaid
}

func (l *Loan) touch() {
	l.UpdatedAt = time.Now().UTC()
}

// DTOs for requests and responses

type LoanSummary struct {
	LoanID             uuid.UUID       `json:"loan_id"`
	Status             LoanStatus      `json:"status"`
	CurrentWeek        int             `json:"current_week"`
	TermWeeks          int             `json:"term_weeks"`
	TotalDue           decimal.Decimal `json:"total_due"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	Outstanding        decimal.Decimal `json:"outstanding"`
	UnpaidArrearsCount int             `json:"unpaid_arrears_count"`
	NextDueDate        *time.Time      `json:"next_due_date,omitempty"`
}

func (l *Loan) Summary() *LoanSummary {
	return &LoanSummary{
		LoanID:             l.ID,
		Status:             l.Status,
		CurrentWeek:        l.CurrentWeek,
		TermWeeks:          l.TermWeeks,
		TotalDue:           l.TotalDue,
		TotalPaid:          l.TotalPaid,
		Outstanding:        l.OutstandingBalance(),
		UnpaidArrearsCount: l.UnpaidArrearsCount,
		NextDueDate:        l.NextDueDate,
	}
}
