package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/segyhp/installment-ledger/internal/domain"
	"github.com/segyhp/installment-ledger/internal/repository"
	customError "github.com/segyhp/installment-ledger/pkg/errors"
	"github.com/segyhp/installment-ledger/pkg/utils"
)

// settle books a payment that clears the loan. The week being paid gets a
// normally classified record; every other week from the loan's current week
// on without a record gets a synthesized on-time record, so the schedule
// ends with one record per week even when the payment names a later week.
// The leftover balance is split evenly across the synthesized weeks and the
// last one takes the exact remainder.
//
// It runs inside the caller's loan transaction: any failure rolls back
// every record created here.
func (s *LedgerService) settle(ctx context.Context, r repository.Repos, loan *domain.Loan, cmd domain.RegisterPaymentCommand) (*RegistrationResult, error) {
	recorded, err := r.Payments.GetByLoanID(ctx, loan.ID)
	if err != nil {
		return nil, dbErr(err)
	}
	byWeek := domain.WeekSet(recorded)

	var missing []int
	for week := min(cmd.Week, loan.CurrentWeek); week <= loan.TermWeeks; week++ {
		if _, ok := byWeek[week]; !ok && week != cmd.Week {
			missing = append(missing, week)
		}
	}

	received := cmd.Received()
	totalBefore := loan.TotalPaid
	leftover := loan.TotalDue.Sub(totalBefore).Sub(received)
	if leftover.IsPositive() && len(missing) == 0 {
		return nil, customError.WrapValidation(fmt.Sprintf(
			"payment of %s does not cover the outstanding balance of %s",
			received.StringFixed(2), loan.OutstandingBalance().StringFixed(2)))
	}
	// an overpayment leaves nothing for the synthesized weeks
	leftover = utils.MaxZero(leftover)

	date := utils.DateOnly(cmd.Date)
	status := loan.Classify(date, cmd.Amount, false)
	current := domain.NewPayment(loan.ID, cmd.Week, date, cmd.Amount, cmd.ExtraAmount, status)
	current.IsPartOfAutoSettlement = len(missing) > 0
	created := []*domain.Payment{current}

	perWeek := utils.SplitEvenly(leftover, len(missing))
	allocated := decimal.Zero
	synthDate := date
	for i, week := range missing {
		synthDate = utils.AddWeeks(synthDate, 1)
		amount := perWeek
		if i == len(missing)-1 {
			amount = leftover.Sub(allocated)
		}
		allocated = allocated.Add(amount)

		p := domain.NewPayment(loan.ID, week, synthDate, amount, decimal.Zero, domain.PaymentStatusOnTime)
		p.IsPartOfAutoSettlement = true
		created = append(created, p)
	}

	for _, p := range created {
		if p.Amount.IsNegative() {
			return nil, customError.WrapArithmeticInvariant(fmt.Sprintf("settlement produced a negative amount for week %d", p.Week))
		}
		if err := r.Payments.Create(ctx, p); err != nil {
			return nil, dbErr(err)
		}
	}

	createdTotal := domain.SumReceived(created)
	if !createdTotal.Equal(received.Add(leftover)) {
		return nil, customError.WrapArithmeticInvariant(fmt.Sprintf(
			"settlement allocated %s, expected %s", createdTotal.StringFixed(2), received.Add(leftover).StringFixed(2)))
	}

	loan.Settle(date, createdTotal, cmd.ExtraAmount, len(created))
	if loan.TotalPaid.LessThan(loan.TotalDue) {
		return nil, customError.WrapArithmeticInvariant(fmt.Sprintf(
			"settled loan %s has total paid %s below total due %s",
			loan.ID, loan.TotalPaid.StringFixed(2), loan.TotalDue.StringFixed(2)))
	}
	if err := r.Loans.Update(ctx, loan); err != nil {
		return nil, dbErr(err)
	}

	if err := s.syncClientStatus(ctx, r, loan); err != nil {
		return nil, err
	}

	return &RegistrationResult{
		Payment:  current,
		Payments: created,
		Loan:     loan,
		Settled:  true,
		Message:  fmt.Sprintf("loan settled: %d weekly records created", len(created)),
	}, nil
}
