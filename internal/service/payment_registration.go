package service

import (
	"context"
	"log"

	"github.com/segyhp/installment-ledger/internal/domain"
	"github.com/segyhp/installment-ledger/internal/repository"
	customError "github.com/segyhp/installment-ledger/pkg/errors"
	"github.com/segyhp/installment-ledger/pkg/utils"
)

// RegistrationResult is the outcome of registering a payment. A payment that
// settles the loan also carries every weekly record the settlement created.
type RegistrationResult struct {
	Payment          *domain.Payment   `json:"payment"`
	Payments         []*domain.Payment `json:"payments,omitempty"`
	Loan             *domain.Loan      `json:"loan"`
	ArrearsCleared   int               `json:"arrears_cleared"`
	ArrearsRemaining int               `json:"arrears_remaining"`
	Settled          bool              `json:"settled"`
	Message          string            `json:"message,omitempty"`
}

// RegisterPayment books one payment on a loan. A payment that reaches the
// total due, or is flagged as a full settlement, is handed to the settlement
// distributor instead. Past the term there is nothing left to distribute, so
// a catch-up payment takes the normal path and the evaluator marks the loan
// paid once it covers the balance.
func (s *LedgerService) RegisterPayment(ctx context.Context, cmd domain.RegisterPaymentCommand) (*RegistrationResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.ownedLoan(ctx, cmd.ActorID, cmd.LoanID); err != nil {
		return nil, err
	}

	var result *RegistrationResult
	err := s.uow.WithinLoanTx(ctx, cmd.LoanID, func(r repository.Repos, loan *domain.Loan) error {
		if err := validatePaymentWeek(loan, cmd.Week); err != nil {
			return err
		}
		if err := paymentForWeek(ctx, r, loan, cmd.Week); err != nil {
			return err
		}

		if (cmd.IsFullSettlement || loan.WouldSettle(cmd.Received())) && loan.RemainingWeeks() > 0 {
			var err error
			result, err = s.settle(ctx, r, loan, cmd)
			return err
		}

		var err error
		result, err = s.register(ctx, r, loan, cmd)
		return err
	})
	if err != nil {
		return nil, loanErr(err, cmd.LoanID)
	}

	s.invalidate(ctx, cmd.LoanID)
	log.Printf("ledger: registered payment %s on loan %s week %d status %s (settled=%t)",
		result.Payment.ID, cmd.LoanID, cmd.Week, result.Payment.Status, result.Settled)
	return result, nil
}

func (s *LedgerService) register(ctx context.Context, r repository.Repos, loan *domain.Loan, cmd domain.RegisterPaymentCommand) (*RegistrationResult, error) {
	cleared, portion := 0, cmd.Amount
	if cmd.ApplyToArrears {
		cleared, portion = loan.ApplyToArrears(cmd.Amount)
	}

	// a payment that went to past misses corrects history, it is never late
	status := loan.Classify(cmd.Date, portion, cleared > 0)

	payment := domain.NewPayment(loan.ID, cmd.Week, utils.DateOnly(cmd.Date), cmd.Amount, cmd.ExtraAmount, status)
	payment.ArrearsCleared = cleared
	payment.AppliedAmount = portion
	if err := r.Payments.Create(ctx, payment); err != nil {
		return nil, dbErr(err)
	}

	loan.RecordPayment(payment)
	loan.RecordClassified(status)
	loan.Evaluate(status)
	if loan.TotalPaid.IsNegative() {
		return nil, customError.WrapArithmeticInvariant("registration produced a negative total paid")
	}
	if err := r.Loans.Update(ctx, loan); err != nil {
		return nil, dbErr(err)
	}

	if err := s.syncClientStatus(ctx, r, loan); err != nil {
		return nil, err
	}

	return &RegistrationResult{
		Payment:          payment,
		Loan:             loan,
		ArrearsCleared:   cleared,
		ArrearsRemaining: loan.UnpaidArrearsCount,
	}, nil
}
