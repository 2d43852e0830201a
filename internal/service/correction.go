package service

import (
	"context"
	"log"

	"github.com/segyhp/installment-ledger/internal/domain"
	"github.com/segyhp/installment-ledger/internal/repository"
	"github.com/segyhp/installment-ledger/pkg/utils"
)

// CorrectionResult reports how an update was applied. ResolvedArrears is
// set when an arrears placeholder was turned into a real payment and the
// loan was adjusted.
type CorrectionResult struct {
	Payment         *domain.Payment `json:"payment"`
	Loan            *domain.Loan    `json:"loan"`
	ResolvedArrears bool            `json:"resolved_arrears"`
}

// UpdatePayment corrects a recorded payment.
//
// An arrears placeholder becomes a real late payment: its status is forced
// into the out_of_time family and the loan books the money and clears one
// arrear. Any other payment is overwritten as given and the loan aggregates
// are left untouched, so callers must keep them consistent themselves.
func (s *LedgerService) UpdatePayment(ctx context.Context, cmd domain.UpdatePaymentCommand) (*CorrectionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	found, err := s.ownedPayment(ctx, cmd.ActorID, cmd.PaymentID)
	if err != nil {
		return nil, err
	}

	var result *CorrectionResult
	err = s.uow.WithinLoanTx(ctx, found.LoanID, func(r repository.Repos, loan *domain.Loan) error {
		payment, err := r.Payments.GetByID(ctx, cmd.PaymentID)
		if err != nil {
			return paymentErr(err, cmd.PaymentID)
		}

		if payment.IsArrearsPlaceholder {
			result, err = s.resolveArrears(ctx, r, loan, payment, cmd)
			return err
		}

		status := cmd.Status
		if status == "" {
			status = payment.Status
		}
		payment.Overwrite(utils.DateOnly(cmd.Date), cmd.Amount, cmd.ExtraAmount, status)
		if err := r.Payments.Update(ctx, payment); err != nil {
			return dbErr(err)
		}

		result = &CorrectionResult{Payment: payment, Loan: loan}
		return nil
	})
	if err != nil {
		return nil, loanErr(err, found.LoanID)
	}

	s.invalidate(ctx, found.LoanID)
	log.Printf("ledger: updated payment %s on loan %s (resolved arrears=%t)",
		cmd.PaymentID, found.LoanID, result.ResolvedArrears)
	return result, nil
}

func (s *LedgerService) resolveArrears(ctx context.Context, r repository.Repos, loan *domain.Loan, payment *domain.Payment, cmd domain.UpdatePaymentCommand) (*CorrectionResult, error) {
	status := cmd.Status
	if !status.IsOutOfTime() {
		status = domain.ComposeStatus(false, true, cmd.Amount.LessThan(loan.Installment))
	}

	payment.Overwrite(utils.DateOnly(cmd.Date), cmd.Amount, cmd.ExtraAmount, status)
	payment.IsArrearsPlaceholder = false
	if err := r.Payments.Update(ctx, payment); err != nil {
		return nil, dbErr(err)
	}

	loan.ResolveArrears(payment)
	loan.Evaluate(status)
	if err := r.Loans.Update(ctx, loan); err != nil {
		return nil, dbErr(err)
	}

	if err := s.syncClientStatus(ctx, r, loan); err != nil {
		return nil, err
	}

	return &CorrectionResult{Payment: payment, Loan: loan, ResolvedArrears: true}, nil
}
