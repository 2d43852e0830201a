package service

import (
	"context"
	"log"

	"github.com/segyhp/installment-ledger/internal/domain"
	"github.com/segyhp/installment-ledger/internal/repository"
)

type ReversalResult struct {
	Payment *domain.Payment `json:"payment"`
	Loan    *domain.Loan    `json:"loan"`
}

// ReversePayment deletes a payment and takes its money back out of the
// loan. Counters and arrears state are not restored.
func (s *LedgerService) ReversePayment(ctx context.Context, cmd domain.ReversePaymentCommand) (*ReversalResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	found, err := s.ownedPayment(ctx, cmd.ActorID, cmd.PaymentID)
	if err != nil {
		return nil, err
	}

	var result *ReversalResult
	err = s.uow.WithinLoanTx(ctx, found.LoanID, func(r repository.Repos, loan *domain.Loan) error {
		payment, err := r.Payments.GetByID(ctx, cmd.PaymentID)
		if err != nil {
			return paymentErr(err, cmd.PaymentID)
		}

		if err := loan.Revert(payment); err != nil {
			return err
		}
		if err := r.Payments.Delete(ctx, payment.ID); err != nil {
			return paymentErr(err, payment.ID)
		}
		if err := r.Loans.Update(ctx, loan); err != nil {
			return dbErr(err)
		}

		result = &ReversalResult{Payment: payment, Loan: loan}
		return nil
	})
	if err != nil {
		return nil, loanErr(err, found.LoanID)
	}

	s.invalidate(ctx, found.LoanID)
	log.Printf("ledger: reversed payment %s on loan %s (total paid now %s)",
		cmd.PaymentID, found.LoanID, result.Loan.TotalPaid.StringFixed(2))
	return result, nil
}
