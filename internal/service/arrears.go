package service

import (
	"context"
	"log"
	"time"

	"github.com/segyhp/installment-ledger/internal/domain"
	"github.com/segyhp/installment-ledger/internal/repository"
	"github.com/segyhp/installment-ledger/pkg/utils"
)

type ArrearsResult struct {
	Payment *domain.Payment `json:"payment"`
	Loan    *domain.Loan    `json:"loan"`
}

// RecordArrears books a missed week as a zero-amount placeholder. The loan
// and its client both become delinquent.
func (s *LedgerService) RecordArrears(ctx context.Context, cmd domain.RecordArrearsCommand) (*ArrearsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.ownedLoan(ctx, cmd.ActorID, cmd.LoanID); err != nil {
		return nil, err
	}

	var result *ArrearsResult
	err := s.uow.WithinLoanTx(ctx, cmd.LoanID, func(r repository.Repos, loan *domain.Loan) error {
		if err := validateWeek(loan, cmd.Week); err != nil {
			return err
		}
		if err := paymentForWeek(ctx, r, loan, cmd.Week); err != nil {
			return err
		}

		var expected *time.Time
		if cmd.ExpectedDate != nil {
			d := utils.DateOnly(*cmd.ExpectedDate)
			expected = &d
		}
		placeholder := domain.NewArrearsPlaceholder(loan.ID, cmd.Week, utils.DateOnly(cmd.Date), expected)
		if err := r.Payments.Create(ctx, placeholder); err != nil {
			return dbErr(err)
		}

		loan.RecordArrears(placeholder)
		if err := r.Loans.Update(ctx, loan); err != nil {
			return dbErr(err)
		}

		if err := s.syncClientStatus(ctx, r, loan); err != nil {
			return err
		}

		result = &ArrearsResult{Payment: placeholder, Loan: loan}
		return nil
	})
	if err != nil {
		return nil, loanErr(err, cmd.LoanID)
	}

	s.invalidate(ctx, cmd.LoanID)
	log.Printf("ledger: recorded arrears on loan %s week %d (unpaid arrears %d)",
		cmd.LoanID, cmd.Week, result.Loan.UnpaidArrearsCount)
	return result, nil
}
