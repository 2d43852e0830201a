package service

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/segyhp/installment-ledger/internal/domain"
	"github.com/segyhp/installment-ledger/internal/repository"
	customError "github.com/segyhp/installment-ledger/pkg/errors"
)

// CreateLoan issues a loan to a client on one of the actor's routes.
func (s *LedgerService) CreateLoan(ctx context.Context, cmd domain.CreateLoanCommand) (*domain.Loan, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	client, err := s.repos.Clients.GetByIDForActor(ctx, cmd.ClientID, cmd.ActorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, customError.WrapClientNotFound(cmd.ClientID.String())
		}
		return nil, dbErr(err)
	}

	termWeeks := cmd.TermWeeks
	if termWeeks == 0 {
		termWeeks = s.config.DefaultTermWeeks
	}

	loan := domain.NewLoan(client.ID, cmd.Principal, s.config.MarkupRate, termWeeks, cmd.Installment, cmd.StartDate)
	if !loan.Installment.IsPositive() {
		return nil, customError.WrapValidation("installment must be greater than 0")
	}

	if err := s.repos.Loans.Create(ctx, loan); err != nil {
		return nil, dbErr(err)
	}

	log.Printf("ledger: created loan %s for client %s: total due %s over %d weeks",
		loan.ID, client.ID, loan.TotalDue.StringFixed(2), loan.TermWeeks)
	return loan, nil
}

func (s *LedgerService) GetLoan(ctx context.Context, actorID string, loanID uuid.UUID) (*domain.Loan, error) {
	return s.ownedLoan(ctx, actorID, loanID)
}

// GetLoanSummary reads through the summary cache. Cache failures fall back
// to the database.
func (s *LedgerService) GetLoanSummary(ctx context.Context, actorID string, loanID uuid.UUID) (*domain.LoanSummary, error) {
	cached, err := s.cache.GetSummary(ctx, loanID, actorID)
	if err != nil {
		log.Printf("ledger: cache read failed for loan %s: %v", loanID, err)
	}
	if cached != nil {
		return cached, nil
	}

	loan, err := s.ownedLoan(ctx, actorID, loanID)
	if err != nil {
		return nil, err
	}

	summary := loan.Summary()
	if err := s.cache.SetSummary(ctx, actorID, summary); err != nil {
		log.Printf("ledger: cache write failed for loan %s: %v", loanID, err)
	}
	return summary, nil
}

// GetSchedule lays the loan's records over its contractual weeks as of today.
func (s *LedgerService) GetSchedule(ctx context.Context, actorID string, loanID uuid.UUID) (*domain.ScheduleResponse, error) {
	loan, err := s.ownedLoan(ctx, actorID, loanID)
	if err != nil {
		return nil, err
	}

	payments, err := s.repos.Payments.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, dbErr(err)
	}

	return &domain.ScheduleResponse{
		LoanID:   loan.ID,
		Schedule: domain.BuildSchedule(loan, payments, s.now()),
	}, nil
}

func (s *LedgerService) ListPayments(ctx context.Context, actorID string, loanID uuid.UUID) ([]*domain.Payment, error) {
	if _, err := s.ownedLoan(ctx, actorID, loanID); err != nil {
		return nil, err
	}

	payments, err := s.repos.Payments.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, dbErr(err)
	}
	return payments, nil
}

// GetPayment returns one payment on a loan of actorID.
func (s *LedgerService) GetPayment(ctx context.Context, actorID string, paymentID uuid.UUID) (*domain.Payment, error) {
	return s.ownedPayment(ctx, actorID, paymentID)
}

// DeleteLoan removes a loan and its records. A loan with money booked is
// only removable once paid off.
func (s *LedgerService) DeleteLoan(ctx context.Context, actorID string, loanID uuid.UUID) error {
	if _, err := s.ownedLoan(ctx, actorID, loanID); err != nil {
		return err
	}

	err := s.uow.WithinLoanTx(ctx, loanID, func(r repository.Repos, loan *domain.Loan) error {
		if !loan.CanDelete() {
			return customError.WrapLoanHasPayments(loan.ID.String())
		}
		if err := r.Payments.DeleteByLoanID(ctx, loan.ID); err != nil {
			return dbErr(err)
		}
		if err := r.Loans.Delete(ctx, loan.ID); err != nil {
			return loanErr(err, loan.ID)
		}
		return nil
	})
	if err != nil {
		return loanErr(err, loanID)
	}

	s.invalidate(ctx, loanID)
	log.Printf("ledger: deleted loan %s", loanID)
	return nil
}
