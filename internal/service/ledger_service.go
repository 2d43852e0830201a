package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/installment-ledger/internal/domain"
	"github.com/segyhp/installment-ledger/internal/repository"
	customError "github.com/segyhp/installment-ledger/pkg/errors"
)

// Ledger is everything the request layer can ask of the loan ledger.
type Ledger interface {
	CreateLoan(ctx context.Context, cmd domain.CreateLoanCommand) (*domain.Loan, error)
	GetLoan(ctx context.Context, actorID string, loanID uuid.UUID) (*domain.Loan, error)
	GetLoanSummary(ctx context.Context, actorID string, loanID uuid.UUID) (*domain.LoanSummary, error)
	GetSchedule(ctx context.Context, actorID string, loanID uuid.UUID) (*domain.ScheduleResponse, error)
	ListPayments(ctx context.Context, actorID string, loanID uuid.UUID) ([]*domain.Payment, error)
	GetPayment(ctx context.Context, actorID string, paymentID uuid.UUID) (*domain.Payment, error)
	DeleteLoan(ctx context.Context, actorID string, loanID uuid.UUID) error

	RegisterPayment(ctx context.Context, cmd domain.RegisterPaymentCommand) (*RegistrationResult, error)
	RecordArrears(ctx context.Context, cmd domain.RecordArrearsCommand) (*ArrearsResult, error)
	UpdatePayment(ctx context.Context, cmd domain.UpdatePaymentCommand) (*CorrectionResult, error)
	ReversePayment(ctx context.Context, cmd domain.ReversePaymentCommand) (*ReversalResult, error)

	GetReceipt(ctx context.Context, actorID string, paymentID uuid.UUID) (*Receipt, error)
	GetRouteReceipts(ctx context.Context, actorID string, routeID uuid.UUID, day time.Time) (*RouteReceipts, error)
	SweepOverdue(ctx context.Context) ([]*OverdueLoan, error)
}

// SummaryCache is the read-side cache of loan summaries.
type SummaryCache interface {
	GetSummary(ctx context.Context, loanID uuid.UUID, actorID string) (*domain.LoanSummary, error)
	SetSummary(ctx context.Context, actorID string, s *domain.LoanSummary) error
	Invalidate(ctx context.Context, loanID uuid.UUID) error
}

// LedgerConfig carries the business rules that come from configuration.
type LedgerConfig struct {
	MarkupRate       decimal.Decimal
	DefaultTermWeeks int
}

type LedgerService struct {
	repos  repository.Repos
	uow    repository.UnitOfWork
	cache  SummaryCache
	config LedgerConfig
	now    func() time.Time
}

var _ Ledger = (*LedgerService)(nil)

// NewLedgerService wires the ledger. repos serve reads outside a
// transaction; every mutation goes through uow. cache may be nil.
func NewLedgerService(repos repository.Repos, uow repository.UnitOfWork, cache SummaryCache, config LedgerConfig) *LedgerService {
	if config.DefaultTermWeeks <= 0 {
		config.DefaultTermWeeks = domain.DefaultTermWeeks
	}
	if cache == nil {
		cache = noopCache{}
	}
	return &LedgerService{
		repos:  repos,
		uow:    uow,
		cache:  cache,
		config: config,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ownedLoan loads a loan through the client -> route -> actor chain.
func (s *LedgerService) ownedLoan(ctx context.Context, actorID string, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.repos.Loans.GetByIDForActor(ctx, loanID, actorID)
	if err != nil {
		return nil, loanErr(err, loanID)
	}
	return loan, nil
}

// ownedPayment loads a payment whose loan belongs to actorID. A payment on
// someone else's loan is reported as not found.
func (s *LedgerService) ownedPayment(ctx context.Context, actorID string, paymentID uuid.UUID) (*domain.Payment, error) {
	payment, err := s.repos.Payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, paymentErr(err, paymentID)
	}
	if _, err := s.repos.Loans.GetByIDForActor(ctx, payment.LoanID, actorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, customError.WrapPaymentNotFound(paymentID.String())
		}
		return nil, dbErr(err)
	}
	return payment, nil
}

// syncClientStatus applies the client half of the status evaluator after
// loan l changed: a delinquent loan marks the client delinquent, and a
// delinquent client is cleared only when no other loan is delinquent.
func (s *LedgerService) syncClientStatus(ctx context.Context, r repository.Repos, l *domain.Loan) error {
	client, err := r.Clients.GetByID(ctx, l.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return customError.WrapClientNotFound(l.ClientID.String())
		}
		return dbErr(err)
	}

	var target domain.ClientStatus
	switch {
	case l.Status == domain.LoanStatusDelinquent:
		target = domain.ClientStatusDelinquent
	case client.Status == domain.ClientStatusDelinquent:
		others, err := r.Loans.CountDelinquentByClient(ctx, client.ID, l.ID)
		if err != nil {
			return dbErr(err)
		}
		target = domain.EvaluateClientStatus(others)
	default:
		return nil
	}

	if !client.SetStatus(target) {
		return nil
	}
	if err := r.Clients.Update(ctx, client); err != nil {
		return dbErr(err)
	}
	log.Printf("ledger: client %s is now %s", client.ID, client.Status)
	return nil
}

// paymentForWeek reports a conflict when week already has a record.
func paymentForWeek(ctx context.Context, r repository.Repos, l *domain.Loan, week int) error {
	existing, err := r.Payments.GetByLoanIDAndWeek(ctx, l.ID, week)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return dbErr(err)
	}

	conflict := customError.WrapDuplicateWeek(l.ID.String(), week, existing)
	if existing.IsArrearsPlaceholder {
		conflict.Message += "; update the arrears record to register a payment for it"
	}
	return conflict
}

func validateWeek(l *domain.Loan, week int) error {
	if week > l.TermWeeks {
		return customError.WrapValidation("week must not be greater than the loan term")
	}
	return nil
}

// validatePaymentWeek also accepts the loan's current week once it has run
// past the term with money still owed, so a loan that was paid short every
// week can still be paid off.
func validatePaymentWeek(l *domain.Loan, week int) error {
	if week > l.TermWeeks && week == l.CurrentWeek && l.OutstandingBalance().IsPositive() {
		return nil
	}
	return validateWeek(l, week)
}

// invalidate drops the cached summary. Cache failures never fail a mutation.
func (s *LedgerService) invalidate(ctx context.Context, loanID uuid.UUID) {
	if err := s.cache.Invalidate(ctx, loanID); err != nil {
		log.Printf("ledger: cache invalidation failed for loan %s: %v", loanID, err)
	}
}

func dbErr(err error) error {
	var be *customError.BusinessError
	if errors.As(err, &be) {
		return err
	}
	return customError.WrapDatabaseError(err)
}

func loanErr(err error, loanID uuid.UUID) error {
	if errors.Is(err, repository.ErrNotFound) {
		return customError.WrapLoanNotFound(loanID.String())
	}
	return dbErr(err)
}

func paymentErr(err error, paymentID uuid.UUID) error {
	if errors.Is(err, repository.ErrNotFound) {
		return customError.WrapPaymentNotFound(paymentID.String())
	}
	return dbErr(err)
}

type noopCache struct{}

func (noopCache) GetSummary(context.Context, uuid.UUID, string) (*domain.LoanSummary, error) {
	return nil, nil
}

func (noopCache) SetSummary(context.Context, string, *domain.LoanSummary) error { return nil }

func (noopCache) Invalidate(context.Context, uuid.UUID) error { return nil }
