package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/segyhp/installment-ledger/internal/domain"
)

// ErrNotFound is returned by every adapter when a lookup matches no row.
var ErrNotFound = errors.New("record not found")

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by its ID
	GetByID(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error)

	// GetByIDForActor retrieves a loan only if it sits on a route owned by actorID
	GetByIDForActor(ctx context.Context, loanID uuid.UUID, actorID string) (*domain.Loan, error)

	// GetByIDForUpdate retrieves a loan and locks its row until the transaction ends
	GetByIDForUpdate(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error)

	// Update persists every mutable field of a loan
	Update(ctx context.Context, loan *domain.Loan) error

	Delete(ctx context.Context, loanID uuid.UUID) error

	// CountDelinquentByClient counts the client's delinquent loans, leaving out excludeLoanID
	CountDelinquentByClient(ctx context.Context, clientID, excludeLoanID uuid.UUID) (int, error)

	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Loan, error)

	// ListOverdue returns unpaid loans whose next due date is before asOf
	ListOverdue(ctx context.Context, asOf time.Time) ([]*domain.Loan, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Create creates a new payment record
	Create(ctx context.Context, payment *domain.Payment) error

	GetByID(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error)

	// GetByLoanID retrieves all payments for a loan ordered by week
	GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error)

	// GetByLoanIDAndWeek retrieves the record of one week, ErrNotFound if there is none
	GetByLoanIDAndWeek(ctx context.Context, loanID uuid.UUID, week int) (*domain.Payment, error)

	// ListByRouteAndDay returns the real payments dated day on loans of the
	// route's clients, oldest first. Arrears placeholders are left out.
	ListByRouteAndDay(ctx context.Context, routeID uuid.UUID, day time.Time) ([]*domain.Payment, error)

	Update(ctx context.Context, payment *domain.Payment) error

	Delete(ctx context.Context, paymentID uuid.UUID) error

	DeleteByLoanID(ctx context.Context, loanID uuid.UUID) error
}

// ClientRepository defines the interface for client data operations
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, clientID uuid.UUID) (*domain.Client, error)
	// GetByIDForActor retrieves a client only if its route is owned by actorID
	GetByIDForActor(ctx context.Context, clientID uuid.UUID, actorID string) (*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
}

type RouteRepository interface {
	Create(ctx context.Context, route *domain.Route) error
	GetByID(ctx context.Context, routeID uuid.UUID) (*domain.Route, error)
}

// Repos is the set of repositories bound to one transaction.
type Repos struct {
	Loans    LoanRepository
	Payments PaymentRepository
	Clients  ClientRepository
	Routes   RouteRepository
}

// UnitOfWork runs work atomically. WithinLoanTx additionally locks the loan
// row first, so all work on one loan is serialized.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	WithinLoanTx(ctx context.Context, loanID uuid.UUID, fn func(r Repos, l *domain.Loan) error) error
}
