package gormstore

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/segyhp/installment-ledger/internal/domain"
	"github.com/segyhp/installment-ledger/internal/repository"
)

// Ensure compile-time compliance
var (
	_ repository.UnitOfWork        = (*GormUoW)(nil)
	_ repository.LoanRepository    = (*LoanRepository)(nil)
	_ repository.PaymentRepository = (*PaymentRepository)(nil)
	_ repository.ClientRepository  = (*ClientRepository)(nil)
	_ repository.RouteRepository   = (*RouteRepository)(nil)
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

// NewRepos binds every repository to db, which may be a transaction.
func NewRepos(db *gorm.DB) repository.Repos {
	return repository.Repos{
		Loans:    NewLoanRepository(db),
		Payments: NewPaymentRepository(db),
		Clients:  NewClientRepository(db),
		Routes:   NewRouteRepository(db),
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r repository.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepos(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, loanID uuid.UUID, fn func(r repository.Repos, l *domain.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := NewRepos(tx)
		// lock the loan row up-front to prevent races
		l, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}

// Migrate creates or updates the ledger tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&routeRecord{}, &clientRecord{}, &loanRecord{}, &paymentRecord{})
}
