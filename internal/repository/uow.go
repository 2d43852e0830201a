package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/installment-ledger/internal/domain"
)

// SqlxUoW implements UnitOfWork on a postgres transaction.
type SqlxUoW struct{ db *sqlx.DB }

func NewSqlxUoW(db *sqlx.DB) *SqlxUoW { return &SqlxUoW{db: db} }

// NewRepos binds every repository to db, which may be a transaction.
func NewRepos(db sqlx.ExtContext) Repos {
	return Repos{
		Loans:    NewLoanRepository(db),
		Payments: NewPaymentRepository(db),
		Clients:  NewClientRepository(db),
		Routes:   NewRouteRepository(db),
	}
}

func (u *SqlxUoW) WithinTx(ctx context.Context, fn func(r Repos) error) (err error) {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(NewRepos(tx)); err != nil {
		return err
	}

	return tx.Commit()
}

func (u *SqlxUoW) WithinLoanTx(ctx context.Context, loanID uuid.UUID, fn func(r Repos, l *domain.Loan) error) error {
	return u.WithinTx(ctx, func(r Repos) error {
		// lock the loan row up-front so concurrent writers queue behind us
		l, err := r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
