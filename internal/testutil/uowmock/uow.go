package uowmock

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/segyhp/installment-ledger/internal/domain"
	"github.com/segyhp/installment-ledger/internal/repository"
)

// Ensure compile-time compliance
var _ repository.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies repository.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn     func(ctx context.Context, fn func(r repository.Repos) error) error
	WithinLoanTxFn func(ctx context.Context, loanID uuid.UUID, fn func(r repository.Repos, l *domain.Loan) error) error
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(repository.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinLoanTx(fn func(context.Context, uuid.UUID, func(repository.Repos, *domain.Loan) error) error) *UoW {
	m.WithinLoanTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Wrap delegates to inner, letting a test swap the repos handed to fn,
// e.g. to inject a failing repository inside a real transaction.
func Wrap(inner repository.UnitOfWork, swap func(repository.Repos) repository.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(ctx context.Context, fn func(repository.Repos) error) error {
			return inner.WithinTx(ctx, func(r repository.Repos) error { return fn(swap(r)) })
		},
		WithinLoanTxFn: func(ctx context.Context, loanID uuid.UUID, fn func(repository.Repos, *domain.Loan) error) error {
			return inner.WithinLoanTx(ctx, loanID, func(r repository.Repos, l *domain.Loan) error { return fn(swap(r), l) })
		},
	}
}

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r repository.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinLoanTx(ctx context.Context, loanID uuid.UUID, fn func(r repository.Repos, l *domain.Loan) error) error {
	if m.WithinLoanTxFn != nil {
		return m.WithinLoanTxFn(ctx, loanID, fn)
	}
	return errUnimplemented
}
