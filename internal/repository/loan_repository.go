package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/segyhp/installment-ledger/internal/domain"
)

const loanColumns = `l.id, l.client_id, l.principal, l.term_weeks, l.installment, l.total_due,
		l.start_date, l.maturity_date, l.current_week, l.total_paid, l.extra_paid,
		l.last_payment_date, l.next_due_date, l.last_arrears_date,
		l.payments_on_time, l.payments_late, l.payments_partial,
		l.unpaid_arrears_count, l.unpaid_arrears_amount, l.consecutive_arrears_weeks,
		l.status, l.created_at, l.updated_at`

type loanRepository struct {
	db sqlx.ExtContext
}

// NewLoanRepository works on a *sqlx.DB or on a *sqlx.Tx.
func NewLoanRepository(db sqlx.ExtContext) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, client_id, principal, term_weeks, installment, total_due,
			start_date, maturity_date, current_week, total_paid, extra_paid,
			last_payment_date, next_due_date, last_arrears_date,
			payments_on_time, payments_late, payments_partial,
			unpaid_arrears_count, unpaid_arrears_amount, consecutive_arrears_weeks,
			status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.ClientID,
		loan.Principal,
		loan.TermWeeks,
		loan.Installment,
		loan.TotalDue,
		loan.StartDate,
		loan.MaturityDate,
		loan.CurrentWeek,
		loan.TotalPaid,
		loan.ExtraPaid,
		loan.LastPaymentDate,
		loan.NextDueDate,
		loan.LastArrearsDate,
		loan.PaymentsOnTime,
		loan.PaymentsLate,
		loan.PaymentsPartial,
		loan.UnpaidArrearsCount,
		loan.UnpaidArrearsAmount,
		loan.ConsecutiveArrearsWeeks,
		loan.Status,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

func (r *loanRepository) GetByID(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans l WHERE l.id = $1`
	return r.get(ctx, query, loanID)
}

func (r *loanRepository) GetByIDForActor(ctx context.Context, loanID uuid.UUID, actorID string) (*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans l
		JOIN clients c ON c.id = l.client_id
		JOIN routes rt ON rt.id = c.route_id
		WHERE l.id = $1 AND rt.user_id = $2
	`
	return r.get(ctx, query, loanID, actorID)
}

func (r *loanRepository) GetByIDForUpdate(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans l WHERE l.id = $1 FOR UPDATE`
	return r.get(ctx, query, loanID)
}

func (r *loanRepository) get(ctx context.Context, query string, args ...interface{}) (*domain.Loan, error) {
	var loan domain.Loan
	err := sqlx.GetContext(ctx, r.db, &loan, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET installment = $2, current_week = $3, total_paid = $4, extra_paid = $5,
			last_payment_date = $6, next_due_date = $7, last_arrears_date = $8,
			payments_on_time = $9, payments_late = $10, payments_partial = $11,
			unpaid_arrears_count = $12, unpaid_arrears_amount = $13, consecutive_arrears_weeks = $14,
			status = $15, updated_at = $16
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.Installment,
		loan.CurrentWeek,
		loan.TotalPaid,
		loan.ExtraPaid,
		loan.LastPaymentDate,
		loan.NextDueDate,
		loan.LastArrearsDate,
		loan.PaymentsOnTime,
		loan.PaymentsLate,
		loan.PaymentsPartial,
		loan.UnpaidArrearsCount,
		loan.UnpaidArrearsAmount,
		loan.ConsecutiveArrearsWeeks,
		loan.Status,
		loan.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return requireAffected(res)
}

func (r *loanRepository) Delete(ctx context.Context, loanID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM loans WHERE id = $1`, loanID)
	if err != nil {
		return err
	}

	return requireAffected(res)
}

func (r *loanRepository) CountDelinquentByClient(ctx context.Context, clientID, excludeLoanID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM loans
		WHERE client_id = $1 AND id <> $2 AND status = $3
	`

	var count int
	err := sqlx.GetContext(ctx, r.db, &count, query, clientID, excludeLoanID, domain.LoanStatusDelinquent)
	return count, err
}

func (r *loanRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans l WHERE l.client_id = $1 ORDER BY l.start_date`

	var loans []*domain.Loan
	if err := sqlx.SelectContext(ctx, r.db, &loans, query, clientID); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans l
		WHERE l.status <> $1 AND l.next_due_date < $2
		ORDER BY l.next_due_date
	`

	var loans []*domain.Loan
	if err := sqlx.SelectContext(ctx, r.db, &loans, query, domain.LoanStatusPaid, asOf); err != nil {
		return nil, err
	}

	return loans, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
