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

const paymentColumns = `id, loan_id, week, date, amount, extra_amount, total_received, status,
		is_arrears_placeholder, is_part_of_auto_settlement, expected_date,
		arrears_cleared, applied_amount, created_at, updated_at`

const paymentColumnsP = `p.id, p.loan_id, p.week, p.date, p.amount, p.extra_amount, p.total_received, p.status,
		p.is_arrears_placeholder, p.is_part_of_auto_settlement, p.expected_date,
		p.arrears_cleared, p.applied_amount, p.created_at, p.updated_at`

type paymentRepository struct {
	db sqlx.ExtContext
}

func NewPaymentRepository(db sqlx.ExtContext) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.LoanID,
		payment.Week,
		payment.Date,
		payment.Amount,
		payment.ExtraAmount,
		payment.TotalReceived,
		payment.Status,
		payment.IsArrearsPlaceholder,
		payment.IsPartOfAutoSettlement,
		payment.ExpectedDate,
		payment.ArrearsCleared,
		payment.AppliedAmount,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	return err
}

func (r *paymentRepository) GetByID(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return r.get(ctx, query, paymentID)
}

func (r *paymentRepository) GetByLoanIDAndWeek(ctx context.Context, loanID uuid.UUID, week int) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE loan_id = $1 AND week = $2`
	return r.get(ctx, query, loanID, week)
}

func (r *paymentRepository) get(ctx context.Context, query string, args ...interface{}) (*domain.Payment, error) {
	var payment domain.Payment
	err := sqlx.GetContext(ctx, r.db, &payment, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE loan_id = $1
		ORDER BY week
	`

	var payments []*domain.Payment
	if err := sqlx.SelectContext(ctx, r.db, &payments, query, loanID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) ListByRouteAndDay(ctx context.Context, routeID uuid.UUID, day time.Time) ([]*domain.Payment, error) {
	query := `
		SELECT ` + paymentColumnsP + `
		FROM payments p
		JOIN loans l ON l.id = p.loan_id
		JOIN clients c ON c.id = l.client_id
		WHERE c.route_id = $1 AND p.date >= $2 AND p.date < $3 AND NOT p.is_arrears_placeholder
		ORDER BY p.created_at
	`

	var payments []*domain.Payment
	if err := sqlx.SelectContext(ctx, r.db, &payments, query, routeID, day, day.AddDate(0, 0, 1)); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET date = $2, amount = $3, extra_amount = $4, total_received = $5, status = $6,
			is_arrears_placeholder = $7, is_part_of_auto_settlement = $8, expected_date = $9,
			arrears_cleared = $10, applied_amount = $11, updated_at = $12
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.Date,
		payment.Amount,
		payment.ExtraAmount,
		payment.TotalReceived,
		payment.Status,
		payment.IsArrearsPlaceholder,
		payment.IsPartOfAutoSettlement,
		payment.ExpectedDate,
		payment.ArrearsCleared,
		payment.AppliedAmount,
		payment.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return requireAffected(res)
}

func (r *paymentRepository) Delete(ctx context.Context, paymentID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, paymentID)
	if err != nil {
		return err
	}

	return requireAffected(res)
}

func (r *paymentRepository) DeleteByLoanID(ctx context.Context, loanID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE loan_id = $1`, loanID)
	return err
}
