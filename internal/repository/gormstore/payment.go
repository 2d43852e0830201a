package gormstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/segyhp/installment-ledger/internal/domain"
	"github.com/segyhp/installment-ledger/internal/repository"
)

type PaymentRepository struct{ db *gorm.DB }

func NewPaymentRepository(db *gorm.DB) *PaymentRepository { return &PaymentRepository{db: db} }

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	return r.db.WithContext(ctx).Create(toPaymentRecord(p)).Error
}

func (r *PaymentRepository) GetByID(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	var out paymentRecord
	if err := r.db.WithContext(ctx).Where("id = ?", paymentID).First(&out).Error; err != nil {
		return nil, mapErr(err)
	}
	return out.toDomain(), nil
}

func (r *PaymentRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	var records []paymentRecord
	if err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).Order("week").Find(&records).Error; err != nil {
		return nil, err
	}
	return paymentsToDomain(records), nil
}

func (r *PaymentRepository) GetByLoanIDAndWeek(ctx context.Context, loanID uuid.UUID, week int) (*domain.Payment, error) {
	var out paymentRecord
	if err := r.db.WithContext(ctx).Where("loan_id = ? AND week = ?", loanID, week).First(&out).Error; err != nil {
		return nil, mapErr(err)
	}
	return out.toDomain(), nil
}

func (r *PaymentRepository) ListByRouteAndDay(ctx context.Context, routeID uuid.UUID, day time.Time) ([]*domain.Payment, error) {
	var records []paymentRecord
	err := r.db.WithContext(ctx).
		Select("payments.*").
		Joins("JOIN loans ON loans.id = payments.loan_id").
		Joins("JOIN clients ON clients.id = loans.client_id").
		Where("clients.route_id = ? AND payments.date >= ? AND payments.date < ? AND payments.is_arrears_placeholder = ?",
			routeID, day, day.AddDate(0, 0, 1), false).
		Order("payments.created_at").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return paymentsToDomain(records), nil
}

func (r *PaymentRepository) Update(ctx context.Context, p *domain.Payment) error {
	return r.db.WithContext(ctx).Save(toPaymentRecord(p)).Error
}

func (r *PaymentRepository) Delete(ctx context.Context, paymentID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", paymentID).Delete(&paymentRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PaymentRepository) DeleteByLoanID(ctx context.Context, loanID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("loan_id = ?", loanID).Delete(&paymentRecord{}).Error
}

func paymentsToDomain(records []paymentRecord) []*domain.Payment {
	out := make([]*domain.Payment, 0, len(records))
	for i := range records {
		out = append(out, records[i].toDomain())
	}
	return out
}
