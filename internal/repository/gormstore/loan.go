package gormstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/segyhp/installment-ledger/internal/domain"
	"github.com/segyhp/installment-ledger/internal/repository"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *domain.Loan) error {
	return r.db.WithContext(ctx).Create(toLoanRecord(l)).Error
}

func (r *LoanRepository) GetByID(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", loanID))
}

func (r *LoanRepository) GetByIDForActor(ctx context.Context, loanID uuid.UUID, actorID string) (*domain.Loan, error) {
	q := r.db.WithContext(ctx).
		Select("loans.*").
		Joins("JOIN clients ON clients.id = loans.client_id").
		Joins("JOIN routes ON routes.id = clients.route_id").
		Where("loans.id = ? AND routes.user_id = ?", loanID, actorID)
	return r.first(q)
}

// GetByIDForUpdate takes a row lock. The sqlite dialect drops the clause;
// its single writer serializes transactions anyway.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	q := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", loanID)
	return r.first(q)
}

func (r *LoanRepository) first(q *gorm.DB) (*domain.Loan, error) {
	var out loanRecord
	if err := q.First(&out).Error; err != nil {
		return nil, mapErr(err)
	}
	return out.toDomain(), nil
}

func (r *LoanRepository) Update(ctx context.Context, l *domain.Loan) error {
	return r.db.WithContext(ctx).Save(toLoanRecord(l)).Error
}

func (r *LoanRepository) Delete(ctx context.Context, loanID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", loanID).Delete(&loanRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *LoanRepository) CountDelinquentByClient(ctx context.Context, clientID, excludeLoanID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&loanRecord{}).
		Where("client_id = ? AND id <> ? AND status = ?", clientID, excludeLoanID, string(domain.LoanStatusDelinquent)).
		Count(&count).Error
	return int(count), err
}

func (r *LoanRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Loan, error) {
	var records []loanRecord
	if err := r.db.WithContext(ctx).Where("client_id = ?", clientID).Order("start_date").Find(&records).Error; err != nil {
		return nil, err
	}
	return loansToDomain(records), nil
}

func (r *LoanRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*domain.Loan, error) {
	var records []loanRecord
	err := r.db.WithContext(ctx).
		Where("status <> ? AND next_due_date < ?", string(domain.LoanStatusPaid), asOf).
		Order("next_due_date").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return loansToDomain(records), nil
}

func loansToDomain(records []loanRecord) []*domain.Loan {
	out := make([]*domain.Loan, 0, len(records))
	for i := range records {
		out = append(out, records[i].toDomain())
	}
	return out
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	return err
}
