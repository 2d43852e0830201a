package gormstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/installment-ledger/internal/domain"
	"github.com/segyhp/installment-ledger/pkg/utils"
)

// Records mirror the postgres schema in migrations/ so either adapter can
// run on the same tables. They stay private; repositories map to domain types.

type routeRecord struct {
	ID            uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	Name          string    `gorm:"size:120;not null"`
	CollectionDay string    `gorm:"size:16"`
	UserID        string    `gorm:"size:64;not null;index"`
	CreatedAt     time.Time
}

func (routeRecord) TableName() string { return "routes" }

type clientRecord struct {
	ID         uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	RouteID    uuid.UUID `gorm:"type:varchar(36);not null;index"`
	Name       string    `gorm:"size:120;not null"`
	NationalID string    `gorm:"size:32"`
	Phone      string    `gorm:"size:32"`
	Address    string    `gorm:"size:255"`
	Status     string    `gorm:"size:16;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (clientRecord) TableName() string { return "clients" }

type loanRecord struct {
	ID                      uuid.UUID       `gorm:"type:varchar(36);primaryKey"`
	ClientID                uuid.UUID       `gorm:"type:varchar(36);not null;index"`
	Principal               decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TermWeeks               int             `gorm:"not null"`
	Installment             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalDue                decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StartDate               time.Time       `gorm:"not null"`
	MaturityDate            time.Time       `gorm:"not null"`
	CurrentWeek             int             `gorm:"not null"`
	TotalPaid               decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ExtraPaid               decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LastPaymentDate         *time.Time
	NextDueDate             *time.Time `gorm:"index"`
	LastArrearsDate         *time.Time
	PaymentsOnTime          int
	PaymentsLate            int
	PaymentsPartial         int
	UnpaidArrearsCount      int
	UnpaidArrearsAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ConsecutiveArrearsWeeks int
	Status                  string `gorm:"size:16;not null;index"`
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

func (loanRecord) TableName() string { return "loans" }

type paymentRecord struct {
	ID                     uuid.UUID       `gorm:"type:varchar(36);primaryKey"`
	LoanID                 uuid.UUID       `gorm:"type:varchar(36);not null;uniqueIndex:idx_payments_loan_week"`
	Week                   int             `gorm:"not null;uniqueIndex:idx_payments_loan_week"`
	Date                   time.Time       `gorm:"not null"`
	Amount                 decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ExtraAmount            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalReceived          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status                 string          `gorm:"size:32;not null"`
	IsArrearsPlaceholder   bool
	IsPartOfAutoSettlement bool
	ExpectedDate           *time.Time
	ArrearsCleared         int
	AppliedAmount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (paymentRecord) TableName() string { return "payments" }

func datePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := utils.DateOnly(*t)
	return &d
}

func toRouteRecord(r *domain.Route) *routeRecord {
	return &routeRecord{ID: r.ID, Name: r.Name, CollectionDay: r.CollectionDay, UserID: r.UserID, CreatedAt: r.CreatedAt}
}

func (r *routeRecord) toDomain() *domain.Route {
	return &domain.Route{ID: r.ID, Name: r.Name, CollectionDay: r.CollectionDay, UserID: r.UserID, CreatedAt: r.CreatedAt.UTC()}
}

func toClientRecord(c *domain.Client) *clientRecord {
	return &clientRecord{
		ID:         c.ID,
		RouteID:    c.RouteID,
		Name:       c.Name,
		NationalID: c.NationalID,
		Phone:      c.Phone,
		Address:    c.Address,
		Status:     string(c.Status),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func (r *clientRecord) toDomain() *domain.Client {
	return &domain.Client{
		ID:         r.ID,
		RouteID:    r.RouteID,
		Name:       r.Name,
		NationalID: r.NationalID,
		Phone:      r.Phone,
		Address:    r.Address,
		Status:     domain.ClientStatus(r.Status),
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}

func toLoanRecord(l *domain.Loan) *loanRecord {
	return &loanRecord{
		ID:                      l.ID,
		ClientID:                l.ClientID,
		Principal:               l.Principal,
		TermWeeks:               l.TermWeeks,
		Installment:             l.Installment,
		TotalDue:                l.TotalDue,
		StartDate:               l.StartDate,
		MaturityDate:            l.MaturityDate,
		CurrentWeek:             l.CurrentWeek,
		TotalPaid:               l.TotalPaid,
		ExtraPaid:               l.ExtraPaid,
		LastPaymentDate:         l.LastPaymentDate,
		NextDueDate:             l.NextDueDate,
		LastArrearsDate:         l.LastArrearsDate,
		PaymentsOnTime:          l.PaymentsOnTime,
		PaymentsLate:            l.PaymentsLate,
		PaymentsPartial:         l.PaymentsPartial,
		UnpaidArrearsCount:      l.UnpaidArrearsCount,
		UnpaidArrearsAmount:     l.UnpaidArrearsAmount,
		ConsecutiveArrearsWeeks: l.ConsecutiveArrearsWeeks,
		Status:                  string(l.Status),
		CreatedAt:               l.CreatedAt,
		UpdatedAt:               l.UpdatedAt,
	}
}

func (r *loanRecord) toDomain() *domain.Loan {
	return &domain.Loan{
		ID:              r.ID,
		ClientID:        r.ClientID,
		Principal:       r.Principal,
		TermWeeks:       r.TermWeeks,
		Installment:     r.Installment,
		TotalDue:        r.TotalDue,
		StartDate:       utils.DateOnly(r.StartDate),
		MaturityDate:    utils.DateOnly(r.MaturityDate),
		CurrentWeek:     r.CurrentWeek,
		TotalPaid:       r.TotalPaid,
		ExtraPaid:       r.ExtraPaid,
		LastPaymentDate: datePtr(r.LastPaymentDate),
		NextDueDate:     datePtr(r.NextDueDate),
		LastArrearsDate: datePtr(r.LastArrearsDate),
		LoanCounters: domain.LoanCounters{
			PaymentsOnTime:  r.PaymentsOnTime,
			PaymentsLate:    r.PaymentsLate,
			PaymentsPartial: r.PaymentsPartial,
		},
		ArrearsState: domain.ArrearsState{
			UnpaidArrearsCount:      r.UnpaidArrearsCount,
			UnpaidArrearsAmount:     r.UnpaidArrearsAmount,
			ConsecutiveArrearsWeeks: r.ConsecutiveArrearsWeeks,
		},
		Status:    domain.LoanStatus(r.Status),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func toPaymentRecord(p *domain.Payment) *paymentRecord {
	return &paymentRecord{
		ID:                     p.ID,
		LoanID:                 p.LoanID,
		Week:                   p.Week,
		Date:                   p.Date,
		Amount:                 p.Amount,
		ExtraAmount:            p.ExtraAmount,
		TotalReceived:          p.TotalReceived,
		Status:                 string(p.Status),
		IsArrearsPlaceholder:   p.IsArrearsPlaceholder,
		IsPartOfAutoSettlement: p.IsPartOfAutoSettlement,
		ExpectedDate:           p.ExpectedDate,
		ArrearsCleared:         p.ArrearsCleared,
		AppliedAmount:          p.AppliedAmount,
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
	}
}

func (r *paymentRecord) toDomain() *domain.Payment {
	return &domain.Payment{
		ID:                     r.ID,
		LoanID:                 r.LoanID,
		Week:                   r.Week,
		Date:                   utils.DateOnly(r.Date),
		Amount:                 r.Amount,
		ExtraAmount:            r.ExtraAmount,
		TotalReceived:          r.TotalReceived,
		Status:                 domain.PaymentStatus(r.Status),
		IsArrearsPlaceholder:   r.IsArrearsPlaceholder,
		IsPartOfAutoSettlement: r.IsPartOfAutoSettlement,
		ExpectedDate:           datePtr(r.ExpectedDate),
		ArrearsCleared:         r.ArrearsCleared,
		AppliedAmount:          r.AppliedAmount,
		CreatedAt:              r.CreatedAt.UTC(),
		UpdatedAt:              r.UpdatedAt.UTC(),
	}
}
