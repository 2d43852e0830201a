package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/installment-ledger/internal/domain"
	"github.com/segyhp/installment-ledger/pkg/utils"
)

// OverdueLoan is one line of the collection follow-up list.
type OverdueLoan struct {
	LoanID             uuid.UUID         `json:"loan_id"`
	ClientID           uuid.UUID         `json:"client_id"`
	Status             domain.LoanStatus `json:"status"`
	DaysOverdue        int               `json:"days_overdue"`
	UnpaidArrearsCount int               `json:"unpaid_arrears_count"`
	Outstanding        decimal.Decimal   `json:"outstanding"`
}

// SweepOverdue lists unpaid loans whose next due date has passed. It never
// changes ledger state; misses are only booked through RecordArrears.
func (s *LedgerService) SweepOverdue(ctx context.Context) ([]*OverdueLoan, error) {
	today := utils.DateOnly(s.now())

	loans, err := s.repos.Loans.ListOverdue(ctx, today)
	if err != nil {
		return nil, dbErr(err)
	}

	out := make([]*OverdueLoan, 0, len(loans))
	for _, l := range loans {
		days := 0
		if l.NextDueDate != nil {
			days = int(today.Sub(utils.DateOnly(*l.NextDueDate)).Hours() / 24)
		}
		out = append(out, &OverdueLoan{
			LoanID:             l.ID,
			ClientID:           l.ClientID,
			Status:             l.Status,
			DaysOverdue:        days,
			UnpaidArrearsCount: l.UnpaidArrearsCount,
			Outstanding:        l.OutstandingBalance(),
		})
		log.Printf("ledger: loan %s overdue by %d days (status %s, outstanding %s)",
			l.ID, days, l.Status, l.OutstandingBalance().StringFixed(2))
	}

	return out, nil
}
