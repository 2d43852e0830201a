package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/installment-ledger/pkg/utils"
)

const (
	ScheduleStatusPending = "pending"
	ScheduleStatusPaid    = "paid"
	ScheduleStatusOverdue = "overdue"
	ScheduleStatusMissed  = "missed"
)

// ScheduleEntry is a read-only view of one contractual week.
type ScheduleEntry struct {
	Week          int             `json:"week"`
	DueDate       time.Time       `json:"due_date"`
	DueAmount     decimal.Decimal `json:"due_amount"`
	Status        string          `json:"status"` // pending, paid, overdue, missed
	PaymentID     *uuid.UUID      `json:"payment_id,omitempty"`
	PaymentStatus PaymentStatus   `json:"payment_status,omitempty"`
	Received      decimal.Decimal `json:"received"`
}

type ScheduleResponse struct {
	LoanID   uuid.UUID        `json:"loan_id"`
	Schedule []*ScheduleEntry `json:"schedule"`
}

// BuildSchedule lays the recorded payments over the contractual weeks of l.
// Weeks without a record whose due date is before asOf are overdue.
func BuildSchedule(l *Loan, payments []*Payment, asOf time.Time) []*ScheduleEntry {
	byWeek := WeekSet(payments)
	entries := make([]*ScheduleEntry, 0, l.TermWeeks)

	for week := 1; week <= l.TermWeeks; week++ {
		entry := &ScheduleEntry{
			Week:      week,
			DueDate:   utils.CalculateDueDate(l.StartDate, week),
			DueAmount: l.Installment,
			Status:    ScheduleStatusPending,
			Received:  decimal.Zero,
		}

		if p, ok := byWeek[week]; ok {
			id := p.ID
			entry.PaymentID = &id
			entry.PaymentStatus = p.Status
			entry.Received = p.TotalReceived
			if p.IsArrearsPlaceholder {
				entry.Status = ScheduleStatusMissed
			} else {
				entry.Status = ScheduleStatusPaid
			}
		} else if utils.IsAfterDay(asOf, entry.DueDate) {
			entry.Status = ScheduleStatusOverdue
		}

		entries = append(entries, entry)
	}

	return entries
}
