package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/installment-ledger/internal/domain"
	"github.com/segyhp/installment-ledger/pkg/utils"
)

// Date is a YYYY-MM-DD day on the wire.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.New("date must be a YYYY-MM-DD string")
	}
	t, err := utils.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("date %q is not YYYY-MM-DD", s)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(utils.DateLayout))
}

// ptr returns nil for an absent date.
func (d *Date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

func (d *Date) value() time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

type CreateLoanRequest struct {
	ClientID    uuid.UUID       `json:"client_id"`
	Principal   decimal.Decimal `json:"principal"`
	StartDate   *Date           `json:"start_date"`
	TermWeeks   int             `json:"term_weeks"`
	Installment decimal.Decimal `json:"installment"`
}

func (r CreateLoanRequest) command(actorID string) domain.CreateLoanCommand {
	return domain.CreateLoanCommand{
		ActorID:     actorID,
		ClientID:    r.ClientID,
		Principal:   r.Principal,
		TermWeeks:   r.TermWeeks,
		Installment: r.Installment,
		StartDate:   r.StartDate.value(),
	}
}

type RegisterPaymentRequest struct {
	LoanID           uuid.UUID       `json:"loan_id"`
	Amount           decimal.Decimal `json:"amount"`
	ExtraAmount      decimal.Decimal `json:"extra_amount"`
	Date             *Date           `json:"date"`
	Week             int             `json:"week"`
	ApplyToArrears   bool            `json:"apply_to_arrears"`
	IsFullSettlement bool            `json:"is_full_settlement"`
}

func (r RegisterPaymentRequest) command(actorID string) domain.RegisterPaymentCommand {
	return domain.RegisterPaymentCommand{
		ActorID:          actorID,
		LoanID:           r.LoanID,
		Amount:           r.Amount,
		ExtraAmount:      r.ExtraAmount,
		Date:             r.Date.value(),
		Week:             r.Week,
		ApplyToArrears:   r.ApplyToArrears,
		IsFullSettlement: r.IsFullSettlement,
	}
}

type RecordArrearsRequest struct {
	LoanID       uuid.UUID `json:"loan_id"`
	Date         *Date     `json:"date"`
	Week         int       `json:"week"`
	ExpectedDate *Date     `json:"expected_date"`
}

func (r RecordArrearsRequest) command(actorID string) domain.RecordArrearsCommand {
	return domain.RecordArrearsCommand{
		ActorID:      actorID,
		LoanID:       r.LoanID,
		Date:         r.Date.value(),
		Week:         r.Week,
		ExpectedDate: r.ExpectedDate.ptr(),
	}
}

type UpdatePaymentRequest struct {
	Amount      decimal.Decimal      `json:"amount"`
	ExtraAmount decimal.Decimal      `json:"extra_amount"`
	Date        *Date                `json:"date"`
	Status      domain.PaymentStatus `json:"status"`
}

func (r UpdatePaymentRequest) command(actorID string, paymentID uuid.UUID) domain.UpdatePaymentCommand {
	return domain.UpdatePaymentCommand{
		ActorID:     actorID,
		PaymentID:   paymentID,
		Amount:      r.Amount,
		ExtraAmount: r.ExtraAmount,
		Date:        r.Date.value(),
		Status:      r.Status,
	}
}
