package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/installment-ledger/internal/domain"
	"github.com/segyhp/installment-ledger/internal/repository"
	"github.com/segyhp/installment-ledger/internal/repository/gormstore"
	"github.com/segyhp/installment-ledger/internal/testutil/uowmock"
	customError "github.com/segyhp/installment-ledger/pkg/errors"
)

func TestRegisterPayment_Classification(t *testing.T) {
	tests := []struct {
		name               string
		amount             string
		dayOffset          int
		expectedStatus     domain.PaymentStatus
		expectedLoanStatus domain.LoanStatus
		expectedClient     domain.ClientStatus
	}{
		{name: "on time", amount: "1000", expectedStatus: domain.PaymentStatusOnTime, expectedLoanStatus: domain.LoanStatusActive, expectedClient: domain.ClientStatusActive},
		{name: "late", amount: "1000", dayOffset: 2, expectedStatus: domain.PaymentStatusLate, expectedLoanStatus: domain.LoanStatusDelinquent, expectedClient: domain.ClientStatusDelinquent},
		{name: "partial", amount: "600", expectedStatus: domain.PaymentStatusPartial, expectedLoanStatus: domain.LoanStatusPartiallyPaid, expectedClient: domain.ClientStatusActive},
		{name: "late and partial", amount: "600", dayOffset: 1, expectedStatus: domain.PaymentStatusLateAndPartial, expectedLoanStatus: domain.LoanStatusDelinquent, expectedClient: domain.ClientStatusDelinquent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			result, err := h.svc.RegisterPayment(context.Background(), h.pay(1, tt.amount, dueDate(1).AddDate(0, 0, tt.dayOffset)))

			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, result.Payment.Status)
			assert.False(t, result.Settled)

			loan := h.reload(t)
			assert.Equal(t, 2, loan.CurrentWeek)
			assert.True(t, loan.TotalPaid.Equal(dec(tt.amount)))
			assert.Equal(t, tt.expectedLoanStatus, loan.Status)
			assert.Equal(t, tt.expectedClient, h.reloadClient(t).Status)
		})
	}
}

func TestRegisterPayment_Counters(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.RegisterPayment(ctx, h.pay(1, "1000", dueDate(1)))
	require.NoError(t, err)
	_, err = h.svc.RegisterPayment(ctx, h.pay(2, "400", dueDate(2).AddDate(0, 0, 1)))
	require.NoError(t, err)

	loan := h.reload(t)
	assert.Equal(t, 1, loan.PaymentsOnTime)
	assert.Equal(t, 1, loan.PaymentsLate)
	assert.Equal(t, 1, loan.PaymentsPartial)
}

func TestRegisterPayment_ExtraAmount(t *testing.T) {
	h := newHarness(t)
	cmd := h.pay(1, "1000", dueDate(1))
	cmd.ExtraAmount = dec("250")

	result, err := h.svc.RegisterPayment(context.Background(), cmd)

	require.NoError(t, err)
	assert.True(t, result.Payment.TotalReceived.Equal(dec("1250")))
	loan := h.reload(t)
	assert.True(t, loan.TotalPaid.Equal(dec("1250")))
	assert.True(t, loan.ExtraPaid.Equal(dec("250")))
}

func TestRegisterPayment_ClearsArrears(t *testing.T) {
	h := newHarness(t)
	loan := h.moveTo(t, 5, "2000")
	loan.RecordMiss(loan.Installment)
	loan.RecordMiss(loan.Installment)
	require.NoError(t, h.repos.Loans.Update(context.Background(), loan))

	cmd := h.pay(5, "2500", dueDate(5))
	cmd.ApplyToArrears = true
	result, err := h.svc.RegisterPayment(context.Background(), cmd)

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusOutOfTimeAndPartial, result.Payment.Status)
	assert.Equal(t, 2, result.ArrearsCleared)
	assert.Equal(t, 0, result.ArrearsRemaining)
	assert.True(t, result.Payment.AppliedAmount.Equal(dec("500")))

	stored := h.reload(t)
	assert.Equal(t, 0, stored.UnpaidArrearsCount)
	assert.True(t, stored.UnpaidArrearsAmount.IsZero())
	assert.True(t, stored.TotalPaid.Equal(dec("4500")))
}

func TestRegisterPayment_ArrearsNotApplied(t *testing.T) {
	h := newHarness(t)
	loan := h.moveTo(t, 5, "3000")
	loan.RecordMiss(loan.Installment)
	require.NoError(t, h.repos.Loans.Update(context.Background(), loan))

	result, err := h.svc.RegisterPayment(context.Background(), h.pay(5, "1000", dueDate(5)))

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusOnTime, result.Payment.Status)
	assert.Equal(t, 1, result.ArrearsRemaining)
	assert.Equal(t, domain.LoanStatusDelinquent, h.reload(t).Status)
}

func TestRegisterPayment_DuplicateWeek(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	first, err := h.svc.RegisterPayment(ctx, h.pay(1, "1000", dueDate(1)))
	require.NoError(t, err)

	_, err = h.svc.RegisterPayment(ctx, h.pay(1, "1000", dueDate(1)))

	require.Error(t, err)
	assert.True(t, customError.Is(err, customError.ErrConflict))
	var be *customError.BusinessError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, customError.ErrCodeDuplicateWeek, be.Code)
	existing, ok := be.Details.(*domain.Payment)
	require.True(t, ok)
	assert.Equal(t, first.Payment.ID, existing.ID)

	loan := h.reload(t)
	assert.True(t, loan.TotalPaid.Equal(dec("1000")))
	assert.Equal(t, 2, loan.CurrentWeek)
}

func TestRegisterPayment_DuplicateOfPlaceholder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.RecordArrears(ctx, domain.RecordArrearsCommand{ActorID: actor, LoanID: h.loan.ID, Date: dueDate(1), Week: 1})
	require.NoError(t, err)

	_, err = h.svc.RegisterPayment(ctx, h.pay(1, "1000", dueDate(1)))

	require.Error(t, err)
	assert.True(t, customError.Is(err, customError.ErrConflict))
	assert.Contains(t, err.Error(), "update the arrears record")
}

func TestRegisterPayment_Rejects(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		cmd  domain.RegisterPaymentCommand
		kind error
	}{
		{name: "week past term", cmd: h.pay(14, "1000", dueDate(1)), kind: customError.ErrValidation},
		{name: "zero amount", cmd: h.pay(1, "0", dueDate(1)), kind: customError.ErrValidation},
		{name: "no week", cmd: h.pay(0, "1000", dueDate(1)), kind: customError.ErrValidation},
		{name: "other actor", cmd: func() domain.RegisterPaymentCommand {
			c := h.pay(1, "1000", dueDate(1))
			c.ActorID = "agent-2"
			return c
		}(), kind: customError.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.RegisterPayment(context.Background(), tt.cmd)

			require.Error(t, err)
			assert.True(t, customError.Is(err, tt.kind), "got %v", err)
		})
	}

	assert.True(t, h.reload(t).TotalPaid.IsZero())
}

func TestRegisterPayment_SettlesAtLastWeek(t *testing.T) {
	h := newHarness(t)
	h.moveTo(t, 13, "12000")

	result, err := h.svc.RegisterPayment(context.Background(), h.pay(13, "1000", dueDate(13)))

	require.NoError(t, err)
	assert.True(t, result.Settled)
	require.Len(t, result.Payments, 1)
	assert.Equal(t, domain.PaymentStatusOnTime, result.Payment.Status)
	assert.True(t, result.Payment.Amount.Equal(dec("1000")))
	assert.False(t, result.Payment.IsPartOfAutoSettlement)

	loan := h.reload(t)
	assert.Equal(t, domain.LoanStatusPaid, loan.Status)
	assert.True(t, loan.TotalPaid.Equal(dec("13000")))
}

func TestRegisterPayment_Overpayment(t *testing.T) {
	h := newHarness(t)
	h.moveTo(t, 13, "12000")

	result, err := h.svc.RegisterPayment(context.Background(), h.pay(13, "1500", dueDate(13)))

	require.NoError(t, err)
	assert.True(t, result.Settled)
	loan := h.reload(t)
	assert.True(t, loan.TotalPaid.Equal(dec("13500")))
	assert.True(t, loan.OutstandingBalance().IsZero())
}

func TestRegisterPayment_FullSettlementShortfall(t *testing.T) {
	h := newHarness(t)
	h.moveTo(t, 13, "11000")
	cmd := h.pay(13, "1000", dueDate(13))
	cmd.IsFullSettlement = true

	_, err := h.svc.RegisterPayment(context.Background(), cmd)

	require.Error(t, err)
	assert.True(t, customError.Is(err, customError.ErrValidation))
	payments, err := h.repos.Payments.GetByLoanID(context.Background(), h.loan.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

// payWeeks registers on-time installments for weeks 1..n.
func payWeeks(t *testing.T, h *harness, n int) {
	t.Helper()
	for week := 1; week <= n; week++ {
		_, err := h.svc.RegisterPayment(context.Background(), h.pay(week, "1000", dueDate(week)))
		require.NoError(t, err)
	}
}

func TestRegisterPayment_FullSettlementFillsSchedule(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	payWeeks(t, h, 2)

	cmd := h.pay(3, "1000", dueDate(3))
	cmd.IsFullSettlement = true
	result, err := h.svc.RegisterPayment(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, result.Settled)
	require.Len(t, result.Payments, 13-3+1)
	for i, p := range result.Payments {
		assert.Equal(t, 3+i, p.Week)
		assert.True(t, p.IsPartOfAutoSettlement)
		assert.True(t, p.Amount.Equal(dec("1000")), "week %d amount %s", p.Week, p.Amount)
	}
	assert.Equal(t, dueDate(13), result.Payments[len(result.Payments)-1].Date)

	payments, err := h.repos.Payments.GetByLoanID(ctx, h.loan.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 13)

	loan := h.reload(t)
	assert.Equal(t, domain.LoanStatusPaid, loan.Status)
	assert.True(t, domain.SumReceived(payments).Equal(loan.TotalPaid))
	assert.True(t, loan.TotalPaid.Equal(dec("13000")))
	assert.Equal(t, 13, loan.PaymentsOnTime)
}

func TestRegisterPayment_SettlementRemainder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	payWeeks(t, h, 2)

	cmd := h.pay(3, "999.97", dueDate(3))
	cmd.IsFullSettlement = true
	result, err := h.svc.RegisterPayment(ctx, cmd)

	require.NoError(t, err)
	last := result.Payments[len(result.Payments)-1]
	assert.Equal(t, 13, last.Week)
	assert.True(t, last.Amount.Equal(dec("1000.03")), "last amount %s", last.Amount)
	assert.True(t, result.Payments[1].Amount.Equal(dec("1000")))

	payments, err := h.repos.Payments.GetByLoanID(ctx, h.loan.ID)
	require.NoError(t, err)
	assert.True(t, domain.SumReceived(payments).Equal(dec("13000")))
}

func TestRegisterPayment_SettlementFillsSkippedWeeks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.moveTo(t, 3, "2000")

	cmd := h.pay(5, "1000", dueDate(5))
	cmd.IsFullSettlement = true
	result, err := h.svc.RegisterPayment(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, result.Settled)
	require.Len(t, result.Payments, 13-3+1)
	assert.Equal(t, 5, result.Payment.Week)

	payments, err := h.repos.Payments.GetByLoanID(ctx, h.loan.ID)
	require.NoError(t, err)
	byWeek := domain.WeekSet(payments)
	for week := 3; week <= 13; week++ {
		assert.Contains(t, byWeek, week)
	}
	assert.True(t, domain.SumReceived(payments).Equal(dec("11000")))

	loan := h.reload(t)
	assert.Equal(t, domain.LoanStatusPaid, loan.Status)
	assert.True(t, loan.TotalPaid.Equal(dec("13000")))
}

func TestRegisterPayment_PastTermCatchUp(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for week := 1; week <= 13; week++ {
		_, err := h.svc.RegisterPayment(ctx, h.pay(week, "900", dueDate(week)))
		require.NoError(t, err)
	}

	loan := h.reload(t)
	require.Equal(t, 14, loan.CurrentWeek)
	require.Equal(t, domain.LoanStatusPartiallyPaid, loan.Status)
	require.True(t, loan.TotalPaid.Equal(dec("11700")))

	_, err := h.svc.RegisterPayment(ctx, h.pay(15, "1300", dueDate(15)))
	assert.True(t, customError.Is(err, customError.ErrValidation), "only the current week is open past the term")

	result, err := h.svc.RegisterPayment(ctx, h.pay(14, "800", dueDate(14)))
	require.NoError(t, err)
	assert.False(t, result.Settled)
	assert.Equal(t, domain.LoanStatusPartiallyPaid, h.reload(t).Status)

	_, err = h.svc.RegisterPayment(ctx, h.pay(15, "500", dueDate(15)))
	require.NoError(t, err)

	loan = h.reload(t)
	assert.Equal(t, domain.LoanStatusPaid, loan.Status)
	assert.True(t, loan.TotalPaid.Equal(dec("13000")))
	assert.True(t, loan.OutstandingBalance().IsZero())

	_, err = h.svc.RegisterPayment(ctx, h.pay(16, "100", dueDate(16)))
	assert.True(t, customError.Is(err, customError.ErrValidation), "a paid loan takes no payment past the term")
}

func TestRegisterPayment_SettlementClearsClient(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.RecordArrears(ctx, domain.RecordArrearsCommand{ActorID: actor, LoanID: h.loan.ID, Date: dueDate(1), Week: 1})
	require.NoError(t, err)
	require.Equal(t, domain.ClientStatusDelinquent, h.reloadClient(t).Status)

	cmd := h.pay(2, "13000", dueDate(2))
	result, err := h.svc.RegisterPayment(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, result.Settled)
	loan := h.reload(t)
	assert.Equal(t, domain.LoanStatusPaid, loan.Status)
	assert.False(t, loan.HasArrears())
	assert.Equal(t, domain.ClientStatusActive, h.reloadClient(t).Status)
}

func TestRegisterPayment_ClientStaysDelinquentWithOtherLoan(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	other, err := h.svc.CreateLoan(ctx, domain.CreateLoanCommand{ActorID: actor, ClientID: h.client.ID, Principal: dec("5000"), StartDate: start})
	require.NoError(t, err)
	_, err = h.svc.RecordArrears(ctx, domain.RecordArrearsCommand{ActorID: actor, LoanID: other.ID, Date: dueDate(1), Week: 1})
	require.NoError(t, err)
	_, err = h.svc.RecordArrears(ctx, domain.RecordArrearsCommand{ActorID: actor, LoanID: h.loan.ID, Date: dueDate(1), Week: 1})
	require.NoError(t, err)

	_, err = h.svc.RegisterPayment(ctx, h.pay(2, "13000", dueDate(2)))

	require.NoError(t, err)
	assert.Equal(t, domain.ClientStatusDelinquent, h.reloadClient(t).Status)
}

// failingPayments fails the nth Create inside a transaction.
type failingPayments struct {
	repository.PaymentRepository
	failOn int
	calls  int
}

func (f *failingPayments) Create(ctx context.Context, p *domain.Payment) error {
	f.calls++
	if f.calls == f.failOn {
		return errors.New("disk full")
	}
	return f.PaymentRepository.Create(ctx, p)
}

func TestRegisterPayment_SettlementRollsBack(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	payWeeks(t, h, 2)

	h.svc.uow = uowmock.Wrap(gormstore.NewGormUoW(h.db), func(r repository.Repos) repository.Repos {
		r.Payments = &failingPayments{PaymentRepository: r.Payments, failOn: 5}
		return r
	})

	cmd := h.pay(3, "1000", dueDate(3))
	cmd.IsFullSettlement = true
	_, err := h.svc.RegisterPayment(ctx, cmd)

	require.Error(t, err)
	assert.True(t, customError.Is(err, customError.ErrDatabase))

	payments, err := h.repos.Payments.GetByLoanID(ctx, h.loan.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
	loan := h.reload(t)
	assert.Equal(t, 3, loan.CurrentWeek)
	assert.True(t, loan.TotalPaid.Equal(dec("2000")))
	assert.Equal(t, domain.LoanStatusActive, loan.Status)
}
