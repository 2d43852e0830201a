package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/installment-ledger/internal/cache"
	"github.com/segyhp/installment-ledger/internal/domain"
	customError "github.com/segyhp/installment-ledger/pkg/errors"
)

func TestGetReceipt(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	cmd := h.pay(1, "1000", dueDate(1))
	cmd.ExtraAmount = dec("250.5")
	registered, err := h.svc.RegisterPayment(ctx, cmd)
	require.NoError(t, err)

	receipt, err := h.svc.GetReceipt(ctx, actor, registered.Payment.ID)

	require.NoError(t, err)
	assert.Equal(t, "REC-"+registered.Payment.ID.String(), receipt.Number)
	assert.Equal(t, "08/01/2024", receipt.Date)
	assert.Equal(t, "Ana Ruiz", receipt.ClientName)
	assert.Equal(t, "Mercado Norte", receipt.RouteName)
	assert.Equal(t, "1,000.00", receipt.Amount)
	assert.Equal(t, "250.50", receipt.ExtraAmount)
	assert.Equal(t, "1,250.50", receipt.TotalReceived)
	assert.Equal(t, "13,000.00", receipt.TotalDue)
	assert.Equal(t, "11,749.50", receipt.Outstanding)
	assert.Equal(t, 1, receipt.Week)
	assert.Equal(t, string(domain.PaymentStatusOnTime), receipt.Status)
}

func TestGetReceipt_WrongActor(t *testing.T) {
	h := newHarness(t)
	registered, err := h.svc.RegisterPayment(context.Background(), h.pay(1, "1000", dueDate(1)))
	require.NoError(t, err)

	_, err = h.svc.GetReceipt(context.Background(), "agent-2", registered.Payment.ID)

	require.Error(t, err)
	assert.True(t, customError.Is(err, customError.ErrNotFound))
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"0", "0.00"},
		{"5.5", "5.50"},
		{"1234567.891", "1,234,567.89"},
		{"999.999", "1,000.00"},
		{"-1500.25", "-1,500.25"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatMoney(dec(tt.in)))
		})
	}
}

func TestGetLoanSummary_Cached(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	h.svc.cache = cache.NewLoanCache(rdb, time.Minute)

	summary, err := h.svc.GetLoanSummary(ctx, actor, h.loan.ID)
	require.NoError(t, err)
	assert.True(t, summary.Outstanding.Equal(dec("13000")))
	assert.True(t, s.Exists("loan:summary:"+h.loan.ID.String()))

	// cached entries are per actor
	_, err = h.svc.GetLoanSummary(ctx, "agent-2", h.loan.ID)
	require.Error(t, err)
	assert.True(t, customError.Is(err, customError.ErrNotFound))

	_, err = h.svc.RegisterPayment(ctx, h.pay(1, "1000", dueDate(1)))
	require.NoError(t, err)
	assert.False(t, s.Exists("loan:summary:"+h.loan.ID.String()))

	summary, err = h.svc.GetLoanSummary(ctx, actor, h.loan.ID)
	require.NoError(t, err)
	assert.True(t, summary.TotalPaid.Equal(dec("1000")))
	assert.Equal(t, 2, summary.CurrentWeek)
}

func TestGetLoanSummary_CacheDown(t *testing.T) {
	h := newHarness(t)
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	h.svc.cache = cache.NewLoanCache(rdb, time.Minute)
	s.Close()

	summary, err := h.svc.GetLoanSummary(context.Background(), actor, h.loan.ID)

	require.NoError(t, err)
	assert.Equal(t, h.loan.ID, summary.LoanID)
}

func TestGetRouteReceipts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	other, err := h.svc.CreateLoan(ctx, domain.CreateLoanCommand{ActorID: actor, ClientID: h.client.ID, Principal: dec("5000"), StartDate: start})
	require.NoError(t, err)

	elsewhere := &domain.Route{ID: uuid.New(), Name: "Mercado Sur", CollectionDay: "monday", UserID: actor, CreatedAt: start}
	require.NoError(t, h.repos.Routes.Create(ctx, elsewhere))
	farClient := &domain.Client{ID: uuid.New(), RouteID: elsewhere.ID, Name: "Luis Mora", Status: domain.ClientStatusActive, CreatedAt: start, UpdatedAt: start}
	require.NoError(t, h.repos.Clients.Create(ctx, farClient))
	farLoan, err := h.svc.CreateLoan(ctx, domain.CreateLoanCommand{ActorID: actor, ClientID: farClient.ID, Principal: dec("5000"), StartDate: start})
	require.NoError(t, err)

	_, err = h.svc.RegisterPayment(ctx, h.pay(1, "1000", dueDate(1)))
	require.NoError(t, err)
	_, err = h.svc.RegisterPayment(ctx, domain.RegisterPaymentCommand{ActorID: actor, LoanID: other.ID, Amount: dec("500"), Date: dueDate(1), Week: 1})
	require.NoError(t, err)
	_, err = h.svc.RecordArrears(ctx, domain.RecordArrearsCommand{ActorID: actor, LoanID: other.ID, Date: dueDate(1), Week: 2})
	require.NoError(t, err)
	_, err = h.svc.RegisterPayment(ctx, h.pay(2, "1000", dueDate(2)))
	require.NoError(t, err)
	_, err = h.svc.RegisterPayment(ctx, domain.RegisterPaymentCommand{ActorID: actor, LoanID: farLoan.ID, Amount: dec("500"), Date: dueDate(1), Week: 1})
	require.NoError(t, err)

	batch, err := h.svc.GetRouteReceipts(ctx, actor, h.route.ID, dueDate(1))

	require.NoError(t, err)
	assert.Equal(t, "Mercado Norte", batch.RouteName)
	assert.Equal(t, "08/01/2024", batch.Date)
	require.Equal(t, 2, batch.Count)
	require.Len(t, batch.Receipts, 2)
	assert.Equal(t, "1,500.00", batch.Total)
	for _, r := range batch.Receipts {
		assert.Equal(t, "Ana Ruiz", r.ClientName)
		assert.Equal(t, "08/01/2024", r.Date)
		assert.NotEqual(t, "0.00", r.TotalReceived)
	}
}

func TestGetRouteReceipts_DefaultsToToday(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.RegisterPayment(ctx, h.pay(1, "1000", start))
	require.NoError(t, err)

	batch, err := h.svc.GetRouteReceipts(ctx, actor, h.route.ID, time.Time{})

	require.NoError(t, err)
	assert.Equal(t, "01/01/2024", batch.Date)
	assert.Equal(t, 1, batch.Count)
	assert.Equal(t, "1,000.00", batch.Total)
}

func TestGetRouteReceipts_NotFound(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.svc.GetRouteReceipts(ctx, "agent-2", h.route.ID, dueDate(1))
	assert.True(t, customError.Is(err, customError.ErrRouteNotFound))

	_, err = h.svc.GetRouteReceipts(ctx, actor, uuid.New(), dueDate(1))
	assert.True(t, customError.Is(err, customError.ErrRouteNotFound))
}

func TestGetPayment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	registered, err := h.svc.RegisterPayment(ctx, h.pay(1, "1000", dueDate(1)))
	require.NoError(t, err)

	got, err := h.svc.GetPayment(ctx, actor, registered.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Week)
	assert.True(t, got.TotalReceived.Equal(dec("1000")))

	_, err = h.svc.GetPayment(ctx, "agent-2", registered.Payment.ID)
	assert.True(t, customError.Is(err, customError.ErrPaymentNotFound))
}
