package ledgermock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/installment-ledger/internal/domain"
	"github.com/segyhp/installment-ledger/internal/service"
)

var _ service.Ledger = (*MockLedger)(nil)

type MockLedger struct {
	mock.Mock
}

// NewMockLedger creates a new mock ledger instance
func NewMockLedger() *MockLedger {
	return &MockLedger{}
}

func (m *MockLedger) CreateLoan(ctx context.Context, cmd domain.CreateLoanCommand) (*domain.Loan, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLedger) GetLoan(ctx context.Context, actorID string, loanID uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, actorID, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLedger) GetLoanSummary(ctx context.Context, actorID string, loanID uuid.UUID) (*domain.LoanSummary, error) {
	args := m.Called(ctx, actorID, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanSummary), args.Error(1)
}

func (m *MockLedger) GetSchedule(ctx context.Context, actorID string, loanID uuid.UUID) (*domain.ScheduleResponse, error) {
	args := m.Called(ctx, actorID, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleResponse), args.Error(1)
}

func (m *MockLedger) ListPayments(ctx context.Context, actorID string, loanID uuid.UUID) ([]*domain.Payment, error) {
	args := m.Called(ctx, actorID, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Payment), args.Error(1)
}

func (m *MockLedger) DeleteLoan(ctx context.Context, actorID string, loanID uuid.UUID) error {
	args := m.Called(ctx, actorID, loanID)
	return args.Error(0)
}

func (m *MockLedger) RegisterPayment(ctx context.Context, cmd domain.RegisterPaymentCommand) (*service.RegistrationResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RegistrationResult), args.Error(1)
}

func (m *MockLedger) RecordArrears(ctx context.Context, cmd domain.RecordArrearsCommand) (*service.ArrearsResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ArrearsResult), args.Error(1)
}

func (m *MockLedger) UpdatePayment(ctx context.Context, cmd domain.UpdatePaymentCommand) (*service.CorrectionResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CorrectionResult), args.Error(1)
}

func (m *MockLedger) ReversePayment(ctx context.Context, cmd domain.ReversePaymentCommand) (*service.ReversalResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReversalResult), args.Error(1)
}

func (m *MockLedger) GetReceipt(ctx context.Context, actorID string, paymentID uuid.UUID) (*service.Receipt, error) {
	args := m.Called(ctx, actorID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Receipt), args.Error(1)
}

func (m *MockLedger) SweepOverdue(ctx context.Context) ([]*service.OverdueLoan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.OverdueLoan), args.Error(1)
}

func (m *MockLedger) GetPayment(ctx context.Context, actorID string, paymentID uuid.UUID) (*domain.Payment, error) {
	args := m.Called(ctx, actorID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockLedger) GetRouteReceipts(ctx context.Context, actorID string, routeID uuid.UUID, day time.Time) (*service.RouteReceipts, error) {
	args := m.Called(ctx, actorID, routeID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RouteReceipts), args.Error(1)
}
