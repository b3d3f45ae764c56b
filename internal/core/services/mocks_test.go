package services_test

import (
	"context"

	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	"github.com/stretchr/testify/mock"
)

// --- Mock PaymentGateway ---
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateSession(ctx context.Context, intent domain.AwaitingPayment) (*domain.SessionHandle, error) {
	args := m.Called(ctx, intent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SessionHandle), args.Error(1)
}

func (m *MockPaymentGateway) ResolveSession(ctx context.Context, sessionID string) (*domain.ConfirmedPayment, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConfirmedPayment), args.Error(1)
}

var _ portssvc.PaymentGateway = (*MockPaymentGateway)(nil)

// --- Mock LedgerWriter ---
type MockLedgerWriter struct {
	mock.Mock
}

func (m *MockLedgerWriter) Record(ctx context.Context, payment domain.ConfirmedPayment, intent domain.AwaitingPayment) (*domain.Donation, bool, error) {
	args := m.Called(ctx, payment, intent)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Donation), args.Bool(1), args.Error(2)
}

func (m *MockLedgerWriter) ConfirmPayment(ctx context.Context, sessionID string) (*domain.Donation, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Donation), args.Error(1)
}

var _ portssvc.LedgerWriterSvc = (*MockLedgerWriter)(nil)

// --- Mock NotificationDispatcher ---
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) DonationConfirmed(ctx context.Context, event domain.DonationConfirmedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

var _ portssvc.NotificationDispatcher = (*MockNotifier)(nil)
