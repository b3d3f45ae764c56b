package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	portsrepo "github.com/SscSPs/academy_sponsorship/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	"github.com/SscSPs/academy_sponsorship/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) Record(ctx context.Context, payment domain.ConfirmedPayment, intent domain.AwaitingPayment) (*domain.Donation, bool, error) {
	args := m.Called(ctx, payment, intent)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Donation), args.Bool(1), args.Error(2)
}

func (m *MockLedgerService) ConfirmPayment(ctx context.Context, sessionID string) (*domain.Donation, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Donation), args.Error(1)
}

func (m *MockLedgerService) GetDonationByID(ctx context.Context, donationID string) (*domain.Donation, error) {
	args := m.Called(ctx, donationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Donation), args.Error(1)
}

func (m *MockLedgerService) GetDonationBySession(ctx context.Context, sessionID string) (*domain.Donation, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Donation), args.Error(1)
}

func (m *MockLedgerService) ListDonorDonations(ctx context.Context, donorID string, params dto.ListDonationsParams) (*dto.ListDonationsResponse, error) {
	args := m.Called(ctx, donorID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListDonationsResponse), args.Error(1)
}

func (m *MockLedgerService) GetSponsor(ctx context.Context, donorID string) (*domain.Sponsor, error) {
	args := m.Called(ctx, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sponsor), args.Error(1)
}

func (m *MockLedgerService) GetRecipientStats(ctx context.Context, recipientID string) (*domain.RecipientStats, error) {
	args := m.Called(ctx, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecipientStats), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock ReconciliationService ---
type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) ApplyDonation(ctx context.Context, tx portsrepo.LedgerTx, donation domain.Donation) error {
	args := m.Called(ctx, tx, donation)
	return args.Error(0)
}

func (m *MockReconciliationService) Audit(ctx context.Context) (*domain.ReconciliationReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationReport), args.Error(1)
}

func (m *MockReconciliationService) Repair(ctx context.Context) (*domain.RepairResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RepairResult), args.Error(1)
}

var _ portssvc.ReconciliationSvc = (*MockReconciliationService)(nil)

// --- Mock IdentityService ---
type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) GenerateStateString(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityService) GetLoginURL(ctx context.Context, state string) string {
	args := m.Called(ctx, state)
	return args.String(0)
}

func (m *MockIdentityService) ResolveDonor(ctx context.Context, code string) (string, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityService) IssueAccessToken(ctx context.Context, donorID string) (string, time.Time, error) {
	args := m.Called(ctx, donorID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

var _ portssvc.IdentitySvc = (*MockIdentityService)(nil)

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

// --- Mock PaymentWebhookVerifier ---
type MockWebhookVerifier struct {
	mock.Mock
}

func (m *MockWebhookVerifier) VerifyCompletion(payload []byte, signature string) (string, bool, error) {
	args := m.Called(payload, signature)
	return args.String(0), args.Bool(1), args.Error(2)
}

var _ portssvc.PaymentWebhookVerifier = (*MockWebhookVerifier)(nil)
