package services

import (
	"context"
	"time"

	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
)

// PaymentGateway creates and resolves hosted checkout sessions.
type PaymentGateway interface {
	// CreateSession opens a checkout session for an intent that is ready to pay.
	// Fails with ErrGatewayUnavailable (retryable) or ErrInvalidAmount.
	CreateSession(ctx context.Context, intent domain.AwaitingPayment) (*domain.SessionHandle, error)

	// ResolveSession reads the session back. It is a pure read and may be called repeatedly.
	// Fails with ErrSessionNotFound or ErrSessionNotCompleted.
	ResolveSession(ctx context.Context, sessionID string) (*domain.ConfirmedPayment, error)
}

// PaymentWebhookVerifier authenticates completion notifications from the payment processor.
type PaymentWebhookVerifier interface {
	// VerifyCompletion checks the signature and returns the completed session id. ok is false for
	// authentic events that do not signal a completed payment.
	VerifyCompletion(payload []byte, signature string) (sessionID string, ok bool, err error)
}

// NotificationDispatcher delivers donation events to the notification subsystem.
type NotificationDispatcher interface {
	DonationConfirmed(ctx context.Context, event domain.DonationConfirmedEvent) error
}

// IdentitySvc wraps the external identity provider and issues application tokens.
type IdentitySvc interface {
	// GenerateStateString creates a secure random string to be used as a CSRF token for OAuth flow.
	GenerateStateString(ctx context.Context) (string, error)
	// GetLoginURL returns the provider URL to redirect the user to.
	GetLoginURL(ctx context.Context, state string) string
	// ResolveDonor exchanges an authorization code and returns the stable donor id.
	ResolveDonor(ctx context.Context, code string) (string, error)
	// IssueAccessToken creates an application JWT for the donor.
	IssueAccessToken(ctx context.Context, donorID string) (string, time.Time, error)
}

// ReportArchiver stores reconciliation reports outside the database.
type ReportArchiver interface {
	// Archive writes the report and returns where it was stored.
	Archive(ctx context.Context, report *domain.ReconciliationReport) (string, error)
}
