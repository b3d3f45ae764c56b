package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	portsrepo "github.com/SscSPs/academy_sponsorship/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	"github.com/SscSPs/academy_sponsorship/internal/dto"
	"github.com/google/uuid"
)

// ledgerService provides the donation ledger operations.
type ledgerService struct {
	BaseService
	ledgerRepo portsrepo.LedgerRepositoryWithTx
	aggregates portssvc.AggregateApplier
	gateway    portssvc.PaymentGateway
	notifier   portssvc.NotificationDispatcher
	currency   string
	now        func() time.Time
}

// LedgerServiceOption is a functional option for configuring the ledger service
type LedgerServiceOption func(*ledgerService)

// WithPaymentGateway sets the gateway used by ConfirmPayment.
func WithPaymentGateway(gateway portssvc.PaymentGateway) LedgerServiceOption {
	return func(s *ledgerService) {
		s.gateway = gateway
	}
}

// WithNotificationDispatcher sets where DonationConfirmed events go.
func WithNotificationDispatcher(notifier portssvc.NotificationDispatcher) LedgerServiceOption {
	return func(s *ledgerService) {
		s.notifier = notifier
	}
}

// WithDefaultCurrency sets the currency recorded when the gateway does not report one.
func WithDefaultCurrency(currency string) LedgerServiceOption {
	return func(s *ledgerService) {
		s.currency = currency
	}
}

// WithLedgerClock overrides the clock used for payments without a completion time.
func WithLedgerClock(now func() time.Time) LedgerServiceOption {
	return func(s *ledgerService) {
		s.now = now
	}
}

// NewLedgerService creates a new ledger service. aggregates is called inside every insert
// transaction.
func NewLedgerService(ledgerRepo portsrepo.LedgerRepositoryWithTx, aggregates portssvc.AggregateApplier, options ...LedgerServiceOption) portssvc.LedgerSvcFacade {
	svc := &ledgerService{
		ledgerRepo: ledgerRepo,
		aggregates: aggregates,
		currency:   "usd",
		now:        time.Now,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// Record writes exactly one ledger entry per payment session and applies it to the aggregates in
// the same transaction. Replays return the existing entry with inserted == false.
func (s *ledgerService) Record(ctx context.Context, payment domain.ConfirmedPayment, intent domain.AwaitingPayment) (*domain.Donation, bool, error) {
	logger := s.GetLogger(ctx).With(slog.String("session_id", payment.SessionID))

	if payment.SessionID == "" {
		return nil, false, fmt.Errorf("%w: payment session id is required", apperrors.ErrValidation)
	}
	if payment.Status != domain.PaymentPaid {
		return nil, false, fmt.Errorf("%w: session %s has status %s", apperrors.ErrSessionNotCompleted, payment.SessionID, payment.Status)
	}
	if !payment.Amount.IsPositive() {
		return nil, false, fmt.Errorf("%w: confirmed amount %s", apperrors.ErrInvalidAmount, payment.Amount.String())
	}

	donation := s.newDonation(payment, intent)

	var recorded *domain.Donation
	inserted := false
	err := s.ledgerRepo.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		existing, err := tx.FindDonationBySessionID(ctx, payment.SessionID)
		if err == nil {
			recorded = existing
			return nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("failed to look up session: %w", err)
		}

		if err := tx.InsertDonation(ctx, donation); err != nil {
			if !errors.Is(err, apperrors.ErrDuplicateSession) {
				return fmt.Errorf("failed to insert donation: %w", err)
			}
			// A concurrent delivery won the insert; report its entry.
			existing, err := tx.FindDonationBySessionID(ctx, payment.SessionID)
			if err != nil {
				return fmt.Errorf("failed to re-read donation after lost insert race: %w", err)
			}
			recorded = existing
			return nil
		}

		if err := s.aggregates.ApplyDonation(ctx, tx, donation); err != nil {
			return fmt.Errorf("failed to apply donation to aggregates: %w", err)
		}
		recorded = &donation
		inserted = true
		return nil
	})
	if err != nil {
		logger.Error("Failed to record donation", slog.String("error", err.Error()))
		return nil, false, err
	}

	if !inserted {
		logger.Info("Payment session already recorded", slog.String("donation_id", recorded.DonationID))
		return recorded, false, nil
	}

	logger.Info("Donation recorded",
		slog.String("donation_id", recorded.DonationID),
		slog.String("recipient_id", recorded.RecipientID),
		slog.String("amount", recorded.Amount.String()))
	s.notify(ctx, *recorded)
	return recorded, true, nil
}

// ConfirmPayment is the only path from a completion signal to the ledger. Sessions that are
// already recorded are answered from the ledger without calling the gateway.
func (s *ledgerService) ConfirmPayment(ctx context.Context, sessionID string) (*domain.Donation, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", apperrors.ErrValidation)
	}

	existing, err := s.ledgerRepo.FindDonationBySessionID(ctx, sessionID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up session %s: %w", sessionID, err)
	}

	if s.gateway == nil {
		return nil, fmt.Errorf("%w: no payment gateway configured", apperrors.ErrGatewayUnavailable)
	}
	payment, err := s.gateway.ResolveSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	intent, err := domain.RestoreIntent(payment.Intent)
	if err != nil {
		s.LogError(ctx, err, "Payment session carries an unreadable intent", slog.String("session_id", sessionID))
		return nil, fmt.Errorf("%w: session %s metadata: %v", apperrors.ErrValidation, sessionID, err)
	}
	awaiting, ok := intent.(domain.AwaitingPayment)
	if !ok {
		return nil, fmt.Errorf("%w: session %s was created from step %s", apperrors.ErrInvalidTransition, sessionID, intent.Step())
	}

	donation, _, err := s.Record(ctx, *payment, awaiting)
	return donation, err
}

func (s *ledgerService) GetDonationByID(ctx context.Context, donationID string) (*domain.Donation, error) {
	return s.ledgerRepo.FindDonationByID(ctx, donationID)
}

func (s *ledgerService) GetDonationBySession(ctx context.Context, sessionID string) (*domain.Donation, error) {
	return s.ledgerRepo.FindDonationBySessionID(ctx, sessionID)
}

// ListDonorDonations retrieves one page of a donor's donations.
func (s *ledgerService) ListDonorDonations(ctx context.Context, donorID string, params dto.ListDonationsParams) (*dto.ListDonationsResponse, error) {
	donations, nextToken, err := s.ledgerRepo.ListDonationsByDonor(ctx, donorID, params.Limit, params.NextToken)
	if err != nil {
		return nil, err
	}
	return &dto.ListDonationsResponse{
		Donations: dto.ToListDonationResponse(donations),
		NextToken: nextToken,
	}, nil
}

func (s *ledgerService) GetSponsor(ctx context.Context, donorID string) (*domain.Sponsor, error) {
	return s.ledgerRepo.FindSponsor(ctx, donorID)
}

func (s *ledgerService) GetRecipientStats(ctx context.Context, recipientID string) (*domain.RecipientStats, error) {
	return s.ledgerRepo.FindRecipientStats(ctx, recipientID)
}

func (s *ledgerService) newDonation(payment domain.ConfirmedPayment, intent domain.AwaitingPayment) domain.Donation {
	offer := intent.Offer()
	identity := intent.Identity()

	currency := payment.Currency
	if currency == "" {
		currency = s.currency
	}
	completedAt := payment.CompletedAt
	if completedAt.IsZero() {
		completedAt = s.now()
	}

	return domain.Donation{
		DonationID:           uuid.NewString(),
		Amount:               payment.Amount,
		Currency:             currency,
		RecurrenceType:       offer.Recurrence,
		RecipientID:          intent.RecipientID(),
		DonorID:              identity.DonorID(),
		IsAnonymous:          identity.IsAnonymous(),
		PackReference:        offer.PackReference,
		PaymentSessionID:     payment.SessionID,
		PaymentTransactionID: payment.PaymentTransactionID,
		// Postgres keeps microseconds; truncating here keeps audits exact.
		CompletedAt: completedAt.UTC().Truncate(time.Microsecond),
	}
}

// notify emits at most one event per inserted donation. The ledger is already committed, so a
// delivery failure is logged and not returned.
func (s *ledgerService) notify(ctx context.Context, d domain.Donation) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.DonationConfirmed(ctx, domain.NewDonationConfirmedEvent(d)); err != nil {
		s.LogError(ctx, err, "Failed to dispatch donation confirmed notification", slog.String("donation_id", d.DonationID))
	}
}
