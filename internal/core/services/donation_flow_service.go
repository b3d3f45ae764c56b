package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	"github.com/SscSPs/academy_sponsorship/internal/dto"
)

// donationFlowService advances donation intents. It holds no per-donor state: the caller
// identity and the draft store arrive with every call.
type donationFlowService struct {
	BaseService
	gateway  portssvc.PaymentGateway
	ledger   portssvc.LedgerWriterSvc
	loginURL string
}

// NewDonationFlowService creates a new donation flow service. loginURL is where the browser is
// sent when the donor chooses to identify before paying.
func NewDonationFlowService(gateway portssvc.PaymentGateway, ledger portssvc.LedgerWriterSvc, loginURL string) portssvc.DonationFlowSvc {
	return &donationFlowService{
		gateway:  gateway,
		ledger:   ledger,
		loginURL: loginURL,
	}
}

var _ portssvc.DonationFlowSvc = (*donationFlowService)(nil)

func (s *donationFlowService) BeginDonation(ctx context.Context, flow domain.FlowContext, req dto.BeginDonationRequest) (*dto.FlowOutcome, error) {
	selecting, err := domain.NewIntent(domain.Offer{
		Amount:        req.Amount,
		Recurrence:    req.Recurrence,
		PackReference: req.PackReference,
	})
	if err != nil {
		return nil, err
	}
	if req.RecipientID == "" {
		return outcomeFor(selecting), nil
	}

	choosing, err := selecting.ChooseRecipient(req.RecipientID)
	if err != nil {
		return nil, err
	}

	switch req.IdentityChoice {
	case dto.IdentityAnonymous:
		s.discardStaleDraft(ctx, flow)
		return s.checkout(ctx, choosing.ProceedAnonymously())

	case dto.IdentityIdentified:
		if flow.Identified() {
			awaiting, err := choosing.ProceedIdentified(flow.DonorID)
			if err != nil {
				return nil, err
			}
			s.discardStaleDraft(ctx, flow)
			return s.checkout(ctx, awaiting)
		}
		// The identity redirect is next; this is the only point where a draft is written.
		if err := flow.Drafts.Save(choosing); err != nil {
			s.LogError(ctx, err, "Failed to save donation draft before identity redirect")
			return nil, fmt.Errorf("failed to save donation draft: %w", err)
		}
		s.LogInfo(ctx, "Donation draft saved, redirecting to identity provider",
			slog.String("recipient_id", choosing.RecipientID()))
		outcome := outcomeFor(choosing)
		outcome.RedirectURL = s.loginURL
		return outcome, nil
	}

	return outcomeFor(choosing), nil
}

func (s *donationFlowService) ResumeAfterIdentity(ctx context.Context, flow domain.FlowContext) (*dto.FlowOutcome, error) {
	intent, ok := flow.Drafts.Load()
	if !ok {
		s.LogDebug(ctx, "No readable donation draft, starting over")
		return &dto.FlowOutcome{Step: domain.StepSelectingRecipient}, nil
	}

	if !flow.Identified() {
		// The identity provider came back without an identity.
		s.LogWarn(ctx, "Resumed donation without an identity, discarding draft", slog.String("step", string(intent.Step())))
		if err := flow.Drafts.Clear(); err != nil {
			return nil, fmt.Errorf("failed to clear donation draft: %w", err)
		}
		return &dto.FlowOutcome{Step: domain.StepSelectingRecipient}, nil
	}

	switch it := intent.(type) {
	case domain.ChoosingIdentity:
		awaiting, err := it.ProceedIdentified(flow.DonorID)
		if err != nil {
			return nil, err
		}
		if err := flow.Drafts.Save(awaiting); err != nil {
			return nil, fmt.Errorf("failed to save donation draft: %w", err)
		}
		return s.checkout(ctx, awaiting)

	case domain.AwaitingPayment:
		if donorID := it.Identity().DonorID(); donorID != nil && *donorID != flow.DonorID {
			s.LogWarn(ctx, "Donation draft belongs to another donor, discarding it")
			if err := flow.Drafts.Clear(); err != nil {
				return nil, fmt.Errorf("failed to clear donation draft: %w", err)
			}
			return &dto.FlowOutcome{Step: domain.StepSelectingRecipient}, nil
		}
		return s.checkout(ctx, it)
	}

	return outcomeFor(intent), nil
}

func (s *donationFlowService) AbandonDonation(ctx context.Context, flow domain.FlowContext) (*dto.FlowOutcome, error) {
	if err := flow.Drafts.Clear(); err != nil {
		return nil, fmt.Errorf("failed to clear donation draft: %w", err)
	}
	s.LogInfo(ctx, "Donation abandoned")
	return &dto.FlowOutcome{Step: domain.StepAbandoned}, nil
}

// CompleteCheckout only reports a confirmed donation when the gateway says the session is paid.
// The draft survives any failure so the donor can retry.
func (s *donationFlowService) CompleteCheckout(ctx context.Context, flow domain.FlowContext, sessionID string) (*dto.FlowOutcome, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", apperrors.ErrValidation)
	}

	donation, err := s.ledger.ConfirmPayment(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrSessionNotCompleted) {
			s.LogError(ctx, err, "Failed to confirm checkout session", slog.String("session_id", sessionID))
		}
		return nil, err
	}

	if err := flow.Drafts.Clear(); err != nil {
		// The donation is recorded; a leftover draft only costs the donor a fresh start.
		s.LogWarn(ctx, "Failed to clear donation draft after confirmation", slog.String("error", err.Error()))
	}

	resp := dto.ToDonationResponse(donation)
	return &dto.FlowOutcome{
		Step:      domain.StepConfirmed,
		SessionID: sessionID,
		Donation:  &resp,
	}, nil
}

func (s *donationFlowService) checkout(ctx context.Context, intent domain.AwaitingPayment) (*dto.FlowOutcome, error) {
	handle, err := s.gateway.CreateSession(ctx, intent)
	if err != nil {
		s.LogError(ctx, err, "Failed to create checkout session", slog.String("recipient_id", intent.RecipientID()))
		return nil, err
	}
	s.LogInfo(ctx, "Checkout session created",
		slog.String("session_id", handle.SessionID),
		slog.String("recipient_id", intent.RecipientID()),
		slog.Bool("anonymous", intent.Identity().IsAnonymous()))

	outcome := outcomeFor(intent)
	outcome.RedirectURL = handle.RedirectURL
	outcome.SessionID = handle.SessionID
	return outcome, nil
}

// discardStaleDraft drops a draft left behind by an earlier, unfinished attempt.
func (s *donationFlowService) discardStaleDraft(ctx context.Context, flow domain.FlowContext) {
	if err := flow.Drafts.Clear(); err != nil {
		s.LogWarn(ctx, "Failed to clear stale donation draft", slog.String("error", err.Error()))
	}
}

func outcomeFor(intent domain.DonationIntent) *dto.FlowOutcome {
	snap := intent.Snapshot()
	return &dto.FlowOutcome{Step: intent.Step(), Intent: &snap}
}
