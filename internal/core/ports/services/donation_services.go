package services

import (
	"context"

	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	"github.com/SscSPs/academy_sponsorship/internal/core/ports/repositories"
	"github.com/SscSPs/academy_sponsorship/internal/dto"
)

// DonationFlowSvc walks a donor from recipient selection to a checkout session. Every call
// receives the caller identity and the draft store explicitly.
type DonationFlowSvc interface {
	// BeginDonation builds a new intent and advances it as far as the caller's identity allows.
	BeginDonation(ctx context.Context, flow domain.FlowContext, req dto.BeginDonationRequest) (*dto.FlowOutcome, error)

	// ResumeAfterIdentity continues a donation after the identity provider redirected back.
	ResumeAfterIdentity(ctx context.Context, flow domain.FlowContext) (*dto.FlowOutcome, error)

	// AbandonDonation discards the draft. Gateway sessions already created are left alone.
	AbandonDonation(ctx context.Context, flow domain.FlowContext) (*dto.FlowOutcome, error)

	// CompleteCheckout confirms a session after the success redirect and clears the draft.
	CompleteCheckout(ctx context.Context, flow domain.FlowContext, sessionID string) (*dto.FlowOutcome, error)
}

// LedgerWriterSvc defines the only path from a completed payment to the ledger
type LedgerWriterSvc interface {
	// Record writes the donation for a confirmed payment and applies it to the aggregates in the
	// same transaction. The boolean is true only when a new ledger entry was inserted.
	Record(ctx context.Context, payment domain.ConfirmedPayment, intent domain.AwaitingPayment) (*domain.Donation, bool, error)

	// ConfirmPayment resolves the session with the gateway and records it.
	ConfirmPayment(ctx context.Context, sessionID string) (*domain.Donation, error)
}

// LedgerReaderSvc defines read operations for donations and aggregates
type LedgerReaderSvc interface {
	GetDonationByID(ctx context.Context, donationID string) (*domain.Donation, error)
	GetDonationBySession(ctx context.Context, sessionID string) (*domain.Donation, error)

	// ListDonorDonations retrieves a donor's donations, newest first, with token-based pagination.
	ListDonorDonations(ctx context.Context, donorID string, params dto.ListDonationsParams) (*dto.ListDonationsResponse, error)

	GetSponsor(ctx context.Context, donorID string) (*domain.Sponsor, error)
	GetRecipientStats(ctx context.Context, recipientID string) (*domain.RecipientStats, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
type LedgerSvcFacade interface {
	LedgerWriterSvc
	LedgerReaderSvc
}

// AggregateApplier updates the aggregates for one new ledger entry inside the caller's
// transaction.
type AggregateApplier interface {
	ApplyDonation(ctx context.Context, tx repositories.LedgerTx, donation domain.Donation) error
}

// ReconciliationSvc keeps the aggregates honest against the ledger
type ReconciliationSvc interface {
	AggregateApplier

	// Audit recomputes every aggregate from a consistent ledger snapshot and reports drift.
	// It never writes.
	Audit(ctx context.Context) (*domain.ReconciliationReport, error)

	// Repair overwrites drifted aggregates with recomputed values. Only run on request.
	Repair(ctx context.Context) (*domain.RepairResult, error)
}
