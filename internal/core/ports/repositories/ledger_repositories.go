package repositories

import (
	"context"

	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
)

// LedgerReader defines read operations for donation ledger data
type LedgerReader interface {
	// FindDonationByID retrieves a donation by its unique identifier.
	FindDonationByID(ctx context.Context, donationID string) (*domain.Donation, error)

	// FindDonationBySessionID retrieves the donation recorded for a payment session.
	FindDonationBySessionID(ctx context.Context, sessionID string) (*domain.Donation, error)

	// ListDonationsByDonor retrieves a donor's donations, newest first, using token-based pagination.
	// It returns the donations, a token for the next page, and an error.
	ListDonationsByDonor(ctx context.Context, donorID string, limit int, nextToken *string) ([]domain.Donation, *string, error)
}

// AggregateReader defines read operations for the denormalized aggregates
type AggregateReader interface {
	FindSponsor(ctx context.Context, donorID string) (*domain.Sponsor, error)
	FindRecipientStats(ctx context.Context, recipientID string) (*domain.RecipientStats, error)
}

// AuditReader loads everything an audit needs in one consistent read.
type AuditReader interface {
	LoadLedgerSnapshot(ctx context.Context) (*domain.LedgerSnapshot, error)
}

// LedgerTx is the set of writes that must commit together. It is only reachable through
// TransactionManager.WithinTx.
type LedgerTx interface {
	// FindDonationBySessionID reads inside the transaction. Returns apperrors.ErrNotFound when absent.
	FindDonationBySessionID(ctx context.Context, sessionID string) (*domain.Donation, error)

	// InsertDonation writes a ledger entry. It returns apperrors.ErrDuplicateSession, and writes
	// nothing, when a donation for the same payment session already exists.
	InsertDonation(ctx context.Context, donation domain.Donation) error

	// LockSponsor returns the sponsor row locked for update. A donor with no row yet gets a
	// zero-valued sponsor (DonationCount == 0).
	LockSponsor(ctx context.Context, donorID string) (*domain.Sponsor, error)

	// SaveSponsor writes the sponsor aggregate.
	SaveSponsor(ctx context.Context, sponsor domain.Sponsor) error

	// LockRecipientStats behaves like LockSponsor for the receiving side.
	LockRecipientStats(ctx context.Context, recipientID string) (*domain.RecipientStats, error)

	// SaveRecipientStats writes the recipient aggregate.
	SaveRecipientStats(ctx context.Context, stats domain.RecipientStats) error

	// LockLedgerForRepair blocks concurrent aggregate writers until the transaction ends and then
	// reads the ledger and every stored aggregate.
	LockLedgerForRepair(ctx context.Context) (*domain.LedgerSnapshot, error)

	// ReplaceAggregates discards every stored aggregate and writes the given ones. Only valid
	// after LockLedgerForRepair in the same transaction.
	ReplaceAggregates(ctx context.Context, sponsors []domain.Sponsor, recipients []domain.RecipientStats) error
}

// LedgerRepositoryFacade combines all ledger-related read interfaces
type LedgerRepositoryFacade interface {
	LedgerReader
	AggregateReader
	AuditReader
}

// LedgerRepositoryWithTx extends LedgerRepositoryFacade with transaction capabilities
type LedgerRepositoryWithTx interface {
	LedgerRepositoryFacade
	TransactionManager
}
