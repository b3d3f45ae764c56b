package repositories

import (
	"context"
)

// TransactionManager runs a unit of work inside one database transaction.
type TransactionManager interface {
	// WithinTx begins a transaction, runs fn and commits. Any error from fn, or a panic, rolls
	// the whole unit back. A commit failure is reported as apperrors.ErrPartialWriteRisk.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}

// RepositoryWithTx is a marker interface for repositories that support transactions
type RepositoryWithTx interface {
	TransactionManager
}
