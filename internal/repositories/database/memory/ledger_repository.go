// Package memory holds an in-process ledger store with the same transactional contract as the
// Postgres repository. Transactions are serialized and applied copy-on-write.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	portsrepo "github.com/SscSPs/academy_sponsorship/internal/core/ports/repositories"
	"github.com/SscSPs/academy_sponsorship/internal/utils/pagination"
)

type state struct {
	donations  []domain.Donation
	bySession  map[string]int
	sponsors   map[string]domain.Sponsor
	recipients map[string]domain.RecipientStats
}

func newState() *state {
	return &state{
		bySession:  make(map[string]int),
		sponsors:   make(map[string]domain.Sponsor),
		recipients: make(map[string]domain.RecipientStats),
	}
}

func (s *state) clone() *state {
	c := &state{
		donations:  slices.Clone(s.donations),
		bySession:  make(map[string]int, len(s.bySession)),
		sponsors:   make(map[string]domain.Sponsor, len(s.sponsors)),
		recipients: make(map[string]domain.RecipientStats, len(s.recipients)),
	}
	for k, v := range s.bySession {
		c.bySession[k] = v
	}
	for k, v := range s.sponsors {
		v.SponsoredRecipientIDs = slices.Clone(v.SponsoredRecipientIDs)
		c.sponsors[k] = v
	}
	for k, v := range s.recipients {
		c.recipients[k] = v
	}
	return c
}

// LedgerRepository is a goroutine-safe in-memory implementation of
// portsrepo.LedgerRepositoryWithTx.
type LedgerRepository struct {
	txMu sync.Mutex // serializes transactions
	mu   sync.RWMutex
	st   *state

	commitErr   error
	snapshotErr error
}

// NewLedgerRepository creates an empty store.
func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{st: newState()}
}

var _ portsrepo.LedgerRepositoryWithTx = (*LedgerRepository)(nil)

// FailNextCommit makes the next transaction fail at commit time, leaving the store unchanged.
func (r *LedgerRepository) FailNextCommit(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commitErr = err
}

// FailSnapshots makes LoadLedgerSnapshot fail until called again with nil.
func (r *LedgerRepository) FailSnapshots(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshotErr = err
}

// OverwriteSponsor replaces a stored sponsor aggregate outside any transaction. Operators use
// the equivalent SQL to simulate drift; tests use this.
func (r *LedgerRepository) OverwriteSponsor(s domain.Sponsor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.sponsors[s.DonorID] = s
}

// OverwriteRecipientStats replaces a stored recipient aggregate outside any transaction.
func (r *LedgerRepository) OverwriteRecipientStats(rs domain.RecipientStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.st.recipients[rs.RecipientID] = rs
}

// WithinTx runs fn against a private copy of the store and publishes it only if fn succeeds.
func (r *LedgerRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.RLock()
	working := r.st.clone()
	r.mu.RUnlock()

	if err := fn(ctx, &memoryTx{st: working}); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.commitErr != nil {
		err := r.commitErr
		r.commitErr = nil
		return fmt.Errorf("%w: %v", apperrors.ErrPartialWriteRisk, err)
	}
	r.st = working
	return nil
}

func (r *LedgerRepository) FindDonationByID(ctx context.Context, donationID string) (*domain.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.st.donations {
		if d.DonationID == donationID {
			return &d, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *LedgerRepository) FindDonationBySessionID(ctx context.Context, sessionID string) (*domain.Donation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return (&memoryTx{st: r.st}).FindDonationBySessionID(ctx, sessionID)
}

// ListDonationsByDonor mirrors the keyset ordering of the Postgres repository.
func (r *LedgerRepository) ListDonationsByDonor(ctx context.Context, donorID string, limit int, nextToken *string) ([]domain.Donation, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.RLock()
	var mine []domain.Donation
	for _, d := range r.st.donations {
		if d.DonorID != nil && *d.DonorID == donorID {
			mine = append(mine, d)
		}
	}
	r.mu.RUnlock()

	sort.Slice(mine, func(i, j int) bool {
		if !mine[i].CompletedAt.Equal(mine[j].CompletedAt) {
			return mine[i].CompletedAt.After(mine[j].CompletedAt)
		}
		return mine[i].DonationID > mine[j].DonationID
	})

	if nextToken != nil && *nextToken != "" {
		lastAt, lastID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, err)
		}
		start := len(mine)
		for i, d := range mine {
			if d.CompletedAt.Before(lastAt) || (d.CompletedAt.Equal(lastAt) && d.DonationID < lastID) {
				start = i
				break
			}
		}
		mine = mine[start:]
	}

	var next *string
	if len(mine) > limit {
		mine = mine[:limit]
		last := mine[limit-1]
		token := pagination.EncodeToken(last.CompletedAt, last.DonationID)
		next = &token
	}
	return mine, next, nil
}

func (r *LedgerRepository) FindSponsor(ctx context.Context, donorID string) (*domain.Sponsor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.st.sponsors[donorID]
	if !ok || s.DonationCount == 0 {
		return nil, apperrors.ErrNotFound
	}
	s.SponsoredRecipientIDs = slices.Clone(s.SponsoredRecipientIDs)
	return &s, nil
}

func (r *LedgerRepository) FindRecipientStats(ctx context.Context, recipientID string) (*domain.RecipientStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rs, ok := r.st.recipients[recipientID]
	if !ok || rs.DonationCount == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &rs, nil
}

func (r *LedgerRepository) LoadLedgerSnapshot(ctx context.Context) (*domain.LedgerSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snapshotErr != nil {
		return nil, r.snapshotErr
	}
	return snapshotOf(r.st.clone()), nil
}

func snapshotOf(st *state) *domain.LedgerSnapshot {
	snap := &domain.LedgerSnapshot{Donations: st.donations}
	for _, s := range st.sponsors {
		snap.Sponsors = append(snap.Sponsors, s)
	}
	for _, rs := range st.recipients {
		snap.RecipientStats = append(snap.RecipientStats, rs)
	}
	return snap
}

// memoryTx operates on a private copy of the store.
type memoryTx struct {
	st *state
}

var _ portsrepo.LedgerTx = (*memoryTx)(nil)

func (t *memoryTx) FindDonationBySessionID(ctx context.Context, sessionID string) (*domain.Donation, error) {
	i, ok := t.st.bySession[sessionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	d := t.st.donations[i]
	return &d, nil
}

func (t *memoryTx) InsertDonation(ctx context.Context, donation domain.Donation) error {
	if _, exists := t.st.bySession[donation.PaymentSessionID]; exists {
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicateSession, donation.PaymentSessionID)
	}
	t.st.bySession[donation.PaymentSessionID] = len(t.st.donations)
	t.st.donations = append(t.st.donations, donation)
	return nil
}

func (t *memoryTx) LockSponsor(ctx context.Context, donorID string) (*domain.Sponsor, error) {
	s, ok := t.st.sponsors[donorID]
	if !ok {
		s = domain.Sponsor{DonorID: donorID}
	}
	s.SponsoredRecipientIDs = slices.Clone(s.SponsoredRecipientIDs)
	return &s, nil
}

func (t *memoryTx) SaveSponsor(ctx context.Context, sponsor domain.Sponsor) error {
	t.st.sponsors[sponsor.DonorID] = sponsor
	return nil
}

func (t *memoryTx) LockRecipientStats(ctx context.Context, recipientID string) (*domain.RecipientStats, error) {
	rs, ok := t.st.recipients[recipientID]
	if !ok {
		rs = domain.RecipientStats{RecipientID: recipientID}
	}
	return &rs, nil
}

func (t *memoryTx) SaveRecipientStats(ctx context.Context, stats domain.RecipientStats) error {
	t.st.recipients[stats.RecipientID] = stats
	return nil
}

func (t *memoryTx) LockLedgerForRepair(ctx context.Context) (*domain.LedgerSnapshot, error) {
	return snapshotOf(t.st), nil
}

func (t *memoryTx) ReplaceAggregates(ctx context.Context, sponsors []domain.Sponsor, recipients []domain.RecipientStats) error {
	t.st.sponsors = make(map[string]domain.Sponsor, len(sponsors))
	for _, s := range sponsors {
		t.st.sponsors[s.DonorID] = s
	}
	t.st.recipients = make(map[string]domain.RecipientStats, len(recipients))
	for _, rs := range recipients {
		t.st.recipients[rs.RecipientID] = rs
	}
	return nil
}
