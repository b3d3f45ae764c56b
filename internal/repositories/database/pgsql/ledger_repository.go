package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	portsrepo "github.com/SscSPs/academy_sponsorship/internal/core/ports/repositories"
	"github.com/SscSPs/academy_sponsorship/internal/models"
	"github.com/SscSPs/academy_sponsorship/internal/utils/mapping"
	"github.com/SscSPs/academy_sponsorship/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const donationColumns = `
	donation_id, amount, currency, recurrence_type, recipient_id, donor_id, is_anonymous,
	pack_reference, payment_session_id, payment_transaction_id, completed_at, created_at`

const sponsorColumns = `
	donor_id, total_donated, donation_count, first_donation_at, last_donation_at,
	sponsored_recipient_ids, updated_at`

const recipientStatsColumns = `recipient_id, total_received, donor_count, donation_count, updated_at`

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for the donation ledger and its aggregates.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryWithTx {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxLedgerRepository implements portsrepo.LedgerRepositoryWithTx
var _ portsrepo.LedgerRepositoryWithTx = (*PgxLedgerRepository)(nil)

// WithinTx runs fn inside one READ COMMITTED transaction. Row locks taken by fn are held until
// commit or rollback.
func (r *PgxLedgerRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = r.Rollback(ctx, tx)
			panic(p)
		}
	}()

	if err := fn(ctx, &pgxLedgerTx{tx: tx}); err != nil {
		_ = r.Rollback(ctx, tx)
		return err
	}
	return r.Commit(ctx, tx)
}

// FindDonationByID retrieves a donation by its unique identifier.
func (r *PgxLedgerRepository) FindDonationByID(ctx context.Context, donationID string) (*domain.Donation, error) {
	return findDonation(ctx, r.Pool, `WHERE donation_id = $1`, donationID)
}

// FindDonationBySessionID retrieves the donation recorded for a payment session.
func (r *PgxLedgerRepository) FindDonationBySessionID(ctx context.Context, sessionID string) (*domain.Donation, error) {
	return findDonation(ctx, r.Pool, `WHERE payment_session_id = $1`, sessionID)
}

// ListDonationsByDonor retrieves a paginated list of a donor's donations using keyset pagination
// on (completed_at, donation_id), newest first.
func (r *PgxLedgerRepository) ListDonationsByDonor(ctx context.Context, donorID string, limit int, nextToken *string) ([]domain.Donation, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	args := []any{donorID}
	query := `SELECT ` + donationColumns + ` FROM donations WHERE donor_id = $1`
	if nextToken != nil && *nextToken != "" {
		lastCompletedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, fmt.Errorf("%w: invalid nextToken: %v", apperrors.ErrValidation, decodeErr)
		}
		query += ` AND (completed_at, donation_id) < ($2, $3)`
		args = append(args, lastCompletedAt, lastID)
	}
	query += ` ORDER BY completed_at DESC, donation_id DESC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query donations for donor "+donorID, err)
	}
	donations, err := scanDonations(rows)
	if err != nil {
		return nil, nil, err
	}

	var nextTokenVal *string
	if len(donations) > limit {
		donations = donations[:limit]
		last := donations[limit-1]
		token := pagination.EncodeToken(last.CompletedAt, last.DonationID)
		nextTokenVal = &token
	}
	return donations, nextTokenVal, nil
}

// FindSponsor retrieves the aggregate for an identified donor.
func (r *PgxLedgerRepository) FindSponsor(ctx context.Context, donorID string) (*domain.Sponsor, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+sponsorColumns+` FROM sponsors WHERE donor_id = $1 AND donation_count > 0`, donorID)
	s, err := scanSponsor(row)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindRecipientStats retrieves the aggregate for a recipient.
func (r *PgxLedgerRepository) FindRecipientStats(ctx context.Context, recipientID string) (*domain.RecipientStats, error) {
	row := r.Pool.QueryRow(ctx, `SELECT `+recipientStatsColumns+` FROM recipient_stats WHERE recipient_id = $1 AND donation_count > 0`, recipientID)
	rs, err := scanRecipientStats(row)
	if err != nil {
		return nil, err
	}
	return &rs, nil
}

// LoadLedgerSnapshot reads the ledger and all aggregates in one REPEATABLE READ, READ ONLY
// transaction so that every table reflects the same point in time.
func (r *PgxLedgerRepository) LoadLedgerSnapshot(ctx context.Context) (*domain.LedgerSnapshot, error) {
	tx, err := r.BeginWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	snapshot, err := loadSnapshot(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, apperrors.NewAppError(500, "failed to finish snapshot transaction", err)
	}
	return snapshot, nil
}

// pgxLedgerTx implements portsrepo.LedgerTx on top of an open pgx transaction.
type pgxLedgerTx struct {
	tx pgx.Tx
}

var _ portsrepo.LedgerTx = (*pgxLedgerTx)(nil)

func (t *pgxLedgerTx) FindDonationBySessionID(ctx context.Context, sessionID string) (*domain.Donation, error) {
	return findDonation(ctx, t.tx, `WHERE payment_session_id = $1`, sessionID)
}

// InsertDonation relies on the unique index on payment_session_id: a concurrent insert for the
// same session waits for the first one and then inserts nothing.
func (t *pgxLedgerTx) InsertDonation(ctx context.Context, donation domain.Donation) error {
	m := mapping.ToModelDonation(donation)
	tag, err := t.tx.Exec(ctx, `
		INSERT INTO donations (
			donation_id, amount, currency, recurrence_type, recipient_id, donor_id, is_anonymous,
			pack_reference, payment_session_id, payment_transaction_id, completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (payment_session_id) DO NOTHING;
	`,
		m.DonationID,
		m.Amount,
		m.Currency,
		m.RecurrenceType,
		m.RecipientID,
		m.DonorID,
		m.IsAnonymous,
		m.PackReference,
		m.PaymentSessionID,
		m.PaymentTransactionID,
		m.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// donation_id collision; the session index is handled by ON CONFLICT
			return fmt.Errorf("%w: donation %s", apperrors.ErrDuplicate, m.DonationID)
		}
		return apperrors.NewAppError(500, "failed to insert donation for session "+m.PaymentSessionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicateSession, m.PaymentSessionID)
	}
	return nil
}

func (t *pgxLedgerTx) LockSponsor(ctx context.Context, donorID string) (*domain.Sponsor, error) {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO sponsors (donor_id, total_donated, donation_count, sponsored_recipient_ids, updated_at)
		VALUES ($1, 0, 0, '{}', NOW())
		ON CONFLICT (donor_id) DO NOTHING;
	`, donorID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to ensure sponsor row "+donorID, err)
	}

	row := t.tx.QueryRow(ctx, `SELECT `+sponsorColumns+` FROM sponsors WHERE donor_id = $1 FOR UPDATE`, donorID)
	s, err := scanSponsor(row)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (t *pgxLedgerTx) SaveSponsor(ctx context.Context, sponsor domain.Sponsor) error {
	m := mapping.ToModelSponsor(sponsor)
	tag, err := t.tx.Exec(ctx, `
		UPDATE sponsors
		SET total_donated = $2, donation_count = $3, first_donation_at = $4, last_donation_at = $5,
		    sponsored_recipient_ids = $6, updated_at = NOW()
		WHERE donor_id = $1;
	`, m.DonorID, m.TotalDonated, m.DonationCount, m.FirstDonationAt, m.LastDonationAt, m.SponsoredRecipientIDs)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update sponsor "+m.DonorID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: sponsor %s", apperrors.ErrNotFound, m.DonorID)
	}
	return nil
}

func (t *pgxLedgerTx) LockRecipientStats(ctx context.Context, recipientID string) (*domain.RecipientStats, error) {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO recipient_stats (recipient_id, total_received, donor_count, donation_count, updated_at)
		VALUES ($1, 0, 0, 0, NOW())
		ON CONFLICT (recipient_id) DO NOTHING;
	`, recipientID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to ensure recipient stats row "+recipientID, err)
	}

	row := t.tx.QueryRow(ctx, `SELECT `+recipientStatsColumns+` FROM recipient_stats WHERE recipient_id = $1 FOR UPDATE`, recipientID)
	rs, err := scanRecipientStats(row)
	if err != nil {
		return nil, err
	}
	return &rs, nil
}

func (t *pgxLedgerTx) SaveRecipientStats(ctx context.Context, stats domain.RecipientStats) error {
	m := mapping.ToModelRecipientStats(stats)
	tag, err := t.tx.Exec(ctx, `
		UPDATE recipient_stats
		SET total_received = $2, donor_count = $3, donation_count = $4, updated_at = NOW()
		WHERE recipient_id = $1;
	`, m.RecipientID, m.TotalReceived, m.DonorCount, m.DonationCount)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update recipient stats "+m.RecipientID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: recipient stats %s", apperrors.ErrNotFound, m.RecipientID)
	}
	return nil
}

// LockLedgerForRepair takes EXCLUSIVE locks on both aggregate tables. Readers are not blocked;
// ApplyDonation in other transactions waits at its first aggregate write.
func (t *pgxLedgerTx) LockLedgerForRepair(ctx context.Context) (*domain.LedgerSnapshot, error) {
	if _, err := t.tx.Exec(ctx, `LOCK TABLE sponsors, recipient_stats IN EXCLUSIVE MODE`); err != nil {
		return nil, apperrors.NewAppError(500, "failed to lock aggregate tables", err)
	}
	return loadSnapshot(ctx, t.tx)
}

func (t *pgxLedgerTx) ReplaceAggregates(ctx context.Context, sponsors []domain.Sponsor, recipients []domain.RecipientStats) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM sponsors`); err != nil {
		return apperrors.NewAppError(500, "failed to clear sponsors", err)
	}
	if _, err := t.tx.Exec(ctx, `DELETE FROM recipient_stats`); err != nil {
		return apperrors.NewAppError(500, "failed to clear recipient stats", err)
	}

	batch := &pgx.Batch{}
	for _, s := range sponsors {
		m := mapping.ToModelSponsor(s)
		batch.Queue(`
			INSERT INTO sponsors (donor_id, total_donated, donation_count, first_donation_at, last_donation_at, sponsored_recipient_ids, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW());
		`, m.DonorID, m.TotalDonated, m.DonationCount, m.FirstDonationAt, m.LastDonationAt, m.SponsoredRecipientIDs)
	}
	for _, rs := range recipients {
		m := mapping.ToModelRecipientStats(rs)
		batch.Queue(`
			INSERT INTO recipient_stats (recipient_id, total_received, donor_count, donation_count, updated_at)
			VALUES ($1, $2, $3, $4, NOW());
		`, m.RecipientID, m.TotalReceived, m.DonorCount, m.DonationCount)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := t.tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.NewAppError(500, "failed to write repaired aggregates", err)
	}
	return nil
}

func findDonation(ctx context.Context, q querier, where string, arg string) (*domain.Donation, error) {
	rows, err := q.Query(ctx, `SELECT `+donationColumns+` FROM donations `+where, arg)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query donation", err)
	}
	donations, err := scanDonations(rows)
	if err != nil {
		return nil, err
	}
	if len(donations) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &donations[0], nil
}

func loadSnapshot(ctx context.Context, q querier) (*domain.LedgerSnapshot, error) {
	rows, err := q.Query(ctx, `SELECT `+donationColumns+` FROM donations ORDER BY completed_at, donation_id`)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to read ledger", err)
	}
	donations, err := scanDonations(rows)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.LedgerSnapshot{Donations: donations}

	sponsorRows, err := q.Query(ctx, `SELECT `+sponsorColumns+` FROM sponsors WHERE donation_count > 0 OR total_donated <> 0`)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to read sponsors", err)
	}
	defer sponsorRows.Close()
	for sponsorRows.Next() {
		s, err := scanSponsor(sponsorRows)
		if err != nil {
			return nil, err
		}
		snapshot.Sponsors = append(snapshot.Sponsors, s)
	}
	if err := sponsorRows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate sponsors", err)
	}

	statsRows, err := q.Query(ctx, `SELECT `+recipientStatsColumns+` FROM recipient_stats WHERE donation_count > 0 OR total_received <> 0`)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to read recipient stats", err)
	}
	defer statsRows.Close()
	for statsRows.Next() {
		rs, err := scanRecipientStats(statsRows)
		if err != nil {
			return nil, err
		}
		snapshot.RecipientStats = append(snapshot.RecipientStats, rs)
	}
	if err := statsRows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate recipient stats", err)
	}
	return snapshot, nil
}

func scanDonations(rows pgx.Rows) ([]domain.Donation, error) {
	defer rows.Close()
	var result []models.Donation
	for rows.Next() {
		var m models.Donation
		if err := rows.Scan(
			&m.DonationID,
			&m.Amount,
			&m.Currency,
			&m.RecurrenceType,
			&m.RecipientID,
			&m.DonorID,
			&m.IsAnonymous,
			&m.PackReference,
			&m.PaymentSessionID,
			&m.PaymentTransactionID,
			&m.CompletedAt,
			&m.CreatedAt,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan donation row", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate donation rows", err)
	}
	return mapping.ToDomainDonationSlice(result), nil
}

func scanSponsor(row pgx.Row) (domain.Sponsor, error) {
	var m models.Sponsor
	err := row.Scan(
		&m.DonorID,
		&m.TotalDonated,
		&m.DonationCount,
		&m.FirstDonationAt,
		&m.LastDonationAt,
		&m.SponsoredRecipientIDs,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Sponsor{}, apperrors.ErrNotFound
		}
		return domain.Sponsor{}, apperrors.NewAppError(500, "failed to scan sponsor row", err)
	}
	return mapping.ToDomainSponsor(m), nil
}

func scanRecipientStats(row pgx.Row) (domain.RecipientStats, error) {
	var m models.RecipientStats
	err := row.Scan(
		&m.RecipientID,
		&m.TotalReceived,
		&m.DonorCount,
		&m.DonationCount,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RecipientStats{}, apperrors.ErrNotFound
		}
		return domain.RecipientStats{}, apperrors.NewAppError(500, "failed to scan recipient stats row", err)
	}
	return mapping.ToDomainRecipientStats(m), nil
}
