package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	portsrepo "github.com/SscSPs/academy_sponsorship/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	"github.com/SscSPs/academy_sponsorship/internal/utils"
	"github.com/SscSPs/academy_sponsorship/internal/utils/accounting"
	"github.com/shopspring/decimal"
)

// DefaultReconciliationEpsilon is the money tolerance used when none is configured.
var DefaultReconciliationEpsilon = decimal.NewFromInt(1)

type reconciliationService struct {
	BaseService
	ledgerRepo portsrepo.LedgerRepositoryWithTx
	epsilon    decimal.Decimal
	now        func() time.Time
}

// NewReconciliationService creates the aggregate engine. A negative epsilon falls back to the
// default.
func NewReconciliationService(ledgerRepo portsrepo.LedgerRepositoryWithTx, epsilon decimal.Decimal) portssvc.ReconciliationSvc {
	if epsilon.IsNegative() {
		epsilon = DefaultReconciliationEpsilon
	}
	return &reconciliationService{
		ledgerRepo: ledgerRepo,
		epsilon:    epsilon,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.ReconciliationSvc = (*reconciliationService)(nil)

// ApplyDonation is the only writer of the aggregates during normal operation. It locks the
// sponsor row before the recipient row; every writer uses this order.
func (s *reconciliationService) ApplyDonation(ctx context.Context, tx portsrepo.LedgerTx, d domain.Donation) error {
	newDonor := true

	if !d.IsAnonymous {
		if d.DonorID == nil || *d.DonorID == "" {
			return fmt.Errorf("%w: identified donation %s has no donor", apperrors.ErrValidation, d.DonationID)
		}
		sponsor, err := tx.LockSponsor(ctx, *d.DonorID)
		if err != nil {
			return fmt.Errorf("failed to lock sponsor %s: %w", *d.DonorID, err)
		}
		newDonor = !sponsor.HasSponsored(d.RecipientID)
		accounting.ApplyToSponsor(sponsor, d)
		if err := tx.SaveSponsor(ctx, *sponsor); err != nil {
			return fmt.Errorf("failed to save sponsor %s: %w", *d.DonorID, err)
		}
	}

	stats, err := tx.LockRecipientStats(ctx, d.RecipientID)
	if err != nil {
		return fmt.Errorf("failed to lock recipient stats %s: %w", d.RecipientID, err)
	}
	accounting.ApplyToRecipient(stats, d, newDonor)
	if err := tx.SaveRecipientStats(ctx, *stats); err != nil {
		return fmt.Errorf("failed to save recipient stats %s: %w", d.RecipientID, err)
	}
	return nil
}

// Audit reads one consistent snapshot and compares every stored aggregate with a recomputation
// from the ledger. A read failure yields an inconclusive report, never findings.
func (s *reconciliationService) Audit(ctx context.Context) (*domain.ReconciliationReport, error) {
	startedAt := s.now()

	snapshot, err := s.ledgerRepo.LoadLedgerSnapshot(ctx)
	if err != nil {
		s.LogError(ctx, err, "Reconciliation audit could not read the ledger")
		return &domain.ReconciliationReport{
			Inconclusive: true,
			Error:        err.Error(),
			Epsilon:      s.epsilon,
			StartedAt:    startedAt,
			FinishedAt:   s.now(),
		}, fmt.Errorf("%w: %v", apperrors.ErrAuditInconclusive, err)
	}

	report := s.compare(snapshot)
	report.StartedAt = startedAt
	report.FinishedAt = s.now()

	if report.OverallHealthy {
		s.LogInfo(ctx, "Reconciliation audit healthy", slog.Int64("donations", report.Summary.DonationCount))
	} else {
		s.LogWarn(ctx, "Reconciliation drift detected",
			slog.Int("findings", len(report.Findings)),
			slog.String("error", apperrors.ErrReconciliationDrift.Error()))
	}
	return report, nil
}

// Repair recomputes the aggregates under lock and overwrites them when the audit of that same
// locked state shows drift.
func (s *reconciliationService) Repair(ctx context.Context) (*domain.RepairResult, error) {
	result := &domain.RepairResult{}
	startedAt := s.now()

	err := s.ledgerRepo.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		snapshot, err := tx.LockLedgerForRepair(ctx)
		if err != nil {
			return err
		}

		report := s.compare(snapshot)
		report.StartedAt = startedAt
		report.FinishedAt = s.now()
		result.Before = *report
		if report.OverallHealthy {
			return nil
		}

		sponsorMap, recipientMap := accounting.Recompute(snapshot.Donations)
		sponsors := make([]domain.Sponsor, 0, len(sponsorMap))
		for _, id := range sortedKeys(sponsorMap) {
			sponsors = append(sponsors, sponsorMap[id])
		}
		recipients := make([]domain.RecipientStats, 0, len(recipientMap))
		for _, id := range sortedKeys(recipientMap) {
			recipients = append(recipients, recipientMap[id])
		}
		if err := tx.ReplaceAggregates(ctx, sponsors, recipients); err != nil {
			return err
		}

		result.Repaired = true
		result.SponsorsWritten = len(sponsors)
		result.RecipientsWritten = len(recipients)
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Reconciliation repair failed")
		if errors.Is(err, apperrors.ErrPartialWriteRisk) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to repair aggregates: %w", err)
	}

	if result.Repaired {
		s.LogWarn(ctx, "Aggregates repaired from ledger",
			slog.Int("findings", len(result.Before.Findings)),
			slog.Int("sponsors_written", result.SponsorsWritten),
			slog.Int("recipients_written", result.RecipientsWritten))
	}
	return result, nil
}

// compare builds a report for one snapshot. Findings are ordered deterministically, so repeated
// audits of the same state are identical.
func (s *reconciliationService) compare(snapshot *domain.LedgerSnapshot) *domain.ReconciliationReport {
	recomputedSponsors, recomputedRecipients := accounting.Recompute(snapshot.Donations)

	storedSponsors := make(map[string]domain.Sponsor, len(snapshot.Sponsors))
	for _, sp := range snapshot.Sponsors {
		storedSponsors[sp.DonorID] = sp
	}
	storedRecipients := make(map[string]domain.RecipientStats, len(snapshot.RecipientStats))
	for _, rs := range snapshot.RecipientStats {
		storedRecipients[rs.RecipientID] = rs
	}

	findings := []domain.DriftFinding{}

	for _, id := range unionKeys(storedSponsors, recomputedSponsors) {
		stored, hasStored := storedSponsors[id]
		recomputed, hasRecomputed := recomputedSponsors[id]
		if f, ok := recordFinding(domain.EntitySponsor, id, hasStored, hasRecomputed); ok {
			findings = append(findings, f)
			continue
		}
		findings = append(findings, s.compareSponsor(stored, recomputed)...)
	}

	for _, id := range unionKeys(storedRecipients, recomputedRecipients) {
		stored, hasStored := storedRecipients[id]
		recomputed, hasRecomputed := recomputedRecipients[id]
		if f, ok := recordFinding(domain.EntityRecipientStats, id, hasStored, hasRecomputed); ok {
			findings = append(findings, f)
			continue
		}
		findings = append(findings, s.compareRecipient(stored, recomputed)...)
	}

	return &domain.ReconciliationReport{
		OverallHealthy: len(findings) == 0,
		Findings:       findings,
		Epsilon:        s.epsilon,
		Summary: domain.ReconciliationSummary{
			DonationCount:  int64(len(snapshot.Donations)),
			TotalAmount:    accounting.SumAmounts(snapshot.Donations),
			SponsorCount:   int64(len(recomputedSponsors)),
			RecipientCount: int64(len(recomputedRecipients)),
		},
	}
}

func (s *reconciliationService) compareSponsor(stored, recomputed domain.Sponsor) []domain.DriftFinding {
	var findings []domain.DriftFinding
	add := func(field, storedVal, recomputedVal string) {
		findings = append(findings, domain.DriftFinding{
			EntityType: domain.EntitySponsor,
			EntityID:   recomputed.DonorID,
			Field:      field,
			Stored:     storedVal,
			Recomputed: recomputedVal,
		})
	}

	if stored.DonationCount != recomputed.DonationCount {
		add(domain.FieldDonationCount, strconv.FormatInt(stored.DonationCount, 10), strconv.FormatInt(recomputed.DonationCount, 10))
	}
	if !stored.FirstDonationAt.Equal(recomputed.FirstDonationAt) {
		add(domain.FieldFirstDonationAt, formatTime(stored.FirstDonationAt), formatTime(recomputed.FirstDonationAt))
	}
	if !stored.LastDonationAt.Equal(recomputed.LastDonationAt) {
		add(domain.FieldLastDonationAt, formatTime(stored.LastDonationAt), formatTime(recomputed.LastDonationAt))
	}
	storedIDs := slices.Clone(stored.SponsoredRecipientIDs)
	slices.Sort(storedIDs)
	storedIDs = slices.Compact(storedIDs)
	if !slices.Equal(storedIDs, recomputed.SponsoredRecipientIDs) || len(storedIDs) != len(stored.SponsoredRecipientIDs) {
		add(domain.FieldSponsoredRecipientIDs, strings.Join(stored.SponsoredRecipientIDs, ","), strings.Join(recomputed.SponsoredRecipientIDs, ","))
	}
	if !accounting.WithinEpsilon(stored.TotalDonated, recomputed.TotalDonated, s.epsilon) {
		add(domain.FieldTotalDonated, utils.FormatAmount(stored.TotalDonated), utils.FormatAmount(recomputed.TotalDonated))
	}
	return findings
}

func (s *reconciliationService) compareRecipient(stored, recomputed domain.RecipientStats) []domain.DriftFinding {
	var findings []domain.DriftFinding
	add := func(field, storedVal, recomputedVal string) {
		findings = append(findings, domain.DriftFinding{
			EntityType: domain.EntityRecipientStats,
			EntityID:   recomputed.RecipientID,
			Field:      field,
			Stored:     storedVal,
			Recomputed: recomputedVal,
		})
	}

	if stored.DonationCount != recomputed.DonationCount {
		add(domain.FieldDonationCount, strconv.FormatInt(stored.DonationCount, 10), strconv.FormatInt(recomputed.DonationCount, 10))
	}
	if stored.DonorCount != recomputed.DonorCount {
		add(domain.FieldDonorCount, strconv.FormatInt(stored.DonorCount, 10), strconv.FormatInt(recomputed.DonorCount, 10))
	}
	if !accounting.WithinEpsilon(stored.TotalReceived, recomputed.TotalReceived, s.epsilon) {
		add(domain.FieldTotalReceived, utils.FormatAmount(stored.TotalReceived), utils.FormatAmount(recomputed.TotalReceived))
	}
	return findings
}

// recordFinding reports an aggregate row that exists on only one side.
func recordFinding(entityType domain.EntityType, id string, hasStored, hasRecomputed bool) (domain.DriftFinding, bool) {
	if hasStored == hasRecomputed {
		return domain.DriftFinding{}, false
	}
	f := domain.DriftFinding{EntityType: entityType, EntityID: id, Field: domain.FieldRecord, Stored: "missing", Recomputed: "present"}
	if hasStored {
		f.Stored, f.Recomputed = "present", "missing"
	}
	return f, true
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func unionKeys[A, B any](a map[string]A, b map[string]B) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	return sortedKeys(seen)
}
