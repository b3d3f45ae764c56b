package services_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	"github.com/SscSPs/academy_sponsorship/internal/core/services"
	"github.com/SscSPs/academy_sponsorship/internal/repositories/database/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ReconciliationServiceTestSuite struct {
	suite.Suite
	repo           *memory.LedgerRepository
	reconciliation portssvc.ReconciliationSvc
	ledger         portssvc.LedgerSvcFacade
}

func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.repo = memory.NewLedgerRepository()
	suite.reconciliation = services.NewReconciliationService(suite.repo, decimal.NewFromInt(1))
	suite.ledger = services.NewLedgerService(suite.repo, suite.reconciliation)
}

func (suite *ReconciliationServiceTestSuite) record(sessionID string, intent domain.AwaitingPayment, at time.Time) {
	_, inserted, err := suite.ledger.Record(context.Background(), paidSession(sessionID, intent, at), intent)
	suite.Require().NoError(err)
	suite.Require().True(inserted)
}

// seedScenario records: anonymous 25 to R1, donor-b 50 to R1 and 30 to R2.
func (suite *ReconciliationServiceTestSuite) seedScenario() {
	suite.record("S-anon", awaiting(suite.T(), "25", "R1", ""), baseTime)
	suite.record("S-b1", awaiting(suite.T(), "50", "R1", "donor-b"), baseTime.Add(time.Hour))
	suite.record("S-b2", awaiting(suite.T(), "30", "R2", "donor-b"), baseTime.Add(2*time.Hour))
}

type expectedSponsor struct {
	total       decimal.Decimal
	count       int64
	first, last time.Time
	recipients  map[string]bool
}

type expectedRecipient struct {
	total     decimal.Decimal
	donations int64
	anonymous int64
	donors    map[string]bool
}

func (suite *ReconciliationServiceTestSuite) TestAudit_RandomDonationsStayHealthy() {
	rng := rand.New(rand.NewSource(7))
	donors := []string{"", "donor-1", "donor-2", "donor-3"}
	recipients := []string{"R1", "R2", "R3", "R4", "R5"}

	// Expected aggregates are summed straight from the generated gifts.
	expectedTotal := decimal.Zero
	wantSponsors := map[string]*expectedSponsor{}
	wantRecipients := map[string]*expectedRecipient{}
	for i := 0; i < 200; i++ {
		amount := decimal.New(int64(rng.Intn(50000)+1), -2)
		recipientID := recipients[rng.Intn(len(recipients))]
		donorID := donors[rng.Intn(len(donors))]
		at := baseTime.Add(time.Duration(rng.Intn(100000)) * time.Second)
		suite.record(fmt.Sprintf("S-%d", i), awaiting(suite.T(), amount.String(), recipientID, donorID), at)

		expectedTotal = expectedTotal.Add(amount)

		r, ok := wantRecipients[recipientID]
		if !ok {
			r = &expectedRecipient{total: decimal.Zero, donors: map[string]bool{}}
			wantRecipients[recipientID] = r
		}
		r.total = r.total.Add(amount)
		r.donations++
		if donorID == "" {
			r.anonymous++
			continue
		}
		r.donors[donorID] = true

		sp, ok := wantSponsors[donorID]
		if !ok {
			sp = &expectedSponsor{total: decimal.Zero, first: at, last: at, recipients: map[string]bool{}}
			wantSponsors[donorID] = sp
		}
		sp.total = sp.total.Add(amount)
		sp.count++
		if at.Before(sp.first) {
			sp.first = at
		}
		if at.After(sp.last) {
			sp.last = at
		}
		sp.recipients[recipientID] = true
	}

	report, err := suite.reconciliation.Audit(context.Background())
	suite.Require().NoError(err)
	suite.True(report.OverallHealthy, "findings: %v", report.Findings)
	suite.Empty(report.Findings)
	suite.Equal(int64(200), report.Summary.DonationCount)
	suite.True(report.Summary.TotalAmount.Equal(expectedTotal))

	snapshot, err := suite.repo.LoadLedgerSnapshot(context.Background())
	suite.Require().NoError(err)

	suite.Require().Len(snapshot.Sponsors, len(wantSponsors))
	for _, sp := range snapshot.Sponsors {
		want, ok := wantSponsors[sp.DonorID]
		suite.Require().True(ok, "unexpected sponsor %s", sp.DonorID)
		suite.True(sp.TotalDonated.Equal(want.total), "sponsor %s total %s, want %s", sp.DonorID, sp.TotalDonated, want.total)
		suite.Equal(want.count, sp.DonationCount, "sponsor %s", sp.DonorID)
		suite.True(sp.FirstDonationAt.Equal(want.first), "sponsor %s first", sp.DonorID)
		suite.True(sp.LastDonationAt.Equal(want.last), "sponsor %s last", sp.DonorID)
		suite.Equal(sortedSet(want.recipients), sp.SponsoredRecipientIDs, "sponsor %s", sp.DonorID)
	}

	suite.Require().Len(snapshot.RecipientStats, len(wantRecipients))
	for _, rs := range snapshot.RecipientStats {
		want, ok := wantRecipients[rs.RecipientID]
		suite.Require().True(ok, "unexpected recipient %s", rs.RecipientID)
		suite.True(rs.TotalReceived.Equal(want.total), "recipient %s total %s, want %s", rs.RecipientID, rs.TotalReceived, want.total)
		suite.Equal(want.donations, rs.DonationCount, "recipient %s", rs.RecipientID)
		suite.Equal(int64(len(want.donors))+want.anonymous, rs.DonorCount, "recipient %s", rs.RecipientID)
	}
}

func sortedSet(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (suite *ReconciliationServiceTestSuite) TestAudit_ReportsCorruptedSponsorTotal() {
	suite.seedScenario()
	sponsor, err := suite.ledger.GetSponsor(context.Background(), "donor-b")
	suite.Require().NoError(err)
	sponsor.TotalDonated = decimal.NewFromInt(999)
	suite.repo.OverwriteSponsor(*sponsor)

	report, err := suite.reconciliation.Audit(context.Background())
	suite.Require().NoError(err)
	suite.False(report.OverallHealthy)
	suite.Require().Len(report.Findings, 1)
	finding := report.Findings[0]
	suite.Equal(domain.EntitySponsor, finding.EntityType)
	suite.Equal("donor-b", finding.EntityID)
	suite.Equal(domain.FieldTotalDonated, finding.Field)
	suite.Equal("999.00", finding.Stored)
	suite.Equal("80.00", finding.Recomputed)

	// Audit never writes.
	after, err := suite.ledger.GetSponsor(context.Background(), "donor-b")
	suite.Require().NoError(err)
	suite.True(after.TotalDonated.Equal(decimal.NewFromInt(999)))
}

func (suite *ReconciliationServiceTestSuite) TestAudit_MoneyWithinEpsilonIsHealthy() {
	suite.seedScenario()
	stats, err := suite.ledger.GetRecipientStats(context.Background(), "R1")
	suite.Require().NoError(err)
	stats.TotalReceived = stats.TotalReceived.Add(decimal.RequireFromString("0.50"))
	suite.repo.OverwriteRecipientStats(*stats)

	report, err := suite.reconciliation.Audit(context.Background())
	suite.Require().NoError(err)
	suite.True(report.OverallHealthy)

	// Counts are compared exactly.
	stats.DonorCount++
	suite.repo.OverwriteRecipientStats(*stats)
	report, err = suite.reconciliation.Audit(context.Background())
	suite.Require().NoError(err)
	suite.Require().Len(report.Findings, 1)
	suite.Equal(domain.FieldDonorCount, report.Findings[0].Field)
	suite.Equal("3", report.Findings[0].Stored)
	suite.Equal("2", report.Findings[0].Recomputed)
}

func (suite *ReconciliationServiceTestSuite) TestAudit_ReportsOrphanAndMissingRecords() {
	suite.seedScenario()
	suite.repo.OverwriteRecipientStats(domain.RecipientStats{RecipientID: "R9", TotalReceived: decimal.NewFromInt(5), DonorCount: 1, DonationCount: 1})

	report, err := suite.reconciliation.Audit(context.Background())
	suite.Require().NoError(err)
	suite.Require().Len(report.Findings, 1)
	suite.Equal(domain.DriftFinding{
		EntityType: domain.EntityRecipientStats,
		EntityID:   "R9",
		Field:      domain.FieldRecord,
		Stored:     "present",
		Recomputed: "missing",
	}, report.Findings[0])
}

func (suite *ReconciliationServiceTestSuite) TestAudit_ReadFailureIsInconclusive() {
	suite.seedScenario()
	suite.repo.FailSnapshots(errors.New("replica unavailable"))

	report, err := suite.reconciliation.Audit(context.Background())
	suite.ErrorIs(err, apperrors.ErrAuditInconclusive)
	suite.Require().NotNil(report)
	suite.True(report.Inconclusive)
	suite.False(report.OverallHealthy)
	suite.Empty(report.Findings)
}

func (suite *ReconciliationServiceTestSuite) TestRepair_OverwritesDriftedAggregates() {
	ctx := context.Background()
	suite.seedScenario()
	sponsor, err := suite.ledger.GetSponsor(ctx, "donor-b")
	suite.Require().NoError(err)
	sponsor.TotalDonated = decimal.NewFromInt(999)
	sponsor.SponsoredRecipientIDs = []string{"R1"}
	suite.repo.OverwriteSponsor(*sponsor)

	result, err := suite.reconciliation.Repair(ctx)
	suite.Require().NoError(err)
	suite.True(result.Repaired)
	suite.Len(result.Before.Findings, 2)
	suite.Equal(1, result.SponsorsWritten)
	suite.Equal(2, result.RecipientsWritten)

	repaired, err := suite.ledger.GetSponsor(ctx, "donor-b")
	suite.Require().NoError(err)
	suite.True(repaired.TotalDonated.Equal(decimal.NewFromInt(80)))
	suite.Equal([]string{"R1", "R2"}, repaired.SponsoredRecipientIDs)

	report, err := suite.reconciliation.Audit(ctx)
	suite.Require().NoError(err)
	suite.True(report.OverallHealthy)

	again, err := suite.reconciliation.Repair(ctx)
	suite.Require().NoError(err)
	suite.False(again.Repaired, "nothing to repair on a healthy ledger")
}

func (suite *ReconciliationServiceTestSuite) TestRepair_CommitFailureKeepsStoredValues() {
	ctx := context.Background()
	suite.seedScenario()
	sponsor, err := suite.ledger.GetSponsor(ctx, "donor-b")
	suite.Require().NoError(err)
	sponsor.DonationCount = 7
	suite.repo.OverwriteSponsor(*sponsor)

	suite.repo.FailNextCommit(errors.New("connection reset"))
	_, err = suite.reconciliation.Repair(ctx)
	suite.ErrorIs(err, apperrors.ErrPartialWriteRisk)

	stored, err := suite.ledger.GetSponsor(ctx, "donor-b")
	suite.Require().NoError(err)
	suite.Equal(int64(7), stored.DonationCount)
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
