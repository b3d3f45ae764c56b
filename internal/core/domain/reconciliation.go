package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntityType names the aggregate a finding is about.
type EntityType string

const (
	EntitySponsor        EntityType = "sponsor"
	EntityRecipientStats EntityType = "recipientStats"
)

// Aggregate field names used in findings.
const (
	FieldRecord                = "record"
	FieldTotalDonated          = "totalDonated"
	FieldDonationCount         = "donationCount"
	FieldSponsoredRecipientIDs = "sponsoredRecipientIds"
	FieldFirstDonationAt       = "firstDonationAt"
	FieldLastDonationAt        = "lastDonationAt"
	FieldTotalReceived         = "totalReceived"
	FieldDonorCount            = "donorCount"
)

// DriftFinding is one stored aggregate value that disagrees with the ledger.
type DriftFinding struct {
	EntityType EntityType `json:"entityType"`
	EntityID   string     `json:"entityId"`
	Field      string     `json:"field"`
	Stored     string     `json:"stored"`
	Recomputed string     `json:"recomputed"`
}

// ReconciliationSummary holds totals recomputed from the ledger.
type ReconciliationSummary struct {
	DonationCount  int64           `json:"donationCount"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	SponsorCount   int64           `json:"sponsorCount"`
	RecipientCount int64           `json:"recipientCount"`
}

// ReconciliationReport is the result of an audit run.
type ReconciliationReport struct {
	OverallHealthy bool                  `json:"overallHealthy"`
	Inconclusive   bool                  `json:"inconclusive,omitempty"`
	Error          string                `json:"error,omitempty"`
	Findings       []DriftFinding        `json:"findings"`
	Summary        ReconciliationSummary `json:"summary"`
	Epsilon        decimal.Decimal       `json:"epsilon"`
	StartedAt      time.Time             `json:"startedAt"`
	FinishedAt     time.Time             `json:"finishedAt"`
}

// LedgerSnapshot is a consistent read of the ledger and every stored aggregate.
type LedgerSnapshot struct {
	Donations      []Donation
	Sponsors       []Sponsor
	RecipientStats []RecipientStats
}

// RepairResult reports what an explicit repair overwrote.
type RepairResult struct {
	Before            ReconciliationReport `json:"before"`
	Repaired          bool                 `json:"repaired"`
	SponsorsWritten   int                  `json:"sponsorsWritten"`
	RecipientsWritten int                  `json:"recipientsWritten"`
}
