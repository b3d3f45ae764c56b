package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sponsor is the database row of the sponsors table. A freshly created row has no donations
// and NULL timestamps.
type Sponsor struct {
	DonorID               string          `json:"donorID"` // Primary Key
	TotalDonated          decimal.Decimal `json:"totalDonated"`
	DonationCount         int64           `json:"donationCount"`
	FirstDonationAt       *time.Time      `json:"firstDonationAt"` // Nullable
	LastDonationAt        *time.Time      `json:"lastDonationAt"`  // Nullable
	SponsoredRecipientIDs []string        `json:"sponsoredRecipientIDs"`
	UpdatedAt             time.Time       `json:"updatedAt"`
}

// RecipientStats is the database row of the recipient_stats table.
type RecipientStats struct {
	RecipientID   string          `json:"recipientID"` // Primary Key
	TotalReceived decimal.Decimal `json:"totalReceived"`
	DonorCount    int64           `json:"donorCount"`
	DonationCount int64           `json:"donationCount"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
