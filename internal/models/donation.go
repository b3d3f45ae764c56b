package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donation is the database row of the donations ledger table.
type Donation struct {
	DonationID           string          `json:"donationID"`           // Primary Key (UUID)
	Amount               decimal.Decimal `json:"amount"`               // NUMERIC(14,2), > 0
	Currency             string          `json:"currency"`             // Not Null
	RecurrenceType       string          `json:"recurrenceType"`       // CHECK one-time|monthly|annual
	RecipientID          string          `json:"recipientID"`          // Not Null
	DonorID              *string         `json:"donorID"`              // Nullable
	IsAnonymous          bool            `json:"isAnonymous"`          // CHECK is_anonymous = (donor_id IS NULL)
	PackReference        *string         `json:"packReference"`        // Nullable
	PaymentSessionID     string          `json:"paymentSessionID"`     // Unique
	PaymentTransactionID string          `json:"paymentTransactionID"` // Not Null
	CompletedAt          time.Time       `json:"completedAt"`
	CreatedAt            time.Time       `json:"createdAt"`
}
