package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donation is an immutable ledger entry for a completed payment. It is written exactly once per
// payment session and never updated or deleted.
type Donation struct {
	DonationID           string          `json:"donationID"`           // Primary Key (UUID)
	Amount               decimal.Decimal `json:"amount"`               // Positive, currency-denominated
	Currency             string          `json:"currency"`             // ISO 4217, lower case as the gateway reports it
	RecurrenceType       Recurrence      `json:"recurrenceType"`       // one-time, monthly, annual
	RecipientID          string          `json:"recipientID"`          // Beneficiary (Not Null)
	DonorID              *string         `json:"donorID,omitempty"`    // Nullable; nil for anonymous gifts
	IsAnonymous          bool            `json:"isAnonymous"`          // XOR DonorID
	PackReference        string          `json:"packReference"`        // Nullable sponsorship tier
	PaymentSessionID     string          `json:"paymentSessionID"`     // Unique; idempotence key
	PaymentTransactionID string          `json:"paymentTransactionID"` // Gateway charge/subscription reference
	CompletedAt          time.Time       `json:"completedAt"`
}

// Sponsor summarizes one identified donor. Its fields always equal the sums over the donor's
// ledger entries.
type Sponsor struct {
	DonorID               string          `json:"donorID"`
	TotalDonated          decimal.Decimal `json:"totalDonated"`
	DonationCount         int64           `json:"donationCount"`
	FirstDonationAt       time.Time       `json:"firstDonationAt"`
	LastDonationAt        time.Time       `json:"lastDonationAt"`
	SponsoredRecipientIDs []string        `json:"sponsoredRecipientIDs"` // sorted, unique
}

// HasSponsored reports whether the donor already gave to recipientID.
func (s *Sponsor) HasSponsored(recipientID string) bool {
	for _, id := range s.SponsoredRecipientIDs {
		if id == recipientID {
			return true
		}
	}
	return false
}

// RecipientStats mirrors Sponsor for the receiving side.
type RecipientStats struct {
	RecipientID   string          `json:"recipientID"`
	TotalReceived decimal.Decimal `json:"totalReceived"`
	DonorCount    int64           `json:"donorCount"` // distinct identified donors plus one per anonymous gift
	DonationCount int64           `json:"donationCount"`
}

// SessionHandle is what the gateway returns for a new checkout session.
type SessionHandle struct {
	SessionID   string `json:"sessionID"`
	RedirectURL string `json:"redirectURL"`
}

// PaymentStatus is the gateway's view of a session.
type PaymentStatus string

const (
	PaymentPaid      PaymentStatus = "paid"
	PaymentUnpaid    PaymentStatus = "unpaid"
	PaymentNoPayment PaymentStatus = "no_payment_required"
)

// ConfirmedPayment is an externally verified, completed payment tied to one session.
type ConfirmedPayment struct {
	SessionID            string
	PaymentTransactionID string
	Amount               decimal.Decimal
	Currency             string
	Status               PaymentStatus
	CompletedAt          time.Time
	// Intent is the awaiting-payment snapshot the session was created from, carried through the
	// gateway's metadata.
	Intent IntentSnapshot
}

// DonationConfirmedEvent is emitted once per newly recorded donation.
type DonationConfirmedEvent struct {
	DonationID  string          `json:"donationId"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	RecipientID string          `json:"recipientId"`
	DonorID     *string         `json:"donorId,omitempty"`
	IsAnonymous bool            `json:"isAnonymous"`
}

// NewDonationConfirmedEvent builds the notification payload for d.
func NewDonationConfirmedEvent(d Donation) DonationConfirmedEvent {
	return DonationConfirmedEvent{
		DonationID:  d.DonationID,
		Amount:      d.Amount,
		Currency:    d.Currency,
		RecipientID: d.RecipientID,
		DonorID:     d.DonorID,
		IsAnonymous: d.IsAnonymous,
	}
}
