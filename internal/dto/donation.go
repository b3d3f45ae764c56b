package dto

import (
	"time"

	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Identity choices a donor can make before checkout.
const (
	IdentityAnonymous  = "anonymous"
	IdentityIdentified = "identified"
)

// BeginDonationRequest is what the donation page submits when a donor starts giving.
type BeginDonationRequest struct {
	Amount         decimal.Decimal   `json:"amount" swaggertype:"string" example:"25.00"`
	Recurrence     domain.Recurrence `json:"recurrence" binding:"required,oneof=one-time monthly annual"`
	PackReference  string            `json:"packReference" binding:"omitempty,max=64"`
	RecipientID    string            `json:"recipientId" binding:"omitempty,max=64"`
	IdentityChoice string            `json:"identityChoice" binding:"omitempty,oneof=anonymous identified"` // empty: ask the donor
}

// FlowOutcome tells the UI where the donation flow stands and where to go next.
type FlowOutcome struct {
	Step        domain.Step            `json:"step"`
	Intent      *domain.IntentSnapshot `json:"intent,omitempty"`
	RedirectURL string                 `json:"redirectUrl,omitempty"` // identity login or hosted checkout
	SessionID   string                 `json:"sessionId,omitempty"`
	Donation    *DonationResponse      `json:"donation,omitempty"`
}

// DonationResponse defines the data returned for a ledger entry.
// Mirrors domain.Donation.
type DonationResponse struct {
	DonationID           string            `json:"donationId"`
	Amount               decimal.Decimal   `json:"amount"`
	Currency             string            `json:"currency"`
	RecurrenceType       domain.Recurrence `json:"recurrenceType"`
	RecipientID          string            `json:"recipientId"`
	DonorID              *string           `json:"donorId,omitempty"`
	IsAnonymous          bool              `json:"isAnonymous"`
	PackReference        string            `json:"packReference,omitempty"`
	PaymentSessionID     string            `json:"paymentSessionId"`
	PaymentTransactionID string            `json:"paymentTransactionId"`
	CompletedAt          time.Time         `json:"completedAt"`
}

// ToDonationResponse converts a domain.Donation to DonationResponse DTO
func ToDonationResponse(d *domain.Donation) DonationResponse {
	return DonationResponse{
		DonationID:           d.DonationID,
		Amount:               d.Amount,
		Currency:             d.Currency,
		RecurrenceType:       d.RecurrenceType,
		RecipientID:          d.RecipientID,
		DonorID:              d.DonorID,
		IsAnonymous:          d.IsAnonymous,
		PackReference:        d.PackReference,
		PaymentSessionID:     d.PaymentSessionID,
		PaymentTransactionID: d.PaymentTransactionID,
		CompletedAt:          d.CompletedAt,
	}
}

// ToListDonationResponse converts a slice of domain.Donation to a slice of DonationResponse DTOs
func ToListDonationResponse(donations []domain.Donation) []DonationResponse {
	res := make([]DonationResponse, len(donations))
	for i := range donations {
		res[i] = ToDonationResponse(&donations[i])
	}
	return res
}

// ListDonationsParams defines query parameters for listing a donor's donations.
type ListDonationsParams struct {
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ListDonationsResponse wraps one page of donations.
type ListDonationsResponse struct {
	Donations []DonationResponse `json:"donations"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// SponsorResponse defines the donor-facing sponsorship summary.
type SponsorResponse struct {
	DonorID               string          `json:"donorId"`
	TotalDonated          decimal.Decimal `json:"totalDonated"`
	DonationCount         int64           `json:"donationCount"`
	FirstDonationAt       *time.Time      `json:"firstDonationAt,omitempty"`
	LastDonationAt        *time.Time      `json:"lastDonationAt,omitempty"`
	SponsoredRecipientIDs []string        `json:"sponsoredRecipientIds"`
}

// ToSponsorResponse converts a domain.Sponsor to SponsorResponse DTO
func ToSponsorResponse(s *domain.Sponsor) SponsorResponse {
	res := SponsorResponse{
		DonorID:               s.DonorID,
		TotalDonated:          s.TotalDonated,
		DonationCount:         s.DonationCount,
		SponsoredRecipientIDs: s.SponsoredRecipientIDs,
	}
	if res.SponsoredRecipientIDs == nil {
		res.SponsoredRecipientIDs = []string{}
	}
	if !s.FirstDonationAt.IsZero() {
		first := s.FirstDonationAt
		res.FirstDonationAt = &first
	}
	if !s.LastDonationAt.IsZero() {
		last := s.LastDonationAt
		res.LastDonationAt = &last
	}
	return res
}

// RecipientStatsResponse defines the public totals for a recipient.
type RecipientStatsResponse struct {
	RecipientID   string          `json:"recipientId"`
	TotalReceived decimal.Decimal `json:"totalReceived"`
	DonorCount    int64           `json:"donorCount"`
	DonationCount int64           `json:"donationCount"`
}

// ToRecipientStatsResponse converts domain.RecipientStats to its DTO
func ToRecipientStatsResponse(r *domain.RecipientStats) RecipientStatsResponse {
	return RecipientStatsResponse{
		RecipientID:   r.RecipientID,
		TotalReceived: r.TotalReceived,
		DonorCount:    r.DonorCount,
		DonationCount: r.DonationCount,
	}
}
