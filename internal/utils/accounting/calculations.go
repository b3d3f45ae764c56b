package accounting

import (
	"slices"

	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApplyToSponsor adds one identified donation to the donor's aggregate. A sponsor with
// DonationCount == 0 is treated as new. Anonymous donations must not be passed here.
// This is used both by the incremental writer and by the audit recomputation so the two can
// never disagree on arithmetic.
func ApplyToSponsor(s *domain.Sponsor, d domain.Donation) {
	if s.DonationCount == 0 {
		s.TotalDonated = decimal.Zero
		s.FirstDonationAt = d.CompletedAt
		s.LastDonationAt = d.CompletedAt
		s.SponsoredRecipientIDs = nil
	}
	s.TotalDonated = s.TotalDonated.Add(d.Amount)
	s.DonationCount++
	if d.CompletedAt.Before(s.FirstDonationAt) {
		s.FirstDonationAt = d.CompletedAt
	}
	if d.CompletedAt.After(s.LastDonationAt) {
		s.LastDonationAt = d.CompletedAt
	}
	if i, found := slices.BinarySearch(s.SponsoredRecipientIDs, d.RecipientID); !found {
		s.SponsoredRecipientIDs = slices.Insert(s.SponsoredRecipientIDs, i, d.RecipientID)
	}
}

// ApplyToRecipient adds one donation to the recipient's aggregate. newDonor is true for every
// anonymous donation, and for an identified donation whose donor never gave to this recipient.
func ApplyToRecipient(r *domain.RecipientStats, d domain.Donation, newDonor bool) {
	if r.DonationCount == 0 {
		r.TotalReceived = decimal.Zero
		r.DonorCount = 0
	}
	r.TotalReceived = r.TotalReceived.Add(d.Amount)
	r.DonationCount++
	if newDonor {
		r.DonorCount++
	}
}

// Recompute rebuilds every aggregate from ledger entries. The result does not depend on the
// order of donations.
func Recompute(donations []domain.Donation) (map[string]domain.Sponsor, map[string]domain.RecipientStats) {
	sponsors := make(map[string]domain.Sponsor)
	recipients := make(map[string]domain.RecipientStats)
	seen := make(map[string]map[string]bool) // recipient -> identified donors

	for _, d := range donations {
		newDonor := true
		if !d.IsAnonymous && d.DonorID != nil {
			donorID := *d.DonorID
			s := sponsors[donorID]
			s.DonorID = donorID
			ApplyToSponsor(&s, d)
			sponsors[donorID] = s

			if seen[d.RecipientID] == nil {
				seen[d.RecipientID] = make(map[string]bool)
			}
			newDonor = !seen[d.RecipientID][donorID]
			seen[d.RecipientID][donorID] = true
		}

		r := recipients[d.RecipientID]
		r.RecipientID = d.RecipientID
		ApplyToRecipient(&r, d, newDonor)
		recipients[d.RecipientID] = r
	}
	return sponsors, recipients
}

// WithinEpsilon reports whether |a - b| <= epsilon.
func WithinEpsilon(a, b, epsilon decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(epsilon)
}

// SumAmounts totals the donation amounts.
func SumAmounts(donations []domain.Donation) decimal.Decimal {
	total := decimal.Zero
	for _, d := range donations {
		total = total.Add(d.Amount)
	}
	return total
}
