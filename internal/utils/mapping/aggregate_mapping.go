package mapping

import (
	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	"github.com/SscSPs/academy_sponsorship/internal/models"
)

// ToModelSponsor converts a domain Sponsor to a model Sponsor
func ToModelSponsor(d domain.Sponsor) models.Sponsor {
	m := models.Sponsor{
		DonorID:               d.DonorID,
		TotalDonated:          d.TotalDonated,
		DonationCount:         d.DonationCount,
		SponsoredRecipientIDs: d.SponsoredRecipientIDs,
	}
	if m.SponsoredRecipientIDs == nil {
		m.SponsoredRecipientIDs = []string{}
	}
	if !d.FirstDonationAt.IsZero() {
		first := d.FirstDonationAt
		m.FirstDonationAt = &first
	}
	if !d.LastDonationAt.IsZero() {
		last := d.LastDonationAt
		m.LastDonationAt = &last
	}
	return m
}

// ToDomainSponsor converts a model Sponsor to a domain Sponsor
func ToDomainSponsor(m models.Sponsor) domain.Sponsor {
	d := domain.Sponsor{
		DonorID:               m.DonorID,
		TotalDonated:          m.TotalDonated,
		DonationCount:         m.DonationCount,
		SponsoredRecipientIDs: m.SponsoredRecipientIDs,
	}
	if m.FirstDonationAt != nil {
		d.FirstDonationAt = m.FirstDonationAt.UTC()
	}
	if m.LastDonationAt != nil {
		d.LastDonationAt = m.LastDonationAt.UTC()
	}
	return d
}

// ToModelRecipientStats converts domain RecipientStats to a model row
func ToModelRecipientStats(d domain.RecipientStats) models.RecipientStats {
	return models.RecipientStats{
		RecipientID:   d.RecipientID,
		TotalReceived: d.TotalReceived,
		DonorCount:    d.DonorCount,
		DonationCount: d.DonationCount,
	}
}

// ToDomainRecipientStats converts a model row to domain RecipientStats
func ToDomainRecipientStats(m models.RecipientStats) domain.RecipientStats {
	return domain.RecipientStats{
		RecipientID:   m.RecipientID,
		TotalReceived: m.TotalReceived,
		DonorCount:    m.DonorCount,
		DonationCount: m.DonationCount,
	}
}
