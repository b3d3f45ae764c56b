package mapping

import (
	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	"github.com/SscSPs/academy_sponsorship/internal/models"
)

// ToModelDonation converts a domain Donation to a model Donation
func ToModelDonation(d domain.Donation) models.Donation {
	var pack *string
	if d.PackReference != "" {
		p := d.PackReference
		pack = &p
	}
	return models.Donation{
		DonationID:           d.DonationID,
		Amount:               d.Amount,
		Currency:             d.Currency,
		RecurrenceType:       string(d.RecurrenceType),
		RecipientID:          d.RecipientID,
		DonorID:              d.DonorID,
		IsAnonymous:          d.IsAnonymous,
		PackReference:        pack,
		PaymentSessionID:     d.PaymentSessionID,
		PaymentTransactionID: d.PaymentTransactionID,
		CompletedAt:          d.CompletedAt,
	}
}

// ToDomainDonation converts a model Donation to a domain Donation
func ToDomainDonation(m models.Donation) domain.Donation {
	d := domain.Donation{
		DonationID:           m.DonationID,
		Amount:               m.Amount,
		Currency:             m.Currency,
		RecurrenceType:       domain.Recurrence(m.RecurrenceType),
		RecipientID:          m.RecipientID,
		DonorID:              m.DonorID,
		IsAnonymous:          m.IsAnonymous,
		PaymentSessionID:     m.PaymentSessionID,
		PaymentTransactionID: m.PaymentTransactionID,
		CompletedAt:          m.CompletedAt.UTC(),
	}
	if m.PackReference != nil {
		d.PackReference = *m.PackReference
	}
	return d
}

// ToDomainDonationSlice converts a slice of model Donations to domain Donations
func ToDomainDonationSlice(ms []models.Donation) []domain.Donation {
	ds := make([]domain.Donation, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainDonation(m)
	}
	return ds
}
