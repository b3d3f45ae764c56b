package stripe

import (
	"fmt"
	"strconv"

	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	"github.com/SscSPs/academy_sponsorship/internal/utils"
	"github.com/shopspring/decimal"
)

// Checkout session metadata keys. The session carries the whole awaiting-payment intent so a
// completion can be recorded without any server-side state.
const (
	metaRecipientID   = "recipientId"
	metaIsAnonymous   = "isAnonymous"
	metaDonorID       = "donorId"
	metaRecurrence    = "recurrence"
	metaPackReference = "packReference"
	metaAmount        = "amount"
)

func intentMetadata(intent domain.AwaitingPayment) map[string]string {
	offer := intent.Offer()
	meta := map[string]string{
		metaRecipientID: intent.RecipientID(),
		metaIsAnonymous: strconv.FormatBool(intent.Identity().IsAnonymous()),
		metaRecurrence:  string(offer.Recurrence),
		metaAmount:      utils.FormatAmount(offer.Amount),
	}
	if donorID := intent.Identity().DonorID(); donorID != nil {
		meta[metaDonorID] = *donorID
	}
	if offer.PackReference != "" {
		meta[metaPackReference] = offer.PackReference
	}
	return meta
}

// hasDonationMetadata reports whether any key written by intentMetadata is present. Sessions
// with some keys but not all are ours and broken, not foreign.
func hasDonationMetadata(meta map[string]string) bool {
	for _, key := range []string{metaRecipientID, metaIsAnonymous, metaRecurrence, metaAmount} {
		if _, ok := meta[key]; ok {
			return true
		}
	}
	return false
}

// snapshotFromMetadata rebuilds the snapshot a session was created from. The caller still runs
// it through domain.RestoreIntent.
func snapshotFromMetadata(meta map[string]string) (domain.IntentSnapshot, error) {
	amount, err := decimal.NewFromString(meta[metaAmount])
	if err != nil {
		return domain.IntentSnapshot{}, fmt.Errorf("%w: session metadata amount %q", apperrors.ErrValidation, meta[metaAmount])
	}
	isAnonymous, err := strconv.ParseBool(meta[metaIsAnonymous])
	if err != nil {
		return domain.IntentSnapshot{}, fmt.Errorf("%w: session metadata isAnonymous %q", apperrors.ErrValidation, meta[metaIsAnonymous])
	}
	return domain.IntentSnapshot{
		Step:          domain.StepAwaitingPayment,
		Amount:        amount,
		Recurrence:    domain.Recurrence(meta[metaRecurrence]),
		PackReference: meta[metaPackReference],
		RecipientID:   meta[metaRecipientID],
		IsAnonymous:   isAnonymous,
		DonorID:       meta[metaDonorID],
	}, nil
}
