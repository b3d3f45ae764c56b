package accounting

import (
	"math/rand"
	"testing"
	"time"

	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func donation(donorID string, recipientID string, amount string, at time.Time) domain.Donation {
	d := domain.Donation{
		Amount:      decimal.RequireFromString(amount),
		RecipientID: recipientID,
		CompletedAt: at,
	}
	if donorID == "" {
		d.IsAnonymous = true
	} else {
		d.DonorID = &donorID
	}
	return d
}

func TestApplyToSponsor(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s := domain.Sponsor{DonorID: "D"}

	ApplyToSponsor(&s, donation("D", "R2", "20.00", t0.Add(time.Hour)))
	ApplyToSponsor(&s, donation("D", "R1", "5.50", t0))
	ApplyToSponsor(&s, donation("D", "R2", "1.00", t0.Add(2*time.Hour)))

	assert.True(t, decimal.RequireFromString("26.50").Equal(s.TotalDonated))
	assert.Equal(t, int64(3), s.DonationCount)
	assert.Equal(t, t0, s.FirstDonationAt)
	assert.Equal(t, t0.Add(2*time.Hour), s.LastDonationAt)
	assert.Equal(t, []string{"R1", "R2"}, s.SponsoredRecipientIDs)
}

func TestApplyToRecipient(t *testing.T) {
	r := domain.RecipientStats{RecipientID: "R"}
	ApplyToRecipient(&r, donation("", "R", "50", time.Now()), true)
	ApplyToRecipient(&r, donation("D", "R", "10", time.Now()), false)

	assert.True(t, decimal.NewFromInt(60).Equal(r.TotalReceived))
	assert.Equal(t, int64(2), r.DonationCount)
	assert.Equal(t, int64(1), r.DonorCount)
}

func TestRecompute_CountsDistinctDonorsAndEachAnonymousGift(t *testing.T) {
	now := time.Now().UTC()
	sponsors, recipients := Recompute([]domain.Donation{
		donation("D", "R", "10", now),
		donation("D", "R", "15", now),
		donation("", "R", "5", now),
		donation("", "R", "5", now),
		donation("E", "R", "1", now),
	})

	require.Len(t, sponsors, 2)
	assert.Equal(t, int64(2), sponsors["D"].DonationCount)
	assert.True(t, decimal.NewFromInt(25).Equal(sponsors["D"].TotalDonated))

	require.Contains(t, recipients, "R")
	assert.Equal(t, int64(4), recipients["R"].DonorCount) // D, E and two anonymous gifts
	assert.Equal(t, int64(5), recipients["R"].DonationCount)
	assert.True(t, decimal.NewFromInt(36).Equal(recipients["R"].TotalReceived))
}

// Property: for any donation set, each sponsor's total equals the sum of its donations and the
// recomputation does not depend on ordering.
func TestRecompute_RandomDonationsAreOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	donors := []string{"", "D1", "D2", "D3"}
	recipientIDs := []string{"R1", "R2", "R3"}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for round := 0; round < 25; round++ {
		n := rng.Intn(40) + 1
		donations := make([]domain.Donation, n)
		expected := map[string]decimal.Decimal{}
		for i := range donations {
			donor := donors[rng.Intn(len(donors))]
			amount := decimal.New(int64(rng.Intn(100000)+1), -2)
			d := donation(donor, recipientIDs[rng.Intn(len(recipientIDs))], amount.String(), base.Add(time.Duration(rng.Intn(1000))*time.Minute))
			donations[i] = d
			if donor != "" {
				expected[donor] = expected[donor].Add(amount)
			}
		}

		sponsors, recipients := Recompute(donations)
		for donor, total := range expected {
			assert.True(t, total.Equal(sponsors[donor].TotalDonated), "round %d donor %s", round, donor)
		}
		var received decimal.Decimal
		for _, r := range recipients {
			received = received.Add(r.TotalReceived)
		}
		assert.True(t, SumAmounts(donations).Equal(received))

		shuffled := append([]domain.Donation(nil), donations...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		sponsors2, recipients2 := Recompute(shuffled)
		assert.Equal(t, len(sponsors), len(sponsors2))
		for id, s := range sponsors {
			s2 := sponsors2[id]
			assert.True(t, s.TotalDonated.Equal(s2.TotalDonated))
			assert.Equal(t, s.DonationCount, s2.DonationCount)
			assert.Equal(t, s.FirstDonationAt, s2.FirstDonationAt)
			assert.Equal(t, s.LastDonationAt, s2.LastDonationAt)
			assert.Equal(t, s.SponsoredRecipientIDs, s2.SponsoredRecipientIDs)
		}
		for id, r := range recipients {
			assert.Equal(t, r.DonorCount, recipients2[id].DonorCount)
			assert.Equal(t, r.DonationCount, recipients2[id].DonationCount)
		}
	}
}

func TestWithinEpsilon(t *testing.T) {
	eps := decimal.RequireFromString("1.00")
	assert.True(t, WithinEpsilon(decimal.NewFromInt(100), decimal.RequireFromString("100.99"), eps))
	assert.True(t, WithinEpsilon(decimal.NewFromInt(100), decimal.NewFromInt(101), eps))
	assert.False(t, WithinEpsilon(decimal.NewFromInt(100), decimal.RequireFromString("101.01"), eps))
}
