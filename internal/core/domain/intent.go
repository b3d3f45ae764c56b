package domain

import (
	"fmt"

	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Step is the position of a donation intent in the flow.
type Step string

const (
	StepSelectingRecipient Step = "selecting-recipient"
	StepChoosingIdentity   Step = "choosing-identity"
	StepAwaitingPayment    Step = "awaiting-payment"
)

// Terminal outcomes. They are not intents: reaching one destroys the draft.
const (
	StepConfirmed Step = "confirmed"
	StepAbandoned Step = "abandoned"
)

// rank orders the live steps. Transitions only ever move to a higher rank.
func (s Step) rank() int {
	switch s {
	case StepSelectingRecipient:
		return 1
	case StepChoosingIdentity:
		return 2
	case StepAwaitingPayment:
		return 3
	case StepConfirmed, StepAbandoned:
		return 4
	}
	return 0
}

// After reports whether s comes strictly later in the flow than other.
func (s Step) After(other Step) bool {
	return s.rank() > other.rank()
}

// Recurrence is how often a donation is charged.
type Recurrence string

const (
	OneTime Recurrence = "one-time"
	Monthly Recurrence = "monthly"
	Annual  Recurrence = "annual"
)

// IsValid reports whether r is a known recurrence.
func (r Recurrence) IsValid() bool {
	switch r {
	case OneTime, Monthly, Annual:
		return true
	}
	return false
}

// IsSubscription reports whether the gateway has to set up a recurring charge.
func (r Recurrence) IsSubscription() bool {
	return r == Monthly || r == Annual
}

// Offer is what the donor wants to give. Every step carries it unchanged.
type Offer struct {
	Amount        decimal.Decimal `json:"amount"`
	Recurrence    Recurrence      `json:"recurrence"`
	PackReference string          `json:"packReference,omitempty"` // empty for free-amount donations
}

// Validate checks the amount and recurrence. Amounts are currency-denominated with at most
// two decimal places.
func (o Offer) Validate() error {
	if !o.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", apperrors.ErrInvalidAmount, o.Amount.String())
	}
	if !o.Amount.Equal(o.Amount.Truncate(2)) {
		return fmt.Errorf("%w: amount %s has more than two decimal places", apperrors.ErrInvalidAmount, o.Amount.String())
	}
	if !o.Recurrence.IsValid() {
		return fmt.Errorf("%w: unknown recurrence %q", apperrors.ErrValidation, o.Recurrence)
	}
	return nil
}

// DonationIntent is an in-progress, unpaid donation. It is a closed set: only the three step
// types of this package implement it, and each carries only the fields valid for its step.
type DonationIntent interface {
	Step() Step
	Offer() Offer
	Snapshot() IntentSnapshot
	isDonationIntent()
}

// SelectingRecipient is the first step: an amount is chosen, no recipient yet.
type SelectingRecipient struct {
	offer Offer
}

// ChoosingIdentity has a recipient and waits for the donor to sign in or opt out.
type ChoosingIdentity struct {
	offer       Offer
	recipientID string
}

// AwaitingPayment is ready for a checkout session.
type AwaitingPayment struct {
	offer       Offer
	recipientID string
	identity    DonorIdentity
}

// DonorIdentity is either anonymous or an identified donor, never both and never neither.
type DonorIdentity struct {
	donorID string
}

// AnonymousDonor is the identity of a donor who opted out of identification.
func AnonymousDonor() DonorIdentity { return DonorIdentity{} }

// IdentifiedDonor returns the identity for a resolved donor id.
func IdentifiedDonor(donorID string) (DonorIdentity, error) {
	if donorID == "" {
		return DonorIdentity{}, fmt.Errorf("%w: donor id is required for an identified donation", apperrors.ErrValidation)
	}
	return DonorIdentity{donorID: donorID}, nil
}

// IsAnonymous reports whether the donor opted out of identification.
func (d DonorIdentity) IsAnonymous() bool { return d.donorID == "" }

// DonorID returns the donor id, or nil for anonymous donors.
func (d DonorIdentity) DonorID() *string {
	if d.donorID == "" {
		return nil
	}
	id := d.donorID
	return &id
}

// NewIntent starts a donation when a user picks a pack or enters a custom amount.
func NewIntent(offer Offer) (SelectingRecipient, error) {
	if err := offer.Validate(); err != nil {
		return SelectingRecipient{}, err
	}
	return SelectingRecipient{offer: offer}, nil
}

func (s SelectingRecipient) Step() Step      { return StepSelectingRecipient }
func (s SelectingRecipient) Offer() Offer    { return s.offer }
func (SelectingRecipient) isDonationIntent() {}

// ChooseRecipient advances to the identity choice.
func (s SelectingRecipient) ChooseRecipient(recipientID string) (ChoosingIdentity, error) {
	if recipientID == "" {
		return ChoosingIdentity{}, apperrors.ErrRecipientRequired
	}
	return ChoosingIdentity{offer: s.offer, recipientID: recipientID}, nil
}

func (c ChoosingIdentity) Step() Step          { return StepChoosingIdentity }
func (c ChoosingIdentity) Offer() Offer        { return c.offer }
func (c ChoosingIdentity) RecipientID() string { return c.recipientID }
func (ChoosingIdentity) isDonationIntent()     {}

// ProceedIdentified advances with a resolved donor identity.
func (c ChoosingIdentity) ProceedIdentified(donorID string) (AwaitingPayment, error) {
	identity, err := IdentifiedDonor(donorID)
	if err != nil {
		return AwaitingPayment{}, err
	}
	return AwaitingPayment{offer: c.offer, recipientID: c.recipientID, identity: identity}, nil
}

// ProceedAnonymously advances after the donor explicitly opted out of identification.
func (c ChoosingIdentity) ProceedAnonymously() AwaitingPayment {
	return AwaitingPayment{offer: c.offer, recipientID: c.recipientID, identity: AnonymousDonor()}
}

func (a AwaitingPayment) Step() Step              { return StepAwaitingPayment }
func (a AwaitingPayment) Offer() Offer            { return a.offer }
func (a AwaitingPayment) RecipientID() string     { return a.recipientID }
func (a AwaitingPayment) Identity() DonorIdentity { return a.identity }
func (AwaitingPayment) isDonationIntent()         {}

// IntentSnapshot is the flat, serializable form of an intent. It is what drafts and gateway
// metadata carry; RestoreIntent turns it back into a typed intent.
type IntentSnapshot struct {
	Step          Step            `json:"step"`
	Amount        decimal.Decimal `json:"amount"`
	Recurrence    Recurrence      `json:"recurrence"`
	PackReference string          `json:"packReference,omitempty"`
	RecipientID   string          `json:"recipientId,omitempty"`
	IsAnonymous   bool            `json:"isAnonymous,omitempty"`
	DonorID       string          `json:"donorId,omitempty"`
}

func (s SelectingRecipient) Snapshot() IntentSnapshot {
	return snapshotOf(StepSelectingRecipient, s.offer)
}

func (c ChoosingIdentity) Snapshot() IntentSnapshot {
	snap := snapshotOf(StepChoosingIdentity, c.offer)
	snap.RecipientID = c.recipientID
	return snap
}

func (a AwaitingPayment) Snapshot() IntentSnapshot {
	snap := snapshotOf(StepAwaitingPayment, a.offer)
	snap.RecipientID = a.recipientID
	snap.IsAnonymous = a.identity.IsAnonymous()
	snap.DonorID = a.identity.donorID
	return snap
}

func snapshotOf(step Step, offer Offer) IntentSnapshot {
	return IntentSnapshot{
		Step:          step,
		Amount:        offer.Amount,
		Recurrence:    offer.Recurrence,
		PackReference: offer.PackReference,
	}
}

// RestoreIntent rebuilds a typed intent from a snapshot by replaying the transitions, so a
// snapshot that violates any invariant is rejected instead of half-applied.
func RestoreIntent(snap IntentSnapshot) (DonationIntent, error) {
	selecting, err := NewIntent(Offer{Amount: snap.Amount, Recurrence: snap.Recurrence, PackReference: snap.PackReference})
	if err != nil {
		return nil, err
	}

	switch snap.Step {
	case StepSelectingRecipient:
		if snap.RecipientID != "" || snap.DonorID != "" || snap.IsAnonymous {
			return nil, fmt.Errorf("%w: %s carries fields of a later step", apperrors.ErrInvalidTransition, snap.Step)
		}
		return selecting, nil
	case StepChoosingIdentity:
		if snap.DonorID != "" || snap.IsAnonymous {
			return nil, fmt.Errorf("%w: %s carries an identity", apperrors.ErrInvalidTransition, snap.Step)
		}
		choosing, err := selecting.ChooseRecipient(snap.RecipientID)
		if err != nil {
			return nil, err
		}
		return choosing, nil
	case StepAwaitingPayment:
		choosing, err := selecting.ChooseRecipient(snap.RecipientID)
		if err != nil {
			return nil, err
		}
		if snap.IsAnonymous == (snap.DonorID != "") {
			return nil, fmt.Errorf("%w: exactly one of anonymity and donor id must be set", apperrors.ErrValidation)
		}
		if snap.IsAnonymous {
			return choosing.ProceedAnonymously(), nil
		}
		awaiting, err := choosing.ProceedIdentified(snap.DonorID)
		if err != nil {
			return nil, err
		}
		return awaiting, nil
	}
	return nil, fmt.Errorf("%w: unknown step %q", apperrors.ErrInvalidTransition, snap.Step)
}

// FlowContext is what every flow operation receives explicitly: who is calling, and where the
// draft for this browser lives.
type FlowContext struct {
	DonorID string // empty when the caller is not identified
	Drafts  DraftStore
}

// Identified reports whether the caller has a resolved identity.
func (f FlowContext) Identified() bool { return f.DonorID != "" }

// DraftStore durably holds at most one intent across an identity redirect.
type DraftStore interface {
	// Save overwrites any existing draft.
	Save(intent DonationIntent) error
	// Load returns the draft if present and readable. It never mutates the store.
	Load() (DonationIntent, bool)
	// Clear removes the draft. Clearing an absent draft is not an error.
	Clear() error
}
