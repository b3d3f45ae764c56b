// Package draft persists a donation intent across the identity redirect.
package draft

import (
	"fmt"
	"time"

	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	"github.com/SscSPs/academy_sponsorship/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

const draftIssuer = "donation-draft"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Draft is the persisted schema. It is validated before it is turned back into an intent.
type Draft struct {
	Step          domain.Step `json:"step" validate:"required,oneof=selecting-recipient choosing-identity awaiting-payment"`
	Amount        string      `json:"amount" validate:"required,numeric"`
	Recurrence    string      `json:"recurrence" validate:"required,oneof=one-time monthly annual"`
	PackReference string      `json:"packReference,omitempty" validate:"omitempty,max=64"`
	RecipientID   string      `json:"recipientId,omitempty" validate:"omitempty,max=64"`
	IsAnonymous   bool        `json:"isAnonymous,omitempty"`
	DonorID       string      `json:"donorId,omitempty" validate:"omitempty,max=255"`
}

type draftClaims struct {
	Draft Draft `json:"draft"`
	jwt.RegisteredClaims
}

// FromIntent flattens an intent into the persisted schema.
func FromIntent(intent domain.DonationIntent) Draft {
	snap := intent.Snapshot()
	return Draft{
		Step:          snap.Step,
		Amount:        snap.Amount.StringFixed(2),
		Recurrence:    string(snap.Recurrence),
		PackReference: snap.PackReference,
		RecipientID:   snap.RecipientID,
		IsAnonymous:   snap.IsAnonymous,
		DonorID:       snap.DonorID,
	}
}

// Intent validates the schema and replays it through the domain transitions.
func (d Draft) Intent() (domain.DonationIntent, error) {
	if err := validate.Struct(d); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDraftCorrupted, err)
	}
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: amount: %v", apperrors.ErrDraftCorrupted, err)
	}
	intent, err := domain.RestoreIntent(domain.IntentSnapshot{
		Step:          d.Step,
		Amount:        amount,
		Recurrence:    domain.Recurrence(d.Recurrence),
		PackReference: d.PackReference,
		RecipientID:   d.RecipientID,
		IsAnonymous:   d.IsAnonymous,
		DonorID:       d.DonorID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDraftCorrupted, err)
	}
	return intent, nil
}

// Codec signs drafts as HS256 tokens that expire after Retention.
type Codec struct {
	Secret    string
	Retention time.Duration
	now       func() time.Time
}

// NewCodec creates a codec using the wall clock.
func NewCodec(secret string, retention time.Duration) *Codec {
	return &Codec{Secret: secret, Retention: retention, now: time.Now}
}

func (c *Codec) Encode(intent domain.DonationIntent) (string, error) {
	issuedAt := c.now()
	claims := draftClaims{
		Draft: FromIntent(intent),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    draftIssuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.Retention)),
		},
	}
	token, err := utils.SignClaims(claims, c.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign donation draft: %w", err)
	}
	return token, nil
}

// Decode verifies and restores a draft. Every failure wraps ErrDraftCorrupted.
func (c *Codec) Decode(token string) (domain.DonationIntent, error) {
	claims := &draftClaims{}
	err := utils.ParseClaims(token, c.Secret, claims,
		jwt.WithIssuer(draftIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDraftCorrupted, err)
	}
	return claims.Draft.Intent()
}
