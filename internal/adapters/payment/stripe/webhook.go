package stripe

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	stripego "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/webhook"
)

// Events that signal a completed checkout. Delayed payment methods complete with the second one.
const (
	eventCheckoutCompleted     = "checkout.session.completed"
	eventAsyncPaymentSucceeded = "checkout.session.async_payment_succeeded"
)

// WebhookVerifier authenticates Stripe webhook deliveries.
type WebhookVerifier struct {
	secret string
}

func NewWebhookVerifier(endpointSecret string) *WebhookVerifier {
	return &WebhookVerifier{secret: endpointSecret}
}

var _ portssvc.PaymentWebhookVerifier = (*WebhookVerifier)(nil)

// VerifyCompletion returns the session id of a completion event. The session still has to be
// resolved: a completed checkout with a delayed payment method is not paid yet.
// Events from any endpoint API version are accepted since only the session id is read.
func (v *WebhookVerifier) VerifyCompletion(payload []byte, signature string) (string, bool, error) {
	if v.secret == "" {
		return "", false, fmt.Errorf("%w: webhook secret is not configured", apperrors.ErrUnauthorized)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}

	switch string(event.Type) {
	case eventCheckoutCompleted, eventAsyncPaymentSucceeded:
	default:
		return "", false, nil
	}

	var session stripego.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return "", false, fmt.Errorf("%w: malformed checkout session in event %s: %v", apperrors.ErrValidation, event.ID, err)
	}
	if session.ID == "" {
		return "", false, fmt.Errorf("%w: event %s carries no session id", apperrors.ErrValidation, event.ID)
	}
	return session.ID, true, nil
}
