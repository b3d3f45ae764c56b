// Package stripe implements the payment gateway with Stripe Checkout.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	"github.com/SscSPs/academy_sponsorship/internal/middleware"
	"github.com/SscSPs/academy_sponsorship/internal/utils"
	stripego "github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
)

// sessionAPI is the part of the Stripe client the gateway uses.
type sessionAPI interface {
	New(params *stripego.CheckoutSessionParams) (*stripego.CheckoutSession, error)
	Get(id string, params *stripego.CheckoutSessionParams) (*stripego.CheckoutSession, error)
}

// Config holds what the gateway needs besides the API key.
type Config struct {
	Currency   string
	SuccessURL string // may contain {CHECKOUT_SESSION_ID}
	CancelURL  string
}

// Gateway is a PaymentGateway backed by Stripe Checkout sessions.
type Gateway struct {
	sessions sessionAPI
	cfg      Config
}

// NewGateway creates a gateway with its own Stripe client.
func NewGateway(secretKey string, cfg Config) *Gateway {
	sc := client.New(secretKey, nil)
	return &Gateway{sessions: sc.CheckoutSessions, cfg: cfg}
}

var _ portssvc.PaymentGateway = (*Gateway)(nil)

func (g *Gateway) CreateSession(ctx context.Context, intent domain.AwaitingPayment) (*domain.SessionHandle, error) {
	params, err := g.sessionParams(intent)
	if err != nil {
		return nil, err
	}
	params.Context = ctx

	session, err := g.sessions.New(params)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Stripe checkout session creation failed", slog.String("error", err.Error()))
		return nil, classifyCreateError(err)
	}
	return &domain.SessionHandle{SessionID: session.ID, RedirectURL: session.URL}, nil
}

// ResolveSession is a pure read of the session. It only succeeds for paid sessions.
func (g *Gateway) ResolveSession(ctx context.Context, sessionID string) (*domain.ConfirmedPayment, error) {
	params := &stripego.CheckoutSessionParams{}
	params.Context = ctx

	session, err := g.sessions.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripego.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("%w: failed to read session %s: %v", apperrors.ErrGatewayUnavailable, sessionID, err)
	}
	return confirmedPayment(session)
}

func (g *Gateway) sessionParams(intent domain.AwaitingPayment) (*stripego.CheckoutSessionParams, error) {
	offer := intent.Offer()
	unitAmount, err := utils.ToMinorUnits(offer.Amount)
	if err != nil {
		return nil, err
	}

	productName := "Sponsorship for " + intent.RecipientID()
	if offer.PackReference != "" {
		productName = fmt.Sprintf("%s pack for %s", offer.PackReference, intent.RecipientID())
	}

	priceData := &stripego.CheckoutSessionLineItemPriceDataParams{
		Currency:   stripego.String(g.cfg.Currency),
		UnitAmount: stripego.Int64(unitAmount),
		ProductData: &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripego.String(productName),
		},
	}

	mode := stripego.CheckoutSessionModePayment
	if offer.Recurrence.IsSubscription() {
		mode = stripego.CheckoutSessionModeSubscription
		interval := "month"
		if offer.Recurrence == domain.Annual {
			interval = "year"
		}
		priceData.Recurring = &stripego.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripego.String(interval),
		}
	}

	params := &stripego.CheckoutSessionParams{
		Mode:       stripego.String(string(mode)),
		SuccessURL: stripego.String(g.cfg.SuccessURL),
		CancelURL:  stripego.String(g.cfg.CancelURL),
		LineItems: []*stripego.CheckoutSessionLineItemParams{
			{PriceData: priceData, Quantity: stripego.Int64(1)},
		},
	}
	if donorID := intent.Identity().DonorID(); donorID != nil {
		params.ClientReferenceID = stripego.String(*donorID)
	}
	for k, v := range intentMetadata(intent) {
		params.AddMetadata(k, v)
	}
	return params, nil
}

func confirmedPayment(session *stripego.CheckoutSession) (*domain.ConfirmedPayment, error) {
	status := domain.PaymentStatus(session.PaymentStatus)
	if status != domain.PaymentPaid {
		return nil, fmt.Errorf("%w: session %s payment status %s", apperrors.ErrSessionNotCompleted, session.ID, status)
	}

	if !hasDonationMetadata(session.Metadata) {
		return nil, fmt.Errorf("%w: session %s", apperrors.ErrForeignSession, session.ID)
	}
	snap, err := snapshotFromMetadata(session.Metadata)
	if err != nil {
		return nil, err
	}

	transactionID := ""
	switch {
	case session.PaymentIntent != nil:
		transactionID = session.PaymentIntent.ID
	case session.Subscription != nil:
		transactionID = session.Subscription.ID
	}

	// Stripe does not report a completion time on the session; the ledger stamps it.
	return &domain.ConfirmedPayment{
		SessionID:            session.ID,
		PaymentTransactionID: transactionID,
		Amount:               utils.FromMinorUnits(session.AmountTotal),
		Currency:             string(session.Currency),
		Status:               status,
		Intent:               snap,
	}, nil
}

func classifyCreateError(err error) error {
	var stripeErr *stripego.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.Code {
		case stripego.ErrorCodeAmountTooSmall, stripego.ErrorCodeAmountTooLarge:
			return fmt.Errorf("%w: %s", apperrors.ErrInvalidAmount, stripeErr.Msg)
		}
	}
	return fmt.Errorf("%w: %v", apperrors.ErrGatewayUnavailable, err)
}
