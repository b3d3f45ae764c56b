package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	"github.com/SscSPs/academy_sponsorship/internal/middleware"
	"github.com/gin-gonic/gin"
)

// maxWebhookBodyBytes bounds the payload read before signature verification.
const maxWebhookBodyBytes = 64 << 10

const stripeSignatureHeader = "Stripe-Signature"

type paymentWebhookHandler struct {
	verifier portssvc.PaymentWebhookVerifier
	ledger   portssvc.LedgerWriterSvc
}

func registerPaymentWebhookRoutes(rg *gin.RouterGroup, verifier portssvc.PaymentWebhookVerifier, ledger portssvc.LedgerWriterSvc) {
	h := &paymentWebhookHandler{verifier: verifier, ledger: ledger}
	rg.POST("/webhooks/payments", h.handlePaymentEvent)
}

// handlePaymentEvent godoc
// @Summary Payment processor webhook
// @Description Receives signed completion events. A non-2xx answer makes the processor re-deliver.
// @Tags webhooks
// @Accept  json
// @Produce  json
// @Param   Stripe-Signature header string true "Webhook signature"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse "Unreadable or unsigned payload"
// @Failure 500 {object} ErrorResponse "Recording failed, deliver again"
// @Router /webhooks/payments [post]
func (h *paymentWebhookHandler) handlePaymentEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		logger.Warn("Failed to read webhook body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, apperrors.NewBadRequestError("Unreadable payload"))
		return
	}

	sessionID, ok, err := h.verifier.VerifyCompletion(payload, c.GetHeader(stripeSignatureHeader))
	if err != nil {
		logger.Warn("Rejected payment webhook", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, apperrors.NewBadRequestError("Invalid signature"))
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	logger = logger.With(slog.String("session_id", sessionID))
	donation, err := h.ledger.ConfirmPayment(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotCompleted) {
			// Delayed payment methods complete later with their own event.
			logger.Info("Checkout completed without payment yet, waiting for the async event")
			c.JSON(http.StatusOK, gin.H{"received": true, "pending": true})
			return
		}
		if errors.Is(err, apperrors.ErrForeignSession) {
			// Not a donation. Acknowledge so the processor stops re-delivering it.
			logger.Warn("Ignoring completed checkout without donation metadata", slog.String("error", err.Error()))
			c.JSON(http.StatusOK, gin.H{"received": true, "ignored": true})
			return
		}
		respondError(c, err, "Failed to record payment from webhook")
		return
	}

	logger.Info("Payment webhook recorded", slog.String("donation_id", donation.DonationID))
	c.JSON(http.StatusOK, gin.H{"received": true, "donationId": donation.DonationID})
}
