package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/academy_sponsorship/internal/adapters/draft"
	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	"github.com/SscSPs/academy_sponsorship/internal/dto"
	"github.com/SscSPs/academy_sponsorship/internal/middleware"
	"github.com/gin-gonic/gin"
)

// DraftCookieConfig describes the cookie that carries a donation draft across the identity redirect.
type DraftCookieConfig struct {
	Codec  *draft.Codec
	Name   string
	Secure bool
}

// donationFlowHandler handles the donation flow endpoints.
type donationFlowHandler struct {
	flowService portssvc.DonationFlowSvc
	drafts      DraftCookieConfig
}

func newDonationFlowHandler(flowService portssvc.DonationFlowSvc, drafts DraftCookieConfig) *donationFlowHandler {
	return &donationFlowHandler{flowService: flowService, drafts: drafts}
}

// registerDonationFlowRoutes registers the flow routes. Callers may or may not be signed in, so the
// group is expected to carry the optional auth middleware. checkoutLimit guards session creation.
func registerDonationFlowRoutes(rg *gin.RouterGroup, flowService portssvc.DonationFlowSvc, drafts DraftCookieConfig, checkoutLimit gin.HandlerFunc) {
	h := newDonationFlowHandler(flowService, drafts)

	donations := rg.Group("/donations")
	{
		donations.POST("/intents", checkoutLimit, h.beginDonation)
		donations.GET("/intents/resume", checkoutLimit, h.resumeDonation)
		donations.DELETE("/intents", h.abandonDonation)
		donations.GET("/checkout/complete", h.completeCheckout)
	}
}

// flowContext binds the caller identity and a cookie-backed draft store to this request.
func (h *donationFlowHandler) flowContext(c *gin.Context) domain.FlowContext {
	donorID, _ := middleware.GetDonorIDFromContext(c)
	return domain.FlowContext{
		DonorID: donorID,
		Drafts:  draft.NewCookieStore(c, h.drafts.Codec, h.drafts.Name, h.drafts.Secure),
	}
}

// beginDonation godoc
// @Summary Start a donation
// @Description Starts a donation for a pack or a custom amount and advances it as far as the caller's identity allows.
// @Description The response says where to send the browser next: the identity provider or the hosted checkout.
// @Tags donations
// @Accept  json
// @Produce  json
// @Param   donation body dto.BeginDonationRequest true "Donation details"
// @Success 200 {object} dto.FlowOutcome
// @Failure 400 {object} ErrorResponse "Invalid amount, recurrence or recipient"
// @Failure 429 {object} ErrorResponse "Too many requests"
// @Failure 502 {object} ErrorResponse "Payment provider unavailable"
// @Router /donations/intents [post]
func (h *donationFlowHandler) beginDonation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.BeginDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for BeginDonation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, apperrors.NewBadRequestError("Invalid request format: "+err.Error()))
		return
	}

	logger.Info("Received request to begin donation",
		slog.String("amount", req.Amount.String()),
		slog.String("recurrence", string(req.Recurrence)),
		slog.String("recipient_id", req.RecipientID),
		slog.String("identity_choice", req.IdentityChoice))

	outcome, err := h.flowService.BeginDonation(c.Request.Context(), h.flowContext(c), req)
	if err != nil {
		respondError(c, err, "Failed to begin donation")
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// resumeDonation godoc
// @Summary Resume a donation after sign-in
// @Description Continues the saved donation once the identity provider redirected back. Without a readable draft the flow starts over.
// @Tags donations
// @Produce  json
// @Success 200 {object} dto.FlowOutcome
// @Failure 502 {object} ErrorResponse "Payment provider unavailable"
// @Router /donations/intents/resume [get]
func (h *donationFlowHandler) resumeDonation(c *gin.Context) {
	outcome, err := h.flowService.ResumeAfterIdentity(c.Request.Context(), h.flowContext(c))
	if err != nil {
		respondError(c, err, "Failed to resume donation")
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// abandonDonation godoc
// @Summary Abandon the current donation
// @Description Discards the saved donation draft. Checkout sessions already created are left to expire.
// @Tags donations
// @Produce  json
// @Success 200 {object} dto.FlowOutcome
// @Router /donations/intents [delete]
func (h *donationFlowHandler) abandonDonation(c *gin.Context) {
	outcome, err := h.flowService.AbandonDonation(c.Request.Context(), h.flowContext(c))
	if err != nil {
		respondError(c, err, "Failed to abandon donation")
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// completeCheckout godoc
// @Summary Confirm a checkout session
// @Description Called from the checkout success page. Answers 202 while the payment is still pending.
// @Tags donations
// @Produce  json
// @Param   session_id query string true "Checkout session ID"
// @Success 200 {object} dto.FlowOutcome
// @Success 202 {object} dto.FlowOutcome "Payment still pending"
// @Failure 400 {object} ErrorResponse "Missing session id"
// @Failure 404 {object} ErrorResponse "Unknown session"
// @Failure 500 {object} ErrorResponse "Confirmation failed, retry"
// @Router /donations/checkout/complete [get]
func (h *donationFlowHandler) completeCheckout(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, apperrors.NewBadRequestError("session_id is required"))
		return
	}

	outcome, err := h.flowService.CompleteCheckout(c.Request.Context(), h.flowContext(c), sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotCompleted) {
			c.JSON(http.StatusAccepted, dto.FlowOutcome{Step: domain.StepAwaitingPayment, SessionID: sessionID})
			return
		}
		respondError(c, err, "Failed to complete checkout")
		return
	}
	c.JSON(http.StatusOK, outcome)
}
