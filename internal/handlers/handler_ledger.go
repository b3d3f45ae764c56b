package handlers

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	"github.com/SscSPs/academy_sponsorship/internal/dto"
	"github.com/SscSPs/academy_sponsorship/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler serves read-only views of the ledger and its aggregates.
type ledgerHandler struct {
	ledgerService portssvc.LedgerReaderSvc
	adminSubjects []string
}

func newLedgerHandler(ledgerService portssvc.LedgerReaderSvc, adminSubjects []string) *ledgerHandler {
	return &ledgerHandler{ledgerService: ledgerService, adminSubjects: adminSubjects}
}

// registerDonorRoutes registers routes that need a signed-in donor.
func registerDonorRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerReaderSvc, adminSubjects []string) {
	h := newLedgerHandler(ledgerService, adminSubjects)

	rg.GET("/donations/:donationID", h.getDonation)
	sponsors := rg.Group("/sponsors/me")
	{
		sponsors.GET("", h.getMySponsorship)
		sponsors.GET("/donations", h.listMyDonations)
	}
}

// registerRecipientRoutes registers the public recipient totals.
func registerRecipientRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerReaderSvc) {
	h := newLedgerHandler(ledgerService, nil)
	rg.GET("/recipients/:recipientID/stats", h.getRecipientStats)
}

// getDonation godoc
// @Summary Get a donation
// @Description Retrieves a ledger entry. Only the donor who made it or an admin may read it.
// @Tags donations
// @Produce  json
// @Param   donationID path string true "Donation ID"
// @Success 200 {object} dto.DonationResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Donation not found"
// @Security BearerAuth
// @Router /donations/{donationID} [get]
func (h *ledgerHandler) getDonation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	donationID := c.Param("donationID")

	callerID, ok := middleware.GetDonorIDFromContext(c)
	if !ok {
		logger.Error("Donor ID not found in context")
		c.JSON(http.StatusUnauthorized, apperrors.NewUnauthorizedError("Unauthorized"))
		return
	}

	donation, err := h.ledgerService.GetDonationByID(c.Request.Context(), donationID)
	if err != nil {
		respondError(c, err, "Failed to get donation")
		return
	}

	isOwner := donation.DonorID != nil && *donation.DonorID == callerID
	if !isOwner && !slices.Contains(h.adminSubjects, callerID) {
		// Same answer as a missing donation, so ids cannot be probed.
		logger.Warn("Donor attempted to read another donor's donation", slog.String("donation_id", donationID))
		c.JSON(http.StatusNotFound, apperrors.NewAppError(http.StatusNotFound, "Not found", nil))
		return
	}

	c.JSON(http.StatusOK, dto.ToDonationResponse(donation))
}

// getMySponsorship godoc
// @Summary Get my sponsorship summary
// @Description Totals over every donation the signed-in donor made.
// @Tags sponsors
// @Produce  json
// @Success 200 {object} dto.SponsorResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "No donations yet"
// @Security BearerAuth
// @Router /sponsors/me [get]
func (h *ledgerHandler) getMySponsorship(c *gin.Context) {
	donorID, ok := middleware.GetDonorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apperrors.NewUnauthorizedError("Unauthorized"))
		return
	}

	sponsor, err := h.ledgerService.GetSponsor(c.Request.Context(), donorID)
	if err != nil {
		respondError(c, err, "Failed to get sponsor summary")
		return
	}
	c.JSON(http.StatusOK, dto.ToSponsorResponse(sponsor))
}

// listMyDonations godoc
// @Summary List my donations
// @Description Lists the signed-in donor's donations, newest first.
// @Tags sponsors
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListDonationsResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /sponsors/me/donations [get]
func (h *ledgerHandler) listMyDonations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	donorID, ok := middleware.GetDonorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apperrors.NewUnauthorizedError("Unauthorized"))
		return
	}

	var params dto.ListDonationsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListDonations", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, apperrors.NewBadRequestError("Invalid query parameters: "+err.Error()))
		return
	}

	resp, err := h.ledgerService.ListDonorDonations(c.Request.Context(), donorID, params)
	if err != nil {
		respondError(c, err, "Failed to list donations")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getRecipientStats godoc
// @Summary Get recipient totals
// @Description Public totals for one recipient.
// @Tags recipients
// @Produce  json
// @Param   recipientID path string true "Recipient ID"
// @Success 200 {object} dto.RecipientStatsResponse
// @Failure 404 {object} ErrorResponse "No donations for this recipient"
// @Router /recipients/{recipientID}/stats [get]
func (h *ledgerHandler) getRecipientStats(c *gin.Context) {
	stats, err := h.ledgerService.GetRecipientStats(c.Request.Context(), c.Param("recipientID"))
	if err != nil {
		respondError(c, err, "Failed to get recipient stats")
		return
	}
	c.JSON(http.StatusOK, dto.ToRecipientStatsResponse(stats))
}
