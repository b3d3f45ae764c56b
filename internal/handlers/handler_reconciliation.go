package handlers

import (
	"errors"
	"net/http"

	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	"github.com/SscSPs/academy_sponsorship/internal/dto"
	"github.com/gin-gonic/gin"
)

type reconciliationHandler struct {
	reconciliation portssvc.ReconciliationSvc
}

// registerReconciliationRoutes registers operator routes. The group must be admin-only.
func registerReconciliationRoutes(rg *gin.RouterGroup, reconciliation portssvc.ReconciliationSvc) {
	h := &reconciliationHandler{reconciliation: reconciliation}

	rec := rg.Group("/reconciliation")
	{
		rec.GET("", h.audit)
		rec.POST("/repair", h.repair)
	}
}

// audit godoc
// @Summary Audit aggregates against the ledger
// @Description Recomputes every sponsor and recipient aggregate from one consistent ledger snapshot and lists drift. Never writes.
// @Tags admin
// @Produce  json
// @Success 200 {object} dto.ReconciliationReportResponse
// @Failure 403 {object} ErrorResponse "Admin access required"
// @Failure 503 {object} dto.ReconciliationReportResponse "Inconclusive: the ledger could not be read"
// @Security BearerAuth
// @Router /admin/reconciliation [get]
func (h *reconciliationHandler) audit(c *gin.Context) {
	report, err := h.reconciliation.Audit(c.Request.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrAuditInconclusive) && report != nil {
			c.JSON(http.StatusServiceUnavailable, dto.ToReconciliationReportResponse(report))
			return
		}
		respondError(c, err, "Reconciliation audit failed")
		return
	}
	c.JSON(http.StatusOK, dto.ToReconciliationReportResponse(report))
}

// repair godoc
// @Summary Repair drifted aggregates
// @Description Overwrites drifted aggregates with values recomputed from the ledger, under a lock that blocks new donations.
// @Tags admin
// @Produce  json
// @Success 200 {object} dto.RepairResponse
// @Failure 403 {object} ErrorResponse "Admin access required"
// @Failure 500 {object} ErrorResponse "Repair failed, nothing was written"
// @Security BearerAuth
// @Router /admin/reconciliation/repair [post]
func (h *reconciliationHandler) repair(c *gin.Context) {
	result, err := h.reconciliation.Repair(c.Request.Context())
	if err != nil {
		respondError(c, err, "Reconciliation repair failed")
		return
	}
	c.JSON(http.StatusOK, dto.ToRepairResponse(result))
}
