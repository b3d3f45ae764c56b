package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	"github.com/SscSPs/academy_sponsorship/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ErrorResponse documents the error body handlers return. It has the JSON shape of
// apperrors.AppError.
type ErrorResponse struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// appErrorFor maps a service error to an AppError whose message is safe to show callers.
func appErrorFor(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrRecipientRequired),
		errors.Is(err, apperrors.ErrInvalidTransition),
		errors.Is(err, apperrors.ErrValidation):
		return apperrors.NewBadRequestError(err.Error())
	case errors.Is(err, apperrors.ErrUnauthorized):
		return apperrors.NewUnauthorizedError("Unauthorized")
	case errors.Is(err, apperrors.ErrForbidden):
		return apperrors.NewAppError(http.StatusForbidden, "Forbidden", nil)
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrSessionNotFound),
		errors.Is(err, apperrors.ErrForeignSession):
		return apperrors.NewAppError(http.StatusNotFound, "Not found", nil)
	case errors.Is(err, apperrors.ErrGatewayUnavailable):
		return apperrors.NewGatewayError("Payment provider unavailable, please retry")
	case errors.Is(err, apperrors.ErrAuditInconclusive):
		return apperrors.NewAppError(http.StatusServiceUnavailable, "Audit could not read the ledger", nil)
	}
	return apperrors.NewInternalServerError("Internal server error")
}

// respondError logs err at a level matching its status and writes the mapped error body.
func respondError(c *gin.Context, err error, logMsg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	appErr := appErrorFor(err)
	if appErr.Code >= http.StatusInternalServerError {
		logger.Error(logMsg, slog.String("error", err.Error()), slog.Int("status", appErr.Code))
	} else {
		logger.Warn(logMsg, slog.String("error", err.Error()), slog.Int("status", appErr.Code))
	}
	c.JSON(appErr.Code, appErr)
}
