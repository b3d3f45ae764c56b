package apperrors

import (
	"errors"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates that the caller could not be identified.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates that the caller is identified but not allowed to perform the action.
var ErrForbidden = errors.New("forbidden")

// Donation flow errors.
var (
	// ErrInvalidAmount is returned for non-positive or non-representable amounts, before any external call.
	ErrInvalidAmount = errors.New("invalid donation amount")
	// ErrRecipientRequired is returned when a transition needs a recipient and none was supplied.
	ErrRecipientRequired = errors.New("recipient is required")
	// ErrInvalidTransition is returned when a flow step is asked to move somewhere it cannot go.
	ErrInvalidTransition = errors.New("invalid donation step transition")
	// ErrDraftCorrupted marks an unreadable draft. It never leaves the draft store.
	ErrDraftCorrupted = errors.New("donation draft corrupted")
)

// Payment gateway errors.
var (
	// ErrGatewayUnavailable is returned when a checkout session cannot be created. Retryable.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrSessionNotFound is returned when the gateway does not know the session id.
	ErrSessionNotFound = errors.New("payment session not found")
	// ErrSessionNotCompleted is returned when the session exists but is not paid yet.
	ErrSessionNotCompleted = errors.New("payment session not completed")
	// ErrForeignSession is returned for a session that carries none of our donation metadata,
	// such as a checkout created by another integration on the same account.
	ErrForeignSession = errors.New("payment session was not created for a donation")
)

// Ledger and reconciliation errors.
var (
	// ErrDuplicateSession signals that a donation already exists for a payment session.
	// Callers treat it as success.
	ErrDuplicateSession = errors.New("donation already recorded for payment session")
	// ErrPartialWriteRisk is returned when the ledger entry and its aggregates could not be
	// committed as one unit. The whole confirmation failed and must be re-delivered.
	ErrPartialWriteRisk = errors.New("ledger and aggregate update could not be committed atomically")
	// ErrReconciliationDrift marks a stored aggregate that disagrees with the ledger.
	ErrReconciliationDrift = errors.New("reconciliation drift detected")
	// ErrAuditInconclusive is returned when the audit could not read the ledger.
	ErrAuditInconclusive = errors.New("reconciliation audit inconclusive")
)

// AppError is the JSON error body returned by handlers.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewBadRequestError creates a 400 AppError.
func NewBadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, nil)
}

// NewUnauthorizedError creates a 401 AppError.
func NewUnauthorizedError(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message, nil)
}

// NewInternalServerError creates a 500 AppError.
func NewInternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, message, nil)
}

// NewGatewayError creates a 502 AppError.
func NewGatewayError(message string) *AppError {
	return NewAppError(http.StatusBadGateway, message, nil)
}
