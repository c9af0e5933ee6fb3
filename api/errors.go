package api

import (
	"errors"
	"net/http"

	"playvault/models"
)

// statusFor maps service errors onto HTTP status codes. Unmapped errors are
// internal by default so repository failures never leak as caller mistakes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidChoice),
		errors.Is(err, models.ErrStakeTooLow),
		errors.Is(err, models.ErrStakeTooHigh),
		errors.Is(err, models.ErrZeroAmount),
		errors.Is(err, models.ErrInvalidRecipient):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized),
		errors.Is(err, models.ErrNotProvider),
		errors.Is(err, models.ErrNotOracle):
		return http.StatusForbidden
	case errors.Is(err, models.ErrBetNotFound),
		errors.Is(err, models.ErrRoundNotFound),
		errors.Is(err, models.ErrUnknownRequest):
		return http.StatusNotFound
	case errors.Is(err, models.ErrRoundNotOpen),
		errors.Is(err, models.ErrAlreadySettled),
		errors.Is(err, models.ErrNoEntrants),
		errors.Is(err, models.ErrVaultPaused),
		errors.Is(err, models.ErrExceedsCeiling),
		errors.Is(err, models.ErrInsufficientBalance):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
