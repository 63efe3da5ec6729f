package handler

import (
	"errors"
	"net/http"

	"github.com/msomdec/credgate/internal/domain"
)

// statusFor maps a domain error onto its HTTP status. Anything unrecognised
// is an internal error, and that includes a duplicate email: registration
// reports store failures as 500 with the cause in the body.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrNoToken),
		errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// outcome labels err for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUnauthorized):
		return "bad_password"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "duplicate"
	default:
		return "error"
	}
}
