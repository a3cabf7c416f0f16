package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors shared across the API boundary. Handlers and middleware
// wrap or translate domain errors into these before calling RespondError.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("resource not found")
)

// RespondError maps sentinel-wrapped errors onto the API envelope.
// Unrecognized errors become a generic 500; their detail is expected to be
// logged by the caller before reaching here.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnauthenticated):
		Fail(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrForbidden):
		Fail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotFound):
		Fail(w, http.StatusNotFound, err.Error())
	default:
		Fail(w, http.StatusInternalServerError, "internal error")
	}
}
