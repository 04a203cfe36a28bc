package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors mapped to HTTP statuses.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized")
	// ErrFormExpired means the form instance named by the request is gone; the
	// page must be reloaded to mount a new one.
	ErrFormExpired = errors.New("form instance expired")
)

// RespondError maps err to a problem response. Unknown errors are not echoed.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrFormExpired):
		Problem(w, http.StatusGone, "Form Expired", err.Error())
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
