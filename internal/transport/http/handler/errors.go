package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/carehome-actionplans/internal/domain"
)

// httpError maps a domain error to its HTTP status. Anything unrecognised is
// logged and reported as a 500 without leaking internals.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrUnresolvedCategory):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "action plan not found")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrTransient):
		writeError(w, http.StatusServiceUnavailable, "temporarily unavailable, try again")
	default:
		slog.Error("unhandled error", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
