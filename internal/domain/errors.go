package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Repositories and services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrUnresolvedCategory is returned when a category tag does not map to a
	// known partition. No write is performed.
	ErrUnresolvedCategory = errors.New("unresolved category")

	// ErrTransient marks a retryable backend failure (throttling, timeouts, 5xx).
	ErrTransient = errors.New("transient backend failure")
)
