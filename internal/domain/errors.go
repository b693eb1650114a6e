package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking
// infrastructure details.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrNotRegistered     = errors.New("public key not registered")
	ErrInvalidCredential = errors.New("invalid api key")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrDeviceDeactivated = errors.New("device deactivated")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrBadRequest        = errors.New("bad request")
)
