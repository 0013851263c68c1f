// Package common defines shared constants and sentinel errors used across
// client and server layers of SealVault. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Vault metadata lifecycle errors.
	ErrorAlreadyRegistered = errors.New("vault already registered")
	ErrorNotRegistered     = errors.New("vault not registered")

	// Validation errors, raised before any store mutation.
	ErrorInvalidInput = errors.New("invalid input")
	ErrorInvalidPin   = errors.New("invalid pin")

	// Entry-specific errors.
	ErrorDuplicateName = errors.New("duplicate entry name")
	ErrorEntryTooLarge = errors.New("entry too large")
	ErrorQuotaExceeded = errors.New("entry quota exceeded")
	ErrorForbidden     = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
