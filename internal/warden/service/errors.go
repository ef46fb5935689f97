package service

import "errors"

// The error taxonomy every caller branches on. Failures propagate to the HTTP
// boundary with their kind intact; the boundary maps kinds to status codes.
var (
	// ErrUnauthorized covers missing or invalid credentials: bad passwords,
	// unknown identifiers, refresh tokens that no longer match a session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden covers authenticated-but-disallowed: inactive accounts,
	// missing roles, unmet role or permission requirements.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound covers absent referenced records (user, role).
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput covers malformed requests caught before any storage
	// access (missing identifiers, empty passwords).
	ErrInvalidInput = errors.New("invalid input")

	// Token verification failure kinds. Distinguished so a caller can tell an
	// expired token from a forged one, per the deny-category contract.
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenVerification = errors.New("token verification failed")

	// ErrTransactionExhausted is fatal: the store kept failing after every
	// retry attempt. Callers must not retry it.
	ErrTransactionExhausted = errors.New("transaction retries exhausted")
)
