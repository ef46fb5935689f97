package http

import (
	"errors"
	"net/http"

	"github.com/wardenauth/warden/internal/warden/service"
	"github.com/wardenauth/warden/pkg/httpx"
)

// writeServiceError maps the service error taxonomy onto HTTP statuses and
// the uniform error body. Every deny category keeps its own kind string so
// clients can branch without parsing descriptions.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, service.ErrTokenExpired):
		httpx.WriteError(w, http.StatusUnauthorized, "token_expired", err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", err.Error())
	case errors.Is(err, service.ErrTokenVerification):
		httpx.WriteError(w, http.StatusUnauthorized, "token_verification_failed", err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.Is(err, service.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, service.ErrTransactionExhausted):
		httpx.WriteError(w, http.StatusServiceUnavailable, "storage_unavailable",
			"The server could not complete the operation. Do not retry immediately.")
	default:
		// Unexpected errors never leak their details to the client.
		httpx.WriteError(w, http.StatusInternalServerError, "server_error",
			"An internal error occurred.")
	}
}
