package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/wardenauth/warden/internal/warden/domain"
	"github.com/wardenauth/warden/internal/warden/guard"
	"github.com/wardenauth/warden/internal/warden/service"
	"github.com/wardenauth/warden/pkg/httpx"
)

// AuthHandler owns the credential and session lifecycle endpoints.
type AuthHandler struct {
	AuthService  *service.AuthService
	TokenService *service.TokenService
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // seconds until access expiry
}

func newTokenResponse(pair *domain.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int64(pair.ExpiresIn.Seconds()),
	}
}

// deviceID reads the device binding header. Sessions are keyed by
// (user, device), so credential endpoints cannot proceed without it.
func deviceID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.Header.Get(guard.HeaderDeviceID))
	if id == "" {
		return "", fmt.Errorf("%w: missing device id header", service.ErrUnauthorized)
	}
	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed JSON body.")
		return false
	}
	return true
}

// HandleLogin handles POST /v1/auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	device, err := deviceID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pair, err := h.AuthService.Login(r.Context(), req.Identifier, req.Password, device)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(pair))
}

// HandleRefresh handles POST /v1/auth/refresh: single-use refresh rotation.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	device, err := deviceID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pair, err := h.TokenService.Rotate(r.Context(), req.RefreshToken, device)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(pair))
}

// HandleRegister handles POST /v1/auth/register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.AuthService.Register(r.Context(), service.RegisterParams{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]any{
		"user_id": user.ID,
		"status":  string(user.Status),
	})
}

// HandleVerifyEmail handles POST /v1/auth/verify-email: consumes an action
// token and activates the account.
func (h *AuthHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.AuthService.VerifyEmail(r.Context(), req.Token); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleRequestEmailVerify handles POST /v1/auth/verify-email/request. The
// token is returned in the response; wiring a mail sender is the deployer's
// concern, not this service's.
func (h *AuthHandler) HandleRequestEmailVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := h.TokenService.IssueActionToken(r.Context(), req.Email, domain.ActionEmailVerify)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"action_token": token})
}

// HandleRequestPasswordReset handles POST /v1/auth/password-reset/request.
// Like email verification, token delivery is left to the deployer.
func (h *AuthHandler) HandleRequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := h.TokenService.IssueActionToken(r.Context(), req.Email, domain.ActionPasswordReset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"action_token": token})
}

// HandleResetPassword handles POST /v1/auth/password-reset: consumes the
// action token and replaces the password.
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.AuthService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleLogout handles POST /v1/auth/logout: revokes the caller's session on
// this device only.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	id, ok := guard.IdentityFromContext(r.Context())
	if !ok {
		writeServiceError(w, service.ErrUnauthorized)
		return
	}

	if err := h.TokenService.Revoke(r.Context(), id.User.ID, id.DeviceID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleLogoutAll handles POST /v1/auth/logout-all: revokes every session
// the caller holds, on every device.
func (h *AuthHandler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	id, ok := guard.IdentityFromContext(r.Context())
	if !ok {
		writeServiceError(w, service.ErrUnauthorized)
		return
	}

	if err := h.TokenService.RevokeAll(r.Context(), id.User.ID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleChangePassword handles POST /v1/auth/password. A successful change
// revokes every session, so the caller must log in again.
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := guard.IdentityFromContext(r.Context())
	if !ok {
		writeServiceError(w, service.ErrUnauthorized)
		return
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.AuthService.ChangePassword(r.Context(), id.User.ID, req.OldPassword, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
