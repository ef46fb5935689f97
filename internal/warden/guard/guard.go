package guard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/wardenauth/warden/internal/warden/obs"
	"github.com/wardenauth/warden/internal/warden/service"
	"github.com/wardenauth/warden/pkg/slogx"
)

// Header names the guard reads from every protected request. HeaderDeviceID
// is the canonical form of the device-id header clients send; lookups are
// case-insensitive.
const (
	HeaderAuthorization = "Authorization"
	HeaderDeviceID      = "Device-Id"

	bearerPrefix = "Bearer "
)

// Guard is the single chokepoint every protected operation passes through.
// It authenticates the session token, loads the caller with role and
// permissions attached, and evaluates the route's requirements. Exactly one
// decision is made and logged per request.
type Guard struct {
	Tokens *service.TokenService
	RBAC   *service.RBACService
}

// Decide evaluates a request against the route's metadata. On allow it
// returns a context carrying the caller's Identity (nil-identity for public
// bypasses); on deny it returns an error from the service taxonomy.
//
// The header checks are deliberately asymmetric: a request with no
// Authorization header at all is Forbidden, while a present-but-unusable
// header is Unauthorized. Callers that never attempted to authenticate are
// told apart from callers whose attempt failed.
func (g *Guard) Decide(ctx context.Context, r *http.Request, meta RouteMeta) (context.Context, error) {
	log := slogx.FromContext(ctx).With("path", r.URL.Path)

	if meta.IsPublic() {
		obs.RecordDecision(obs.OutcomeAllow, "public")
		return ctx, nil
	}

	token, err := bearerToken(r)
	if err != nil {
		reason := "missing_auth_header"
		if !errors.Is(err, service.ErrForbidden) {
			reason = "malformed_auth_header"
		}
		log.Info("access denied", "reason", reason)
		obs.RecordDecision(obs.OutcomeDeny, reason)
		return ctx, err
	}

	deviceID := strings.TrimSpace(r.Header.Get(HeaderDeviceID))
	if deviceID == "" {
		log.Info("access denied", "reason", "missing_device_id")
		obs.RecordDecision(obs.OutcomeDeny, "missing_device_id")
		return ctx, fmt.Errorf("%w: missing device id header", service.ErrUnauthorized)
	}

	claims, err := g.Tokens.VerifySession(token, false)
	if err != nil {
		log.Info("access denied", "reason", "token_rejected", "error", err)
		obs.RecordDecision(obs.OutcomeDeny, tokenReason(err))
		return ctx, err
	}

	user, err := g.RBAC.LoadAuthorizedUser(ctx, claims.UserID())
	if err != nil {
		log.Info("access denied",
			"user_id", claims.UserID(),
			"reason", "user_rejected",
			"error", err,
		)
		obs.RecordDecision(obs.OutcomeDeny, userReason(err))
		return ctx, err
	}

	if err := g.RBAC.Authorize(user, meta.Roles, meta.Permissions); err != nil {
		log.Info("access denied",
			"user_id", user.ID,
			"reason", "requirements_unmet",
			"error", err,
		)
		obs.RecordDecision(obs.OutcomeDeny, "requirements_unmet")
		return ctx, err
	}

	log.Debug("access allowed", "user_id", user.ID)
	obs.RecordDecision(obs.OutcomeAllow, "authorized")
	return WithIdentity(ctx, Identity{User: user, DeviceID: deviceID}), nil
}

// bearerToken extracts the JWT from the Authorization header. Absence and
// malformation are distinct failures by design.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get(HeaderAuthorization)
	if header == "" {
		return "", fmt.Errorf("%w: authorization header required", service.ErrForbidden)
	}

	if !strings.HasPrefix(header, bearerPrefix) {
		return "", fmt.Errorf("%w: authorization header is not a bearer token", service.ErrUnauthorized)
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	// A structurally valid JWT has exactly three dot-separated segments.
	// Cheap rejection before any signature work.
	if token == "" || strings.Count(token, ".") != 2 {
		return "", fmt.Errorf("%w: malformed bearer token", service.ErrUnauthorized)
	}
	return token, nil
}

func tokenReason(err error) string {
	switch {
	case errors.Is(err, service.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, service.ErrInvalidToken):
		return "token_forged"
	default:
		return "token_unverifiable"
	}
}

func userReason(err error) string {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return "user_unknown"
	case errors.Is(err, service.ErrForbidden):
		return "user_inactive_or_roleless"
	default:
		return "store_error"
	}
}
