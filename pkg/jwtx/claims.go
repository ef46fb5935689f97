// Package jwtx signs and verifies the two token shapes warden issues: session
// tokens bound to a (user, device) pair and short-lived action tokens for
// out-of-band email flows. Everything is HS256 with a single process-wide
// secret; there is no key rotation surface here.
package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Access tokens are short-lived, refresh tokens bound the
// window in which a stolen refresh token is useful, action tokens are meant to
// be clicked within minutes.
const (
	DefaultAccessTokenTTL  = time.Hour
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
	DefaultActionTokenTTL  = 5 * time.Minute
)

// SessionClaims are the claims embedded in access and refresh tokens. The
// subject is the user id; the device id pins the token to the session record
// keyed by (user, device).
type SessionClaims struct {
	jwt.RegisteredClaims

	DeviceID string `json:"did,omitempty"`
}

// UserID returns the subject claim.
func (c SessionClaims) UserID() string { return c.Subject }

// ActionClaims are the claims embedded in action tokens. The subject is the
// e-mail address the action concerns; Action names the flow (see
// domain.ActionType values).
type ActionClaims struct {
	jwt.RegisteredClaims

	Action string `json:"act,omitempty"`
}

// Email returns the subject claim.
func (c ActionClaims) Email() string { return c.Subject }

// NewSessionClaims builds minimally-correct session claims.
func NewSessionClaims(userID, deviceID, issuer string, ttl time.Duration, now time.Time) SessionClaims {
	return SessionClaims{
		RegisteredClaims: registered(userID, issuer, ttl, now),
		DeviceID:         deviceID,
	}
}

// NewActionClaims builds minimally-correct action claims.
func NewActionClaims(email, action, issuer string, ttl time.Duration, now time.Time) ActionClaims {
	return ActionClaims{
		RegisteredClaims: registered(email, issuer, ttl, now),
		Action:           action,
	}
}

func registered(subject, issuer string, ttl time.Duration, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        NewJTI(),
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
