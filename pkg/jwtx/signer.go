package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingSecret = errors.New("jwtx: signing secret is empty")

	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrVerification = errors.New("jwtx: token verification failed")
)

// Signer signs and verifies HS256 tokens with a single process-wide secret.
type Signer struct {
	secret []byte
	issuer string
}

// NewSigner fails when the secret is absent so a misconfigured process dies
// at startup rather than issuing unverifiable tokens.
func NewSigner(secret, issuer string) (*Signer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &Signer{secret: []byte(secret), issuer: issuer}, nil
}

// Issuer returns the configured issuer claim value.
func (s *Signer) Issuer() string { return s.issuer }

// SignSession signs a session token for (userID, deviceID) expiring after ttl.
func (s *Signer) SignSession(userID, deviceID string, ttl time.Duration, now time.Time) (string, error) {
	claims := NewSessionClaims(userID, deviceID, s.issuer, ttl, now)
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// SignAction signs a stateless action token for an out-of-band email flow.
func (s *Signer) SignAction(email, action string, ttl time.Duration, now time.Time) (string, error) {
	claims := NewActionClaims(email, action, s.issuer, ttl, now)
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseSession validates signature and expiry and returns the session claims.
//
// When allowExpired is true and the only defect is expiry, the claims are
// decoded without re-validating the signature. This mirrors the historical
// expired-token escape hatch: the returned payload must be treated as
// untrusted hints, never as an authenticated identity. Callers on the
// authenticated path always pass allowExpired=false.
func (s *Signer) ParseSession(token string, allowExpired bool) (SessionClaims, error) {
	var claims SessionClaims
	if err := s.parse(token, &claims, allowExpired); err != nil {
		return SessionClaims{}, err
	}
	return claims, nil
}

// ParseAction is ParseSession for action tokens.
func (s *Signer) ParseAction(token string, allowExpired bool) (ActionClaims, error) {
	var claims ActionClaims
	if err := s.parse(token, &claims, allowExpired); err != nil {
		return ActionClaims{}, err
	}
	return claims, nil
}

func (s *Signer) parse(token string, claims jwt.Claims, allowExpired bool) error {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenExpired):
		if allowExpired {
			// Decode-only path: signature is NOT checked again.
			if _, _, uerr := parser.ParseUnverified(token, claims); uerr != nil {
				return ErrMalformed
			}
			return nil
		}
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	default:
		return ErrVerification
	}
}
