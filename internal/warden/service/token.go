package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wardenauth/warden/internal/warden/domain"
	"github.com/wardenauth/warden/internal/warden/obs"
	"github.com/wardenauth/warden/internal/warden/store"
	"github.com/wardenauth/warden/pkg/cryptox"
	"github.com/wardenauth/warden/pkg/idx"
	"github.com/wardenauth/warden/pkg/jwtx"
	"github.com/wardenauth/warden/pkg/slogx"
)

// TokenService owns the session token lifecycle: issuance, verification,
// rotation and revocation. Session records are mutated only through
// transactions so a rotation never leaves zero or two rows for a
// (user, device) pair.
type TokenService struct {
	Signer     *jwtx.Signer
	Store      store.Store
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	ActionTTL  time.Duration
}

// IssueSessionTokens signs a fresh access+refresh pair for (userID, deviceID)
// and replaces any prior session record for the pair atomically. Two
// concurrent calls race on the delete+insert; last writer wins and the loser's
// refresh token simply stops matching the stored hash.
func (s *TokenService) IssueSessionTokens(ctx context.Context, userID, deviceID string) (*domain.TokenPair, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrUnauthorized)
	}

	now := time.Now().UTC()

	accessToken, err := s.Signer.SignSession(userID, deviceID, s.AccessTTL, now)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.Signer.SignSession(userID, deviceID, s.RefreshTTL, now)
	if err != nil {
		return nil, err
	}

	session := domain.Session{
		ID:               idx.New().String(),
		UserID:           userID,
		DeviceID:         deviceID,
		AccessToken:      accessToken,
		RefreshTokenHash: cryptox.FingerprintToken(refreshToken),
		IssuedAt:         now,
	}

	err = withRetryTx(ctx, s.Store, "issue_session", func(tx store.Tx) error {
		if err := tx.Sessions().DeleteSession(ctx, userID, deviceID); err != nil {
			return err
		}
		return tx.Sessions().CreateSession(ctx, session)
	})
	if err != nil {
		return nil, err
	}

	slogx.Session(ctx, userID, deviceID).Info("session issued")
	obs.RecordTokensIssued("session")

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// IssueActionToken signs a short-lived stateless token for an out-of-band
// email flow. Nothing is persisted.
func (s *TokenService) IssueActionToken(ctx context.Context, email string, action domain.ActionType) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", fmt.Errorf("%w: missing email", ErrInvalidInput)
	}

	token, err := s.Signer.SignAction(email, string(action), s.ActionTTL, time.Now().UTC())
	if err != nil {
		return "", err
	}
	obs.RecordTokensIssued("action")
	return token, nil
}

// VerifySession validates a session token's signature and expiry and returns
// its claims. Failure kinds are preserved: a forged token is ErrInvalidToken,
// a stale one ErrTokenExpired, anything else ErrTokenVerification.
//
// allowExpired=true decodes an expired token without re-validating the
// signature. That is only safe for payload hints on out-of-band flows; the
// request pipeline always passes false.
func (s *TokenService) VerifySession(token string, allowExpired bool) (jwtx.SessionClaims, error) {
	claims, err := s.Signer.ParseSession(token, allowExpired)
	if err != nil {
		return jwtx.SessionClaims{}, mapTokenErr(err)
	}
	return claims, nil
}

// VerifyAction is VerifySession for action tokens.
func (s *TokenService) VerifyAction(token string, allowExpired bool) (jwtx.ActionClaims, error) {
	claims, err := s.Signer.ParseAction(token, allowExpired)
	if err != nil {
		return jwtx.ActionClaims{}, mapTokenErr(err)
	}
	return claims, nil
}

// Rotate exchanges a refresh token for a new pair. Refresh tokens are single
// use: rotation replaces the session record wholesale, so presenting the same
// token again fails the stored-hash comparison.
func (s *TokenService) Rotate(ctx context.Context, refreshToken, deviceID string) (*domain.TokenPair, error) {
	claims, err := s.VerifySession(refreshToken, false)
	if err != nil {
		return nil, err
	}
	log := slogx.Session(ctx, claims.UserID(), deviceID)

	session, err := s.Store.Sessions().GetSession(ctx, claims.UserID(), deviceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("rotation for absent session")
			return nil, fmt.Errorf("%w: no active session", ErrUnauthorized)
		}
		return nil, err
	}

	if !cryptox.FingerprintEqual(refreshToken, session.RefreshTokenHash) {
		log.Warn("rotation with stale refresh token")
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthorized)
	}

	pair, err := s.IssueSessionTokens(ctx, claims.UserID(), deviceID)
	if err != nil {
		return nil, err
	}

	obs.RecordRotation()
	return pair, nil
}

// Revoke deletes the one session for (userID, deviceID).
func (s *TokenService) Revoke(ctx context.Context, userID, deviceID string) error {
	err := withRetryTx(ctx, s.Store, "revoke_session", func(tx store.Tx) error {
		return tx.Sessions().DeleteSession(ctx, userID, deviceID)
	})
	if err != nil {
		return err
	}

	slogx.Session(ctx, userID, deviceID).Info("session revoked")
	obs.RecordRevocation(1)
	return nil
}

// RevokeAll deletes every session for the user, logging them out everywhere.
func (s *TokenService) RevokeAll(ctx context.Context, userID string) error {
	var count int
	err := withRetryTx(ctx, s.Store, "revoke_all_sessions", func(tx store.Tx) error {
		n, err := tx.Sessions().CountUserSessions(ctx, userID)
		if err != nil {
			return err
		}
		count = n
		return tx.Sessions().DeleteAllUserSessions(ctx, userID)
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("all sessions revoked", "user_id", userID, "count", count)
	obs.RecordRevocation(count)
	return nil
}

func mapTokenErr(err error) error {
	switch {
	case errors.Is(err, jwtx.ErrInvalidSig):
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	case errors.Is(err, jwtx.ErrExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		// Malformed tokens and any other decode failure collapse into the
		// generic verification error.
		return fmt.Errorf("%w: %v", ErrTokenVerification, err)
	}
}
