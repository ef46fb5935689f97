package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewSignerRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewSigner("", "warden")
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()

	s, err := NewSigner("test-secret", "warden")
	require.NoError(t, err)

	now := time.Now().UTC()
	token, err := s.SignSession("user-1", "macOSM1", time.Hour, now)
	require.NoError(t, err)

	claims, err := s.ParseSession(token, false)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID())
	require.Equal(t, "macOSM1", claims.DeviceID)
	require.Equal(t, "warden", claims.Issuer)
	require.WithinDuration(t, now.Add(time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestParseSessionRejectsForgedToken(t *testing.T) {
	t.Parallel()

	s, err := NewSigner("real-secret", "warden")
	require.NoError(t, err)
	other, err := NewSigner("other-secret", "warden")
	require.NoError(t, err)

	forged, err := other.SignSession("user-1", "dev", time.Hour, time.Now())
	require.NoError(t, err)

	_, err = s.ParseSession(forged, false)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestParseSessionMalformed(t *testing.T) {
	t.Parallel()

	s, err := NewSigner("secret", "warden")
	require.NoError(t, err)

	_, err = s.ParseSession("not-a-jwt", false)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestParseSessionExpiry(t *testing.T) {
	t.Parallel()

	s, err := NewSigner("secret", "warden")
	require.NoError(t, err)

	past := time.Now().Add(-2 * time.Hour)
	expired, err := s.SignSession("user-1", "dev", time.Hour, past)
	require.NoError(t, err)

	_, err = s.ParseSession(expired, false)
	require.ErrorIs(t, err, ErrExpired)

	// The decode-only escape hatch still yields the payload.
	claims, err := s.ParseSession(expired, true)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID())
}

func TestParseActionRoundTrip(t *testing.T) {
	t.Parallel()

	s, err := NewSigner("secret", "warden")
	require.NoError(t, err)

	token, err := s.SignAction("admin@example.com", "EMAIL_VERIFY", DefaultActionTokenTTL, time.Now())
	require.NoError(t, err)

	claims, err := s.ParseAction(token, false)
	require.NoError(t, err)
	require.Equal(t, "admin@example.com", claims.Email())
	require.Equal(t, "EMAIL_VERIFY", claims.Action)
}

func TestForgedExpiredTokenStillFailsSignatureFirst(t *testing.T) {
	t.Parallel()

	s, err := NewSigner("real-secret", "warden")
	require.NoError(t, err)
	other, err := NewSigner("other-secret", "warden")
	require.NoError(t, err)

	forged, err := other.SignSession("user-1", "dev", time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	// Signature validation precedes expiry, so the escape hatch never opens
	// for a token we did not sign.
	_, err = s.ParseSession(forged, true)
	require.ErrorIs(t, err, ErrInvalidSig)
}
