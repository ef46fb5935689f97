package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wardenauth/warden/pkg/cryptox"
	"github.com/wardenauth/warden/pkg/jwtx"
)

func TestIssueSessionTokensReplacesExisting(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestTokenService(t, st)
	user := createActiveUser(t, st, "")

	first, err := svc.IssueSessionTokens(ctx, user.ID, "device-1")
	require.NoError(t, err)

	second, err := svc.IssueSessionTokens(ctx, user.ID, "device-1")
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// Re-issuing for the same device never leaves two live records.
	count, err := st.Sessions().CountUserSessions(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	session, err := st.Sessions().GetSession(ctx, user.ID, "device-1")
	require.NoError(t, err)
	require.True(t, cryptox.FingerprintEqual(second.RefreshToken, session.RefreshTokenHash))
	require.False(t, cryptox.FingerprintEqual(first.RefreshToken, session.RefreshTokenHash))
}

func TestIssueSessionTokensRequiresUserID(t *testing.T) {
	st := newTestStore(t)
	svc := newTestTokenService(t, st)

	_, err := svc.IssueSessionTokens(context.Background(), "", "device-1")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.IssueSessionTokens(context.Background(), "   ", "device-1")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestIssueSessionTokensPerDevice(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestTokenService(t, st)
	user := createActiveUser(t, st, "")

	_, err := svc.IssueSessionTokens(ctx, user.ID, "phone")
	require.NoError(t, err)
	_, err = svc.IssueSessionTokens(ctx, user.ID, "laptop")
	require.NoError(t, err)

	count, err := st.Sessions().CountUserSessions(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestRotateIsSingleUse(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestTokenService(t, st)
	user := createActiveUser(t, st, "")

	pair, err := svc.IssueSessionTokens(ctx, user.ID, "device-1")
	require.NoError(t, err)

	rotated, err := svc.Rotate(ctx, pair.RefreshToken, "device-1")
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The consumed refresh token no longer matches the stored fingerprint.
	_, err = svc.Rotate(ctx, pair.RefreshToken, "device-1")
	require.ErrorIs(t, err, ErrUnauthorized)

	// The replacement still works, and the pair still owns exactly one row.
	_, err = svc.Rotate(ctx, rotated.RefreshToken, "device-1")
	require.NoError(t, err)

	count, err := st.Sessions().CountUserSessions(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestRotateWithoutSession(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestTokenService(t, st)
	user := createActiveUser(t, st, "")

	// A validly signed refresh token is not enough: there must be a live
	// session record behind it.
	orphan, err := svc.Signer.SignSession(user.ID, "device-1", time.Hour, time.Now().UTC())
	require.NoError(t, err)

	_, err = svc.Rotate(ctx, orphan, "device-1")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRotateWrongDevice(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestTokenService(t, st)
	user := createActiveUser(t, st, "")

	pair, err := svc.IssueSessionTokens(ctx, user.ID, "device-1")
	require.NoError(t, err)

	_, err = svc.Rotate(ctx, pair.RefreshToken, "device-2")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifySessionFailureKinds(t *testing.T) {
	st := newTestStore(t)
	svc := newTestTokenService(t, st)

	t.Run("forged signature", func(t *testing.T) {
		other, err := jwtx.NewSigner("a-different-secret", "warden-test")
		require.NoError(t, err)
		forged, err := other.SignSession("user-1", "device-1", time.Minute, time.Now().UTC())
		require.NoError(t, err)

		_, err = svc.VerifySession(forged, false)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		stale, err := svc.Signer.SignSession("user-1", "device-1", time.Minute, time.Now().UTC().Add(-time.Hour))
		require.NoError(t, err)

		_, err = svc.VerifySession(stale, false)
		require.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("expired with escape hatch", func(t *testing.T) {
		stale, err := svc.Signer.SignSession("user-1", "device-1", time.Minute, time.Now().UTC().Add(-time.Hour))
		require.NoError(t, err)

		claims, err := svc.VerifySession(stale, true)
		require.NoError(t, err)
		require.Equal(t, "user-1", claims.UserID())
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.VerifySession("not-a-jwt", false)
		require.ErrorIs(t, err, ErrTokenVerification)
	})
}

func TestRevokeAndRevokeAll(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := newTestTokenService(t, st)
	user := createActiveUser(t, st, "")

	_, err := svc.IssueSessionTokens(ctx, user.ID, "phone")
	require.NoError(t, err)
	_, err = svc.IssueSessionTokens(ctx, user.ID, "laptop")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, user.ID, "phone"))
	count, err := st.Sessions().CountUserSessions(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	// Revoking an absent session stays quiet.
	require.NoError(t, svc.Revoke(ctx, user.ID, "phone"))

	require.NoError(t, svc.RevokeAll(ctx, user.ID))
	count, err = st.Sessions().CountUserSessions(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestIssueActionToken(t *testing.T) {
	st := newTestStore(t)
	svc := newTestTokenService(t, st)

	token, err := svc.IssueActionToken(context.Background(), "alice@example.com", "EMAIL_VERIFY")
	require.NoError(t, err)

	claims, err := svc.VerifyAction(token, false)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", claims.Email())
	require.Equal(t, "EMAIL_VERIFY", claims.Action)

	_, err = svc.IssueActionToken(context.Background(), "", "EMAIL_VERIFY")
	require.ErrorIs(t, err, ErrInvalidInput)
}
