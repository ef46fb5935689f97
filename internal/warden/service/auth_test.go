package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wardenauth/warden/internal/warden/domain"
	"github.com/wardenauth/warden/internal/warden/store"
	"github.com/wardenauth/warden/pkg/cryptox"
	"github.com/wardenauth/warden/pkg/idx"
)

func newAuthFixture(t *testing.T) (store.Store, *AuthService) {
	t.Helper()

	st := newTestStore(t)
	tokens := newTestTokenService(t, st)
	return st, &AuthService{Store: st, Tokens: tokens}
}

// createLogin provisions an active user with a credential for direct login.
func createLogin(t *testing.T, st store.Store, username, email, password string) domain.User {
	t.Helper()

	user := createActiveUser(t, st, "")
	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	require.NoError(t, st.Credentials().CreateCredential(context.Background(), domain.Credential{
		ID:           idx.New().String(),
		UserID:       user.ID,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}))
	return user
}

func TestLoginByAnyIdentifier(t *testing.T) {
	ctx := context.Background()
	st, svc := newAuthFixture(t)
	createLogin(t, st, "alice", "alice@example.com", "correct horse")

	for _, identifier := range []string{"alice", "alice@example.com"} {
		pair, err := svc.Login(ctx, identifier, "correct horse", "device-1")
		require.NoError(t, err, identifier)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.Equal(t, "Bearer", pair.TokenType)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	st, svc := newAuthFixture(t)
	createLogin(t, st, "alice", "alice@example.com", "correct horse")

	_, unknownErr := svc.Login(ctx, "nobody", "correct horse", "device-1")
	require.ErrorIs(t, unknownErr, ErrUnauthorized)

	_, wrongErr := svc.Login(ctx, "alice", "wrong password", "device-1")
	require.ErrorIs(t, wrongErr, ErrUnauthorized)

	// Same message whether the identifier or the password was wrong.
	require.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	ctx := context.Background()
	st, svc := newAuthFixture(t)
	user := createLogin(t, st, "bob", "", "hunter2hunter2")

	require.NoError(t, st.Users().UpdateUserStatus(ctx, user.ID, false, domain.StatusBlocked))

	_, err := svc.Login(ctx, "bob", "hunter2hunter2", "device-1")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	st, svc := newAuthFixture(t)

	t.Run("creates pending user", func(t *testing.T) {
		user, err := svc.Register(ctx, RegisterParams{
			Name:     "Carol",
			Email:    "carol@example.com",
			Password: "a long password",
		})
		require.NoError(t, err)
		require.Equal(t, domain.StatusPending, user.Status)
		require.False(t, user.IsActive)

		// Pending users cannot log in yet.
		_, err = svc.Login(ctx, "carol@example.com", "a long password", "device-1")
		require.ErrorIs(t, err, ErrForbidden)

		cred, err := st.Credentials().GetCredentialByIdentifier(ctx, "carol@example.com")
		require.NoError(t, err)
		require.NoError(t, cryptox.VerifyPassword("a long password", cred.PasswordHash))
	})

	t.Run("requires an identifier", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterParams{Name: "Nobody", Password: "pw-long-enough"})
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("requires a password", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterParams{Username: "dave"})
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("duplicate identifier", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterParams{
			Email:    "carol@example.com",
			Password: "another password",
		})
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestVerifyEmailActivatesAccount(t *testing.T) {
	ctx := context.Background()
	st, svc := newAuthFixture(t)

	user, err := svc.Register(ctx, RegisterParams{
		Email:    "erin@example.com",
		Password: "a long password",
	})
	require.NoError(t, err)

	token, err := svc.Tokens.IssueActionToken(ctx, "erin@example.com", domain.ActionEmailVerify)
	require.NoError(t, err)

	require.NoError(t, svc.VerifyEmail(ctx, token))

	loaded, err := st.Users().GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, loaded.IsActive)
	require.Equal(t, domain.StatusActivated, loaded.Status)
}

func TestVerifyEmailRejectsWrongAction(t *testing.T) {
	ctx := context.Background()
	_, svc := newAuthFixture(t)

	token, err := svc.Tokens.IssueActionToken(ctx, "erin@example.com", domain.ActionPasswordReset)
	require.NoError(t, err)

	err = svc.VerifyEmail(ctx, token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	st, svc := newAuthFixture(t)
	user := createLogin(t, st, "grace", "grace@example.com", "forgotten pw!")

	_, err := svc.Login(ctx, "grace", "forgotten pw!", "phone")
	require.NoError(t, err)

	t.Run("wrong action type rejected", func(t *testing.T) {
		token, err := svc.Tokens.IssueActionToken(ctx, "grace@example.com", domain.ActionEmailVerify)
		require.NoError(t, err)
		err = svc.ResetPassword(ctx, token, "replacement pw!")
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("resets and revokes", func(t *testing.T) {
		token, err := svc.Tokens.IssueActionToken(ctx, "grace@example.com", domain.ActionPasswordReset)
		require.NoError(t, err)
		require.NoError(t, svc.ResetPassword(ctx, token, "replacement pw!"))

		count, err := st.Sessions().CountUserSessions(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, 0, count)

		_, err = svc.Login(ctx, "grace", "replacement pw!", "phone")
		require.NoError(t, err)
	})

	t.Run("unknown email", func(t *testing.T) {
		token, err := svc.Tokens.IssueActionToken(ctx, "stranger@example.com", domain.ActionPasswordReset)
		require.NoError(t, err)
		err = svc.ResetPassword(ctx, token, "whatever pw!")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	ctx := context.Background()
	st, svc := newAuthFixture(t)
	user := createLogin(t, st, "frank", "", "old password!")

	_, err := svc.Login(ctx, "frank", "old password!", "phone")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "frank", "old password!", "laptop")
	require.NoError(t, err)

	t.Run("wrong old password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, user.ID, "not the old one", "new password!")
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("successful change logs out everywhere", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, user.ID, "old password!", "new password!"))

		count, err := st.Sessions().CountUserSessions(ctx, user.ID)
		require.NoError(t, err)
		require.Equal(t, 0, count)

		_, err = svc.Login(ctx, "frank", "old password!", "phone")
		require.ErrorIs(t, err, ErrUnauthorized)
		_, err = svc.Login(ctx, "frank", "new password!", "phone")
		require.NoError(t, err)
	})
}
