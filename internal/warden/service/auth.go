package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wardenauth/warden/internal/warden/domain"
	"github.com/wardenauth/warden/internal/warden/store"
	"github.com/wardenauth/warden/pkg/cryptox"
	"github.com/wardenauth/warden/pkg/idx"
	"github.com/wardenauth/warden/pkg/slogx"
)

// AuthService implements the credential flows around the token lifecycle:
// login, registration, email verification and password change.
type AuthService struct {
	Store  store.Store
	Tokens *TokenService
}

// Login verifies an identifier/password pair and issues a session for the
// device. The error for an unknown identifier and for a wrong password is
// identical so a caller cannot probe which identifiers exist, let alone which
// of username/email/phone matched.
func (s *AuthService) Login(ctx context.Context, identifier, password, deviceID string) (*domain.TokenPair, error) {
	log := slogx.FromContext(ctx)

	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	cred, err := s.Store.Credentials().GetCredentialByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("login failed: unknown identifier")
			return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, err
	}

	if cryptox.VerifyPassword(password, cred.PasswordHash) != nil {
		log.Info("login failed: password mismatch", "user_id", cred.UserID)
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	user, err := s.Store.Users().GetUserByID(ctx, cred.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		log.Info("login rejected: inactive account",
			"user_id", user.ID,
			"status", string(user.Status),
		)
		return nil, inactiveErr(user.Status)
	}

	return s.Tokens.IssueSessionTokens(ctx, user.ID, deviceID)
}

// RegisterParams carries the registration inputs. At least one of Username,
// Email and Phone is required.
type RegisterParams struct {
	Name     string
	Username string
	Email    string
	Phone    string
	Password string
}

// Register creates the user and its 1:1 credential record in one
// transaction. New accounts start PENDING and inactive until verified.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (domain.User, error) {
	cred := domain.Credential{
		Username: strings.TrimSpace(p.Username),
		Email:    strings.TrimSpace(p.Email),
		Phone:    strings.TrimSpace(p.Phone),
	}
	if !cred.HasIdentifier() {
		return domain.User{}, fmt.Errorf("%w: at least one of username, email, phone is required", ErrInvalidInput)
	}
	if p.Password == "" {
		return domain.User{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:       idx.New().String(),
		Name:     strings.TrimSpace(p.Name),
		IsActive: false,
		Status:   domain.StatusPending,
	}
	cred.ID = idx.New().String()
	cred.UserID = user.ID
	cred.PasswordHash = hash

	err = withRetryTx(ctx, s.Store, "register_user", func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.Credentials().CreateCredential(ctx, cred)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, fmt.Errorf("%w: identifier already taken", ErrInvalidInput)
		}
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered", "user_id", user.ID)
	return user, nil
}

// VerifyEmail consumes an EMAIL_VERIFY action token and activates the
// account it names.
func (s *AuthService) VerifyEmail(ctx context.Context, actionToken string) error {
	claims, err := s.Tokens.VerifyAction(actionToken, false)
	if err != nil {
		return err
	}
	if claims.Action != string(domain.ActionEmailVerify) {
		return fmt.Errorf("%w: wrong action type", ErrInvalidToken)
	}

	cred, err := s.Store.Credentials().GetCredentialByIdentifier(ctx, claims.Email())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: no account for verified email", ErrNotFound)
		}
		return err
	}

	if err := s.Store.Users().UpdateUserStatus(ctx, cred.UserID, true, domain.StatusActivated); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("email verified", "user_id", cred.UserID)
	return nil
}

// ResetPassword consumes a PASSWORD_RESET action token and replaces the
// credential's hash without the old password. Like ChangePassword it logs the
// user out everywhere.
func (s *AuthService) ResetPassword(ctx context.Context, actionToken, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", ErrInvalidInput)
	}

	claims, err := s.Tokens.VerifyAction(actionToken, false)
	if err != nil {
		return err
	}
	if claims.Action != string(domain.ActionPasswordReset) {
		return fmt.Errorf("%w: wrong action type", ErrInvalidToken)
	}

	cred, err := s.Store.Credentials().GetCredentialByIdentifier(ctx, claims.Email())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: no account for this email", ErrNotFound)
		}
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Store.Credentials().ReplacePasswordHash(ctx, cred.UserID, hash); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password reset", "user_id", cred.UserID)
	return s.Tokens.RevokeAll(ctx, cred.UserID)
}

// ChangePassword replaces the credential's hash after verifying the old
// password, then logs the user out everywhere: outstanding refresh tokens
// belong to the old password's era.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", ErrInvalidInput)
	}

	cred, err := s.Store.Credentials().GetCredentialByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: user does not exist", ErrNotFound)
		}
		return err
	}

	if cryptox.VerifyPassword(oldPassword, cred.PasswordHash) != nil {
		return fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Store.Credentials().ReplacePasswordHash(ctx, userID, hash); err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password changed", "user_id", userID)
	return s.Tokens.RevokeAll(ctx, userID)
}
