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

// BootstrapService provisions the baseline authority the engine needs on
// first start: the SUPER_ADMIN role, its canonical permission set and an
// initial admin account. Every step is idempotent, so running it on every
// boot is safe and repairs drift (a permission row deleted by hand grows
// back on the next start).
type BootstrapService struct {
	Store store.Store
	RBAC  *RBACService
}

// Run executes the full bootstrap sequence. The admin user is only created
// when the users table is empty; an existing deployment never gains a
// surprise account.
func (s *BootstrapService) Run(ctx context.Context, data domain.BootstrapData) error {
	role, err := s.ensureSuperAdminRole(ctx)
	if err != nil {
		return err
	}

	if _, err := s.RBAC.EnsureRolePermissions(ctx, role.ID, domain.CanonicalSuperAdminPermissions()); err != nil {
		return err
	}

	return s.ensureAdminUser(ctx, role.ID, data)
}

func (s *BootstrapService) ensureSuperAdminRole(ctx context.Context) (domain.Role, error) {
	role, err := s.Store.Roles().GetRoleByName(ctx, domain.SuperAdminRole)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, err
	}

	role = domain.Role{
		ID:   idx.New().String(),
		Name: domain.SuperAdminRole,
	}
	err = withRetryTx(ctx, s.Store, "bootstrap_role", func(tx store.Tx) error {
		return tx.Roles().CreateRole(ctx, role)
	})
	if err != nil {
		// Lost a race against a parallel bootstrap; the winner's row serves.
		if errors.Is(err, store.ErrAlreadyExists) {
			return s.Store.Roles().GetRoleByName(ctx, domain.SuperAdminRole)
		}
		return domain.Role{}, err
	}

	slogx.FromContext(ctx).Info("bootstrap role created", "role", domain.SuperAdminRole)
	return role, nil
}

func (s *BootstrapService) ensureAdminUser(ctx context.Context, roleID string, data domain.BootstrapData) error {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	if data.AdminPassword == "" {
		return fmt.Errorf("%w: bootstrap admin password is required on an empty database", ErrInvalidInput)
	}

	username := strings.TrimSpace(data.AdminUsername)
	if username == "" {
		username = "admin"
	}
	name := strings.TrimSpace(data.AdminName)
	if name == "" {
		name = "Administrator"
	}

	hash, err := cryptox.HashPassword(data.AdminPassword)
	if err != nil {
		return err
	}

	user := domain.User{
		ID:       idx.New().String(),
		Name:     name,
		RoleID:   roleID,
		IsActive: true,
		Status:   domain.StatusActivated,
	}
	cred := domain.Credential{
		ID:           idx.New().String(),
		UserID:       user.ID,
		Username:     username,
		Email:        strings.TrimSpace(data.AdminEmail),
		PasswordHash: hash,
	}

	err = withRetryTx(ctx, s.Store, "bootstrap_admin", func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.Credentials().CreateCredential(ctx, cred)
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("bootstrap admin created",
		"user_id", user.ID,
		"username", username,
	)
	return nil
}
