package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/wardenauth/warden/internal/warden/domain"
	"github.com/wardenauth/warden/internal/warden/store"
	"github.com/wardenauth/warden/pkg/idx"
	"github.com/wardenauth/warden/pkg/slogx"
)

// RBACService resolves a user's role and permission set and evaluates
// allow/deny against route requirements. It only ever reads user, role and
// permission state as part of a decision; provisioning goes through
// EnsureRolePermissions.
type RBACService struct {
	Store store.Store
}

// LoadAuthorizedUser loads a user with role and permissions eagerly attached
// and rejects accounts that must not act: unknown users are NotFound,
// role-less users Forbidden, inactive users Forbidden with a status-specific
// message so BLOCKED, PENDING and plain disabled accounts are told apart.
func (s *RBACService) LoadAuthorizedUser(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, fmt.Errorf("%w: user does not exist", ErrNotFound)
		}
		return domain.User{}, err
	}

	if user.RoleID == "" {
		return domain.User{}, fmt.Errorf("%w: user has no assigned role", ErrForbidden)
	}

	if !user.IsActive {
		return domain.User{}, inactiveErr(user.Status)
	}

	role, err := s.Store.Roles().GetRoleByID(ctx, user.RoleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, fmt.Errorf("%w: role does not exist", ErrNotFound)
		}
		return domain.User{}, err
	}

	perms, err := s.Store.Permissions().ListByRole(ctx, role.ID)
	if err != nil {
		return domain.User{}, err
	}
	role.Permissions = perms
	user.Role = &role

	return user, nil
}

// Authorize evaluates the user against the operation's requirements. The
// checks are conjunctive: the role must match when roles are required AND
// every required permission name must be present. A nil return means allow.
func (s *RBACService) Authorize(user domain.User, requiredRoles, requiredPermissions []string) error {
	if len(requiredRoles) > 0 {
		if user.Role == nil || !slices.Contains(requiredRoles, user.Role.Name) {
			return fmt.Errorf("%w: requires one of roles [%s]",
				ErrForbidden, strings.Join(requiredRoles, ", "))
		}
	}

	if len(requiredPermissions) > 0 {
		have := make(map[string]struct{})
		for _, name := range user.PermissionNames() {
			have[name] = struct{}{}
		}

		var missing []string
		for _, name := range requiredPermissions {
			if _, ok := have[name]; !ok {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: missing permissions [%s]",
				ErrForbidden, strings.Join(missing, ", "))
		}
	}

	return nil
}

// EnsureRolePermissions repairs a role's canonical permission set
// idempotently: only the missing (name, entity) pairs are inserted, inside a
// single transaction, and a complete role results in zero inserts. Returns
// the number of permissions created.
func (s *RBACService) EnsureRolePermissions(ctx context.Context, roleID string, canonical []domain.PermissionSpec) (int, error) {
	current, err := s.Store.Permissions().ListByRole(ctx, roleID)
	if err != nil {
		return 0, err
	}

	existing := make(map[domain.PermissionSpec]struct{}, len(current))
	for _, p := range current {
		existing[domain.PermissionSpec{Name: p.Name, Entity: p.Entity}] = struct{}{}
	}

	var missing []domain.PermissionSpec
	for _, spec := range canonical {
		if _, ok := existing[spec]; !ok {
			missing = append(missing, spec)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	err = withRetryTx(ctx, s.Store, "ensure_role_permissions", func(tx store.Tx) error {
		for _, spec := range missing {
			_, err := tx.Permissions().CreatePermission(ctx, domain.Permission{
				ID:     idx.New().String(),
				Name:   spec.Name,
				Entity: spec.Entity,
				RoleID: roleID,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slogx.FromContext(ctx).Info("role permissions repaired",
		"role_id", roleID,
		"inserted", len(missing),
	)
	return len(missing), nil
}

func inactiveErr(status domain.Status) error {
	switch status {
	case domain.StatusBlocked:
		return fmt.Errorf("%w: account is blocked", ErrForbidden)
	case domain.StatusPending:
		return fmt.Errorf("%w: account is pending activation", ErrForbidden)
	default:
		return fmt.Errorf("%w: account is disabled", ErrForbidden)
	}
}
