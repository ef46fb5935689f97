package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wardenauth/warden/internal/warden/domain"
	"github.com/wardenauth/warden/pkg/idx"
)

func TestLoadAuthorizedUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &RBACService{Store: st}

	role := createRole(t, st, "EDITOR")
	grantPermission(t, st, role.ID, domain.PermRead, domain.EntityUser)
	grantPermission(t, st, role.ID, domain.PermUpdate, domain.EntityUser)

	t.Run("loads role and permissions", func(t *testing.T) {
		user := createActiveUser(t, st, role.ID)

		loaded, err := svc.LoadAuthorizedUser(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded.Role)
		require.Equal(t, "EDITOR", loaded.Role.Name)
		require.ElementsMatch(t, []string{domain.PermRead, domain.PermUpdate}, loaded.PermissionNames())
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.LoadAuthorizedUser(ctx, idx.New().String())
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("user without role", func(t *testing.T) {
		user := createActiveUser(t, st, "")
		_, err := svc.LoadAuthorizedUser(ctx, user.ID)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("inactive statuses", func(t *testing.T) {
		for _, status := range []domain.Status{domain.StatusBlocked, domain.StatusPending} {
			user := domain.User{
				ID:     idx.New().String(),
				Name:   "Inactive",
				RoleID: role.ID,
				Status: status,
			}
			require.NoError(t, st.Users().CreateUser(ctx, user))

			_, err := svc.LoadAuthorizedUser(ctx, user.ID)
			require.ErrorIs(t, err, ErrForbidden, string(status))
		}
	})
}

func TestAuthorizeIsConjunctive(t *testing.T) {
	svc := &RBACService{}

	user := domain.User{
		ID: "u1",
		Role: &domain.Role{
			Name: "EDITOR",
			Permissions: []domain.Permission{
				{Name: "READ", Entity: "USER"},
				{Name: "UPDATE", Entity: "USER"},
			},
		},
	}

	t.Run("no requirements allows", func(t *testing.T) {
		require.NoError(t, svc.Authorize(user, nil, nil))
	})

	t.Run("role and permissions both satisfied", func(t *testing.T) {
		require.NoError(t, svc.Authorize(user, []string{"EDITOR"}, []string{"READ", "UPDATE"}))
	})

	t.Run("role satisfied but permission missing", func(t *testing.T) {
		err := svc.Authorize(user, []string{"EDITOR"}, []string{"READ", "DELETE"})
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("permissions satisfied but role wrong", func(t *testing.T) {
		err := svc.Authorize(user, []string{"ADMIN"}, []string{"READ"})
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("any of several roles", func(t *testing.T) {
		require.NoError(t, svc.Authorize(user, []string{"ADMIN", "EDITOR"}, nil))
	})

	t.Run("no role loaded", func(t *testing.T) {
		err := svc.Authorize(domain.User{ID: "u2"}, []string{"EDITOR"}, nil)
		require.ErrorIs(t, err, ErrForbidden)
	})
}

func TestEnsureRolePermissionsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &RBACService{Store: st}

	role := createRole(t, st, domain.SuperAdminRole)
	canonical := domain.CanonicalSuperAdminPermissions()

	inserted, err := svc.EnsureRolePermissions(ctx, role.ID, canonical)
	require.NoError(t, err)
	require.Equal(t, len(canonical), inserted)

	// Second run finds the set complete and writes nothing.
	inserted, err = svc.EnsureRolePermissions(ctx, role.ID, canonical)
	require.NoError(t, err)
	require.Equal(t, 0, inserted)

	perms, err := st.Permissions().ListByRole(ctx, role.ID)
	require.NoError(t, err)
	require.Len(t, perms, len(canonical))
}

func TestEnsureRolePermissionsRepairsDrift(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &RBACService{Store: st}

	role := createRole(t, st, domain.SuperAdminRole)
	canonical := domain.CanonicalSuperAdminPermissions()

	// Seed all but one permission by hand.
	for _, spec := range canonical[1:] {
		grantPermission(t, st, role.ID, spec.Name, spec.Entity)
	}

	inserted, err := svc.EnsureRolePermissions(ctx, role.ID, canonical)
	require.NoError(t, err)
	require.Equal(t, 1, inserted)
}
