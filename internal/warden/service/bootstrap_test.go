package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wardenauth/warden/internal/warden/domain"
)

func TestBootstrapProvisionsEverything(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	rbac := &RBACService{Store: st}
	svc := &BootstrapService{Store: st, RBAC: rbac}

	data := domain.BootstrapData{
		AdminEmail:    "root@example.com",
		AdminPassword: "superadmin-password",
	}
	require.NoError(t, svc.Run(ctx, data))

	role, err := st.Roles().GetRoleByName(ctx, domain.SuperAdminRole)
	require.NoError(t, err)

	perms, err := st.Permissions().ListByRole(ctx, role.ID)
	require.NoError(t, err)
	require.Len(t, perms, len(domain.CanonicalSuperAdminPermissions()))

	// Default username applies when none is configured, and the account can
	// act immediately.
	cred, err := st.Credentials().GetCredentialByIdentifier(ctx, "admin")
	require.NoError(t, err)

	admin, err := rbac.LoadAuthorizedUser(ctx, cred.UserID)
	require.NoError(t, err)
	require.Equal(t, domain.SuperAdminRole, admin.Role.Name)
	require.NoError(t, rbac.Authorize(admin,
		[]string{domain.SuperAdminRole},
		[]string{domain.PermCreate, domain.PermRead, domain.PermUpdate, domain.PermDelete},
	))
}

func TestBootstrapIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &BootstrapService{Store: st, RBAC: &RBACService{Store: st}}

	data := domain.BootstrapData{AdminPassword: "superadmin-password"}
	require.NoError(t, svc.Run(ctx, data))
	require.NoError(t, svc.Run(ctx, data))

	roles, err := st.Roles().ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 1)

	empty, err := st.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)
}

func TestBootstrapSkipsAdminWhenUsersExist(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &BootstrapService{Store: st, RBAC: &RBACService{Store: st}}

	createActiveUser(t, st, "")

	// No admin password needed: the database is not empty, so no admin
	// account is created.
	require.NoError(t, svc.Run(ctx, domain.BootstrapData{}))

	_, err := st.Credentials().GetCredentialByIdentifier(ctx, "admin")
	require.Error(t, err)
}

func TestBootstrapRequiresPasswordOnEmptyDatabase(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &BootstrapService{Store: st, RBAC: &RBACService{Store: st}}

	err := svc.Run(ctx, domain.BootstrapData{})
	require.ErrorIs(t, err, ErrInvalidInput)
}
