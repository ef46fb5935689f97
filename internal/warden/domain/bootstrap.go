package domain

// SuperAdminRole is the privileged bootstrap role. It must always hold the
// canonical permission set below; provisioning checks and repairs it
// idempotently.
const SuperAdminRole = "SUPER_ADMIN"

// Entity scopes used by the canonical permission set.
const (
	EntityUser       = "USER"
	EntityRole       = "ROLE"
	EntityPermission = "PERMISSION"
	EntitySession    = "SESSION"
)

// Permission names used by the canonical permission set.
const (
	PermCreate = "CREATE"
	PermRead   = "READ"
	PermUpdate = "UPDATE"
	PermDelete = "DELETE"
)

// CanonicalSuperAdminPermissions returns the fixed permission set the
// super-admin role must always possess: full CRUD over every managed entity.
func CanonicalSuperAdminPermissions() []PermissionSpec {
	entities := []string{EntityUser, EntityRole, EntityPermission, EntitySession}
	names := []string{PermCreate, PermRead, PermUpdate, PermDelete}

	specs := make([]PermissionSpec, 0, len(entities)*len(names))
	for _, entity := range entities {
		for _, name := range names {
			specs = append(specs, PermissionSpec{Name: name, Entity: entity})
		}
	}
	return specs
}

// BootstrapData describes the initial admin account created at provisioning.
type BootstrapData struct {
	AdminName     string
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}
