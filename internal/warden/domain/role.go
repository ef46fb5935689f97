package domain

import "time"

type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Permissions attached to this role. Populated by the RBAC resolver.
	Permissions []Permission
}

// Permission is a named capability scoped to an entity and owned by exactly
// one role. (Name, Entity, RoleID) is the natural key.
type Permission struct {
	ID        string
	Name      string
	Entity    string
	RoleID    string
	CreatedAt time.Time
}

// PermissionSpec names a permission without tying it to a role yet. Canonical
// permission sets are expressed as specs and bound to a role id at
// provisioning time.
type PermissionSpec struct {
	Name   string
	Entity string
}
