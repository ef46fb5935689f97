package domain

import "time"

// Status is the lifecycle state of a user account. It is stored alongside the
// IsActive flag: IsActive gates access, Status explains why access is gated.
type Status string

const (
	StatusActivated Status = "ACTIVATED"
	StatusPending   Status = "PENDING"
	StatusBlocked   Status = "BLOCKED"
)

type User struct {
	ID        string
	Name      string
	RoleID    string // empty only transiently before provisioning
	IsActive  bool
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time

	// Role is eagerly attached (with its permissions) when the user is loaded
	// for an authorization decision. Nil otherwise.
	Role *Role
}

// PermissionNames returns the names of every permission attached to the
// user's role. Empty when no role is loaded.
func (u User) PermissionNames() []string {
	if u.Role == nil {
		return nil
	}
	names := make([]string, 0, len(u.Role.Permissions))
	for _, p := range u.Role.Permissions {
		names = append(names, p.Name)
	}
	return names
}

// Credential is the 1:1 login record for a user: the hashed password and the
// contact identifiers used for login lookup. It is replaced wholesale on
// password change, never versioned.
type Credential struct {
	ID           string
	UserID       string
	Username     string
	Email        string
	Phone        string
	PasswordHash string // argon2id encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasIdentifier reports whether at least one contact identifier is set.
// Registration requires one so the account remains reachable for login.
func (c Credential) HasIdentifier() bool {
	return c.Username != "" || c.Email != "" || c.Phone != ""
}
