package store

import (
	"context"
	"errors"

	"github.com/wardenauth/warden/internal/warden/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and a transaction primitive for the multi-step operations that
// must be atomic (session rotation's delete+insert in particular).
type Store interface {
	Users() Users
	Credentials() Credentials
	Roles() Roles
	Permissions() Permissions
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns nil
	// and rolling back otherwise. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id (role and permissions not attached).
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUserStatus sets the is_active flag and status together.
	UpdateUserStatus(ctx context.Context, userID string, isActive bool, status domain.Status) error

	// AssignRole sets the user's role.
	AssignRole(ctx context.Context, userID, roleID string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Credentials interface {
	// GetCredentialByUserID returns the 1:1 credential record for a user.
	GetCredentialByUserID(ctx context.Context, userID string) (domain.Credential, error)

	// GetCredentialByIdentifier looks a credential up by username, email or
	// phone. The caller must not reveal which identifier matched.
	GetCredentialByIdentifier(ctx context.Context, identifier string) (domain.Credential, error)

	// CreateCredential inserts the credential record at registration.
	CreateCredential(ctx context.Context, c domain.Credential) error

	// ReplacePasswordHash swaps the stored hash on password change. The
	// record is replaced, not versioned.
	ReplacePasswordHash(ctx context.Context, userID, newHash string) error
}

type Roles interface {
	// GetRoleByID fetches a role by its id.
	GetRoleByID(ctx context.Context, id string) (domain.Role, error)

	// GetRoleByName fetches a role by its unique name (used by bootstrap).
	GetRoleByName(ctx context.Context, name string) (domain.Role, error)

	// ListRoles returns all roles.
	ListRoles(ctx context.Context) ([]domain.Role, error)

	// CreateRole inserts a new role.
	CreateRole(ctx context.Context, r domain.Role) error
}

type Permissions interface {
	// ListByRole returns every permission owned by a role.
	ListByRole(ctx context.Context, roleID string) ([]domain.Permission, error)

	// CreatePermission inserts a permission. (Name, Entity, RoleID) is the
	// natural key: a duplicate create returns the existing row, not an error.
	CreatePermission(ctx context.Context, p domain.Permission) (domain.Permission, error)
}

type Sessions interface {
	// GetSession returns the live session for (userID, deviceID).
	GetSession(ctx context.Context, userID, deviceID string) (domain.Session, error)

	// CreateSession inserts a new session record.
	CreateSession(ctx context.Context, s domain.Session) error

	// DeleteSession removes the session for (userID, deviceID). Deleting a
	// non-existent session is not an error.
	DeleteSession(ctx context.Context, userID, deviceID string) error

	// DeleteAllUserSessions removes every session for the user.
	DeleteAllUserSessions(ctx context.Context, userID string) error

	// CountUserSessions returns the number of live sessions for the user.
	CountUserSessions(ctx context.Context, userID string) (int, error)
}
