package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/wardenauth/warden/internal/warden/domain"
)

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, role_id, is_active, status, created_at, updated_at
		FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, role_id, is_active, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, mapStringNull(u.RoleID), u.IsActive, string(u.Status), now, now)
	return err
}

func (r *usersRepo) UpdateUserStatus(ctx context.Context, userID string, isActive bool, status domain.Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET is_active = ?, status = ?, updated_at = ? WHERE id = ?`,
		isActive, string(status), time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) AssignRole(ctx context.Context, userID, roleID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET role_id = ?, updated_at = ? WHERE id = ?`,
		roleID, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u      domain.User
		roleID sql.NullString
		status string
	)
	err := row.Scan(&u.ID, &u.Name, &roleID, &u.IsActive, &status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.RoleID = mapNullString(roleID)
	u.Status = domain.Status(status)
	return u, nil
}
