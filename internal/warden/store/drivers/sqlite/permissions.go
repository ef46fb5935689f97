package sqlite

import (
	"context"
	"time"

	"github.com/wardenauth/warden/internal/warden/domain"
)

type permissionsRepo struct {
	db dbtx
}

func (r *permissionsRepo) ListByRole(ctx context.Context, roleID string) ([]domain.Permission, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, entity, role_id, created_at
		FROM permissions WHERE role_id = ? ORDER BY entity, name`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []domain.Permission
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Entity, &p.RoleID, &p.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

// CreatePermission is duplicate-safe: inserting an existing (name, entity,
// role_id) triple is a no-op and the existing row is returned.
func (r *permissionsRepo) CreatePermission(ctx context.Context, p domain.Permission) (domain.Permission, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO permissions (id, name, entity, role_id, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name, entity, role_id) DO NOTHING`,
		p.ID, p.Name, p.Entity, p.RoleID, time.Now().UTC())
	if err != nil {
		return domain.Permission{}, err
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, entity, role_id, created_at
		FROM permissions WHERE name = ? AND entity = ? AND role_id = ?`,
		p.Name, p.Entity, p.RoleID)

	var out domain.Permission
	if err := row.Scan(&out.ID, &out.Name, &out.Entity, &out.RoleID, &out.CreatedAt); err != nil {
		return domain.Permission{}, mapNotFound(err)
	}
	return out, nil
}
