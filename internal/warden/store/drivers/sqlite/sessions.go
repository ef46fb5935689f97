package sqlite

import (
	"context"

	"github.com/wardenauth/warden/internal/warden/domain"
	"github.com/wardenauth/warden/internal/warden/store"
)

type sessionsRepo struct {
	db dbtx
}

func (r *sessionsRepo) GetSession(ctx context.Context, userID, deviceID string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, device_id, access_token, refresh_token_hash, issued_at
		FROM sessions WHERE user_id = ? AND device_id = ?`, userID, deviceID)

	var s domain.Session
	err := row.Scan(&s.ID, &s.UserID, &s.DeviceID, &s.AccessToken, &s.RefreshTokenHash, &s.IssuedAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, device_id, access_token, refresh_token_hash, issued_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.DeviceID, s.AccessToken, s.RefreshTokenHash, s.IssuedAt)
	if err != nil && isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, userID, deviceID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM sessions WHERE user_id = ? AND device_id = ?`, userID, deviceID)
	return err
}

func (r *sessionsRepo) DeleteAllUserSessions(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

func (r *sessionsRepo) CountUserSessions(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sessions WHERE user_id = ?`, userID).Scan(&count)
	return count, err
}
