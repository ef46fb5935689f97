package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/wardenauth/warden/internal/warden/domain"
	"github.com/wardenauth/warden/internal/warden/store"
)

type credentialsRepo struct {
	db dbtx
}

const credentialColumns = `id, user_id, username, email, phone, password_hash, created_at, updated_at`

func (r *credentialsRepo) GetCredentialByUserID(ctx context.Context, userID string) (domain.Credential, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+credentialColumns+` FROM credentials WHERE user_id = ?`, userID)
	return scanCredential(row)
}

func (r *credentialsRepo) GetCredentialByIdentifier(ctx context.Context, identifier string) (domain.Credential, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+credentialColumns+` FROM credentials
		WHERE username = ? OR email = ? OR phone = ?`,
		identifier, identifier, identifier)
	return scanCredential(row)
}

func (r *credentialsRepo) CreateCredential(ctx context.Context, c domain.Credential) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO credentials (id, user_id, username, email, phone, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID,
		mapStringNull(c.Username), mapStringNull(c.Email), mapStringNull(c.Phone),
		c.PasswordHash, now, now)
	if err != nil && isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *credentialsRepo) ReplacePasswordHash(ctx context.Context, userID, newHash string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE credentials SET password_hash = ?, updated_at = ? WHERE user_id = ?`,
		newHash, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func scanCredential(row *sql.Row) (domain.Credential, error) {
	var (
		c                      domain.Credential
		username, email, phone sql.NullString
	)
	err := row.Scan(&c.ID, &c.UserID, &username, &email, &phone, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return domain.Credential{}, mapNotFound(err)
	}
	c.Username = mapNullString(username)
	c.Email = mapNullString(email)
	c.Phone = mapNullString(phone)
	return c, nil
}
