package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"magazyn-plikow/internal/models"
)

type CreateUserParams struct {
	ID                string
	Email             string
	Name              string
	PasswordHash      string
	StorageLimitBytes int64
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (*models.User, error) {
	user := models.User{
		ID:                arg.ID,
		Email:             arg.Email,
		Name:              arg.Name,
		PasswordHash:      arg.PasswordHash,
		StorageUsedBytes:  0,
		StorageLimitBytes: arg.StorageLimitBytes,
		CreatedAt:         time.Now().UTC(),
	}

	query := `
		INSERT INTO users (id, email, name, password_hash, storage_used_bytes, storage_limit_bytes, created_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
	`
	_, err := q.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.StorageLimitBytes, user.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return &user, nil
}

const userColumns = `id, email, name, password_hash, storage_used_bytes, storage_limit_bytes, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.StorageUsedBytes,
		&user.StorageLimitBytes,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail compares emails case-sensitively. Upstream never promised
// anything else; making it case-insensitive is a product decision, not a fix.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(q.db.QueryRowContext(ctx, query, email))
}

func (q *Queries) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(q.db.QueryRowContext(ctx, query, id))
}

// AdjustUsage applies storage_used_bytes += delta only when the result stays
// within [0, storage_limit_bytes]. The guard lives in the UPDATE itself, so
// admission and commit are one step and cannot race against a stale counter.
func (q *Queries) AdjustUsage(ctx context.Context, id string, delta int64) error {
	query := `
		UPDATE users
		SET storage_used_bytes = storage_used_bytes + ?1
		WHERE id = ?2
		  AND storage_used_bytes + ?1 >= 0
		  AND storage_used_bytes + ?1 <= storage_limit_bytes
	`
	res, err := q.db.ExecContext(ctx, query, delta, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	user, err := q.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	if delta < 0 {
		return ErrNegativeUsage
	}
	return ErrQuotaExceeded
}
