package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"magazyn-plikow/internal/models"
)

type CreateFileParams struct {
	ID           string
	OwnerID      string
	OriginalName string
	StoredName   string
	MimeType     string
	SizeBytes    int64
}

func (q *Queries) CreateFile(ctx context.Context, arg CreateFileParams) (*models.File, error) {
	file := models.File{
		ID:           arg.ID,
		OwnerID:      arg.OwnerID,
		OriginalName: arg.OriginalName,
		StoredName:   arg.StoredName,
		MimeType:     arg.MimeType,
		SizeBytes:    arg.SizeBytes,
		UploadedAt:   time.Now().UTC(),
	}

	query := `
		INSERT INTO files (id, owner_id, original_name, stored_name, mime_type, size_bytes, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.db.ExecContext(ctx, query,
		file.ID, file.OwnerID, file.OriginalName, file.StoredName, file.MimeType, file.SizeBytes, file.UploadedAt,
	)
	if err != nil {
		return nil, err
	}

	return &file, nil
}

const fileColumns = `id, owner_id, original_name, stored_name, mime_type, size_bytes, uploaded_at`

func scanFileRows(rows *sql.Rows) ([]models.File, error) {
	defer rows.Close()

	files := []models.File{}
	for rows.Next() {
		var f models.File
		if err := rows.Scan(
			&f.ID, &f.OwnerID, &f.OriginalName, &f.StoredName, &f.MimeType, &f.SizeBytes, &f.UploadedAt,
		); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// GetFileOwned returns the file only when it belongs to ownerID. A file owned
// by someone else looks exactly like a file that does not exist.
func (q *Queries) GetFileOwned(ctx context.Context, id, ownerID string) (*models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = ? AND owner_id = ?`

	var f models.File
	err := q.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&f.ID, &f.OwnerID, &f.OriginalName, &f.StoredName, &f.MimeType, &f.SizeBytes, &f.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (q *Queries) ListFilesByOwner(ctx context.Context, ownerID string) ([]models.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE owner_id = ? ORDER BY uploaded_at, id`

	rows, err := q.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	return scanFileRows(rows)
}

// SearchFilesByOwner matches a literal substring of the original name,
// case-insensitively. instr() avoids LIKE so % and _ in the query stay literal.
func (q *Queries) SearchFilesByOwner(ctx context.Context, ownerID, search string) ([]models.File, error) {
	query := `
		SELECT ` + fileColumns + `
		FROM files
		WHERE owner_id = ? AND instr(lower(original_name), lower(?)) > 0
		ORDER BY uploaded_at, id
	`

	rows, err := q.db.QueryContext(ctx, query, ownerID, search)
	if err != nil {
		return nil, err
	}
	return scanFileRows(rows)
}

func (q *Queries) DeleteFile(ctx context.Context, id, ownerID string) (bool, error) {
	query := `DELETE FROM files WHERE id = ? AND owner_id = ?`

	res, err := q.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// SumSizesByOwner is the ground truth the usage counter must agree with.
func (q *Queries) SumSizesByOwner(ctx context.Context, ownerID string) (int64, error) {
	query := `SELECT COALESCE(SUM(size_bytes), 0) FROM files WHERE owner_id = ?`

	var total int64
	if err := q.db.QueryRowContext(ctx, query, ownerID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
