package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SetRecordPhoto stores a record's photo. Returns false if the record does
// not exist.
func SetRecordPhoto(ctx context.Context, db *sql.DB, id string, photo []byte, mime string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE inventory_records SET photo = ?, photo_mime = ?, updated_at = ?
		 WHERE id = ?`,
		photo, mime, time.Now().UTC(), id,
	)
	if err != nil {
		return false, fmt.Errorf("setting record photo: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("setting record photo: %w", err)
	}
	return affected > 0, nil
}

// GetRecordPhoto returns a record's photo data and MIME type. Both are zero
// when the record has no photo or does not exist.
func GetRecordPhoto(ctx context.Context, db *sql.DB, id string) ([]byte, string, error) {
	var photo []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT photo, photo_mime FROM inventory_records WHERE id = ?`, id,
	).Scan(&photo, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting record photo: %w", err)
	}
	return photo, mime.String, nil
}
