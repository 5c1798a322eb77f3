package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ScanCodeInfo is the scan-code master entry: the last-seen model and
// product name for a code, used by the front ends to autofill forms.
type ScanCodeInfo struct {
	ScanCode  string    `json:"scan_code"`
	ModelName string    `json:"model_name"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpsertScanCodeInfo refreshes the master entry for a scan code. Called from
// record create/update transactions so the master tracks the latest naming.
func UpsertScanCodeInfo(ctx context.Context, ex execer, scanCode, modelName, name string) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO scan_codes (scan_code, model_name, name) VALUES (?, ?, ?)
		 ON CONFLICT (scan_code) DO UPDATE SET
		   model_name = excluded.model_name,
		   name = excluded.name,
		   updated_at = CURRENT_TIMESTAMP`,
		scanCode, modelName, name,
	)
	if err != nil {
		return fmt.Errorf("upserting scan code info: %w", err)
	}
	return nil
}

// GetScanCodeInfo returns the master entry for a scan code, or nil if the
// code has never been seen.
func GetScanCodeInfo(ctx context.Context, db *sql.DB, scanCode string) (*ScanCodeInfo, error) {
	info := &ScanCodeInfo{}
	err := db.QueryRowContext(ctx,
		`SELECT scan_code, model_name, name, created_at, updated_at
		 FROM scan_codes WHERE scan_code = ?`, scanCode,
	).Scan(&info.ScanCode, &info.ModelName, &info.Name, &info.CreatedAt, &info.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting scan code info: %w", err)
	}
	return info, nil
}
