package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: partial index so scan lookups skip sold stock entirely.
	`CREATE INDEX IF NOT EXISTS idx_records_in_stock_scan
	     ON inventory_records(scan_code, purchase_date) WHERE sale_date IS NULL`,
}

// Migrate ensures the schema exists and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
