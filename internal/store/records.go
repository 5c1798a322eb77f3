// Package store implements the entity store, the search service and the sale
// coordinator on top of the SQLite backing database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/solehq/soletrack/internal/model"
)

// recordColumns is the column list for every record query, matching the
// order expected by scanRecord.
const recordColumns = `id, scan_code, location, purchase_date, sale_date,
	model_name, name, size, vendor, price_cents, notes, photo_mime,
	created_at, updated_at`

// rowScanner abstracts *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// execer abstracts *sql.DB and *sql.Tx for statements that run either
// standalone or inside a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func scanRecord(row rowScanner) (*model.InventoryRecord, error) {
	r := &model.InventoryRecord{}
	var scanCode, saleDate, size, notes, photoMime sql.NullString
	var purchaseDate string
	var priceCents int64

	err := row.Scan(&r.ID, &scanCode, &r.Location, &purchaseDate, &saleDate,
		&r.ModelName, &r.Name, &size, &r.Vendor, &priceCents, &notes,
		&photoMime, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}

	r.ScanCode = scanCode.String
	r.Size = size.String
	r.Notes = notes.String
	r.PhotoMime = photoMime.String
	r.Price = model.PriceFromCents(priceCents)

	r.PurchaseDate, err = model.ParseDate(purchaseDate)
	if err != nil {
		return nil, fmt.Errorf("stored purchase date: %w", err)
	}
	if saleDate.Valid {
		d, err := model.ParseDate(saleDate.String)
		if err != nil {
			return nil, fmt.Errorf("stored sale date: %w", err)
		}
		r.SaleDate = &d
	}

	return r, nil
}

// nullIfEmpty maps "" to NULL for optional text columns.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullDate(d *model.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// CreateRecord validates the draft against the given rules, allocates a new
// identity and persists the record. Identities are UUIDs and are never
// reused, even after a delete. When the draft carries a scan code, the
// scan-code master is refreshed in the same transaction.
func CreateRecord(ctx context.Context, db *sql.DB, draft model.RecordDraft, rules model.ValidationRules) (*model.InventoryRecord, error) {
	if err := draft.Validate(rules); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now().UTC()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO inventory_records
		 (id, scan_code, location, purchase_date, sale_date, model_name, name,
		  size, vendor, price_cents, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, nullIfEmpty(draft.ScanCode), draft.Location, draft.PurchaseDate.String(),
		nullDate(draft.SaleDate), draft.ModelName, draft.Name, nullIfEmpty(draft.Size),
		draft.Vendor, model.PriceCents(draft.Price), nullIfEmpty(draft.Notes), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating record: %w", err)
	}

	if draft.ScanCode != "" {
		if err := UpsertScanCodeInfo(ctx, tx, draft.ScanCode, draft.ModelName, draft.Name); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing record: %w", err)
	}

	return GetRecord(ctx, db, id)
}

// GetRecord returns a record by ID, or nil if it does not exist.
func GetRecord(ctx context.Context, db *sql.DB, id string) (*model.InventoryRecord, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM inventory_records WHERE id = ?`, id)
	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}
	return record, nil
}

// UpdateRecord replaces a record's editable field set in one atomic write.
// Returns nil if the record does not exist. The whole field set changes or
// none of it does.
func UpdateRecord(ctx context.Context, db *sql.DB, id string, draft model.RecordDraft, rules model.ValidationRules) (*model.InventoryRecord, error) {
	if err := draft.Validate(rules); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE inventory_records SET
		 scan_code = ?, location = ?, purchase_date = ?, sale_date = ?,
		 model_name = ?, name = ?, size = ?, vendor = ?, price_cents = ?,
		 notes = ?, updated_at = ?
		 WHERE id = ?`,
		nullIfEmpty(draft.ScanCode), draft.Location, draft.PurchaseDate.String(),
		nullDate(draft.SaleDate), draft.ModelName, draft.Name, nullIfEmpty(draft.Size),
		draft.Vendor, model.PriceCents(draft.Price), nullIfEmpty(draft.Notes), now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating record: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	if draft.ScanCode != "" {
		if err := UpsertScanCodeInfo(ctx, tx, draft.ScanCode, draft.ModelName, draft.Name); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing record update: %w", err)
	}

	return GetRecord(ctx, db, id)
}

// DeleteRecord hard-deletes a record. Returns false if it did not exist.
func DeleteRecord(ctx context.Context, db *sql.DB, id string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`DELETE FROM inventory_records WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting record: %w", err)
	}
	return affected > 0, nil
}

// DeleteRecords hard-deletes a batch of records, returning how many existed.
func DeleteRecords(ctx context.Context, db *sql.DB, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	result, err := db.ExecContext(ctx,
		`DELETE FROM inventory_records WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting records: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting records: %w", err)
	}
	return affected, nil
}
