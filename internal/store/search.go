package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/solehq/soletrack/internal/model"
	"github.com/solehq/soletrack/internal/query"
)

// SearchRecords compiles the filter spec and executes it. The total count
// and the returned page are read inside one transaction so that concurrent
// writes cannot skew pagination between the two queries.
func SearchRecords(ctx context.Context, db *sql.DB, spec model.FilterSpec) (*model.SearchResult, error) {
	compiled, err := query.Compile(spec)
	if err != nil {
		return nil, err
	}

	where := ""
	if compiled.Where != "" {
		where = " WHERE " + compiled.Where
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning search transaction: %w", err)
	}
	defer tx.Rollback()

	var total int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inventory_records`+where, compiled.Args...,
	).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("counting matches: %w", err)
	}

	args := append(append([]any{}, compiled.Args...), compiled.Limit, compiled.Offset)
	rows, err := tx.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM inventory_records`+where+
			` ORDER BY `+compiled.OrderBy+` LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("searching records: %w", err)
	}
	defer rows.Close()

	records := []model.InventoryRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("searching records: %w", err)
	}

	return &model.SearchResult{
		Records:    records,
		TotalCount: total,
		Page:       compiled.Page,
		PageSize:   compiled.PageSize,
		HasMore:    compiled.Offset+len(records) < total,
	}, nil
}

// ListRecords returns every record matching the filter spec, ignoring
// pagination. Used by the CSV exporter, which wants the whole result set in
// the spec's sort order.
func ListRecords(ctx context.Context, db *sql.DB, spec model.FilterSpec) ([]model.InventoryRecord, error) {
	compiled, err := query.Compile(spec)
	if err != nil {
		return nil, err
	}

	where := ""
	if compiled.Where != "" {
		where = " WHERE " + compiled.Where
	}

	return queryRecords(ctx, db,
		`SELECT `+recordColumns+` FROM inventory_records`+where+
			` ORDER BY `+compiled.OrderBy, compiled.Args...)
}

// FindByScanCode returns every record carrying the scan code, oldest
// purchase first so the sale coordinator claims the oldest stock.
func FindByScanCode(ctx context.Context, db *sql.DB, code string) ([]model.InventoryRecord, error) {
	return queryRecords(ctx, db,
		`SELECT `+recordColumns+` FROM inventory_records
		 WHERE scan_code = ? ORDER BY purchase_date ASC, id ASC`, code)
}

// findInStockByScanCode returns the unsold records carrying the scan code,
// oldest purchase first.
func findInStockByScanCode(ctx context.Context, db *sql.DB, code string) ([]model.InventoryRecord, error) {
	return queryRecords(ctx, db,
		`SELECT `+recordColumns+` FROM inventory_records
		 WHERE scan_code = ? AND sale_date IS NULL
		 ORDER BY purchase_date ASC, id ASC`, code)
}

func queryRecords(ctx context.Context, db *sql.DB, q string, args ...any) ([]model.InventoryRecord, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []model.InventoryRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// DistinctLocations returns every location currently present in the store.
func DistinctLocations(ctx context.Context, db *sql.DB) ([]string, error) {
	return distinctColumn(ctx, db, "location")
}

// DistinctVendors returns every vendor currently present in the store.
func DistinctVendors(ctx context.Context, db *sql.DB) ([]string, error) {
	return distinctColumn(ctx, db, "vendor")
}

func distinctColumn(ctx context.Context, db *sql.DB, column string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT DISTINCT `+column+` FROM inventory_records ORDER BY `+column)
	if err != nil {
		return nil, fmt.Errorf("listing distinct %s: %w", column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", column, err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
