package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/solehq/soletrack/internal/model"
)

// Sale outcomes.
const (
	SaleSold        = "sold"
	SaleNoMatch     = "no_match"
	SaleAmbiguous   = "ambiguous"
	SaleAlreadySold = "already_sold"
	SaleNotFound    = "not_found"
)

// SaleResult is the outcome of a sale attempt. Record is set for Sold,
// Candidates for Ambiguous. AlreadySold and NoMatch are benign race
// outcomes, not errors: a second scan of a unit someone else just sold is
// expected at a point of sale.
type SaleResult struct {
	Status     string                  `json:"status"`
	Record     *model.InventoryRecord  `json:"record,omitempty"`
	Candidates []model.InventoryRecord `json:"candidates,omitempty"`
}

// SellByID performs the guarded sale transition on one record. The
// read-modify-write is collapsed into a single UPDATE guarded on
// `sale_date IS NULL`, so under any number of concurrent calls exactly one
// caller observes Sold and the rest observe AlreadySold.
func SellByID(ctx context.Context, db *sql.DB, id string, saleDate model.Date) (*SaleResult, error) {
	if saleDate.IsZero() {
		return nil, model.Invalid(model.FieldSaleDate, "required")
	}

	record, err := GetRecord(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return &SaleResult{Status: SaleNotFound}, nil
	}
	if saleDate.Before(record.PurchaseDate) {
		return nil, model.Invalid(model.FieldSaleDate, "must not precede the purchase date")
	}

	result, err := db.ExecContext(ctx,
		`UPDATE inventory_records SET sale_date = ?, updated_at = ?
		 WHERE id = ? AND sale_date IS NULL`,
		saleDate.String(), time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("selling record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("selling record: %w", err)
	}

	if affected == 0 {
		// Lost the race or the record vanished; re-read to tell which.
		record, err := GetRecord(ctx, db, id)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return &SaleResult{Status: SaleNotFound}, nil
		}
		return &SaleResult{Status: SaleAlreadySold, Record: record}, nil
	}

	sold, err := GetRecord(ctx, db, id)
	if err != nil {
		return nil, err
	}
	return &SaleResult{Status: SaleSold, Record: sold}, nil
}

// Sell claims one in-stock unit for a scan code. With no eligible unit it
// reports NoMatch; with several it reports Ambiguous and mutates nothing,
// leaving disambiguation (SellByID on a chosen candidate) to the caller.
// With exactly one it attempts the guarded transition; losing that race
// re-routes through a fresh candidate read, so duplicate concurrent scans
// settle as one Sold and the rest NoMatch or Ambiguous, never a double sale.
func Sell(ctx context.Context, db *sql.DB, scanCode string, saleDate model.Date) (*SaleResult, error) {
	if scanCode == "" {
		return nil, model.Invalid(model.FieldScanCode, "required")
	}
	if saleDate.IsZero() {
		return nil, model.Invalid(model.FieldSaleDate, "required")
	}

	for {
		candidates, err := findInStockByScanCode(ctx, db, scanCode)
		if err != nil {
			return nil, err
		}

		switch len(candidates) {
		case 0:
			return &SaleResult{Status: SaleNoMatch}, nil
		case 1:
			result, err := SellByID(ctx, db, candidates[0].ID, saleDate)
			if err != nil {
				return nil, err
			}
			if result.Status == SaleSold {
				return result, nil
			}
			// Someone else claimed it between our read and write.
			// The candidate set has shrunk; evaluate it again.
		default:
			return &SaleResult{Status: SaleAmbiguous, Candidates: candidates}, nil
		}
	}
}
