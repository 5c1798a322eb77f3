package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/solehq/soletrack/internal/model"
)

// Stats summarizes the inventory: unit counts and price aggregates.
// InStockValue sums the price of unsold units only.
type Stats struct {
	TotalRecords   int             `json:"total_records"`
	SoldRecords    int             `json:"sold_records"`
	InStockRecords int             `json:"in_stock_records"`
	InStockValue   decimal.Decimal `json:"in_stock_value"`
	AveragePrice   decimal.Decimal `json:"average_price"`
	MinPrice       decimal.Decimal `json:"min_price"`
	MaxPrice       decimal.Decimal `json:"max_price"`
}

// Statistics computes inventory aggregates in one pass over the table.
func Statistics(ctx context.Context, db *sql.DB) (*Stats, error) {
	var total, sold int
	var stockCents, sumCents, minCents, maxCents int64

	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COUNT(sale_date),
		        IFNULL(SUM(CASE WHEN sale_date IS NULL THEN price_cents END), 0),
		        IFNULL(SUM(price_cents), 0),
		        IFNULL(MIN(price_cents), 0),
		        IFNULL(MAX(price_cents), 0)
		 FROM inventory_records`,
	).Scan(&total, &sold, &stockCents, &sumCents, &minCents, &maxCents)
	if err != nil {
		return nil, fmt.Errorf("computing statistics: %w", err)
	}

	stats := &Stats{
		TotalRecords:   total,
		SoldRecords:    sold,
		InStockRecords: total - sold,
		InStockValue:   model.PriceFromCents(stockCents),
		AveragePrice:   decimal.Zero,
		MinPrice:       model.PriceFromCents(minCents),
		MaxPrice:       model.PriceFromCents(maxCents),
	}
	if total > 0 {
		stats.AveragePrice = model.PriceFromCents(sumCents).
			Div(decimal.NewFromInt(int64(total))).Round(2)
	}
	return stats, nil
}
