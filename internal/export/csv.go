// Package export moves inventory records in and out as CSV, the exchange
// format the rest of the tooling around the store speaks.
package export

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/solehq/soletrack/internal/model"
	"github.com/solehq/soletrack/internal/store"
)

// Columns is the CSV header, in export order. Imports may reorder columns
// and omit the optional ones.
var Columns = []string{
	"scan_code", "location", "purchase_date", "sale_date",
	"model_name", "name", "size", "vendor", "price", "notes",
}

// requiredColumns must be present in an import header.
var requiredColumns = []string{
	"location", "purchase_date", "model_name", "name", "vendor", "price",
}

// WriteCSV writes the records as CSV, header first.
func WriteCSV(w io.Writer, records []model.InventoryRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, rec := range records {
		saleDate := ""
		if rec.SaleDate != nil {
			saleDate = rec.SaleDate.String()
		}
		row := []string{
			rec.ScanCode,
			rec.Location,
			rec.PurchaseDate.String(),
			saleDate,
			rec.ModelName,
			rec.Name,
			rec.Size,
			rec.Vendor,
			rec.Price.StringFixed(2),
			rec.Notes,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// RowError reports why one CSV line could not be imported. Line numbers are
// 1-based and count the header.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportResult summarizes an import run. Rows that fail are skipped; the
// rest are created, so a partially bad file still loads its good rows.
type ImportResult struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`
}

// ImportCSV reads records from CSV and creates them. The header decides the
// column order; the required columns must all be present.
func ImportCSV(ctx context.Context, db *sql.DB, r io.Reader, rules model.ValidationRules) (*ImportResult, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}

	result := &ImportResult{Errors: []RowError{}}
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}

		draft, err := rowToDraft(row, index)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}

		if _, err := store.CreateRecord(ctx, db, draft, rules); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}
		result.Imported++
	}

	return result, nil
}

func rowToDraft(row []string, index map[string]int) (model.RecordDraft, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	draft := model.RecordDraft{
		ScanCode:  field("scan_code"),
		Location:  field("location"),
		ModelName: field("model_name"),
		Name:      field("name"),
		Size:      field("size"),
		Vendor:    field("vendor"),
		Notes:     field("notes"),
	}

	purchase, err := model.ParseDate(field("purchase_date"))
	if err != nil {
		return draft, fmt.Errorf("purchase_date: %w", err)
	}
	draft.PurchaseDate = purchase

	if v := field("sale_date"); v != "" {
		sale, err := model.ParseDate(v)
		if err != nil {
			return draft, fmt.Errorf("sale_date: %w", err)
		}
		draft.SaleDate = &sale
	}

	price, err := decimal.NewFromString(field("price"))
	if err != nil {
		return draft, fmt.Errorf("price: invalid amount %q", field("price"))
	}
	draft.Price = price

	return draft, nil
}
