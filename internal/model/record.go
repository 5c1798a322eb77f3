package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecord is one physical pair of shoes and its metadata. A record
// with no sale date is in stock; the sale date is the single source of truth
// for stock status.
type InventoryRecord struct {
	ID           string          `json:"id"`
	ScanCode     string          `json:"scan_code,omitempty"`
	Location     string          `json:"location"`
	PurchaseDate Date            `json:"purchase_date"`
	SaleDate     *Date           `json:"sale_date,omitempty"`
	ModelName    string          `json:"model_name"`
	Name         string          `json:"name"`
	Size         string          `json:"size,omitempty"`
	Vendor       string          `json:"vendor"`
	Price        decimal.Decimal `json:"price"`
	Notes        string          `json:"notes,omitempty"`
	PhotoMime    string          `json:"photo_mime,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// InStock reports whether the record has not been sold.
func (r *InventoryRecord) InStock() bool {
	return r.SaleDate == nil
}

// RecordDraft is the caller-supplied field set for creating or updating a
// record. System fields (id, timestamps, photo) are owned by the store.
type RecordDraft struct {
	ScanCode     string          `json:"scan_code,omitempty"`
	Location     string          `json:"location"`
	PurchaseDate Date            `json:"purchase_date"`
	SaleDate     *Date           `json:"sale_date,omitempty"`
	ModelName    string          `json:"model_name"`
	Name         string          `json:"name"`
	Size         string          `json:"size,omitempty"`
	Vendor       string          `json:"vendor"`
	Price        decimal.Decimal `json:"price"`
	Notes        string          `json:"notes,omitempty"`
}

// Record field names, used by required-field policies and validation errors.
const (
	FieldScanCode     = "scan_code"
	FieldLocation     = "location"
	FieldPurchaseDate = "purchase_date"
	FieldSaleDate     = "sale_date"
	FieldModelName    = "model_name"
	FieldName         = "name"
	FieldSize         = "size"
	FieldVendor       = "vendor"
	FieldPrice        = "price"
	FieldNotes        = "notes"
)

// ValidationRules is the cross-cutting "which fields are required" policy.
// It is supplied by the caller alongside the draft, not hard-coded here.
type ValidationRules struct {
	RequiredFields []string
}

// DefaultRules requires the fields the schema itself treats as NOT NULL.
func DefaultRules() ValidationRules {
	return ValidationRules{
		RequiredFields: []string{
			FieldLocation, FieldPurchaseDate, FieldModelName,
			FieldName, FieldVendor, FieldPrice,
		},
	}
}

// Normalize trims whitespace from the draft's free-text fields.
func (d *RecordDraft) Normalize() {
	d.ScanCode = strings.TrimSpace(d.ScanCode)
	d.Location = strings.TrimSpace(d.Location)
	d.ModelName = strings.TrimSpace(d.ModelName)
	d.Name = strings.TrimSpace(d.Name)
	d.Size = strings.TrimSpace(d.Size)
	d.Vendor = strings.TrimSpace(d.Vendor)
	d.Notes = strings.TrimSpace(d.Notes)
}

// Validate checks the draft against the given rules. The price must be
// non-negative with at most two fractional digits, and a sale date, when
// present, must not precede the purchase date.
func (d *RecordDraft) Validate(rules ValidationRules) error {
	d.Normalize()

	for _, field := range rules.RequiredFields {
		switch field {
		case FieldScanCode:
			if d.ScanCode == "" {
				return Invalid(field, "required")
			}
		case FieldLocation:
			if d.Location == "" {
				return Invalid(field, "required")
			}
		case FieldPurchaseDate:
			if d.PurchaseDate.IsZero() {
				return Invalid(field, "required")
			}
		case FieldModelName:
			if d.ModelName == "" {
				return Invalid(field, "required")
			}
		case FieldName:
			if d.Name == "" {
				return Invalid(field, "required")
			}
		case FieldSize:
			if d.Size == "" {
				return Invalid(field, "required")
			}
		case FieldVendor:
			if d.Vendor == "" {
				return Invalid(field, "required")
			}
		case FieldPrice:
			// Zero is a valid price; required means the decimal exists,
			// which the range check below covers.
		}
	}

	if d.Price.IsNegative() {
		return Invalid(FieldPrice, "must not be negative")
	}
	if !CentPrecise(d.Price) {
		return Invalid(FieldPrice, "at most two decimal places")
	}
	if d.SaleDate != nil {
		if d.PurchaseDate.IsZero() {
			return Invalid(FieldSaleDate, "cannot be set without a purchase date")
		}
		if d.SaleDate.Before(d.PurchaseDate) {
			return Invalid(FieldSaleDate, "must not precede the purchase date")
		}
	}

	return nil
}

// CentPrecise reports whether the amount is an exact number of cents.
// Trailing-zero representations like 1.100 pass; sub-cent values do not.
func CentPrecise(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(2))
}

// PriceCents converts a validated price to integer cents for storage.
func PriceCents(price decimal.Decimal) int64 {
	return price.Shift(2).IntPart()
}

// PriceFromCents converts stored integer cents back to a decimal price.
func PriceFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
