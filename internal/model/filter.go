package model

import "github.com/shopspring/decimal"

// Sortable columns for search results.
const (
	SortByLocation     = "location"
	SortByPurchaseDate = "purchase_date"
	SortBySaleDate     = "sale_date"
	SortByModelName    = "model_name"
	SortByName         = "name"
	SortByVendor       = "vendor"
	SortByPrice        = "price"
	SortByCreatedAt    = "created_at"
	SortByUpdatedAt    = "updated_at"
)

// Pagination defaults.
const (
	DefaultPageSize = 50
)

// FilterSpec is the caller-supplied set of optional search constraints.
// All provided filters combine with logical AND; a zero-valued field imposes
// no constraint. Keyword matches case-insensitively as a substring across
// model name, name, vendor and notes. Presence of either sale date bound
// implicitly restricts results to sold records.
type FilterSpec struct {
	Keyword   string `json:"keyword,omitempty"`
	Location  string `json:"location,omitempty"`
	Vendor    string `json:"vendor,omitempty"`
	ModelName string `json:"model_name,omitempty"`
	Name      string `json:"name,omitempty"`
	Size      string `json:"size,omitempty"`
	ScanCode  string `json:"scan_code,omitempty"`

	PurchaseDateFrom *Date `json:"purchase_date_from,omitempty"`
	PurchaseDateTo   *Date `json:"purchase_date_to,omitempty"`
	SaleDateFrom     *Date `json:"sale_date_from,omitempty"`
	SaleDateTo       *Date `json:"sale_date_to,omitempty"`

	PriceMin *decimal.Decimal `json:"price_min,omitempty"`
	PriceMax *decimal.Decimal `json:"price_max,omitempty"`

	// SortBy defaults to created_at, descending. SortAscending flips the
	// primary order only; ties always break by id ascending.
	SortBy        string `json:"sort_by,omitempty"`
	SortAscending bool   `json:"sort_ascending,omitempty"`

	// Page is 1-based. Zero values take the defaults (page 1, 50 per page).
	Page     int `json:"page,omitempty"`
	PageSize int `json:"page_size,omitempty"`
}

// SearchResult is one page of matching records plus the total number of
// matches ignoring pagination, both computed against the same snapshot.
type SearchResult struct {
	Records    []InventoryRecord `json:"records"`
	TotalCount int               `json:"total_count"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	HasMore    bool              `json:"has_more"`
}
