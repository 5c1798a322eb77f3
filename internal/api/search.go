package api

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/solehq/soletrack/internal/model"
	"github.com/solehq/soletrack/internal/store"
)

// SearchHandler handles search and lookup endpoints.
type SearchHandler struct {
	DB *sql.DB
}

// Search handles GET /api/records. Every filter is an optional query
// parameter; omitted parameters impose no constraint.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	spec, err := parseFilterSpec(r.URL.Query())
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := store.SearchRecords(r.Context(), h.DB, spec)
	if err != nil {
		storeError(w, "failed to search records", err)
		return
	}
	if result.Records == nil {
		result.Records = []model.InventoryRecord{}
	}
	jsonResponse(w, http.StatusOK, result)
}

// LookupScanCode handles GET /api/scan-codes/{code}: the master entry plus
// every record carrying the code, for barcode-driven autofill.
func (h *SearchHandler) LookupScanCode(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	info, err := store.GetScanCodeInfo(r.Context(), h.DB, code)
	if err != nil {
		storeError(w, "failed to look up scan code", err)
		return
	}

	records, err := store.FindByScanCode(r.Context(), h.DB, code)
	if err != nil {
		storeError(w, "failed to look up scan code", err)
		return
	}
	if records == nil {
		records = []model.InventoryRecord{}
	}

	if info == nil && len(records) == 0 {
		jsonError(w, http.StatusNotFound, "scan code not found")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"info":    info,
		"records": records,
	})
}

// Filters handles GET /api/filters: the distinct locations and vendors in
// use, for populating filter dropdowns.
func (h *SearchHandler) Filters(w http.ResponseWriter, r *http.Request) {
	locations, err := store.DistinctLocations(r.Context(), h.DB)
	if err != nil {
		storeError(w, "failed to list filters", err)
		return
	}
	vendors, err := store.DistinctVendors(r.Context(), h.DB)
	if err != nil {
		storeError(w, "failed to list filters", err)
		return
	}
	if locations == nil {
		locations = []string{}
	}
	if vendors == nil {
		vendors = []string{}
	}
	jsonResponse(w, http.StatusOK, map[string][]string{
		"locations": locations,
		"vendors":   vendors,
	})
}

// Stats handles GET /api/stats.
func (h *SearchHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := store.Statistics(r.Context(), h.DB)
	if err != nil {
		storeError(w, "failed to compute statistics", err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// parseFilterSpec builds a FilterSpec from URL query parameters. Malformed
// values are reported with their parameter name; semantic checks (unknown
// sort keys, inverted ranges) happen in the compiler.
func parseFilterSpec(q url.Values) (model.FilterSpec, error) {
	spec := model.FilterSpec{
		Keyword:   q.Get("keyword"),
		Location:  q.Get("location"),
		Vendor:    q.Get("vendor"),
		ModelName: q.Get("model_name"),
		Name:      q.Get("name"),
		Size:      q.Get("size"),
		ScanCode:  q.Get("scan_code"),
		SortBy:    q.Get("sort_by"),
	}

	var err error
	if spec.PurchaseDateFrom, err = parseDateParam(q, "purchase_date_from"); err != nil {
		return spec, err
	}
	if spec.PurchaseDateTo, err = parseDateParam(q, "purchase_date_to"); err != nil {
		return spec, err
	}
	if spec.SaleDateFrom, err = parseDateParam(q, "sale_date_from"); err != nil {
		return spec, err
	}
	if spec.SaleDateTo, err = parseDateParam(q, "sale_date_to"); err != nil {
		return spec, err
	}

	if spec.PriceMin, err = parsePriceParam(q, "price_min"); err != nil {
		return spec, err
	}
	if spec.PriceMax, err = parsePriceParam(q, "price_max"); err != nil {
		return spec, err
	}

	if v := q.Get("sort_asc"); v != "" {
		asc, err := strconv.ParseBool(v)
		if err != nil {
			return spec, fmt.Errorf("sort_asc: invalid boolean %q", v)
		}
		spec.SortAscending = asc
	}

	if spec.Page, err = parseIntParam(q, "page"); err != nil {
		return spec, err
	}
	if spec.PageSize, err = parseIntParam(q, "page_size"); err != nil {
		return spec, err
	}

	return spec, nil
}

func parseDateParam(q url.Values, key string) (*model.Date, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	d, err := model.ParseDate(v)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid date %q (want YYYY-MM-DD)", key, v)
	}
	return &d, nil
}

func parsePriceParam(q url.Values, key string) (*decimal.Decimal, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid amount %q", key, v)
	}
	return &d, nil
}

func parseIntParam(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}
