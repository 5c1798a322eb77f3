package query

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/solehq/soletrack/internal/model"
)

func TestCompileDefaults(t *testing.T) {
	c, err := Compile(model.FilterSpec{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if c.Where != "" {
		t.Errorf("empty spec should have no predicate, got %q", c.Where)
	}
	if len(c.Args) != 0 {
		t.Errorf("empty spec should have no args, got %v", c.Args)
	}
	if c.OrderBy != "created_at DESC, id ASC" {
		t.Errorf("unexpected default ordering: %q", c.OrderBy)
	}
	if c.Page != 1 || c.PageSize != model.DefaultPageSize {
		t.Errorf("unexpected default paging: page=%d size=%d", c.Page, c.PageSize)
	}
	if c.Offset != 0 || c.Limit != model.DefaultPageSize {
		t.Errorf("unexpected window: offset=%d limit=%d", c.Offset, c.Limit)
	}
}

func TestCompilePagination(t *testing.T) {
	c, err := Compile(model.FilterSpec{Page: 3, PageSize: 20})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if c.Offset != 40 || c.Limit != 20 {
		t.Errorf("page 3 of 20: offset=%d limit=%d", c.Offset, c.Limit)
	}
}

func TestCompileConjunction(t *testing.T) {
	from := model.MustDate("2024-01-01")
	to := model.MustDate("2024-12-31")
	min := decimal.NewFromInt(50)
	max := decimal.NewFromInt(200)

	c, err := Compile(model.FilterSpec{
		Keyword:          "jordan",
		Location:         "A-01",
		Vendor:           "Nike Store",
		Size:             "270",
		ScanCode:         "8806185471234",
		PurchaseDateFrom: &from,
		PurchaseDateTo:   &to,
		PriceMin:         &min,
		PriceMax:         &max,
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	for _, want := range []string{
		"model_name LIKE ?",
		"location = ?",
		"vendor = ?",
		"size = ?",
		"scan_code = ?",
		"purchase_date >= ?",
		"purchase_date <= ?",
		"price_cents >= ?",
		"price_cents <= ?",
	} {
		if !strings.Contains(c.Where, want) {
			t.Errorf("predicate missing %q: %s", want, c.Where)
		}
	}
	if strings.Contains(c.Where, " OR ") && !strings.Contains(c.Where, "(model_name") {
		t.Errorf("OR outside keyword group: %s", c.Where)
	}
	// Keyword expands to four args, every other filter to one.
	if len(c.Args) != 12 {
		t.Errorf("expected 12 args, got %d: %v", len(c.Args), c.Args)
	}
	// Price bounds are compared in cents.
	if c.Args[len(c.Args)-1] != int64(20000) {
		t.Errorf("price_max should compile to 20000 cents, got %v", c.Args[len(c.Args)-1])
	}
}

func TestCompileSaleDateImpliesSold(t *testing.T) {
	from := model.MustDate("2024-06-01")
	c, err := Compile(model.FilterSpec{SaleDateFrom: &from})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.Contains(c.Where, "sale_date IS NOT NULL") {
		t.Errorf("sale date bound must exclude in-stock rows: %s", c.Where)
	}
}

func TestCompileSortKeys(t *testing.T) {
	for spec, column := range map[string]string{
		model.SortByLocation:     "location",
		model.SortByPurchaseDate: "purchase_date",
		model.SortBySaleDate:     "sale_date",
		model.SortByModelName:    "model_name",
		model.SortByName:         "name",
		model.SortByVendor:       "vendor",
		model.SortByPrice:        "price_cents",
		model.SortByCreatedAt:    "created_at",
		model.SortByUpdatedAt:    "updated_at",
	} {
		c, err := Compile(model.FilterSpec{SortBy: spec, SortAscending: true})
		if err != nil {
			t.Fatalf("Compile(%s): %v", spec, err)
		}
		want := column + " ASC, id ASC"
		if c.OrderBy != want {
			t.Errorf("sort %s: got %q, want %q", spec, c.OrderBy, want)
		}
	}
}

func TestCompileValidation(t *testing.T) {
	earlier := model.MustDate("2024-01-01")
	later := model.MustDate("2024-06-01")
	low := decimal.NewFromInt(10)
	high := decimal.NewFromInt(90)
	negative := decimal.NewFromInt(-1)
	subCent := decimal.RequireFromString("9.999")

	tests := []struct {
		name string
		spec model.FilterSpec
	}{
		{"negative page", model.FilterSpec{Page: -1}},
		{"negative page size", model.FilterSpec{PageSize: -10}},
		{"unknown sort key", model.FilterSpec{SortBy: "color"}},
		{"inverted purchase range", model.FilterSpec{PurchaseDateFrom: &later, PurchaseDateTo: &earlier}},
		{"inverted sale range", model.FilterSpec{SaleDateFrom: &later, SaleDateTo: &earlier}},
		{"inverted price range", model.FilterSpec{PriceMin: &high, PriceMax: &low}},
		{"negative price bound", model.FilterSpec{PriceMin: &negative}},
		{"sub-cent price bound", model.FilterSpec{PriceMax: &subCent}},
	}

	for _, tt := range tests {
		_, err := Compile(tt.spec)
		var verr *model.ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %v", tt.name, err)
		}
	}

	// Trailing zeros are value-equal to a cent amount and must pass.
	trailing := decimal.RequireFromString("9.990")
	c, err := Compile(model.FilterSpec{PriceMin: &trailing})
	if err != nil {
		t.Fatalf("trailing-zero price bound rejected: %v", err)
	}
	if got := c.Args[0]; got != int64(999) {
		t.Errorf("expected 999 cents, got %v", got)
	}
}

func TestCompileIsPure(t *testing.T) {
	spec := model.FilterSpec{Keyword: "dunk", Page: 2, PageSize: 10}
	first, err := Compile(spec)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	second, err := Compile(spec)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if first.Where != second.Where || first.OrderBy != second.OrderBy ||
		first.Offset != second.Offset || first.Limit != second.Limit {
		t.Error("compiling the same spec twice should give identical output")
	}
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	tests := map[string]string{
		"plain":     "%plain%",
		"100%":      `%100\%%`,
		"a_b":       `%a\_b%`,
		`back\slash`: `%back\\slash%`,
	}
	for in, want := range tests {
		if got := likePattern(in); got != want {
			t.Errorf("likePattern(%q) = %q, want %q", in, got, want)
		}
	}
}
