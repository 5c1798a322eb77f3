// Package query compiles a sparse filter specification into an executable
// SQL predicate, ordering and pagination window. Compilation is a pure
// transformation: it never touches the database.
package query

import (
	"fmt"
	"strings"

	"github.com/solehq/soletrack/internal/model"
)

// Compiled is the executable form of a filter specification. Where holds the
// predicate without the WHERE keyword (empty means unfiltered), OrderBy a
// deterministic ordering that always breaks ties by id ascending.
type Compiled struct {
	Where   string
	Args    []any
	OrderBy string
	Limit   int
	Offset  int

	Page     int
	PageSize int
}

// sortColumns maps spec sort keys to schema columns.
var sortColumns = map[string]string{
	model.SortByLocation:     "location",
	model.SortByPurchaseDate: "purchase_date",
	model.SortBySaleDate:     "sale_date",
	model.SortByModelName:    "model_name",
	model.SortByName:         "name",
	model.SortByVendor:       "vendor",
	model.SortByPrice:        "price_cents",
	model.SortByCreatedAt:    "created_at",
	model.SortByUpdatedAt:    "updated_at",
}

// Compile validates spec and turns it into a Compiled query. All provided
// filters combine with AND; zero-valued fields impose no constraint.
func Compile(spec model.FilterSpec) (*Compiled, error) {
	if err := validate(spec); err != nil {
		return nil, err
	}

	var conds []string
	var args []any

	if spec.Keyword != "" {
		pattern := likePattern(spec.Keyword)
		conds = append(conds,
			`(model_name LIKE ? ESCAPE '\' OR name LIKE ? ESCAPE '\' OR vendor LIKE ? ESCAPE '\' OR IFNULL(notes, '') LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if spec.Location != "" {
		conds = append(conds, "location = ?")
		args = append(args, spec.Location)
	}
	if spec.Vendor != "" {
		conds = append(conds, "vendor = ?")
		args = append(args, spec.Vendor)
	}
	if spec.ModelName != "" {
		conds = append(conds, `model_name LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(spec.ModelName))
	}
	if spec.Name != "" {
		conds = append(conds, `name LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(spec.Name))
	}
	if spec.Size != "" {
		conds = append(conds, "size = ?")
		args = append(args, spec.Size)
	}
	if spec.ScanCode != "" {
		conds = append(conds, "scan_code = ?")
		args = append(args, spec.ScanCode)
	}

	if spec.PurchaseDateFrom != nil {
		conds = append(conds, "purchase_date >= ?")
		args = append(args, spec.PurchaseDateFrom.String())
	}
	if spec.PurchaseDateTo != nil {
		conds = append(conds, "purchase_date <= ?")
		args = append(args, spec.PurchaseDateTo.String())
	}

	// A sale date bound only makes sense for sold records, so either bound
	// implicitly excludes in-stock rows.
	if spec.SaleDateFrom != nil || spec.SaleDateTo != nil {
		conds = append(conds, "sale_date IS NOT NULL")
	}
	if spec.SaleDateFrom != nil {
		conds = append(conds, "sale_date >= ?")
		args = append(args, spec.SaleDateFrom.String())
	}
	if spec.SaleDateTo != nil {
		conds = append(conds, "sale_date <= ?")
		args = append(args, spec.SaleDateTo.String())
	}

	if spec.PriceMin != nil {
		conds = append(conds, "price_cents >= ?")
		args = append(args, model.PriceCents(*spec.PriceMin))
	}
	if spec.PriceMax != nil {
		conds = append(conds, "price_cents <= ?")
		args = append(args, model.PriceCents(*spec.PriceMax))
	}

	sortBy := spec.SortBy
	if sortBy == "" {
		sortBy = model.SortByCreatedAt
	}
	direction := "DESC"
	if spec.SortAscending {
		direction = "ASC"
	}

	page := spec.Page
	if page == 0 {
		page = 1
	}
	pageSize := spec.PageSize
	if pageSize == 0 {
		pageSize = model.DefaultPageSize
	}

	return &Compiled{
		Where:    strings.Join(conds, " AND "),
		Args:     args,
		OrderBy:  fmt.Sprintf("%s %s, id ASC", sortColumns[sortBy], direction),
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func validate(spec model.FilterSpec) error {
	if spec.Page < 0 {
		return model.Invalid("page", "must be at least 1")
	}
	if spec.PageSize < 0 {
		return model.Invalid("page_size", "must be at least 1")
	}
	if spec.SortBy != "" {
		if _, ok := sortColumns[spec.SortBy]; !ok {
			return model.Invalid("sort_by", "unknown sort key %q", spec.SortBy)
		}
	}
	if spec.PurchaseDateFrom != nil && spec.PurchaseDateTo != nil &&
		spec.PurchaseDateFrom.After(*spec.PurchaseDateTo) {
		return model.Invalid("purchase_date_from", "must not be after purchase_date_to")
	}
	if spec.SaleDateFrom != nil && spec.SaleDateTo != nil &&
		spec.SaleDateFrom.After(*spec.SaleDateTo) {
		return model.Invalid("sale_date_from", "must not be after sale_date_to")
	}
	if spec.PriceMin != nil {
		if spec.PriceMin.IsNegative() {
			return model.Invalid("price_min", "must not be negative")
		}
		if !model.CentPrecise(*spec.PriceMin) {
			return model.Invalid("price_min", "at most two decimal places")
		}
	}
	if spec.PriceMax != nil {
		if spec.PriceMax.IsNegative() {
			return model.Invalid("price_max", "must not be negative")
		}
		if !model.CentPrecise(*spec.PriceMax) {
			return model.Invalid("price_max", "at most two decimal places")
		}
	}
	if spec.PriceMin != nil && spec.PriceMax != nil && spec.PriceMin.GreaterThan(*spec.PriceMax) {
		return model.Invalid("price_min", "must not exceed price_max")
	}
	return nil
}

// likePattern wraps a term in LIKE wildcards, escaping any wildcard
// characters the term itself contains.
func likePattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	return "%" + escaped + "%"
}
