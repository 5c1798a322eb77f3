package api

import (
	"database/sql"
	"io"
	"log/slog"
	"net/http"

	"github.com/solehq/soletrack/internal/model"
	"github.com/solehq/soletrack/internal/store"
)

// SaleHandler handles the sell-one-unit endpoints.
type SaleHandler struct {
	DB *sql.DB
}

type sellRequest struct {
	ScanCode string      `json:"scan_code"`
	SaleDate *model.Date `json:"sale_date,omitempty"`
}

type sellByIDRequest struct {
	SaleDate *model.Date `json:"sale_date,omitempty"`
}

// saleDateOrToday defaults an omitted sale date to the current day.
func saleDateOrToday(d *model.Date) model.Date {
	if d != nil {
		return *d
	}
	return model.Today()
}

// saleStatusCode maps a sale outcome to its HTTP status. Everything the
// store reports is a well-formed outcome; only Sold is a 200 with the
// updated record, the rest are conflict-style answers the client acts on.
func saleStatusCode(status string) int {
	switch status {
	case store.SaleSold:
		return http.StatusOK
	case store.SaleNotFound, store.SaleNoMatch:
		return http.StatusNotFound
	default: // ambiguous, already_sold
		return http.StatusConflict
	}
}

// Sell handles POST /api/sell: resolve a scan code to exactly one in-stock
// unit and sell it. Multiple in-stock matches come back as candidates so the
// client can pick and retry with SellByID.
func (h *SaleHandler) Sell(w http.ResponseWriter, r *http.Request) {
	var req sellRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := store.Sell(r.Context(), h.DB, req.ScanCode, saleDateOrToday(req.SaleDate))
	if err != nil {
		storeError(w, "failed to sell", err)
		return
	}

	claims := GetClaims(r.Context())
	if result.Status == store.SaleSold {
		slog.Info("unit sold", "user", claims.Username, "scan_code", req.ScanCode, "record", result.Record.ID)
	} else {
		slog.Info("sale not completed", "user", claims.Username, "scan_code", req.ScanCode, "status", result.Status)
	}
	jsonResponse(w, saleStatusCode(result.Status), result)
}

// SellByID handles POST /api/records/{id}/sell: sell one specific unit.
func (h *SaleHandler) SellByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// An absent body means "sell today".
	var req sellByIDRequest
	if err := decodeJSON(r, &req); err != nil && err != io.EOF {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := store.SellByID(r.Context(), h.DB, id, saleDateOrToday(req.SaleDate))
	if err != nil {
		storeError(w, "failed to sell", err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("sale attempt", "user", claims.Username, "record", id, "status", result.Status)
	jsonResponse(w, saleStatusCode(result.Status), result)
}
