package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/solehq/soletrack/internal/config"
	"github.com/solehq/soletrack/internal/export"
	"github.com/solehq/soletrack/internal/store"
)

// ExportHandler handles CSV export and import of inventory records.
type ExportHandler struct {
	DB     *sql.DB
	Policy config.Policy
}

// Export handles GET /api/records/export. It accepts the same query
// parameters as search and writes every match, unpaginated.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	spec, err := parseFilterSpec(r.URL.Query())
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	spec.Page = 0
	spec.PageSize = 0

	records, err := store.ListRecords(r.Context(), h.DB, spec)
	if err != nil {
		storeError(w, "failed to export records", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.csv"`)
	if err := export.WriteCSV(w, records); err != nil {
		slog.Error("writing CSV export", "error", err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("records exported", "user", claims.Username, "count", len(records))
}

// Import handles POST /api/records/import. The body is a CSV file; bad rows
// are skipped and reported, good rows are created.
func (h *ExportHandler) Import(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	result, err := export.ImportCSV(r.Context(), h.DB, r.Body, h.Policy.Rules())
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("records imported", "user", claims.Username, "imported", result.Imported, "skipped", result.Skipped)
	jsonResponse(w, http.StatusOK, result)
}
