package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/solehq/soletrack/internal/config"
	"github.com/solehq/soletrack/internal/imaging"
	"github.com/solehq/soletrack/internal/model"
	"github.com/solehq/soletrack/internal/store"
)

// RecordsHandler handles inventory record endpoints.
type RecordsHandler struct {
	DB     *sql.DB
	Policy config.Policy
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// Create handles POST /api/records. Blank location/vendor are filled from
// the deployment policy before validation.
func (h *RecordsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft model.RecordDraft
	if err := decodeJSON(r, &draft); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.Policy.Apply(&draft)

	record, err := store.CreateRecord(r.Context(), h.DB, draft, h.Policy.Rules())
	if err != nil {
		storeError(w, "failed to create record", err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("record created", "user", claims.Username, "record", record.ID, "model", record.ModelName)
	jsonResponse(w, http.StatusCreated, record)
}

// Get handles GET /api/records/{id}.
func (h *RecordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := store.GetRecord(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, "failed to get record", err)
		return
	}
	if record == nil {
		jsonError(w, http.StatusNotFound, "record not found")
		return
	}
	jsonResponse(w, http.StatusOK, record)
}

// Update handles PUT /api/records/{id}. The draft replaces every editable
// field, so callers send the full record back.
func (h *RecordsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var draft model.RecordDraft
	if err := decodeJSON(r, &draft); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := store.UpdateRecord(r.Context(), h.DB, r.PathValue("id"), draft, h.Policy.Rules())
	if err != nil {
		storeError(w, "failed to update record", err)
		return
	}
	if record == nil {
		jsonError(w, http.StatusNotFound, "record not found")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("record updated", "user", claims.Username, "record", record.ID)
	jsonResponse(w, http.StatusOK, record)
}

// Delete handles DELETE /api/records/{id}.
func (h *RecordsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	deleted, err := store.DeleteRecord(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, "failed to delete record", err)
		return
	}
	if !deleted {
		jsonError(w, http.StatusNotFound, "record not found")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("record deleted", "user", claims.Username, "record", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "record deleted"})
}

// BulkDelete handles POST /api/records/delete.
func (h *RecordsHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		jsonError(w, http.StatusBadRequest, "ids required")
		return
	}

	deleted, err := store.DeleteRecords(r.Context(), h.DB, req.IDs)
	if err != nil {
		storeError(w, "failed to delete records", err)
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("records deleted", "user", claims.Username, "requested", len(req.IDs), "deleted", deleted)
	jsonResponse(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

// UploadPhoto handles PUT /api/records/{id}/photo. The image is validated,
// downscaled and re-encoded before it is stored.
func (h *RecordsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	result, err := imaging.Process(r.Body)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	found, err := store.SetRecordPhoto(r.Context(), h.DB, id, result.Data, result.MIME)
	if err != nil {
		storeError(w, "failed to store photo", err)
		return
	}
	if !found {
		jsonError(w, http.StatusNotFound, "record not found")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("record photo updated", "user", claims.Username, "record", id, "bytes", len(result.Data))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo updated"})
}

// GetPhoto handles GET /api/records/{id}/photo.
func (h *RecordsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	photo, mime, err := store.GetRecordPhoto(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		storeError(w, "failed to get photo", err)
		return
	}
	if photo == nil {
		jsonError(w, http.StatusNotFound, "photo not found")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(photo); err != nil {
		slog.Error("writing photo response", "error", err)
	}
}
