package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/solehq/soletrack/internal/model"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// storeError maps store-layer errors onto HTTP responses. Validation errors
// surface to the client with their field; anything else is an opaque 500.
func storeError(w http.ResponseWriter, action string, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		jsonResponse(w, http.StatusBadRequest, map[string]string{
			"error": verr.Message,
			"field": verr.Field,
		})
		return
	}
	slog.Error(action, "error", err)
	jsonError(w, http.StatusInternalServerError, action)
}
