// Package api exposes the inventory store over JSON/HTTP.
package api

import (
	"database/sql"
	"net/http"

	"github.com/solehq/soletrack/internal/config"
	"github.com/solehq/soletrack/internal/model"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, policy config.Policy) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	recordsHandler := &RecordsHandler{DB: db, Policy: policy}
	searchHandler := &SearchHandler{DB: db}
	saleHandler := &SaleHandler{DB: db}
	exportHandler := &ExportHandler{DB: db, Policy: policy}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireStaff := RequireRole(model.RoleStaff)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Records: read (all roles), write (staff+).
	mux.Handle("GET /api/records", authMW(http.HandlerFunc(searchHandler.Search)))
	mux.Handle("POST /api/records", authMW(requireStaff(http.HandlerFunc(recordsHandler.Create))))
	mux.Handle("GET /api/records/{id}", authMW(http.HandlerFunc(recordsHandler.Get)))
	mux.Handle("PUT /api/records/{id}", authMW(requireStaff(http.HandlerFunc(recordsHandler.Update))))
	mux.Handle("DELETE /api/records/{id}", authMW(requireStaff(http.HandlerFunc(recordsHandler.Delete))))
	mux.Handle("POST /api/records/delete", authMW(requireStaff(http.HandlerFunc(recordsHandler.BulkDelete))))
	mux.Handle("PUT /api/records/{id}/photo", authMW(requireStaff(http.HandlerFunc(recordsHandler.UploadPhoto))))
	mux.Handle("GET /api/records/{id}/photo", authMW(http.HandlerFunc(recordsHandler.GetPhoto)))

	// Sales (staff+).
	mux.Handle("POST /api/sell", authMW(requireStaff(http.HandlerFunc(saleHandler.Sell))))
	mux.Handle("POST /api/records/{id}/sell", authMW(requireStaff(http.HandlerFunc(saleHandler.SellByID))))

	// Lookups and aggregates (all roles).
	mux.Handle("GET /api/scan-codes/{code}", authMW(http.HandlerFunc(searchHandler.LookupScanCode)))
	mux.Handle("GET /api/filters", authMW(http.HandlerFunc(searchHandler.Filters)))
	mux.Handle("GET /api/stats", authMW(http.HandlerFunc(searchHandler.Stats)))

	// CSV exchange: export (all roles), import (staff+).
	mux.Handle("GET /api/records/export", authMW(http.HandlerFunc(exportHandler.Export)))
	mux.Handle("POST /api/records/import", authMW(requireStaff(http.HandlerFunc(exportHandler.Import))))

	return LoggingMiddleware(mux)
}
