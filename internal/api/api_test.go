package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/solehq/soletrack/internal/auth"
	"github.com/solehq/soletrack/internal/config"
	"github.com/solehq/soletrack/internal/db"
	"github.com/solehq/soletrack/internal/model"
	"github.com/solehq/soletrack/internal/store"
)

const testJWTSecret = "test-secret"

func setupTestServer(t *testing.T) (*httptest.Server, *sql.DB, string) {
	t.Helper()
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret, config.Policy{})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create admin user.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	store.CreateUser(ctx, database, "admin", string(hash), model.RoleAdmin)

	// Get token.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp map[string]string
	json.NewDecoder(resp.Body).Decode(&loginResp)
	token := loginResp["token"]
	if token == "" {
		t.Fatal("empty token from login")
	}

	return server, database, token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func testRecordBody(mutate func(map[string]any)) map[string]any {
	body := map[string]any{
		"scan_code":     "8806185471234",
		"location":      "A-01",
		"purchase_date": "2024-01-15",
		"model_name":    "Air Max 90",
		"name":          "Air Max 90 Infrared",
		"size":          "270",
		"vendor":        "Nike Store",
		"price":         "129.99",
	}
	if mutate != nil {
		mutate(body)
	}
	return body
}

func createRecord(t *testing.T, server *httptest.Server, token string, mutate func(map[string]any)) model.InventoryRecord {
	t.Helper()
	req, _ := authRequest("POST", server.URL+"/api/records", token, testRecordBody(mutate))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create record request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var record model.InventoryRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		t.Fatalf("decoding record: %v", err)
	}
	return record
}

func TestLoginEndpoint(t *testing.T) {
	server, _, _ := setupTestServer(t)

	// Test invalid credentials.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestLogoutRevokesToken(t *testing.T) {
	server, _, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/auth/logout", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Token must be dead now.
	req, _ = authRequest("GET", server.URL+"/api/records", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRecordCRUDFlow(t *testing.T) {
	server, _, token := setupTestServer(t)

	record := createRecord(t, server, token, nil)
	if record.ID == "" {
		t.Fatal("expected record to have an id")
	}
	if !record.InStock() {
		t.Error("new record should be in stock")
	}

	// Get it back.
	req, _ := authRequest("GET", server.URL+"/api/records/"+record.ID, token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", resp.StatusCode)
	}
	var fetched model.InventoryRecord
	json.NewDecoder(resp.Body).Decode(&fetched)
	resp.Body.Close()
	if fetched.ModelName != "Air Max 90" {
		t.Errorf("unexpected model name %q", fetched.ModelName)
	}

	// Update.
	req, _ = authRequest("PUT", server.URL+"/api/records/"+record.ID, token,
		testRecordBody(func(b map[string]any) { b["location"] = "B-07" }))
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}
	json.NewDecoder(resp.Body).Decode(&fetched)
	resp.Body.Close()
	if fetched.Location != "B-07" {
		t.Errorf("expected updated location, got %q", fetched.Location)
	}

	// Delete.
	req, _ = authRequest("DELETE", server.URL+"/api/records/"+record.ID, token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	req, _ = authRequest("GET", server.URL+"/api/records/"+record.ID, token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCreateRecordValidationError(t *testing.T) {
	server, _, token := setupTestServer(t)

	req, _ := authRequest("POST", server.URL+"/api/records", token,
		testRecordBody(func(b map[string]any) { b["vendor"] = "" }))
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if body["field"] != model.FieldVendor {
		t.Errorf("expected error to name the vendor field, got %+v", body)
	}
}

func TestSearchEndpoint(t *testing.T) {
	server, _, token := setupTestServer(t)

	createRecord(t, server, token, func(b map[string]any) {
		b["scan_code"] = "111"
		b["vendor"] = "Nike Store"
	})
	createRecord(t, server, token, func(b map[string]any) {
		b["scan_code"] = "222"
		b["vendor"] = "Adidas Outlet"
		b["model_name"] = "Samba OG"
		b["name"] = "Samba OG White"
	})

	req, _ := authRequest("GET", server.URL+"/api/records?vendor=Adidas+Outlet", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result model.SearchResult
	json.NewDecoder(resp.Body).Decode(&result)
	resp.Body.Close()
	if result.TotalCount != 1 {
		t.Fatalf("expected 1 match, got %d", result.TotalCount)
	}
	if result.Records[0].ModelName != "Samba OG" {
		t.Errorf("unexpected match: %+v", result.Records[0])
	}

	// Keyword search is case-insensitive.
	req, _ = authRequest("GET", server.URL+"/api/records?keyword=samba", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	json.NewDecoder(resp.Body).Decode(&result)
	resp.Body.Close()
	if result.TotalCount != 1 {
		t.Errorf("expected keyword match, got %d", result.TotalCount)
	}

	// Malformed filter values are a 400, named by parameter.
	req, _ = authRequest("GET", server.URL+"/api/records?purchase_date_from=15.01.2024", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for bad date, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSellFlow(t *testing.T) {
	server, _, token := setupTestServer(t)

	record := createRecord(t, server, token, func(b map[string]any) { b["scan_code"] = "555" })

	// Sell by scan code.
	req, _ := authRequest("POST", server.URL+"/api/sell", token, map[string]string{"scan_code": "555"})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sell: expected 200, got %d", resp.StatusCode)
	}
	var result store.SaleResult
	json.NewDecoder(resp.Body).Decode(&result)
	resp.Body.Close()
	if result.Status != store.SaleSold {
		t.Fatalf("expected sold, got %q", result.Status)
	}
	if result.Record == nil || result.Record.ID != record.ID {
		t.Error("expected sold record in response")
	}

	// Selling the same unit again conflicts.
	req, _ = authRequest("POST", server.URL+fmt.Sprintf("/api/records/%s/sell", record.ID), token, map[string]any{})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	json.NewDecoder(resp.Body).Decode(&result)
	resp.Body.Close()
	if result.Status != store.SaleAlreadySold {
		t.Errorf("expected already_sold, got %q", result.Status)
	}

	// No in-stock units left for the code.
	req, _ = authRequest("POST", server.URL+"/api/sell", token, map[string]string{"scan_code": "555"})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for exhausted code, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestSellAmbiguous(t *testing.T) {
	server, _, token := setupTestServer(t)

	createRecord(t, server, token, func(b map[string]any) { b["scan_code"] = "777" })
	createRecord(t, server, token, func(b map[string]any) {
		b["scan_code"] = "777"
		b["purchase_date"] = "2024-02-20"
	})

	req, _ := authRequest("POST", server.URL+"/api/sell", token, map[string]string{"scan_code": "777"})
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	var result store.SaleResult
	json.NewDecoder(resp.Body).Decode(&result)
	resp.Body.Close()
	if result.Status != store.SaleAmbiguous {
		t.Fatalf("expected ambiguous, got %q", result.Status)
	}
	if len(result.Candidates) != 2 {
		t.Errorf("expected 2 candidates, got %d", len(result.Candidates))
	}
}

func TestScanCodeLookup(t *testing.T) {
	server, _, token := setupTestServer(t)

	createRecord(t, server, token, func(b map[string]any) { b["scan_code"] = "888" })

	req, _ := authRequest("GET", server.URL+"/api/scan-codes/888", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var lookup struct {
		Info    *store.ScanCodeInfo     `json:"info"`
		Records []model.InventoryRecord `json:"records"`
	}
	json.NewDecoder(resp.Body).Decode(&lookup)
	resp.Body.Close()
	if lookup.Info == nil || lookup.Info.ModelName != "Air Max 90" {
		t.Errorf("expected master entry, got %+v", lookup.Info)
	}
	if len(lookup.Records) != 1 {
		t.Errorf("expected 1 record, got %d", len(lookup.Records))
	}

	req, _ = authRequest("GET", server.URL+"/api/scan-codes/nope", token, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown code, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestStatsEndpoint(t *testing.T) {
	server, _, token := setupTestServer(t)

	createRecord(t, server, token, nil)

	req, _ := authRequest("GET", server.URL+"/api/stats", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var stats store.Stats
	json.NewDecoder(resp.Body).Decode(&stats)
	resp.Body.Close()
	if stats.TotalRecords != 1 || stats.InStockRecords != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestCSVExportImport(t *testing.T) {
	server, _, token := setupTestServer(t)

	createRecord(t, server, token, nil)

	req, _ := authRequest("GET", server.URL+"/api/records/export", token, nil)
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %q", ct)
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	resp.Body.Close()
	if !strings.Contains(buf.String(), "Air Max 90") {
		t.Errorf("expected record in export, got: %s", buf.String())
	}

	// Round-trip the export back in: one more copy of the record.
	req, _ = http.NewRequest("POST", server.URL+"/api/records/import", bytes.NewReader(buf.Bytes()))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "text/csv")
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import: expected 200, got %d", resp.StatusCode)
	}
	var result struct {
		Imported int `json:"imported"`
		Skipped  int `json:"skipped"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	resp.Body.Close()
	if result.Imported != 1 || result.Skipped != 0 {
		t.Errorf("unexpected import result: %+v", result)
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret, config.Policy{})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	resp, _ := http.Get(server.URL + "/api/records")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestRoleBasedAccess(t *testing.T) {
	database := db.NewTestDB(t)
	router := NewRouter(database, testJWTSecret, config.Policy{})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create a viewer.
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	viewer, err := store.CreateUser(ctx, database, "viewer1", string(hash), model.RoleViewer)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	viewerToken, _ := auth.GenerateToken(testJWTSecret, viewer.ID, viewer.Username, viewer.Role)

	// Viewers cannot create records (staff+ required).
	req, _ := authRequest("POST", server.URL+"/api/records", viewerToken, testRecordBody(nil))
	resp, _ := http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for viewer creating record, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Viewers cannot sell.
	req, _ = authRequest("POST", server.URL+"/api/sell", viewerToken, map[string]string{"scan_code": "1"})
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for viewer selling, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Viewers cannot access user management.
	req, _ = authRequest("GET", server.URL+"/api/users", viewerToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for viewer accessing users, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	// But viewers can search.
	req, _ = authRequest("GET", server.URL+"/api/records", viewerToken, nil)
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 for viewer searching, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
