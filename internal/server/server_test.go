package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/darzi/internal/backup"
	"github.com/dukerupert/darzi/internal/database"
	"github.com/dukerupert/darzi/internal/middleware"
)

func setupServerTest(t *testing.T) http.Handler {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.DiscardHandler)
	return New(db, backup.S3Config{}, logger).Router()
}

func TestHealthIsPublic(t *testing.T) {
	router := setupServerTest(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestDataRoutesRequireAuth(t *testing.T) {
	router := setupServerTest(t)

	for _, route := range []struct{ method, path string }{
		{"GET", "/api/customers"},
		{"GET", "/api/orders"},
		{"GET", "/api/backup/export"},
		{"POST", "/api/backup/restore"},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without session, got %d",
				route.method, route.path, rec.Code)
		}
	}
}

func TestPinSetupUnlocksDataRoutes(t *testing.T) {
	router := setupServerTest(t)

	req := httptest.NewRequest("POST", "/api/pin", strings.NewReader(`{"action":"set","pin":"1234"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("pin set: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("expected session cookie")
	}

	req = httptest.NewRequest("GET", "/api/customers", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with session, got %d", rec.Code)
	}
	var customers []json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &customers); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(customers) != 0 {
		t.Errorf("expected empty customer list, got %d", len(customers))
	}
}

func TestCORSPreflightOnPinRoute(t *testing.T) {
	router := setupServerTest(t)

	req := httptest.NewRequest("OPTIONS", "/api/pin", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
}
