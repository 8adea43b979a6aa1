package middleware

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dukerupert/darzi/internal/database"
	"github.com/dukerupert/darzi/internal/pin"
	"github.com/dukerupert/darzi/internal/store"
)

func setupAuthTest(t *testing.T) (*sql.DB, *store.SessionStore, *pin.Service) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sessions := store.NewSessionStore(db)
	pins := pin.NewService(store.NewSettingsStore(db))
	if err := pins.Set("1234"); err != nil {
		t.Fatalf("set pin: %v", err)
	}
	return db, sessions, pins
}

func protectedHandler(sessions *store.SessionStore, pins *pin.Service) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return RequireAuth(sessions, pins)(next)
}

func TestRequireAuthNoCookie(t *testing.T) {
	_, sessions, pins := setupAuthTest(t)

	req := httptest.NewRequest("GET", "/api/customers", nil)
	rec := httptest.NewRecorder()
	protectedHandler(sessions, pins).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	_, sessions, pins := setupAuthTest(t)

	req := httptest.NewRequest("GET", "/api/customers", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "no-such-token"})
	rec := httptest.NewRecorder()
	protectedHandler(sessions, pins).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthValidSession(t *testing.T) {
	_, sessions, pins := setupAuthTest(t)

	sess, err := sessions.Create()
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/customers", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	protectedHandler(sessions, pins).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireAuthExpiredSession(t *testing.T) {
	db, sessions, pins := setupAuthTest(t)

	// Insert a session whose expiry is already in the past
	expired := time.Now().UTC().Add(-time.Hour)
	_, err := db.Exec(`INSERT INTO sessions (token, expires_at, created_at) VALUES (?, ?, ?)`,
		"stale-token", expired, expired.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("insert expired session: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/customers", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale-token"})
	rec := httptest.NewRecorder()
	protectedHandler(sessions, pins).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired session, got %d", rec.Code)
	}
}

func TestRequireAuthPINRemoved(t *testing.T) {
	db, sessions, pins := setupAuthTest(t)

	sess, err := sessions.Create()
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	// Removing the PIN invalidates every session, valid cookies included
	if _, err := db.Exec(`DELETE FROM app_settings WHERE key = 'pin'`); err != nil {
		t.Fatalf("delete pin: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/customers", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	protectedHandler(sessions, pins).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after PIN removal, got %d", rec.Code)
	}
}
