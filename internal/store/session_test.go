package store

import (
	"testing"
	"time"
)

func TestSessionCreateAndGet(t *testing.T) {
	s := NewSessionStore(setupStoreTest(t))

	sess, err := s.Create()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(sess.Token) != 64 {
		t.Errorf("expected 64-char hex token, got %d chars", len(sess.Token))
	}
	if !sess.ExpiresAt.After(time.Now()) {
		t.Error("new session should not be expired")
	}

	got, err := s.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.Token != sess.Token {
		t.Errorf("token mismatch: %q vs %q", got.Token, sess.Token)
	}
}

func TestSessionGetUnknownToken(t *testing.T) {
	s := NewSessionStore(setupStoreTest(t))

	got, err := s.GetByToken("does-not-exist")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatal("expected nil for unknown token")
	}
}

func TestSessionExpiredNotReturned(t *testing.T) {
	db := setupStoreTest(t)
	s := NewSessionStore(db)

	expired := time.Now().UTC().Add(-time.Minute)
	_, err := db.Exec(`INSERT INTO sessions (token, expires_at, created_at) VALUES (?, ?, ?)`,
		"old-token", expired, expired.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.GetByToken("old-token")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatal("expired session must not be returned")
	}
}

func TestSessionTokensUnique(t *testing.T) {
	s := NewSessionStore(setupStoreTest(t))

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		sess, err := s.Create()
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if seen[sess.Token] {
			t.Fatal("duplicate token generated")
		}
		seen[sess.Token] = true
	}
}

func TestSessionDeleteByToken(t *testing.T) {
	s := NewSessionStore(setupStoreTest(t))

	sess, err := s.Create()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.DeleteByToken(sess.Token); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := s.GetByToken(sess.Token)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatal("deleted session must not be returned")
	}
}

func TestSessionDeleteExpired(t *testing.T) {
	db := setupStoreTest(t)
	s := NewSessionStore(db)

	if _, err := s.Create(); err != nil {
		t.Fatalf("create: %v", err)
	}
	expired := time.Now().UTC().Add(-time.Minute)
	for _, token := range []string{"dead-1", "dead-2"} {
		_, err := db.Exec(`INSERT INTO sessions (token, expires_at, created_at) VALUES (?, ?, ?)`,
			token, expired, expired)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	n, err := s.DeleteExpired()
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 deleted, got %d", n)
	}

	var remaining int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&remaining); err != nil {
		t.Fatalf("count: %v", err)
	}
	if remaining != 1 {
		t.Errorf("expected 1 live session left, got %d", remaining)
	}
}
