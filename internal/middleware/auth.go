package middleware

import (
	"net/http"

	"github.com/dukerupert/darzi/internal/pin"
	"github.com/dukerupert/darzi/internal/store"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "darzi_session"

// RequireAuth validates the session cookie against the session store. A
// session is only honored while a PIN is still configured: with no secret
// server-side, no client can be authenticated, stale cookies included.
// Any lookup failure leaves the request unauthenticated (the gate fails
// closed).
func RequireAuth(sessions *store.SessionStore, pins *pin.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			sess, err := sessions.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				unauthorized(w)
				return
			}

			exists, err := pins.Exists()
			if err != nil || !exists {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized"}`))
}
