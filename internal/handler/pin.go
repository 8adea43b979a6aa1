package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/darzi/internal/middleware"
	"github.com/dukerupert/darzi/internal/pin"
	"github.com/dukerupert/darzi/internal/store"
)

// PinHandler serves the PIN endpoint and session lifecycle. The endpoint is a
// single POST with an action discriminator so clients make one call for
// existence checks, setup, and verification alike.
type PinHandler struct {
	pins     *pin.Service
	sessions *store.SessionStore
	logger   *slog.Logger
}

func NewPinHandler(pins *pin.Service, sessions *store.SessionStore, logger *slog.Logger) *PinHandler {
	return &PinHandler{pins: pins, sessions: sessions, logger: logger}
}

type pinRequest struct {
	Action string `json:"action"`
	PIN    string `json:"pin"`
}

// Handle dispatches on the action field: check_exists, set, or verify.
func (h *PinHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	switch req.Action {
	case "check_exists":
		h.checkExists(w)
	case "set":
		h.set(w, req.PIN)
	case "verify":
		h.verify(w, req.PIN)
	default:
		errorJSON(w, http.StatusBadRequest, "unknown action")
	}
}

func (h *PinHandler) checkExists(w http.ResponseWriter) {
	exists, err := h.pins.Exists()
	if err != nil {
		h.logger.Error("pin existence check", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to check PIN")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
}

func (h *PinHandler) set(w http.ResponseWriter, pinValue string) {
	if err := h.pins.Set(pinValue); err != nil {
		if errors.Is(err, pin.ErrInvalidFormat) {
			errorJSON(w, http.StatusBadRequest, "PIN must be 4-6 digits")
			return
		}
		h.logger.Error("pin set", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to set PIN")
		return
	}

	if !h.issueSession(w) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *PinHandler) verify(w http.ResponseWriter, pinValue string) {
	ok, err := h.pins.Verify(pinValue)
	if err != nil {
		switch {
		case errors.Is(err, pin.ErrInvalidFormat):
			errorJSON(w, http.StatusBadRequest, "PIN must be 4-6 digits")
		case errors.Is(err, pin.ErrNotConfigured):
			// Same response as a wrong PIN so callers cannot probe
			// whether a PIN has been set up
			writeJSON(w, http.StatusUnauthorized, map[string]bool{"success": false})
		default:
			h.logger.Error("pin verify", "error", err)
			errorJSON(w, http.StatusInternalServerError, "failed to verify PIN")
		}
		return
	}
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]bool{"success": false})
		return
	}

	if !h.issueSession(w) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// issueSession creates a session and sets its cookie. On failure it writes
// the error response and returns false.
func (h *PinHandler) issueSession(w http.ResponseWriter) bool {
	sess, err := h.sessions.Create()
	if err != nil {
		h.logger.Error("create session", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to create session")
		return false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return true
}

// Logout deletes the current session. It succeeds even without a valid
// session so repeated logouts are harmless.
func (h *PinHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.DeleteByToken(cookie.Value); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Session reports whether the caller holds a live session and whether a PIN
// is configured, so clients can decide between the setup and unlock screens.
func (h *PinHandler) Session(w http.ResponseWriter, r *http.Request) {
	hasPin, err := h.pins.Exists()
	if err != nil {
		h.logger.Error("pin existence check", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to check PIN")
		return
	}

	authenticated := false
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		sess, err := h.sessions.GetByToken(cookie.Value)
		if err != nil {
			h.logger.Error("session lookup", "error", err)
		}
		authenticated = sess != nil && hasPin
	}

	writeJSON(w, http.StatusOK, map[string]bool{
		"authenticated": authenticated,
		"has_pin":       hasPin,
	})
}
