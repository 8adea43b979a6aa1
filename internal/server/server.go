// Package server wires the stores, services, and handlers into an HTTP router.
package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/darzi/internal/backup"
	"github.com/dukerupert/darzi/internal/handler"
	"github.com/dukerupert/darzi/internal/middleware"
	"github.com/dukerupert/darzi/internal/pin"
	"github.com/dukerupert/darzi/internal/store"
	ws "github.com/dukerupert/darzi/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	pinH         *handler.PinHandler
	customerH    *handler.CustomerHandler
	orderH       *handler.OrderHandler
	backupH      *handler.BackupHandler
	sessionStore *store.SessionStore
	pinService   *pin.Service
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, s3cfg backup.S3Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	settingsStore := store.NewSettingsStore(db)
	sessionStore := store.NewSessionStore(db)
	customerStore := store.NewCustomerStore(db)
	orderStore := store.NewOrderStore(db)

	pinService := pin.NewService(settingsStore)
	backupService := backup.NewService(db, customerStore, orderStore, logger.With("component", "backup"))
	uploader := backup.NewUploader(s3cfg, logger.With("component", "offsite"))

	return &Server{
		db:           db,
		hub:          hub,
		pinH:         handler.NewPinHandler(pinService, sessionStore, logger.With("component", "pin")),
		customerH:    handler.NewCustomerHandler(customerStore, hub, logger.With("component", "customer")),
		orderH:       handler.NewOrderHandler(orderStore, customerStore, hub, logger.With("component", "order")),
		backupH:      handler.NewBackupHandler(backupService, uploader, hub, logger.With("component", "backup_handler")),
		sessionStore: sessionStore,
		pinService:   pinService,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/pin", s.rateLimitedHandler(s.pinH.Handle))
	outerMux.HandleFunc("POST /api/logout", s.pinH.Logout)
	outerMux.HandleFunc("GET /api/session", s.pinH.Session)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.pinService)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(middleware.CORS(outerMux))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Customer API routes
	mux.HandleFunc("GET /api/customers", s.customerH.List)
	mux.HandleFunc("POST /api/customers", s.customerH.Create)
	mux.HandleFunc("GET /api/customers/{id}", s.customerH.Get)
	mux.HandleFunc("PUT /api/customers/{id}", s.customerH.Update)
	mux.HandleFunc("DELETE /api/customers/{id}", s.customerH.Delete)

	// Order API routes
	mux.HandleFunc("GET /api/orders", s.orderH.List)
	mux.HandleFunc("POST /api/orders", s.orderH.Create)
	mux.HandleFunc("GET /api/orders/{id}", s.orderH.Get)
	mux.HandleFunc("PUT /api/orders/{id}", s.orderH.Update)
	mux.HandleFunc("PATCH /api/orders/{id}/status", s.orderH.UpdateStatus)
	mux.HandleFunc("DELETE /api/orders/{id}", s.orderH.Delete)

	// Backup API routes
	mux.HandleFunc("GET /api/backup/export", s.backupH.Export)
	mux.HandleFunc("POST /api/backup/restore", s.backupH.Restore)
	mux.HandleFunc("POST /api/backup/offsite", s.backupH.Offsite)

	// WebSocket endpoint for data-change notifications
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
}
