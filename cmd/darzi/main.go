package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/darzi/internal/backup"
	"github.com/dukerupert/darzi/internal/database"
	"github.com/dukerupert/darzi/internal/logging"
	"github.com/dukerupert/darzi/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("DARZI_LOG_LEVEL"))

	port := os.Getenv("DARZI_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("DARZI_DB_PATH")
	if dbPath == "" {
		dbPath = "darzi.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err, "path", dbPath)
		os.Exit(1)
	}
	defer db.Close()

	s3cfg := backup.S3Config{
		Endpoint:  os.Getenv("DARZI_S3_ENDPOINT"),
		Bucket:    os.Getenv("DARZI_S3_BUCKET"),
		Region:    os.Getenv("DARZI_S3_REGION"),
		AccessKey: os.Getenv("DARZI_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("DARZI_S3_SECRET_KEY"),
	}

	srv := server.New(db, s3cfg, logger)

	// Purge expired sessions and stale rate-limit windows hourly
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := srv.SessionStore().DeleteExpired(); err != nil {
				logger.Error("session cleanup", "error", err)
			} else if n > 0 {
				logger.Info("purged expired sessions", "count", n)
			}
			srv.RateLimiter().Cleanup()
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("darzi listening", "port", port, "db", dbPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
