package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/darzi/internal/backup"
	"github.com/dukerupert/darzi/internal/websocket"
)

// maxSnapshotSize caps restore uploads at 32 MiB.
const maxSnapshotSize = 32 << 20

// passphraseHeader carries the optional snapshot encryption passphrase.
// When present on export the snapshot is encrypted; on restore the body is
// decrypted with it before parsing.
const passphraseHeader = "X-Backup-Passphrase"

type BackupHandler struct {
	svc      *backup.Service
	uploader *backup.Uploader
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewBackupHandler(svc *backup.Service, uploader *backup.Uploader, hub *websocket.Hub, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{svc: svc, uploader: uploader, hub: hub, logger: logger}
}

// snapshotBytes exports the dataset and serializes it, encrypting when a
// passphrase is given. Returns the document and its filename.
func (h *BackupHandler) snapshotBytes(passphrase string) ([]byte, string, error) {
	snap, err := h.svc.Export()
	if err != nil {
		return nil, "", err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("marshal snapshot: %w", err)
	}

	filename := "darzi-backup-" + snap.CreatedAt.Format("2006-01-02") + ".json"
	if passphrase != "" {
		data, err = backup.Encrypt(data, passphrase)
		if err != nil {
			return nil, "", fmt.Errorf("encrypt snapshot: %w", err)
		}
		filename += ".enc"
	}
	return data, filename, nil
}

// Export serves a full snapshot as a downloadable file.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.snapshotBytes(r.Header.Get(passphraseHeader))
	if err != nil {
		h.logger.Error("export snapshot", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to export backup")
		return
	}

	contentType := "application/json"
	if r.Header.Get(passphraseHeader) != "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Restore replaces the entire dataset with an uploaded snapshot. The wipe and
// reload happen in one transaction, so a rejected snapshot leaves current
// data untouched.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxSnapshotSize))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if passphrase := r.Header.Get(passphraseHeader); passphrase != "" {
		data, err = backup.Decrypt(data, passphrase)
		if err != nil {
			errorJSON(w, http.StatusBadRequest, "failed to decrypt backup")
			return
		}
	}

	snap, err := backup.Parse(data)
	if err != nil {
		if errors.Is(err, backup.ErrInvalidSnapshot) {
			errorJSON(w, http.StatusBadRequest, "invalid backup file")
		} else {
			errorJSON(w, http.StatusBadRequest, "failed to parse backup file")
		}
		return
	}

	if err := h.svc.Restore(snap); err != nil {
		h.logger.Error("restore snapshot", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to restore backup")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("backup", "restored", "", map[string]any{
			"customers": len(snap.Customers),
			"orders":    len(snap.Orders),
		}))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"customers": len(snap.Customers),
		"orders":    len(snap.Orders),
	})
}

// Offsite exports a snapshot and pushes it to the configured S3-compatible
// bucket. Unavailable when no credentials are configured.
func (h *BackupHandler) Offsite(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil || !h.uploader.Enabled() {
		errorJSON(w, http.StatusServiceUnavailable, "offsite backup is not configured")
		return
	}

	data, _, err := h.snapshotBytes(r.Header.Get(passphraseHeader))
	if err != nil {
		h.logger.Error("export snapshot", "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to export backup")
		return
	}

	// Timestamped to the second so repeated uploads do not overwrite
	filename := "darzi-backup-" + time.Now().UTC().Format("20060102-150405") + ".json"
	if r.Header.Get(passphraseHeader) != "" {
		filename += ".enc"
	}

	if err := h.uploader.Upload(r.Context(), filename, data); err != nil {
		h.logger.Error("offsite upload", "error", err)
		errorJSON(w, http.StatusBadGateway, "failed to upload backup")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"filename": filename,
	})
}
