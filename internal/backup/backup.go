// Package backup serializes the full customer and order dataset into a
// versioned JSON snapshot and restores such snapshots destructively.
package backup

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/darzi/internal/model"
	"github.com/dukerupert/darzi/internal/store"
)

// ErrInvalidSnapshot rejects a document that is not a structurally valid
// snapshot. Field-level shape of individual records is not validated.
var ErrInvalidSnapshot = errors.New("invalid snapshot: customers and orders are required")

// Service exports and restores full-dataset snapshots.
type Service struct {
	db        *sql.DB
	customers *store.CustomerStore
	orders    *store.OrderStore
	logger    *slog.Logger
}

func NewService(db *sql.DB, cs *store.CustomerStore, os *store.OrderStore, logger *slog.Logger) *Service {
	return &Service{db: db, customers: cs, orders: os, logger: logger}
}

// Export reads every customer and order row and assembles a snapshot. It is a
// pure read and safe to run concurrently with normal usage.
func (s *Service) Export() (*model.Snapshot, error) {
	customers, err := s.customers.ListAll()
	if err != nil {
		return nil, fmt.Errorf("export customers: %w", err)
	}
	orders, err := s.orders.ListAll()
	if err != nil {
		return nil, fmt.Errorf("export orders: %w", err)
	}

	if customers == nil {
		customers = []model.Customer{}
	}
	if orders == nil {
		orders = []model.Order{}
	}

	return &model.Snapshot{
		Version:   model.SnapshotVersion,
		CreatedAt: time.Now().UTC(),
		Customers: customers,
		Orders:    orders,
	}, nil
}

// Parse deserializes and structurally validates a snapshot document. Both the
// customers and orders fields must be present; empty arrays are valid.
func Parse(data []byte) (*model.Snapshot, error) {
	var raw struct {
		Version   string          `json:"version"`
		CreatedAt time.Time       `json:"created_at"`
		Customers json.RawMessage `json:"customers"`
		Orders    json.RawMessage `json:"orders"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if len(raw.Customers) == 0 || string(raw.Customers) == "null" ||
		len(raw.Orders) == 0 || string(raw.Orders) == "null" {
		return nil, ErrInvalidSnapshot
	}

	snap := model.Snapshot{Version: raw.Version, CreatedAt: raw.CreatedAt}
	if err := json.Unmarshal(raw.Customers, &snap.Customers); err != nil {
		return nil, fmt.Errorf("parse customers: %w", err)
	}
	if err := json.Unmarshal(raw.Orders, &snap.Orders); err != nil {
		return nil, fmt.Errorf("parse orders: %w", err)
	}
	return &snap, nil
}

// Restore destructively replaces all customer and order data with the
// snapshot's contents. The wipe and insert steps run inside one transaction:
// a failure at any step rolls the store back to its prior contents.
//
// Step order is load-bearing: orders are wiped before customers and customers
// inserted before orders, since orders reference customers.
func (s *Service) Restore(snap *model.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin restore: %w", err)
	}
	defer tx.Rollback()

	if err := s.orders.DeleteAllTx(tx); err != nil {
		return fmt.Errorf("wipe orders: %w", err)
	}
	if err := s.customers.DeleteAllTx(tx); err != nil {
		return fmt.Errorf("wipe customers: %w", err)
	}

	for i := range snap.Customers {
		if err := s.customers.InsertTx(tx, &snap.Customers[i]); err != nil {
			return fmt.Errorf("restore customers: %w", err)
		}
	}
	for i := range snap.Orders {
		if err := s.orders.InsertTx(tx, &snap.Orders[i]); err != nil {
			return fmt.Errorf("restore orders: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit restore: %w", err)
	}

	s.logger.Info("restore complete",
		"customers", len(snap.Customers),
		"orders", len(snap.Orders),
	)
	return nil
}
