package model

import "time"

// SnapshotVersion tags the snapshot document format.
const SnapshotVersion = "1.0"

// Snapshot is a full serialized copy of the customer and order tables,
// produced by export and consumed by restore.
type Snapshot struct {
	Version   string     `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	Customers []Customer `json:"customers"`
	Orders    []Order    `json:"orders"`
}
