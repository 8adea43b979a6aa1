package model

import "time"

// Session is a server-checkable login record created after a successful PIN
// set or verify. Expiry is absolute from creation and never refreshed by
// activity.
type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
