package models

import "time"

// RefreshToken is one issued refresh-token record. TokenHash holds a slow
// hash of the raw token; the raw value itself is never persisted. Revoked
// records are kept forever as an audit trail.
type RefreshToken struct {
	ID        string
	Username  string
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}
