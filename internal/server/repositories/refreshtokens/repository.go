// Package refreshtokens declares the server-side repository contract for
// managing refresh-token records in persistent storage.
//
// Records are never deleted: revocation flips a flag so the audit trail
// survives and a revoked token cannot be resurrected by a concurrent insert.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/picshare/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking
// refresh-token records.
type Repository interface {
	// Create stores a new refresh-token record holding the hash of the raw
	// token, never the raw token itself.
	Create(ctx context.Context, username string, tokenHash string, expiresAt time.Time) error

	// ListActive returns all non-revoked, non-expired records for the user,
	// oldest first. Rotation scans these linearly: the hash is salted, so
	// there is nothing to index by.
	ListActive(ctx context.Context, username string) ([]*models.RefreshToken, error)

	// Revoke flips the revoked flag on the record with the given id and
	// reports whether a row actually changed. A record that is already
	// revoked yields false, which callers use to detect a lost race.
	Revoke(ctx context.Context, id string) (bool, error)

	// RevokeAllForUser revokes every active record of the user
	// (logout-everywhere).
	RevokeAllForUser(ctx context.Context, username string) error
}
