package refreshtokens

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/picshare/internal/dbx"
	"github.com/dmitrijs2005/picshare/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new refresh-token record with revoked=false.
func (r *PostgresRepository) Create(ctx context.Context, username string, tokenHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (username, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, username, tokenHash, expiresAt); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

// ListActive returns the user's non-revoked, non-expired records.
func (r *PostgresRepository) ListActive(ctx context.Context, username string) ([]*models.RefreshToken, error) {
	query := `
		SELECT id, username, token_hash, expires_at, revoked, created_at
		FROM refresh_tokens
		WHERE username = $1 AND revoked = false AND expires_at > now()
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var tokens []*models.RefreshToken
	for rows.Next() {
		token := &models.RefreshToken{}
		if err := rows.Scan(&token.ID, &token.Username, &token.TokenHash, &token.ExpiresAt, &token.Revoked, &token.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tokens, nil
}

// Revoke marks the record revoked. The revoked=false guard makes the update
// a no-op when another transaction got there first; the boolean result tells
// the caller which of the two it was.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked = true
		WHERE id = $1 AND revoked = false
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected > 0, nil
}

// RevokeAllForUser revokes every active record of the user.
func (r *PostgresRepository) RevokeAllForUser(ctx context.Context, username string) error {
	query := `
		UPDATE refresh_tokens
		SET revoked = true
		WHERE username = $1 AND revoked = false
	`
	if _, err := r.db.ExecContext(ctx, query, username); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
