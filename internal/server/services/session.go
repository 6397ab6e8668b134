// Package services contains server-side business logic. This file implements
// SessionService, which handles registration, login, logout, and
// issuing/rotating JWTs plus server-stored refresh-token records.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/picshare/internal/common"
	"github.com/dmitrijs2005/picshare/internal/dbx"
	"github.com/dmitrijs2005/picshare/internal/logging"
	"github.com/dmitrijs2005/picshare/internal/server/auth"
	"github.com/dmitrijs2005/picshare/internal/server/config"
	"github.com/dmitrijs2005/picshare/internal/server/models"
	"github.com/dmitrijs2005/picshare/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SessionService provides the credential/session lifecycle:
//   - Register: create a user and mint the first token pair
//   - Login: verify credentials and mint tokens
//   - Refresh: rotate a refresh token and mint a new pair
//   - Logout: revoke one or all of a user's refresh tokens
//   - Authenticate: validate an access token before protected operations
type SessionService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	logger                       logging.Logger
	accessSecret                 []byte
	refreshSecret                []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewSessionService constructs a SessionService using repositories and server config.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *SessionService {
	return &SessionService{
		db:                           db,
		repomanager:                  m,
		logger:                       logger.With("module", "session_service"),
		accessSecret:                 []byte(cfg.AccessSecretKey),
		refreshSecret:                []byte(cfg.RefreshSecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates a new user and returns its first token pair.
// A taken username yields common.ErrorAlreadyExists.
func (s *SessionService) Register(ctx context.Context, username, password string) (*TokenPair, error) {
	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	user := &models.User{Username: username, PasswordHash: passwordHash}
	if err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("%w: error creating user: %v", common.ErrStorage, err)
	}

	pair, err := s.issueTokens(username)
	if err != nil {
		return nil, err
	}
	if err := s.persistRefreshToken(ctx, s.db, username, pair.RefreshToken); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "username", username)
	return pair, nil
}

// Login verifies the provided credentials and, on success, returns a new
// token pair. An unknown username and a wrong password are indistinguishable
// to the caller.
func (s *SessionService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: error loading user: %v", common.ErrStorage, err)
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	pair, err := s.issueTokens(username)
	if err != nil {
		return nil, err
	}
	if err := s.persistRefreshToken(ctx, s.db, username, pair.RefreshToken); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user logged in", "username", username)
	return pair, nil
}

// Refresh validates a refresh token, rotates it transactionally, and returns
// a fresh TokenPair. Every failure mode surfaces the same
// common.ErrInvalidToken so the endpoint cannot be used to probe for
// usernames or token state; the specific reason is logged instead.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	username, err := auth.GetUsernameFromRefreshToken(refreshToken, s.refreshSecret)
	if err != nil {
		s.logger.Warn(ctx, "refresh rejected", "reason", "bad signature or expired")
		return nil, common.ErrInvalidToken
	}

	repo := s.repomanager.RefreshTokens(s.db)
	records, err := repo.ListActive(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%w: error listing refresh tokens: %v", common.ErrStorage, err)
	}

	// The stored hash is salted, so there is nothing to look up by; scan the
	// user's active records and take the first match.
	matched := s.findMatch(refreshToken, records)
	if matched == nil {
		s.logger.Warn(ctx, "refresh rejected", "reason", "no matching active record", "username", username)
		return nil, common.ErrInvalidToken
	}

	pair, err := s.issueTokens(username)
	if err != nil {
		return nil, err
	}

	// Revoking the matched record and inserting its successor must commit
	// together or not at all; a concurrent rotation of the same token loses
	// on the revoked-flag guard inside this transaction.
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)

		revoked, err := repoTx.Revoke(ctx, matched.ID)
		if err != nil {
			return fmt.Errorf("%w: error revoking refresh token: %v", common.ErrStorage, err)
		}
		if !revoked {
			s.logger.Warn(ctx, "refresh rejected", "reason", "lost rotation race", "username", username)
			return common.ErrInvalidToken
		}

		return s.persistRefreshToken(ctx, tx, username, pair.RefreshToken)
	}); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "refresh token rotated", "username", username)
	return pair, nil
}

// Logout revokes the user's refresh tokens. With a specific token it revokes
// the first matching active record; with an empty token it revokes all of
// them (logout-everywhere). A token that matches nothing is not an error.
func (s *SessionService) Logout(ctx context.Context, username, refreshToken string) error {
	repo := s.repomanager.RefreshTokens(s.db)

	if refreshToken == "" {
		if err := repo.RevokeAllForUser(ctx, username); err != nil {
			return fmt.Errorf("%w: error revoking refresh tokens: %v", common.ErrStorage, err)
		}
		s.logger.Info(ctx, "user logged out everywhere", "username", username)
		return nil
	}

	records, err := repo.ListActive(ctx, username)
	if err != nil {
		return fmt.Errorf("%w: error listing refresh tokens: %v", common.ErrStorage, err)
	}
	if matched := s.findMatch(refreshToken, records); matched != nil {
		if _, err := repo.Revoke(ctx, matched.ID); err != nil {
			return fmt.Errorf("%w: error revoking refresh token: %v", common.ErrStorage, err)
		}
	}

	s.logger.Info(ctx, "user logged out", "username", username)
	return nil
}

// Authenticate verifies an access token and confirms that the account behind
// it still exists. It returns common.ErrInvalidToken on signature/expiry
// failures and common.ErrorNotFound when the account has disappeared.
func (s *SessionService) Authenticate(ctx context.Context, accessToken string) (string, error) {
	username, err := auth.GetUsernameFromAccessToken(accessToken, s.accessSecret)
	if err != nil {
		return "", common.ErrInvalidToken
	}

	repo := s.repomanager.Users(s.db)
	exists, err := repo.Exists(ctx, username)
	if err != nil {
		return "", fmt.Errorf("%w: error checking user: %v", common.ErrStorage, err)
	}
	if !exists {
		return "", common.ErrorNotFound
	}

	return username, nil
}

// --- helpers below ---

// issueTokens mints an access/refresh pair for username. It has no side
// effects: persistence is a separate explicit step so callers can retry
// minting without writing.
func (s *SessionService) issueTokens(username string) (*TokenPair, error) {
	access, err := auth.GenerateAccessToken(username, s.accessSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := auth.GenerateRefreshToken(username, s.refreshSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// persistRefreshToken hashes the raw refresh token and stores the record.
// If this fails after the raw token was handed to the client, the client-held
// token is orphaned and will simply fail rotation later.
func (s *SessionService) persistRefreshToken(ctx context.Context, db dbx.DBTX, username, refreshToken string) error {
	tokenHash, err := auth.HashToken(refreshToken)
	if err != nil {
		return err
	}
	repo := s.repomanager.RefreshTokens(db)
	if err := repo.Create(ctx, username, tokenHash, time.Now().Add(s.refreshTokenValidityDuration)); err != nil {
		return fmt.Errorf("%w: error storing refresh token: %v", common.ErrStorage, err)
	}
	return nil
}

func (s *SessionService) findMatch(refreshToken string, records []*models.RefreshToken) *models.RefreshToken {
	for _, record := range records {
		if auth.VerifyToken(refreshToken, record.TokenHash) {
			return record
		}
	}
	return nil
}
