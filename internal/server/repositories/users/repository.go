// Package users declares the server-side repository contract for user
// accounts in persistent storage.
package users

import (
	"context"

	"github.com/dmitrijs2005/picshare/internal/server/models"
)

// Repository defines operations for creating and looking up user accounts.
type Repository interface {
	// Create inserts a new user. A duplicate username yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) error

	// GetByUsername returns the user with the given username or
	// common.ErrorNotFound.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Exists reports whether a user with the given username is present.
	Exists(ctx context.Context, username string) (bool, error)
}
