// Package common defines shared constants and sentinel errors used across
// PicShare components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors. ErrInvalidToken covers malformed, expired, revoked and
	// unmatched tokens alike; callers are deliberately not told which.
	ErrInvalidToken = errors.New("invalid token")

	// Infrastructure errors.
	ErrStorage = errors.New("storage error")
	ErrHashing = errors.New("hashing error")
)
