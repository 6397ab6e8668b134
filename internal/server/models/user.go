// Package models contains the persistent row types of the server.
package models

import "time"

type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
