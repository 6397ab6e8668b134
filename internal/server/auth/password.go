package auth

import (
	"crypto/sha256"
	"fmt"

	"github.com/dmitrijs2005/picshare/internal/common"
	"golang.org/x/crypto/bcrypt"
)

const (
	// passwordHashCost is the bcrypt work factor for user passwords.
	passwordHashCost = 12
	// tokenHashCost is the bcrypt work factor for stored refresh-token
	// hashes. Lower than the password cost: rotation scans every active
	// record for the user, and the token itself already has full entropy.
	tokenHashCost = 10
)

// Every input is reduced with SHA-256 before the bcrypt pass: bcrypt reads
// only the first 72 bytes and Go's implementation rejects longer input
// outright, while signed refresh tokens (and passwords up to the validation
// bound) can exceed that. The digest keeps the full input significant without
// giving up the salted slow hash.
func slowHash(input string, cost int) (string, error) {
	digest := sha256.Sum256([]byte(input))
	hash, err := bcrypt.GenerateFromPassword(digest[:], cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrHashing, err)
	}
	return string(hash), nil
}

func slowVerify(input, hash string) bool {
	digest := sha256.Sum256([]byte(input))
	return bcrypt.CompareHashAndPassword([]byte(hash), digest[:]) == nil
}

// HashPassword hashes a plaintext password. An error is returned only on
// resource failure inside bcrypt, never on any property of the input
// password.
func HashPassword(password string) (string, error) {
	return slowHash(password, passwordHashCost)
}

// VerifyPassword reports whether password matches the stored hash.
// A mismatch is not an error.
func VerifyPassword(password, hash string) bool {
	return slowVerify(password, hash)
}

// HashToken hashes a raw refresh token for persistence.
func HashToken(token string) (string, error) {
	return slowHash(token, tokenHashCost)
}

// VerifyToken reports whether a raw refresh token matches a stored hash.
func VerifyToken(token, hash string) bool {
	return slowVerify(token, hash)
}
