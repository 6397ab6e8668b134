// Package auth implements the credential primitives of the session core:
// HS256 JWT minting and verification for access and refresh tokens, and
// bcrypt hashing for passwords and stored refresh-token records.
package auth

import (
	"time"

	"github.com/dmitrijs2005/picshare/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessClaims carries the single custom claim of an access token: the
// username of the authenticated account.
type AccessClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// RefreshClaims additionally carries TokenID, a random lineage identifier
// minted per refresh token. The id makes every refresh token unique even when
// two are issued for the same user within the same second.
type RefreshClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	TokenID  string `json:"token_id"`
}

// GenerateAccessToken mints a short-lived HS256 access token for username.
func GenerateAccessToken(username string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Username: username,
	})

	return token.SignedString(secretKey)
}

// GenerateRefreshToken mints a long-lived HS256 refresh token for username
// with a fresh random lineage id.
func GenerateRefreshToken(username string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Username: username,
		TokenID:  uuid.NewString(),
	})

	return token.SignedString(secretKey)
}

// GetUsernameFromAccessToken verifies the signature and expiry of an access
// token and returns the embedded username. Any failure, including expiry,
// surfaces common.ErrInvalidToken.
func GetUsernameFromAccessToken(tokenString string, secretKey []byte) (string, error) {
	claims := &AccessClaims{}
	if err := parseToken(tokenString, claims, secretKey); err != nil {
		return "", err
	}
	return claims.Username, nil
}

// GetUsernameFromRefreshToken verifies the signature and expiry of a refresh
// token and returns the embedded username.
func GetUsernameFromRefreshToken(tokenString string, secretKey []byte) (string, error) {
	claims := &RefreshClaims{}
	if err := parseToken(tokenString, claims, secretKey); err != nil {
		return "", err
	}
	return claims.Username, nil
}

func parseToken(tokenString string, claims jwt.Claims, secretKey []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return common.ErrInvalidToken
	}
	if !token.Valid {
		return common.ErrInvalidToken
	}
	return nil
}
