package utils // package utils provides helper functions for token creation and hashing

import (
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string. Exp stores the expiration
// timestamp as a time.Time. Tokens are carried in the Authorization
// header when calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user. It takes the
// signing secret, the user's numeric ID, username and public id, and a
// TTL in hours. The claims carry identity only: `sub` holds the user ID,
// `username` and `public_id` the matching profile fields, plus the
// standard `exp` and `iat`. Authorization (admin or not) is deliberately
// absent from the token and is re-derived from the store on every
// privileged request.
func NewAccessToken(secret string, userID uint64, username, publicID string, ttlHours int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlHours) * time.Hour)
	claims := jwt.MapClaims{
		"sub":       userID,
		"username":  username,
		"public_id": publicID,
		"exp":       exp.Unix(),
		"iat":       time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
