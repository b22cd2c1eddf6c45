// utils/jwt.go
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload signed into the session cookie.
type SessionClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// SessionTokenDuration is the cookie/token lifetime (30 days, per the
// session-cookie contract in SPEC_FULL.md).
const SessionTokenDuration = 30 * 24 * time.Hour

// SessionIssuer is the JWT issuer claim for session tokens.
const SessionIssuer = "swipevault"

// GenerateSessionToken signs a session JWT for the given user id.
func GenerateSessionToken(userID string, secret []byte) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(SessionTokenDuration)
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    SessionIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	return signed, expiresAt, err
}

// ParseSessionToken validates and decodes a session JWT, returning the user id.
func ParseSessionToken(tokenStr string, secret []byte) (string, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid or expired session token")
	}
	if claims.UserID == "" {
		return "", errors.New("session token missing user id")
	}
	return claims.UserID, nil
}
