package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// Claims binds a token to a user identifier. The payload is deliberately
// minimal: the middleware re-resolves the user on every request, so stale
// profile data in a token is never trusted.
type Claims struct {
	UserID string `json:"userID"`
	jwt.StandardClaims
}

// GenerateJWT issues a signed HS256 bearer token for the given user,
// expiring after expiresIn.
func GenerateJWT(userID, secret string, expiresIn time.Duration) (string, error) {
	now := time.Now()

	claims := &Claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(expiresIn).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    "parkspot",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateJWT checks the token signature and expiry and returns the embedded
// claims. Any failure comes back as an error; callers treat them all as 401.
func ValidateJWT(tokenStr, secret string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		if err == jwt.ErrSignatureInvalid {
			return nil, errors.New("invalid token signature")
		}
		if err.Error() == "Token is expired" {
			return nil, errors.New("token has expired")
		}
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
