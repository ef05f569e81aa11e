package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken is returned when an empty token is parsed
	ErrNoToken = errors.New("no token")

	// ErrInvalidToken is returned when the token cannot be parsed
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when the token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrMissingSubject is returned when the token has no subject claim
	ErrMissingSubject = errors.New("token missing subject claim")
)

// Claims is the subset of ID-token claims the client cares about
type Claims struct {
	UserID         string
	Email          string
	SignInProvider string
	ExpiresAt      time.Time
}

// ParseIDTokenClaims extracts claims from a provider ID token.
// The signature is not verified here; the backend verifies it on every
// verification call, the client only needs the payload.
func ParseIDTokenClaims(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}

	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}

	// exp claim is a NumericDate (Unix timestamp)
	if exp, ok := mapClaims["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0)
		if time.Now().After(claims.ExpiresAt) {
			return nil, ErrTokenExpired
		}
	}

	// Subject can be in "sub" or the provider's "user_id" claim
	if sub, ok := mapClaims["sub"].(string); ok && sub != "" {
		claims.UserID = sub
	} else if uid, ok := mapClaims["user_id"].(string); ok {
		claims.UserID = uid
	}

	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}

	// The sign-in provider lives in the nested "firebase" claim
	if fb, ok := mapClaims["firebase"].(map[string]interface{}); ok {
		if provider, ok := fb["sign_in_provider"].(string); ok {
			claims.SignInProvider = provider
		}
	}

	if claims.UserID == "" {
		return nil, ErrMissingSubject
	}

	return claims, nil
}

// IsTokenExpired checks if an ID token is expired without extracting claims.
// Returns true if expired or unparseable.
func IsTokenExpired(tokenString string) bool {
	if tokenString == "" {
		return true
	}

	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return true
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return true
	}

	if exp, ok := mapClaims["exp"].(float64); ok {
		return time.Now().After(time.Unix(int64(exp), 0))
	}

	// No expiration claim: let the backend reject it if it's actually invalid
	return false
}
