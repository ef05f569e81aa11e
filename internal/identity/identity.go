// Package identity talks to the third-party identity provider that issues
// short-lived ID tokens for signed-in principals. The provider owns sign-in,
// sign-out, and token refresh; the session package consumes its auth-state
// change events and never touches tokens beyond passing them to the backend.
package identity

import (
	"context"
	"errors"
	"fmt"
)

// Principal is the identity-provider user currently signed in
type Principal struct {
	UID      string
	Email    string
	Provider string // "google.com", "password", "phone"
}

// Event is delivered to subscribers on every auth-state change.
// Principal is nil when the change is a sign-out.
type Event struct {
	Principal *Principal
}

// TokenSource issues ID tokens for the current principal.
// forceRefresh skips the cached token and performs a refresh grant, so the
// caller never operates on an expired token.
type TokenSource interface {
	IDToken(ctx context.Context, forceRefresh bool) (string, error)
}

var (
	// ErrNotSignedIn is returned when a token is requested with no principal
	ErrNotSignedIn = errors.New("no principal signed in")

	// ErrInvalidCredentials is returned when the provider rejects a sign-in
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ProviderError is a structured rejection from the identity provider
// (e.g. INVALID_PASSWORD, EMAIL_NOT_FOUND, TOKEN_EXPIRED)
type ProviderError struct {
	Code string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider: %s", e.Code)
}

// Is lets sign-in rejections match ErrInvalidCredentials
func (e *ProviderError) Is(target error) bool {
	if target != ErrInvalidCredentials {
		return false
	}
	switch e.Code {
	case "INVALID_PASSWORD", "EMAIL_NOT_FOUND", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		return true
	}
	return false
}

// UserMessage maps provider error codes to a message safe to show users
func (e *ProviderError) UserMessage() string {
	switch e.Code {
	case "INVALID_PASSWORD", "EMAIL_NOT_FOUND", "INVALID_LOGIN_CREDENTIALS":
		return "Invalid email or password"
	case "USER_DISABLED":
		return "This account has been disabled"
	case "EMAIL_EXISTS":
		return "An account with this email already exists"
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return "Too many attempts, please try again later"
	default:
		return "Sign-in failed, please try again"
	}
}
