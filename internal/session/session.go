// Package session owns the process-wide authentication state: who is signed
// in and what the backend knows about them. The Bootstrapper reconciles
// identity-provider events against the backend and publishes a unified
// Session; everything else in the client treats that Session as read-only.
package session

import (
	"strings"

	"github.com/freelancekenya/kazi/internal/api"
	"github.com/freelancekenya/kazi/internal/identity"
)

// Profile is the client's unified view of the signed-in user. When the full
// backend profile could not be fetched it carries minimal fallback data and
// Degraded is set.
type Profile struct {
	UserExists  bool
	UserID      string // empty until the user completes their profile
	Email       string
	FirebaseUID string
	AuthMethod  api.AuthMethod
	IsActivated bool

	FullName       string
	EarningsWallet float64
	ReferralWallet float64
	Rating         float64
	TotalReviews   int

	// Degraded marks a minimal fallback profile (full fetch failed)
	Degraded bool

	// Detail is the full backend record when available
	Detail *api.UserProfile
}

// Session is either unauthenticated (Principal nil) or authenticated with a
// profile view. It is replaced atomically on every reconciliation.
type Session struct {
	Principal *identity.Principal
	Profile   *Profile
}

// Authenticated reports whether a principal is signed in
func (s Session) Authenticated() bool {
	return s.Principal != nil
}

// NeedsProfile reports whether the signed-in user still has to complete
// their backend profile (new-user state, no user record yet)
func (s Session) NeedsProfile() bool {
	return s.Authenticated() && (s.Profile == nil || s.Profile.UserID == "")
}

// FullProfile builds a Profile from a verified identity and the fetched
// backend record
func FullProfile(ident api.BackendIdentity, detail *api.UserProfile) *Profile {
	return &Profile{
		UserExists:     true,
		UserID:         ident.UserID,
		Email:          ident.Email,
		FirebaseUID:    ident.FirebaseUID,
		AuthMethod:     ident.AuthMethod,
		IsActivated:    detail.IsActivated || ident.IsActivated,
		FullName:       detail.FullName,
		EarningsWallet: detail.EarningsWallet,
		ReferralWallet: detail.ReferralWallet,
		Rating:         detail.Rating,
		TotalReviews:   detail.TotalReviews,
		Detail:         detail,
	}
}

// MinimalProfile builds the fallback Profile used when the profile fetch
// fails after a successful verification. The user stays signed in with
// degraded data rather than being logged out.
func MinimalProfile(ident api.BackendIdentity) *Profile {
	return &Profile{
		UserExists:  true,
		UserID:      ident.UserID,
		Email:       ident.Email,
		FirebaseUID: ident.FirebaseUID,
		AuthMethod:  ident.AuthMethod,
		IsActivated: ident.IsActivated,
		FullName:    displayNameFromEmail(ident.Email),
		Degraded:    true,
	}
}

// NewUserProfile builds the placeholder Profile for an identity the backend
// has never seen (profile completion pending, UserID empty)
func NewUserProfile(ident api.BackendIdentity) *Profile {
	return &Profile{
		UserExists:  false,
		Email:       ident.Email,
		FirebaseUID: ident.FirebaseUID,
		AuthMethod:  ident.AuthMethod,
		FullName:    displayNameFromEmail(ident.Email),
	}
}

// displayNameFromEmail derives a placeholder display name from the local
// part of an email address
func displayNameFromEmail(email string) string {
	if local, _, found := strings.Cut(email, "@"); found && local != "" {
		return local
	}
	if email != "" {
		return email
	}
	return "New User"
}
