// Package routes decides, for each navigable path, whether to render the
// target screen, show a loading placeholder, or redirect, based on the
// current session. Decisions are pure functions of their inputs so the web
// middleware and the terminal client can share them.
package routes

import (
	"strings"

	"github.com/freelancekenya/kazi/internal/session"
)

// Decision is the outcome of evaluating a path against a session
type Decision int

const (
	// ShowLoading renders a transient placeholder while the first
	// session reconciliation is in flight
	ShowLoading Decision = iota
	// Render shows the requested screen
	Render
	// RenderNotFound shows the not-found screen
	RenderNotFound
	// RedirectLogin sends the visitor to the sign-in screen
	RedirectLogin
	// RedirectDashboard sends the visitor to the authenticated landing screen
	RedirectDashboard
	// RedirectCompleteProfile sends a verified-but-unregistered user to
	// profile completion
	RedirectCompleteProfile
)

func (d Decision) String() string {
	switch d {
	case ShowLoading:
		return "loading"
	case Render:
		return "render"
	case RenderNotFound:
		return "not-found"
	case RedirectLogin:
		return "redirect-login"
	case RedirectDashboard:
		return "redirect-dashboard"
	case RedirectCompleteProfile:
		return "redirect-complete-profile"
	}
	return "unknown"
}

// Canonical locations used as redirect targets
const (
	LoginPath           = "/login"
	DashboardPath       = "/dashboard"
	CompleteProfilePath = "/complete-profile"
	ActivationPath      = "/activation"
)

// Target returns the path a redirect decision points at, or "" for
// non-redirect decisions
func (d Decision) Target() string {
	switch d {
	case RedirectLogin:
		return LoginPath
	case RedirectDashboard:
		return DashboardPath
	case RedirectCompleteProfile:
		return CompleteProfilePath
	}
	return ""
}

type routeKind int

const (
	public routeKind = iota
	protected
)

// table maps first path segments to their route kind. Screens register
// here; anything absent is the catch-all.
var table = map[string]routeKind{
	"":                 public, // landing
	"login":            public,
	"complete-profile": public,
	"activation":       public,
	"dashboard":        protected,
	"jobs":             protected,
	"wallet":           protected,
	"messages":         protected,
	"profile":          protected,
}

// Known reports whether path matches a registered screen
func Known(path string) bool {
	_, ok := table[firstSegment(path)]
	return ok
}

// Protected reports whether path requires an authenticated session
func Protected(path string) bool {
	kind, ok := table[firstSegment(path)]
	return ok && kind == protected
}

// Decide evaluates a navigation to path against the session state.
// Evaluated fresh on every request; it holds no state of its own.
func Decide(path string, sess session.Session, loading bool) Decision {
	if loading {
		return ShowLoading
	}

	authed := sess.Authenticated()
	kind, known := table[firstSegment(path)]

	if !known {
		// Unknown paths collapse into the authenticated default rather
		// than showing a signed-in user an error page
		if authed {
			return RedirectDashboard
		}
		return RenderNotFound
	}

	if kind == protected {
		if !authed {
			return RedirectLogin
		}
		if sess.NeedsProfile() {
			return RedirectCompleteProfile
		}
		return Render
	}

	// Public routes bounce authenticated visitors to the dashboard, with
	// two exceptions: a verified user without a backend record stays on
	// profile completion, and an unactivated account stays on activation
	if authed {
		switch firstSegment(path) {
		case "complete-profile":
			if sess.NeedsProfile() {
				return Render
			}
		case "activation":
			if !sess.NeedsProfile() && !sess.Profile.IsActivated {
				return Render
			}
		}
		return RedirectDashboard
	}

	return Render
}

// AlreadyActivated reports whether an authenticated session evaluating the
// activation screen should instead land on the dashboard. This is the
// screen's own guard on top of Decide.
func AlreadyActivated(sess session.Session) bool {
	return sess.Authenticated() && sess.Profile != nil && sess.Profile.IsActivated
}

func firstSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		path = path[:i]
	}
	return path
}
