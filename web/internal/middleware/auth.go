package middleware

import (
	"log/slog"
	"net/http"

	"github.com/freelancekenya/kazi/internal/routes"
	"github.com/freelancekenya/kazi/internal/session"
)

// SessionSource is the slice of the session bootstrapper the guard reads
type SessionSource interface {
	Current() session.Session
	Loading() bool
}

// Guard applies route authorization decisions to incoming requests
type Guard struct {
	sessions SessionSource
	loading  http.Handler
	notFound http.Handler
	log      *slog.Logger
}

// NewGuard creates a guard. loading and notFound render the transient
// loading placeholder and the not-found screen.
func NewGuard(sessions SessionSource, loading, notFound http.Handler, logger *slog.Logger) *Guard {
	return &Guard{
		sessions: sessions,
		loading:  loading,
		notFound: notFound,
		log:      logger.With(slog.String("component", "route_guard")),
	}
}

// Authorize evaluates the request path against the current session and
// either passes through to next, renders a placeholder, or redirects
func (g *Guard) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decision := routes.Decide(r.URL.Path, g.sessions.Current(), g.sessions.Loading())

		switch decision {
		case routes.Render:
			next.ServeHTTP(w, r)
		case routes.ShowLoading:
			g.loading.ServeHTTP(w, r)
		case routes.RenderNotFound:
			g.notFound.ServeHTTP(w, r)
		default:
			target := decision.Target()
			g.log.Debug("redirecting",
				slog.String("path", r.URL.Path),
				slog.String("target", target))
			http.Redirect(w, r, target, http.StatusSeeOther)
		}
	})
}
