// Package handlers implements the web front end's screens. Each screen
// fetches its own display data from the backend; fetch failures render as
// inline alerts and never touch the shared session state.
package handlers

import (
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/freelancekenya/kazi/internal/activation"
	"github.com/freelancekenya/kazi/internal/api"
	"github.com/freelancekenya/kazi/internal/identity"
	"github.com/freelancekenya/kazi/internal/session"
	"github.com/freelancekenya/kazi/web/internal/render"
	websession "github.com/freelancekenya/kazi/web/internal/session"
)

// Handler holds dependencies for all web handlers
type Handler struct {
	backend       *api.Client
	identity      *identity.Provider
	sessions      *session.Bootstrapper
	cookies       *websession.Manager
	templates     *render.TemplateSet
	watcher       *activation.Watcher
	oauth         *oauth2.Config
	activationFee float64
	watch         activationState
	log           *slog.Logger
}

// New creates a new handler with dependencies
func New(backend *api.Client, provider *identity.Provider, sessions *session.Bootstrapper,
	cookies *websession.Manager, templates *render.TemplateSet, watcher *activation.Watcher,
	oauth *oauth2.Config, activationFee float64, logger *slog.Logger) *Handler {
	return &Handler{
		backend:       backend,
		identity:      provider,
		sessions:      sessions,
		cookies:       cookies,
		templates:     templates,
		watcher:       watcher,
		oauth:         oauth,
		activationFee: activationFee,
		log:           logger.With(slog.String("component", "web_handler")),
	}
}

// newTemplateData creates a new template data map with standard fields populated.
// Callers add page-specific fields to the returned map.
func (h *Handler) newTemplateData(w http.ResponseWriter, r *http.Request) map[string]interface{} {
	sess := h.sessions.Current()
	data := map[string]interface{}{
		"Session": sess,
		"Flashes": h.cookies.TakeFlashes(r, w),
	}
	if sess.Profile != nil {
		data["Profile"] = sess.Profile
	}
	return data
}

// renderTemplate renders a template with data
func (h *Handler) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	if h.templates == nil {
		http.Error(w, "Templates not loaded", http.StatusInternalServerError)
		return
	}
	h.log.Debug("rendering template", slog.String("template", name))

	err := h.templates.Execute(w, name, data)
	if err != nil {
		h.log.Error("template rendering failed",
			slog.String("template", name),
			slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// currentUserID returns the backend user ID for the signed-in session, or ""
func (h *Handler) currentUserID() string {
	sess := h.sessions.Current()
	if sess.Profile == nil {
		return ""
	}
	return sess.Profile.UserID
}

// Loading renders the transient placeholder shown while the first session
// reconciliation is still in flight
func (h *Handler) Loading(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, "loading.html", h.newTemplateData(w, r))
}

// NotFound renders the not-found screen
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	h.renderTemplate(w, "notfound.html", h.newTemplateData(w, r))
}

// Home renders the public landing page
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, "landing.html", h.newTemplateData(w, r))
}
