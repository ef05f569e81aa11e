// Package session wraps gorilla/sessions for the web front end. The cookie
// carries only the OAuth state parameter and flash messages; the signed-in
// identity itself lives in the process-wide session bootstrapper and is
// never written to a cookie.
package session

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	// SessionName is the name of the session cookie
	SessionName = "kazi_session"

	// stateKey is the session key for the OAuth CSRF state
	stateKey = "oauth_state"

	// flashKey is the session key for one-shot notices
	flashKey = "flash"
)

// Manager wraps gorilla/sessions for our use case
type Manager struct {
	store *sessions.CookieStore
}

// NewManager creates a new session manager.
// secretKey should be 32 bytes.
func NewManager(secretKey []byte) *Manager {
	store := sessions.NewCookieStore(secretKey)

	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   24 * 60 * 60,
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		store: store,
	}
}

// SetOAuthState stores the CSRF state for an in-flight OAuth redirect
func (m *Manager) SetOAuthState(r *http.Request, w http.ResponseWriter, state string) error {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		session, _ = m.store.New(r, SessionName)
	}

	session.Values[stateKey] = state
	return session.Save(r, w)
}

// TakeOAuthState returns and clears the stored CSRF state
func (m *Manager) TakeOAuthState(r *http.Request, w http.ResponseWriter) (string, error) {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		return "", err
	}

	state, ok := session.Values[stateKey].(string)
	if !ok || state == "" {
		return "", http.ErrNoCookie
	}

	delete(session.Values, stateKey)
	if err := session.Save(r, w); err != nil {
		return "", err
	}
	return state, nil
}

// AddFlash queues a one-shot notice for the next rendered page
func (m *Manager) AddFlash(r *http.Request, w http.ResponseWriter, message string) {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		session, _ = m.store.New(r, SessionName)
	}

	session.AddFlash(message, flashKey)
	_ = session.Save(r, w)
}

// TakeFlashes returns and clears any queued notices
func (m *Manager) TakeFlashes(r *http.Request, w http.ResponseWriter) []string {
	session, err := m.store.Get(r, SessionName)
	if err != nil {
		return nil
	}

	raw := session.Flashes(flashKey)
	if len(raw) == 0 {
		return nil
	}
	_ = session.Save(r, w)

	flashes := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			flashes = append(flashes, s)
		}
	}
	return flashes
}
