package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/freelancekenya/kazi/internal/api"
	"github.com/freelancekenya/kazi/internal/identity"
	"github.com/freelancekenya/kazi/internal/pkg/metrics"
)

// defaultSafetyTimeout forces the loading flag off if the identity provider
// never delivers its initial event, so the client cannot hang on a loading
// screen forever
const defaultSafetyTimeout = 3 * time.Second

// IdentitySource is the identity-provider surface the bootstrapper consumes
type IdentitySource interface {
	identity.TokenSource

	// Subscribe delivers auth-state change events, starting with the
	// current state; the returned function cancels the subscription
	Subscribe(fn func(identity.Event)) (unsubscribe func())
}

// Verifier is the backend surface used during reconciliation,
// implemented by *api.Client
type Verifier interface {
	VerifyFirebaseAuth(ctx context.Context, idToken string) (*api.BackendIdentity, error)
	GetUserProfile(ctx context.Context, userID string) (*api.UserProfile, error)
}

// Listener observes session and loading-flag changes. Invoked synchronously.
type Listener func(session Session, loading bool)

// Bootstrapper reconciles identity-provider events with the backend into a
// single Session value. It is the only writer of that state.
type Bootstrapper struct {
	tokens  IdentitySource
	backend Verifier
	log     *slog.Logger

	mu          sync.Mutex
	session     Session
	loading     bool
	seq         uint64 // current reconciliation; stale passes must not publish
	cancelPrev  context.CancelFunc
	safetyTimer *time.Timer
	unsubscribe func()
	closed      bool

	listeners    map[int]Listener
	nextListener int
}

// Option adjusts bootstrapper construction
type Option func(*options)

type options struct {
	safetyTimeout time.Duration
}

// WithSafetyTimeout overrides the loading-flag safety timeout
func WithSafetyTimeout(d time.Duration) Option {
	return func(o *options) { o.safetyTimeout = d }
}

// New creates a Bootstrapper and subscribes it to the identity source.
// The initial state is loading until the first reconciliation completes or
// the safety timeout fires.
func New(tokens IdentitySource, backend Verifier, logger *slog.Logger, opts ...Option) *Bootstrapper {
	o := options{safetyTimeout: defaultSafetyTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	b := &Bootstrapper{
		tokens:    tokens,
		backend:   backend,
		log:       logger.With(slog.String("component", "session")),
		loading:   true,
		listeners: make(map[int]Listener),
	}

	b.safetyTimer = time.AfterFunc(o.safetyTimeout, b.forceReady)

	// May fire synchronously with the current identity state
	b.unsubscribe = tokens.Subscribe(b.onAuthStateChanged)

	return b
}

// Current returns the latest reconciled session. Never blocks on I/O.
func (b *Bootstrapper) Current() Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session
}

// Loading reports whether the first reconciliation is still in flight
func (b *Bootstrapper) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

// Subscribe registers a listener for session and loading changes. The
// listener is invoked immediately with the current state, then on every
// change. The returned function cancels the subscription.
func (b *Bootstrapper) Subscribe(fn Listener) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextListener
	b.nextListener++
	b.listeners[id] = fn
	session := b.session
	loading := b.loading
	b.mu.Unlock()

	fn(session, loading)

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// SetProfile pushes an updated profile into the current authenticated
// session without a verification round trip. Used by profile-editing
// screens after a successful update.
func (b *Bootstrapper) SetProfile(detail api.UserProfile) {
	b.mu.Lock()
	if b.session.Principal == nil || b.session.Profile == nil {
		b.mu.Unlock()
		return
	}

	profile := *b.session.Profile
	profile.Detail = &detail
	profile.Degraded = false
	profile.FullName = detail.FullName
	profile.EarningsWallet = detail.EarningsWallet
	profile.ReferralWallet = detail.ReferralWallet
	profile.Rating = detail.Rating
	profile.TotalReviews = detail.TotalReviews
	profile.IsActivated = profile.IsActivated || detail.IsActivated
	if detail.UserID != "" {
		profile.UserID = detail.UserID
		profile.UserExists = true
	}

	b.session.Profile = &profile
	session := b.session
	loading := b.loading
	listeners := b.snapshotListenersLocked()
	b.mu.Unlock()

	b.notify(listeners, session, loading)
}

// Close cancels the identity subscription, the safety timeout, and any
// in-flight reconciliation. Late completions become no-ops.
func (b *Bootstrapper) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	unsubscribe := b.unsubscribe
	cancel := b.cancelPrev
	b.safetyTimer.Stop()
	b.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
}

// onAuthStateChanged starts a reconciliation pass for an identity event,
// superseding any pass still in flight
func (b *Bootstrapper) onAuthStateChanged(event identity.Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}

	b.seq++
	seq := b.seq
	if b.cancelPrev != nil {
		b.cancelPrev()
	}

	if event.Principal == nil {
		// Signed out: terminal for this event, no backend calls needed
		b.cancelPrev = nil
		b.mu.Unlock()
		b.publish(seq, Session{}, metrics.OutcomeSignedOut)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancelPrev = cancel
	principal := *event.Principal
	b.mu.Unlock()

	go b.reconcile(ctx, seq, principal)
}

// reconcile runs the two-step verification protocol for a signed-in
// principal: fresh token, backend verification, then profile fetch
func (b *Bootstrapper) reconcile(ctx context.Context, seq uint64, principal identity.Principal) {
	start := time.Now()
	defer func() {
		metrics.ReconciliationDuration.Observe(float64(time.Since(start).Milliseconds()))
	}()

	log := b.log.With(slog.String("uid", principal.UID))

	// Force a refresh so the verification call never carries an expired token
	token, err := b.tokens.IDToken(ctx, true)
	if err != nil {
		log.Warn("failed to obtain identity token", slog.String("error", err.Error()))
		b.publish(seq, Session{}, metrics.OutcomeError)
		return
	}

	ident, err := b.backend.VerifyFirebaseAuth(ctx, token)
	if err != nil {
		// The UI does not distinguish "backend down" from "not logged in";
		// both resolve to an unauthenticated session
		log.Warn("backend verification failed", slog.String("error", err.Error()))
		b.publish(seq, Session{}, metrics.OutcomeError)
		return
	}

	if !ident.UserExists || ident.UserID == "" {
		// Valid identity with no backend record yet: authenticated, but
		// routed to profile completion by the empty UserID
		log.Info("verified new user, profile completion pending",
			slog.String("email", ident.Email))
		b.publish(seq, Session{
			Principal: &principal,
			Profile:   NewUserProfile(*ident),
		}, metrics.OutcomeNewUser)
		return
	}

	detail, err := b.backend.GetUserProfile(ctx, ident.UserID)
	if err != nil {
		// Still signed in; only the profile data is degraded
		log.Warn("profile fetch failed, using minimal profile",
			slog.String("user_id", ident.UserID),
			slog.String("error", err.Error()))
		b.publish(seq, Session{
			Principal: &principal,
			Profile:   MinimalProfile(*ident),
		}, metrics.OutcomeDegraded)
		return
	}

	b.publish(seq, Session{
		Principal: &principal,
		Profile:   FullProfile(*ident, detail),
	}, metrics.OutcomeAuthenticated)
}

// publish installs the result of reconciliation pass seq, unless a newer
// pass has superseded it or the bootstrapper has been closed
func (b *Bootstrapper) publish(seq uint64, session Session, outcome string) {
	b.mu.Lock()
	if b.closed || seq != b.seq {
		b.mu.Unlock()
		metrics.StaleReconciliations.Inc()
		return
	}

	b.session = session
	b.loading = false
	b.safetyTimer.Stop()
	listeners := b.snapshotListenersLocked()
	b.mu.Unlock()

	metrics.Reconciliations.WithLabelValues(outcome).Inc()
	b.notify(listeners, session, false)
}

// forceReady flips loading off if no reconciliation has completed within the
// safety timeout. A later real reconciliation still replaces the session.
func (b *Bootstrapper) forceReady() {
	b.mu.Lock()
	if b.closed || !b.loading {
		b.mu.Unlock()
		return
	}
	b.loading = false
	session := b.session
	listeners := b.snapshotListenersLocked()
	b.mu.Unlock()

	b.log.Warn("no identity event within safety timeout, leaving loading state")
	b.notify(listeners, session, false)
}

func (b *Bootstrapper) snapshotListenersLocked() []Listener {
	listeners := make([]Listener, 0, len(b.listeners))
	for _, fn := range b.listeners {
		listeners = append(listeners, fn)
	}
	return listeners
}

func (b *Bootstrapper) notify(listeners []Listener, session Session, loading bool) {
	for _, fn := range listeners {
		fn(session, loading)
	}
}
