package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/freelancekenya/kazi/internal/api"
	"github.com/freelancekenya/kazi/internal/identity"
)

// fakeIdentity is an in-memory IdentitySource whose events are driven
// directly by tests
type fakeIdentity struct {
	mu        sync.Mutex
	principal *identity.Principal
	token     string
	tokenErr  error
	subs      map[int]func(identity.Event)
	next      int
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{token: "test-token", subs: make(map[int]func(identity.Event))}
}

func (f *fakeIdentity) IDToken(ctx context.Context, forceRefresh bool) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tokenErr != nil {
		return "", f.tokenErr
	}
	return f.token, nil
}

func (f *fakeIdentity) Subscribe(fn func(identity.Event)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = fn
	principal := f.principal
	f.mu.Unlock()

	fn(identity.Event{Principal: principal})
	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

func (f *fakeIdentity) emit(principal *identity.Principal) {
	f.mu.Lock()
	f.principal = principal
	subs := make([]func(identity.Event), 0, len(f.subs))
	for _, fn := range f.subs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()

	for _, fn := range subs {
		fn(identity.Event{Principal: principal})
	}
}

// fakeBackend implements Verifier with canned responses and optional
// per-call gating so tests can control reconciliation ordering
type fakeBackend struct {
	mu         sync.Mutex
	identity   *api.BackendIdentity
	verifyErr  error
	profile    *api.UserProfile
	profileErr error

	verifyGate chan struct{} // if set, VerifyFirebaseAuth waits on it
	calls      int
}

func (f *fakeBackend) VerifyFirebaseAuth(ctx context.Context, idToken string) (*api.BackendIdentity, error) {
	f.mu.Lock()
	f.calls++
	gate := f.verifyGate
	ident, err := f.identity, f.verifyErr
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	out := *ident
	return &out, nil
}

func (f *fakeBackend) GetUserProfile(ctx context.Context, userID string) (*api.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	out := *f.profile
	return &out, nil
}

// recorder collects listener notifications for assertions
type recorder struct {
	mu     sync.Mutex
	events []recorded
	ch     chan recorded
}

type recorded struct {
	session Session
	loading bool
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan recorded, 16)}
}

func (r *recorder) listen(session Session, loading bool) {
	r.mu.Lock()
	r.events = append(r.events, recorded{session, loading})
	r.mu.Unlock()
	r.ch <- recorded{session, loading}
}

func (r *recorder) wait(t *testing.T) recorded {
	t.Helper()
	select {
	case ev := <-r.ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session notification")
		return recorded{}
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPrincipal() *identity.Principal {
	return &identity.Principal{UID: "firebase-uid-1", Email: "jane@example.com", Provider: "password"}
}

func testIdentityResponse() *api.BackendIdentity {
	return &api.BackendIdentity{
		UserExists:  true,
		UserID:      "user-42",
		Email:       "jane@example.com",
		FirebaseUID: "firebase-uid-1",
		AuthMethod:  api.AuthMethodEmail,
		IsActivated: true,
	}
}

func testProfile() *api.UserProfile {
	return &api.UserProfile{
		UserID:         "user-42",
		Email:          "jane@example.com",
		FullName:       "Jane Wanjiku",
		IsActivated:    true,
		EarningsWallet: 1500,
		ReferralWallet: 200,
		Rating:         4.5,
		TotalReviews:   12,
	}
}

func TestBootstrapperSignedOut(t *testing.T) {
	ident := newFakeIdentity()
	backend := &fakeBackend{}
	rec := newRecorder()

	b := New(ident, backend, testLogger())
	defer b.Close()
	b.Subscribe(rec.listen)

	ev := rec.wait(t)
	if ev.loading {
		t.Error("loading should be false after signed-out reconciliation")
	}
	if ev.session.Authenticated() {
		t.Error("signed-out event should produce an unauthenticated session")
	}
	if b.Loading() {
		t.Error("Loading() should report false")
	}
}

func TestBootstrapperVerifiedUser(t *testing.T) {
	ident := newFakeIdentity()
	backend := &fakeBackend{identity: testIdentityResponse(), profile: testProfile()}
	rec := newRecorder()

	b := New(ident, backend, testLogger())
	defer b.Close()
	b.Subscribe(rec.listen)
	rec.wait(t) // initial signed-out state

	ident.emit(testPrincipal())
	ev := rec.wait(t)

	if !ev.session.Authenticated() {
		t.Fatal("expected authenticated session")
	}
	p := ev.session.Profile
	if p.UserID != "user-42" {
		t.Errorf("UserID = %q, want user-42", p.UserID)
	}
	if p.Degraded {
		t.Error("full profile should not be marked degraded")
	}
	if p.EarningsWallet != 1500 || p.ReferralWallet != 200 {
		t.Errorf("wallets = %v/%v, want 1500/200", p.EarningsWallet, p.ReferralWallet)
	}
	if ev.session.NeedsProfile() {
		t.Error("existing user should not need profile completion")
	}
}

func TestBootstrapperProfileFetchFailure(t *testing.T) {
	ident := newFakeIdentity()
	backend := &fakeBackend{
		identity:   testIdentityResponse(),
		profileErr: &api.Error{Status: 500, Endpoint: "/get-user-profile/", Message: "boom"},
	}
	rec := newRecorder()

	b := New(ident, backend, testLogger())
	defer b.Close()
	b.Subscribe(rec.listen)
	rec.wait(t)

	ident.emit(testPrincipal())
	ev := rec.wait(t)

	if !ev.session.Authenticated() {
		t.Fatal("profile failure should still leave the session authenticated")
	}
	p := ev.session.Profile
	if !p.Degraded {
		t.Error("expected degraded profile")
	}
	if p.UserID != "user-42" {
		t.Errorf("UserID = %q, want user-42", p.UserID)
	}
	if p.EarningsWallet != 0 || p.ReferralWallet != 0 {
		t.Error("degraded profile should carry zero wallet balances")
	}
}

func TestBootstrapperNewUser(t *testing.T) {
	ident := newFakeIdentity()
	backend := &fakeBackend{
		identity: &api.BackendIdentity{UserExists: false, Email: "new@example.com", FirebaseUID: "firebase-uid-1"},
	}
	rec := newRecorder()

	b := New(ident, backend, testLogger())
	defer b.Close()
	b.Subscribe(rec.listen)
	rec.wait(t)

	ident.emit(testPrincipal())
	ev := rec.wait(t)

	if !ev.session.Authenticated() {
		t.Fatal("new user should be authenticated")
	}
	if ev.session.Profile.UserID != "" {
		t.Errorf("new user UserID = %q, want empty", ev.session.Profile.UserID)
	}
	if !ev.session.NeedsProfile() {
		t.Error("new user should need profile completion")
	}
}

func TestBootstrapperVerificationFailure(t *testing.T) {
	ident := newFakeIdentity()
	backend := &fakeBackend{verifyErr: fmt.Errorf("connection refused")}
	rec := newRecorder()

	b := New(ident, backend, testLogger())
	defer b.Close()
	b.Subscribe(rec.listen)
	rec.wait(t)

	ident.emit(testPrincipal())
	ev := rec.wait(t)

	if ev.session.Authenticated() {
		t.Error("verification failure should resolve to signed out")
	}
	if ev.loading {
		t.Error("loading must still settle to false on failure")
	}
}

func TestBootstrapperStaleReconciliationDropped(t *testing.T) {
	ident := newFakeIdentity()
	gate := make(chan struct{})
	backend := &fakeBackend{
		identity:   testIdentityResponse(),
		profile:    testProfile(),
		verifyGate: gate,
	}
	rec := newRecorder()

	b := New(ident, backend, testLogger())
	defer b.Close()
	b.Subscribe(rec.listen)
	rec.wait(t)

	// First sign-in stalls inside verification
	ident.emit(testPrincipal())

	// Sign-out supersedes it before it completes
	ident.emit(nil)
	ev := rec.wait(t)
	if ev.session.Authenticated() {
		t.Fatal("sign-out should win over the in-flight reconciliation")
	}

	// Release the stalled pass; its result must be discarded
	close(gate)
	time.Sleep(100 * time.Millisecond)

	if got := b.Current(); got.Authenticated() {
		t.Error("stale reconciliation overwrote a newer signed-out state")
	}
	select {
	case ev := <-rec.ch:
		t.Errorf("stale reconciliation published a notification: %+v", ev)
	default:
	}
}

func TestBootstrapperSafetyTimeout(t *testing.T) {
	// An identity source that never emits anything
	ident := &silentIdentity{}
	backend := &fakeBackend{}
	rec := newRecorder()

	b := New(ident, backend, testLogger(), WithSafetyTimeout(50*time.Millisecond))
	defer b.Close()
	b.Subscribe(rec.listen)

	ev := rec.wait(t) // initial snapshot
	if !ev.loading {
		t.Fatal("should be loading before the safety timeout fires")
	}

	ev = rec.wait(t)
	if ev.loading {
		t.Error("safety timeout should force loading false")
	}
	if ev.session.Authenticated() {
		t.Error("safety timeout should leave an unauthenticated session")
	}
}

type silentIdentity struct{}

func (s *silentIdentity) IDToken(ctx context.Context, forceRefresh bool) (string, error) {
	return "", identity.ErrNotSignedIn
}

func (s *silentIdentity) Subscribe(fn func(identity.Event)) func() {
	return func() {}
}

func TestBootstrapperSetProfile(t *testing.T) {
	ident := newFakeIdentity()
	backend := &fakeBackend{identity: testIdentityResponse(), profile: testProfile()}
	rec := newRecorder()

	b := New(ident, backend, testLogger())
	defer b.Close()
	b.Subscribe(rec.listen)
	rec.wait(t)

	ident.emit(testPrincipal())
	rec.wait(t)

	updated := *testProfile()
	updated.FullName = "Jane W. Otieno"
	updated.EarningsWallet = 2750
	b.SetProfile(updated)

	ev := rec.wait(t)
	p := ev.session.Profile
	if p.FullName != "Jane W. Otieno" {
		t.Errorf("FullName = %q, want updated name", p.FullName)
	}
	if p.EarningsWallet != 2750 {
		t.Errorf("EarningsWallet = %v, want 2750", p.EarningsWallet)
	}
	if p.Detail == nil || p.Detail.FullName != "Jane W. Otieno" {
		t.Error("Detail should carry the updated profile")
	}
}

func TestBootstrapperSetProfileIgnoredWhenSignedOut(t *testing.T) {
	ident := newFakeIdentity()
	backend := &fakeBackend{}
	rec := newRecorder()

	b := New(ident, backend, testLogger())
	defer b.Close()
	b.Subscribe(rec.listen)
	rec.wait(t)

	b.SetProfile(*testProfile())
	select {
	case ev := <-rec.ch:
		t.Errorf("SetProfile on a signed-out session notified listeners: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBootstrapperClose(t *testing.T) {
	ident := newFakeIdentity()
	gate := make(chan struct{})
	backend := &fakeBackend{
		identity:   testIdentityResponse(),
		profile:    testProfile(),
		verifyGate: gate,
	}
	rec := newRecorder()

	b := New(ident, backend, testLogger())
	b.Subscribe(rec.listen)
	rec.wait(t)

	ident.emit(testPrincipal())
	b.Close()
	close(gate)
	time.Sleep(100 * time.Millisecond)

	select {
	case ev := <-rec.ch:
		t.Errorf("notification after Close: %+v", ev)
	default:
	}
	if b.Current().Authenticated() {
		t.Error("reconciliation completed after Close should not install state")
	}

	// Events after Close are ignored
	ident.emit(testPrincipal())
	select {
	case <-rec.ch:
		t.Error("identity event after Close reached listeners")
	case <-time.After(50 * time.Millisecond):
	}

	b.Close() // second Close is a no-op
}

func TestBootstrapperUnsubscribe(t *testing.T) {
	ident := newFakeIdentity()
	backend := &fakeBackend{}
	rec := newRecorder()

	b := New(ident, backend, testLogger())
	defer b.Close()
	unsubscribe := b.Subscribe(rec.listen)
	rec.wait(t)

	unsubscribe()
	ident.emit(nil)
	select {
	case ev := <-rec.ch:
		t.Errorf("notification after unsubscribe: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}
