package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

const (
	defaultSignInEndpoint = "https://identitytoolkit.googleapis.com/v1"
	defaultTokenEndpoint  = "https://securetoken.googleapis.com/v1"

	// refreshSkew refreshes tokens slightly before their reported expiry
	refreshSkew = 2 * time.Minute
)

// Provider holds the current signed-in principal and its credentials,
// entirely in memory. Every process start begins signed out.
type Provider struct {
	apiKey         string
	signInEndpoint string
	tokenEndpoint  string
	http           *http.Client

	mu           sync.Mutex
	principal    *Principal
	idToken      string
	idTokenExp   time.Time
	refreshToken string

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

// Option adjusts provider construction; used by tests to point at a fake
type Option func(*Provider)

// WithEndpoints overrides the sign-in and token endpoints
func WithEndpoints(signIn, token string) Option {
	return func(p *Provider) {
		p.signInEndpoint = signIn
		p.tokenEndpoint = token
	}
}

// NewProvider creates an identity provider client for the given API key
func NewProvider(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		apiKey:         apiKey,
		signInEndpoint: defaultSignInEndpoint,
		tokenEndpoint:  defaultTokenEndpoint,
		http:           &http.Client{Timeout: 15 * time.Second},
		subs:           make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Subscribe registers a listener for auth-state changes. The listener is
// invoked synchronously, first with the current state and then on every
// sign-in and sign-out. The returned function cancels the subscription.
func (p *Provider) Subscribe(fn func(Event)) (unsubscribe func()) {
	p.subMu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.subMu.Unlock()

	// Initial delivery mirrors the provider's "fire on attach" contract
	fn(Event{Principal: p.CurrentPrincipal()})

	return func() {
		p.subMu.Lock()
		delete(p.subs, id)
		p.subMu.Unlock()
	}
}

// CurrentPrincipal returns the signed-in principal, or nil
func (p *Provider) CurrentPrincipal() *Principal {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.principal == nil {
		return nil
	}
	principal := *p.principal
	return &principal
}

// SignOut clears the principal and notifies subscribers
func (p *Provider) SignOut() {
	p.mu.Lock()
	p.principal = nil
	p.idToken = ""
	p.idTokenExp = time.Time{}
	p.refreshToken = ""
	p.mu.Unlock()

	p.broadcast(Event{Principal: nil})
}

// IDToken returns a valid ID token for the current principal, refreshing
// through the provider's token endpoint when forced or near expiry
func (p *Provider) IDToken(ctx context.Context, forceRefresh bool) (string, error) {
	p.mu.Lock()
	if p.principal == nil {
		p.mu.Unlock()
		return "", ErrNotSignedIn
	}
	token := p.idToken
	expired := time.Now().Add(refreshSkew).After(p.idTokenExp)
	refreshToken := p.refreshToken
	p.mu.Unlock()

	if !forceRefresh && !expired && token != "" {
		return token, nil
	}

	return p.refresh(ctx, refreshToken)
}

// SignInWithPassword signs in with email and password
func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*Principal, error) {
	req := map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}

	var resp signInResponse
	if err := p.call(ctx, p.signInEndpoint+"/accounts:signInWithPassword", req, &resp); err != nil {
		return nil, err
	}

	return p.completeSignIn(resp, "password"), nil
}

// SignInWithGoogleIDToken signs in with a Google ID token obtained through an
// OAuth code exchange (the web client's equivalent of the Google popup)
func (p *Provider) SignInWithGoogleIDToken(ctx context.Context, googleIDToken, requestURI string) (*Principal, error) {
	req := map[string]interface{}{
		"postBody":            "id_token=" + url.QueryEscape(googleIDToken) + "&providerId=google.com",
		"requestUri":          requestURI,
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	}

	var resp signInResponse
	if err := p.call(ctx, p.signInEndpoint+"/accounts:signInWithIdp", req, &resp); err != nil {
		return nil, err
	}

	return p.completeSignIn(resp, "google.com"), nil
}

// RestoreRefreshToken signs in from a previously issued refresh token.
// Used by the CLI, whose credentials file outlives the process; the session
// layer still re-verifies with the backend afterwards.
func (p *Provider) RestoreRefreshToken(ctx context.Context, refreshToken string) (*Principal, error) {
	token, err := p.refreshWith(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	claims, err := ParseIDTokenClaims(token)
	if err != nil {
		return nil, fmt.Errorf("parsing restored token: %w", err)
	}

	p.mu.Lock()
	p.principal = &Principal{UID: claims.UserID, Email: claims.Email, Provider: claims.SignInProvider}
	principal := *p.principal
	p.mu.Unlock()

	p.broadcast(Event{Principal: &principal})
	return &principal, nil
}

// RefreshToken exposes the current refresh token for credential storage
func (p *Provider) RefreshToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshToken
}

type signInResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	ProviderID   string `json:"providerId"`
}

// completeSignIn stores credentials, updates the principal, and notifies
func (p *Provider) completeSignIn(resp signInResponse, fallbackProvider string) *Principal {
	provider := resp.ProviderID
	if provider == "" {
		provider = fallbackProvider
	}

	principal := &Principal{
		UID:      resp.LocalID,
		Email:    resp.Email,
		Provider: provider,
	}

	p.mu.Lock()
	p.principal = principal
	p.idToken = resp.IDToken
	p.idTokenExp = time.Now().Add(parseExpiresIn(resp.ExpiresIn))
	p.refreshToken = resp.RefreshToken
	copied := *principal
	p.mu.Unlock()

	p.broadcast(Event{Principal: &copied})
	return &copied
}

// refresh performs a refresh grant and stores the new token
func (p *Provider) refresh(ctx context.Context, refreshToken string) (string, error) {
	return p.refreshWith(ctx, refreshToken)
}

func (p *Provider) refreshWith(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrNotSignedIn
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}

	endpoint := p.tokenEndpoint + "/token?key=" + url.QueryEscape(p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("refreshing token: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return "", p.providerError(httpResp)
	}

	var resp struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return "", fmt.Errorf("decoding token refresh response: %w", err)
	}

	p.mu.Lock()
	p.idToken = resp.IDToken
	p.idTokenExp = time.Now().Add(parseExpiresIn(resp.ExpiresIn))
	p.refreshToken = resp.RefreshToken
	p.mu.Unlock()

	return resp.IDToken, nil
}

// call posts a JSON request to an identity-toolkit endpoint
func (p *Provider) call(ctx context.Context, endpoint string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?key="+url.QueryEscape(p.apiKey), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return p.providerError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// providerError decodes the provider's error envelope into a *ProviderError
func (p *Provider) providerError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		return &ProviderError{Code: envelope.Error.Message}
	}
	return &ProviderError{Code: "HTTP_" + strconv.Itoa(resp.StatusCode)}
}

// broadcast delivers an event to all subscribers synchronously
func (p *Provider) broadcast(event Event) {
	p.subMu.Lock()
	listeners := make([]func(Event), 0, len(p.subs))
	for _, fn := range p.subs {
		listeners = append(listeners, fn)
	}
	p.subMu.Unlock()

	for _, fn := range listeners {
		fn(event)
	}
}

// parseExpiresIn parses the provider's string-typed seconds field
func parseExpiresIn(s string) time.Duration {
	secs, err := strconv.Atoi(s)
	if err != nil || secs <= 0 {
		return time.Hour
	}
	return time.Duration(secs) * time.Second
}
