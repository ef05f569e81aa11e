package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newFakeProvider(t *testing.T, signIn http.HandlerFunc, token http.HandlerFunc) *Provider {
	t.Helper()

	mux := http.NewServeMux()
	if signIn != nil {
		mux.HandleFunc("/accounts:signInWithPassword", signIn)
		mux.HandleFunc("/accounts:signInWithIdp", signIn)
	}
	if token != nil {
		mux.HandleFunc("/token", token)
	}

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return NewProvider("test-key", WithEndpoints(server.URL, server.URL))
}

func TestSignInWithPassword_NotifiesSubscribers(t *testing.T) {
	provider := newFakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(signInResponse{
			IDToken:      "id-token",
			RefreshToken: "refresh-token",
			ExpiresIn:    "3600",
			LocalID:      "fb-1",
			Email:        "jane@example.com",
		})
	}, nil)

	var events []Event
	unsubscribe := provider.Subscribe(func(e Event) {
		events = append(events, e)
	})
	defer unsubscribe()

	// Initial delivery is the signed-out state
	if len(events) != 1 || events[0].Principal != nil {
		t.Fatalf("expected initial signed-out event, got %+v", events)
	}

	principal, err := provider.SignInWithPassword(context.Background(), "jane@example.com", "secret")
	if err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}
	if principal.UID != "fb-1" || principal.Provider != "password" {
		t.Errorf("unexpected principal: %+v", principal)
	}

	if len(events) != 2 || events[1].Principal == nil || events[1].Principal.UID != "fb-1" {
		t.Fatalf("expected sign-in event, got %+v", events)
	}

	provider.SignOut()
	if len(events) != 3 || events[2].Principal != nil {
		t.Fatalf("expected sign-out event, got %+v", events)
	}
}

func TestSignInWithPassword_InvalidCredentials(t *testing.T) {
	provider := newFakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"message": "INVALID_PASSWORD"},
		})
	}, nil)

	_, err := provider.SignInWithPassword(context.Background(), "jane@example.com", "wrong")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials match, got %v", err)
	}

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *ProviderError, got %T", err)
	}
	if provErr.UserMessage() != "Invalid email or password" {
		t.Errorf("unexpected user message %q", provErr.UserMessage())
	}

	if provider.CurrentPrincipal() != nil {
		t.Error("failed sign-in must not set a principal")
	}
}

func TestIDToken_ForceRefresh(t *testing.T) {
	refreshCalls := 0
	provider := newFakeProvider(t,
		func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(signInResponse{
				IDToken:      "token-original",
				RefreshToken: "refresh-1",
				ExpiresIn:    "3600",
				LocalID:      "fb-1",
				Email:        "jane@example.com",
			})
		},
		func(w http.ResponseWriter, r *http.Request) {
			refreshCalls++
			if err := r.ParseForm(); err != nil {
				t.Fatalf("parsing refresh form: %v", err)
			}
			if r.PostForm.Get("grant_type") != "refresh_token" {
				t.Errorf("expected refresh_token grant, got %q", r.PostForm.Get("grant_type"))
			}
			json.NewEncoder(w).Encode(map[string]string{
				"id_token":      "token-refreshed",
				"refresh_token": "refresh-2",
				"expires_in":    "3600",
			})
		},
	)

	if _, err := provider.SignInWithPassword(context.Background(), "jane@example.com", "secret"); err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}

	// Fresh token, no force: served from memory
	token, err := provider.IDToken(context.Background(), false)
	if err != nil {
		t.Fatalf("IDToken: %v", err)
	}
	if token != "token-original" || refreshCalls != 0 {
		t.Errorf("expected cached token, got %q after %d refreshes", token, refreshCalls)
	}

	// Forced: must hit the token endpoint
	token, err = provider.IDToken(context.Background(), true)
	if err != nil {
		t.Fatalf("IDToken force: %v", err)
	}
	if token != "token-refreshed" || refreshCalls != 1 {
		t.Errorf("expected refreshed token, got %q after %d refreshes", token, refreshCalls)
	}
	if provider.RefreshToken() != "refresh-2" {
		t.Errorf("expected rotated refresh token, got %q", provider.RefreshToken())
	}
}

func TestIDToken_NotSignedIn(t *testing.T) {
	provider := NewProvider("test-key")
	if _, err := provider.IDToken(context.Background(), true); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("expected ErrNotSignedIn, got %v", err)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	provider := newFakeProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(signInResponse{
			IDToken: "t", RefreshToken: "r", ExpiresIn: "3600", LocalID: "fb-1", Email: "a@b.c",
		})
	}, nil)

	count := 0
	unsubscribe := provider.Subscribe(func(Event) { count++ })
	unsubscribe()

	if _, err := provider.SignInWithPassword(context.Background(), "a@b.c", "pw"); err != nil {
		t.Fatalf("SignInWithPassword: %v", err)
	}
	if count != 1 {
		t.Errorf("expected only the initial delivery, got %d", count)
	}
}
