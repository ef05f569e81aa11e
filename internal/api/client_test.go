package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestVerifyFirebaseAuth_ExistingUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/verify-firebase-auth/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}

		var req struct {
			IDToken string `json:"idToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.IDToken != "token-123" {
			t.Errorf("expected idToken=token-123, got %q", req.IDToken)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"user_exists":  true,
			"user_id":      "u-1",
			"email":        "jane@example.com",
			"firebase_uid": "fb-1",
			"auth_method":  "google",
			"is_activated": true,
		})
	})

	identity, err := client.VerifyFirebaseAuth(context.Background(), "token-123")
	if err != nil {
		t.Fatalf("VerifyFirebaseAuth: %v", err)
	}
	if !identity.UserExists || identity.UserID != "u-1" {
		t.Errorf("unexpected identity: %+v", identity)
	}
	if identity.AuthMethod != AuthMethodGoogle {
		t.Errorf("expected auth_method=google, got %q", identity.AuthMethod)
	}
}

func TestVerifyFirebaseAuth_NewUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"user_exists":  false,
			"user_id":      nil,
			"email":        "new@example.com",
			"firebase_uid": "fb-2",
			"auth_method":  "email",
			"is_activated": false,
		})
	})

	identity, err := client.VerifyFirebaseAuth(context.Background(), "token-456")
	if err != nil {
		t.Fatalf("VerifyFirebaseAuth: %v", err)
	}
	if identity.UserExists {
		t.Error("expected user_exists=false")
	}
	if identity.UserID != "" {
		t.Errorf("expected empty user_id for new user, got %q", identity.UserID)
	}
}

func TestGetUserProfile_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "User not found"})
	})

	_, err := client.GetUserProfile(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Errorf("expected IsNotFound, got %v", err)
	}
	if !IsBackendError(err) {
		t.Error("a 404 response should count as a backend error")
	}
	if !strings.Contains(err.Error(), "User not found") {
		t.Errorf("expected backend message in error, got %q", err.Error())
	}
}

func TestGetUserProfile_TransportErrorIsNotBackendError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	server.Close() // connection refused from here on

	_, err = client.GetUserProfile(context.Background(), "u-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if IsBackendError(err) {
		t.Errorf("transport failure must not be a backend error: %v", err)
	}
	if IsNotFound(err) {
		t.Errorf("transport failure must not look like not-found: %v", err)
	}
}

func TestGetJobs_Filters(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("category_id") != "cat-1" {
			t.Errorf("expected category_id=cat-1, got %q", q.Get("category_id"))
		}
		if q.Get("min_budget") != "500.00" {
			t.Errorf("expected min_budget=500.00, got %q", q.Get("min_budget"))
		}
		if q.Get("skills_required") != "s1,s2" {
			t.Errorf("expected skills_required=s1,s2, got %q", q.Get("skills_required"))
		}
		if q.Get("max_budget") != "" {
			t.Errorf("zero max_budget should be omitted, got %q", q.Get("max_budget"))
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"jobs": []map[string]interface{}{
				{"id": "j-1", "title": "Logo design", "budget_min": 500.0, "budget_max": 1500.0},
			},
		})
	})

	jobs, err := client.GetJobs(context.Background(), JobFilters{
		CategoryID:     "cat-1",
		MinBudget:      500,
		SkillsRequired: []string{"s1", "s2"},
	})
	if err != nil {
		t.Fatalf("GetJobs: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != "j-1" {
		t.Errorf("unexpected jobs: %+v", jobs)
	}
}

func TestAddPortfolioItem_Multipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing multipart form: %v", err)
		}
		if got := r.FormValue("title"); got != "Portfolio site" {
			t.Errorf("expected title field, got %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("reading file part: %v", err)
		}
		defer file.Close()
		if header.Filename != "shot.png" {
			t.Errorf("expected filename shot.png, got %q", header.Filename)
		}

		json.NewEncoder(w).Encode(Ack{Success: true, Message: "Portfolio item added"})
	})

	ack, err := client.AddPortfolioItem(context.Background(), "u-1", "Portfolio site", "desc", "https://example.com", "shot.png", strings.NewReader("fake-png"))
	if err != nil {
		t.Fatalf("AddPortfolioItem: %v", err)
	}
	if !ack.Success {
		t.Error("expected success ack")
	}
}

func TestRequestWithdrawal_BackendRejection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Earnings wallet can only be withdrawn once per month"})
	})

	_, err := client.RequestWithdrawal(context.Background(), WithdrawalRequest{
		UserID: "u-1", Amount: 500, WalletType: WalletEarnings,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if IsNotFound(err) {
		t.Error("400 should not look like not-found")
	}
	if !strings.Contains(err.Error(), "once per month") {
		t.Errorf("expected backend rejection message, got %q", err.Error())
	}
}
