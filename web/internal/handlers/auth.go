package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"

	"github.com/freelancekenya/kazi/internal/api"
	"github.com/freelancekenya/kazi/internal/identity"
	"github.com/freelancekenya/kazi/internal/routes"
)

// Login renders the sign-in page
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	data := h.newTemplateData(w, r)
	data["GoogleEnabled"] = h.oauth != nil
	h.renderTemplate(w, "login.html", data)
}

// LoginEmail handles the email/password sign-in form
func (h *Handler) LoginEmail(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		h.cookies.AddFlash(r, w, "Email and password are required")
		http.Redirect(w, r, routes.LoginPath, http.StatusSeeOther)
		return
	}

	_, err := h.identity.SignInWithPassword(r.Context(), email, password)
	if err != nil {
		h.log.Warn("email sign-in failed", slog.String("error", err.Error()))

		var provErr *identity.ProviderError
		if errors.As(err, &provErr) {
			h.cookies.AddFlash(r, w, provErr.UserMessage())
		} else {
			h.cookies.AddFlash(r, w, "Sign-in is temporarily unavailable, please try again")
		}
		http.Redirect(w, r, routes.LoginPath, http.StatusSeeOther)
		return
	}

	// The sign-in event has already kicked off reconciliation; the route
	// guard shows the loading placeholder until it settles
	http.Redirect(w, r, routes.DashboardPath, http.StatusSeeOther)
}

// LoginGoogle starts the Google OAuth authorization code flow
func (h *Handler) LoginGoogle(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		http.Error(w, "Google sign-in is not configured", http.StatusNotFound)
		return
	}

	state := generateState()
	if err := h.cookies.SetOAuthState(r, w, state); err != nil {
		h.log.Error("failed to save oauth state", slog.String("error", err.Error()))
		http.Error(w, "Failed to start login", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusSeeOther)
}

// AuthCallback completes the Google OAuth flow: validates state, exchanges
// the code, and feeds the Google ID token into the identity provider
func (h *Handler) AuthCallback(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		http.Error(w, "Google sign-in is not configured", http.StatusNotFound)
		return
	}

	stored, err := h.cookies.TakeOAuthState(r, w)
	if err != nil || stored == "" || stored != r.URL.Query().Get("state") {
		h.log.Warn("oauth state mismatch")
		http.Error(w, "Invalid login state", http.StatusBadRequest)
		return
	}

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		h.cookies.AddFlash(r, w, "Google sign-in was cancelled")
		http.Redirect(w, r, routes.LoginPath, http.StatusSeeOther)
		return
	}

	token, err := h.oauth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.log.Error("oauth code exchange failed", slog.String("error", err.Error()))
		h.cookies.AddFlash(r, w, "Google sign-in failed, please try again")
		http.Redirect(w, r, routes.LoginPath, http.StatusSeeOther)
		return
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		h.log.Error("oauth exchange returned no id_token")
		h.cookies.AddFlash(r, w, "Google sign-in failed, please try again")
		http.Redirect(w, r, routes.LoginPath, http.StatusSeeOther)
		return
	}

	if _, err := h.identity.SignInWithGoogleIDToken(r.Context(), idToken, h.oauth.RedirectURL); err != nil {
		h.log.Error("google sign-in failed", slog.String("error", err.Error()))
		h.cookies.AddFlash(r, w, "Google sign-in failed, please try again")
		http.Redirect(w, r, routes.LoginPath, http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, routes.DashboardPath, http.StatusSeeOther)
}

// Logout signs the user out of the identity provider
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.identity.SignOut()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// CompleteProfile renders the profile-completion form for a verified user
// without a backend record
func (h *Handler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Current()
	data := h.newTemplateData(w, r)
	if sess.Principal != nil {
		data["Email"] = sess.Principal.Email
	}
	h.renderTemplate(w, "complete-profile.html", data)
}

// CompleteProfileSubmit creates the backend user record and refreshes the
// session with the returned profile
func (h *Handler) CompleteProfileSubmit(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Current()
	if sess.Principal == nil {
		http.Redirect(w, r, routes.LoginPath, http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	req := api.CompleteProfileRequest{
		FirebaseUID:   sess.Principal.UID,
		Email:         sess.Principal.Email,
		FullName:      r.PostFormValue("full_name"),
		PhoneNumber:   r.PostFormValue("phone_number"),
		StreetAddress: r.PostFormValue("street_address"),
		HouseNumber:   r.PostFormValue("house_number"),
		ZipCode:       r.PostFormValue("zip_code"),
		Town:          r.PostFormValue("town"),
		ReferralCode:  r.PostFormValue("referral_code"),
	}
	if req.FullName == "" || req.PhoneNumber == "" {
		h.cookies.AddFlash(r, w, "Full name and phone number are required")
		http.Redirect(w, r, routes.CompleteProfilePath, http.StatusSeeOther)
		return
	}

	resp, err := h.backend.CompleteProfile(r.Context(), req)
	if err != nil {
		h.log.Error("complete profile failed", slog.String("error", err.Error()))
		h.cookies.AddFlash(r, w, backendErrorMessage(err, "Could not create your profile"))
		http.Redirect(w, r, routes.CompleteProfilePath, http.StatusSeeOther)
		return
	}

	h.log.Info("profile completed", slog.String("user_id", resp.UserID))
	if profile, err := h.backend.GetUserProfile(r.Context(), resp.UserID); err == nil {
		h.sessions.SetProfile(*profile)
	}

	http.Redirect(w, r, routes.ActivationPath, http.StatusSeeOther)
}

// backendErrorMessage picks a user-facing message for a backend call failure
func backendErrorMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// generateState returns a random URL-safe state parameter
func generateState() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
