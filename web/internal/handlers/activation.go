package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/freelancekenya/kazi/internal/activation"
	"github.com/freelancekenya/kazi/internal/api"
	"github.com/freelancekenya/kazi/internal/routes"
)

// activationState tracks the in-flight activation watch for the signed-in
// user. One watch at a time; starting a new payment cancels the old watch.
type activationState struct {
	mu      sync.Mutex
	cancel  context.CancelFunc
	status  string // "idle", "waiting", "activated", "timed-out"
	message string
}

func (s *activationState) set(status, message string) {
	s.mu.Lock()
	s.status = status
	s.message = message
	s.mu.Unlock()
}

func (s *activationState) get() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == "" {
		return "idle", ""
	}
	return s.status, s.message
}

// begin cancels any previous watch and returns the context for a new one
func (s *activationState) begin(message string) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.status = "waiting"
	s.message = message
	return ctx
}

// Activation renders the account-activation screen
func (h *Handler) Activation(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Current()
	if routes.AlreadyActivated(sess) {
		http.Redirect(w, r, routes.DashboardPath, http.StatusSeeOther)
		return
	}

	data := h.newTemplateData(w, r)
	data["Fee"] = h.activationFee
	status, message := h.watch.get()
	data["Status"] = status
	data["StatusMessage"] = message
	h.renderTemplate(w, "activation.html", data)
}

// ActivationPay initiates the mobile-money payment and starts the
// bounded watch for the activation flag
func (h *Handler) ActivationPay(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	userID := h.currentUserID()
	phone := r.PostFormValue("phone_number")
	if phone == "" {
		h.cookies.AddFlash(r, w, "A phone number is required")
		http.Redirect(w, r, routes.ActivationPath, http.StatusSeeOther)
		return
	}

	resp, err := h.backend.InitiateActivation(r.Context(), api.ActivationRequest{
		UserID:      userID,
		PhoneNumber: phone,
		Amount:      h.activationFee,
	})
	if err != nil || !resp.Success {
		if err != nil {
			h.log.Warn("activation initiation failed", slog.String("error", err.Error()))
		}
		h.cookies.AddFlash(r, w, backendErrorMessage(err, "Could not start the payment, please try again"))
		http.Redirect(w, r, routes.ActivationPath, http.StatusSeeOther)
		return
	}

	h.log.Info("activation payment initiated",
		slog.String("checkout_request_id", resp.CheckoutRequestID))

	ctx := h.watch.begin("Check your phone and enter your PIN to complete the payment")
	go func() {
		switch h.watcher.Wait(ctx, userID) {
		case activation.Activated:
			h.watch.set("activated", "Your account is now active")
			if profile, err := h.backend.GetUserProfile(context.Background(), userID); err == nil {
				h.sessions.SetProfile(*profile)
			}
		case activation.TimedOut:
			h.watch.set("timed-out",
				"We could not confirm your payment. If you were charged it will reflect shortly; otherwise try again.")
		}
	}()

	h.cookies.AddFlash(r, w, "Payment request sent to "+phone)
	http.Redirect(w, r, routes.ActivationPath, http.StatusSeeOther)
}

// ActivationStatus reports the watch state as JSON for the screen's poller
func (h *Handler) ActivationStatus(w http.ResponseWriter, r *http.Request) {
	status, message := h.watch.get()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  status,
		"message": message,
	})
}
