package handlers

import (
	"log/slog"
	"net/http"
)

// Dashboard renders the authenticated landing screen: wallet balances,
// job counters, and recent notifications
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := h.newTemplateData(w, r)
	userID := h.currentUserID()

	overview, err := h.backend.GetOverview(r.Context(), userID)
	if err != nil {
		h.log.Warn("overview fetch failed", slog.String("error", err.Error()))
		data["Alert"] = "Could not load your account summary"
	} else {
		data["Overview"] = overview
	}

	notifications, err := h.backend.GetNotifications(r.Context(), userID)
	if err != nil {
		h.log.Warn("notifications fetch failed", slog.String("error", err.Error()))
	} else {
		if len(notifications) > 5 {
			notifications = notifications[:5]
		}
		data["Notifications"] = notifications
	}

	h.renderTemplate(w, "dashboard.html", data)
}
