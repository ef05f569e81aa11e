package handlers

import (
	"log/slog"
	"net/http"

	"github.com/freelancekenya/kazi/internal/api"
)

// Messages renders the inbox
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	data := h.newTemplateData(w, r)

	messages, err := h.backend.GetMessages(r.Context(), h.currentUserID())
	if err != nil {
		h.log.Warn("messages fetch failed", slog.String("error", err.Error()))
		data["Alert"] = "Could not load your messages"
	} else {
		data["Messages"] = messages
	}

	h.renderTemplate(w, "messages.html", data)
}

// SendMessage handles the compose form. The recipient is resolved by email
// or referral code through the user search endpoint.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	recipient := r.PostFormValue("recipient")
	content := r.PostFormValue("content")
	if recipient == "" || content == "" {
		h.cookies.AddFlash(r, w, "A recipient and message are required")
		http.Redirect(w, r, "/messages", http.StatusSeeOther)
		return
	}

	result, err := h.backend.SearchUser(r.Context(), recipient)
	if err != nil || !result.UserFound {
		h.cookies.AddFlash(r, w, "No user found for "+recipient)
		http.Redirect(w, r, "/messages", http.StatusSeeOther)
		return
	}

	_, err = h.backend.SendMessage(r.Context(), api.SendMessageRequest{
		SenderID:    h.currentUserID(),
		RecipientID: result.UserID,
		Subject:     r.PostFormValue("subject"),
		Content:     content,
		JobID:       r.PostFormValue("job_id"),
	})
	if err != nil {
		h.log.Warn("send message failed", slog.String("error", err.Error()))
		h.cookies.AddFlash(r, w, backendErrorMessage(err, "Could not send your message"))
	} else {
		h.cookies.AddFlash(r, w, "Message sent to "+result.FullName)
	}
	http.Redirect(w, r, "/messages", http.StatusSeeOther)
}
