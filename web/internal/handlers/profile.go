package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/freelancekenya/kazi/internal/api"
)

// Profile renders the signed-in user's profile: details, skills,
// portfolio, and received reviews
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	data := h.newTemplateData(w, r)
	userID := h.currentUserID()

	profile, err := h.backend.GetUserProfile(r.Context(), userID)
	if err != nil {
		h.log.Warn("profile fetch failed", slog.String("error", err.Error()))
		data["Alert"] = "Could not load your profile"
	} else {
		data["Detail"] = profile
	}

	reviews, err := h.backend.GetUserReviews(r.Context(), userID)
	if err != nil {
		h.log.Warn("reviews fetch failed", slog.String("error", err.Error()))
	} else {
		data["Reviews"] = reviews
	}

	h.renderTemplate(w, "profile.html", data)
}

// UpdateProfile handles the profile edit form and pushes the fresh profile
// into the session
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	userID := h.currentUserID()

	req := api.UpdateProfileRequest{
		UserID:        userID,
		FullName:      r.PostFormValue("full_name"),
		PhoneNumber:   r.PostFormValue("phone_number"),
		StreetAddress: r.PostFormValue("street_address"),
		HouseNumber:   r.PostFormValue("house_number"),
		ZipCode:       r.PostFormValue("zip_code"),
		Town:          r.PostFormValue("town"),
	}
	if v := r.PostFormValue("is_available"); v != "" {
		available := v == "on" || v == "true"
		req.IsAvailable = &available
	}

	if _, err := h.backend.UpdateProfile(r.Context(), req); err != nil {
		h.log.Warn("profile update failed", slog.String("error", err.Error()))
		h.cookies.AddFlash(r, w, backendErrorMessage(err, "Could not update your profile"))
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	if profile, err := h.backend.GetUserProfile(r.Context(), userID); err == nil {
		h.sessions.SetProfile(*profile)
	}
	h.cookies.AddFlash(r, w, "Profile updated")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// AddSkill handles the add-skill form
func (h *Handler) AddSkill(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	req := api.AddSkillRequest{
		UserID:    h.currentUserID(),
		SkillName: r.PostFormValue("skill_name"),
	}
	req.ProficiencyLevel, _ = strconv.Atoi(r.PostFormValue("proficiency_level"))
	req.YearsExperience, _ = strconv.Atoi(r.PostFormValue("years_experience"))
	if req.SkillName == "" {
		h.cookies.AddFlash(r, w, "A skill name is required")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	if _, err := h.backend.AddSkill(r.Context(), req); err != nil {
		h.log.Warn("add skill failed", slog.String("error", err.Error()))
		h.cookies.AddFlash(r, w, backendErrorMessage(err, "Could not add the skill"))
	} else {
		h.cookies.AddFlash(r, w, "Skill added")
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

// AddPortfolioItem handles the portfolio upload form with its optional
// attachment
func (h *Handler) AddPortfolioItem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	title := r.PostFormValue("title")
	if title == "" {
		h.cookies.AddFlash(r, w, "A title is required")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	var (
		fileName string
		file     io.Reader
	)
	if f, header, err := r.FormFile("file"); err == nil {
		defer f.Close()
		file = f
		fileName = header.Filename
	}

	_, err := h.backend.AddPortfolioItem(r.Context(), h.currentUserID(), title,
		r.PostFormValue("description"), r.PostFormValue("project_url"), fileName, file)
	if err != nil {
		h.log.Warn("portfolio upload failed", slog.String("error", err.Error()))
		h.cookies.AddFlash(r, w, backendErrorMessage(err, "Could not add the portfolio item"))
	} else {
		h.cookies.AddFlash(r, w, "Portfolio item added")
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}
