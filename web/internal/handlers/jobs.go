package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gosimple/slug"

	"github.com/freelancekenya/kazi/internal/api"
)

// Jobs renders the job browser with the filters from the query string
func (h *Handler) Jobs(w http.ResponseWriter, r *http.Request) {
	data := h.newTemplateData(w, r)

	filters := api.JobFilters{
		CategoryID: r.URL.Query().Get("category"),
		SearchTerm: r.URL.Query().Get("q"),
	}
	if v := r.URL.Query().Get("min_budget"); v != "" {
		filters.MinBudget, _ = strconv.ParseFloat(v, 64)
	}
	if v := r.URL.Query().Get("max_budget"); v != "" {
		filters.MaxBudget, _ = strconv.ParseFloat(v, 64)
	}
	if v := r.URL.Query().Get("skills"); v != "" {
		filters.SkillsRequired = strings.Split(v, ",")
	}
	data["Filters"] = filters

	jobs, err := h.backend.GetJobs(r.Context(), filters)
	if err != nil {
		h.log.Warn("jobs fetch failed", slog.String("error", err.Error()))
		data["Alert"] = "Could not load jobs right now"
	} else {
		data["Jobs"] = jobs
		data["JobLinks"] = jobLinks(jobs)
	}

	applications, err := h.backend.GetJobApplications(r.Context(), h.currentUserID())
	if err == nil {
		data["Applications"] = applications
	}

	h.renderTemplate(w, "jobs.html", data)
}

// Apply submits a job application
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	req := api.JobApplicationRequest{
		FreelancerID: h.currentUserID(),
		JobID:        r.PostFormValue("job_id"),
		CoverLetter:  r.PostFormValue("cover_letter"),
	}
	if v := r.PostFormValue("fixed_price"); v != "" {
		req.FixedPrice, _ = strconv.ParseFloat(v, 64)
	}
	if v := r.PostFormValue("hourly_rate"); v != "" {
		req.HourlyRate, _ = strconv.ParseFloat(v, 64)
	}
	if req.JobID == "" || req.CoverLetter == "" {
		h.cookies.AddFlash(r, w, "A cover letter is required")
		http.Redirect(w, r, "/jobs", http.StatusSeeOther)
		return
	}

	if _, err := h.backend.ApplyToJob(r.Context(), req); err != nil {
		h.log.Warn("job application failed",
			slog.String("job_id", req.JobID),
			slog.String("error", err.Error()))
		h.cookies.AddFlash(r, w, backendErrorMessage(err, "Could not submit your application"))
	} else {
		h.cookies.AddFlash(r, w, "Application submitted")
	}
	http.Redirect(w, r, "/jobs", http.StatusSeeOther)
}

// PostJob creates a new job posting on behalf of the signed-in client
func (h *Handler) PostJob(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	req := api.CreateJobRequest{
		ClientID:    h.currentUserID(),
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		CategoryID:  r.PostFormValue("category_id"),
		PaymentType: r.PostFormValue("payment_type"),
		Duration:    r.PostFormValue("duration"),
		IsUrgent:    r.PostFormValue("is_urgent") == "on",
	}
	req.BudgetMin, _ = strconv.ParseFloat(r.PostFormValue("budget_min"), 64)
	req.BudgetMax, _ = strconv.ParseFloat(r.PostFormValue("budget_max"), 64)
	if v := r.PostFormValue("skills"); v != "" {
		req.SkillsRequired = strings.Split(v, ",")
	}
	if req.Title == "" || req.Description == "" {
		h.cookies.AddFlash(r, w, "A title and description are required")
		http.Redirect(w, r, "/jobs", http.StatusSeeOther)
		return
	}

	resp, err := h.backend.CreateJob(r.Context(), req)
	if err != nil {
		h.log.Warn("job creation failed", slog.String("error", err.Error()))
		h.cookies.AddFlash(r, w, backendErrorMessage(err, "Could not post the job"))
	} else {
		h.log.Info("job posted", slog.String("job_id", resp.JobID))
		h.cookies.AddFlash(r, w, "Job posted")
	}
	http.Redirect(w, r, "/jobs", http.StatusSeeOther)
}

// jobLinks builds shareable URLs keyed by job ID
func jobLinks(jobs []api.Job) map[string]string {
	links := make(map[string]string, len(jobs))
	for _, job := range jobs {
		links[job.ID] = "/jobs/" + job.ID + "/" + slug.Make(job.Title)
	}
	return links
}

// Job renders a single job by ID, selected from the listing. The trailing
// slug segment is cosmetic; only the ID is authoritative.
func (h *Handler) Job(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	jobs, err := h.backend.GetJobs(r.Context(), api.JobFilters{})
	if err != nil {
		h.log.Warn("jobs fetch failed", slog.String("error", err.Error()))
		data := h.newTemplateData(w, r)
		data["Alert"] = "Could not load the job right now"
		h.renderTemplate(w, "job.html", data)
		return
	}

	for _, job := range jobs {
		if job.ID == jobID {
			data := h.newTemplateData(w, r)
			data["Job"] = job
			h.renderTemplate(w, "job.html", data)
			return
		}
	}

	h.NotFound(w, r)
}
