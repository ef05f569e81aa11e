package api

import (
	"context"
	"net/url"
	"strings"
)

// GetJobs lists open job postings matching the given filters
func (c *Client) GetJobs(ctx context.Context, filters JobFilters) ([]Job, error) {
	query := url.Values{}
	if filters.CategoryID != "" {
		query.Set("category_id", filters.CategoryID)
	}
	if filters.MinBudget > 0 {
		query.Set("min_budget", formatAmount(filters.MinBudget))
	}
	if filters.MaxBudget > 0 {
		query.Set("max_budget", formatAmount(filters.MaxBudget))
	}
	if filters.SearchTerm != "" {
		query.Set("search_term", filters.SearchTerm)
	}
	if len(filters.SkillsRequired) > 0 {
		query.Set("skills_required", strings.Join(filters.SkillsRequired, ","))
	}

	var resp struct {
		Jobs []Job `json:"jobs"`
	}
	if err := c.get(ctx, "/get-jobs/", query, &resp); err != nil {
		return nil, err
	}
	return resp.Jobs, nil
}

// CreateJob posts a new job on behalf of an activated client account
func (c *Client) CreateJob(ctx context.Context, req CreateJobRequest) (*CreateJobResponse, error) {
	var resp CreateJobResponse
	if err := c.post(ctx, "/create-job/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ApplyToJob submits a job application for the current user
func (c *Client) ApplyToJob(ctx context.Context, req JobApplicationRequest) (*Ack, error) {
	var ack Ack
	if err := c.post(ctx, "/apply-to-job/", req, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// GetJobApplications lists the current user's applications and their status
func (c *Client) GetJobApplications(ctx context.Context, userID string) ([]JobApplication, error) {
	query := url.Values{"user_id": {userID}}

	var resp struct {
		Applications []JobApplication `json:"applications"`
	}
	if err := c.get(ctx, "/get-job-applications/", query, &resp); err != nil {
		return nil, err
	}
	return resp.Applications, nil
}
