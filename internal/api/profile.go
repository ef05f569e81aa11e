package api

import (
	"context"
	"io"
	"net/url"
	"strconv"
)

// GetUserProfile fetches the full profile for a user. Returns a *Error with
// status 404 when the user does not exist.
func (c *Client) GetUserProfile(ctx context.Context, userID string) (*UserProfile, error) {
	query := url.Values{"user_id": {userID}}

	var profile UserProfile
	if err := c.get(ctx, "/get-user-profile/", query, &profile); err != nil {
		return nil, err
	}
	// The endpoint omits user_id on some backend versions
	if profile.UserID == "" {
		profile.UserID = userID
	}
	return &profile, nil
}

// UpdateProfile edits mutable profile fields. The caller should re-fetch the
// profile afterwards; the client keeps no cache.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*Ack, error) {
	var ack Ack
	if err := c.post(ctx, "/update-profile/", req, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// AddSkill attaches a skill to a user's profile, creating the skill if the
// backend has not seen it before
func (c *Client) AddSkill(ctx context.Context, req AddSkillRequest) (*Ack, error) {
	var ack Ack
	if err := c.post(ctx, "/add-skill/", req, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// AddPortfolioItem uploads a portfolio entry with an optional attachment file
func (c *Client) AddPortfolioItem(ctx context.Context, userID, title, description, projectURL, fileName string, file io.Reader) (*Ack, error) {
	fields := map[string]string{
		"user_id":     userID,
		"title":       title,
		"description": description,
	}
	if projectURL != "" {
		fields["project_url"] = projectURL
	}

	var ack Ack
	if err := c.postMultipart(ctx, "/add-portfolio-item/", fields, "file", fileName, file, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// GetUserReviews fetches the reviews a user has received, newest first
func (c *Client) GetUserReviews(ctx context.Context, userID string) (*ReviewSummary, error) {
	query := url.Values{"user_id": {userID}}

	var summary ReviewSummary
	if err := c.get(ctx, "/get-user-reviews/", query, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// SearchUser looks up a user by exact email address or referral code
func (c *Client) SearchUser(ctx context.Context, searchTerm string) (*UserSearchResult, error) {
	req := struct {
		SearchTerm string `json:"search_term"`
	}{SearchTerm: searchTerm}

	var result UserSearchResult
	if err := c.post(ctx, "/search-user/", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// formatAmount renders a wallet amount the way the backend expects
func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
