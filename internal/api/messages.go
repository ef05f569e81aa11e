package api

import (
	"context"
	"net/url"
)

// GetMessages lists messages received by a user, newest first
func (c *Client) GetMessages(ctx context.Context, userID string) ([]Message, error) {
	query := url.Values{"user_id": {userID}}

	var resp struct {
		Messages []Message `json:"messages"`
	}
	if err := c.get(ctx, "/get-messages/", query, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// SendMessage delivers a message to another user
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*Ack, error) {
	var ack Ack
	if err := c.post(ctx, "/send-message/", req, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// GetNotifications lists user-specific and global notifications, newest first
func (c *Client) GetNotifications(ctx context.Context, userID string) ([]Notification, error) {
	query := url.Values{"user_id": {userID}}

	var resp struct {
		Notifications []Notification `json:"notifications"`
	}
	if err := c.get(ctx, "/notifications/", query, &resp); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}
