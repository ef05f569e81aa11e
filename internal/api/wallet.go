package api

import (
	"context"
	"net/url"
)

// GetOverview fetches the dashboard summary for a user, including wallet
// balances and the activation flag the activation watcher polls for
func (c *Client) GetOverview(ctx context.Context, userID string) (*Overview, error) {
	query := url.Values{"user_id": {userID}}

	var overview Overview
	if err := c.get(ctx, "/overview/", query, &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

// InitiateActivation starts a mobile-money activation payment. The backend
// pushes a payment prompt to the user's phone; confirmation only shows up
// later as Overview.IsActivated flipping true.
func (c *Client) InitiateActivation(ctx context.Context, req ActivationRequest) (*ActivationResponse, error) {
	var resp ActivationResponse
	if err := c.post(ctx, "/initiate-activation/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RequestWithdrawal asks the backend to pay out from a wallet. Callers should
// validate with the wallet package first, but the backend remains the
// authority and can still reject.
func (c *Client) RequestWithdrawal(ctx context.Context, req WithdrawalRequest) (*WithdrawalResponse, error) {
	var resp WithdrawalResponse
	if err := c.post(ctx, "/request-withdrawal/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WalletTransactions lists the wallet ledger for a user, newest first
func (c *Client) WalletTransactions(ctx context.Context, userID string) ([]Transaction, error) {
	query := url.Values{"user_id": {userID}}

	var resp struct {
		Transactions []Transaction `json:"transactions"`
	}
	if err := c.get(ctx, "/wallet-transactions/", query, &resp); err != nil {
		return nil, err
	}
	return resp.Transactions, nil
}

// WithdrawalHistory lists past withdrawal requests for a user, newest first
func (c *Client) WithdrawalHistory(ctx context.Context, userID string) ([]Withdrawal, error) {
	query := url.Values{"user_id": {userID}}

	var resp struct {
		Withdrawals []Withdrawal `json:"withdrawals"`
	}
	if err := c.get(ctx, "/withdrawal-history/", query, &resp); err != nil {
		return nil, err
	}
	return resp.Withdrawals, nil
}
