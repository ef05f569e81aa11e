package api

import "context"

// VerifyFirebaseAuth exchanges an identity-provider ID token for the backend's
// view of that identity. A successful response with UserExists=false means the
// identity is valid but has no backend user record yet (profile not completed).
func (c *Client) VerifyFirebaseAuth(ctx context.Context, idToken string) (*BackendIdentity, error) {
	req := struct {
		IDToken string `json:"idToken"`
	}{IDToken: idToken}

	var identity BackendIdentity
	if err := c.post(ctx, "/verify-firebase-auth/", req, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// CompleteProfile creates the backend user record for a verified identity
func (c *Client) CompleteProfile(ctx context.Context, req CompleteProfileRequest) (*CompleteProfileResponse, error) {
	var resp CompleteProfileResponse
	if err := c.post(ctx, "/complete-profile/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
