package backend

import (
	"context"
	"net/http"
)

// Login exchanges credentials for a token and user profile.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var out LoginResult
	req := c.request(ctx, "").SetBody(map[string]string{
		"username": username,
		"password": password,
	})
	if err := c.do(req, http.MethodPost, "/api/auth/login", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SocialLogin forwards an identity-provider token (google, facebook,
// firebase) to the backend, which verifies it and issues its own token.
func (c *Client) SocialLogin(ctx context.Context, provider, idToken string) (*LoginResult, error) {
	var out LoginResult
	req := c.request(ctx, "").
		SetPathParam("provider", provider).
		SetBody(map[string]string{"token": idToken})
	if err := c.do(req, http.MethodPost, "/api/auth/social/{provider}", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
