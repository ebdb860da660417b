package apiclient

import (
	"time"
)

// LoginRequest represents a login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the outcome of a login or verification attempt. A full
// grant populates the token fields; an account that needs a second factor
// gets Status "challenge_required" and a challenge token instead.
type LoginResult struct {
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	ExpiresIn    int64     `json:"expires_in,omitempty"` // seconds
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	LandingRoute string    `json:"landing_route,omitempty"`
	User         *User     `json:"user,omitempty"`

	Status         string `json:"status,omitempty"`
	Method         string `json:"method,omitempty"`
	ChallengeToken string `json:"challenge_token,omitempty"`
}

// ChallengeRequired returns true if the server asked for a second factor.
func (r *LoginResult) ChallengeRequired() bool {
	return r.Status == "challenge_required"
}

// ExpiresInDuration returns ExpiresIn as a time.Duration.
func (r *LoginResult) ExpiresInDuration() time.Duration {
	return time.Duration(r.ExpiresIn) * time.Second
}

// Login authenticates with the server. Check ChallengeRequired on the
// result before using the tokens.
func (c *Client) Login(username, password string) (*LoginResult, error) {
	req := LoginRequest{
		Username: username,
		Password: password,
	}

	var resp LoginResult
	if err := c.post("/api/v1/auth/login", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Verify2FA completes a pending login challenge with the delivered code.
func (c *Client) Verify2FA(challengeToken, code string) (*LoginResult, error) {
	req := struct {
		ChallengeToken string `json:"challenge_token"`
		Code           string `json:"code"`
	}{
		ChallengeToken: challengeToken,
		Code:           code,
	}

	var resp LoginResult
	if err := c.post("/api/v1/auth/2fa/verify", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// RefreshToken exchanges the refresh token for a fresh token pair.
func (c *Client) RefreshToken(refreshToken string) (*LoginResult, error) {
	req := struct {
		RefreshToken string `json:"refresh_token"`
	}{
		RefreshToken: refreshToken,
	}

	var resp LoginResult
	if err := c.post("/api/v1/auth/refresh", req, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

// Me returns the authenticated user.
func (c *Client) Me() (*User, error) {
	var user User
	if err := c.get("/api/v1/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}
