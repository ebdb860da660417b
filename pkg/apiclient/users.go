package apiclient

import (
	"fmt"
	"net/url"
	"time"
)

// User represents a user account.
type User struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email,omitempty"`
	Role               string     `json:"role"`
	TwoFactorEnabled   bool       `json:"two_factor_enabled"`
	Enabled            bool       `json:"enabled"`
	MustChangePassword bool       `json:"must_change_password"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
}

// CreateUserRequest is the request to create a user.
type CreateUserRequest struct {
	Username           string `json:"username"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"must_change_password"`
}

// UpdateUserRequest is the request to update a user. Nil fields are left
// unchanged.
type UpdateUserRequest struct {
	Email   *string `json:"email,omitempty"`
	Role    *string `json:"role,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`
}

// TOTPEnrollment holds the secret the authenticator app is provisioned
// with.
type TOTPEnrollment struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

// ListUsers returns all users. Requires an admin token.
func (c *Client) ListUsers() ([]User, error) {
	return listResources[User](c, "/api/v1/users")
}

// GetUser returns a user by username. Requires an admin token.
func (c *Client) GetUser(username string) (*User, error) {
	return getResource[User](c, fmt.Sprintf("/api/v1/users/%s", url.PathEscape(username)))
}

// CreateUser creates a new user. Requires an admin token.
func (c *Client) CreateUser(req *CreateUserRequest) (*User, error) {
	return createResource[User](c, "/api/v1/users", req)
}

// UpdateUser updates an existing user. Requires an admin token.
func (c *Client) UpdateUser(username string, req *UpdateUserRequest) (*User, error) {
	var user User
	if err := c.patch(fmt.Sprintf("/api/v1/users/%s", url.PathEscape(username)), req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser deletes a user. Requires an admin token.
func (c *Client) DeleteUser(username string) error {
	return c.delete(fmt.Sprintf("/api/v1/users/%s", url.PathEscape(username)), nil)
}

// ChangePassword changes the authenticated user's own password.
func (c *Client) ChangePassword(currentPassword, newPassword string) error {
	req := struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}{
		CurrentPassword: currentPassword,
		NewPassword:     newPassword,
	}
	return c.post("/api/v1/users/me/password", req, nil)
}

// EnrollTOTP starts authenticator enrollment for the authenticated user.
// The factor stays off until ConfirmTOTP succeeds with a first code.
func (c *Client) EnrollTOTP() (*TOTPEnrollment, error) {
	return createResource[TOTPEnrollment](c, "/api/v1/users/me/totp", nil)
}

// ConfirmTOTP confirms enrollment with a code from the authenticator app.
func (c *Client) ConfirmTOTP(code string) error {
	req := struct {
		Code string `json:"code"`
	}{
		Code: code,
	}
	return c.post("/api/v1/users/me/totp/confirm", req, nil)
}

// DisableTOTP turns the authenticator factor off for the authenticated
// user.
func (c *Client) DisableTOTP() error {
	return c.delete("/api/v1/users/me/totp", nil)
}
