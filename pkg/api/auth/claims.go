// Package auth provides JWT authentication for the SafeSplit API.
package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
)

// TokenType distinguishes the three token kinds the API mints.
type TokenType string

const (
	// TokenTypeAccess is a short-lived token used for API authorization.
	TokenTypeAccess TokenType = "access"
	// TokenTypeRefresh is a long-lived token used to obtain new access tokens.
	TokenTypeRefresh TokenType = "refresh"
	// TokenTypeChallenge is a very short-lived token that carries identity
	// between a verified password and the second-factor answer. It grants
	// access to nothing but the verification endpoint.
	TokenTypeChallenge TokenType = "challenge"
)

// Claims represents JWT claims for SafeSplit authentication.
type Claims struct {
	jwt.RegisteredClaims

	// UserID is the unique identifier (UUID) for the user.
	UserID string `json:"uid"`

	// Username is the human-readable username.
	Username string `json:"username"`

	// Role is the user's access tier.
	Role string `json:"role"`

	// TokenType indicates which kind of token this is.
	TokenType TokenType `json:"token_type"`

	// MustChangePassword indicates the user must change their password.
	// When true, most API operations are blocked until it is changed.
	MustChangePassword bool `json:"must_change_password,omitempty"`
}

// IsAdmin returns true if the user has an administrative role.
func (c *Claims) IsAdmin() bool {
	return models.Role(c.Role).Admin()
}
