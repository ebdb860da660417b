package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Lightningwave/safesplit-sub000/internal/logger"
	"github.com/Lightningwave/safesplit-sub000/pkg/api/auth"
	"github.com/Lightningwave/safesplit-sub000/pkg/api/middleware"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/gate"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/store"
)

// AuthHandler handles authentication-related API endpoints.
type AuthHandler struct {
	store      store.Store
	jwtService *auth.JWTService
	gate       *gate.Gate
	decoyHash  string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(s store.Store, jwtService *auth.JWTService, g *gate.Gate) *AuthHandler {
	// Bcrypt hash of a throwaway random secret. Unknown usernames run
	// through the gate against it, so neither the refusal shape nor the
	// lockout clock reveals whether a name exists.
	secret, _ := models.GenerateShareToken()
	decoyHash, _ := models.HashPassword(secret)
	return &AuthHandler{
		store:      s,
		jwtService: jwtService,
		gate:       g,
		decoyHash:  decoyHash,
	}
}

// LoginRequest is the request body for POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the response body for a full grant.
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	ExpiresAt    time.Time    `json:"expires_at"`
	LandingRoute string       `json:"landing_route"`
	User         UserResponse `json:"user"`
}

// ChallengeResponse is the response body when a second factor is required.
// Status is always "challenge_required" so clients can dispatch on it.
type ChallengeResponse struct {
	Status         string `json:"status"`
	Method         string `json:"method"`
	ChallengeToken string `json:"challenge_token,omitempty"`
}

// UserResponse is a sanitized user representation for API responses.
type UserResponse struct {
	ID                 string     `json:"id"`
	Username           string     `json:"username"`
	Email              string     `json:"email,omitempty"`
	Role               string     `json:"role"`
	TwoFactorEnabled   bool       `json:"two_factor_enabled"`
	Enabled            bool       `json:"enabled"`
	MustChangePassword bool       `json:"must_change_password"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
}

// RefreshRequest is the request body for POST /api/v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// VerifyRequest is the request body for POST /api/v1/auth/2fa/verify.
type VerifyRequest struct {
	ChallengeToken string `json:"challenge_token"`
	Code           string `json:"code"`
}

func userToResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:                 user.ID,
		Username:           user.Username,
		Email:              user.Email,
		Role:               string(user.Role),
		TwoFactorEnabled:   user.TwoFactorEnabled,
		Enabled:            user.Enabled,
		MustChangePassword: user.MustChangePassword,
		LastLogin:          user.LastLogin,
	}
}

// Login handles POST /api/v1/auth/login.
// Runs the primary phase of the gate: a grant returns a token pair and the
// role's landing route; a two-factor account gets a challenge notice
// instead.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if req.Username == "" || req.Password == "" {
		BadRequest(w, "Username and password are required")
		return
	}

	ctx := logger.WithContext(r.Context(),
		logger.FromContext(r.Context()).WithSurface("login").WithUsername(req.Username))

	user, err := h.store.GetUser(ctx, req.Username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			// Unknown names spend attempts against the decoy secret, keyed
			// by the submitted name, so the refusal is indistinguishable
			// from a known user's wrong password.
			outcome, gerr := h.gate.SubmitPrimary(ctx, gate.Principal{
				ID:         "user:" + req.Username,
				SecretHash: h.decoyHash,
			}, req.Password)
			if gerr != nil {
				InternalServerError(w, "Authentication failed")
				return
			}
			writeGateRefusal(w, outcome, "Invalid username or password")
			return
		}
		InternalServerError(w, "Authentication failed")
		return
	}

	if !user.Enabled {
		Forbidden(w, "User account is disabled")
		return
	}

	outcome, err := h.gate.SubmitPrimary(ctx, principalOf(user), req.Password)
	if err != nil {
		logger.ErrorCtx(ctx, "Login gate failure", logger.KeyError, err.Error())
		InternalServerError(w, "Authentication failed")
		return
	}

	switch outcome.Status {
	case gate.StatusGranted:
		h.writeGrant(ctx, w, user)
	case gate.StatusChallenge:
		challengeToken, err := h.jwtService.GenerateChallengeToken(user)
		if err != nil {
			InternalServerError(w, "Failed to generate token")
			return
		}
		WriteJSONOK(w, ChallengeResponse{
			Status:         "challenge_required",
			Method:         outcome.ChallengeMethod,
			ChallengeToken: challengeToken,
		})
	default:
		writeGateRefusal(w, outcome, "Invalid username or password")
	}
}

// Verify2FA handles POST /api/v1/auth/2fa/verify.
// Runs the second phase of the gate against the code from the challenge.
func (h *AuthHandler) Verify2FA(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.ChallengeToken == "" || req.Code == "" {
		BadRequest(w, "Challenge token and code are required")
		return
	}

	claims, err := h.jwtService.ValidateChallengeToken(req.ChallengeToken)
	if err != nil {
		Unauthorized(w, "Invalid or expired challenge token")
		return
	}

	ctx := logger.WithContext(r.Context(),
		logger.FromContext(r.Context()).WithSurface("login").WithUsername(claims.Username))

	user, err := h.store.GetUserByID(ctx, claims.UserID)
	if err != nil {
		Unauthorized(w, "Invalid or expired challenge token")
		return
	}
	if !user.Enabled {
		Forbidden(w, "User account is disabled")
		return
	}

	outcome, err := h.gate.SubmitSecondFactor(ctx, principalOf(user), req.Code)
	if err != nil {
		logger.ErrorCtx(ctx, "Second-factor gate failure", logger.KeyError, err.Error())
		InternalServerError(w, "Authentication failed")
		return
	}

	switch outcome.Status {
	case gate.StatusGranted:
		h.writeGrant(ctx, w, user)
	default:
		writeGateRefusal(w, outcome, "Invalid verification code")
	}
}

// Refresh handles POST /api/v1/auth/refresh.
// Returns a new token pair using a valid refresh token.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		BadRequest(w, "Refresh token is required")
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		Unauthorized(w, "Invalid or expired refresh token")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		Unauthorized(w, "Invalid or expired refresh token")
		return
	}
	if !user.Enabled {
		Forbidden(w, "User account is disabled")
		return
	}

	tokenPair, err := h.jwtService.GenerateTokenPair(user)
	if err != nil {
		InternalServerError(w, "Failed to generate token")
		return
	}

	WriteJSONOK(w, LoginResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		TokenType:    tokenPair.TokenType,
		ExpiresIn:    tokenPair.ExpiresIn,
		ExpiresAt:    tokenPair.ExpiresAt,
		LandingRoute: user.Role.LandingRoute(),
		User:         userToResponse(user),
	})
}

// Me handles GET /api/v1/auth/me.
// Returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		NotFound(w, "User not found")
		return
	}

	WriteJSONOK(w, userToResponse(user))
}

func (h *AuthHandler) writeGrant(ctx context.Context, w http.ResponseWriter, user *models.User) {
	tokenPair, err := h.jwtService.GenerateTokenPair(user)
	if err != nil {
		InternalServerError(w, "Failed to generate token")
		return
	}

	// Last-login update is non-critical; log and continue on failure.
	if err := h.store.TouchLastLogin(ctx, user.ID, time.Now()); err != nil {
		logger.WarnCtx(ctx, "Failed to update last login time",
			logger.KeyUsername, user.Username, logger.KeyError, err.Error())
	}

	WriteJSONOK(w, LoginResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		TokenType:    tokenPair.TokenType,
		ExpiresIn:    tokenPair.ExpiresIn,
		ExpiresAt:    tokenPair.ExpiresAt,
		LandingRoute: user.Role.LandingRoute(),
		User:         userToResponse(user),
	})
}

// principalOf maps an account to its gate principal.
func principalOf(user *models.User) gate.Principal {
	return gate.Principal{
		ID:           user.PrincipalID(),
		SecretHash:   user.PasswordHash,
		SecondFactor: user.TwoFactorEnabled,
	}
}
