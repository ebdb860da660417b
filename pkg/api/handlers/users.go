package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lightningwave/safesplit-sub000/internal/logger"
	"github.com/Lightningwave/safesplit-sub000/pkg/api/middleware"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/secondfactor"
	"github.com/Lightningwave/safesplit-sub000/pkg/vault/store"
)

// UserHandler handles user administration and self-service operations.
type UserHandler struct {
	store store.Store
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(s store.Store) *UserHandler {
	return &UserHandler{store: s}
}

// CreateUserRequest is the admin-facing user creation body.
type CreateUserRequest struct {
	Username           string `json:"username"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"must_change_password"`
}

// UpdateUserRequest carries the mutable account fields. Pointer fields
// distinguish "leave alone" from an explicit value.
type UpdateUserRequest struct {
	Email   *string `json:"email,omitempty"`
	Role    *string `json:"role,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`
}

// ChangePasswordRequest is the self-service password change body.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// TOTPEnrollResponse returns the generated secret for authenticator
// provisioning. The factor stays off until the first code is confirmed.
type TOTPEnrollResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

// TOTPConfirmRequest carries the first code from the authenticator app.
type TOTPConfirmRequest struct {
	Code string `json:"code"`
}

// Create handles POST /api/v1/users (admin only).
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Email == "" {
		BadRequest(w, "username and email are required")
		return
	}
	if err := models.ValidatePassword(req.Password); err != nil {
		BadRequest(w, err.Error())
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	hash, err := models.HashPassword(req.Password)
	if err != nil {
		InternalServerError(w, "Failed to create user")
		return
	}
	user := &models.User{
		Username:           req.Username,
		Email:              req.Email,
		PasswordHash:       hash,
		Role:               role,
		Enabled:            true,
		MustChangePassword: req.MustChangePassword,
	}
	if _, err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, models.ErrDuplicateUser) {
			Conflict(w, "Username or email already taken")
			return
		}
		InternalServerError(w, "Failed to create user")
		return
	}

	logger.InfoCtx(r.Context(), "User created", logger.KeyUsername, user.Username)
	WriteJSONCreated(w, userToResponse(user))
}

// List handles GET /api/v1/users (admin only).
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		InternalServerError(w, "Failed to list users")
		return
	}
	responses := make([]UserResponse, len(users))
	for i, u := range users {
		responses[i] = userToResponse(u)
	}
	WriteJSONOK(w, responses)
}

// Get handles GET /api/v1/users/{username} (admin only).
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUser(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			NotFound(w, "User not found")
			return
		}
		InternalServerError(w, "Failed to load user")
		return
	}
	WriteJSONOK(w, userToResponse(user))
}

// Update handles PATCH /api/v1/users/{username} (admin only).
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, err := h.store.GetUser(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			NotFound(w, "User not found")
			return
		}
		InternalServerError(w, "Failed to load user")
		return
	}

	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		role, err := models.ParseRole(*req.Role)
		if err != nil {
			BadRequest(w, err.Error())
			return
		}
		user.Role = role
	}
	if req.Enabled != nil {
		user.Enabled = *req.Enabled
	}

	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		InternalServerError(w, "Failed to update user")
		return
	}
	WriteJSONOK(w, userToResponse(user))
}

// Delete handles DELETE /api/v1/users/{username} (admin only).
// Admins cannot delete themselves.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	username := chi.URLParam(r, "username")
	if claims != nil && claims.Username == username {
		Forbidden(w, "Cannot delete your own account")
		return
	}

	if err := h.store.DeleteUser(r.Context(), username); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			NotFound(w, "User not found")
			return
		}
		InternalServerError(w, "Failed to delete user")
		return
	}
	WriteNoContent(w)
}

// ChangePassword handles POST /api/v1/users/me/password.
// The current password is re-verified even on an authenticated session.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, err := h.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		InternalServerError(w, "Failed to load user")
		return
	}
	if err := models.VerifyPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		Unauthorized(w, "Current password is incorrect")
		return
	}
	if err := models.ValidatePassword(req.NewPassword); err != nil {
		BadRequest(w, err.Error())
		return
	}

	hash, err := models.HashPassword(req.NewPassword)
	if err != nil {
		InternalServerError(w, "Failed to change password")
		return
	}
	if err := h.store.UpdateUserPassword(r.Context(), user.ID, hash); err != nil {
		InternalServerError(w, "Failed to change password")
		return
	}

	logger.InfoCtx(r.Context(), "Password changed", logger.KeyUsername, user.Username)
	WriteNoContent(w)
}

// EnrollTOTP handles POST /api/v1/users/me/totp.
// Generates and stores a fresh secret but leaves the factor disabled
// until ConfirmTOTP proves the authenticator was provisioned.
func (h *UserHandler) EnrollTOTP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		InternalServerError(w, "Failed to load user")
		return
	}

	secret, url, err := secondfactor.GenerateTOTPSecret(user.Username)
	if err != nil {
		InternalServerError(w, "Failed to generate secret")
		return
	}
	user.TOTPSecret = secret
	user.TwoFactorEnabled = false
	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		InternalServerError(w, "Failed to save secret")
		return
	}

	WriteJSONOK(w, TOTPEnrollResponse{Secret: secret, URL: url})
}

// ConfirmTOTP handles POST /api/v1/users/me/totp/confirm.
func (h *UserHandler) ConfirmTOTP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	var req TOTPConfirmRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	user, err := h.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		InternalServerError(w, "Failed to load user")
		return
	}
	if user.TOTPSecret == "" {
		BadRequest(w, "No pending enrollment")
		return
	}
	if !secondfactor.ValidateTOTP(req.Code, user.TOTPSecret) {
		Unauthorized(w, "Invalid code")
		return
	}

	user.TwoFactorEnabled = true
	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		InternalServerError(w, "Failed to enable second factor")
		return
	}

	logger.InfoCtx(r.Context(), "Second factor enabled", logger.KeyUsername, user.Username)
	WriteNoContent(w)
}

// DisableTOTP handles DELETE /api/v1/users/me/totp.
func (h *UserHandler) DisableTOTP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		Unauthorized(w, "Authentication required")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		InternalServerError(w, "Failed to load user")
		return
	}
	user.TwoFactorEnabled = false
	user.TOTPSecret = ""
	if err := h.store.UpdateUser(r.Context(), user); err != nil {
		InternalServerError(w, "Failed to disable second factor")
		return
	}
	WriteNoContent(w)
}
