// Package store provides the vault persistence layer.
//
// It manages users, sealed file metadata, share links with their key
// fragments, second-factor challenges, and the attempt ledger.
//
// Two backends are supported:
//   - SQLite (single-node, default)
//   - PostgreSQL (HA-capable)
package store

import (
	"context"
	"time"

	"github.com/Lightningwave/safesplit-sub000/pkg/vault/models"
)

// Store provides the vault persistence interface.
//
// Thread Safety: Implementations must be safe for concurrent use from
// multiple goroutines.
type Store interface {
	// ============================================
	// USER OPERATIONS
	// ============================================

	// GetUser returns a user by username.
	// Returns models.ErrUserNotFound if the user doesn't exist.
	GetUser(ctx context.Context, username string) (*models.User, error)

	// GetUserByID returns a user by their unique ID (UUID).
	// Returns models.ErrUserNotFound if no user has this ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// ListUsers returns all users.
	ListUsers(ctx context.Context) ([]*models.User, error)

	// CreateUser creates a new user and returns the generated ID.
	// Returns models.ErrDuplicateUser if username or email is taken.
	CreateUser(ctx context.Context, user *models.User) (string, error)

	// UpdateUser updates an existing user's mutable fields.
	// Returns models.ErrUserNotFound if the user doesn't exist.
	UpdateUser(ctx context.Context, user *models.User) error

	// UpdateUserPassword replaces the stored password hash and clears the
	// must-change flag.
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error

	// TouchLastLogin records a successful authentication time.
	TouchLastLogin(ctx context.Context, id string, at time.Time) error

	// DeleteUser deletes a user by username.
	// Returns models.ErrUserNotFound if the user doesn't exist.
	DeleteUser(ctx context.Context, username string) error

	// EnsureSuperAdmin creates the bootstrap account if no super admin
	// exists. Returns the generated plaintext password (to be printed
	// once) when a fresh account was created, or "" otherwise.
	EnsureSuperAdmin(ctx context.Context) (string, error)

	// ============================================
	// FILE OPERATIONS
	// ============================================

	// CreateFile records metadata for a sealed artifact.
	CreateFile(ctx context.Context, file *models.StoredFile) (string, error)

	// GetFile returns file metadata by ID.
	// Returns models.ErrFileNotFound if no row exists.
	GetFile(ctx context.Context, id string) (*models.StoredFile, error)

	// ListFilesByOwner returns all files owned by a user.
	ListFilesByOwner(ctx context.Context, ownerID string) ([]*models.StoredFile, error)

	// DeleteFile removes file metadata by ID.
	DeleteFile(ctx context.Context, id string) error

	// ============================================
	// SHARE OPERATIONS
	// ============================================

	// CreateShare persists a share and its key fragments atomically.
	CreateShare(ctx context.Context, share *models.Share) (string, error)

	// GetShareByToken returns a share (with fragments) by its link token.
	// Returns models.ErrShareNotFound if the token resolves to nothing.
	GetShareByToken(ctx context.Context, token string) (*models.Share, error)

	// ListSharesByOwner returns all shares created by a user.
	ListSharesByOwner(ctx context.Context, ownerID string) ([]*models.Share, error)

	// ClaimDownload atomically consumes one download slot on a share.
	// Returns models.ErrDownloadsExhausted if the ceiling is already
	// reached; concurrent callers racing for the last slot see exactly
	// one winner.
	ClaimDownload(ctx context.Context, token string) error

	// DeleteShare removes a share and its fragments by token.
	DeleteShare(ctx context.Context, token string) error

	// ============================================
	// CHALLENGE OPERATIONS
	// ============================================

	// ReplaceChallenge atomically removes any outstanding challenge for
	// the principal and stores the new one, so at most one unconsumed
	// challenge exists per principal.
	ReplaceChallenge(ctx context.Context, challenge *models.Challenge) error

	// GetChallenge returns the outstanding challenge for a principal.
	// Returns models.ErrChallengeNotFound if none exists.
	GetChallenge(ctx context.Context, principalID string) (*models.Challenge, error)

	// ConsumeChallenge marks the principal's challenge as used.
	// Returns models.ErrChallengeNotFound if none exists.
	ConsumeChallenge(ctx context.Context, principalID string) error

	// ============================================
	// ATTEMPT LEDGER OPERATIONS
	// ============================================

	// GetAttemptRecord returns the ledger row for a principal, or a fresh
	// zero-count record if none exists.
	GetAttemptRecord(ctx context.Context, principalID string) (*models.AttemptRecord, error)

	// PutAttemptRecord upserts the ledger row for a principal.
	PutAttemptRecord(ctx context.Context, record *models.AttemptRecord) error

	// ClearAttemptRecord removes the ledger row for a principal.
	ClearAttemptRecord(ctx context.Context, principalID string) error

	// ============================================
	// HEALTH & LIFECYCLE
	// ============================================

	// Healthcheck verifies the database connection is alive.
	Healthcheck(ctx context.Context) error

	// Close releases the database connection.
	Close() error
}
