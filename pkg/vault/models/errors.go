package models

import "errors"

// Sentinel errors returned by stores and services. Handlers map these to
// HTTP problem responses; everything else surfaces as an internal error.
var (
	// ErrUserNotFound is returned when a user lookup finds no row.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUser is returned when a username or email is already taken.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrFileNotFound is returned when a stored file lookup finds no row.
	ErrFileNotFound = errors.New("file not found")

	// ErrDuplicateFile is returned when a blob key collides.
	ErrDuplicateFile = errors.New("file already exists")

	// ErrDuplicateShare is returned when a share token collides.
	ErrDuplicateShare = errors.New("share already exists")

	// ErrShareNotFound is returned when a share token resolves to nothing.
	ErrShareNotFound = errors.New("share not found")

	// ErrChallengeNotFound is returned when a principal has no outstanding
	// second-factor challenge.
	ErrChallengeNotFound = errors.New("challenge not found")

	// ErrInvalidCredentials is returned when a primary secret does not match.
	// It is deliberately indistinguishable from an unknown principal.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPrincipalLocked is returned when the attempt ledger has locked the
	// principal out. Callers should surface the retry-after hint alongside it.
	ErrPrincipalLocked = errors.New("principal is temporarily locked")

	// ErrChallengeRequired is returned when a grant cannot be issued until a
	// second-factor challenge is answered.
	ErrChallengeRequired = errors.New("second-factor challenge required")

	// ErrChallengeInvalid is returned when a submitted second-factor code is
	// wrong, expired, already consumed, or superseded.
	ErrChallengeInvalid = errors.New("second-factor code is invalid or expired")

	// ErrShareExpired is returned when a share link is past its expiry instant.
	ErrShareExpired = errors.New("share link has expired")

	// ErrDownloadsExhausted is returned when a share's download ceiling has
	// been reached.
	ErrDownloadsExhausted = errors.New("share download limit reached")

	// ErrUserDisabled is returned when a disabled account attempts to
	// authenticate.
	ErrUserDisabled = errors.New("user account is disabled")

	// ErrInvalidDescriptor is returned when a share descriptor fails
	// validation.
	ErrInvalidDescriptor = errors.New("invalid share descriptor")
)
