package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so gate decisions,
// share access, and artifact transfers can be aggregated and queried.
const (
	// ========================================================================
	// Request Correlation
	// ========================================================================
	KeyRequestID = "request_id" // HTTP request ID for correlation
	KeyClientIP  = "client_ip"  // Client IP address (without port)
	KeySurface   = "surface"    // Gate call site: login, share

	// ========================================================================
	// Principals & Gate Decisions
	// ========================================================================
	KeyUsername   = "username"    // Account principal username
	KeyUserID     = "user_id"     // Account principal ID
	KeyRole       = "role"        // Account role
	KeyShareToken = "share_token" // Share link token (masked to prefix)
	KeyOutcome    = "outcome"     // Gate outcome: granted, invalid_credential, ...
	KeyRemaining  = "remaining"   // Remaining attempts before lockout
	KeyRetryAfter = "retry_after" // Seconds until a lockout expires
	KeyChallenge  = "challenge"   // Challenge ID
	KeyFactor     = "factor"      // Second-factor method: email_code, totp

	// ========================================================================
	// Artifacts & Shares
	// ========================================================================
	KeyFileID     = "file_id"    // Stored file ID
	KeyFilename   = "filename"   // Original filename
	KeySize       = "size"       // Payload size in bytes
	KeyShares     = "shares"     // Total fragment count of a split
	KeyThreshold  = "threshold"  // Fragments required for reconstruction
	KeyRecipients = "recipients" // Recipient count
	KeyDownloads  = "downloads"  // Download count after an access

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyError      = "error"       // Error message
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyStatus     = "status"      // HTTP status code
	KeyMethod     = "method"      // HTTP method
	KeyPath       = "path"        // HTTP request path
)

// ============================================================================
// Field constructors for type safety
// These functions provide type-safe construction of slog.Attr values.
// ============================================================================

// RequestID returns a slog.Attr for the HTTP request ID.
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// ClientIP returns a slog.Attr for the client IP address.
func ClientIP(ip string) slog.Attr {
	return slog.String(KeyClientIP, ip)
}

// Surface returns a slog.Attr for the gate call site (login or share).
func Surface(s string) slog.Attr {
	return slog.String(KeySurface, s)
}

// Username returns a slog.Attr for an account principal's username.
func Username(name string) slog.Attr {
	return slog.String(KeyUsername, name)
}

// ShareToken returns a slog.Attr for a share token, masked to its prefix so
// full tokens never land in logs.
func ShareToken(token string) slog.Attr {
	return slog.String(KeyShareToken, maskToken(token))
}

// Outcome returns a slog.Attr for a gate outcome.
func Outcome(o string) slog.Attr {
	return slog.String(KeyOutcome, o)
}

// Factor returns a slog.Attr for a second-factor method.
func Factor(m string) slog.Attr {
	return slog.String(KeyFactor, m)
}

// Filename returns a slog.Attr for an artifact filename.
func Filename(name string) slog.Attr {
	return slog.String(KeyFilename, name)
}

// Size returns a slog.Attr for a payload size in bytes.
func Size(n int64) slog.Attr {
	return slog.Int64(KeySize, n)
}

// Status returns a slog.Attr for an HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// Err returns a slog.Attr for an error message.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "<nil>")
	}
	return slog.String(KeyError, err.Error())
}

// DurationMs returns a slog.Attr for an operation duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// maskToken keeps the first 8 characters of a token for correlation and
// drops the rest.
func maskToken(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8] + "..."
}
