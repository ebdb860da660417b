package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context
type LogContext struct {
	RequestID  string    // HTTP request ID
	Surface    string    // Gate call site: login, share
	Username   string    // Account principal username (login surface)
	ShareToken string    // Share token, already masked (share surface)
	ClientIP   string    // Client IP address (without port)
	StartTime  time.Time // For duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext with the given client IP
func NewLogContext(clientIP string) *LogContext {
	return &LogContext{
		ClientIP:  clientIP,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	c := *lc
	return &c
}

// WithSurface returns a copy with the gate surface set
func (lc *LogContext) WithSurface(surface string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Surface = surface
	}
	return clone
}

// WithUsername returns a copy with the account principal set
func (lc *LogContext) WithUsername(username string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Username = username
	}
	return clone
}

// WithShareToken returns a copy with the (masked) share token set
func (lc *LogContext) WithShareToken(token string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.ShareToken = maskToken(token)
	}
	return clone
}

// WithRequestID returns a copy with the HTTP request ID set
func (lc *LogContext) WithRequestID(id string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.RequestID = id
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
