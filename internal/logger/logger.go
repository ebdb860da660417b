// Package logger provides structured logging for SafeSplit on top of
// log/slog, with request-scoped context fields and a colored text format
// for terminals.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config holds logger configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or a file path
}

var (
	mu       sync.RWMutex
	output   io.Writer = os.Stdout
	useColor           = true
	levelVar           = new(slog.LevelVar)
	format             = "text"
	slogger  *slog.Logger
)

func init() {
	if f, ok := output.(*os.File); ok {
		useColor = isTerminal(f.Fd())
	}
	reconfigure()
}

// reconfigure rebuilds the slog handler from the current settings.
// Callers must not hold mu.
func reconfigure() {
	mu.Lock()
	defer mu.Unlock()

	opts := &slog.HandlerOptions{Level: levelVar}
	if format == "json" {
		slogger = slog.New(slog.NewJSONHandler(output, opts))
	} else {
		slogger = slog.New(NewColorTextHandler(output, opts, useColor))
	}
}

// Init applies the configuration. Output may be "stdout", "stderr", or a
// file path, which is opened in append mode.
func Init(cfg Config) error {
	if cfg.Output != "" {
		var w io.Writer
		var color bool

		switch strings.ToLower(cfg.Output) {
		case "stdout":
			w, color = os.Stdout, isTerminal(os.Stdout.Fd())
		case "stderr":
			w, color = os.Stderr, isTerminal(os.Stderr.Fd())
		default:
			f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
			}
			w, color = f, false
		}

		mu.Lock()
		output = w
		useColor = color
		mu.Unlock()
	}

	if cfg.Level != "" {
		SetLevel(cfg.Level)
	}
	if cfg.Format != "" {
		SetFormat(cfg.Format)
	}
	if cfg.Level == "" && cfg.Format == "" {
		reconfigure()
	}
	return nil
}

// SetLevel sets the minimum log level. Invalid levels are ignored.
func SetLevel(level string) {
	var l slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		l = slog.LevelDebug
	case "INFO":
		l = slog.LevelInfo
	case "WARN":
		l = slog.LevelWarn
	case "ERROR":
		l = slog.LevelError
	default:
		return
	}
	levelVar.Set(l)
	reconfigure()
}

// SetFormat sets the output format, "text" or "json". Invalid formats are
// ignored.
func SetFormat(f string) {
	f = strings.ToLower(f)
	if f != "text" && f != "json" {
		return
	}
	mu.Lock()
	format = f
	mu.Unlock()
	reconfigure()
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// Debug logs at debug level with structured key/value fields.
func Debug(msg string, args ...any) {
	current().Debug(msg, args...)
}

// Info logs at info level with structured key/value fields.
func Info(msg string, args ...any) {
	current().Info(msg, args...)
}

// Warn logs at warn level with structured key/value fields.
func Warn(msg string, args ...any) {
	current().Warn(msg, args...)
}

// Error logs at error level with structured key/value fields.
func Error(msg string, args ...any) {
	current().Error(msg, args...)
}

// DebugCtx logs at debug level, prepending any LogContext fields carried
// by ctx.
func DebugCtx(ctx context.Context, msg string, args ...any) {
	current().Debug(msg, withContextFields(ctx, args)...)
}

// InfoCtx logs at info level with LogContext fields from ctx.
func InfoCtx(ctx context.Context, msg string, args ...any) {
	current().Info(msg, withContextFields(ctx, args)...)
}

// WarnCtx logs at warn level with LogContext fields from ctx.
func WarnCtx(ctx context.Context, msg string, args ...any) {
	current().Warn(msg, withContextFields(ctx, args)...)
}

// ErrorCtx logs at error level with LogContext fields from ctx.
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	current().Error(msg, withContextFields(ctx, args)...)
}

// withContextFields prepends the LogContext fields so they lead each line.
func withContextFields(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}

	fields := make([]any, 0, 10+len(args))
	if lc.RequestID != "" {
		fields = append(fields, KeyRequestID, lc.RequestID)
	}
	if lc.Surface != "" {
		fields = append(fields, KeySurface, lc.Surface)
	}
	if lc.Username != "" {
		fields = append(fields, KeyUsername, lc.Username)
	}
	if lc.ShareToken != "" {
		fields = append(fields, KeyShareToken, lc.ShareToken)
	}
	if lc.ClientIP != "" {
		fields = append(fields, KeyClientIP, lc.ClientIP)
	}
	return append(fields, args...)
}
