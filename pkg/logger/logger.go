// Package logger wraps log/slog with JSON/text output selection and masking
// of sensitive attributes.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with additional functionality.
type Logger struct {
	*slog.Logger
}

// Config holds logger configuration.
type Config struct {
	Level  string
	Format string
	Output io.Writer
}

// New creates a new Logger instance.
func New(cfg Config) *Logger {
	level := parseLevel(cfg.Level)

	opts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   level == slog.LevelDebug,
		ReplaceAttr: sanitizeAttr,
	}

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(output, opts)
	default:
		handler = slog.NewJSONHandler(output, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// NewDefault creates a logger with default settings, for use before
// configuration is loaded.
func NewDefault() *Logger {
	return New(Config{Level: "info", Format: "json"})
}

// With returns a Logger with the given attributes attached.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// WithContext returns a Logger carrying request-scoped attributes found in
// ctx (request id, organization id).
func (l *Logger) WithContext(ctx context.Context) *Logger {
	out := l
	for _, key := range []ContextKey{ContextKeyRequestID, ContextKeyOrganizationID, ContextKeyUserID} {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			out = out.With(string(key), v)
		}
	}
	return out
}

// ContextKey is the typed key used for logger-relevant context values.
type ContextKey string

// Context keys shared with the HTTP middleware.
const (
	ContextKeyRequestID      ContextKey = "request_id"
	ContextKeyOrganizationID ContextKey = "organization_id"
	ContextKeyUserID         ContextKey = "user_id"
)

// sensitiveKeys contains attribute keys whose values are masked in logs.
var sensitiveKeys = map[string]bool{
	"password":      true,
	"secret":        true,
	"token":         true,
	"authorization": true,
	"bearer":        true,
	"api_key":       true,
	"apikey":        true,
	"access_token":  true,
	"refresh_token": true,
	"jwt":           true,
	"cookie":        true,
	"dsn":           true,
	"database_url":  true,
	"db_password":   true,
}

func sanitizeAttr(_ []string, a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, "***")
	}
	return a
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
