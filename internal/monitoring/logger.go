package monitoring

import (
	"log/slog"
	"os"
	"time"
)

// Logger provides structured logging helpers for the request path.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a JSON logger with RFC 3339 timestamps.
func NewLogger() *Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "timestamp",
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	})

	return &Logger{
		Logger: slog.New(handler),
	}
}

// RequestLogger logs HTTP request details.
func (l *Logger) RequestLogger(method, path, ip, userAgent string, statusCode int, duration time.Duration) {
	l.Info("HTTP Request",
		"method", method,
		"path", path,
		"ip", ip,
		"user_agent", userAgent,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// UpstreamLogger logs one outbound Luma API call.
func (l *Logger) UpstreamLogger(endpoint string, statusCode int, duration time.Duration, success bool) {
	if success {
		l.Info("Upstream API Call",
			"endpoint", endpoint,
			"status_code", statusCode,
			"duration_ms", duration.Milliseconds(),
		)
		return
	}
	l.Warn("Upstream API Call Failed",
		"endpoint", endpoint,
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
	)
}

// APIErrorLogger logs API errors with request context.
func (l *Logger) APIErrorLogger(err error, method, path, ip string, statusCode int) {
	l.Error("API Error",
		"error", err.Error(),
		"method", method,
		"path", path,
		"ip", ip,
		"status_code", statusCode,
	)
}
