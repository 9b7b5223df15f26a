package errors

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"
)

// ErrorCategory names the four kinds of failure the proxy answers with.
type ErrorCategory string

const (
	CategoryMethod        ErrorCategory = "method"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryUpstream      ErrorCategory = "upstream"
	CategoryRateLimit     ErrorCategory = "rate_limit"
	CategoryInternal      ErrorCategory = "internal"
)

// AppError wraps an errbuilder error with the category and HTTP status the
// proxy responds with. Upstream errors additionally carry the upstream body
// text, the only detail ever exposed to clients.
type AppError struct {
	*errbuilder.ErrBuilder
	Category   ErrorCategory
	HTTPStatus int
	Detail     string
	Timestamp  time.Time
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Category, e.ErrBuilder.Msg)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// Response renders the client-facing JSON body for this error. Only
// upstream errors expose detail; everything else answers with its generic
// message so credentials and internals never leave the server.
func (e *AppError) Response() gin.H {
	switch e.Category {
	case CategoryMethod:
		return gin.H{"error": "Method not allowed"}
	case CategoryConfiguration:
		return gin.H{"error": "API configuration error"}
	case CategoryUpstream:
		return gin.H{"error": "Failed to fetch events from Luma", "details": e.Detail}
	case CategoryRateLimit:
		return gin.H{"error": "Rate limit exceeded"}
	default:
		return gin.H{"error": "Internal server error", "message": e.message()}
	}
}

// message describes the cause for internal error bodies.
func (e *AppError) message() string {
	if cause := e.Unwrap(); cause != nil {
		return cause.Error()
	}
	return e.ErrBuilder.Msg
}

// NewAppError creates an AppError from an errbuilder with category and
// status.
func NewAppError(builder *errbuilder.ErrBuilder, category ErrorCategory, httpStatus int) *AppError {
	return &AppError{
		ErrBuilder: builder,
		Category:   category,
		HTTPStatus: httpStatus,
		Timestamp:  time.Now(),
	}
}

// NewMethodError creates the error answered to any verb other than GET.
func NewMethodError(method string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("method %s not allowed", method))

	return NewAppError(builder, CategoryMethod, http.StatusMethodNotAllowed)
}

// NewConfigurationError creates the error answered when the upstream
// credential is missing. The message stays server-side.
func NewConfigurationError(message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(message)

	return NewAppError(builder, CategoryConfiguration, http.StatusInternalServerError)
}

// NewUpstreamError creates an error mirroring a non-2xx upstream response.
// The upstream body text travels in Detail and is exposed to the client.
func NewUpstreamError(status int, body string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg(fmt.Sprintf("Luma API error: status %d", status))

	appErr := NewAppError(builder, CategoryUpstream, status)
	appErr.Detail = body
	return appErr
}

// NewRateLimitError creates the error answered past the per-IP budget.
func NewRateLimitError() *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeResourceExhausted).
		WithMsg("rate limit exceeded")

	return NewAppError(builder, CategoryRateLimit, http.StatusTooManyRequests)
}

// NewInternalError creates a 500 for transport failures, decode failures
// and anything else unexpected.
func NewInternalError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, CategoryInternal, http.StatusInternalServerError)
}

// ToAppError converts any error to an AppError, defaulting to the internal
// category.
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	if ebErr, ok := err.(*errbuilder.ErrBuilder); ok {
		return NewAppError(ebErr, CategoryInternal, http.StatusInternalServerError)
	}
	return NewInternalError("An unexpected error occurred", err)
}

// LogError logs an error with request context. Upstream status and body are
// logged here in full, they never reach the client beyond Response().
func LogError(c *gin.Context, err *AppError) {
	logEntry := slog.With(
		"error_category", err.Category,
		"http_status", err.HTTPStatus,
		"ip", c.ClientIP(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	switch err.Category {
	case CategoryMethod, CategoryRateLimit:
		logEntry.Warn(err.ErrBuilder.Msg)
	case CategoryUpstream:
		logEntry.Warn(err.ErrBuilder.Msg, "upstream_body", err.Detail)
	default:
		if cause := err.Unwrap(); cause != nil {
			logEntry.Error(err.ErrBuilder.Msg, "cause", cause)
		} else {
			logEntry.Error(err.ErrBuilder.Msg)
		}
	}
}

// RecoveryHandler converts panics anywhere in the request path into the
// generic internal error response.
func RecoveryHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		appErr := NewInternalError(
			"panic recovered",
			fmt.Errorf("%v", recovered),
		)
		LogError(c, appErr)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.Response())
	})
}
