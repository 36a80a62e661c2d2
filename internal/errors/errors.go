package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"
)

// Kind is the caller-facing error classification
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindValidation         Kind = "validation_failure"
	KindConflict           Kind = "conflict_already_exists"
	KindStorageUnavailable Kind = "storage_unavailable"
	KindMalformedData      Kind = "malformed_stored_data"
	KindUnauthenticated    Kind = "unauthenticated"
	KindRateLimit          Kind = "rate_limited"
	KindInternal           Kind = "internal"
)

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// AppError wraps an errbuilder error with the HTTP mapping used by the API
type AppError struct {
	*errbuilder.ErrBuilder
	Kind       Kind           `json:"kind"`
	HTTPStatus int            `json:"-"`
	Fields     map[string]any `json:"details,omitempty"`
	Timestamp  time.Time      `json:"-"`
	StackTrace string         `json:"-"`
}

func (e *AppError) Error() string {
	codeStr := "UNKNOWN_ERROR"
	switch e.ErrBuilder.ErrCode() {
	case errbuilder.CodeNotFound:
		codeStr = "NOT_FOUND"
	case errbuilder.CodeInvalidArgument:
		codeStr = "VALIDATION_ERROR"
	case errbuilder.CodeAlreadyExists:
		codeStr = "ALREADY_EXISTS"
	case errbuilder.CodeUnavailable:
		codeStr = "STORAGE_UNAVAILABLE"
	case errbuilder.CodeDataLoss:
		codeStr = "MALFORMED_DATA"
	case errbuilder.CodeUnauthenticated:
		codeStr = "UNAUTHENTICATED"
	case errbuilder.CodeResourceExhausted:
		codeStr = "RATE_LIMIT_EXCEEDED"
	case errbuilder.CodeInternal:
		codeStr = "INTERNAL_ERROR"
	}

	if cause := e.ErrBuilder.Unwrap(); cause != nil {
		return fmt.Sprintf("[%s] %s: %v", codeStr, e.ErrBuilder.Msg, cause)
	}
	return fmt.Sprintf("[%s] %s", codeStr, e.ErrBuilder.Msg)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// NewAppError creates an AppError from errbuilder with additional context
func NewAppError(builder *errbuilder.ErrBuilder, kind Kind, httpStatus int) *AppError {
	return &AppError{
		ErrBuilder: builder,
		Kind:       kind,
		HTTPStatus: httpStatus,
		Timestamp:  time.Now(),
	}
}

// WithField attaches a caller-visible detail.
func (e *AppError) WithField(key string, value any) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

// NotFound reports a missing prompt, candidate, evaluation or share token.
// A nil id keeps the identifier out of the response.
func NotFound(resource string, id any) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(fmt.Sprintf("%s not found", resource))

	if id == nil {
		return NewAppError(builder, KindNotFound, http.StatusNotFound)
	}

	errorMap := errbuilder.ErrorMap{}
	errorMap.Set(resource, fmt.Errorf("%v", id))
	builder = builder.WithDetails(errbuilder.NewErrDetails(errorMap))

	return NewAppError(builder, KindNotFound, http.StatusNotFound).WithField(resource, id)
}

// NewValidationError creates a validation error. Problems are returned to
// the caller as details.
func NewValidationError(message string, problems any) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(message)

	if problems != nil {
		errorMap := errbuilder.ErrorMap{}
		errorMap.Set("validation_details", fmt.Errorf("%v", problems))
		builder = builder.WithDetails(errbuilder.NewErrDetails(errorMap))
	}

	appErr := NewAppError(builder, KindValidation, http.StatusBadRequest)
	if problems != nil {
		appErr.WithField("problems", problems)
	}
	return appErr
}

// NewValidationErrorWithMap creates a validation error for several invalid fields.
func NewValidationErrorWithMap(fieldErrors map[string]string) *AppError {
	errMap := errbuilder.ErrorMap{}
	keys := make([]string, 0, len(fieldErrors))
	for field, message := range fieldErrors {
		errMap.Set(field, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(message))
		keys = append(keys, field)
	}
	sort.Strings(keys)

	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("Invalid request").
		WithDetails(errbuilder.NewErrDetails(errMap))

	appErr := NewAppError(builder, KindValidation, http.StatusBadRequest)
	for _, k := range keys {
		appErr.WithField(k, fieldErrors[k])
	}
	return appErr
}

// Conflict reports a uniqueness violation such as a duplicate evaluation.
func Conflict(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeAlreadyExists).
		WithMsg(message)

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, KindConflict, http.StatusConflict)
}

// StorageUnavailable reports a connection or pool failure. The cause is
// logged but never sent to the client.
func StorageUnavailable(operation string, cause error) *AppError {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set("operation", errors.New(operation))

	builder := errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg("Storage unavailable").
		WithDetails(errbuilder.NewErrDetails(errorMap))

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, KindStorageUnavailable, http.StatusInternalServerError)
}

// MalformedData reports stored JSON that could not be decoded.
func MalformedData(column string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeDataLoss).
		WithMsg(fmt.Sprintf("malformed stored %s", column))

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	return NewAppError(builder, KindMalformedData, http.StatusInternalServerError)
}

// Unauthenticated reports a missing or invalid reviewer credential.
func Unauthenticated(message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeUnauthenticated).
		WithMsg(message)

	return NewAppError(builder, KindUnauthenticated, http.StatusUnauthorized)
}

// NewRateLimitError creates a rate limit error using errbuilder
func NewRateLimitError(retryAfter string) *AppError {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set("retry_after", errors.New(retryAfter))

	builder := errbuilder.New().
		WithCode(errbuilder.CodeResourceExhausted).
		WithMsg("Rate limit exceeded").
		WithDetails(errbuilder.NewErrDetails(errorMap))

	return NewAppError(builder, KindRateLimit, http.StatusTooManyRequests).WithField("retry_after", retryAfter)
}

// NewInternalError creates an internal server error. The message is kept
// for logs only.
func NewInternalError(message string, cause error) *AppError {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set("internal_details", errors.New(message))

	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("Internal server error").
		WithDetails(errbuilder.NewErrDetails(errorMap))

	if cause != nil {
		builder = builder.WithCause(cause)
	}

	appErr := NewAppError(builder, KindInternal, http.StatusInternalServerError)

	if gin.Mode() == gin.DebugMode || gin.Mode() == gin.TestMode {
		appErr.StackTrace = captureStackTrace()
	}

	return appErr
}

func captureStackTrace() string {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// ToAppError converts any error to an AppError
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var ebErr *errbuilder.ErrBuilder
	if errors.As(err, &ebErr) {
		switch ebErr.ErrCode() {
		case errbuilder.CodeNotFound:
			return NewAppError(ebErr, KindNotFound, http.StatusNotFound)
		case errbuilder.CodeInvalidArgument:
			return NewAppError(ebErr, KindValidation, http.StatusBadRequest)
		case errbuilder.CodeAlreadyExists:
			return NewAppError(ebErr, KindConflict, http.StatusConflict)
		}
		return NewAppError(ebErr, KindInternal, http.StatusInternalServerError)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return StorageUnavailable("request deadline", err)
	}

	return NewInternalError("An unexpected error occurred", err)
}

// Response is the JSON body written for every failed request.
type Response struct {
	Error ResponseBody `json:"error"`
}

// ResponseBody carries the caller-visible part of an AppError.
type ResponseBody struct {
	Kind      Kind           `json:"kind"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// Body renders the caller-visible part of e.
func (e *AppError) Body(requestID string) Response {
	return Response{Error: ResponseBody{
		Kind:      e.Kind,
		Message:   e.ErrBuilder.Msg,
		Details:   e.Fields,
		RequestID: requestID,
	}}
}

// Abort logs err and writes its JSON body.
func Abort(c *gin.Context, err error) {
	appErr := ToAppError(err)
	LogError(c, appErr)
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.Body(c.GetString(RequestIDKey)))
}

// ErrorHandler writes the last error recorded with c.Error as a JSON body
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		appErr := ToAppError(c.Errors.Last().Err)
		LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr.Body(c.GetString(RequestIDKey)))
	}
}

// RecoveryHandler provides panic recovery with structured error responses
func RecoveryHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		appErr := NewInternalError(
			fmt.Sprintf("Panic recovered: %v", recovered),
			fmt.Errorf("%v", recovered),
		)
		appErr.StackTrace = captureStackTrace()

		LogError(c, appErr)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.Body(c.GetString(RequestIDKey)))
	})
}

// logPath prefers the route template so path parameters such as share
// tokens stay out of logs.
func logPath(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return c.Request.URL.Path
}

// LogError logs an error with a level chosen by kind
func LogError(c *gin.Context, err *AppError) {
	logEntry := slog.With(
		"error_kind", err.Kind,
		"error_code", err.ErrBuilder.ErrCode(),
		"http_status", err.HTTPStatus,
		"ip", c.ClientIP(),
		"method", c.Request.Method,
		"path", logPath(c),
		"request_id", c.GetString(RequestIDKey),
	)

	errorMsg := err.ErrBuilder.Msg
	switch err.Kind {
	case KindValidation, KindRateLimit, KindNotFound, KindConflict, KindUnauthenticated:
		if err.Fields != nil {
			logEntry.Warn(errorMsg, "details", err.Fields)
		} else {
			logEntry.Warn(errorMsg)
		}
	default:
		if cause := err.ErrBuilder.Unwrap(); cause != nil {
			logEntry.Error(errorMsg, "cause", cause)
		} else {
			logEntry.Error(errorMsg)
		}
	}

	if err.StackTrace != "" && (gin.Mode() == gin.DebugMode || gin.Mode() == gin.TestMode) {
		logEntry.Debug("stack_trace", "trace", err.StackTrace)
	}
}

// IsRetryableError reports whether a caller may retry with backoff.
func IsRetryableError(err error) bool {
	switch ToAppError(err).Kind {
	case KindStorageUnavailable, KindRateLimit:
		return true
	default:
		return false
	}
}

// SafeClose safely closes a resource and logs any errors
func SafeClose(closer interface{ Close() error }, resourceName string) {
	if closer == nil {
		return
	}

	if err := closer.Close(); err != nil {
		slog.Warn("Failed to close resource",
			"resource", resourceName,
			"error", err)
	}
}
