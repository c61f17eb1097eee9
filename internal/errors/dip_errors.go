package errors

import (
	stderrors "errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// Code identifies the kind of failure. Codes are stable strings and are used
// as wire-level discriminators by the collector and the HTTP adapter.
type Code string

const (
	CodeBadRequest      Code = "BAD_REQUEST"
	CodeEventNotFound   Code = "EVENT_NOT_FOUND"
	CodeInvalidPayload  Code = "INVALID_PAYLOAD"
	CodeTaskNotFound    Code = "TASK_NOT_FOUND"
	CodeTimeout         Code = "TIMEOUT"
	CodeTooManyAttempts Code = "TOO_MANY_ATTEMPTS"
	CodeUnknownError    Code = "UNKNOWN_ERROR"
)

// ErrorName is the name every taxonomy error serializes under.
const ErrorName = "DIPError"

// Codes lists the closed set of taxonomy codes in declaration order.
var Codes = []Code{
	CodeBadRequest,
	CodeEventNotFound,
	CodeInvalidPayload,
	CodeTaskNotFound,
	CodeTimeout,
	CodeTooManyAttempts,
	CodeUnknownError,
}

// Valid reports whether c belongs to the taxonomy.
func (c Code) Valid() bool {
	for _, known := range Codes {
		if c == known {
			return true
		}
	}
	return false
}

// DIPError is the unit of failure reporting for every fallible public
// operation of the engine.
type DIPError struct {
	Code          Code
	Message       string
	Stack         string
	Context       map[string]interface{}
	OriginalError error
}

// New creates a taxonomy error. An empty message defaults to the code.
func New(code Code, message string) *DIPError {
	if message == "" {
		message = string(code)
	}
	return &DIPError{
		Code:    code,
		Message: message,
		Stack:   string(debug.Stack()),
		Context: make(map[string]interface{}),
	}
}

// Newf creates a taxonomy error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *DIPError {
	return New(code, fmt.Sprintf(format, args...))
}

// Error implements the error interface
func (e *DIPError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", e.Code, e.Message))
	if e.OriginalError != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.OriginalError))
	}
	return sb.String()
}

// Unwrap returns the original error for error chain compatibility
func (e *DIPError) Unwrap() error {
	return e.OriginalError
}

// Is matches any DIPError carrying the same code, so sentinel comparisons
// like errors.Is(err, errors.New(CodeTaskNotFound, "")) work.
func (e *DIPError) Is(target error) bool {
	var t *DIPError
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithContext adds context information to the error
func (e *DIPError) WithContext(key string, value interface{}) *DIPError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithOriginalError records the cause of the error
func (e *DIPError) WithOriginalError(err error) *DIPError {
	e.OriginalError = err
	return e
}

// Common error constructors

// NewEventNotFoundError is returned when no task is bound to an event.
func NewEventNotFoundError(event string) *DIPError {
	return Newf(CodeEventNotFound, "No event registered for %q", event).
		WithContext("event", event)
}

// NewTaskNotFoundError is returned when a task name has no handler.
func NewTaskNotFoundError(task string) *DIPError {
	return Newf(CodeTaskNotFound, "No handler registered for %q", task).
		WithContext("task", task)
}

// NewInvalidPayloadError is returned when a payload fails its event schema.
func NewInvalidPayloadError(target string, cause error) *DIPError {
	return Newf(CodeInvalidPayload, "Invalid payload for %q", target).
		WithContext("target", target).
		WithOriginalError(cause)
}

// NewTooManyAttemptsError is returned when a step has exhausted its retries.
func NewTooManyAttemptsError(step string, attempt, retries int) *DIPError {
	return Newf(CodeTooManyAttempts, "Exceeded maximum retries, %d / %d", attempt, retries).
		WithContext("step", step)
}

// NewUnknownError hides an internal failure behind a generic message.
func NewUnknownError(cause error) *DIPError {
	return New(CodeUnknownError, "INTERNAL SERVER ERROR").WithOriginalError(cause)
}

// AsDIPError extracts a taxonomy error from err's chain.
func AsDIPError(err error) (*DIPError, bool) {
	var dipErr *DIPError
	if stderrors.As(err, &dipErr) && dipErr != nil {
		return dipErr, true
	}
	return nil, false
}

// IsCode reports whether err carries the given taxonomy code.
func IsCode(err error, code Code) bool {
	dipErr, ok := AsDIPError(err)
	return ok && dipErr.Code == code
}

// CodeOf returns the taxonomy code of err, or UNKNOWN_ERROR.
func CodeOf(err error) Code {
	if dipErr, ok := AsDIPError(err); ok {
		return dipErr.Code
	}
	return CodeUnknownError
}
