// Package errors provides the standardized error taxonomy for the search API.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode represents a standardized internal error code.
type ErrorCode string

const (
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"

	ErrCodeUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamError       ErrorCode = "UPSTREAM_ERROR"
	ErrCodeParseFailure        ErrorCode = "PARSE_FAILURE"

	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeStoreError       ErrorCode = "STORE_ERROR"

	ErrCodeRouteNotFound    ErrorCode = "ROUTE_NOT_FOUND"
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

func newError(code ErrorCode, message string, retryable bool, cause error) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewValidationError reports bad caller input.
func NewValidationError(message string) *StandardError {
	return newError(ErrCodeValidation, message, false, nil)
}

// NewUpstreamUnavailableError reports the language service as unreachable or timed out.
func NewUpstreamUnavailableError(err error) *StandardError {
	return newError(ErrCodeUpstreamUnavailable, "Language service unavailable", true, err)
}

// NewUpstreamError reports a non-success reply from the language service.
func NewUpstreamError(err error) *StandardError {
	return newError(ErrCodeUpstreamError, "Language service error", true, err)
}

// NewParseFailureError reports extractor output that could not be decoded.
func NewParseFailureError(err error) *StandardError {
	return newError(ErrCodeParseFailure, "Extractor output could not be parsed", false, err)
}

// NewStoreUnavailableError reports an unusable catalog connection.
func NewStoreUnavailableError(err error) *StandardError {
	return newError(ErrCodeStoreUnavailable, "Catalog store unavailable", true, err)
}

// NewStoreError reports any other catalog execution fault.
func NewStoreError(err error) *StandardError {
	return newError(ErrCodeStoreError, "Catalog query failed", true, err)
}

// NewRouteNotFoundError reports an unmatched route.
func NewRouteNotFoundError(path string) *StandardError {
	e := newError(ErrCodeRouteNotFound, "route not found", false, nil)
	e.Details = path
	return e
}

// NewMethodNotAllowedError reports a known route hit with the wrong verb.
func NewMethodNotAllowedError(method string) *StandardError {
	e := newError(ErrCodeMethodNotAllowed, "method not allowed", false, nil)
	e.Details = method
	return e
}

// NewInternalError wraps anything that escaped the taxonomy.
func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", false, err)
}

// HTTPStatus maps an error code to the status written to the caller.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeRouteNotFound:
		return http.StatusNotFound
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// IsAbsorbed reports whether a failure of this kind is recovered inside the
// extraction stage instead of failing the request.
func IsAbsorbed(code ErrorCode) bool {
	switch code {
	case ErrCodeUpstreamUnavailable, ErrCodeUpstreamError, ErrCodeParseFailure:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns a coarse category used as a log and metric label.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "UPSTREAM"), code == ErrCodeParseFailure:
		return "EXTRACTION"
	case strings.HasPrefix(codeStr, "STORE"):
		return "STORE"
	case code == ErrCodeValidation:
		return "VALIDATION"
	case code == ErrCodeRouteNotFound, code == ErrCodeMethodNotAllowed:
		return "ROUTING"
	default:
		return "OTHER"
	}
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}
