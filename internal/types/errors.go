package types

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Error code constants used by the HTTP layer.
// Handlers MUST use these constants instead of hardcoded strings.
const (
	// Validation (400)
	ErrCodeValidationMissingField ErrorCode = "validation_missing_required_field"
	ErrCodeValidationInvalidJSON  ErrorCode = "validation_invalid_json"
	ErrCodeValidationQueryLength  ErrorCode = "validation_query_too_long"
	ErrCodeValidationInvalidValue ErrorCode = "validation_invalid_value"

	// Limits (429)
	ErrCodeRateLimit ErrorCode = "rate_limit_exceeded"

	// Internal/Upstream (500/502)
	ErrCodeInternalUnexpected  ErrorCode = "internal_unexpected_error"
	ErrCodeUpstreamUnavailable ErrorCode = "upstream_unavailable"
	ErrCodeUpstreamRateLimited ErrorCode = "upstream_rate_limited"
)

// HTTPStatus maps an ErrorCode to its corresponding HTTP status code.
// Returns 500 for unrecognized error codes.
func (c ErrorCode) HTTPStatus() int {
	s := string(c)
	switch {
	case strings.HasPrefix(s, "validation_"):
		return http.StatusBadRequest
	case c == ErrCodeRateLimit:
		return http.StatusTooManyRequests
	case strings.HasPrefix(s, "upstream_"):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the standard application error type used by the HTTP chassis.
// It carries a stable code for clients, a safe message, and an optional
// wrapped cause that is never exposed over the wire.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code corresponding to this error's code.
func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// NewAppError creates a new AppError with the given code, message, and optional
// underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewAppErrorWithDetails creates a new AppError with structured details.
func NewAppErrorWithDetails(code ErrorCode, message string, err error, details map[string]any) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: details,
	}
}

// FailureKind classifies why a weather provider lookup did not succeed.
type FailureKind string

const (
	FailureCityNotFound    FailureKind = "city_not_found"
	FailureAPIKeyInvalid   FailureKind = "api_key_invalid"
	FailureAPIError        FailureKind = "api_error"
	FailureTimeout         FailureKind = "timeout"
	FailureConnectionError FailureKind = "connection_error"
	FailureUnknown         FailureKind = "unknown"

	// FailureExtraction is produced by the query pipeline, not the provider,
	// when no city could be derived from the query text.
	FailureExtraction FailureKind = "extraction_failure"
)

// ProviderError is the failure variant of a provider result. Message is a
// complete, user-facing sentence and is rendered verbatim.
type ProviderError struct {
	Kind    FailureKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying transport or decode error, if any.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a ProviderError of the given kind.
func NewProviderError(kind FailureKind, message string, err error) *ProviderError {
	return &ProviderError{Kind: kind, Message: message, Err: err}
}

// ErrCityNotUnderstood marks a query from which no city could be extracted.
var ErrCityNotUnderstood = errors.New("no city found in query")

// KindOf reports the FailureKind carried by err. Errors that are not a
// *ProviderError are classified as FailureUnknown; nil yields "".
func KindOf(err error) FailureKind {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrCityNotUnderstood) {
		return FailureExtraction
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return FailureUnknown
}
