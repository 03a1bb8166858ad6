package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by the client and the portal.
const (
	CodeDecodeError          = "DECODE_ERROR"
	CodeAuthorizationFailure = "AUTHORIZATION_FAILURE"
	CodeConnectivityFailure  = "CONNECTIVITY_FAILURE"
	CodeValidationFailed     = "VALIDATION_FAILED"
	CodeUpstreamFailure      = "UPSTREAM_FAILURE"
	CodeNotFound             = "NOT_FOUND"
	CodeInternalError        = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewAuthorizationFailure reports that the backend rejected the session.
func NewAuthorizationFailure(message string) error {
	return NewDomainError(CodeAuthorizationFailure, message, http.StatusUnauthorized, nil)
}

// NewConnectivityFailure reports that a request never reached the backend.
func NewConnectivityFailure(target string, err error) error {
	return &DomainError{
		Code:       CodeConnectivityFailure,
		Message:    "backend unreachable",
		HTTPStatus: http.StatusServiceUnavailable,
		Details:    map[string]any{"target": target},
		Err:        err,
	}
}

// NewUpstreamFailure wraps a non-validation failure status returned by the backend.
func NewUpstreamFailure(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	return &DomainError{
		Code:       CodeUpstreamFailure,
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"status": status},
	}
}

// NewDecodeError marks a credential whose claims cannot be read.
func NewDecodeError(reason string, err error) error {
	return &DomainError{
		Code:       CodeDecodeError,
		Message:    reason,
		HTTPStatus: http.StatusUnauthorized,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func hasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

func IsAuthorizationFailure(err error) bool { return hasCode(err, CodeAuthorizationFailure) }

func IsConnectivityFailure(err error) bool { return hasCode(err, CodeConnectivityFailure) }

func IsValidationFailure(err error) bool { return hasCode(err, CodeValidationFailed) }

func IsDecodeError(err error) bool { return hasCode(err, CodeDecodeError) }
