package util

import (
	"errors"
	"fmt"
	"net/http"
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
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

// NewConnectionError wraps a transport-level failure. These are tolerated by
// the polling loop and surfaced as warnings elsewhere.
func NewConnectionError(err error) error {
	return &DomainError{
		Code:       "CONNECTION_FAILED",
		Message:    "could not reach helpdesk backend",
		HTTPStatus: 0,
		Err:        err,
	}
}

// NewDecodeError wraps an unexpected response body.
func NewDecodeError(err error) error {
	return &DomainError{
		Code:       "DECODE_FAILED",
		Message:    "unexpected response from backend",
		HTTPStatus: 0,
		Err:        err,
	}
}

// NewAPIError carries an error message the backend returned in its envelope.
func NewAPIError(message string, status int) error {
	if message == "" {
		message = http.StatusText(status)
	}
	return NewDomainError("API_ERROR", message, status, nil)
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
		Code:       "INTERNAL_ERROR",
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
