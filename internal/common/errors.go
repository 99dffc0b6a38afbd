package common

import (
	"errors"
	"net/http"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// AsAppError returns err as an AppError, wrapping unknown errors as internal failures.
func AsAppError(err error) *AppError {
	var target *AppError
	if errors.As(err, &target) {
		return target
	}
	return NewAppError("INTERNAL", "internal error", http.StatusInternalServerError, err)
}

// WriteError renders err using the canonical error envelope.
func WriteError(w http.ResponseWriter, err error) {
	appErr := AsAppError(err)
	JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
}
