package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable error code that handlers translate into an HTTP status.
type Code string

const (
	CodeInternal           Code = "internal"
	CodeInvalid            Code = "invalid"
	CodeDuplicateEmail     Code = "duplicate_email"
	CodeInvalidCredentials Code = "invalid_credentials"
	CodeNotFound           Code = "not_found"
	CodeNotPublished       Code = "not_published"
	CodeNotAuthorized      Code = "not_authorized"
	CodeMissingToken       Code = "missing_token"
	CodeTokenExpired       Code = "token_expired"
	CodeTokenMalformed     Code = "token_malformed"
)

// AppError carries a code, a user-facing message and an optional cause.
type AppError struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *AppError) Unwrap() error { return e.Err }

// New creates a new AppError with code and message.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an existing error with code and message.
func Wrap(err error, code Code, message string) *AppError {
	if err == nil {
		return New(code, message)
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// Internal wraps err as a server error.
func Internal(err error) *AppError {
	return Wrap(err, CodeInternal, "Server error")
}

// CodeOf returns the code of the first AppError in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

// IsCode checks if an error has the provided code (through unwrapping).
func IsCode(err error, code Code) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// HTTPStatus maps a code to the status the API answers with.
// NotAuthorized is an ownership failure but is answered with 401.
func HTTPStatus(code Code) int {
	switch code {
	case CodeInvalid, CodeDuplicateEmail, CodeInvalidCredentials:
		return http.StatusBadRequest
	case CodeNotFound, CodeNotPublished:
		return http.StatusNotFound
	case CodeNotAuthorized, CodeMissingToken, CodeTokenExpired, CodeTokenMalformed:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
