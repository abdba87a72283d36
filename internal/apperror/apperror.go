// Package apperror defines the application's error taxonomy.
//
// Services return these errors; the HTTP layer maps them to status codes in
// one place (handler/response.go). Everything here is an expected,
// user-facing outcome; only errors that match none of these sentinels are
// treated as internal faults.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrPrecondition    = errors.New("precondition failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUploadRejected  = errors.New("upload rejected")
)

type AppError struct {
	Err     error  // sentinel category
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, key string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, key),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, key string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s already exists: %s", resource, key),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// PreconditionFailed reports a rejected publication transition, e.g.
// publishing an article with no image. The entity is left unchanged.
func PreconditionFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrPrecondition,
		Message: message,
		Field:   field,
	}
}

// Unauthenticated reports a missing or invalid caller identity.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthenticated,
		Message: message,
	}
}

// UploadRejected reports a file upload refused by policy (extension not in
// the allow-list, or over the size ceiling).
func UploadRejected(message string) *AppError {
	return &AppError{
		Err:     ErrUploadRejected,
		Message: message,
	}
}
