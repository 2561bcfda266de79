// Package errors provides error code definitions shared across the store,
// sync adapter and API surface.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode is a stable machine-readable error code.
type ErrorCode string

const (
	// General errors
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
	ErrInvalid    ErrorCode = "INVALID_INPUT"
	ErrNotFound   ErrorCode = "NOT_FOUND"
	ErrValidation ErrorCode = "VALIDATION_ERROR"

	// Local storage errors
	ErrStorage      ErrorCode = "STORAGE_ERROR"
	ErrStorageRead  ErrorCode = "STORAGE_READ_FAILED"
	ErrStorageWrite ErrorCode = "STORAGE_WRITE_FAILED"
	ErrKeyNotFound  ErrorCode = "KEY_NOT_FOUND"

	// Document errors
	ErrMemoryNotFound ErrorCode = "MEMORY_NOT_FOUND"
	ErrPhotoNotFound  ErrorCode = "PHOTO_NOT_FOUND"
	ErrImportInvalid  ErrorCode = "IMPORT_INVALID"
	ErrMigration      ErrorCode = "MIGRATION_FAILED"

	// Sync errors
	ErrSyncUnavailable ErrorCode = "SYNC_UNAVAILABLE"
	ErrSyncFailed      ErrorCode = "SYNC_FAILED"
	ErrSyncTimeout     ErrorCode = "SYNC_TIMEOUT"
	ErrRemoteNotFound  ErrorCode = "REMOTE_DOCUMENT_NOT_FOUND"

	// Media errors
	ErrMediaDecode ErrorCode = "MEDIA_DECODE_FAILED"
)

// AppError represents an application error with code and message.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an error code.
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Is checks if an error carries a specific code, unwrapping as needed.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode returns the error code of err, or ErrInternal for plain errors.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}
