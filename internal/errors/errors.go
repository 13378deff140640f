package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Clarity error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrInvalidFormat      ErrorCode = "INVALID_FORMAT"      // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrFileNotFound       ErrorCode = "FILE_NOT_FOUND"      // 404
	ErrCategoryNotFound   ErrorCode = "CATEGORY_NOT_FOUND"  // 404
	ErrNoBackupsFound     ErrorCode = "NO_BACKUPS_FOUND"    // 404
	ErrConflict           ErrorCode = "CONFLICT"            // 409
	ErrValidationFailed   ErrorCode = "VALIDATION_FAILED"   // 422
	ErrBackupCorrupted    ErrorCode = "BACKUP_CORRUPTED"    // 422
	ErrCancelled          ErrorCode = "CANCELLED"           // 499
	ErrInternal           ErrorCode = "INTERNAL"            // 500
	ErrProviderError      ErrorCode = "PROVIDER_ERROR"      // 502
	ErrMalformedResponse  ErrorCode = "MALFORMED_RESPONSE"  // 502
	ErrStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE" // 503
	ErrConnectionFailed   ErrorCode = "CONNECTION_FAILED"   // 503
)

// ClarityError represents a structured error with code, status, and details.
type ClarityError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *ClarityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ClarityError) Unwrap() error {
	return e.cause
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *ClarityError {
	return &ClarityError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidFormat creates a 400 error for a malformed bundle or import file.
func NewInvalidFormat(msg string) *ClarityError {
	return &ClarityError{
		Code:    ErrInvalidFormat,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing record.
func NewNotFound(identifier string) *ClarityError {
	return &ClarityError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing import file.
func NewFileNotFound(path string) *ClarityError {
	return &ClarityError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewCategoryNotFound creates a 404 error when a category has no stored data.
func NewCategoryNotFound(category string) *ClarityError {
	return &ClarityError{
		Code:    ErrCategoryNotFound,
		Status:  404,
		Message: fmt.Sprintf("no %s data found", category),
		Details: map[string]any{"category": category},
	}
}

// NewNoBackupsFound creates a 404 error when no auto-backup exists.
func NewNoBackupsFound() *ClarityError {
	return &ClarityError{
		Code:    ErrNoBackupsFound,
		Status:  404,
		Message: "no auto-backups found",
	}
}

// NewConflict creates a 409 error for a stale compare-and-swap.
func NewConflict(msg string) *ClarityError {
	return &ClarityError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewValidationFailed creates a 422 error for a category that failed its schema check.
func NewValidationFailed(category, reason string) *ClarityError {
	return &ClarityError{
		Code:    ErrValidationFailed,
		Status:  422,
		Message: reason,
		Details: map[string]any{"category": category},
	}
}

// NewBackupCorrupted creates a 422 error when an auto-backup cannot be parsed.
func NewBackupCorrupted(key string, err error) *ClarityError {
	return &ClarityError{
		Code:    ErrBackupCorrupted,
		Status:  422,
		Message: "backup data corrupted",
		Details: map[string]any{"key": key},
		cause:   err,
	}
}

// NewCancelled creates a 499 error when an operation is cancelled.
func NewCancelled(op string) *ClarityError {
	return &ClarityError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *ClarityError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &ClarityError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// NewProviderError creates a 502 error when the remote returned an error payload.
func NewProviderError(status int, msg string) *ClarityError {
	return &ClarityError{
		Code:    ErrProviderError,
		Status:  502,
		Message: msg,
		Details: map[string]any{"upstream_status": status},
	}
}

// NewMalformedResponse creates a 502 error for a 2xx response with an unexpected shape.
func NewMalformedResponse(msg string) *ClarityError {
	return &ClarityError{
		Code:    ErrMalformedResponse,
		Status:  502,
		Message: msg,
	}
}

// NewStorageUnavailable creates a 503 error when the underlying store cannot be used.
func NewStorageUnavailable(err error) *ClarityError {
	msg := "storage unavailable"
	if err != nil {
		msg = fmt.Sprintf("storage unavailable: %v", err)
	}
	return &ClarityError{
		Code:    ErrStorageUnavailable,
		Status:  503,
		Message: msg,
		cause:   err,
	}
}

// NewConnectionFailed creates a 503 error when the remote proxy cannot be reached.
func NewConnectionFailed(err error) *ClarityError {
	msg := "connection failed"
	if err != nil {
		msg = err.Error()
	}
	return &ClarityError{
		Code:    ErrConnectionFailed,
		Status:  503,
		Message: msg,
		cause:   err,
	}
}

// Is checks if an error is (or wraps) a ClarityError with the given code.
func Is(err error, code ErrorCode) bool {
	var cErr *ClarityError
	if stderrors.As(err, &cErr) {
		return cErr.Code == code
	}
	return false
}

// CodeOf returns the code of err, or ErrInternal when err is not a ClarityError.
func CodeOf(err error) ErrorCode {
	var cErr *ClarityError
	if stderrors.As(err, &cErr) {
		return cErr.Code
	}
	return ErrInternal
}

// As is errors.As, re-exported so callers need only this package.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
