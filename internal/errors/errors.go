package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of verification error.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates caller-supplied input is structurally wrong.
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	// ErrCodeConfiguration indicates stored provider configuration is missing a required value.
	ErrCodeConfiguration ErrorCode = "configuration"
	// ErrCodeTokenExchangeFailed indicates the upstream token endpoint was unreachable or unusable.
	ErrCodeTokenExchangeFailed ErrorCode = "token_exchange_failed"
	// ErrCodeInvalidIDToken indicates a malformed ID token or an unresolvable signing key.
	ErrCodeInvalidIDToken ErrorCode = "invalid_id_token"
	// ErrCodeNotFound indicates an unknown or expired resource.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeInvalidState indicates a resource in the wrong lifecycle state for a transition.
	ErrCodeInvalidState ErrorCode = "invalid_state"
	// ErrCodeDecryptionFailed indicates a cipher integrity failure on decrypt.
	ErrCodeDecryptionFailed ErrorCode = "decryption_failed"
	// ErrCodeEncryptionFailed indicates a cipher failure on encrypt or key setup.
	ErrCodeEncryptionFailed ErrorCode = "encryption_failed"
	// ErrCodeConflict indicates a conflict with existing data (e.g., unique constraint violation).
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError represents a structured error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

func newf(code ErrorCode, format string, args ...any) *AppError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &AppError{Code: code, Message: msg}
}

// InvalidArgument creates a new InvalidArgument error.
func InvalidArgument(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidArgument, Message: message}
}

// InvalidArgumentf creates a new InvalidArgument error with formatted message.
func InvalidArgumentf(format string, args ...any) *AppError {
	return newf(ErrCodeInvalidArgument, format, args...)
}

// InvalidArgumentField creates a new InvalidArgument error for a specific field.
func InvalidArgumentField(field, message string) *AppError {
	return &AppError{Code: ErrCodeInvalidArgument, Message: message, Field: field}
}

// Configuration creates a new Configuration error.
func Configuration(message string) *AppError {
	return &AppError{Code: ErrCodeConfiguration, Message: message}
}

// Configurationf creates a new Configuration error with formatted message.
func Configurationf(format string, args ...any) *AppError {
	return newf(ErrCodeConfiguration, format, args...)
}

// TokenExchangeFailed creates a new TokenExchangeFailed error.
func TokenExchangeFailed(message string) *AppError {
	return &AppError{Code: ErrCodeTokenExchangeFailed, Message: message}
}

// InvalidIDToken creates a new InvalidIDToken error.
func InvalidIDToken(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidIDToken, Message: message}
}

// InvalidIDTokenf creates a new InvalidIDToken error with formatted message.
func InvalidIDTokenf(format string, args ...any) *AppError {
	return newf(ErrCodeInvalidIDToken, format, args...)
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return newf(ErrCodeNotFound, format, args...)
}

// InvalidState creates a new InvalidState error.
func InvalidState(message string) *AppError {
	return &AppError{Code: ErrCodeInvalidState, Message: message}
}

// InvalidStatef creates a new InvalidState error with formatted message.
func InvalidStatef(format string, args ...any) *AppError {
	return newf(ErrCodeInvalidState, format, args...)
}

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsInvalidArgument checks if an error is an InvalidArgument error.
func IsInvalidArgument(err error) bool {
	return isCode(err, ErrCodeInvalidArgument)
}

// IsConfiguration checks if an error is a Configuration error.
func IsConfiguration(err error) bool {
	return isCode(err, ErrCodeConfiguration)
}

// IsTokenExchangeFailed checks if an error is a TokenExchangeFailed error.
func IsTokenExchangeFailed(err error) bool {
	return isCode(err, ErrCodeTokenExchangeFailed)
}

// IsInvalidIDToken checks if an error is an InvalidIDToken error.
func IsInvalidIDToken(err error) bool {
	return isCode(err, ErrCodeInvalidIDToken)
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// IsInvalidState checks if an error is an InvalidState error.
func IsInvalidState(err error) bool {
	return isCode(err, ErrCodeInvalidState)
}

// IsDecryptionFailed checks if an error is a DecryptionFailed error.
func IsDecryptionFailed(err error) bool {
	return isCode(err, ErrCodeDecryptionFailed)
}

// IsEncryptionFailed checks if an error is an EncryptionFailed error.
func IsEncryptionFailed(err error) bool {
	return isCode(err, ErrCodeEncryptionFailed)
}

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool {
	return isCode(err, ErrCodeConflict)
}

// IsTimeout checks if an error is a Timeout error.
func IsTimeout(err error) bool {
	return isCode(err, ErrCodeTimeout)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
