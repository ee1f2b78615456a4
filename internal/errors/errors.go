package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeInvalidCredential indicates a login whose email and secret matched no account.
	ErrCodeInvalidCredential ErrorCode = "invalid_credential"
	// ErrCodeCorruptSession indicates a persisted session record that failed to parse or validate.
	ErrCodeCorruptSession ErrorCode = "corrupt_session"
	// ErrCodeUnauthorized indicates a protected view was requested without an identity.
	ErrCodeUnauthorized ErrorCode = "unauthorized"
	// ErrCodeForbidden indicates the current identity's role is not allowed by the view's policy.
	ErrCodeForbidden ErrorCode = "forbidden"

	ErrCodeNotFound   ErrorCode = "not_found"
	ErrCodeConflict   ErrorCode = "conflict" // unique violations from Postgres
	ErrCodeValidation ErrorCode = "validation"
	ErrCodeInternal   ErrorCode = "internal"
	ErrCodeTimeout    ErrorCode = "timeout"
	ErrCodeCanceled   ErrorCode = "canceled"
)

// User-facing messages shared by the auth flow.
const (
	MsgInvalidCredential = "Invalid email or password"
	MsgUnauthorized      = "You must be logged in to access this page"
	MsgForbidden         = "You do not have permission to access this page"
)

// AppError is a coded error. Message is safe to show to users; Cause is not.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Field   string // set on validation errors
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

// Is matches another *AppError by code so sentinel values work with errors.Is.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return other.Cause == nil && other.Code == e.Code && (other.Message == "" || other.Message == e.Message)
}

// Sentinels for the auth taxonomy. Compare with errors.Is.
var (
	ErrInvalidCredential = &AppError{Code: ErrCodeInvalidCredential, Message: MsgInvalidCredential}
	ErrUnauthorized      = &AppError{Code: ErrCodeUnauthorized, Message: MsgUnauthorized}
	ErrForbidden         = &AppError{Code: ErrCodeForbidden, Message: MsgForbidden}
)

// CorruptSession wraps a decode failure of a persisted session record.
func CorruptSession(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeCorruptSession,
		Message: "stored session is unreadable",
		Cause:   cause,
	}
}

// New returns an AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func NotFound(message string) *AppError   { return New(ErrCodeNotFound, message) }
func Validation(message string) *AppError { return New(ErrCodeValidation, message) }
func Internal(message string) *AppError   { return New(ErrCodeInternal, message) }

func NotFoundf(format string, args ...any) *AppError {
	return NotFound(fmt.Sprintf(format, args...))
}

// ValidationField attaches the offending form field to a validation error.
func ValidationField(field, message string) *AppError {
	e := Validation(message)
	e.Field = field
	return e
}

// Wrap keeps err as the cause. A nil err yields nil.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// HasCode reports whether any AppError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code && code != ""
}

func IsInvalidCredential(err error) bool { return HasCode(err, ErrCodeInvalidCredential) }
func IsCorruptSession(err error) bool    { return HasCode(err, ErrCodeCorruptSession) }
func IsUnauthorized(err error) bool      { return HasCode(err, ErrCodeUnauthorized) }
func IsForbidden(err error) bool         { return HasCode(err, ErrCodeForbidden) }
func IsNotFound(err error) bool          { return HasCode(err, ErrCodeNotFound) }
func IsValidation(err error) bool        { return HasCode(err, ErrCodeValidation) }
func IsTimeout(err error) bool           { return HasCode(err, ErrCodeTimeout) }

// GetCode returns the code of the first AppError in err's chain, or "".
func GetCode(err error) ErrorCode {
	if appErr, ok := asAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// GetField returns the validation field of the first AppError in err's chain, or "".
func GetField(err error) string {
	if appErr, ok := asAppError(err); ok {
		return appErr.Field
	}
	return ""
}

// UserMessage returns the AppError message without its cause, or fallback for other errors.
func UserMessage(err error, fallback string) string {
	if appErr, ok := asAppError(err); ok && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

func asAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}
