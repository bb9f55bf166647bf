// Package errors defines branchtint's coded error type. Codes are stable
// and safe to branch on in callers and tests.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a failure class
type ErrorCode string

const (
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"

	ErrRuleCompile ErrorCode = "RULE_COMPILE"

	// startup
	ErrMissingDependency ErrorCode = "MISSING_DEPENDENCY"
	ErrNoRepository      ErrorCode = "NO_REPOSITORY"

	// storage
	ErrPersistence   ErrorCode = "PERSISTENCE"
	ErrSettingsRead  ErrorCode = "SETTINGS_READ"
	ErrSettingsWrite ErrorCode = "SETTINGS_WRITE"
	ErrSettingsShape ErrorCode = "SETTINGS_SHAPE"
)

// Severity tells the CLI how loudly to report an error
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// TintError carries a stable code, a human message and optional context
// for logs. It matches another TintError under errors.Is when the codes
// are equal.
type TintError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

func build(code ErrorCode, msg string, cause error) *TintError {
	return &TintError{Code: code, Message: msg, Details: map[string]interface{}{}, Wrapped: cause}
}

func (e *TintError) Error() string {
	s := "[" + string(e.Code) + "] " + e.Message
	if e.Wrapped != nil {
		s += ": " + e.Wrapped.Error()
	}
	return s
}

func (e *TintError) Unwrap() error { return e.Wrapped }

func (e *TintError) Is(target error) bool {
	t, ok := target.(*TintError)
	return ok && t.Code == e.Code
}

// WithDetail records a key/value for logging and returns e
func (e *TintError) WithDetail(key string, value interface{}) *TintError {
	if e.Details == nil {
		e.Details = map[string]interface{}{}
	}
	e.Details[key] = value
	return e
}

func New(code ErrorCode, message string) *TintError { return build(code, message, nil) }

func Newf(code ErrorCode, format string, args ...interface{}) *TintError {
	return build(code, fmt.Sprintf(format, args...), nil)
}

// Wrap attaches a code and message to err. It returns nil for a nil err;
// callers that return it as error must check err first.
func Wrap(err error, code ErrorCode, message string) *TintError {
	if err == nil {
		return nil
	}
	return build(code, message, err)
}

func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *TintError {
	if err == nil {
		return nil
	}
	return build(code, fmt.Sprintf(format, args...), err)
}

// find returns the outermost TintError in err's chain
func find(err error) (*TintError, bool) {
	var te *TintError
	ok := errors.As(err, &te)
	return te, ok
}

// IsErrorCode reports whether the outermost TintError in err's chain has code
func IsErrorCode(err error, code ErrorCode) bool {
	te, ok := find(err)
	return ok && te.Code == code
}

// GetErrorCode returns the outermost code, or ErrUnknown
func GetErrorCode(err error) ErrorCode {
	if te, ok := find(err); ok {
		return te.Code
	}
	return ErrUnknown
}

func GetErrorDetails(err error) map[string]interface{} {
	if te, ok := find(err); ok {
		return te.Details
	}
	return nil
}

// SeverityOf classifies an error for the CLI. A missing repository only
// means there is nothing to tint.
func SeverityOf(err error) Severity {
	if GetErrorCode(err) == ErrNoRepository {
		return SeverityWarning
	}
	return SeverityError
}
