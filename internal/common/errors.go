package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnreadableInput = errors.New("unreadable input")
	ErrUnknownVariant  = errors.New("unknown report variant")
	ErrOutput          = errors.New("output error")
)

// Error codes
const (
	CodeConfig  = "CONFIG_ERROR"
	CodeInput   = "INPUT_ERROR"
	CodeVariant = "VARIANT_ERROR"
	CodeOutput  = "OUTPUT_ERROR"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// InputError wraps an unreadable-source failure. errors.Is(err, ErrUnreadableInput) holds.
func InputError(path string, cause error) error {
	return NewAppError(CodeInput, fmt.Sprintf("cannot read %q", path), errors.Join(ErrUnreadableInput, cause))
}

// OutputError wraps a sink failure. errors.Is(err, ErrOutput) holds.
func OutputError(message string, cause error) error {
	return NewAppError(CodeOutput, message, errors.Join(ErrOutput, cause))
}

// CodeOf returns the AppError code in err's chain, or "".
func CodeOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
