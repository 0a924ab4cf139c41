// Package errors defines the coded errors craneplan returns from parsing,
// planning and verification.
//
// Every failure a caller may want to branch on carries a Code. The CLI
// prints the message; the API maps the code to an HTTP status and returns
// both.
//
//   - INVALID_*: the input is malformed (manifest, request, config, plan)
//   - INFEASIBLE, EXHAUSTED, CANCELED: the search ended without a plan
//   - NOT_FOUND, FILE_NOT_FOUND: a referenced resource is missing
//   - INTERNAL_ERROR, UNSUPPORTED: bugs and unsupported operations
//
// A branch pruned during search is never an error. Only an infeasible root
// or a search that runs out of both frontier and reserve surfaces here.
//
//	err := errors.New(errors.ErrCodeInvalidManifest, "container floats at [%02d,%02d]", row, col)
//	if errors.Is(err, errors.ErrCodeInvalidManifest) {
//	    ...
//	}
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Code is a machine-readable error class.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"
	ErrCodeInvalidRequest  Code = "INVALID_REQUEST"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidPlan     Code = "INVALID_PLAN"

	ErrCodeInfeasible Code = "INFEASIBLE"
	ErrCodeExhausted  Code = "EXHAUSTED"
	ErrCodeCanceled   Code = "CANCELED"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Canceled wraps a context error as CANCELED. It returns nil when err is
// neither context.Canceled nor context.DeadlineExceeded.
func Canceled(err error, format string, args ...any) error {
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return Wrap(ErrCodeCanceled, err, format, args...)
}

// Is reports whether any *Error in err's chain carries code. Wrapping a
// manifest error into a plan error keeps both codes visible.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode returns the outermost code in err's chain, or "" for uncoded
// errors.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage renders err without code prefixes, joining the messages of
// nested errors with ": ".
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + UserMessage(e.Cause)
}
