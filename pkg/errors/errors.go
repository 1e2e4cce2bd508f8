// Package errors provides the unified error type and factory functions used by
// every layer of the SIMPOL estimator.  The domain core (SMILES parsing, group
// matching, the property model) and the outer layers (CLI, HTTP API, stream
// worker) all report failures as *AppError so that CLI exit paths, HTTP
// responses, log lines and metric labels classify errors the same way.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack returns a formatted call-stack string starting two frames above
// the caller (skipping captureStack itself and New/Wrap).
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// AppError
// ─────────────────────────────────────────────────────────────────────────────

// AppError is the single structured error type of the estimator.  It supports
// Go 1.13 wrapping so errors.Is / errors.As / errors.Unwrap traverse it.
//
// Usage:
//
//	return errors.New(errors.CodeMalformedSMILES, "unbalanced parentheses").
//	           WithDetail("smiles=C(")
//	return errors.Wrap(err, errors.CodeCacheError, "cache lookup failed")
type AppError struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description.
	Message string

	// Detail carries supplementary context such as the offending input or
	// the position in a SMILES string.
	Detail string

	// Cause is the underlying error, if any.
	Cause error

	// Stack is the call stack captured at creation.  It is never part of
	// Error() output.
	Stack string
}

// Error implements the error interface.
// Format: "[<code>] <message>: <detail>"; the detail segment is omitted when empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// ─────────────────────────────────────────────────────────────────────────────
// Fluent builder methods
// ─────────────────────────────────────────────────────────────────────────────

// WithDetail returns a shallow copy of the receiver with Detail set.
// It is safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithDetailf is WithDetail with fmt.Sprintf formatting.
func (e *AppError) WithDetailf(format string, args ...interface{}) *AppError {
	return e.WithDetail(fmt.Sprintf(format, args...))
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// ─────────────────────────────────────────────────────────────────────────────
// Primary factory functions
// ─────────────────────────────────────────────────────────────────────────────

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Newf is New with fmt.Sprintf formatting of the message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError that wraps err.  If err is nil, Wrap returns nil
// so it can be used inline.  When err already carries an *AppError and code is
// CodeUnknown the original code is preserved.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Error-chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any error in err's chain is an *AppError with code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsMalformedSMILES reports whether err is a SMILES syntax failure.
func IsMalformedSMILES(err error) bool {
	return IsCode(err, CodeMalformedSMILES)
}

// IsUnknownGroup reports whether err refers to a group id outside the catalogue.
func IsUnknownGroup(err error) bool {
	return IsCode(err, CodeUnknownGroup)
}

// IsInvalidTemperature reports whether err is a rejected temperature.
func IsInvalidTemperature(err error) bool {
	return IsCode(err, CodeInvalidTemperature)
}

// GetCode extracts the ErrorCode from the first *AppError in err's chain.
// CodeOK is returned for nil and CodeUnknown when no *AppError is present.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// ─────────────────────────────────────────────────────────────────────────────
// Convenience factories
// ─────────────────────────────────────────────────────────────────────────────

// MalformedSMILES constructs a CodeMalformedSMILES error.  pos is the
// zero-based byte offset of the failure, or -1 when it is not positional.
func MalformedSMILES(smiles string, pos int, reason string) *AppError {
	ae := &AppError{
		Code:    CodeMalformedSMILES,
		Message: reason,
		Stack:   captureStack(1),
	}
	if pos >= 0 {
		ae.Detail = fmt.Sprintf("smiles=%q pos=%d", smiles, pos)
	} else {
		ae.Detail = fmt.Sprintf("smiles=%q", smiles)
	}
	return ae
}

// UnknownGroup constructs a CodeUnknownGroup error for id.
func UnknownGroup(id int) *AppError {
	return &AppError{
		Code:    CodeUnknownGroup,
		Message: "unknown group id",
		Detail:  fmt.Sprintf("id=%d", id),
		Stack:   captureStack(1),
	}
}

// InvalidTemperature constructs a CodeInvalidTemperature error for t kelvin.
func InvalidTemperature(t float64) *AppError {
	return &AppError{
		Code:    CodeInvalidTemperature,
		Message: "temperature must be a positive finite value in kelvin",
		Detail:  fmt.Sprintf("T=%v", t),
		Stack:   captureStack(1),
	}
}

// InvalidParam constructs a CodeInvalidParam AppError.
func InvalidParam(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidParam,
		Message: message,
		Stack:   captureStack(1),
	}
}

// NotFound constructs a CodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Internal constructs a CodeInternal AppError.
func Internal(message string) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Stack:   captureStack(1),
	}
}

//Personal.AI order the ending
