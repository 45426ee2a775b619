// Package errors provides the unified error type and factory functions for
// claimtrack. Every layer of the application (domain, application,
// infrastructure, interfaces) uses AppError as the single carrier for structured
// error information, enabling consistent HTTP responses, logging, and metrics.
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
		// Trim standard-library noise to keep traces readable.
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

// AppError is the single structured error type used throughout claimtrack.
// It supports errors.Is / errors.As / errors.Unwrap across layers.
//
// Usage:
//
//	return errors.New(errors.ErrCodeClaimNotFound, "claim 000MC001 not found")
//	return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load claim")
//	return errors.InvalidRecord("paper-and-offline", "proceedOfflineReason=APPLICATION_BY_CLAIMANT")
type AppError struct {
	// Code is the typed error code that identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description of the error.
	Message string

	// Detail carries supplementary context (entity ids, offending field values).
	Detail string

	// Cause is the underlying error that triggered this AppError.
	Cause error

	// Stack is the call stack captured at creation. It is not part of Error().
	Stack string
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>"; the detail segment is omitted when empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

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

// Wrap constructs an AppError that wraps an existing error.
// If err is nil, Wrap returns nil so it can be used inline.
//
// When err is already an *AppError and code is CodeUnknown the original code is
// preserved.
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

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.
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

// As and Is forward to the standard library so callers need only this package.
func As(err error, target interface{}) bool { return errors.As(err, target) }

func Is(err, target error) bool { return errors.Is(err, target) }

// IsNotFound reports whether err's chain carries CodeNotFound or ErrCodeClaimNotFound.
func IsNotFound(err error) bool {
	return IsCode(err, ErrCodeNotFound) || IsCode(err, ErrCodeClaimNotFound)
}

// IsInvalidRecord reports whether err's chain carries an InvalidRecordError.
func IsInvalidRecord(err error) bool {
	return IsCode(err, ErrCodeInvalidRecord)
}

// IsUnmappedNarrative reports whether err's chain carries an UnmappedNarrativeError.
func IsUnmappedNarrative(err error) bool {
	return IsCode(err, ErrCodeUnmappedNarrative)
}

// GetCode extracts the ErrorCode from the first *AppError found in err's chain.
// If no *AppError is present, CodeUnknown is returned; a nil error yields CodeOK.
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

// NotFound constructs a CodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, Stack: captureStack(1)}
}

// InvalidParam constructs a CodeInvalidParam AppError.
func InvalidParam(message string) *AppError {
	return &AppError{Code: CodeInvalidParam, Message: message, Stack: captureStack(1)}
}

// Internal constructs a CodeInternal AppError.
func Internal(message string) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Stack: captureStack(1)}
}

// Unavailable constructs an ErrCodeServiceUnavailable AppError.
func Unavailable(message string) *AppError {
	return &AppError{Code: ErrCodeServiceUnavailable, Message: message, Stack: captureStack(1)}
}

// ClaimNotFound constructs an ErrCodeClaimNotFound AppError for an external id.
func ClaimNotFound(externalID string) *AppError {
	return &AppError{
		Code:    ErrCodeClaimNotFound,
		Message: "claim not found",
		Detail:  "external_id=" + externalID,
		Stack:   captureStack(1),
	}
}

// InvalidRecord constructs an InvalidRecordError. rule names the broken record
// invariant; detail lists the offending values.
func InvalidRecord(rule, detail string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidRecord,
		Message: "invalid claim record: " + rule,
		Detail:  detail,
		Stack:   captureStack(1),
	}
}

// UnmappedNarrative constructs an UnmappedNarrativeError for a lookup that
// found no narrative table row.
func UnmappedNarrative(lookup string) *AppError {
	return &AppError{
		Code:    ErrCodeUnmappedNarrative,
		Message: "no narrative mapped",
		Detail:  lookup,
		Stack:   captureStack(1),
	}
}
