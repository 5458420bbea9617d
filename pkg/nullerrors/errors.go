// Package nullerrors defines the structured error taxonomy returned by every
// NullOut tool handler. Every destructive or attribution code path fails
// closed into one of these codes; nothing escapes to the RPC transport layer
// except JSON-RPC's own protocol-level errors (parse error, method not
// found).
package nullerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code identifies one of the taxonomy entries from the specification.
type Code string

// The complete error taxonomy. See spec §7.
const (
	ENotFound              Code = "E_NOT_FOUND"
	ERootNotAllowed        Code = "E_ROOT_NOT_ALLOWED"
	ETraversalRejected     Code = "E_TRAVERSAL_REJECTED"
	EReparsePolicyBlocked  Code = "E_REPARSE_POLICY_BLOCKED"
	EConfirmTokenInvalid   Code = "E_CONFIRM_TOKEN_INVALID"
	EConfirmTokenExpired   Code = "E_CONFIRM_TOKEN_EXPIRED"
	EChangedSinceScan      Code = "E_CHANGED_SINCE_SCAN"
	EDirNotEmpty           Code = "E_DIR_NOT_EMPTY"
	EInUse                 Code = "E_IN_USE"
	EAccessDenied          Code = "E_ACCESS_DENIED"
	EIOError               Code = "E_IO_ERROR"
	EInvalidRequest        Code = "E_INVALID_REQUEST"
	EInternal              Code = "E_INTERNAL"
)

// NextStep points the caller at a follow-up tool invocation, e.g. directing a
// failed delete (E_IN_USE) toward who_is_using.
type NextStep struct {
	Action string         `json:"action"`
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args"`
}

// Error is the concrete type behind every structured failure a handler can
// return. It always carries a Code so the RPC layer can build the
// {ok:false, error:{...}} envelope without guessing.
type Error struct {
	code      Code
	message   string
	details   map[string]any
	nextSteps []NextStep
	cause     error
}

// New constructs an Error with no underlying cause.
func New(code Code, message string, details map[string]any) *Error {
	return &Error{code: code, message: message, details: details}
}

// Wrap constructs an Error that records an underlying cause, following the
// same errors.Wrap idiom used throughout the rest of this codebase.
func Wrap(cause error, code Code, message string, details map[string]any) *Error {
	return &Error{code: code, message: message, details: details, cause: errors.WithStack(cause)}
}

// WithNextSteps attaches next-step pointers (e.g. "call who_is_using") and
// returns the same error for chaining at the call site.
func (e *Error) WithNextSteps(steps ...NextStep) *Error {
	e.nextSteps = steps
	return e
}

// Code returns the taxonomy entry for this error.
func (e *Error) Code() Code {
	return e.code
}

// Details returns the structured detail map, never nil.
func (e *Error) Details() map[string]any {
	if e.details == nil {
		return map[string]any{}
	}
	return e.details
}

// NextSteps returns any next-step pointers, never nil.
func (e *Error) NextSteps() []NextStep {
	if e.nextSteps == nil {
		return []NextStep{}
	}
	return e.nextSteps
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// Coded is implemented by anything that can report a taxonomy Code, letting
// the RPC layer type-switch without depending on the concrete Error type.
type Coded interface {
	Code() Code
}

// CodeOf extracts the Code from err if it (or something it wraps) implements
// Coded, defaulting to E_INTERNAL for anything that doesn't — mirroring the
// Python server's blanket "except Exception -> E_INTERNAL" handler.
func CodeOf(err error) Code {
	var coded Coded
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return EInternal
}
