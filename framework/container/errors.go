package container

import (
	"errors"
	"fmt"
)

// ── Error codes ───────────────────────────────────────────────────────────────

// ErrorCode classifies container failures so callers can branch on the kind
// of failure without string matching.
type ErrorCode uint8

const (
	// ErrCodeUnknown is the zero value and never produced by the container.
	ErrCodeUnknown ErrorCode = iota

	// ErrCodeBindingNotFound: Make was called for an abstract that has no
	// binding, instance, or alias.
	ErrCodeBindingNotFound

	// ErrCodeFactoryFailed: a registered factory returned an error while
	// building its value.
	ErrCodeFactoryFailed

	// ErrCodeCircularDependency: an abstract was requested while it was
	// already being built further up the resolution chain.
	ErrCodeCircularDependency

	// ErrCodeInvalidTarget: a value handed to Call is not a recognized
	// callable shape (function, receiver/method pair, "abstract@Method").
	ErrCodeInvalidTarget

	// ErrCodeUnintrospectable: the target's parameter list could not be
	// examined.
	ErrCodeUnintrospectable

	// ErrCodeInvocation: the target ran and failed — it returned a non-nil
	// error, panicked, or rejected the assembled arguments.
	ErrCodeInvocation
)

var errorCodeNames = map[ErrorCode]string{
	ErrCodeUnknown:            "UNKNOWN",
	ErrCodeBindingNotFound:    "BINDING_NOT_FOUND",
	ErrCodeFactoryFailed:      "FACTORY_FAILED",
	ErrCodeCircularDependency: "CIRCULAR_DEPENDENCY",
	ErrCodeInvalidTarget:      "INVALID_TARGET",
	ErrCodeUnintrospectable:   "UNINTROSPECTABLE",
	ErrCodeInvocation:         "INVOCATION_FAILED",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ERROR_CODE(%d)", uint8(c))
}

// ── Error type ────────────────────────────────────────────────────────────────

// Error is the error type produced by the container and the call machinery.
//
//	_, err := c.Make("mailer")
//	if container.IsBindingNotFound(err) { ... }
type Error struct {
	Code    ErrorCode
	Message string

	// Key is the abstract or method key the failure relates to, when known.
	Key string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("container: [%s] %s", e.Code, e.Message)
	if e.Key != "" {
		msg += fmt.Sprintf(" (key %q)", e.Key)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches two container errors by code, so
// errors.Is(err, &Error{Code: ErrCodeBindingNotFound}) works as a class check.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// ── Constructors ──────────────────────────────────────────────────────────────

func errBindingNotFound(key string) error {
	return &Error{Code: ErrCodeBindingNotFound, Message: "no binding registered", Key: key}
}

func errFactoryFailed(key string, cause error) error {
	return &Error{Code: ErrCodeFactoryFailed, Message: "factory failed", Key: key, Cause: cause}
}

func errCircular(stack []string, key string) error {
	return &Error{
		Code:    ErrCodeCircularDependency,
		Message: fmt.Sprintf("circular dependency via %v", append(append([]string{}, stack...), key)),
		Key:     key,
	}
}

func errInvalidTarget(msg string) error {
	return &Error{Code: ErrCodeInvalidTarget, Message: msg}
}

func errUnintrospectable(key, msg string) error {
	return &Error{Code: ErrCodeUnintrospectable, Message: msg, Key: key}
}

func errInvocation(key string, cause error) error {
	return &Error{Code: ErrCodeInvocation, Message: "target failed", Key: key, Cause: cause}
}

// ── Predicates ────────────────────────────────────────────────────────────────

func codeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeUnknown
}

// IsBindingNotFound reports whether err means the abstract was never bound.
func IsBindingNotFound(err error) bool { return codeOf(err) == ErrCodeBindingNotFound }

// IsCircular reports whether err is a circular-dependency failure.
func IsCircular(err error) bool { return codeOf(err) == ErrCodeCircularDependency }

// IsInvalidTarget reports whether err means Call was handed an unusable target.
func IsInvalidTarget(err error) bool { return codeOf(err) == ErrCodeInvalidTarget }

// IsInvocation reports whether err came from the target itself rather than
// from argument resolution.
func IsInvocation(err error) bool { return codeOf(err) == ErrCodeInvocation }

// IsResolution reports whether err is a type-resolution failure: the abstract
// is unknown, cannot be built, or its construction cycles.
func IsResolution(err error) bool {
	switch codeOf(err) {
	case ErrCodeBindingNotFound, ErrCodeFactoryFailed, ErrCodeCircularDependency:
		return true
	}
	return false
}
