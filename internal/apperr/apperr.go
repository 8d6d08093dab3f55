// Package apperr defines the typed error taxonomy used across AniVault's
// engine. Every error returned across a package boundary should be (or
// wrap) an *Error so callers can branch on Kind rather than string-match
// messages.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for handling and exit-code purposes.
type Kind string

const (
	// KindValidation is bad input: a path that doesn't exist, an argument
	// out of range. Surfaced immediately.
	KindValidation Kind = "validation"
	// KindNotFound is a requested entity absent: a required cache miss,
	// an unknown plan ID.
	KindNotFound Kind = "not_found"
	// KindPolicyViolation is a credential-leak in a cache payload, or a
	// destination collision under the skip conflict policy.
	KindPolicyViolation Kind = "policy_violation"
	// KindBlocked means the rate-limit runtime is in Sleep or CacheOnly.
	// Callers may retry or downgrade to cache-only; it is not fatal.
	KindBlocked Kind = "blocked"
	// KindUpstreamError is a non-429 4xx from TMDB, or retries exhausted.
	KindUpstreamError Kind = "upstream_error"
	// KindUpstreamRetryable is 429 / 5xx / network failure. The rate-limit
	// runtime records it for the circuit breaker; the TMDB client returns it
	// to its caller as-is, without retrying the request.
	KindUpstreamRetryable Kind = "upstream_retryable"
	// KindStorageFailure is cache or journal I/O failure.
	KindStorageFailure Kind = "storage_failure"
	// KindCancellation is a deadline expiry or user abort.
	KindCancellation Kind = "cancellation"
)

// ExitCode returns the process exit code associated with a Kind, matching
// the BSD sysexits.h convention the teacher's CLIs follow.
func (k Kind) ExitCode() int {
	switch k {
	case KindValidation:
		return 64
	case KindPolicyViolation:
		return 65
	case KindNotFound:
		return 66
	case KindUpstreamError:
		return 69
	case KindStorageFailure:
		return 74
	default:
		return 1
	}
}

// Error is a typed, wrappable error carrying a Kind plus optional structured
// fields for diagnostics.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is match e against a target *Error of the same Kind. To
// test against a bare Kind, use the package-level Is(err, kind).
func (e *Error) Is(target error) bool {
	var te *Error
	if errors.As(target, &te) {
		return e.Kind == te.Kind
	}
	return false
}

// New builds an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error of the given kind wrapping cause.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WithField returns a copy of e with the given diagnostic field attached.
func (e *Error) WithField(key string, value any) *Error {
	cp := *e
	cp.Fields = make(map[string]any, len(e.Fields)+1)
	for k, v := range e.Fields {
		cp.Fields[k] = v
	}
	cp.Fields[key] = value
	return &cp
}

// Of returns the Kind of err if it is (or wraps) an *Error, and ok=true.
func Of(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err is (or wraps) an *Error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := Of(err)
	return ok && k == kind
}

// ExitCode returns the process exit code for err, or 1 if err is not a
// recognized *Error.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	k, ok := Of(err)
	if !ok {
		return 1
	}
	return k.ExitCode()
}
