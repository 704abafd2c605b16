// Package apperrors carries the error taxonomy shared by the HTTP API and the
// message handlers: validation failures, missing entities, store failures, and
// malformed messages each propagate as a distinct kind so every boundary can
// choose between rejecting, retrying, and acknowledging.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for boundary handling.
type Kind string

const (
	// KindValidation is bad caller input; reported once, never retried.
	KindValidation Kind = "validation"
	// KindNotFound is a referenced entity that does not exist.
	KindNotFound Kind = "not_found"
	// KindStore is a database or document-store failure; retriable.
	KindStore Kind = "store_failure"
	// KindBadMessage is a malformed event payload; acknowledged without effect.
	KindBadMessage Kind = "bad_message"
)

// Error is the taxonomy-aware error carried across layers.
type Error struct {
	Kind    Kind
	Msg     string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.cause }

// WithDetail returns a copy carrying an additional detail property.
func (e *Error) WithDetail(key string, value any) *Error {
	clone := *e
	clone.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		clone.Details[k] = v
	}
	clone.Details[key] = value
	return &clone
}

// Validation builds a caller-input rejection.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// NotFound builds a missing-entity error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Store wraps an infrastructure failure.
func Store(msg string, cause error) *Error {
	return &Error{Kind: KindStore, Msg: msg, cause: cause}
}

// BadMessage builds a malformed-payload rejection. The cause may be nil.
func BadMessage(msg string, cause error) *Error {
	return &Error{Kind: KindBadMessage, Msg: msg, cause: cause}
}

// KindOf extracts the kind from an error chain; unknown errors map to KindStore
// so unexpected failures stay retriable rather than being silently dropped.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Permanent reports whether redelivering the message that produced err could
// ever succeed. Validation, not-found, and bad-message conditions are
// permanent; store failures are not.
func Permanent(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindNotFound, KindBadMessage:
		return true
	default:
		return false
	}
}
