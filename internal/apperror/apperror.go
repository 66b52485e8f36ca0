// Package apperror classifies failures so that operation boundaries can turn
// them into typed results instead of leaking raw errors.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInternal        Kind = "internal"
	KindNotConfigured   Kind = "not_configured"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindUpstreamFailure Kind = "upstream_failure"
	KindIntegrity       Kind = "integrity_violation"
	KindNotFound        Kind = "not_found"
	KindInvalid         Kind = "invalid"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NotConfigured reports a missing table, board or mapping together with the
// setup step that would provide it.
func NotConfigured(step string) *Error {
	return &Error{Kind: KindNotConfigured, Message: "not configured: " + step}
}

func Integrity(message string) *Error {
	return &Error{Kind: KindIntegrity, Message: message}
}

func Upstream(source string, err error) *Error {
	return &Error{Kind: KindUpstreamFailure, Message: source + " request failed", Err: err}
}

func Invalid(message string) *Error {
	return &Error{Kind: KindInvalid, Message: message}
}

func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// PublicMessage is the text safe to show to callers. Internal errors are
// reduced to a generic message.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		if appErr.Message != "" {
			return appErr.Message
		}
		return appErr.Error()
	}
	return "internal server error"
}
