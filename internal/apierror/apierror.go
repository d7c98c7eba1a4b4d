// Package apierror defines the error taxonomy surfaced by the HTTP
// layer. Components return these instead of aborting; the HTTP handlers
// map kinds to status codes and structured bodies.
package apierror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindBadRequest Kind = iota
	KindNotFound
	KindUpstream
)

type Error struct {
	Kind        Kind
	Description string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Description + ": " + e.Err.Error()
	}
	return e.Description
}

func (e *Error) Unwrap() error { return e.Err }

// BadRequest signals invalid client input. Never retried.
func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Description: fmt.Sprintf(format, args...)}
}

// NotFound signals a missing feature or tile.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Description: fmt.Sprintf(format, args...)}
}

// Upstream wraps a spatial-store or feature-store failure.
func Upstream(err error, format string, args ...any) *Error {
	return &Error{Kind: KindUpstream, Description: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the taxonomy kind of err, or KindUpstream for errors
// raised outside the taxonomy.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUpstream
}
