// Package apperror defines the error kinds shared by every workflow service.
// Each kind maps to exactly one HTTP status in the server layer.
package apperror

import "errors"

type Kind int

const (
	KindBadRequest Kind = iota
	KindNotFound
	KindForbidden
	KindUnauthorized
)

// Error carries a kind plus a caller-facing message. The message is the
// contract: handlers return it verbatim in the response payload.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func BadRequest(message string) error {
	return &Error{Kind: KindBadRequest, Message: message}
}

func NotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Forbidden(message string) error {
	return &Error{Kind: KindForbidden, Message: message}
}

func Unauthorized(message string) error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// KindOf reports the kind of err when it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) && appErr != nil {
		return appErr.Kind, true
	}
	return 0, false
}

// EnsureBadRequest passes NotFound/Forbidden/BadRequest/Unauthorized errors
// through untouched and wraps anything else as BadRequest carrying the
// original message. Unexpected errors from a transactional workflow surface
// to the caller as client errors rather than opaque 500s, while authorization
// failures stay distinguishable.
func EnsureBadRequest(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := KindOf(err); ok {
		return err
	}
	return &Error{Kind: KindBadRequest, Message: err.Error(), Err: err}
}
