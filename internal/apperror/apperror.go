// Package apperror classifies failures returned by the services so the HTTP
// boundary can map them to responses without knowing about storage.
package apperror

import (
	"errors"
	"fmt"

	"github.com/controlai/controlai/internal/storage"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindNotFound
	KindUnauthorized
	KindInconsistent
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindInconsistent:
		return "inconsistent"
	case KindUnavailable:
		return "unavailable"
	case KindInternal:
		return "internal"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Invalid(message string) *Error {
	return &Error{Kind: KindInvalid, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// FromStorage translates a storage failure into the service taxonomy.
// message is used for failures that carry no better description.
func FromStorage(message string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}

	var notFound *storage.NotFoundError
	var inconsistent *storage.InconsistencyError

	switch {
	case errors.As(err, &inconsistent):
		return &Error{Kind: KindInconsistent, Message: "stored aggregates are inconsistent", Err: err}
	case errors.As(err, &notFound):
		return &Error{Kind: KindNotFound, Message: message, Err: err}
	case errors.Is(err, storage.ErrBusy):
		return &Error{Kind: KindUnavailable, Message: "storage is busy, try again", Err: err}
	case errors.Is(err, storage.ErrDuplicate):
		return &Error{Kind: KindInvalid, Message: message, Err: err}
	default:
		return &Error{Kind: KindInternal, Message: message, Err: err}
	}
}

// KindOf returns KindInternal for errors outside the taxonomy.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Message returns the client facing text of err.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
