package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")

	ErrBlocked       = errors.New("your account has been blocked, contact support")
	ErrUnverified    = errors.New("your account is not verified yet")
	ErrWindowExpired = errors.New("the 60 minute change window has expired")
	ErrNotOwner      = errors.New("booking belongs to another user")
	ErrForbidden     = errors.New("admin access required")
	ErrRateLimited   = errors.New("too many requests, try again later")

	ErrIllegalTransition      = errors.New("action not allowed in current booking status")
	ErrConcurrentModification = errors.New("booking was changed by someone else, refresh and retry")
	ErrActionInFlight         = errors.New("another action on this booking is in progress")

	ErrNotFound = errors.New("not found")
)

// Kind groups errors by how a caller should react to them.
type Kind int

const (
	KindTransient Kind = iota
	KindValidation
	KindPrecondition
	KindConflict
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	default:
		return "transient"
	}
}

// KindOf classifies err. Unrecognised errors are transient.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindTransient
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrBlocked), errors.Is(err, ErrUnverified), errors.Is(err, ErrWindowExpired),
		errors.Is(err, ErrNotOwner), errors.Is(err, ErrForbidden), errors.Is(err, ErrRateLimited):
		return KindPrecondition
	case errors.Is(err, ErrIllegalTransition), errors.Is(err, ErrConcurrentModification),
		errors.Is(err, ErrActionInFlight):
		return KindConflict
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindTransient
	}
}

// Invalid wraps ErrValidation with a field specific message.
func Invalid(format string, args ...interface{}) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Unwrap() error { return ErrValidation }
