package service

import "errors"

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidState
	KindValidation
	KindConflict
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalidState:
		return "invalid state"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	}
	return "internal"
}

// Error is a caller-facing failure. Msg is safe to show to clients.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// KindOf classifies err. Anything that is not an *Error is internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func invalid(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }

var (
	ErrAppointmentNotFound = &Error{KindNotFound, "appointment not found"}
	ErrUserNotFound        = &Error{KindNotFound, "user not found"}

	ErrAlreadyBooked = &Error{KindInvalidState, "appointment is already booked"}
	ErrNotBooked     = &Error{KindInvalidState, "appointment is not booked"}
	ErrBookedLocked  = &Error{KindInvalidState, "cannot edit a booked appointment"}

	ErrInvalidRange = &Error{KindValidation, "end time must be after start time"}

	ErrSlotTaken  = &Error{KindConflict, "an appointment already exists within this time range"}
	ErrEmailTaken = &Error{KindConflict, "email already exists"}

	// one message for unknown email and wrong password
	ErrInvalidCredentials = &Error{KindUnauthorized, "invalid credentials"}
	ErrForbidden          = &Error{KindForbidden, "access denied"}
)
