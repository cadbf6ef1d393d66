package application

import (
	"errors"
	"fmt"
)

// Kind tags every failure the services return to their caller.
type Kind string

const (
	KindMissingFields     Kind = "MissingFields"
	KindInvalidDate       Kind = "InvalidDate"
	KindPastDate          Kind = "PastDate"
	KindTooFarAhead       Kind = "TooFarAhead"
	KindPatientNotFound   Kind = "PatientNotFound"
	KindDoctorNotFound    Kind = "DoctorNotFound"
	KindDayNotAvailable   Kind = "DayNotAvailable"
	KindOutOfHours        Kind = "OutOfHours"
	KindPastTime          Kind = "PastTime"
	KindSlotTaken         Kind = "SlotTaken"
	KindNotFound          Kind = "NotFound"
	KindInvalidTransition Kind = "InvalidTransition"
	KindStorage           Kind = "StorageError"

	// registration services
	KindInvalidInput Kind = "InvalidInput"
	KindEmailTaken   Kind = "EmailTaken"
)

// Error is a tagged failure: a Kind plus a message a person can act on.
// Details carries per-field problems for KindInvalidInput.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so errors.Is(err, ErrSlotTaken) works
// regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Retryable reports whether the same request may succeed unchanged later.
// Only storage faults are retryable; every other kind is a caller-input fault.
func (e *Error) Retryable() bool { return e.Kind == KindStorage }

var (
	ErrMissingFields     = &Error{Kind: KindMissingFields}
	ErrInvalidDate       = &Error{Kind: KindInvalidDate}
	ErrPastDate          = &Error{Kind: KindPastDate}
	ErrTooFarAhead       = &Error{Kind: KindTooFarAhead}
	ErrPatientNotFound   = &Error{Kind: KindPatientNotFound}
	ErrDoctorNotFound    = &Error{Kind: KindDoctorNotFound}
	ErrDayNotAvailable   = &Error{Kind: KindDayNotAvailable}
	ErrOutOfHours        = &Error{Kind: KindOutOfHours}
	ErrPastTime          = &Error{Kind: KindPastTime}
	ErrSlotTaken         = &Error{Kind: KindSlotTaken}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrStorage           = &Error{Kind: KindStorage}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrEmailTaken        = &Error{Kind: KindEmailTaken}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func storageError(op string, err error) *Error {
	return &Error{Kind: KindStorage, Message: op + " failed, please retry", Err: err}
}

func invalidInput(details map[string]string) *Error {
	return &Error{Kind: KindInvalidInput, Message: "invalid data", Details: details}
}

// KindOf extracts the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
