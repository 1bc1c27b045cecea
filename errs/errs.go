// Package errs defines the playback core's error taxonomy: a small set of
// kinds shared across the track-supplier, audio, and playlist packages so
// callers can match on failure class (errs.Is(err, errs.Timeout)) without
// every package inventing its own sentinel zoo.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a playback-core failure.
type Kind int

const (
	BadInput Kind = iota
	NoInit
	BadIndex
	OutOfMemory
	IOFailure
	Timeout
	EndOfStream
	NoHandler
	BadFormat
	NotSupported
	EntryNotFound
)

func (k Kind) String() string {
	switch k {
	case BadInput:
		return "bad input"
	case NoInit:
		return "not initialized"
	case BadIndex:
		return "bad index"
	case OutOfMemory:
		return "out of memory"
	case IOFailure:
		return "I/O failure"
	case Timeout:
		return "timed out"
	case EndOfStream:
		return "end of stream"
	case NoHandler:
		return "no handler"
	case BadFormat:
		return "bad format"
	case NotSupported:
		return "not supported"
	case EntryNotFound:
		return "entry not found"
	default:
		return "unknown error"
	}
}

// Error is a kinded error. Two Errors compare equal under errors.Is when
// their Kind matches, regardless of Msg, so call sites can do
// errs.Is(err, errs.Timeout) without caring about the wrapped detail.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

// Is implements the errors.Is comparison target: two *Error values match
// when their Kind is equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an *Error of the given kind with a formatted message.
func New(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// Sentinels for errors.Is comparisons against a bare kind, e.g.
// errors.Is(err, errs.ErrTimeout) where ErrTimeout below is a *Error{Kind: Timeout}.
var (
	ErrBadInput      = &Error{Kind: BadInput}
	ErrNoInit        = &Error{Kind: NoInit}
	ErrBadIndex      = &Error{Kind: BadIndex}
	ErrOutOfMemory   = &Error{Kind: OutOfMemory}
	ErrIOFailure     = &Error{Kind: IOFailure}
	ErrTimeout       = &Error{Kind: Timeout}
	ErrEndOfStream   = &Error{Kind: EndOfStream}
	ErrNoHandler     = &Error{Kind: NoHandler}
	ErrBadFormat     = &Error{Kind: BadFormat}
	ErrNotSupported  = &Error{Kind: NotSupported}
	ErrEntryNotFound = &Error{Kind: EntryNotFound}
)

// Is reports whether err (or something it wraps) carries the given kind.
func Is(err error, k Kind) bool {
	return errors.Is(err, &Error{Kind: k})
}

// Wrap attaches additional context to err while preserving the error chain
// for errors.Is/errors.As.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
