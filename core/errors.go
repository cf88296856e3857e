package core

import "fmt"

// Kind identifies one of the fatal-at-startup error conditions the
// executor can surface. None of these are recoverable at runtime: every
// Kind is detected before any thread is created, except
// PrivateEventViolation, which SafetySystem.Raise returns synchronously to
// the caller that tried to enqueue a private event.
type Kind string

const (
	KindPeriodUnset           Kind = "PeriodUnset"
	KindMainTaskAlreadySet    Kind = "MainTaskAlreadySet"
	KindPeriodDeviation       Kind = "PeriodDeviation"
	KindPriorityUnset         Kind = "PriorityUnset"
	KindEmptyTaskList         Kind = "EmptyTaskList"
	KindHalBindingMissing     Kind = "HalBindingMissing"
	KindPrivateEventViolation Kind = "PrivateEventViolation"
	KindUnknownLevel          Kind = "UnknownLevel"
)

// Error is the single error type surfaced by the executor and its
// collaborators, carrying a stable Kind so callers can switch on failure
// class without string matching, in the spirit of the reference CLI's
// ConfigurationError/ExecutionError split.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given Kind. Exported so collaborating
// packages (hal, safety, config) that cannot import an unexported
// constructor can still surface the same error Kinds the executor does.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap builds an Error of the given Kind around a lower-level cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func newErr(kind Kind, msg string) *Error               { return New(kind, msg) }
func wrapErr(kind Kind, msg string, cause error) *Error { return Wrap(kind, msg, cause) }

// Is reports whether err is a *core.Error of the given Kind, so callers
// can write `errors.Is`-style checks without importing this package's
// concrete type everywhere.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
