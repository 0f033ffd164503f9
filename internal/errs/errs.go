// Package errs provides a levelled error type so callers at the edge of the
// program can tell bad input apart from internal failures.
package errs

import (
	"errors"
	"fmt"
)

// Level grades how severe an error is.
type Level uint8

const (
	None Level = iota
	// Fatal marks internal or unrecoverable problems.
	Fatal
	// Warn marks problems caused by the caller's input.
	Warn
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case Fatal:
		return "fatal"
	case Warn:
		return "warn"
	default:
		return ""
	}
}

// E is the shared error type.
type E struct {
	Message string
	Cause   error
	Level   Level
}

// Error implements the error interface.
func (e *E) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *E) Unwrap() error { return e.Cause }

// New creates an error with the given level.
func New(lv Level, msg string) *E {
	return &E{Message: msg, Level: lv}
}

// Warnf formats a Warn error.
func Warnf(format string, a ...any) *E {
	return New(Warn, fmt.Sprintf(format, a...))
}

// Fatalf formats a Fatal error.
func Fatalf(format string, a ...any) *E {
	return New(Fatal, fmt.Sprintf(format, a...))
}

// Wrap attaches msg to cause. The level of an *E cause is kept; any other
// cause is treated as Fatal.
func Wrap(cause error, msg string) *E {
	lv := Fatal
	var e *E
	if errors.As(cause, &e) {
		lv = e.Level
	}
	return &E{Message: msg, Cause: cause, Level: lv}
}

// WrapWarn attaches msg to cause and marks the result as a Warn error. Use
// it when the cause came from parsing caller input.
func WrapWarn(cause error, msg string) *E {
	return &E{Message: msg, Cause: cause, Level: Warn}
}

// LevelOf returns the level of the outermost *E in err's chain, or None.
func LevelOf(err error) Level {
	var e *E
	if errors.As(err, &e) {
		return e.Level
	}
	return None
}
