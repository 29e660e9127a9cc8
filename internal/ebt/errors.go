package ebt

import (
	"errors"
	"fmt"
)

// ErrorKind mirrors the xtables exit categories.
type ErrorKind int

const (
	// OtherProblem covers environment failures (exit status 1).
	OtherProblem ErrorKind = iota + 1
	// ParameterProblem covers malformed or contradictory input (exit status 2).
	ParameterProblem
)

// Error is a fatal configuration error. Parsing stops at the first one.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

// ExitCode is the process status for this error.
func (e *Error) ExitCode() int {
	if e.Kind == ParameterProblem {
		return 2
	}
	return 1
}

// Errorf builds a parameter problem. Extensions use it for their own
// option errors.
func Errorf(format string, args ...any) error {
	return &Error{Kind: ParameterProblem, Msg: fmt.Sprintf(format, args...)}
}

func otherErrorf(format string, args ...any) error {
	return &Error{Kind: OtherProblem, Msg: fmt.Sprintf(format, args...)}
}

// asParameterProblem turns foreign errors (validators, extensions) into
// parameter problems carrying the same message.
func asParameterProblem(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: ParameterProblem, Msg: err.Error()}
}
