// Copyright by Eric S. Raymond
// SPDX-License-Identifier: BSD-2-Clause

package ir

import "fmt"

// ErrorClass distinguishes the fatal-error kinds enumerated in the
// importer's error-handling design: a parse error, a semantic error
// (unresolved mark, missing committer...), a capability error (unsupported
// mode, copy-onto-existing-master...), an external-tool failure, or an I/O
// error. There is no recovery policy: every class aborts the run.
type ErrorClass string

// The five fatal error kinds the core can raise.
const (
	ClassParse      ErrorClass = "parse"
	ClassSemantic   ErrorClass = "semantic"
	ClassCapability ErrorClass = "capability"
	ClassExternal   ErrorClass = "external"
	ClassIO         ErrorClass = "io"
)

// ImportError is the one error type the importer core raises. It is
// deliberately uniform across all five error classes so that main can
// catch exactly one type, run scratch-space teardown, and map to exit
// code 1, instead of threading bespoke error types through every layer.
type ImportError struct {
	Class ErrorClass
	Line  int // 0 means "not associated with a stream line"
	msg   string
}

func (e *ImportError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.msg)
	}
	return e.msg
}

// NewError builds an ImportError not tied to any particular stream line
// (e.g. a capability error discovered during replay).
func NewError(class ErrorClass, format string, args ...interface{}) *ImportError {
	return &ImportError{Class: class, msg: fmt.Sprintf(format, args...)}
}

// NewLineError builds an ImportError tied to the stream line at which the
// defect was diagnosed, as parse and semantic errors always are.
func NewLineError(class ErrorClass, line int, format string, args ...interface{}) *ImportError {
	return &ImportError{Class: class, Line: line, msg: fmt.Sprintf(format, args...)}
}

// Throw panics with a freshly built ImportError. Parser and replay code
// use this so fatal diagnostics unwind through a single recover in main
// rather than threading error returns through every call site.
func Throw(class ErrorClass, format string, args ...interface{}) {
	panic(NewError(class, format, args...))
}

// ThrowAt is Throw with an associated stream line number.
func ThrowAt(class ErrorClass, line int, format string, args ...interface{}) {
	panic(NewLineError(class, line, format, args...))
}
