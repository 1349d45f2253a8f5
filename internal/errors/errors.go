// Package errors provides the coded errors of a normalization run.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code classifies why a file was skipped or a run could not start.
type Code string

const (
	CodeMalformedInput Code = "MALFORMED_INPUT"
	CodeIO             Code = "IO_ERROR"
	CodeInvalidConfig  Code = "INVALID_CONFIG"
)

// RunError is a structured error carrying a code and, for per-file failures,
// the file it concerns.
type RunError struct {
	Code    Code
	File    string
	Message string
	Err     error
}

func (e *RunError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = fmt.Sprintf("%s: %s", e.File, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// Is matches any RunError with the same code, so that
// errors.Is(err, ErrMalformedInput) works for every malformed file.
func (e *RunError) Is(target error) bool {
	t, ok := target.(*RunError)
	return ok && t.Code == e.Code && t.File == "" && t.Err == nil
}

// Sentinels for errors.Is.
var (
	ErrMalformedInput = &RunError{Code: CodeMalformedInput, Message: "malformed input"}
	ErrIO             = &RunError{Code: CodeIO, Message: "i/o failure"}
	ErrInvalidConfig  = &RunError{Code: CodeInvalidConfig, Message: "invalid configuration"}
)

// MalformedInput reports a file whose JSON does not match the lesson layout.
func MalformedInput(file string, err error) *RunError {
	return &RunError{Code: CodeMalformedInput, File: file, Message: "malformed input", Err: err}
}

// IO wraps a read or write failure of file.
func IO(file, op string, err error) *RunError {
	return &RunError{Code: CodeIO, File: file, Message: op + " failed", Err: err}
}

// InvalidConfig reports a configuration value that cannot be used.
func InvalidConfig(format string, args ...any) *RunError {
	return &RunError{Code: CodeInvalidConfig, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of the first RunError in err's chain, or "".
func CodeOf(err error) Code {
	var re *RunError
	if stderrors.As(err, &re) {
		return re.Code
	}
	return ""
}
