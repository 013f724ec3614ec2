// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"
	"fmt"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, blank text, unknown task).
	UserError = 1

	// ConfigError indicates an invalid or unreadable configuration.
	ConfigError = 2

	// StorageError indicates the task list could not be read or written.
	StorageError = 3

	// Interrupted is returned when the process is stopped by a signal.
	Interrupted = 130
)

// Error carries the exit code a command failure should produce.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with code. A nil err yields nil.
func New(code int, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}

// User wraps err as a user error.
func User(err error) error { return New(UserError, err) }

// Userf formats a user error.
func Userf(format string, args ...any) error {
	return New(UserError, fmt.Errorf(format, args...))
}

// Config wraps err as a configuration error.
func Config(err error) error { return New(ConfigError, err) }

// Storage wraps err as a storage error.
func Storage(err error) error { return New(StorageError, err) }

// From returns the exit code for err: Success for nil, the code of the
// outermost *Error in the chain, or UserError otherwise.
func From(err error) int {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return UserError
}
