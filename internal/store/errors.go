package store

import (
	"errors"
	"fmt"
)

// Kind classifies a ValidationError.
type Kind string

// Validation error kinds.
const (
	KindEmptyText Kind = "empty_text"
)

var (
	// ErrEmptyText matches (via errors.Is) a ValidationError of KindEmptyText.
	ErrEmptyText = errors.New("task text cannot be empty")
	// ErrClosed is returned by mutations on a closed store.
	ErrClosed = errors.New("store is closed")
)

// ValidationError reports input rejected before any state changed.
type ValidationError struct {
	Op   string // add or edit
	Kind Kind
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindEmptyText:
		return fmt.Sprintf("%s: %s", e.Op, ErrEmptyText)
	}
	return fmt.Sprintf("%s: invalid input (%s)", e.Op, e.Kind)
}

// Is reports whether target is the sentinel for e's kind.
func (e *ValidationError) Is(target error) bool {
	return e.Kind == KindEmptyText && target == ErrEmptyText
}

// PersistenceError reports a failed read or write of the stored list.
type PersistenceError struct {
	Op  string // get or set
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns the underlying storage error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}
