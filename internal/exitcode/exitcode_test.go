package exitcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestFrom(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, Success},
		{"plain error", base, UserError},
		{"user", User(base), UserError},
		{"config", Config(base), ConfigError},
		{"storage", Storage(base), StorageError},
		{"wrapped storage", fmt.Errorf("add: %w", Storage(base)), StorageError},
		{"userf", Userf("no task %d", 3), UserError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := From(tt.err); got != tt.want {
				t.Errorf("From(%v): got %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestNewNil(t *testing.T) {
	if err := New(StorageError, nil); err != nil {
		t.Errorf("New(code, nil): got %v, want nil", err)
	}
}

func TestErrorUnwrap(t *testing.T) {
	base := errors.New("disk full")
	err := Storage(base)
	if !errors.Is(err, base) {
		t.Error("errors.Is does not reach the wrapped error")
	}
	if err.Error() != "disk full" {
		t.Errorf("Error(): got %q", err.Error())
	}
}
