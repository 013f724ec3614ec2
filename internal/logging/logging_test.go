// Package logging provides tests for logger setup and tail output.
package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q): got %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormatter(t *testing.T) {
	tests := []struct {
		in   string
		want log.Formatter
	}{
		{"text", log.TextFormatter},
		{"json", log.JSONFormatter},
		{"logfmt", log.LogfmtFormatter},
		{"unknown", log.TextFormatter},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseFormatter(tt.in); got != tt.want {
				t.Errorf("ParseFormatter(%q): got %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Level = log.WarnLevel
	logger := New(&buf, opts)

	logger.Info("hidden")
	logger.Warn("shown", "key", "tasks")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=tasks") {
		t.Errorf("warn message missing: %q", out)
	}
	if !strings.Contains(out, "todo") {
		t.Errorf("prefix missing: %q", out)
	}
}

func TestNewJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Formatter = log.JSONFormatter
	New(&buf, opts).Error("persist failed", "key", "tasks")

	out := buf.String()
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, `"key":"tasks"`) {
		t.Errorf("expected JSON line, got %q", out)
	}
}

func TestSetup(t *testing.T) {
	t.Run("fallback writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger, closeFn, err := Setup("", &buf, DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		logger.Info("hello")
		if err := closeFn(); err != nil {
			t.Errorf("close: %v", err)
		}
		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("fallback writer got %q", buf.String())
		}
	})

	t.Run("file is appended", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "todo.log")
		for _, msg := range []string{"first", "second"} {
			logger, closeFn, err := Setup(path, nil, DefaultOptions())
			if err != nil {
				t.Fatalf("Setup: %v", err)
			}
			logger.Info(msg)
			if err := closeFn(); err != nil {
				t.Fatal(err)
			}
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "first") || !strings.Contains(string(data), "second") {
			t.Errorf("log file contents: %q", data)
		}
	})
}

func TestDiscard(t *testing.T) {
	Discard().Error("nowhere")
}

func TestTailLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.log")
	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, strings.Repeat("x", i))
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		n    int
		want string
	}{
		{name: "all", n: 0, want: strings.Join(lines, "\n") + "\n"},
		{name: "last three", n: 3, want: strings.Join(lines[7:], "\n") + "\n"},
		{name: "more than file", n: 50, want: strings.Join(lines, "\n") + "\n"},
		{name: "last one", n: 1, want: lines[9] + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := TailLog(context.Background(), &buf, path, tt.n, false); err != nil {
				t.Fatalf("TailLog: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		err := TailLog(context.Background(), &bytes.Buffer{}, filepath.Join(t.TempDir(), "nope.log"), 5, false)
		if err == nil || !strings.Contains(err.Error(), "open log file") {
			t.Errorf("expected open error, got %v", err)
		}
	})
}

func TestTailLogFollowStopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todo.log")
	if err := os.WriteFile(path, []byte("start\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var buf syncBuffer
	done := make(chan error, 1)
	go func() { done <- TailLog(ctx, &buf, path, 0, true) }()

	f, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("appended\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(buf.String(), "appended") && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("TailLog: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("TailLog did not stop after cancel")
	}
	if got := buf.String(); got != "start\nappended\n" {
		t.Errorf("followed output: %q", got)
	}
}
