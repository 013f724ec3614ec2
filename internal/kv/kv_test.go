package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	file, err := OpenFile(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	sqlite, err := OpenSQLite(ctx, t.TempDir())
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}

	stores := map[string]Store{
		BackendFile:   file,
		BackendSQLite: sqlite,
		BackendMemory: NewMemory(),
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStoreGetSet(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(ctx, "tasks")
			if err != nil {
				t.Fatalf("Get on empty store failed: %v", err)
			}
			if ok {
				t.Fatal("Get on empty store: ok = true")
			}

			if err := s.Set(ctx, "tasks", `[]`); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			value := `[{"id":"1","text":"ünïcode ✓","completed":false}]`
			if err := s.Set(ctx, "tasks", value); err != nil {
				t.Fatalf("Set (overwrite) failed: %v", err)
			}

			got, ok, err := s.Get(ctx, "tasks")
			if err != nil || !ok {
				t.Fatalf("Get: ok=%v err=%v", ok, err)
			}
			if got != value {
				t.Errorf("Get: got %q, want %q", got, value)
			}

			if _, ok, _ := s.Get(ctx, "other"); ok {
				t.Error("Get(other): ok = true for unset key")
			}
		})
	}
}

func TestStoreRejectsBadKeys(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "../escape", `a\b`, strings.Repeat("k", 192)} {
				if err := s.Set(ctx, key, "x"); err == nil {
					t.Errorf("Set(%q): expected error", key)
				}
				if _, _, err := s.Get(ctx, key); err == nil {
					t.Errorf("Get(%q): expected error", key)
				}
			}
		})
	}
}

func TestFileStoreLayout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	f, err := OpenFile(dir)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("data dir not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0700 {
		t.Errorf("data dir perm: got %o, want 700", perm)
	}

	if err := f.Set(context.Background(), "tasks", "[]"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	info, err = os.Stat(filepath.Join(dir, "tasks.json"))
	if err != nil {
		t.Fatalf("tasks.json not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file perm: got %o, want 600", perm)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("leftover temp files: %v", names)
	}
}

func TestFileStoreConcurrentSets(t *testing.T) {
	f, err := OpenFile(t.TempDir())
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f.Set(ctx, "tasks", `[{"id":"1","text":"x","completed":false}]`); err != nil {
				t.Errorf("Set failed: %v", err)
			}
		}()
	}
	wg.Wait()

	got, ok, err := f.Get(ctx, "tasks")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got != `[{"id":"1","text":"x","completed":false}]` {
		t.Errorf("Get: got %q", got)
	}
}

func TestClosedStore(t *testing.T) {
	ctx := context.Background()
	for _, s := range []Store{NewMemory(), mustFile(t)} {
		if err := s.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if err := s.Set(ctx, "tasks", "[]"); !errors.Is(err, ErrClosed) {
			t.Errorf("Set after Close: got %v, want ErrClosed", err)
		}
		if _, _, err := s.Get(ctx, "tasks"); !errors.Is(err, ErrClosed) {
			t.Errorf("Get after Close: got %v, want ErrClosed", err)
		}
	}
}

func mustFile(t *testing.T) *File {
	t.Helper()
	f, err := OpenFile(t.TempDir())
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	return f
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		opts    Options
		wantErr string
	}{
		{name: "default is file", opts: Options{DataDir: t.TempDir()}},
		{name: "sqlite", opts: Options{Backend: "SQLite", DataDir: t.TempDir()}},
		{name: "memory", opts: Options{Backend: "memory"}},
		{name: "file without dir", opts: Options{Backend: "file"}, wantErr: "data directory"},
		{name: "mysql without dsn", opts: Options{Backend: "mysql"}, wantErr: "requires a DSN"},
		{name: "unknown", opts: Options{Backend: "redis"}, wantErr: "unknown storage backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.opts)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Open: got %v, want error containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			_ = s.Close()
		})
	}
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := OpenSQLite(ctx, dir)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	if err := s.Set(ctx, "tasks", `[{"id":"9","text":"keep","completed":true}]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s, err = OpenSQLite(ctx, dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	got, ok, err := s.Get(ctx, "tasks")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if !strings.Contains(got, `"keep"`) {
		t.Errorf("Get: got %q", got)
	}
	if s.Driver() != "sqlite" {
		t.Errorf("Driver: got %q", s.Driver())
	}
}

func TestMySQLIntegration(t *testing.T) {
	dsn := os.Getenv("TODO_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TODO_TEST_MYSQL_DSN not set")
	}
	ctx := context.Background()
	s, err := OpenMySQL(ctx, dsn)
	if err != nil {
		t.Fatalf("OpenMySQL failed: %v", err)
	}
	defer s.Close()

	key := "tasks_test"
	if err := s.Set(ctx, key, "[]"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set(ctx, key, `[{"id":"1","text":"a","completed":false}]`); err != nil {
		t.Fatalf("Set (upsert) failed: %v", err)
	}
	got, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if !strings.Contains(got, `"a"`) {
		t.Errorf("Get: got %q", got)
	}
}
