package kv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File stores each key as <dir>/<key>.json. Writes go to a temp file in
// the same directory and are renamed into place, so a reader never sees a
// partial value.
type File struct {
	dir    string
	mu     sync.Mutex
	closed bool
}

// OpenFile opens (creating if needed) a file store rooted at dir.
func OpenFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("file backend requires a data directory")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &File{dir: abs}, nil
}

// Dir returns the store's directory.
func (f *File) Dir() string {
	return f.dir
}

// Path returns the file that holds key.
func (f *File) Path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Get implements Store.
func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if err := ValidKey(key); err != nil {
		return "", false, err
	}
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return "", false, ErrClosed
	}

	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set implements Store.
func (f *File) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidKey(key); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}

	tmp, err := os.CreateTemp(f.dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", key, err)
	}
	if err := os.Rename(tmpName, f.Path(key)); err != nil {
		cleanup()
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

// Close implements Store.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
