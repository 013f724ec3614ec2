// Package kv provides the string key/value stores the task list persists to.
//
// A Store holds opaque string values under string keys. Backends:
//
//   - file:   one <key>.json file per key in a data directory (default)
//   - sqlite: a kv_store table in <data_dir>/todo.db
//   - mysql:  a kv_store table in the database named by a DSN
//   - memory: process-local, for tests and --backend memory
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
	BackendMemory = "memory"
)

// Backends lists the supported backend names.
var Backends = []string{BackendFile, BackendSQLite, BackendMySQL, BackendMemory}

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kv: store is closed")

// Store is a string key/value store.
type Store interface {
	// Get returns the value stored under key. ok is false when the key has
	// never been set.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error
	// Close releases the store's resources.
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend string // one of Backends; empty means file
	DataDir string // directory for file and sqlite backends
	DSN     string // mysql data source name
}

// Open opens the configured backend. SQL backends create their table if
// it does not exist.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return OpenFile(opts.DataDir)
	case BackendSQLite:
		return OpenSQLite(ctx, opts.DataDir)
	case BackendMySQL:
		return OpenMySQL(ctx, opts.DSN)
	case BackendMemory:
		return NewMemory(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q, must be one of: %s", opts.Backend, strings.Join(Backends, ", "))
}

// ValidKey reports whether key can be stored by every backend.
func ValidKey(key string) error {
	if key == "" {
		return errors.New("key is empty")
	}
	if len(key) > 191 {
		return fmt.Errorf("key is longer than 191 bytes")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("key %q contains a path separator", key)
	}
	return nil
}
