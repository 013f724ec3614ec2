// Package kvtest provides a scriptable kv.Store for tests.
package kvtest

import (
	"context"
	"sync"
)

// Fake is an in-memory kv.Store with error injection and write history.
type Fake struct {
	mu   sync.Mutex
	data map[string]string
	sets []Set

	// GetErr, when set, is returned by every Get.
	GetErr error
	// SetErr, when set, is returned by every Set. The value is not stored.
	SetErr error

	gate    chan struct{}
	entered chan struct{}
	closed  bool
}

// Set records one Set call.
type Set struct {
	Key   string
	Value string
	Err   error
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{data: make(map[string]string)}
}

// Seed stores a value without recording it as a write.
func (f *Fake) Seed(key, value string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return f
}

// SetError changes the error returned by subsequent Sets.
func (f *Fake) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SetErr = err
}

// Block makes subsequent Sets wait until Release is called. Entered
// receives once per Set that starts waiting.
func (f *Fake) Block() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
	f.entered = make(chan struct{}, 64)
}

// Entered returns the channel signalled when a blocked Set starts waiting.
func (f *Fake) Entered() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entered
}

// Release unblocks all waiting and future Sets.
func (f *Fake) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gate != nil {
		close(f.gate)
		f.gate = nil
	}
}

// Get implements kv.Store.
func (f *Fake) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.GetErr != nil {
		return "", false, f.GetErr
	}
	v, ok := f.data[key]
	return v, ok, nil
}

// Set implements kv.Store.
func (f *Fake) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	gate, entered := f.gate, f.entered
	f.mu.Unlock()

	if gate != nil {
		entered <- struct{}{}
		select {
		case <-gate:
		case <-ctx.Done():
			f.record(Set{Key: key, Value: value, Err: ctx.Err()})
			return ctx.Err()
		}
	}

	f.mu.Lock()
	err := f.SetErr
	if err == nil {
		f.data[key] = value
	}
	f.sets = append(f.sets, Set{Key: key, Value: value, Err: err})
	f.mu.Unlock()
	return err
}

func (f *Fake) record(s Set) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets = append(f.sets, s)
}

// Close implements kv.Store.
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Value returns the currently stored value for key.
func (f *Fake) Value(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}

// Sets returns every Set call in order.
func (f *Fake) Sets() []Set {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Set, len(f.sets))
	copy(out, f.sets)
	return out
}
