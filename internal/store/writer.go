package store

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/kv"
)

type writeReq struct {
	seq   uint64
	value string
}

// writer persists snapshots one at a time on a single goroutine. It keeps
// at most one pending snapshot: submitting while a write is in flight
// replaces the pending one, so writes land in issue order and a stale
// snapshot never overwrites a newer one.
type writer struct {
	kv      kv.Store
	key     string
	timeout time.Duration
	logger  *log.Logger
	onFail  func(error)

	mu       sync.Mutex
	pending  *writeReq
	issued   uint64
	done     uint64
	lastErr  error
	closed   bool
	progress chan struct{}

	wake    chan struct{}
	quit    chan struct{}
	stopped chan struct{}
}

func newWriter(store kv.Store, key string, timeout time.Duration, logger *log.Logger, onFail func(error)) *writer {
	w := &writer{
		kv:       store,
		key:      key,
		timeout:  timeout,
		logger:   logger,
		onFail:   onFail,
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *writer) submit(value string) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.issued++
	if w.pending != nil {
		w.logger.Debug("coalesced pending write", "key", w.key, "replaced", w.pending.seq, "by", w.issued)
	}
	w.pending = &writeReq{seq: w.issued, value: value}
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return nil
}

func (w *writer) run() {
	defer close(w.stopped)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.quit:
			w.drain()
			return
		}
	}
}

func (w *writer) drain() {
	for {
		w.mu.Lock()
		req := w.pending
		w.pending = nil
		w.mu.Unlock()
		if req == nil {
			return
		}
		w.write(req)
	}
}

func (w *writer) write(req *writeReq) {
	err := w.set(req.value)
	if err != nil {
		err = &PersistenceError{Op: "set", Key: w.key, Err: err}
		w.logger.Error("failed to persist tasks", "key", w.key, "seq", req.seq, "err", err)
	} else {
		w.logger.Debug("persisted tasks", "key", w.key, "seq", req.seq, "bytes", len(req.value))
	}

	w.mu.Lock()
	w.done = req.seq
	w.lastErr = err
	close(w.progress)
	w.progress = make(chan struct{})
	w.mu.Unlock()

	if err != nil && w.onFail != nil {
		w.onFail(err)
	}
}

func (w *writer) set(value string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("storage panic", "panic", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("storage panic: %v", r)
		}
	}()

	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	return w.kv.Set(ctx, w.key, value)
}

// flush waits until every write submitted so far has finished and
// returns the error of the most recent write.
func (w *writer) flush(ctx context.Context) error {
	w.mu.Lock()
	target := w.issued
	for w.done < target {
		ch := w.progress
		w.mu.Unlock()
		select {
		case <-ch:
		case <-w.stopped:
			// stopped after a final drain; done is current
		case <-ctx.Done():
			return ctx.Err()
		}
		w.mu.Lock()
		if w.done < target && w.isStopped() {
			w.mu.Unlock()
			return ErrClosed
		}
	}
	err := w.lastErr
	w.mu.Unlock()
	return err
}

func (w *writer) isStopped() bool {
	select {
	case <-w.stopped:
		return true
	default:
		return false
	}
}

// close stops accepting writes, drains the pending one and waits for the
// goroutine to exit.
func (w *writer) close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.quit)
	}
	w.mu.Unlock()

	select {
	case <-w.stopped:
	case <-ctx.Done():
		return ctx.Err()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}
