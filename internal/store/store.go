// Package store is the in-memory authority for the task list.
//
// A Store owns the list, mirrors every change to a kv.Store as one JSON
// document, and notifies subscribers after each change. Mutations are
// visible immediately; persistence happens on a background writer that
// applies snapshots in the order they were taken. Use Flush to wait for
// outstanding writes and Close to stop the writer.
package store

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/kv"
	"github.com/nibzard/todo-go/internal/todo"
)

// DefaultKey is the storage key holding the serialized list.
const DefaultKey = "tasks"

// DefaultWriteTimeout bounds a single background write.
const DefaultWriteTimeout = 5 * time.Second

// Store holds the task list and mirrors it to a key/value store.
type Store struct {
	mu     sync.RWMutex
	tasks  todo.List
	closed bool

	kv             kv.Store
	key            string
	ids            todo.IDGenerator
	validator      *todo.Validator
	logger         *log.Logger
	allowEmptyEdit bool
	writeTimeout   time.Duration

	hub *hub
	w   *writer
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the storage key. The default is "tasks".
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithIDGenerator sets the id generator. The default issues timestamp ids.
func WithIDGenerator(g todo.IDGenerator) Option {
	return func(s *Store) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithValidator sets the validator used by Load.
func WithValidator(v *todo.Validator) Option {
	return func(s *Store) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAllowEmptyEdit lets Edit store whitespace-only text.
func WithAllowEmptyEdit(allow bool) Option {
	return func(s *Store) {
		s.allowEmptyEdit = allow
	}
}

// WithWriteTimeout bounds each background write. Zero disables the bound.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.writeTimeout = d
		}
	}
}

// New creates a store over kvs and starts its writer. The list is empty
// until Load is called.
func New(kvs kv.Store, opts ...Option) *Store {
	s := &Store{
		tasks:        todo.List{},
		kv:           kvs,
		key:          DefaultKey,
		writeTimeout: DefaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.ids == nil {
		s.ids = todo.NewTimestampIDs(nil)
	}
	if s.validator == nil {
		s.validator = todo.DefaultValidator()
	}

	s.hub = newHub(s.logger)
	s.w = newWriter(kvs, s.key, s.writeTimeout, s.logger, func(err error) {
		s.hub.publish(Event{Kind: EventPersistFailed, Snapshot: s.Snapshot(), Err: err})
	})
	return s
}

// Key returns the storage key.
func (s *Store) Key() string {
	return s.key
}

// Load replaces the in-memory list with the stored one. A missing key
// yields an empty list and no error. When the stored value cannot be read
// or decoded the list is left empty and the error is returned; callers
// may log it and continue.
func (s *Store) Load(ctx context.Context) error {
	value, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		perr := &PersistenceError{Op: "get", Key: s.key, Err: err}
		s.logger.Error("failed to load tasks", "key", s.key, "err", err)
		s.replace(todo.List{}, perr)
		return perr
	}
	if !ok {
		s.logger.Debug("no stored tasks", "key", s.key)
		s.replace(todo.List{}, nil)
		return nil
	}

	l, err := s.validator.Decode([]byte(value))
	if err != nil {
		s.logger.Warn("stored tasks are malformed, starting empty", "key", s.key, "err", err)
		s.replace(todo.List{}, err)
		return err
	}

	for _, t := range l {
		s.ids.Observe(t.ID)
	}
	s.logger.Debug("loaded tasks", "key", s.key, "count", len(l))
	s.replace(l, nil)
	return nil
}

func (s *Store) replace(l todo.List, loadErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = l
	s.hub.publish(Event{Kind: EventLoaded, Snapshot: l.Clone(), Err: loadErr})
}

// Add appends a task with a fresh id. Text is stored as given; it is only
// trimmed to check that it is not blank.
func (s *Store) Add(text string) (todo.Task, error) {
	if strings.TrimSpace(text) == "" {
		return todo.Task{}, &ValidationError{Op: "add", Kind: KindEmptyText}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return todo.Task{}, ErrClosed
	}

	t := todo.Task{ID: s.ids.NewID(), Text: text}
	if s.tasks.Index(t.ID) >= 0 {
		return todo.Task{}, fmt.Errorf("add: id %q already in use", t.ID)
	}
	s.tasks = append(s.tasks, t)
	s.commit(Event{Kind: EventAdded, Task: t})
	return t, nil
}

// Delete removes the task with id. It reports whether a task was removed;
// an unknown id changes nothing.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	i := s.tasks.Index(id)
	if i < 0 {
		return false
	}
	t := s.tasks[i]
	s.tasks = s.tasks.Without(i)
	s.commit(Event{Kind: EventDeleted, Task: t})
	return true
}

// ToggleCompletion flips the completed flag of the task with id and
// returns the updated task.
func (s *Store) ToggleCompletion(id string) (todo.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return todo.Task{}, false
	}

	i := s.tasks.Index(id)
	if i < 0 {
		return todo.Task{}, false
	}
	s.tasks = s.tasks.Clone()
	s.tasks[i].Completed = !s.tasks[i].Completed
	t := s.tasks[i]
	s.commit(Event{Kind: EventToggled, Task: t})
	return t, true
}

// Edit replaces the text of the task with id verbatim. Blank text is
// rejected unless the store was built WithAllowEmptyEdit(true).
func (s *Store) Edit(id, text string) (todo.Task, bool, error) {
	if !s.allowEmptyEdit && strings.TrimSpace(text) == "" {
		return todo.Task{}, false, &ValidationError{Op: "edit", Kind: KindEmptyText}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return todo.Task{}, false, ErrClosed
	}

	i := s.tasks.Index(id)
	if i < 0 {
		return todo.Task{}, false, nil
	}
	s.tasks = s.tasks.Clone()
	s.tasks[i].Text = text
	t := s.tasks[i]
	s.commit(Event{Kind: EventEdited, Task: t})
	return t, true, nil
}

// commit hands the current list to the writer and notifies subscribers.
// Callers hold s.mu so snapshots reach the writer in mutation order.
func (s *Store) commit(ev Event) {
	snap := s.tasks.Clone()
	ev.Snapshot = snap

	data, err := todo.Encode(snap)
	if err != nil {
		s.logger.Error("failed to encode tasks", "err", err)
		s.hub.publish(ev)
		s.hub.publish(Event{Kind: EventPersistFailed, Snapshot: snap, Err: err})
		return
	}
	if err := s.w.submit(string(data)); err != nil {
		s.logger.Warn("write not queued", "err", err)
	}
	s.hub.publish(ev)
}

// Snapshot returns a copy of the current list.
func (s *Store) Snapshot() todo.List {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks.Clone()
}

// Get returns the task with id.
func (s *Store) Get(id string) (todo.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tasks.Get(id)
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Subscribe returns a channel of change events and a function that ends
// the subscription. Events are delivered without blocking the store: when
// the buffer is full the event is dropped for that subscriber. The channel
// is closed by the returned function or by Close.
func (s *Store) Subscribe(buffer int) (<-chan Event, func()) {
	return s.hub.subscribe(buffer)
}

// Flush waits until every write issued so far has finished. It returns
// the error of the most recent write, if it failed.
func (s *Store) Flush(ctx context.Context) error {
	return s.w.flush(ctx)
}

// Close drains pending writes, stops the writer and closes all
// subscriptions. It does not close the underlying kv.Store.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	err := s.w.close(ctx)
	s.hub.close()
	return err
}
