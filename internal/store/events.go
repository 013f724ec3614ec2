package store

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/todo"
)

// EventKind identifies what changed.
type EventKind int

// Event kinds.
const (
	EventLoaded EventKind = iota + 1
	EventAdded
	EventDeleted
	EventToggled
	EventEdited
	EventPersistFailed
)

func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventAdded:
		return "added"
	case EventDeleted:
		return "deleted"
	case EventToggled:
		return "toggled"
	case EventEdited:
		return "edited"
	case EventPersistFailed:
		return "persist_failed"
	}
	return "unknown"
}

// Event is a change notification. Snapshot is the list after the change
// and is shared between subscribers; treat it as read-only. Task is the
// affected task for add, delete, toggle and edit. Err is set for
// EventPersistFailed and for an EventLoaded that fell back to empty.
type Event struct {
	Kind     EventKind
	Task     todo.Task
	Snapshot todo.List
	Err      error
}

type hub struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	next   int
	closed bool
	logger *log.Logger
}

func newHub(logger *log.Logger) *hub {
	return &hub{subs: make(map[int]chan Event), logger: logger}
}

func (h *hub) subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.next
	h.next++
	h.subs[id] = ch

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
}

// publish never blocks: a subscriber with a full buffer misses the event.
func (h *hub) publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.logger.Debug("dropped event for slow subscriber", "event", ev.Kind, "subscriber", id)
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
