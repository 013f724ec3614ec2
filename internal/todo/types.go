// Package todo defines task records and their persisted representation.
package todo

import (
	"fmt"
	"strings"
)

// Task is a single to-do item.
type Task struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// IsZero returns true if the task is empty (has no ID).
func (t *Task) IsZero() bool {
	return t.ID == ""
}

// State returns the task's lifecycle state label.
func (t Task) State() string {
	if t.Completed {
		return "completed"
	}
	return "active"
}

// List is an insertion-ordered sequence of tasks.
type List []Task

// Index returns the position of the task with the given id, or -1.
func (l List) Index(id string) int {
	for i := range l {
		if l[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns the task with the given id.
func (l List) Get(id string) (Task, bool) {
	if i := l.Index(id); i >= 0 {
		return l[i], true
	}
	return Task{}, false
}

// Clone returns a copy that shares no backing array with l.
// A nil list clones to an empty, non-nil list so it encodes as [].
func (l List) Clone() List {
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Without returns a copy of l with the task at index i removed.
func (l List) Without(i int) List {
	out := make(List, 0, len(l)-1)
	out = append(out, l[:i]...)
	return append(out, l[i+1:]...)
}

// Counts returns the number of active and completed tasks.
func (l List) Counts() (active, completed int) {
	for _, t := range l {
		if t.Completed {
			completed++
		} else {
			active++
		}
	}
	return active, completed
}

// Filter selects which tasks a listing shows.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter parses a filter name. Empty means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterActive, "open":
		return FilterActive, nil
	case FilterCompleted, "done":
		return FilterCompleted, nil
	}
	return "", fmt.Errorf("invalid filter %q, must be one of: all, active, completed", s)
}

// Match reports whether t passes the filter.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}
