package todo

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ID schemes.
const (
	SchemeTimestamp = "timestamp"
	SchemeUUID7     = "uuid7"
)

// IDGenerator issues task ids.
type IDGenerator interface {
	// NewID returns an id that this generator has not issued before.
	NewID() string
	// Observe records an id that already exists (e.g. loaded from storage)
	// so it is never issued again.
	Observe(id string)
}

// NewIDGenerator returns the generator for the named scheme.
func NewIDGenerator(scheme string) (IDGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case "", SchemeTimestamp:
		return NewTimestampIDs(nil), nil
	case SchemeUUID7:
		return UUIDv7IDs{}, nil
	}
	return nil, fmt.Errorf("unknown id scheme %q, must be one of: %s, %s", scheme, SchemeTimestamp, SchemeUUID7)
}

// maxTimestampID is the last millisecond of year 9999. Observed ids above it
// cannot collide with an issued timestamp and are ignored, so last+1 never
// overflows.
var maxTimestampID = time.Date(9999, 12, 31, 23, 59, 59, 999e6, time.UTC).UnixMilli()

// TimestampIDs issues decimal Unix milliseconds. Successive ids strictly
// increase: a stalled or rewound clock yields last+1.
type TimestampIDs struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewTimestampIDs creates a generator reading the given clock.
// A nil clock means time.Now.
func NewTimestampIDs(now func() time.Time) *TimestampIDs {
	if now == nil {
		now = time.Now
	}
	return &TimestampIDs{now: now}
}

// NewID implements IDGenerator.
func (g *TimestampIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}

// Observe implements IDGenerator. Non-numeric ids and numbers past
// maxTimestampID are ignored; they can never collide with an issued id.
func (g *TimestampIDs) Observe(id string) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n > maxTimestampID {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if n > g.last {
		g.last = n
	}
}

// UUIDv7IDs issues time-ordered UUIDs.
type UUIDv7IDs struct{}

// NewID implements IDGenerator.
func (UUIDv7IDs) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Observe implements IDGenerator.
func (UUIDv7IDs) Observe(string) {}
