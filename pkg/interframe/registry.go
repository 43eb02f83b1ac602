// Package interframe carries navigation across frame boundaries: it numbers
// child frames, encodes the messages exchanged between engine instances of
// nested documents, and delivers them in-process through a Hub.
package interframe

import (
	"sync"

	"github.com/entrhq/cursornav/pkg/dom"
	"github.com/entrhq/cursornav/pkg/logging"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("interframe")
	if err != nil {
		debugLog.Warnf("Failed to initialize interframe logger, using stderr fallback: %v", err)
	}
}

// DefaultMaxAttempts is how many handshakes a frame gets before it is
// treated as unreachable.
const DefaultMaxAttempts = 5

// Registry maps child frame elements to numeric ids and tracks the id
// handshake with each of them.
type Registry struct {
	mu          sync.Mutex
	nextID      int
	ids         map[dom.Node]int
	frames      map[int]dom.Node
	acked       map[int]bool
	attempts    map[int]int
	maxAttempts int
}

// NewRegistry creates a registry allowing maxAttempts handshakes per frame;
// values below 1 mean DefaultMaxAttempts.
func NewRegistry(maxAttempts int) *Registry {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Registry{
		ids:         make(map[dom.Node]int),
		frames:      make(map[int]dom.Node),
		acked:       make(map[int]bool),
		attempts:    make(map[int]int),
		maxAttempts: maxAttempts,
	}
}

// IDFor returns the id of frame, assigning the next one if it has none.
func (r *Registry) IDFor(frame dom.Node) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.ids[frame]; ok {
		return id
	}
	r.nextID++
	r.ids[frame] = r.nextID
	r.frames[r.nextID] = frame
	return r.nextID
}

// Lookup returns the id of frame if one was assigned.
func (r *Registry) Lookup(frame dom.Node) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.ids[frame]
	return id, ok
}

// Frame resolves an id back to its frame element.
func (r *Registry) Frame(id int) (dom.Node, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.frames[id]
	return f, ok
}

// Acknowledge marks the handshake for id complete. Unknown ids are ignored.
func (r *Registry) Acknowledge(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.frames[id]; !ok {
		return false
	}
	r.acked[id] = true
	return true
}

// IsAcknowledged reports whether frame completed its handshake.
func (r *Registry) IsAcknowledged(frame dom.Node) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.ids[frame]
	return ok && r.acked[id]
}

// RecordAttempt counts a handshake sent to frame and returns the total.
func (r *Registry) RecordAttempt(frame dom.Node) int {
	id := r.IDFor(frame)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[id]++
	if r.attempts[id] == r.maxAttempts {
		debugLog.Infof("Frame %d reached %d unacknowledged handshakes, treating it as unreachable", id, r.maxAttempts)
	}
	return r.attempts[id]
}

// Attempts returns the number of handshakes sent to frame.
func (r *Registry) Attempts(frame dom.Node) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.ids[frame]
	if !ok {
		return 0
	}
	return r.attempts[id]
}

// IsUnreachable reports whether frame used up its handshakes without
// acknowledging any.
func (r *Registry) IsUnreachable(frame dom.Node) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.ids[frame]
	return ok && !r.acked[id] && r.attempts[id] >= r.maxAttempts
}

// MaxAttempts returns the handshake cap.
func (r *Registry) MaxAttempts() int {
	return r.maxAttempts
}
