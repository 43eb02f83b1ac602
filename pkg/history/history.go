// Package history keeps a bounded log of recently visited nodes so the
// cursor can be recovered when the node under it disappears.
package history

import "github.com/entrhq/cursornav/pkg/dom"

// DefaultSize is the history bound used when none is configured.
const DefaultSize = 25

// Validator reports whether a node is still a usable navigation target.
type Validator func(n dom.Node) bool

// DocumentValidator accepts nodes that are attached to doc and visible.
func DocumentValidator(doc dom.Document) Validator {
	return func(n dom.Node) bool {
		return n != nil && doc.IsAttached(n) && doc.IsVisible(n)
	}
}

// RevertResult is the outcome of Revert.
type RevertResult struct {
	// Current is the recovered node, or nil when history held nothing usable.
	Current dom.Node

	// Previous is the newest entry at the time of the call, usually the node
	// that just became invalid.
	Previous dom.Node
}

// History is a size-bounded log of valid nodes, newest last.
type History struct {
	entries *RingBuffer[dom.Node]
	valid   Validator
}

// New creates a history holding at most size nodes.
func New(size int, valid Validator) *History {
	if size < 1 {
		size = DefaultSize
	}
	return &History{entries: NewRingBuffer[dom.Node](size), valid: valid}
}

// Update records n as the last known good node. Repeating the newest entry
// is a no-op.
func (h *History) Update(n dom.Node) {
	if n == nil {
		return
	}
	if newest, ok := h.entries.Newest(); ok && newest == n {
		return
	}
	h.entries.Add(n)
}

// BecomeInvalid reports whether n is no longer a valid navigation target.
func (h *History) BecomeInvalid(n dom.Node) bool {
	return n == nil || !h.valid(n)
}

// Revert drops entries newest first until one is valid and satisfies pred
// (any valid node when pred is nil). The recovered node stays in history.
func (h *History) Revert(pred func(dom.Node) bool) RevertResult {
	var res RevertResult
	res.Previous, _ = h.entries.Newest()
	for {
		n, ok := h.entries.PopNewest()
		if !ok {
			return res
		}
		if h.valid(n) && (pred == nil || pred(n)) {
			h.entries.Add(n)
			res.Current = n
			return res
		}
	}
}

// Nodes returns the recorded nodes oldest first.
func (h *History) Nodes() []dom.Node {
	return h.entries.GetAll()
}

// Len returns the number of recorded nodes.
func (h *History) Len() int {
	return h.entries.Len()
}

// Size returns the configured bound.
func (h *History) Size() int {
	return h.entries.Cap()
}
