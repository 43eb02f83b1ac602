package interframe

import "sync"

// DefaultReplayWindow is how many recent nonces a ReplayWindow remembers.
const DefaultReplayWindow = 64

// ReplayWindow remembers the nonces of recently handled messages so a
// message delivered twice is only acted on once.
type ReplayWindow struct {
	mu   sync.Mutex
	seen map[string]bool
	ring []string
	next int
}

// NewReplayWindow remembers up to size nonces; values below 1 mean
// DefaultReplayWindow.
func NewReplayWindow(size int) *ReplayWindow {
	if size < 1 {
		size = DefaultReplayWindow
	}
	return &ReplayWindow{seen: make(map[string]bool, size), ring: make([]string, size)}
}

// Seen records nonce and reports whether it was already recorded. Empty
// nonces are never treated as repeats.
func (w *ReplayWindow) Seen(nonce string) bool {
	if nonce == "" {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.seen[nonce] {
		return true
	}
	if old := w.ring[w.next]; old != "" {
		delete(w.seen, old)
	}
	w.ring[w.next] = nonce
	w.seen[nonce] = true
	w.next = (w.next + 1) % len(w.ring)
	return false
}
