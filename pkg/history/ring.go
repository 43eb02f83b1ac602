package history

import "sync"

// RingBuffer is a fixed-capacity circular buffer that overwrites its oldest
// entry when full.
type RingBuffer[T any] struct {
	buffer []T
	head   int
	tail   int
	size   int
	cap    int
	mu     sync.RWMutex
}

// NewRingBuffer creates a ring buffer holding at most capacity items.
func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer[T]{
		buffer: make([]T, capacity),
		cap:    capacity,
	}
}

// Add inserts an item, evicting the oldest when full.
func (rb *RingBuffer[T]) Add(item T) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.buffer[rb.head] = item
	rb.head = (rb.head + 1) % rb.cap

	if rb.size < rb.cap {
		rb.size++
	} else {
		rb.tail = (rb.tail + 1) % rb.cap
	}
}

// Newest returns the most recently added item.
func (rb *RingBuffer[T]) Newest() (T, bool) {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	var zero T
	if rb.size == 0 {
		return zero, false
	}
	return rb.buffer[(rb.head-1+rb.cap)%rb.cap], true
}

// PopNewest removes and returns the most recently added item.
func (rb *RingBuffer[T]) PopNewest() (T, bool) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	var zero T
	if rb.size == 0 {
		return zero, false
	}
	rb.head = (rb.head - 1 + rb.cap) % rb.cap
	item := rb.buffer[rb.head]
	rb.buffer[rb.head] = zero
	rb.size--
	return item, true
}

// GetAll returns all items oldest first.
func (rb *RingBuffer[T]) GetAll() []T {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if rb.size == 0 {
		return nil
	}

	result := make([]T, rb.size)
	for i := 0; i < rb.size; i++ {
		idx := (rb.tail + i) % rb.cap
		result[i] = rb.buffer[idx]
	}
	return result
}

// Len returns the number of items held.
func (rb *RingBuffer[T]) Len() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.size
}

// Cap returns the capacity.
func (rb *RingBuffer[T]) Cap() int {
	return rb.cap
}
