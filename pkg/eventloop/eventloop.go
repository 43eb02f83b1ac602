// Package eventloop serialises engine work onto a single goroutine. Every
// asynchronous re-entry into the navigation engine (speech completion, poll
// ticks, cross-frame messages) is posted here rather than called directly,
// so no verb is ever re-entered while another is running.
package eventloop

import (
	"context"
	"sync"
	"time"

	"github.com/entrhq/cursornav/pkg/logging"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("eventloop")
	if err != nil {
		debugLog.Warnf("Failed to initialize eventloop logger, using stderr fallback: %v", err)
	}
}

// Scheduler queues work for later execution on the engine goroutine.
type Scheduler interface {
	// Post queues fn to run after the current task finishes.
	Post(fn func())

	// After queues fn to run once d has elapsed. The returned function
	// cancels it if it has not run yet.
	After(d time.Duration, fn func()) (cancel func())
}

// Loop is a Scheduler backed by a goroutine running Run.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
}

// New creates a loop. Tasks posted before Run starts are kept.
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post implements Scheduler. It never blocks.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// After implements Scheduler.
func (l *Loop) After(d time.Duration, fn func()) func() {
	var once sync.Once
	cancelled := make(chan struct{})
	timer := time.AfterFunc(d, func() {
		l.Post(func() {
			select {
			case <-cancelled:
			default:
				fn()
			}
		})
	})
	return func() {
		once.Do(func() {
			close(cancelled)
			timer.Stop()
		})
	}
}

// Run executes posted tasks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	debugLog.Debugf("Event loop started")
	for {
		for _, fn := range l.drain() {
			fn()
		}
		select {
		case <-ctx.Done():
			debugLog.Debugf("Event loop stopped: %v", ctx.Err())
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) drain() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	tasks := l.pending
	l.pending = nil
	return tasks
}

// Manual is a Scheduler driven explicitly by tests: posted tasks run on
// RunPending and timers fire as Advance moves a fake clock.
type Manual struct {
	now     time.Duration
	seq     int
	pending []func()
	timers  []*manualTimer
}

type manualTimer struct {
	at        time.Duration
	seq       int
	fn        func()
	cancelled bool
}

// NewManual creates a manual scheduler at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Post implements Scheduler.
func (m *Manual) Post(fn func()) {
	m.pending = append(m.pending, fn)
}

// After implements Scheduler.
func (m *Manual) After(d time.Duration, fn func()) func() {
	m.seq++
	t := &manualTimer{at: m.now + d, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return func() { t.cancelled = true }
}

// RunPending runs posted tasks, including ones they post, until none are
// left. It returns the number of tasks run.
func (m *Manual) RunPending() int {
	count := 0
	for len(m.pending) > 0 {
		fn := m.pending[0]
		m.pending = m.pending[1:]
		fn()
		count++
	}
	return count
}

// Advance moves the clock forward by d, firing due timers in order and
// running the tasks they post.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	m.RunPending()
	for {
		next := m.nextTimer(target)
		if next == nil {
			break
		}
		m.now = next.at
		next.cancelled = true
		next.fn()
		m.RunPending()
	}
	m.now = target
}

// Now returns the elapsed fake time.
func (m *Manual) Now() time.Duration {
	return m.now
}

// Pending returns the number of queued tasks plus live timers.
func (m *Manual) Pending() int {
	live := 0
	for _, t := range m.timers {
		if !t.cancelled {
			live++
		}
	}
	return len(m.pending) + live
}

func (m *Manual) nextTimer(limit time.Duration) *manualTimer {
	var best *manualTimer
	kept := m.timers[:0]
	for _, t := range m.timers {
		if t.cancelled {
			continue
		}
		kept = append(kept, t)
		if t.at > limit {
			continue
		}
		if best == nil || t.at < best.at || (t.at == best.at && t.seq < best.seq) {
			best = t
		}
	}
	m.timers = kept
	return best
}
