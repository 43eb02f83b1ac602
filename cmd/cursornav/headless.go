package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/entrhq/cursornav/pkg/cursor"
	"github.com/entrhq/cursornav/pkg/eventloop"
	"github.com/entrhq/cursornav/pkg/logging"
	"github.com/entrhq/cursornav/pkg/navigation"
	"github.com/entrhq/cursornav/pkg/speech"
)

const readerCheckInterval = 50 * time.Millisecond

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("cursornav")
	if err != nil {
		debugLog.Warnf("Failed to initialize cursornav logger, using stderr fallback: %v", err)
	}
}

// runHeadless reads the page from the top, through its frames, to the end
// and writes every utterance to w.
func runHeadless(ctx context.Context, s *setup, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e := newEngine(s, func(sched eventloop.Scheduler) speech.Sink {
		return speech.NewTextSink(w, nil, sched)
	})
	r := &reader{e: e, done: cancel}
	e.do(r.start)

	err := e.loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		if r.finished {
			return nil
		}
		return fmt.Errorf("reading interrupted")
	}
	return err
}

// reader keeps continuous reading going across frame hand-offs: each
// manager stops reading when navigation moves to another document, and the
// reader resumes in whichever document holds focus next.
type reader struct {
	e        *engine
	done     func()
	finished bool

	lastManager *navigation.Manager
	lastSel     *cursor.Selection
}

func (r *reader) start() {
	top := r.e.session.Top()
	if !top.Navigate() {
		r.finish()
		return
	}
	if top.HasFocus() {
		top.StartReading(speech.Flush)
	}
	r.schedule()
}

func (r *reader) check() {
	m := r.e.session.Focused()
	switch {
	case m.IsReading():
	case m.AtPageEnd():
		r.finish()
		return
	default:
		r.resume(m)
		if r.finished {
			return
		}
	}
	r.schedule()
}

func (r *reader) resume(m *navigation.Manager) {
	if m == r.lastManager && r.lastSel != nil && r.lastSel.SameRange(m.CurrentSelection()) {
		debugLog.Warnf("Reading stalled in %s", m.Document().Location())
		r.finish()
		return
	}
	r.lastManager, r.lastSel = m, m.CurrentSelection()

	if !m.Navigate() {
		if m.AtPageEnd() {
			m.AnnouncePageEnd(speech.Queue)
		}
		r.finish()
		return
	}
	if m.HasFocus() {
		m.StartReading(speech.Queue)
	}
}

func (r *reader) schedule() {
	r.e.loop.After(readerCheckInterval, r.check)
}

func (r *reader) finish() {
	r.finished = true
	r.done()
}
