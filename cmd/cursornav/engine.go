package main

import (
	"github.com/entrhq/cursornav/pkg/commands"
	"github.com/entrhq/cursornav/pkg/eventloop"
	"github.com/entrhq/cursornav/pkg/navigation"
	"github.com/entrhq/cursornav/pkg/speech"
)

// engine owns the navigation session. Every call into it runs on the loop
// goroutine; other goroutines post work with do.
type engine struct {
	loop       *eventloop.Loop
	session    *navigation.Session
	dispatcher *commands.Dispatcher
}

func newEngine(s *setup, newSink func(eventloop.Scheduler) speech.Sink) *engine {
	loop := eventloop.New()

	opts := []navigation.Option{navigation.WithPredicates(s.preds)}
	if s.recorder != nil {
		opts = append(opts, navigation.WithPositionRecorder(s.recorder))
	}
	session := navigation.NewSession(s.doc, loop, newSink(loop), s.settings, opts...)

	return &engine{
		loop:       loop,
		session:    session,
		dispatcher: commands.NewDispatcher(session.Focused),
	}
}

// do runs fn on the engine goroutine.
func (e *engine) do(fn func()) {
	e.loop.Post(fn)
}
