// Package speech defines the output sink the navigation engine speaks and
// brailles through, plus a text sink that renders utterances to a writer.
package speech

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/entrhq/cursornav/pkg/description"
	"github.com/entrhq/cursornav/pkg/eventloop"
)

// QueueMode says how an utterance interacts with speech already in progress.
type QueueMode int

const (
	Flush QueueMode = iota // Flush interrupts current speech.
	Queue                  // Queue speaks after current speech finishes.
)

func (q QueueMode) String() string {
	switch q {
	case Flush:
		return "flush"
	case Queue:
		return "queue"
	}
	return fmt.Sprintf("QueueMode(%d)", int(q))
}

// Sink renders spoken and braille output.
type Sink interface {
	// Speak utters descs. onComplete, when non-nil and supported, is called
	// once the utterance has finished.
	Speak(descs []description.Description, mode QueueMode, onComplete func())

	// Stop aborts speech in progress and drops queued utterances.
	Stop()

	IsSpeaking() bool

	// HasCompletionCallback reports whether Speak ever calls onComplete.
	HasCompletionCallback() bool

	WriteBraille(b description.Braille)
}

// Render formats an utterance as one line, earcons in brackets first.
func Render(descs []description.Description) string {
	var earcons []string
	for _, d := range descs {
		for _, e := range d.Earcons {
			earcons = append(earcons, "["+string(e)+"]")
		}
	}
	text := description.Join(descs)
	if len(earcons) == 0 {
		return text
	}
	if text == "" {
		return strings.Join(earcons, " ")
	}
	return strings.Join(earcons, " ") + " " + text
}

// TextSink writes each utterance as a line. With a scheduler it supports
// completion callbacks, delivered as posted tasks after the line is written.
type TextSink struct {
	mu        sync.Mutex
	w         io.Writer
	braille   io.Writer
	scheduler eventloop.Scheduler
	stopped   int
	spoken    []string
}

// NewTextSink creates a sink writing speech to w. A nil scheduler disables
// completion callbacks. braille may be nil.
func NewTextSink(w, braille io.Writer, scheduler eventloop.Scheduler) *TextSink {
	return &TextSink{w: w, braille: braille, scheduler: scheduler}
}

// Speak implements Sink.
func (s *TextSink) Speak(descs []description.Description, mode QueueMode, onComplete func()) {
	line := Render(descs)
	s.mu.Lock()
	s.spoken = append(s.spoken, line)
	if s.w != nil {
		fmt.Fprintln(s.w, line)
	}
	s.mu.Unlock()

	if onComplete != nil && s.scheduler != nil {
		s.scheduler.Post(onComplete)
	}
}

// Stop implements Sink. Text output is instantaneous, so there is never
// anything to abort.
func (s *TextSink) Stop() {
	s.mu.Lock()
	s.stopped++
	s.mu.Unlock()
}

// IsSpeaking implements Sink.
func (s *TextSink) IsSpeaking() bool { return false }

// HasCompletionCallback implements Sink.
func (s *TextSink) HasCompletionCallback() bool { return s.scheduler != nil }

// WriteBraille implements Sink.
func (s *TextSink) WriteBraille(b description.Braille) {
	if s.braille == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.braille, "⠿ %s\n", b.Text)
}

// Spoken returns every line spoken so far.
func (s *TextSink) Spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}

// Stops returns how many times Stop was called.
func (s *TextSink) Stops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}
