// Package navigation implements the navigation manager: the per-document
// orchestrator that owns the cursor, the shifter stack, navigation history
// and the cross-frame coordinator, and exposes the navigation verbs.
//
// A Manager is not safe for concurrent use. All calls, including the ones
// made by speech completion, reading timers and incoming cross-frame
// messages, must run on the goroutine driving its eventloop.Scheduler.
package navigation

import (
	"fmt"
	"time"

	"github.com/entrhq/cursornav/pkg/cursor"
	"github.com/entrhq/cursornav/pkg/description"
	"github.com/entrhq/cursornav/pkg/dom"
	"github.com/entrhq/cursornav/pkg/eventloop"
	"github.com/entrhq/cursornav/pkg/history"
	"github.com/entrhq/cursornav/pkg/interframe"
	"github.com/entrhq/cursornav/pkg/logging"
	"github.com/entrhq/cursornav/pkg/predicate"
	"github.com/entrhq/cursornav/pkg/shifter"
	"github.com/entrhq/cursornav/pkg/speech"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("navigation")
	if err != nil {
		debugLog.Warnf("Failed to initialize navigation logger, using stderr fallback: %v", err)
	}
}

// State is the conceptual state of a manager.
type State int

const (
	Ready     State = iota // Ready is idle with a valid cursor.
	AtPageEnd              // AtPageEnd has a wrap pending.
	Reading                // Reading is in continuous-read mode.
)

func (s State) String() string {
	switch s {
	case Ready:
		return "READY"
	case AtPageEnd:
		return "AT_PAGE_END"
	case Reading:
		return "READING"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// DefaultPollInterval is how often polling-mode reading checks the sink.
const DefaultPollInterval = time.Second

// Settings are the user preferences a manager runs with.
type Settings struct {
	Granularity       shifter.Granularity
	FrameTraversal    bool
	HistorySize       int
	HandshakeAttempts int
	PollInterval      time.Duration
	Verbose           bool
}

// DefaultSettings returns the settings used when none are given.
func DefaultSettings() Settings {
	return Settings{
		Granularity:       shifter.Object,
		FrameTraversal:    true,
		HistorySize:       history.DefaultSize,
		HandshakeAttempts: interframe.DefaultMaxAttempts,
		PollInterval:      DefaultPollInterval,
		Verbose:           true,
	}
}

// PositionRecorder receives best-effort position reports. Calls are fire
// and forget.
type PositionRecorder interface {
	RecordPosition(location string, p dom.Point)
	RecordGranularity(g int)
}

// Manager orchestrates navigation in one document.
type Manager struct {
	doc       dom.Document
	env       shifter.Env
	sched     eventloop.Scheduler
	sink      speech.Sink
	transport interframe.Transport
	preds     *predicate.Registry
	settings  Settings
	recorder  PositionRecorder
	factories []shifter.Factory

	onActivate func(*Manager)
	indicator  func(n dom.Node, p dom.Point)

	stack    *shifter.Stack
	cur      *cursor.Selection
	prev     *cursor.Selection
	reversed bool
	history  *history.History

	registry     *interframe.Registry
	replays      *interframe.ReplayWindow
	frameID      int
	hasFrameID   bool
	focused      bool
	pendingEnter map[dom.Node]string

	pageSel       *cursor.PageSelection
	selectionNote string
	pageEnd       bool
	earcons       []description.Earcon
	last          []description.Description
	utterances    int

	reading    bool
	readGen    int
	cancelPoll func()
}

// Option configures a Manager.
type Option func(*Manager)

// WithProvider sets the description provider.
func WithProvider(p description.Provider) Option {
	return func(m *Manager) {
		m.env.Provider = p
	}
}

// WithSink sets the speech and braille sink.
func WithSink(s speech.Sink) Option {
	return func(m *Manager) {
		m.sink = s
	}
}

// WithTransport enables cross-frame navigation over t. If t also
// implements interframe.Receiver, the manager installs itself as receiver.
func WithTransport(t interframe.Transport) Option {
	return func(m *Manager) {
		m.transport = t
	}
}

// WithPredicates sets the named predicate registry used by FindNext and by
// relayed searches.
func WithPredicates(r *predicate.Registry) Option {
	return func(m *Manager) {
		m.preds = r
	}
}

// WithSettings sets user preferences.
func WithSettings(s Settings) Option {
	return func(m *Manager) {
		m.settings = s
	}
}

// WithPositionRecorder sets where positions and granularity are persisted.
func WithPositionRecorder(r PositionRecorder) Option {
	return func(m *Manager) {
		m.recorder = r
	}
}

// WithShifterFactories replaces the strategy match order.
func WithShifterFactories(factories ...shifter.Factory) Option {
	return func(m *Manager) {
		m.factories = factories
	}
}

// WithOnActivate sets a callback run when this manager takes over
// navigation from another frame.
func WithOnActivate(fn func(*Manager)) Option {
	return func(m *Manager) {
		m.onActivate = fn
	}
}

// WithIndicator sets a callback that shows where the cursor is.
func WithIndicator(fn func(n dom.Node, p dom.Point)) Option {
	return func(m *Manager) {
		m.indicator = fn
	}
}

// New creates a manager for doc. Asynchronous work is posted to sched.
func New(doc dom.Document, sched eventloop.Scheduler, opts ...Option) *Manager {
	m := &Manager{
		doc:          doc,
		env:          shifter.Env{Doc: doc, Root: doc.Root()},
		sched:        sched,
		settings:     DefaultSettings(),
		factories:    shifter.DefaultFactories,
		pendingEnter: make(map[dom.Node]string),
		focused:      !doc.IsNested(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.sink == nil {
		m.sink = silentSink{}
	}
	if m.preds == nil {
		m.preds = predicate.Default()
	}
	if m.settings.PollInterval <= 0 {
		m.settings.PollInterval = DefaultPollInterval
	}

	root := shifter.NewNavigationShifter(m.env)
	root.SetGranularity(int(m.settings.Granularity))
	m.stack = shifter.NewStack(root)
	m.history = history.New(m.settings.HistorySize, history.DocumentValidator(doc))
	m.registry = interframe.NewRegistry(m.settings.HandshakeAttempts)
	m.replays = interframe.NewReplayWindow(interframe.DefaultReplayWindow)

	if r, ok := m.transport.(interframe.Receiver); ok {
		r.SetReceiver(m.HandleMessage)
	}

	if sel := cursor.FromActiveElement(doc); sel != nil {
		if synced := root.Sync(sel); synced != nil {
			m.setCursor(synced)
		}
	}

	debugLog.Debugf("Navigation manager created for %s (nested=%v, granularity=%s)",
		doc.Location(), doc.IsNested(), m.settings.Granularity)
	return m
}

// Document returns the document this manager navigates.
func (m *Manager) Document() dom.Document { return m.doc }

// Stack exposes the shifter stack.
func (m *Manager) Stack() *shifter.Stack { return m.stack }

// History exposes the navigation history.
func (m *Manager) History() *history.History { return m.history }

// Registry exposes the child frame registry.
func (m *Manager) Registry() *interframe.Registry { return m.registry }

// Settings returns the settings in effect.
func (m *Manager) Settings() Settings { return m.settings }

// CurrentSelection returns a copy of the cursor, or nil before the first move.
func (m *Manager) CurrentSelection() *cursor.Selection { return m.cur.Clone() }

// PreviousSelection returns a copy of the cursor before the last move.
func (m *Manager) PreviousSelection() *cursor.Selection { return m.prev.Clone() }

// Granularity returns the active shifter's granularity.
func (m *Manager) Granularity() int { return m.stack.Active().Granularity() }

// GranularityName names the active shifter's granularity.
func (m *Manager) GranularityName() string { return m.stack.Active().GranularityName() }

// HasFocus reports whether this manager currently owns navigation, as
// opposed to having handed it to a frame or its parent.
func (m *Manager) HasFocus() bool { return m.focused }

// FrameID returns the id assigned by the parent document, if any.
func (m *Manager) FrameID() (int, bool) { return m.frameID, m.hasFrameID }

// LastDescriptions returns the most recent output of this manager.
func (m *Manager) LastDescriptions() []description.Description { return m.last }

// Utterances counts the outputs produced so far, so callers can tell
// whether a command said anything.
func (m *Manager) Utterances() int { return m.utterances }

// State returns the conceptual state.
func (m *Manager) State() State {
	switch {
	case m.reading:
		return Reading
	case m.pageEnd:
		return AtPageEnd
	}
	return Ready
}

// IsReading reports whether continuous reading is engaged.
func (m *Manager) IsReading() bool { return m.reading }

// AtPageEnd reports whether a wrap is pending.
func (m *Manager) AtPageEnd() bool { return m.pageEnd }

// IsReversed reports the direction of travel.
func (m *Manager) IsReversed() bool { return m.reversed }

// SetReversed sets the direction of travel.
func (m *Manager) SetReversed(reversed bool) {
	m.reversed = reversed
	if m.cur != nil {
		m.cur = m.cur.Clone().SetReversed(reversed)
	}
}

// setCursor replaces the cursor, keeping the old one for descriptions.
func (m *Manager) setCursor(sel *cursor.Selection) {
	if sel == nil {
		return
	}
	m.prev = m.cur
	m.cur = sel.Clone().SetReversed(m.reversed)
	m.history.Update(m.cur.Node())
}

// Sync re-derives the cursor from the active shifter.
func (m *Manager) Sync() {
	if m.cur == nil {
		return
	}
	if sel := m.stack.Active().Sync(m.cur); sel != nil {
		m.setCursor(sel)
	}
}

// SyncAll syncs the cursor, moves focus to it and updates the indicator.
func (m *Manager) SyncAll() {
	m.Sync()
	if m.cur == nil {
		return
	}
	if n := focusableAncestor(m.cur.Node()); n != nil {
		m.doc.Focus(n)
	}
	m.updateIndicator()
}

// SyncToBeginning moves the cursor to the first unit in the direction of
// travel.
func (m *Manager) SyncToBeginning() {
	if sel := m.stack.Active().Begin(m.reversed); sel != nil {
		m.setCursor(sel)
	}
}

// SyncToNode moves the cursor onto n with the default shifter, cancelling
// a pending wrap.
func (m *Manager) SyncToNode(n dom.Node) bool {
	if n == nil || !m.doc.IsAttached(n) {
		return false
	}
	m.pageEnd = false
	m.stack.Reset()
	sel := m.stack.Root().Sync(cursor.FromNode(n).SetReversed(m.reversed))
	if sel == nil {
		return false
	}
	m.setCursor(sel)
	return true
}

func focusableAncestor(n dom.Node) dom.Node {
	return dom.Ancestor(n, func(c dom.Node) bool {
		switch c.Name() {
		case "a":
			return dom.HasAttr(c, "href")
		case "input", "button", "select", "textarea", "iframe":
			return true
		}
		return dom.HasAttr(c, "tabindex")
	})
}

// silentSink discards output.
type silentSink struct{}

func (silentSink) Speak([]description.Description, speech.QueueMode, func()) {}
func (silentSink) Stop()                                                     {}
func (silentSink) IsSpeaking() bool                                          { return false }
func (silentSink) HasCompletionCallback() bool                               { return false }
func (silentSink) WriteBraille(description.Braille)                          {}
