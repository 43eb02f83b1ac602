package navigation

import (
	"github.com/entrhq/cursornav/pkg/dom/htmldom"
	"github.com/entrhq/cursornav/pkg/eventloop"
	"github.com/entrhq/cursornav/pkg/interframe"
	"github.com/entrhq/cursornav/pkg/speech"
)

// Session runs one manager per document of a parsed page, connected by an
// in-process hub, and tracks which of them holds navigation.
type Session struct {
	hub      *interframe.Hub
	top      *Manager
	focused  *Manager
	managers []*Manager
	byDoc    map[*htmldom.Document]*Manager
}

// NewSession creates managers for doc and every document nested in it. All
// of them share sink and sched. opts are applied to each manager.
func NewSession(doc *htmldom.Document, sched eventloop.Scheduler, sink speech.Sink, settings Settings, opts ...Option) *Session {
	s := &Session{
		hub:   interframe.NewHub(),
		byDoc: make(map[*htmldom.Document]*Manager),
	}
	s.top, _ = s.add(doc, sched, sink, settings, opts)
	s.focused = s.top
	debugLog.Infof("Session for %s started with %d documents", doc.Location(), len(s.managers))
	return s
}

func (s *Session) add(doc *htmldom.Document, sched eventloop.Scheduler, sink speech.Sink, settings Settings, opts []Option) (*Manager, *interframe.Endpoint) {
	ep := s.hub.Endpoint(doc, sched)
	describer := htmldom.NewDescriber(doc)
	describer.Verbose = settings.Verbose

	all := append([]Option{
		WithSettings(settings),
		WithSink(sink),
		WithProvider(describer),
		WithTransport(ep),
	}, opts...)
	all = append(all, WithOnActivate(func(m *Manager) { s.focused = m }))

	m := New(doc, sched, all...)
	s.managers = append(s.managers, m)
	s.byDoc[doc] = m

	for _, ref := range doc.Frames() {
		_, childEP := s.add(ref.Doc, sched, sink, settings, opts)
		childEP.AttachTo(ep, ref.Element)
	}
	return m, ep
}

// Top returns the manager of the outermost document.
func (s *Session) Top() *Manager { return s.top }

// Focused returns the manager that currently holds navigation.
func (s *Session) Focused() *Manager { return s.focused }

// Managers lists all managers, outermost first.
func (s *Session) Managers() []*Manager { return s.managers }

// Manager returns the manager for doc.
func (s *Session) Manager(doc *htmldom.Document) (*Manager, bool) {
	m, ok := s.byDoc[doc]
	return m, ok
}

// Hub exposes the transport connecting the documents.
func (s *Session) Hub() *interframe.Hub { return s.hub }
