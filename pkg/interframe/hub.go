package interframe

import (
	"errors"
	"fmt"
	"sync"

	"github.com/entrhq/cursornav/pkg/dom"
	"github.com/entrhq/cursornav/pkg/eventloop"
)

// ErrNoRoute is returned when a message has nowhere to go. The message is
// dropped, as a postMessage into a frame without a listener would be.
var ErrNoRoute = errors.New("no route for cross-frame message")

// Transport delivers encoded messages one way, without waiting for a reply.
type Transport interface {
	PostToChild(frame dom.Node, data []byte) error
	PostToParent(data []byte) error
}

// Receiver is implemented by transports that deliver incoming messages to a
// handler installed after construction.
type Receiver interface {
	SetReceiver(fn func(data []byte))
}

// Envelope records one message passed through a Hub.
type Envelope struct {
	From    string
	To      string
	Data    []byte
	Dropped bool
}

// Hub routes messages between the engine instances of one page. Each
// document gets an Endpoint; delivery is posted to the receiving endpoint's
// scheduler so it never re-enters the sender.
type Hub struct {
	mu  sync.Mutex
	log []Envelope
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// Endpoint creates the transport for doc. Incoming messages run on sched.
func (h *Hub) Endpoint(doc dom.Document, sched eventloop.Scheduler) *Endpoint {
	return &Endpoint{
		hub:      h,
		name:     doc.Location(),
		sched:    sched,
		children: make(map[dom.Node]*Endpoint),
	}
}

// Log returns every message routed so far.
func (h *Hub) Log() []Envelope {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Envelope(nil), h.log...)
}

// Sent decodes the routed messages with the given command, dropped or not.
func (h *Hub) Sent(cmd Command) []Message {
	var out []Message
	for _, env := range h.Log() {
		m, err := Decode(env.Data)
		if err == nil && m.Command == cmd {
			out = append(out, m)
		}
	}
	return out
}

func (h *Hub) record(env Envelope) {
	h.mu.Lock()
	h.log = append(h.log, env)
	h.mu.Unlock()
}

// Endpoint is one document's Transport.
type Endpoint struct {
	hub      *Hub
	name     string
	sched    eventloop.Scheduler
	parent   *Endpoint
	children map[dom.Node]*Endpoint
	mu       sync.Mutex
	receive  func(data []byte)
}

// AttachTo links e as the document hosted by frame inside parent.
func (e *Endpoint) AttachTo(parent *Endpoint, frame dom.Node) {
	parent.mu.Lock()
	parent.children[frame] = e
	parent.mu.Unlock()
	e.parent = parent
}

// Detach unlinks the child hosted by frame, so messages to it are dropped.
func (e *Endpoint) Detach(frame dom.Node) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if child, ok := e.children[frame]; ok {
		child.parent = nil
		delete(e.children, frame)
	}
}

// SetReceiver implements Receiver.
func (e *Endpoint) SetReceiver(fn func(data []byte)) {
	e.mu.Lock()
	e.receive = fn
	e.mu.Unlock()
}

// PostToChild implements Transport.
func (e *Endpoint) PostToChild(frame dom.Node, data []byte) error {
	e.mu.Lock()
	child := e.children[frame]
	e.mu.Unlock()
	if child == nil {
		e.hub.record(Envelope{From: e.name, To: fmt.Sprint(frame), Data: data, Dropped: true})
		return fmt.Errorf("%w: %s has no document behind %v", ErrNoRoute, e.name, frame)
	}
	return e.deliver(child, data)
}

// PostToParent implements Transport.
func (e *Endpoint) PostToParent(data []byte) error {
	if e.parent == nil {
		e.hub.record(Envelope{From: e.name, Data: data, Dropped: true})
		return fmt.Errorf("%w: %s has no parent", ErrNoRoute, e.name)
	}
	return e.deliver(e.parent, data)
}

func (e *Endpoint) deliver(to *Endpoint, data []byte) error {
	msg := append([]byte(nil), data...)
	to.mu.Lock()
	receive := to.receive
	to.mu.Unlock()

	e.hub.record(Envelope{From: e.name, To: to.name, Data: msg, Dropped: receive == nil})
	if receive == nil {
		return fmt.Errorf("%w: %s is not listening", ErrNoRoute, to.name)
	}
	to.sched.Post(func() { receive(msg) })
	return nil
}
