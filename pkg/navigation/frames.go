package navigation

import (
	"github.com/entrhq/cursornav/pkg/dom"
	"github.com/entrhq/cursornav/pkg/interframe"
	"github.com/entrhq/cursornav/pkg/shifter"
	"github.com/entrhq/cursornav/pkg/speech"
)

type frameResult int

const (
	frameSkipped frameResult = iota
	framePending
	frameEntered
)

func (m *Manager) canTraverse() bool {
	return m.transport != nil && m.settings.FrameTraversal
}

func (m *Manager) canExit() bool {
	return m.canTraverse() && m.hasFrameID && m.doc.IsNested()
}

// tryEnterFrame hands navigation to the document behind frame. An
// unacknowledged frame gets another id handshake until the attempt cap is
// reached, after which it is skipped.
func (m *Manager) tryEnterFrame(frame dom.Node, findNext string) frameResult {
	if m.registry.IsUnreachable(frame) {
		debugLog.Debugf("Skipping unreachable frame %v in %s", frame, m.doc.Location())
		return frameSkipped
	}

	id := m.registry.IDFor(frame)
	if m.registry.IsAcknowledged(frame) {
		m.postEnter(frame, id, findNext)
		return frameEntered
	}

	attempt := m.registry.RecordAttempt(frame)
	m.pendingEnter[frame] = findNext
	debugLog.Debugf("Assigning id %d to frame in %s (attempt %d/%d)", id, m.doc.Location(), attempt, m.registry.MaxAttempts())
	m.postToChild(frame, interframe.NewAssignID(id))
	return framePending
}

// awaitingFrame reports whether the cursor rests on a frame whose id
// handshake is still in flight.
func (m *Manager) awaitingFrame() bool {
	if m.cur == nil {
		return false
	}
	_, ok := m.pendingEnter[m.cur.Node()]
	return ok
}

func (m *Manager) postEnter(frame dom.Node, id int, findNext string) {
	delete(m.pendingEnter, frame)
	m.ClearPageSelection()
	m.StopReading(false)
	m.focused = false
	m.postToChild(frame, interframe.NewEnterIframe(id, m.handoffState(), findNext))
}

// exitFrame hands navigation back to the parent document.
func (m *Manager) exitFrame(findNext string) {
	m.ClearPageSelection()
	m.StopReading(false)
	m.focused = false
	m.postToParent(interframe.NewExitIframe(m.frameID, m.handoffState(), findNext))
}

func (m *Manager) postToParent(msg interframe.Message) {
	data, err := msg.Encode()
	if err != nil {
		debugLog.Errorf("Failed to encode %s from frame %d: %v", msg.Command, m.frameID, err)
		return
	}
	if err := m.transport.PostToParent(data); err != nil {
		debugLog.Warnf("%s %s from frame %d not delivered: %v", msg.Command, msg.Nonce, m.frameID, err)
		return
	}
	debugLog.Debugf("Sent %s %s from frame %d", msg.Command, msg.Nonce, m.frameID)
}

func (m *Manager) handoffState() shifter.State {
	var st shifter.State
	m.stack.Root().StoreOn(&st)
	st.Reversed = m.reversed
	return st
}

func (m *Manager) postToChild(frame dom.Node, msg interframe.Message) {
	data, err := msg.Encode()
	if err != nil {
		debugLog.Errorf("Failed to encode %s: %v", msg.Command, err)
		return
	}
	if err := m.transport.PostToChild(frame, data); err != nil {
		debugLog.Debugf("%s %s not delivered: %v", msg.Command, msg.Nonce, err)
		return
	}
	debugLog.Debugf("Sent %s %s from %s", msg.Command, msg.Nonce, m.doc.Location())
}

// applyState adopts navigation settings carried across a frame boundary.
func (m *Manager) applyState(st shifter.State) {
	m.stack.Reset()
	if st.Shifter == m.stack.Root().Name() {
		m.stack.Root().ReadFrom(st)
	}
	m.reversed = st.Reversed
	m.pageEnd = false
	m.focused = true
	if m.onActivate != nil {
		m.onActivate(m)
	}
}

// HandleMessage processes one cross-frame message. Malformed messages,
// repeated deliveries and messages for another frame are dropped.
func (m *Manager) HandleMessage(data []byte) {
	msg, err := interframe.Decode(data)
	if err != nil {
		debugLog.Debugf("Dropping cross-frame message in %s: %v", m.doc.Location(), err)
		return
	}
	if m.replays.Seen(msg.Nonce) {
		debugLog.Debugf("Dropping repeated %s %s in %s", msg.Command, msg.Nonce, m.doc.Location())
		return
	}
	debugLog.Debugf("Received %s %s in %s", msg.Command, msg.Nonce, m.doc.Location())

	switch msg.Command {
	case interframe.CmdAssignID:
		m.handleAssignID(*msg.ID)
	case interframe.CmdAckID:
		m.handleAckID(*msg.SourceID)
	case interframe.CmdEnterIframe:
		m.handleEnter(msg)
	case interframe.CmdExitIframe:
		m.handleExit(msg)
	}
}

func (m *Manager) handleAssignID(id int) {
	if m.transport == nil {
		return
	}
	m.frameID, m.hasFrameID = id, true
	m.postToParent(interframe.NewAckID(id))
}

func (m *Manager) handleAckID(id int) {
	if !m.registry.Acknowledge(id) {
		debugLog.Debugf("Ack for unknown frame id %d", id)
		return
	}
	frame, _ := m.registry.Frame(id)
	findNext, pending := m.pendingEnter[frame]
	if !pending {
		return
	}
	delete(m.pendingEnter, frame)
	if m.focused && m.cur != nil && m.cur.Node() == frame {
		m.postEnter(frame, id, findNext)
	}
}

func (m *Manager) handleEnter(msg interframe.Message) {
	if m.hasFrameID && *msg.ID != m.frameID {
		debugLog.Debugf("Dropping enter for frame %d in frame %d", *msg.ID, m.frameID)
		return
	}
	m.frameID, m.hasFrameID = *msg.ID, true
	m.applyState(msg.State())

	if msg.FindNext != "" {
		pred, err := m.preds.Lookup(msg.FindNext)
		if err != nil {
			debugLog.Warnf("Relayed search %q unknown in %s: %v", msg.FindNext, m.doc.Location(), err)
			m.exitFrame("")
			return
		}
		if m.findFrom(pred, msg.FindNext, nil, false) && m.focused {
			m.FinishNavCommand("", true, speech.Flush)
		}
		return
	}

	m.cur = nil
	m.SyncToBeginning()
	if m.cur == nil {
		debugLog.Debugf("Entered empty frame %s, exiting", m.doc.Location())
		m.exitFrame("")
		return
	}
	m.FinishNavCommand("", true, speech.Flush)
}

func (m *Manager) handleExit(msg interframe.Message) {
	frame, ok := m.registry.Frame(*msg.SourceID)
	if !ok || !m.doc.IsAttached(frame) {
		debugLog.Debugf("Dropping exit from unknown frame %d", *msg.SourceID)
		return
	}
	m.applyState(msg.State())
	m.SyncToNode(frame)

	if msg.FindNext != "" {
		pred, err := m.preds.Lookup(msg.FindNext)
		if err != nil {
			debugLog.Warnf("Relayed search %q unknown in %s: %v", msg.FindNext, m.doc.Location(), err)
			return
		}
		if !m.findFrom(pred, msg.FindNext, frame, false) {
			m.AnnounceNoMatch(msg.FindNext)
			return
		}
		if m.focused {
			m.FinishNavCommand("", true, speech.Flush)
		}
		return
	}

	if !m.Navigate() {
		m.AnnouncePageEnd(speech.Flush)
		return
	}
	if m.focused {
		m.FinishNavCommand("", true, speech.Flush)
	}
}
