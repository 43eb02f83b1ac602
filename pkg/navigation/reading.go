package navigation

import (
	"github.com/entrhq/cursornav/pkg/description"
	"github.com/entrhq/cursornav/pkg/speech"
)

// StartReading reads continuously from the cursor. When the sink reports
// completion, each utterance triggers the next step; otherwise the sink is
// polled every PollInterval and the next step is spoken once it is idle.
func (m *Manager) StartReading(mode speech.QueueMode) {
	m.stopPoll()
	m.reading = true
	m.readGen++
	gen := m.readGen

	if m.sink.HasCompletionCallback() {
		debugLog.Debugf("Reading %s with completion callbacks", m.doc.Location())
		m.readStep(gen, mode)
		return
	}
	debugLog.Debugf("Reading %s by polling every %s", m.doc.Location(), m.settings.PollInterval)
	m.pollTick(gen)
}

// StopReading leaves continuous reading. With immediately set, speech in
// progress is aborted too.
func (m *Manager) StopReading(immediately bool) {
	if m.reading {
		debugLog.Debugf("Reading stopped in %s", m.doc.Location())
	}
	m.reading = false
	m.readGen++
	m.stopPoll()
	if immediately {
		m.sink.Stop()
	}
}

// Skip restarts reading one step further along, interrupting the current
// utterance. It only applies while reading.
func (m *Manager) Skip() bool {
	if !m.reading {
		return false
	}
	m.SetReversed(false)
	m.earcons = append(m.earcons, description.EarconSkip)
	if !m.Navigate() && m.pageEnd {
		return true
	}
	m.sink.Stop()
	m.StartReading(speech.Flush)
	return true
}

func (m *Manager) stopPoll() {
	if m.cancelPoll != nil {
		m.cancelPoll()
		m.cancelPoll = nil
	}
}

// readStep speaks the cursor and, when that finishes, advances and
// continues with queued speech.
func (m *Manager) readStep(gen int, mode speech.QueueMode) {
	descs := m.output("")
	if descs == nil {
		m.StopReading(false)
		return
	}
	m.sink.WriteBraille(m.braille())
	m.sink.Speak(descs, mode, func() {
		m.sched.Post(func() { m.continueReading(gen) })
	})
}

func (m *Manager) continueReading(gen int) {
	if !m.reading || gen != m.readGen {
		return
	}
	before := m.cur.Clone()
	if !m.Navigate() {
		m.StopReading(false)
		if m.pageEnd {
			m.AnnouncePageEnd(speech.Queue)
		}
		return
	}
	if !m.focused || m.awaitingFrame() || m.cur.SameRange(before) {
		m.StopReading(false)
		return
	}
	m.readStep(gen, speech.Queue)
}

func (m *Manager) pollTick(gen int) {
	m.cancelPoll = nil
	if !m.reading || gen != m.readGen {
		return
	}
	if !m.sink.IsSpeaking() {
		descs := m.output("")
		if descs == nil {
			m.StopReading(false)
			return
		}
		m.sink.WriteBraille(m.braille())
		m.sink.Speak(descs, speech.Flush, nil)
		if !m.Navigate() || !m.focused || m.awaitingFrame() {
			m.StopReading(false)
			return
		}
	}
	if m.reading && gen == m.readGen {
		m.cancelPoll = m.sched.After(m.settings.PollInterval, func() { m.pollTick(gen) })
	}
}
