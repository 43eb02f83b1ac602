package navigation

import (
	"fmt"

	"github.com/entrhq/cursornav/pkg/cursor"
	"github.com/entrhq/cursornav/pkg/description"
	"github.com/entrhq/cursornav/pkg/speech"
)

// FinishNavCommand describes the cursor after a command: pending earcons go
// on the first segment, braille is written, the indicator and persisted
// position are updated, and the description is spoken when speak is set.
// It does nothing while another frame holds navigation.
func (m *Manager) FinishNavCommand(prefix string, speak bool, mode speech.QueueMode) []description.Description {
	descs := m.output(prefix)
	if descs == nil {
		return nil
	}
	m.sink.WriteBraille(m.braille())
	if speak {
		m.sink.Speak(descs, mode, nil)
	}
	m.updateIndicator()
	return descs
}

// output builds the description of the last move and drains pending
// earcons into it.
func (m *Manager) output(prefix string) []description.Description {
	if !m.focused || m.cur == nil {
		return nil
	}
	descs := m.stack.Active().Description(m.prev, m.cur)
	if prefix != "" {
		descs = append([]description.Description{{Context: prefix}}, descs...)
	}
	if m.selectionNote != "" {
		descs = append(descs, description.Description{Annotation: m.selectionNote})
		m.selectionNote = ""
	}
	if len(descs) == 0 {
		descs = []description.Description{{}}
	}
	for _, e := range m.earcons {
		descs[0].PushEarcon(e)
	}
	m.earcons = nil
	m.setLast(descs)
	return descs
}

func (m *Manager) setLast(descs []description.Description) {
	m.last = descs
	m.utterances++
}

func (m *Manager) braille() description.Braille {
	return m.stack.Active().Braille(m.prev, m.cur)
}

func (m *Manager) updateIndicator() {
	if m.cur == nil {
		return
	}
	n := m.cur.Node()
	p := m.doc.Bounds(n)
	if m.indicator != nil {
		m.indicator(n, p)
	}
	if m.recorder != nil {
		m.recorder.RecordPosition(m.doc.Location(), p)
	}
}

// AnnouncePageEnd speaks the wrap hint after a failed step.
func (m *Manager) AnnouncePageEnd(mode speech.QueueMode) {
	d := description.Description{}
	if m.settings.Verbose {
		d.Text = "Wrapped to top"
		if m.reversed {
			d.Text = "Wrapped to bottom"
		}
	}
	if len(m.earcons) == 0 {
		m.earcons = append(m.earcons, description.EarconWrap)
	}
	for _, e := range m.earcons {
		d.PushEarcon(e)
	}
	m.earcons = nil
	m.setLast([]description.Description{d})
	m.sink.Speak(m.last, mode, nil)
}

// AnnounceNoMatch reports a structural search that found nothing.
func (m *Manager) AnnounceNoMatch(name string) {
	d := description.Description{Text: fmt.Sprintf("No more %s", name)}
	if m.reversed {
		d.Text = fmt.Sprintf("No previous %s", name)
	}
	m.setLast([]description.Description{d})
	m.sink.Speak(m.last, speech.Flush, nil)
}

// TogglePageSelection starts extending a selection from the cursor, or ends
// the one in progress.
func (m *Manager) TogglePageSelection() bool {
	if m.pageSel != nil {
		m.ClearPageSelection()
		return true
	}
	if m.cur == nil {
		return false
	}
	m.pageSel = cursor.NewPageSelection(m.cur)
	m.selectionNote = "selected"
	return true
}

// ClearPageSelection drops the selection being extended, if any.
func (m *Manager) ClearPageSelection() {
	if m.pageSel == nil {
		return
	}
	m.pageSel = nil
	m.selectionNote = "unselected"
}

// PageSelection returns the selection being extended, or nil.
func (m *Manager) PageSelection() *cursor.PageSelection { return m.pageSel }
