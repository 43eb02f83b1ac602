package navigation

import (
	"github.com/entrhq/cursornav/pkg/cursor"
	"github.com/entrhq/cursornav/pkg/description"
	"github.com/entrhq/cursornav/pkg/dom"
	"github.com/entrhq/cursornav/pkg/predicate"
	"github.com/entrhq/cursornav/pkg/shifter"
)

// Named stack actions understood by PerformAction in addition to the active
// shifter's own actions.
const (
	ActionEnterShifter         = "enterShifter"
	ActionEnterShifterSilently = "enterShifterSilently"
	ActionExitShifter          = "exitShifter"
	ActionExitShifterContent   = "exitShifterContent"
)

type navOptions struct {
	ignoreFrames   bool
	granularity    shifter.Granularity
	hasGranularity bool
}

// NavOption adjusts a single Navigate call.
type NavOption func(*navOptions)

// IgnoreFrames keeps the step inside this document.
func IgnoreFrames() NavOption {
	return func(o *navOptions) { o.ignoreFrames = true }
}

// AtGranularity switches the default shifter to g before stepping. Any
// entered strategy is exited first.
func AtGranularity(g shifter.Granularity) NavOption {
	return func(o *navOptions) {
		o.granularity = g
		o.hasGranularity = true
	}
}

// Navigate moves the cursor one unit in the current direction. It returns
// false at the end of the page, in which case the next call wraps, and when
// an entered strategy has run out.
func (m *Manager) Navigate(opts ...NavOption) bool {
	var o navOptions
	for _, opt := range opts {
		opt(&o)
	}
	return m.navigate(o, false)
}

// Subnavigate is Navigate with the active shifter in its finer-grained
// mode. The persisted granularity is left alone.
func (m *Manager) Subnavigate(opts ...NavOption) bool {
	var o navOptions
	for _, opt := range opts {
		opt(&o)
	}
	return m.navigate(o, true)
}

func (m *Manager) navigate(o navOptions, sub bool) bool {
	if m.pageEnd {
		m.pageEnd = false
		m.SyncToBeginning()
		return true
	}
	if consumed, ok := m.resolve(); consumed {
		return ok
	}

	if sub {
		m.stack.Active().EnsureSubnavigating()
	} else {
		m.stack.Active().EnsureNotSubnavigating()
	}
	if o.hasGranularity {
		m.SetGranularity(o.granularity, true)
	}
	return m.next(!o.ignoreFrames)
}

// resolve recovers the cursor from history when its node is gone. consumed
// reports whether the recovery took the place of the step.
func (m *Manager) resolve() (consumed, ok bool) {
	if m.cur == nil || !m.history.BecomeInvalid(m.cur.Node()) {
		return false, false
	}

	res := m.history.Revert(nil)
	if res.Current == nil {
		debugLog.Debugf("Cursor lost in %s and history is empty", m.doc.Location())
		m.cur = nil
		m.pageEndReached()
		return true, false
	}

	debugLog.Debugf("Cursor lost in %s, recovered from history", m.doc.Location())
	m.stack.Reset()
	if !m.SyncToNode(res.Current) {
		m.pageEndReached()
		return true, false
	}
	m.earcons = append(m.earcons, description.EarconRecoveredFocus)
	return true, true
}

func (m *Manager) next(frames bool) bool {
	active := m.stack.Active()
	var sel *cursor.Selection
	if m.cur == nil {
		sel = active.Begin(m.reversed)
	} else {
		sel = active.Next(m.cur.Clone().SetReversed(m.reversed))
	}

	for sel != nil && frames && !m.stack.IsNested() && m.canTraverse() && m.doc.IsFrame(sel.Node()) {
		frame := sel.Node()
		switch m.tryEnterFrame(frame, "") {
		case frameEntered, framePending:
			m.setCursor(sel)
			return true
		}
		sel = active.Next(sel)
	}

	if sel == nil {
		if m.stack.IsNested() {
			return false
		}
		if frames && m.canExit() {
			m.exitFrame("")
			return true
		}
		m.pageEndReached()
		return false
	}

	m.setCursor(sel)
	if m.pageSel != nil {
		if m.pageSel.Extend(m.cur) {
			m.selectionNote = "selected"
		} else {
			m.selectionNote = "unselected"
		}
	}
	return true
}

// pageEndReached parks the cursor at the beginning and arms the wrap.
func (m *Manager) pageEndReached() {
	m.SyncToBeginning()
	m.ClearPageSelection()
	m.StopReading(false)
	m.pageEnd = true
	m.earcons = append(m.earcons, description.EarconWrap)
	debugLog.Debugf("Page end reached in %s", m.doc.Location())
}

// SetGranularity switches the default shifter to g. While a nested strategy
// is entered the call is ignored unless force is set, which exits it.
func (m *Manager) SetGranularity(g shifter.Granularity, force bool) bool {
	return m.setGranularity(g, force, true)
}

// setGranularity is SetGranularity with persistence optional, for internal
// resyncs that are not the user's choice.
func (m *Manager) setGranularity(g shifter.Granularity, force, persist bool) bool {
	if m.stack.IsNested() && !force {
		return false
	}
	m.stack.Reset()
	m.stack.Root().SetGranularity(int(g))
	m.Sync()
	if persist && m.recorder != nil {
		m.recorder.RecordGranularity(m.stack.Root().Granularity())
	}
	return true
}

// MakeMoreGranular refines the active shifter.
func (m *Manager) MakeMoreGranular() {
	m.stack.Active().MakeMoreGranular()
	m.afterGranularityChange()
}

// MakeLessGranular coarsens the active shifter.
func (m *Manager) MakeLessGranular() {
	m.stack.Active().MakeLessGranular()
	m.afterGranularityChange()
}

func (m *Manager) afterGranularityChange() {
	m.Sync()
	if !m.stack.IsNested() && m.recorder != nil {
		m.recorder.RecordGranularity(m.stack.Root().Granularity())
	}
}

// PerformAction runs a stack action or a named action of the active
// shifter. Unknown names return false.
func (m *Manager) PerformAction(name string) bool {
	switch name {
	case ActionEnterShifter:
		return m.enterShifter(false)
	case ActionEnterShifterSilently:
		return m.enterShifter(true)
	case ActionExitShifter:
		return m.exitShifter(false)
	case ActionExitShifterContent:
		return m.exitShifter(true)
	}

	active := m.stack.Active()
	if m.cur == nil || !active.HasAction(name) {
		debugLog.Debugf("Action %s not supported by %s shifter", name, active.Name())
		return false
	}
	sel := active.PerformAction(name, m.cur)
	if sel == nil {
		return false
	}
	m.setCursor(sel)
	return true
}

func (m *Manager) enterShifter(silent bool) bool {
	if m.cur == nil {
		return false
	}
	candidate := shifter.Match(m.env, m.cur, m.factories)
	if !m.stack.Enter(candidate) {
		return false
	}
	if sel := candidate.Sync(m.cur); sel != nil {
		m.setCursor(sel)
	}
	if !silent {
		m.earcons = append(m.earcons, description.EarconEnterStrategy)
	}
	return true
}

func (m *Manager) exitShifter(commit bool) bool {
	if !m.stack.IsNested() {
		return false
	}
	if commit && m.cur != nil {
		if c, ok := m.stack.Active().(shifter.ContentCommitter); ok {
			if sel := c.CommitContent(m.cur); sel != nil {
				m.setCursor(sel)
			}
		}
	}
	m.stack.Exit()
	m.Sync()
	m.earcons = append(m.earcons, description.EarconExitStrategy)
	return true
}

// FindNext moves to the next node matching pred in the current direction.
// When pred is nil it is looked up by name. fromCurrent lets the current
// node itself match. With frame traversal on, the search continues into
// child frames and back out to the parent, carried by name.
func (m *Manager) FindNext(pred predicate.Func, name string, fromCurrent bool) bool {
	if pred == nil {
		var err error
		if pred, err = m.preds.Lookup(name); err != nil {
			debugLog.Debugf("FindNext: %v", err)
			return false
		}
	}
	if consumed, ok := m.resolve(); consumed && !ok {
		return false
	}
	m.pageEnd = false
	m.stack.Reset()

	var from dom.Node
	if m.cur != nil {
		from = m.cur.Node()
	}
	return m.findFrom(pred, name, from, fromCurrent)
}

func (m *Manager) findFrom(pred predicate.Func, name string, from dom.Node, inclusive bool) bool {
	relay := name != "" && m.canTraverse()
	match := func(n dom.Node) bool {
		if pred(n) {
			return true
		}
		return relay && m.doc.IsFrame(n) && !m.registry.IsUnreachable(n)
	}

	for {
		found := dom.FindNext(m.doc, m.doc.Root(), from, match, m.reversed, inclusive)
		if found == nil {
			if relay && m.canExit() {
				m.exitFrame(name)
				return true
			}
			return false
		}
		if pred(found) {
			m.setGranularity(shifter.Object, true, false)
			return m.SyncToNode(found)
		}

		if m.tryEnterFrame(found, name) != frameSkipped {
			m.setCursor(cursor.FromNode(found))
			return true
		}
		from, inclusive = found, false
	}
}
