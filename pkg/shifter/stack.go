package shifter

// Stack holds the active shifter and the shifters it was entered from, most
// recently entered last. The bottom of the stack is always the default
// strategy it was created with.
type Stack struct {
	root   Shifter
	active Shifter
	saved  []Shifter
}

// NewStack creates a stack whose only shifter is root.
func NewStack(root Shifter) *Stack {
	return &Stack{root: root, active: root}
}

// Active returns the shifter that currently drives traversal.
func (s *Stack) Active() Shifter {
	return s.active
}

// Root returns the default shifter at the bottom of the stack.
func (s *Stack) Root() Shifter {
	return s.root
}

// Depth returns how many shifters have been entered above the default.
func (s *Stack) Depth() int {
	return len(s.saved)
}

// IsNested reports whether a non-default shifter is active.
func (s *Stack) IsNested() bool {
	return len(s.saved) > 0
}

// Enter makes candidate active, saving the current shifter. Entering a
// strategy with the same name as the active one does nothing.
func (s *Stack) Enter(candidate Shifter) bool {
	if candidate == nil || candidate.Name() == s.active.Name() {
		return false
	}
	debugLog.Debugf("Entering %s shifter from %s (depth %d)", candidate.Name(), s.active.Name(), len(s.saved)+1)
	s.saved = append(s.saved, s.active)
	s.active = candidate
	return true
}

// Exit restores the previously active shifter. It fails when nothing has
// been entered.
func (s *Stack) Exit() bool {
	if len(s.saved) == 0 {
		return false
	}
	debugLog.Debugf("Exiting %s shifter", s.active.Name())
	s.active = s.saved[len(s.saved)-1]
	s.saved = s.saved[:len(s.saved)-1]
	return true
}

// Reset pops back to the default shifter and reports whether anything was
// popped.
func (s *Stack) Reset() bool {
	if len(s.saved) == 0 {
		return false
	}
	s.active = s.root
	s.saved = nil
	return true
}
