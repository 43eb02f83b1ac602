package shifter

import (
	"fmt"

	"github.com/entrhq/cursornav/pkg/cursor"
	"github.com/entrhq/cursornav/pkg/description"
	"github.com/entrhq/cursornav/pkg/dom"
)

// MathName is the name of the math strategy.
const MathName = "math"

var mathLeaves = map[string]bool{
	"mi":    true,
	"mn":    true,
	"mo":    true,
	"mtext": true,
	"ms":    true,
}

// MathShifter walks a MathML tree one level at a time. Granularity is the
// depth below the math root: 1 walks the root's children, higher values
// walk deeper sub-expressions.
type MathShifter struct {
	env    Env
	root   dom.Node
	node   dom.Node
	depth  int
	subnav bool
}

// NewMathShifter returns a math strategy when sel lies inside a math element.
func NewMathShifter(env Env, sel *cursor.Selection) Shifter {
	if sel == nil {
		return nil
	}
	root := dom.AncestorNamed(sel.Node(), "math")
	if root == nil || !dom.Contains(env.Root, root) {
		return nil
	}
	s := &MathShifter{env: env, root: root, depth: 1}
	if s.firstChild(root, false) == nil {
		s.depth = 0
	}
	return s
}

// Name implements Shifter.
func (s *MathShifter) Name() string { return MathName }

// Root returns the math element being walked.
func (s *MathShifter) Root() dom.Node { return s.root }

func (s *MathShifter) level(n dom.Node) int {
	return dom.Depth(n) - dom.Depth(s.root)
}

// element returns the math element at or above n.
func (s *MathShifter) element(n dom.Node) dom.Node {
	for cur := n; cur != nil; cur = cur.Parent() {
		if !dom.IsText(cur) {
			if !dom.Contains(s.root, cur) {
				return s.root
			}
			return cur
		}
	}
	return s.root
}

func (s *MathShifter) firstChild(n dom.Node, last bool) dom.Node {
	c := n.FirstChild()
	if last {
		c = n.LastChild()
	}
	for ; c != nil; c = sibling(c, last) {
		if !dom.IsText(c) && s.env.Doc.IsVisible(c) {
			return c
		}
	}
	return nil
}

func (s *MathShifter) nextSibling(n dom.Node, reversed bool) dom.Node {
	for c := sibling(n, reversed); c != nil; c = sibling(c, reversed) {
		if !dom.IsText(c) && s.env.Doc.IsVisible(c) {
			return c
		}
	}
	return nil
}

func sibling(n dom.Node, reversed bool) dom.Node {
	if reversed {
		return n.PrevSibling()
	}
	return n.NextSibling()
}

func (s *MathShifter) isLeaf(n dom.Node) bool {
	return mathLeaves[n.Name()]
}

// Next implements Shifter.
func (s *MathShifter) Next(sel *cursor.Selection) *cursor.Selection {
	if sel == nil {
		return s.Begin(false)
	}
	reversed := sel.IsReversed()
	el := s.element(sel.Node())
	var next dom.Node
	if s.subnav {
		next = dom.FindNext(s.env.Doc, s.root, el, s.isLeaf, reversed, false)
	} else if el != s.root {
		next = s.nextSibling(el, reversed)
	}
	if next == nil {
		return nil
	}
	s.node = next
	return directed(cursor.FromNode(next), reversed)
}

// Sync implements Shifter. The cursor is moved to the element at the current
// depth that contains sel; when sel is shallower, the depth follows it.
func (s *MathShifter) Sync(sel *cursor.Selection) *cursor.Selection {
	if sel == nil {
		return nil
	}
	el := s.element(sel.Node())
	switch {
	case s.subnav:
		if !s.isLeaf(el) {
			if leaf := dom.FindNext(s.env.Doc, el, el, s.isLeaf, false, true); leaf != nil {
				el = leaf
			}
		}
	case s.node != nil && dom.Contains(el, s.node) && s.level(s.node) == s.depth:
		el = s.node
	case s.level(el) >= s.depth:
		for s.level(el) > s.depth {
			el = el.Parent()
		}
	default:
		s.depth = s.level(el)
	}
	s.node = el
	return directed(cursor.FromNode(el), sel.IsReversed())
}

// Begin implements Shifter.
func (s *MathShifter) Begin(reversed bool) *cursor.Selection {
	first := s.firstChild(s.root, reversed)
	if first == nil {
		first = s.root
	}
	s.depth = s.level(first)
	s.node = first
	return directed(cursor.FromNode(first), reversed)
}

// Description implements Shifter.
func (s *MathShifter) Description(prev, cur *cursor.Selection) []description.Description {
	if s.env.Provider == nil {
		return nil
	}
	return s.env.Provider.Describe(prev, cur)
}

// Braille implements Shifter.
func (s *MathShifter) Braille(prev, cur *cursor.Selection) description.Braille {
	if s.env.Provider == nil {
		return description.Braille{}
	}
	return s.env.Provider.Braille(prev, cur)
}

// Granularity implements Shifter.
func (s *MathShifter) Granularity() int { return s.depth }

// SetGranularity implements Shifter.
func (s *MathShifter) SetGranularity(g int) {
	if g < 0 {
		g = 0
	}
	s.depth = g
}

// GranularityName implements Shifter.
func (s *MathShifter) GranularityName() string {
	return fmt.Sprintf("Level %d", s.depth)
}

// MakeMoreGranular descends to the first child of the current node.
func (s *MathShifter) MakeMoreGranular() {
	cur := s.node
	if cur == nil {
		cur = s.root
	}
	if child := s.firstChild(cur, false); child != nil {
		s.node = child
		s.depth = s.level(child)
	}
}

// MakeLessGranular ascends one level, never above the math root.
func (s *MathShifter) MakeLessGranular() {
	if s.depth == 0 {
		return
	}
	s.depth--
	if s.node != nil && s.node != s.root {
		s.node = s.node.Parent()
	}
}

// HasAction implements Shifter. Math has no named actions.
func (s *MathShifter) HasAction(string) bool { return false }

// PerformAction implements Shifter.
func (s *MathShifter) PerformAction(string, *cursor.Selection) *cursor.Selection { return nil }

// CommitContent moves the cursor to the last leaf of the expression.
func (s *MathShifter) CommitContent(sel *cursor.Selection) *cursor.Selection {
	last := dom.FindNext(s.env.Doc, s.root, nil, s.isLeaf, true, false)
	if last == nil {
		return sel
	}
	return directed(cursor.FromNode(last), isReversed(sel))
}

func (s *MathShifter) IsSubnavigating() bool  { return s.subnav }
func (s *MathShifter) EnsureSubnavigating()    { s.subnav = true }
func (s *MathShifter) EnsureNotSubnavigating() { s.subnav = false }

// StoreOn implements Shifter.
func (s *MathShifter) StoreOn(st *State) {
	st.Version = StateVersion
	st.Shifter = MathName
	st.Granularity = s.depth
	st.Subnavigating = s.subnav
}

// ReadFrom implements Shifter.
func (s *MathShifter) ReadFrom(st State) {
	s.SetGranularity(st.Granularity)
	s.subnav = st.Subnavigating
}
