package shifter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/entrhq/cursornav/pkg/cursor"
	"github.com/entrhq/cursornav/pkg/description"
	"github.com/entrhq/cursornav/pkg/dom"
)

// NavigationName is the name of the default strategy.
const NavigationName = "navigation"

// Granularity is a traversal level of the default strategy.
type Granularity int

const (
	Character Granularity = iota
	Word
	Line
	Object
	Group
)

var granularityNames = [...]string{"Character", "Word", "Line", "Object", "Group"}

func (g Granularity) String() string {
	if g < Character || g > Group {
		return fmt.Sprintf("Granularity(%d)", int(g))
	}
	return granularityNames[g]
}

// ParseGranularity parses a granularity name, ignoring case.
func ParseGranularity(name string) (Granularity, error) {
	for i, n := range granularityNames {
		if strings.EqualFold(n, name) {
			return Granularity(i), nil
		}
	}
	return 0, fmt.Errorf("unknown granularity %q", name)
}

// NavigationShifter is the default strategy. Sub-navigating walks the
// characters of the current object without changing the granularity.
type NavigationShifter struct {
	env         Env
	granularity Granularity
	subnav      bool
}

// NewNavigationShifter creates a default strategy at Object granularity.
func NewNavigationShifter(env Env) *NavigationShifter {
	return &NavigationShifter{env: env, granularity: Object}
}

// Name implements Shifter.
func (s *NavigationShifter) Name() string { return NavigationName }

func (s *NavigationShifter) effective() Granularity {
	if s.subnav {
		return Character
	}
	return s.granularity
}

// Next implements Shifter.
func (s *NavigationShifter) Next(sel *cursor.Selection) *cursor.Selection {
	if sel == nil {
		return s.Begin(false)
	}
	reversed := sel.IsReversed()
	switch g := s.effective(); g {
	case Object:
		return directed(cursor.FromNode(s.nextObject(sel.Node(), reversed)), reversed)
	case Group:
		return s.nextGroup(sel, reversed)
	default:
		return s.nextUnit(sel, g, reversed)
	}
}

// Sync implements Shifter.
func (s *NavigationShifter) Sync(sel *cursor.Selection) *cursor.Selection {
	if sel == nil {
		return nil
	}
	obj := dom.ObjectAt(s.env.Doc, s.env.Root, sel.Node())
	if obj == nil {
		return nil
	}
	reversed := sel.IsReversed()
	switch g := s.effective(); g {
	case Object:
		return directed(cursor.FromNode(obj), reversed)
	case Group:
		return directed(s.groupRun(obj), reversed)
	default:
		if !dom.IsText(obj) {
			return directed(cursor.FromNode(obj), reversed)
		}
		index := 0
		if start := sel.AbsStart(); start.Node == obj {
			index = start.Index
		}
		sp, ok := spanAt(spansFor(obj, g), index)
		if !ok {
			return directed(cursor.FromNode(obj), reversed)
		}
		return directed(cursor.FromRange(obj, sp.start, sp.end), reversed)
	}
}

// Begin implements Shifter.
func (s *NavigationShifter) Begin(reversed bool) *cursor.Selection {
	obj := dom.FirstObject(s.env.Doc, s.env.Root, reversed)
	if obj == nil {
		return nil
	}
	return directed(s.enter(obj, reversed), reversed)
}

// Description implements Shifter.
func (s *NavigationShifter) Description(prev, cur *cursor.Selection) []description.Description {
	if s.env.Provider == nil {
		return nil
	}
	return s.env.Provider.Describe(prev, cur)
}

// Braille implements Shifter.
func (s *NavigationShifter) Braille(prev, cur *cursor.Selection) description.Braille {
	if s.env.Provider == nil {
		return description.Braille{}
	}
	return s.env.Provider.Braille(prev, cur)
}

// Granularity implements Shifter.
func (s *NavigationShifter) Granularity() int { return int(s.granularity) }

// SetGranularity implements Shifter. Out of range values are clamped.
func (s *NavigationShifter) SetGranularity(g int) {
	switch {
	case g < int(Character):
		g = int(Character)
	case g > int(Group):
		g = int(Group)
	}
	s.granularity = Granularity(g)
}

// GranularityName implements Shifter.
func (s *NavigationShifter) GranularityName() string {
	return s.effective().String()
}

// MakeMoreGranular implements Shifter.
func (s *NavigationShifter) MakeMoreGranular() {
	if s.granularity > Character {
		s.granularity--
	}
}

// MakeLessGranular implements Shifter.
func (s *NavigationShifter) MakeLessGranular() {
	if s.granularity < Group {
		s.granularity++
	}
}

// HasAction implements Shifter. The default strategy has no named actions.
func (s *NavigationShifter) HasAction(string) bool { return false }

// PerformAction implements Shifter.
func (s *NavigationShifter) PerformAction(string, *cursor.Selection) *cursor.Selection { return nil }

func (s *NavigationShifter) IsSubnavigating() bool  { return s.subnav }
func (s *NavigationShifter) EnsureSubnavigating()    { s.subnav = true }
func (s *NavigationShifter) EnsureNotSubnavigating() { s.subnav = false }

// StoreOn implements Shifter.
func (s *NavigationShifter) StoreOn(st *State) {
	st.Version = StateVersion
	st.Shifter = NavigationName
	st.Granularity = int(s.granularity)
	st.Subnavigating = s.subnav
}

// ReadFrom implements Shifter.
func (s *NavigationShifter) ReadFrom(st State) {
	s.SetGranularity(st.Granularity)
	s.subnav = st.Subnavigating
}

// nextObject returns the object after node's subtree, or before node.
func (s *NavigationShifter) nextObject(node dom.Node, reversed bool) dom.Node {
	from := node
	if o := dom.ObjectAncestor(node); o != nil {
		from = o
	} else if !reversed && !dom.IsText(node) && !dom.IsObjectElement(node) && node.FirstChild() != nil {
		from = dom.LastDescendant(node)
	}
	return dom.NextObject(s.env.Doc, s.env.Root, from, reversed)
}

func (s *NavigationShifter) nextUnit(sel *cursor.Selection, g Granularity, reversed bool) *cursor.Selection {
	node := sel.Node()
	if dom.IsText(node) && sel.AbsStart().Node == sel.AbsEnd().Node {
		spans := spansFor(node, g)
		start, end := sel.AbsStart().Index, sel.AbsEnd().Index
		onUnit := false
		for _, sp := range spans {
			if sp.start == start && sp.end == end {
				onUnit = true
				break
			}
		}

		var sp span
		var ok bool
		switch {
		case reversed && onUnit:
			sp, ok = spanBefore(spans, start)
		case reversed:
			sp, ok = spanBefore(spans, end)
		case onUnit:
			sp, ok = spanAfter(spans, end)
		default:
			sp, ok = spanAfter(spans, start)
		}
		if ok {
			return directed(cursor.FromRange(node, sp.start, sp.end), reversed)
		}
	}

	obj := s.nextObject(node, reversed)
	if obj == nil {
		return nil
	}
	return directed(s.enter(obj, reversed), reversed)
}

// enter returns the first unit of obj, or the last when reversed.
func (s *NavigationShifter) enter(obj dom.Node, reversed bool) *cursor.Selection {
	g := s.effective()
	switch {
	case g == Object:
		return cursor.FromNode(obj)
	case g == Group:
		return s.groupRun(obj)
	case !dom.IsText(obj):
		return cursor.FromNode(obj)
	}
	spans := spansFor(obj, g)
	if len(spans) == 0 {
		return cursor.FromNode(obj)
	}
	sp := spans[0]
	if reversed {
		sp = spans[len(spans)-1]
	}
	return cursor.FromRange(obj, sp.start, sp.end)
}

// nextGroup moves past the current run of objects sharing a group.
func (s *NavigationShifter) nextGroup(sel *cursor.Selection, reversed bool) *cursor.Selection {
	edge := sel.AbsEnd().Node
	if reversed {
		edge = sel.AbsStart().Node
	}
	if !dom.IsObject(s.env.Doc, edge) {
		edge = dom.ObjectAt(s.env.Doc, s.env.Root, edge)
	}
	if edge == nil {
		return nil
	}
	obj := dom.NextObject(s.env.Doc, s.env.Root, edge, reversed)
	if obj == nil {
		return nil
	}
	return directed(s.groupRun(obj), reversed)
}

// groupRun selects the consecutive objects around obj that share its group.
func (s *NavigationShifter) groupRun(obj dom.Node) *cursor.Selection {
	group := s.groupOf(obj)
	first, last := obj, obj
	for o := dom.NextObject(s.env.Doc, s.env.Root, first, true); o != nil && s.groupOf(o) == group; o = dom.NextObject(s.env.Doc, s.env.Root, o, true) {
		first = o
	}
	for o := dom.NextObject(s.env.Doc, s.env.Root, last, false); o != nil && s.groupOf(o) == group; o = dom.NextObject(s.env.Doc, s.env.Root, o, false) {
		last = o
	}
	return cursor.New(
		cursor.Position{Node: first, Index: 0},
		cursor.Position{Node: last, Index: endIndex(last)},
		false,
	)
}

// groupOf returns the nearest block ancestor of obj inside the root, or obj
// itself when it is not inside one.
func (s *NavigationShifter) groupOf(obj dom.Node) dom.Node {
	g := dom.Ancestor(obj, isGroupElement)
	if g == nil || g == s.env.Root || !dom.Contains(s.env.Root, g) {
		return obj
	}
	return g
}

var groupElements = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "td": true, "th": true, "pre": true, "blockquote": true, "dt": true,
	"dd": true, "caption": true, "figcaption": true, "address": true, "math": true,
}

func isGroupElement(n dom.Node) bool {
	name := n.Name()
	if groupElements[name] {
		return true
	}
	if name != "div" {
		return false
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if dom.IsText(c) && strings.TrimSpace(c.Text()) != "" {
			return true
		}
	}
	return false
}

func spansFor(text dom.Node, g Granularity) []span {
	switch g {
	case Character:
		return characterSpans(text.Text())
	case Word:
		return wordSpans(text.Text())
	default:
		return lineSpans(text.Text())
	}
}

func endIndex(n dom.Node) int {
	if dom.IsText(n) {
		return utf8.RuneCountInString(n.Text())
	}
	return 0
}
