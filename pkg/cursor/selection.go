// Package cursor holds the engine's notion of "where the cursor is": a
// directed Selection between two positions in a document, and the optional
// PageSelection used for select-to-here.
package cursor

import (
	"unicode/utf8"

	"github.com/entrhq/cursornav/pkg/dom"
)

// Position anchors one end of a selection. Index is a rune offset inside a
// text node; it is 0 for elements.
type Position struct {
	Node  dom.Node
	Index int
}

// Selection is a directed range in a document. Start is where travel began
// and End is where it finished, so a reversed selection has Start after End
// in document order.
//
// The manager replaces selections rather than mutating them; callers that
// want to change one must Clone it first.
type Selection struct {
	Start    Position
	End      Position
	reversed bool
}

// New creates a selection from explicit positions.
func New(start, end Position, reversed bool) *Selection {
	return &Selection{Start: start, End: end, reversed: reversed}
}

// FromNode selects the whole of n: all of its text for text nodes, the
// element itself otherwise.
func FromNode(n dom.Node) *Selection {
	if n == nil {
		return nil
	}
	end := 0
	if dom.IsText(n) {
		end = utf8.RuneCountInString(n.Text())
	}
	return &Selection{
		Start: Position{Node: n, Index: 0},
		End:   Position{Node: n, Index: end},
	}
}

// FromRange selects runes [start, end) of a text node.
func FromRange(n dom.Node, start, end int) *Selection {
	return &Selection{
		Start: Position{Node: n, Index: start},
		End:   Position{Node: n, Index: end},
	}
}

// FromActiveElement selects the document's focused node, or nil.
func FromActiveElement(doc dom.Document) *Selection {
	return FromNode(doc.ActiveElement())
}

// Clone returns an independent copy.
func (s *Selection) Clone() *Selection {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// IsReversed reports the direction of travel.
func (s *Selection) IsReversed() bool {
	return s.reversed
}

// SetReversed changes the direction, swapping the ends when it flips, and
// returns s for chaining.
func (s *Selection) SetReversed(reversed bool) *Selection {
	if reversed != s.reversed {
		s.Start, s.End = s.End, s.Start
		s.reversed = reversed
	}
	return s
}

// Collapse shrinks the selection to its directed start and returns s.
func (s *Selection) Collapse() *Selection {
	s.End = s.Start
	return s
}

// AbsStart is the end that comes first in document order.
func (s *Selection) AbsStart() Position {
	if s.reversed {
		return s.End
	}
	return s.Start
}

// AbsEnd is the end that comes last in document order.
func (s *Selection) AbsEnd() Position {
	if s.reversed {
		return s.Start
	}
	return s.End
}

// Node is the node the selection sits on regardless of direction.
func (s *Selection) Node() dom.Node {
	if s == nil {
		return nil
	}
	return s.AbsStart().Node
}

// IsCollapsed reports whether both ends are the same position.
func (s *Selection) IsCollapsed() bool {
	return s.Start == s.End
}

// Equals compares positions and direction.
func (s *Selection) Equals(o *Selection) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Start == o.Start && s.End == o.End && s.reversed == o.reversed
}

// SameRange compares positions ignoring direction.
func (s *Selection) SameRange(o *Selection) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.AbsStart() == o.AbsStart() && s.AbsEnd() == o.AbsEnd()
}

// IsValid reports whether both ends are still attached to doc.
func (s *Selection) IsValid(doc dom.Document) bool {
	return s != nil && doc.IsAttached(s.Start.Node) && doc.IsAttached(s.End.Node)
}

// ComparePositions orders two positions in document order.
func ComparePositions(a, b Position) int {
	if a.Node == b.Node {
		switch {
		case a.Index < b.Index:
			return -1
		case a.Index > b.Index:
			return 1
		}
		return 0
	}
	return dom.Compare(a.Node, b.Node)
}
