package dom

import "strings"

// objectElements are elements navigated as a single unit: the walker never
// descends into them.
var objectElements = map[string]bool{
	"img":      true,
	"input":    true,
	"button":   true,
	"select":   true,
	"textarea": true,
	"hr":       true,
	"iframe":   true,
	"frame":    true,
	"embed":    true,
	"object":   true,
	"video":    true,
	"audio":    true,
	"canvas":   true,
	"meter":    true,
	"progress": true,
}

// IsObjectElement reports whether n is an element navigated as one unit.
func IsObjectElement(n Node) bool {
	return n != nil && objectElements[n.Name()]
}

// Next returns the node after n in pre-order, staying inside root.
func Next(root, n Node) Node {
	if c := n.FirstChild(); c != nil {
		return c
	}
	return NextSkip(root, n)
}

// NextSkip returns the node after n's subtree in pre-order, staying inside root.
func NextSkip(root, n Node) Node {
	for cur := n; cur != nil && cur != root; cur = cur.Parent() {
		if s := cur.NextSibling(); s != nil {
			return s
		}
	}
	return nil
}

// Prev returns the node before n in pre-order, staying inside root and never
// returning root itself.
func Prev(root, n Node) Node {
	if n == nil || n == root {
		return nil
	}
	if s := n.PrevSibling(); s != nil {
		return LastDescendant(s)
	}
	p := n.Parent()
	if p == nil || p == root {
		return nil
	}
	return p
}

// LastDescendant returns the deepest last descendant of n, or n itself.
func LastDescendant(n Node) Node {
	for {
		c := n.LastChild()
		if c == nil {
			return n
		}
		n = c
	}
}

// Contains reports whether b is a or one of a's descendants.
func Contains(a, b Node) bool {
	if a == nil {
		return false
	}
	for cur := b; cur != nil; cur = cur.Parent() {
		if cur == a {
			return true
		}
	}
	return false
}

// Ancestor returns the closest node at or above n that satisfies pred.
func Ancestor(n Node, pred func(Node) bool) Node {
	for cur := n; cur != nil; cur = cur.Parent() {
		if pred(cur) {
			return cur
		}
	}
	return nil
}

// AncestorNamed returns the closest node at or above n with one of names.
func AncestorNamed(n Node, names ...string) Node {
	return Ancestor(n, func(c Node) bool {
		for _, name := range names {
			if c.Name() == name {
				return true
			}
		}
		return false
	})
}

// ObjectAncestor returns the nearest strict ancestor of n that is an object
// element.
func ObjectAncestor(n Node) Node {
	if n == nil {
		return nil
	}
	return Ancestor(n.Parent(), IsObjectElement)
}

// Depth returns the number of ancestors of n.
func Depth(n Node) int {
	d := 0
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		d++
	}
	return d
}

// Compare orders a and b in document order: -1 if a comes first, 1 if b
// does, 0 if they are the same node. An ancestor sorts before its
// descendants.
func Compare(a, b Node) int {
	if a == b {
		return 0
	}
	pa, pb := pathTo(a), pathTo(b)
	i := 0
	for i < len(pa) && i < len(pb) && pa[i] == pb[i] {
		i++
	}
	switch {
	case i == len(pa):
		return -1
	case i == len(pb):
		return 1
	}
	for s := pa[i].NextSibling(); s != nil; s = s.NextSibling() {
		if s == pb[i] {
			return -1
		}
	}
	return 1
}

func pathTo(n Node) []Node {
	var path []Node
	for cur := n; cur != nil; cur = cur.Parent() {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// IsObject reports whether n is a navigable object: visible, not inside an
// object element, and either non-blank text or an object element.
func IsObject(doc Document, n Node) bool {
	if n == nil || !doc.IsVisible(n) || ObjectAncestor(n) != nil {
		return false
	}
	if IsText(n) {
		return strings.TrimSpace(n.Text()) != ""
	}
	return IsObjectElement(n)
}

// NextObject returns the next object after from inside root, walking
// backwards when reversed. A nil from starts at the edge of root.
func NextObject(doc Document, root, from Node, reversed bool) Node {
	cur := from
	for {
		if reversed {
			cur = backward(root, cur)
		} else {
			cur = forwardObject(doc, root, cur)
		}
		if cur == nil {
			return nil
		}
		if IsObject(doc, cur) {
			return cur
		}
	}
}

// FirstObject returns the first object inside root, or the last when reversed.
func FirstObject(doc Document, root Node, reversed bool) Node {
	return NextObject(doc, root, nil, reversed)
}

// ObjectAt resolves n to the object that represents it: the enclosing object
// element, n itself, the first object inside n, or the nearest object before
// it, in that order.
func ObjectAt(doc Document, root, n Node) Node {
	if n == nil {
		return nil
	}
	if o := ObjectAncestor(n); o != nil && doc.IsVisible(o) {
		return o
	}
	if IsObject(doc, n) {
		return n
	}
	if o := NextObject(doc, root, n, false); o != nil && Contains(n, o) {
		return o
	}
	if o := NextObject(doc, root, n, true); o != nil {
		return o
	}
	return NextObject(doc, root, n, false)
}

// FindNext walks root in document order from from (exclusive unless
// inclusive) and returns the first visible node satisfying pred. Walking
// backwards never returns an ancestor of from.
func FindNext(doc Document, root, from Node, pred func(Node) bool, reversed, inclusive bool) Node {
	if from != nil && inclusive && doc.IsVisible(from) && pred(from) {
		return from
	}
	cur := from
	for {
		if reversed {
			cur = backward(root, cur)
		} else {
			cur = forwardAll(doc, root, cur)
		}
		if cur == nil {
			return nil
		}
		if reversed && from != nil && Contains(cur, from) {
			continue
		}
		if doc.IsVisible(cur) && pred(cur) {
			return cur
		}
	}
}

// TextContent joins the visible text under n with single spaces.
func TextContent(doc Document, n Node) string {
	if n == nil {
		return ""
	}
	if IsText(n) {
		return strings.Join(strings.Fields(n.Text()), " ")
	}
	var parts []string
	for cur := n.FirstChild(); cur != nil; cur = forwardAll(doc, n, cur) {
		if IsText(cur) && doc.IsVisible(cur) {
			if t := strings.Join(strings.Fields(cur.Text()), " "); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " ")
}

func forwardObject(doc Document, root, cur Node) Node {
	if cur == nil {
		return root.FirstChild()
	}
	if cur != root && (IsObjectElement(cur) || !doc.IsVisible(cur)) {
		return NextSkip(root, cur)
	}
	return Next(root, cur)
}

func forwardAll(doc Document, root, cur Node) Node {
	if cur == nil {
		return root.FirstChild()
	}
	if cur != root && !doc.IsVisible(cur) {
		return NextSkip(root, cur)
	}
	return Next(root, cur)
}

func backward(root, cur Node) Node {
	if cur == nil {
		if root.LastChild() == nil {
			return nil
		}
		return LastDescendant(root)
	}
	return Prev(root, cur)
}
