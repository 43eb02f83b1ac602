// Package dom defines the document-model contract the navigation engine
// consumes: opaque node handles with identity and tree structure, plus the
// document-level queries (attachment, visibility, focus, frames) the engine
// sequences its traversal calls around.
//
// Concrete documents live in subpackages (see htmldom). The walking helpers in
// this package only use the Node and Document interfaces, so any tree that can
// answer those questions can be navigated.
package dom

// TextNodeName is the Name reported by text nodes.
const TextNodeName = "#text"

// Node is an opaque handle on one node of a document tree.
//
// Implementations must be comparable with == and must return a nil interface
// (not a typed nil) when a relative does not exist.
type Node interface {
	// Name is the lower-case element name, or TextNodeName for text.
	Name() string

	// Text is the character data of a text node. Elements return "".
	Text() string

	// Attr returns the value of an attribute and whether it is present.
	Attr(key string) (string, bool)

	Parent() Node
	FirstChild() Node
	LastChild() Node
	NextSibling() Node
	PrevSibling() Node
}

// Point is a best-effort screen coordinate for a node.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Document is one navigable document. Each frame of a page is its own
// Document with its own engine instance.
type Document interface {
	// Root is the subtree navigation happens in (usually <body>).
	Root() Node

	// Location identifies the document for position persistence.
	Location() string

	// IsAttached reports whether n is still part of this document.
	IsAttached(n Node) bool

	// IsVisible reports whether n and all of its ancestors are rendered.
	IsVisible(n Node) bool

	// ActiveElement is the node that currently holds focus, or nil.
	ActiveElement() Node

	// Focus moves focus to n.
	Focus(n Node)

	// Bounds returns where n sits on screen.
	Bounds(n Node) Point

	// IsFrame reports whether n hosts a nested document.
	IsFrame(n Node) bool

	// IsNested reports whether this document is itself hosted in a frame.
	IsNested() bool
}

// IsText reports whether n is a text node.
func IsText(n Node) bool {
	return n != nil && n.Name() == TextNodeName
}

// HasAttr reports whether n carries the attribute key.
func HasAttr(n Node, key string) bool {
	if n == nil {
		return false
	}
	_, ok := n.Attr(key)
	return ok
}

// AttrValue returns the attribute value or "" when absent.
func AttrValue(n Node, key string) string {
	if n == nil {
		return ""
	}
	v, _ := n.Attr(key)
	return v
}
