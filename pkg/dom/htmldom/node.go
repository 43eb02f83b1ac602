package htmldom

import (
	"strings"

	"github.com/entrhq/cursornav/pkg/dom"
	"golang.org/x/net/html"
)

// Node wraps an html.Node. A document hands out one wrapper per node so
// wrappers compare equal exactly when they refer to the same node.
type Node struct {
	n   *html.Node
	doc *Document
}

// HTML exposes the underlying node.
func (w *Node) HTML() *html.Node {
	return w.n
}

// Name implements dom.Node.
func (w *Node) Name() string {
	switch w.n.Type {
	case html.TextNode:
		return dom.TextNodeName
	case html.DocumentNode:
		return "#document"
	case html.CommentNode:
		return "#comment"
	case html.DoctypeNode:
		return "#doctype"
	}
	return strings.ToLower(w.n.Data)
}

// Text implements dom.Node.
func (w *Node) Text() string {
	if w.n.Type != html.TextNode {
		return ""
	}
	return w.n.Data
}

// Attr implements dom.Node.
func (w *Node) Attr(key string) (string, bool) {
	return attr(w.n, key)
}

// Parent implements dom.Node.
func (w *Node) Parent() dom.Node { return w.doc.wrap(w.n.Parent) }

// FirstChild implements dom.Node.
func (w *Node) FirstChild() dom.Node { return w.doc.wrap(w.n.FirstChild) }

// LastChild implements dom.Node.
func (w *Node) LastChild() dom.Node { return w.doc.wrap(w.n.LastChild) }

// NextSibling implements dom.Node.
func (w *Node) NextSibling() dom.Node { return w.doc.wrap(w.n.NextSibling) }

// PrevSibling implements dom.Node.
func (w *Node) PrevSibling() dom.Node { return w.doc.wrap(w.n.PrevSibling) }

func (w *Node) String() string {
	if w.n.Type == html.TextNode {
		return "#text " + strings.TrimSpace(w.n.Data)
	}
	return "<" + w.Name() + ">"
}

// wrap returns the cached wrapper for h. A nil h yields a nil interface.
func (d *Document) wrap(h *html.Node) dom.Node {
	if h == nil {
		return nil
	}
	if w, ok := d.nodes[h]; ok {
		return w
	}
	w := &Node{n: h, doc: d}
	d.nodes[h] = w
	return w
}

// unwrap returns the html node behind n when n belongs to d.
func (d *Document) unwrap(n dom.Node) *html.Node {
	w, ok := n.(*Node)
	if !ok || w == nil || w.doc != d {
		return nil
	}
	return w.n
}
