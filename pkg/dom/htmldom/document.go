// Package htmldom is a document model over golang.org/x/net/html trees.
//
// Every frame of a page becomes its own Document: iframe/frame elements with
// a srcdoc attribute are parsed in place, and src attributes are handed to a
// FrameResolver. The element hosting a child document stays in the parent
// tree as an opaque object; the child document is reached only through
// Frame/Frames so each document can be driven by its own engine.
package htmldom

import (
	"fmt"
	"io"
	"strings"

	"github.com/entrhq/cursornav/pkg/dom"
	"github.com/entrhq/cursornav/pkg/logging"
	"github.com/gobwas/glob"
	"golang.org/x/net/html"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("htmldom")
	if err != nil {
		debugLog.Warnf("Failed to initialize htmldom logger, using stderr fallback: %v", err)
	}
}

// DefaultMaxFrameDepth bounds how deeply nested frames are parsed.
const DefaultMaxFrameDepth = 8

// FrameResolver supplies the markup for a frame's src attribute.
type FrameResolver interface {
	ResolveFrame(src string) (markup string, ok bool)
}

// FrameResolverFunc adapts a function to FrameResolver.
type FrameResolverFunc func(src string) (string, bool)

// ResolveFrame calls f.
func (f FrameResolverFunc) ResolveFrame(src string) (string, bool) {
	return f(src)
}

// MapResolver resolves frame sources from a fixed table.
type MapResolver map[string]string

// ResolveFrame looks src up in the table.
func (m MapResolver) ResolveFrame(src string) (string, bool) {
	markup, ok := m[src]
	return markup, ok
}

// Options configures parsing.
type Options struct {
	// Location identifies the document for position persistence.
	Location string

	// SkipPatterns are glob patterns over element names whose subtrees are
	// treated as hidden, e.g. "nav" or "x-*".
	SkipPatterns []string

	// Frames resolves src attributes of frame elements. Nil leaves such
	// frames empty.
	Frames FrameResolver

	// MaxFrameDepth bounds nested frame parsing; 0 means DefaultMaxFrameDepth.
	MaxFrameDepth int
}

// FrameRef pairs a frame-hosting element with the document it hosts.
type FrameRef struct {
	Element dom.Node
	Doc     *Document
}

// Document implements dom.Document for a parsed HTML tree.
type Document struct {
	top      *html.Node
	root     *html.Node
	location string
	nested   bool
	parent   *Document

	nodes  map[*html.Node]*Node
	active *html.Node
	frames map[*html.Node]*Document
	order  []*html.Node
	skip   []glob.Glob
}

// Parse reads markup and builds a document, parsing nested frames.
func Parse(r io.Reader, opts Options) (*Document, error) {
	skip := make([]glob.Glob, 0, len(opts.SkipPatterns))
	for _, pattern := range opts.SkipPatterns {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid skip pattern %q: %w", pattern, err)
		}
		skip = append(skip, g)
	}
	if opts.MaxFrameDepth <= 0 {
		opts.MaxFrameDepth = DefaultMaxFrameDepth
	}
	return parse(r, opts, skip, nil, 0)
}

// ParseString is Parse over a string.
func ParseString(markup string, opts Options) (*Document, error) {
	return Parse(strings.NewReader(markup), opts)
}

func parse(r io.Reader, opts Options, skip []glob.Glob, parent *Document, depth int) (*Document, error) {
	top, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	d := &Document{
		top:      top,
		root:     findElement(top, "body"),
		location: opts.Location,
		nested:   parent != nil,
		parent:   parent,
		nodes:    make(map[*html.Node]*Node),
		frames:   make(map[*html.Node]*Document),
		skip:     skip,
	}
	if d.root == nil {
		d.root = top
	}

	var frameCount int
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if d.active == nil && hasAttr(n, "autofocus") {
				d.active = n
			}
			if isFrameElement(n) {
				frameCount++
				d.parseFrame(n, opts, depth, frameCount)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(top)

	return d, nil
}

func (d *Document) parseFrame(n *html.Node, opts Options, depth, index int) {
	if depth+1 > opts.MaxFrameDepth {
		debugLog.Warnf("Frame nesting deeper than %d in %s, leaving frame empty", opts.MaxFrameDepth, d.location)
		return
	}

	markup, ok := attr(n, "srcdoc")
	location := fmt.Sprintf("%s#frame-%d", d.location, index)
	if !ok {
		src, hasSrc := attr(n, "src")
		if !hasSrc || opts.Frames == nil {
			return
		}
		markup, ok = opts.Frames.ResolveFrame(src)
		if !ok {
			debugLog.Debugf("No markup for frame src %q", src)
			return
		}
		location = src
	}

	childOpts := opts
	childOpts.Location = location
	child, err := parse(strings.NewReader(markup), childOpts, d.skip, d, depth+1)
	if err != nil {
		debugLog.Warnf("Failed to parse frame %s: %v", location, err)
		return
	}
	d.frames[n] = child
}

// Root returns <body>, or the document node when there is none.
func (d *Document) Root() dom.Node {
	return d.wrap(d.root)
}

// Location returns the document location.
func (d *Document) Location() string {
	return d.location
}

// IsNested reports whether this document was parsed from a frame.
func (d *Document) IsNested() bool {
	return d.nested
}

// Parent returns the hosting document, or nil for the top document.
func (d *Document) Parent() *Document {
	return d.parent
}

// IsAttached reports whether n still hangs off this document's tree.
func (d *Document) IsAttached(n dom.Node) bool {
	h := d.unwrap(n)
	for cur := h; cur != nil; cur = cur.Parent {
		if cur == d.top {
			return true
		}
	}
	return false
}

// IsVisible reports whether n and its ancestors are rendered.
func (d *Document) IsVisible(n dom.Node) bool {
	h := d.unwrap(n)
	if h == nil || !d.IsAttached(n) {
		return false
	}
	if h.Type == html.CommentNode || h.Type == html.DoctypeNode {
		return false
	}
	for cur := h; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode && d.hidden(cur) {
			return false
		}
	}
	return true
}

// ActiveElement returns the focused node.
func (d *Document) ActiveElement() dom.Node {
	if d.active == nil || !d.IsAttached(d.wrap(d.active)) {
		return nil
	}
	return d.wrap(d.active)
}

// Focus moves focus to n. Nodes of other documents are ignored.
func (d *Document) Focus(n dom.Node) {
	if h := d.unwrap(n); h != nil {
		d.active = h
	}
}

// Bounds lays nodes out one per row in document order, indented by depth.
func (d *Document) Bounds(n dom.Node) dom.Point {
	h := d.unwrap(n)
	if h == nil {
		return dom.Point{}
	}
	if d.order == nil {
		d.buildOrder()
	}
	for i, cur := range d.order {
		if cur == h {
			return dom.Point{X: 2 * dom.Depth(n), Y: i}
		}
	}
	return dom.Point{}
}

// IsFrame reports whether n hosts a nested document.
func (d *Document) IsFrame(n dom.Node) bool {
	h := d.unwrap(n)
	return h != nil && isFrameElement(h)
}

// Frame returns the document hosted by a frame element.
func (d *Document) Frame(n dom.Node) (*Document, bool) {
	h := d.unwrap(n)
	if h == nil {
		return nil, false
	}
	child, ok := d.frames[h]
	return child, ok
}

// Frames lists hosted documents in document order.
func (d *Document) Frames() []FrameRef {
	var refs []FrameRef
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if child, ok := d.frames[n]; ok {
			refs = append(refs, FrameRef{Element: d.wrap(n), Doc: child})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(d.top)
	return refs
}

// ElementByID finds an element by its id attribute.
func (d *Document) ElementByID(id string) dom.Node {
	var found *html.Node
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if found != nil {
			return
		}
		if v, ok := attr(n, "id"); ok && v == id {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(d.top)
	return d.wrap(found)
}

// FindText returns the first text node containing substr.
func (d *Document) FindText(substr string) dom.Node {
	var found *html.Node
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.TextNode && strings.Contains(n.Data, substr) {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(d.top)
	return d.wrap(found)
}

// Remove detaches n from the tree.
func (d *Document) Remove(n dom.Node) error {
	h := d.unwrap(n)
	if h == nil || h.Parent == nil {
		return fmt.Errorf("node is not attached to %s", d.location)
	}
	h.Parent.RemoveChild(h)
	d.order = nil
	return nil
}

// SetAttr sets or replaces an attribute on an element.
func (d *Document) SetAttr(n dom.Node, key, value string) error {
	h := d.unwrap(n)
	if h == nil || h.Type != html.ElementNode {
		return fmt.Errorf("cannot set %q on a non-element", key)
	}
	for i := range h.Attr {
		if h.Attr[i].Key == key {
			h.Attr[i].Val = value
			return nil
		}
	}
	h.Attr = append(h.Attr, html.Attribute{Key: key, Val: value})
	return nil
}

// Render serialises n back to markup.
func (d *Document) Render(n dom.Node) (string, error) {
	h := d.unwrap(n)
	if h == nil {
		return "", fmt.Errorf("node does not belong to %s", d.location)
	}
	var sb strings.Builder
	if err := html.Render(&sb, h); err != nil {
		return "", fmt.Errorf("failed to render node: %w", err)
	}
	return sb.String(), nil
}

func (d *Document) buildOrder() {
	d.order = d.order[:0]
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		d.order = append(d.order, n)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(d.top)
}

func (d *Document) hidden(n *html.Node) bool {
	tag := strings.ToLower(n.Data)
	if invisibleElements[tag] {
		return true
	}
	for _, g := range d.skip {
		if g.Match(tag) {
			return true
		}
	}
	if hasAttr(n, "hidden") {
		return true
	}
	if v, _ := attr(n, "aria-hidden"); strings.EqualFold(v, "true") {
		return true
	}
	if tag == "input" {
		if v, _ := attr(n, "type"); strings.EqualFold(v, "hidden") {
			return true
		}
	}
	if style, ok := attr(n, "style"); ok {
		compact := strings.ToLower(strings.Join(strings.Fields(style), ""))
		if strings.Contains(compact, "display:none") || strings.Contains(compact, "visibility:hidden") {
			return true
		}
	}
	return false
}

// invisibleElements never render content.
var invisibleElements = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"title":    true,
	"meta":     true,
	"link":     true,
}

func isFrameElement(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	tag := strings.ToLower(n.Data)
	return tag == "iframe" || tag == "frame"
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := attr(n, key)
	return ok
}
