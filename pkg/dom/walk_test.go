package dom_test

import (
	"testing"

	"github.com/entrhq/cursornav/pkg/dom"
	"github.com/entrhq/cursornav/pkg/dom/htmldom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, markup string) *htmldom.Document {
	t.Helper()
	doc, err := htmldom.ParseString(markup, htmldom.Options{Location: "test"})
	require.NoError(t, err)
	return doc
}

func TestCompare(t *testing.T) {
	doc := parse(t, `<div id="d"><p id="a">one</p><p id="b">two</p></div>`)
	d, a, b := doc.ElementByID("d"), doc.ElementByID("a"), doc.ElementByID("b")

	assert.Equal(t, 0, dom.Compare(a, a))
	assert.Equal(t, -1, dom.Compare(a, b))
	assert.Equal(t, 1, dom.Compare(b, a))
	assert.Equal(t, -1, dom.Compare(d, a), "ancestors come first")
	assert.Equal(t, 1, dom.Compare(a.FirstChild(), d))
}

func TestContainsAndAncestor(t *testing.T) {
	doc := parse(t, `<section id="s"><p id="a">one <b>two</b></p></section>`)
	s, a := doc.ElementByID("s"), doc.ElementByID("a")
	bold := a.LastChild().FirstChild()

	assert.True(t, dom.Contains(s, bold))
	assert.True(t, dom.Contains(a, a))
	assert.False(t, dom.Contains(a, s))
	assert.False(t, dom.Contains(nil, a))

	assert.Equal(t, a, dom.AncestorNamed(bold, "p"))
	assert.Equal(t, s, dom.AncestorNamed(bold, "section", "article"))
	assert.Nil(t, dom.AncestorNamed(bold, "table"))
	assert.Equal(t, dom.Depth(a)+2, dom.Depth(bold))
}

func TestNextAndPrev(t *testing.T) {
	doc := parse(t, `<div id="d"><p id="a">one</p><p id="b">two</p></div>`)
	d, a, b := doc.ElementByID("d"), doc.ElementByID("a"), doc.ElementByID("b")

	assert.Equal(t, a.FirstChild(), dom.Next(d, a))
	assert.Equal(t, b, dom.NextSkip(d, a))
	assert.Nil(t, dom.NextSkip(d, b), "walks stay inside root")

	assert.Equal(t, a.FirstChild(), dom.Prev(d, b))
	assert.Equal(t, a, dom.Prev(d, a.FirstChild()))
	assert.Nil(t, dom.Prev(d, a))
	assert.Equal(t, b.FirstChild(), dom.LastDescendant(d))
}

func TestObjectAt(t *testing.T) {
	doc := parse(t, `<p id="a">one</p><div id="empty"></div><button id="btn"><span id="inner">go</span></button>`)

	a := doc.ElementByID("a")
	assert.Equal(t, a.FirstChild(), dom.ObjectAt(doc, doc.Root(), a), "first object inside")

	btn := doc.ElementByID("btn")
	assert.Equal(t, btn, dom.ObjectAt(doc, doc.Root(), doc.ElementByID("inner")), "enclosing object element")

	assert.Equal(t, a.FirstChild(), dom.ObjectAt(doc, doc.Root(), doc.ElementByID("empty")), "nearest object before")
	assert.Nil(t, dom.ObjectAt(doc, doc.Root(), nil))
}

func TestFindNext(t *testing.T) {
	doc := parse(t, `<h1 id="h1">Top</h1><p id="a">one</p><h2 id="h2">Sub</h2><h2 id="hidden" hidden>No</h2>`)
	isHeading := func(n dom.Node) bool {
		switch n.Name() {
		case "h1", "h2":
			return true
		}
		return false
	}
	root := doc.Root()
	h1, a, h2 := doc.ElementByID("h1"), doc.ElementByID("a"), doc.ElementByID("h2")

	assert.Equal(t, h1, dom.FindNext(doc, root, nil, isHeading, false, false))
	assert.Equal(t, h2, dom.FindNext(doc, root, a, isHeading, false, false))
	assert.Nil(t, dom.FindNext(doc, root, h2, isHeading, false, false), "hidden matches are skipped")
	assert.Equal(t, h2, dom.FindNext(doc, root, h2, isHeading, false, true))
	assert.Equal(t, h1, dom.FindNext(doc, root, a, isHeading, true, false))
	assert.Nil(t, dom.FindNext(doc, root, h1.FirstChild(), isHeading, true, false), "never an ancestor when reversed")
}

func TestTextContent(t *testing.T) {
	doc := parse(t, `<p id="a">  one
	<b>two</b> <span hidden>gone</span> three </p>`)

	assert.Equal(t, "one two three", dom.TextContent(doc, doc.ElementByID("a")))
	assert.Empty(t, dom.TextContent(doc, nil))
}
