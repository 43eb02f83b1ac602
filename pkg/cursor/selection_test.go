package cursor_test

import (
	"testing"

	"github.com/entrhq/cursornav/pkg/cursor"
	"github.com/entrhq/cursornav/pkg/dom"
	"github.com/entrhq/cursornav/pkg/dom/htmldom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// texts parses markup and returns the document and the text node of every
// element with an id, keyed by id.
func texts(t *testing.T, markup string, ids ...string) (*htmldom.Document, map[string]dom.Node) {
	t.Helper()
	doc, err := htmldom.ParseString(markup, htmldom.Options{Location: "test"})
	require.NoError(t, err)

	out := make(map[string]dom.Node, len(ids))
	for _, id := range ids {
		el := doc.ElementByID(id)
		require.NotNil(t, el, id)
		out[id] = el.FirstChild()
	}
	return doc, out
}

func TestFromNode(t *testing.T) {
	doc, n := texts(t, `<p id="a">héllo</p><img id="i">`, "a")

	sel := cursor.FromNode(n["a"])
	assert.Equal(t, 0, sel.Start.Index)
	assert.Equal(t, 5, sel.End.Index, "offsets count runes")
	assert.False(t, sel.IsReversed())
	assert.True(t, sel.IsValid(doc))

	img := cursor.FromNode(doc.ElementByID("i"))
	assert.True(t, img.IsCollapsed())

	assert.Nil(t, cursor.FromNode(nil))
}

func TestSelection_Reversal(t *testing.T) {
	_, n := texts(t, `<p id="a">one two</p>`, "a")

	sel := cursor.FromRange(n["a"], 0, 3)
	sel.SetReversed(true)

	assert.True(t, sel.IsReversed())
	assert.Equal(t, 3, sel.Start.Index, "start is where travel began")
	assert.Equal(t, 0, sel.AbsStart().Index)
	assert.Equal(t, 3, sel.AbsEnd().Index)

	sel.SetReversed(true)
	assert.Equal(t, 3, sel.Start.Index, "setting the same direction is a no-op")

	sel.SetReversed(false)
	assert.Equal(t, 0, sel.Start.Index)
}

func TestSelection_Comparisons(t *testing.T) {
	_, n := texts(t, `<p id="a">one two</p>`, "a")

	a := cursor.FromRange(n["a"], 0, 3)
	b := a.Clone().SetReversed(true)

	assert.False(t, a.Equals(b))
	assert.True(t, a.SameRange(b))
	assert.True(t, a.Equals(a.Clone()))

	var none *cursor.Selection
	assert.True(t, none.Equals(nil))
	assert.False(t, a.SameRange(nil))
	assert.Nil(t, none.Node())
	assert.Nil(t, none.Clone())
}

func TestSelection_Collapse(t *testing.T) {
	_, n := texts(t, `<p id="a">one two</p>`, "a")

	sel := cursor.FromRange(n["a"], 4, 7).SetReversed(true).Collapse()
	assert.True(t, sel.IsCollapsed())
	assert.Equal(t, 7, sel.Start.Index)
}

func TestSelection_InvalidAfterDetach(t *testing.T) {
	doc, n := texts(t, `<p id="a">one</p><p id="b">two</p>`, "a", "b")

	sel := cursor.FromNode(n["a"])
	require.NoError(t, doc.Remove(doc.ElementByID("a")))
	assert.False(t, sel.IsValid(doc))
	assert.True(t, cursor.FromNode(n["b"]).IsValid(doc))
}

func TestComparePositions(t *testing.T) {
	_, n := texts(t, `<p id="a">one</p><p id="b">two</p>`, "a", "b")

	a0 := cursor.Position{Node: n["a"], Index: 0}
	a2 := cursor.Position{Node: n["a"], Index: 2}
	b0 := cursor.Position{Node: n["b"], Index: 0}

	assert.Equal(t, -1, cursor.ComparePositions(a0, a2))
	assert.Equal(t, 1, cursor.ComparePositions(a2, a0))
	assert.Equal(t, 0, cursor.ComparePositions(a2, a2))
	assert.Equal(t, -1, cursor.ComparePositions(a2, b0))
	assert.Equal(t, 1, cursor.ComparePositions(b0, a0))
}

func TestPageSelection(t *testing.T) {
	_, n := texts(t, `<p id="a">one</p><p id="b">two</p><p id="c">three</p>`, "a", "b", "c")

	ps := cursor.NewPageSelection(cursor.FromNode(n["a"]))
	assert.True(t, ps.Extend(cursor.FromNode(n["b"])), "moving away grows the range")
	assert.True(t, ps.Extend(cursor.FromNode(n["c"])))

	start, end := ps.Range()
	assert.Equal(t, n["a"], start.Node)
	assert.Equal(t, n["c"], end.Node)
	assert.True(t, ps.Contains(cursor.Position{Node: n["b"], Index: 1}))

	assert.False(t, ps.Extend(cursor.FromNode(n["b"])), "moving back unselects")
	assert.False(t, ps.Contains(cursor.Position{Node: n["c"], Index: 1}))
	assert.Equal(t, n["a"], ps.Anchor().Node())
	assert.Equal(t, n["b"], ps.Focus().Node())
}
