package navigation

import (
	"testing"

	"github.com/entrhq/cursornav/pkg/cursor"
	"github.com/entrhq/cursornav/pkg/description"
	"github.com/entrhq/cursornav/pkg/dom"
	"github.com/entrhq/cursornav/pkg/dom/htmldom"
	"github.com/entrhq/cursornav/pkg/eventloop"
	"github.com/entrhq/cursornav/pkg/interframe"
	"github.com/entrhq/cursornav/pkg/shifter"
	"github.com/entrhq/cursornav/pkg/speech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, markup string, opts ...Option) (*Manager, *htmldom.Document, *eventloop.Manual) {
	t.Helper()
	doc, err := htmldom.ParseString(markup, htmldom.Options{Location: "test"})
	require.NoError(t, err)
	loop := eventloop.NewManual()
	all := append([]Option{WithProvider(htmldom.NewDescriber(doc))}, opts...)
	return New(doc, loop, all...), doc, loop
}

func selText(sel *cursor.Selection) string {
	if sel == nil {
		return ""
	}
	start, end := sel.AbsStart(), sel.AbsEnd()
	if !dom.IsText(start.Node) {
		return "<" + start.Node.Name() + ">"
	}
	runes := []rune(start.Node.Text())
	if start.Node == end.Node && end.Index > start.Index && end.Index <= len(runes) {
		return string(runes[start.Index:end.Index])
	}
	return string(runes)
}

func curText(m *Manager) string {
	return selText(m.CurrentSelection())
}

type recorder struct {
	positions     []string
	granularities []int
}

func (r *recorder) RecordPosition(location string, _ dom.Point) {
	r.positions = append(r.positions, location)
}

func (r *recorder) RecordGranularity(g int) {
	r.granularities = append(r.granularities, g)
}

const threeParagraphs = `<p>One</p><p>Two</p><p>Three</p>`

func TestNavigate_ForwardAndBackward(t *testing.T) {
	m, _, _ := newManager(t, threeParagraphs)

	var got []string
	for i := 0; i < 3; i++ {
		require.True(t, m.Navigate())
		got = append(got, curText(m))
	}
	assert.Equal(t, []string{"One", "Two", "Three"}, got)

	m.SetReversed(true)
	require.True(t, m.Navigate())
	assert.Equal(t, "Two", curText(m))
	assert.True(t, m.CurrentSelection().IsReversed())
	assert.Equal(t, "Three", selText(m.PreviousSelection()))
}

func TestNavigate_PageEndScenario(t *testing.T) {
	m, _, _ := newManager(t, threeParagraphs)
	for i := 0; i < 3; i++ {
		require.True(t, m.Navigate())
	}
	require.Equal(t, "Three", curText(m))

	assert.False(t, m.Navigate())
	assert.True(t, m.AtPageEnd())
	assert.Equal(t, AtPageEnd, m.State())

	m.AnnouncePageEnd(speech.Flush)
	last := m.LastDescriptions()
	require.Len(t, last, 1)
	assert.Equal(t, []description.Earcon{description.EarconWrap}, last[0].Earcons)
	assert.Equal(t, "Wrapped to top", last[0].Text)

	assert.True(t, m.Navigate())
	assert.Equal(t, "One", curText(m))
	assert.False(t, m.AtPageEnd())
	assert.Equal(t, Ready, m.State())
}

func TestNavigate_WrapsExactlyOnce(t *testing.T) {
	for _, reversed := range []bool{false, true} {
		m, _, _ := newManager(t, threeParagraphs)
		m.SetReversed(reversed)
		require.True(t, m.Navigate())
		first := curText(m)

		pageEnds := 0
		for i := 0; i < 10; i++ {
			m.Navigate()
			if m.AtPageEnd() {
				pageEnds++
				require.True(t, m.Navigate())
				break
			}
		}
		assert.Equal(t, 1, pageEnds)
		assert.Equal(t, first, curText(m))

		require.True(t, m.Navigate())
		assert.False(t, m.AtPageEnd())
		assert.NotEqual(t, first, curText(m))
	}
}

func TestNavigate_RecoversFromHistory(t *testing.T) {
	m, doc, _ := newManager(t, `<p id="a">One</p><p id="b">Two</p><p>Three</p>`)
	m.Navigate()
	m.Navigate()
	require.Equal(t, "Two", curText(m))

	require.NoError(t, doc.Remove(doc.ElementByID("b")))

	assert.True(t, m.Navigate())
	assert.Equal(t, "One", curText(m))
	descs := m.FinishNavCommand("", false, speech.Flush)
	require.NotEmpty(t, descs)
	assert.Contains(t, descs[0].Earcons, description.EarconRecoveredFocus)
}

func TestNavigate_EmptyHistoryDegradesToPageEnd(t *testing.T) {
	m, doc, _ := newManager(t, `<p id="a">Only</p>`)
	require.True(t, m.Navigate())

	require.NoError(t, doc.Remove(doc.ElementByID("a")))

	assert.False(t, m.Navigate())
	assert.True(t, m.AtPageEnd())
	assert.Nil(t, m.CurrentSelection())
}

func TestNavigate_HistoryBound(t *testing.T) {
	settings := DefaultSettings()
	settings.HistorySize = 3
	m, _, _ := newManager(t, `<p>1</p><p>2</p><p>3</p><p>4</p><p>5</p><p>6</p><p>7</p><p>8</p>`, WithSettings(settings))

	for i := 0; i < 6; i++ {
		require.True(t, m.Navigate())
		assert.LessOrEqual(t, m.History().Len(), 3)
	}
	nodes := m.History().Nodes()
	require.Len(t, nodes, 3)
	assert.Equal(t, m.CurrentSelection().Node(), nodes[len(nodes)-1])
}

func TestSubnavigate_KeepsGranularity(t *testing.T) {
	m, _, _ := newManager(t, `<p>ab</p><p>c</p>`)
	require.True(t, m.Navigate())
	require.Equal(t, "ab", curText(m))

	var got []string
	for i := 0; i < 3; i++ {
		require.True(t, m.Subnavigate())
		got = append(got, curText(m))
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, int(shifter.Object), m.Granularity())
}

func TestNavigate_AtGranularity(t *testing.T) {
	rec := &recorder{}
	m, _, _ := newManager(t, `<p>alpha beta</p><p>gamma</p>`, WithPositionRecorder(rec))
	require.True(t, m.Navigate())

	require.True(t, m.Navigate(AtGranularity(shifter.Word)))
	assert.Equal(t, "beta", curText(m))
	assert.Equal(t, "Word", m.GranularityName())
	assert.Equal(t, []int{int(shifter.Word)}, rec.granularities)

	m.MakeLessGranular()
	assert.Equal(t, "Line", m.GranularityName())
	assert.Equal(t, int(shifter.Line), rec.granularities[len(rec.granularities)-1])
}

const table = `<p>Intro</p><table>` +
	`<tr><th>Name</th><th>Age</th></tr>` +
	`<tr><td>Ada</td><td>36</td></tr>` +
	`</table><p>Outro</p>`

func enterTable(t *testing.T) *Manager {
	t.Helper()
	m, _, _ := newManager(t, table)
	m.Navigate()
	m.Navigate()
	require.Equal(t, "Name", curText(m))
	require.True(t, m.PerformAction(ActionEnterShifter))
	require.Equal(t, shifter.TableName, m.Stack().Active().Name())
	return m
}

func TestPerformAction_IdempotentEnter(t *testing.T) {
	m := enterTable(t)
	assert.Equal(t, 1, m.Stack().Depth())
	assert.Equal(t, "<th>", curText(m))

	assert.False(t, m.PerformAction(ActionEnterShifter))
	assert.False(t, m.PerformAction(ActionEnterShifterSilently))
	assert.Equal(t, 1, m.Stack().Depth())
}

func TestPerformAction_StackBalance(t *testing.T) {
	m := enterTable(t)

	require.True(t, m.PerformAction(ActionExitShifter))
	assert.Equal(t, 0, m.Stack().Depth())

	before := m.CurrentSelection()
	assert.False(t, m.PerformAction(ActionExitShifter))
	assert.False(t, m.PerformAction(ActionExitShifterContent))
	assert.Equal(t, 0, m.Stack().Depth())
	assert.True(t, before.Equals(m.CurrentSelection()))

	descs := m.FinishNavCommand("", false, speech.Flush)
	require.NotEmpty(t, descs)
	assert.Equal(t, []description.Earcon{description.EarconEnterStrategy, description.EarconExitStrategy}, descs[0].Earcons)
}

func TestPerformAction_ExitWithContentCommit(t *testing.T) {
	m := enterTable(t)

	require.True(t, m.PerformAction(ActionExitShifterContent))
	assert.False(t, m.Stack().IsNested())
	assert.Equal(t, "36", curText(m))

	require.True(t, m.Navigate())
	assert.Equal(t, "Outro", curText(m))
}

func TestPerformAction_ShifterActions(t *testing.T) {
	m := enterTable(t)

	assert.True(t, m.PerformAction(shifter.ActionNextRow))
	assert.Equal(t, "<td>", curText(m))
	assert.True(t, m.PerformAction(shifter.ActionGoToLastCell))
	assert.False(t, m.PerformAction(shifter.ActionNextRow))
	assert.False(t, m.PerformAction("noSuchAction"))
}

func TestNavigate_NestedExhaustionIsNotPageEnd(t *testing.T) {
	m := enterTable(t)

	require.True(t, m.Navigate())
	assert.False(t, m.Navigate())
	assert.False(t, m.AtPageEnd())
	assert.True(t, m.Stack().IsNested())
}

func TestSetGranularity_Scenario(t *testing.T) {
	m := enterTable(t)

	assert.False(t, m.SetGranularity(shifter.Word, false))
	assert.Equal(t, shifter.TableName, m.Stack().Active().Name())

	assert.True(t, m.SetGranularity(shifter.Object, true))
	assert.False(t, m.Stack().IsNested())
	assert.Equal(t, int(shifter.Object), m.Granularity())
}

func TestFindNext(t *testing.T) {
	m, _, _ := newManager(t, `<p>Intro</p><h2>First</h2><p>Body</p><h2>Second</h2>`)

	require.True(t, m.FindNext(nil, "heading", false))
	assert.Equal(t, "First", curText(m))
	require.True(t, m.FindNext(nil, "heading", false))
	assert.Equal(t, "Second", curText(m))
	assert.False(t, m.FindNext(nil, "heading", false))
	assert.Equal(t, "Second", curText(m))

	m.SetReversed(true)
	require.True(t, m.FindNext(nil, "heading", false))
	assert.Equal(t, "First", curText(m))

	assert.False(t, m.FindNext(nil, "noSuchPredicate", false))

	isParagraph := func(n dom.Node) bool { return n.Name() == "p" }
	require.True(t, m.FindNext(isParagraph, "", false))
	assert.Equal(t, "Intro", curText(m))
}

func TestFindNext_KeepsSavedGranularity(t *testing.T) {
	rec := &recorder{}
	m, _, _ := newManager(t, `<p>Intro words</p><h2>First</h2>`, WithPositionRecorder(rec))

	require.True(t, m.SetGranularity(shifter.Word, false))
	require.True(t, m.Navigate())
	require.Equal(t, []int{int(shifter.Word)}, rec.granularities)

	require.True(t, m.FindNext(nil, "heading", false))
	assert.Equal(t, "First", curText(m))
	assert.Equal(t, int(shifter.Object), m.Granularity())
	assert.Equal(t, []int{int(shifter.Word)}, rec.granularities, "a structural jump is not a granularity choice")
}

func TestFindNext_ResetsStack(t *testing.T) {
	m := enterTable(t)
	m.Stack().Active().SetGranularity(shifter.TableColumn)

	require.True(t, m.FindNext(func(n dom.Node) bool { return n.Name() == "p" }, "", false))
	assert.Equal(t, "Outro", curText(m))
	assert.False(t, m.Stack().IsNested())
	assert.Equal(t, int(shifter.Object), m.Granularity())
}

func TestPageSelection(t *testing.T) {
	m, _, _ := newManager(t, threeParagraphs)
	m.Navigate()
	require.True(t, m.TogglePageSelection())

	m.Navigate()
	descs := m.FinishNavCommand("", false, speech.Flush)
	assert.Equal(t, "selected", descs[len(descs)-1].Annotation)

	start, end := m.PageSelection().Range()
	assert.Equal(t, "One", start.Node.Text())
	assert.Equal(t, "Two", end.Node.Text())

	require.True(t, m.TogglePageSelection())
	assert.Nil(t, m.PageSelection())
	descs = m.FinishNavCommand("", false, speech.Flush)
	assert.Equal(t, "unselected", descs[len(descs)-1].Annotation)
}

func TestFinishNavCommand(t *testing.T) {
	rec := &recorder{}
	var indicated []dom.Node
	sink := speech.NewTextSink(nil, nil, nil)
	m, _, _ := newManager(t, `<h2>Title</h2>`,
		WithSink(sink),
		WithPositionRecorder(rec),
		WithIndicator(func(n dom.Node, _ dom.Point) { indicated = append(indicated, n) }))

	assert.Nil(t, m.FinishNavCommand("", true, speech.Flush))

	m.Navigate()
	descs := m.FinishNavCommand("Moved", true, speech.Flush)
	require.Len(t, descs, 2)
	assert.Equal(t, "Moved", descs[0].Context)
	assert.Equal(t, []string{"Moved, Title Heading 2"}, sink.Spoken())
	assert.Equal(t, []string{"test"}, rec.positions)
	require.Len(t, indicated, 1)
	assert.Equal(t, m.CurrentSelection().Node(), indicated[0])
}

func TestSyncAll_FocusesControl(t *testing.T) {
	m, doc, _ := newManager(t, `<p>x</p><a href="#">link text</a>`)
	m.Navigate()
	m.Navigate()
	require.Equal(t, "link text", curText(m))

	m.SyncAll()
	assert.Equal(t, "a", doc.ActiveElement().Name())
}

func TestNew_StartsAtActiveElement(t *testing.T) {
	m, _, _ := newManager(t, `<p>One</p><button autofocus>Go</button><p>Two</p>`)
	assert.Equal(t, "<button>", curText(m))

	require.True(t, m.Navigate())
	assert.Equal(t, "Two", curText(m))
}

func TestHandleMessage_DropsMalformed(t *testing.T) {
	m, _, _ := newManager(t, threeParagraphs)
	m.Navigate()

	for _, data := range []string{
		`not json`,
		`{"version":1,"command":"enterIframe"}`,
		`{"version":2,"command":"ackId","sourceId":1}`,
		`{"version":1,"command":"exitIframe","sourceId":9,"granularity":3,"reversed":false,"shifter":"navigation"}`,
	} {
		m.HandleMessage([]byte(data))
	}
	assert.Equal(t, "One", curText(m))
	assert.True(t, m.HasFocus())
}

func TestHandleMessage_DropsRepeatedDelivery(t *testing.T) {
	m, _, _ := newManager(t, threeParagraphs)
	st := shifter.State{Version: shifter.StateVersion, Shifter: shifter.NavigationName, Granularity: int(shifter.Object)}

	enter, err := interframe.NewEnterIframe(1, st, "").Encode()
	require.NoError(t, err)

	m.HandleMessage(enter)
	assert.Equal(t, "One", curText(m))
	require.True(t, m.Navigate())
	assert.Equal(t, "Two", curText(m))

	m.HandleMessage(enter)
	assert.Equal(t, "Two", curText(m), "a second delivery of the same message is ignored")

	again, err := interframe.NewEnterIframe(1, st, "").Encode()
	require.NoError(t, err)
	m.HandleMessage(again)
	assert.Equal(t, "One", curText(m))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "READY", Ready.String())
	assert.Equal(t, "AT_PAGE_END", AtPageEnd.String())
	assert.Equal(t, "READING", Reading.String())
}
