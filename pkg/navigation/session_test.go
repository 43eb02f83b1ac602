package navigation

import (
	"testing"

	"github.com/entrhq/cursornav/pkg/dom"
	"github.com/entrhq/cursornav/pkg/dom/htmldom"
	"github.com/entrhq/cursornav/pkg/eventloop"
	"github.com/entrhq/cursornav/pkg/interframe"
	"github.com/entrhq/cursornav/pkg/shifter"
	"github.com/entrhq/cursornav/pkg/speech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frameFixture struct {
	session *Session
	loop    *eventloop.Manual
	sink    *speech.TextSink
	top     *Manager
	child   *Manager
	frame   dom.Node
}

func newFrameFixture(t *testing.T, markup string, settings Settings) *frameFixture {
	t.Helper()
	doc, err := htmldom.ParseString(markup, htmldom.Options{Location: "a"})
	require.NoError(t, err)

	loop := eventloop.NewManual()
	sink := speech.NewTextSink(nil, nil, nil)
	s := NewSession(doc, loop, sink, settings)

	f := &frameFixture{session: s, loop: loop, sink: sink, top: s.Top()}
	if refs := doc.Frames(); len(refs) > 0 {
		f.frame = refs[0].Element
		f.child, _ = s.Manager(refs[0].Doc)
	}
	return f
}

const twoFrames = `<p>Before</p>` +
	`<iframe srcdoc="<p>Inside one</p><p>Inside two</p>"></iframe>` +
	`<p>After</p>`

func TestSession_EnterAndExitFrame(t *testing.T) {
	settings := DefaultSettings()
	settings.Granularity = shifter.Line
	f := newFrameFixture(t, twoFrames, settings)
	require.NotNil(t, f.child)
	require.Len(t, f.session.Managers(), 2)
	assert.False(t, f.child.HasFocus())

	require.True(t, f.top.Navigate())
	assert.Equal(t, "Before", curText(f.top))

	require.True(t, f.top.Navigate())
	assert.Equal(t, f.frame, f.top.CurrentSelection().Node())
	f.loop.RunPending()

	assert.Same(t, f.child, f.session.Focused())
	assert.False(t, f.top.HasFocus())
	assert.True(t, f.child.HasFocus())
	id, ok := f.child.FrameID()
	assert.True(t, ok)
	assert.True(t, f.top.Registry().IsAcknowledged(f.frame))
	assert.Equal(t, 1, id)
	assert.Equal(t, "Inside one", curText(f.child))
	assert.Equal(t, int(shifter.Line), f.child.Granularity())
	assert.Equal(t, []string{"Inside one"}, f.sink.Spoken())

	enters := f.session.Hub().Sent(interframe.CmdEnterIframe)
	require.Len(t, enters, 1)
	assert.Equal(t, int(shifter.Line), enters[0].State().Granularity)

	require.True(t, f.child.Navigate())
	assert.Equal(t, "Inside two", curText(f.child))

	f.child.SetGranularity(shifter.Word, false)
	require.Equal(t, "Inside", curText(f.child))
	require.True(t, f.child.Navigate())
	require.Equal(t, "two", curText(f.child))
	require.True(t, f.child.Navigate())
	f.loop.RunPending()

	exits := f.session.Hub().Sent(interframe.CmdExitIframe)
	require.Len(t, exits, 1)
	assert.Equal(t, int(shifter.Word), exits[0].State().Granularity)

	assert.Same(t, f.top, f.session.Focused())
	assert.False(t, f.child.HasFocus())
	assert.Equal(t, "After", curText(f.top))
	assert.Equal(t, int(shifter.Word), f.top.Granularity())
	assert.Equal(t, "After", f.sink.Spoken()[len(f.sink.Spoken())-1])
}

func TestSession_EnterFrameBackwards(t *testing.T) {
	f := newFrameFixture(t, twoFrames, DefaultSettings())
	f.top.Navigate()
	f.top.Navigate()
	f.loop.RunPending()
	f.child.Navigate()
	f.child.Navigate()
	f.loop.RunPending()
	require.Equal(t, "After", curText(f.top))

	f.top.SetReversed(true)
	require.True(t, f.top.Navigate())
	f.loop.RunPending()

	assert.Same(t, f.child, f.session.Focused())
	assert.Equal(t, "Inside two", curText(f.child))
	assert.True(t, f.child.IsReversed())
	assert.Len(t, f.session.Hub().Sent(interframe.CmdAssignID), 1)
}

func TestSession_IgnoreFrames(t *testing.T) {
	f := newFrameFixture(t, twoFrames, DefaultSettings())
	f.top.Navigate(IgnoreFrames())
	require.True(t, f.top.Navigate(IgnoreFrames()))
	f.loop.RunPending()

	assert.Equal(t, "<iframe>", curText(f.top))
	assert.True(t, f.top.HasFocus())
	assert.Empty(t, f.session.Hub().Log())
}

func TestSession_HandshakeCap(t *testing.T) {
	f := newFrameFixture(t, `<p>Before</p><iframe src="gone.html"></iframe><p>After</p>`, DefaultSettings())
	require.Nil(t, f.child)
	frame := f.top.Document().Root().FirstChild().NextSibling()
	require.Equal(t, "iframe", frame.Name())

	for i := 0; i < 40; i++ {
		f.top.Navigate()
		f.loop.RunPending()
		require.True(t, f.top.HasFocus())
	}

	assert.Len(t, f.session.Hub().Sent(interframe.CmdAssignID), interframe.DefaultMaxAttempts)
	assert.Equal(t, interframe.DefaultMaxAttempts, f.top.Registry().Attempts(frame))
	assert.True(t, f.top.Registry().IsUnreachable(frame))

	f.top.SyncToNode(f.top.Document().Root().FirstChild().FirstChild())
	require.Equal(t, "Before", curText(f.top))
	require.True(t, f.top.Navigate())
	assert.Equal(t, "After", curText(f.top))
	assert.Len(t, f.session.Hub().Sent(interframe.CmdAssignID), interframe.DefaultMaxAttempts)
}

func TestSession_FrameTraversalDisabled(t *testing.T) {
	settings := DefaultSettings()
	settings.FrameTraversal = false
	f := newFrameFixture(t, twoFrames, settings)

	f.top.Navigate()
	f.top.Navigate()
	f.loop.RunPending()
	assert.True(t, f.top.HasFocus())
	assert.Equal(t, "<iframe>", curText(f.top))
}

func TestSession_ReadingStopsAtFrameHandOff(t *testing.T) {
	f := newFrameFixture(t, twoFrames, DefaultSettings())
	require.True(t, f.top.Navigate())

	f.top.StartReading(speech.Flush)
	assert.False(t, f.top.IsReading())
	assert.Equal(t, f.frame, f.top.CurrentSelection().Node())

	f.loop.RunPending()
	assert.Same(t, f.child, f.session.Focused())
	assert.Equal(t, []string{"Before", "Inside one"}, f.sink.Spoken())
}

const framedHeadings = `<p>Top</p>` +
	`<iframe srcdoc="<p>Lead</p><h2>Deep heading</h2>"></iframe>` +
	`<h2>Outer heading</h2>`

func TestSession_FindNextRelay(t *testing.T) {
	f := newFrameFixture(t, framedHeadings, DefaultSettings())

	require.True(t, f.top.FindNext(nil, "heading", false))
	f.loop.RunPending()

	assert.Same(t, f.child, f.session.Focused())
	assert.Equal(t, "Deep heading", curText(f.child))
	enters := f.session.Hub().Sent(interframe.CmdEnterIframe)
	require.Len(t, enters, 1)
	assert.Equal(t, "heading", enters[0].FindNext)

	require.True(t, f.child.FindNext(nil, "heading", false))
	f.loop.RunPending()

	assert.Same(t, f.top, f.session.Focused())
	assert.Equal(t, "Outer heading", curText(f.top))
	assert.Equal(t, []string{"Deep heading Heading 2", "Outer heading Heading 2"}, f.sink.Spoken())
}

func TestSession_FindNextRelayNoMatch(t *testing.T) {
	f := newFrameFixture(t, `<p>Top</p><iframe srcdoc="<p>Nothing here</p>"></iframe><p>End</p>`, DefaultSettings())

	require.True(t, f.top.FindNext(nil, "heading", false))
	f.loop.RunPending()

	assert.Same(t, f.top, f.session.Focused())
	assert.Equal(t, []string{"No more heading"}, f.sink.Spoken())
}

func TestSession_EmptyFrameIsPassedThrough(t *testing.T) {
	f := newFrameFixture(t, `<p>Before</p><iframe srcdoc="<p hidden>x</p>"></iframe><p>After</p>`, DefaultSettings())

	f.top.Navigate()
	f.top.Navigate()
	f.loop.RunPending()

	assert.Same(t, f.top, f.session.Focused())
	assert.Equal(t, "After", curText(f.top))
}
