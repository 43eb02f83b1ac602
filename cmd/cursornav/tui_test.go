package main

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/entrhq/cursornav/pkg/eventloop"
	"github.com/entrhq/cursornav/pkg/speech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// newTestModel starts an engine over markup and returns a sized model.
func newTestModel(t *testing.T, markup string) *model {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	e := newEngine(newSetup(t, markup), func(sched eventloop.Scheduler) speech.Sink {
		return speech.NewTextSink(nil, nil, sched)
	})
	go func() { _ = e.loop.Run(ctx) }()

	m := newModel(ctx, e, nil)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func TestModel_ExecuteReportsStatus(t *testing.T) {
	m := newTestModel(t, `<p>One</p><p>Two</p>`)

	msg := m.execute("forward")()
	res, ok := msg.(resultMsg)
	require.True(t, ok)
	assert.NoError(t, res.err)
	assert.True(t, res.ok)
	assert.Equal(t, "test", res.status.location)
	assert.NotEmpty(t, res.status.granularity)
	assert.Contains(t, res.status.source, "One")

	m.Update(res)
	assert.Equal(t, "test", m.status.location)
}

func TestModel_ExecuteUnknownCommand(t *testing.T) {
	m := newTestModel(t, `<p>One</p>`)

	res := m.execute("dance")().(resultMsg)
	require.Error(t, res.err)

	m.Update(res)
	assert.True(t, m.messageErr)
	assert.Contains(t, m.message, "unknown command")
}

func TestModel_KeysMapToCommands(t *testing.T) {
	m := newTestModel(t, `<p>One</p>`)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.NotNil(t, cmd)
	res, ok := cmd().(resultMsg)
	require.True(t, ok)
	assert.Equal(t, "forward", res.command)

	_, cmd = m.Update(runes("w"))
	require.NotNil(t, cmd)
	assert.Equal(t, "whereAmI", cmd().(resultMsg).command)
}

func TestModel_Toggles(t *testing.T) {
	m := newTestModel(t, `<p>One</p>`)

	m.Update(runes("u"))
	assert.True(t, m.showSource)
	m.Update(runes("u"))
	assert.False(t, m.showSource)

	m.Update(runes("?"))
	assert.True(t, m.help.ShowAll)
}

func TestModel_CommandLine(t *testing.T) {
	m := newTestModel(t, `<h2>Heading</h2><p>Text</p>`)

	m.Update(runes("/"))
	require.True(t, m.commandMode)

	m.input.SetValue("find heading")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.commandMode)
	require.NotNil(t, cmd)

	res := cmd().(resultMsg)
	assert.Equal(t, "find", res.command)
	assert.NoError(t, res.err)

	m.Update(runes("/"))
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.commandMode)
}

func TestModel_Transcript(t *testing.T) {
	m := newTestModel(t, `<p>One</p>`)

	m.Update(spokenMsg("One"))
	m.Update(spokenMsg("Two"))
	m.Update(brailleMsg("Two"))

	assert.Equal(t, []string{"One", "Two"}, m.transcript)
	assert.Equal(t, "Two", m.braille)
	assert.Contains(t, m.View(), "Two")
}

func TestModel_ClearStatusIgnoresStaleTicks(t *testing.T) {
	m := newTestModel(t, `<p>One</p>`)

	m.flash("first", false)
	m.flash("second", false)

	m.Update(clearStatusMsg{seq: 1})
	assert.Equal(t, "second", m.message)

	m.Update(clearStatusMsg{seq: 2})
	assert.Empty(t, m.message)
}

func TestLineWriter(t *testing.T) {
	var got []tea.Msg
	w := newLineWriter(func(line string) tea.Msg { return spokenMsg(line) })

	_, _ = w.Write([]byte("dropped\n"))
	w.attach(func(msg tea.Msg) { got = append(got, msg) })

	_, _ = w.Write([]byte("one\ntw"))
	_, _ = w.Write([]byte("o\n"))

	assert.Equal(t, []tea.Msg{spokenMsg("one"), spokenMsg("two")}, got)
}
