package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	appconfig "github.com/entrhq/cursornav/pkg/config"
	"github.com/entrhq/cursornav/pkg/dom"
	"github.com/entrhq/cursornav/pkg/dom/htmldom"
	"github.com/entrhq/cursornav/pkg/eventloop"
	"github.com/entrhq/cursornav/pkg/navigation"
	"github.com/entrhq/cursornav/pkg/speech"
)

const (
	maxTranscript = 500
	sourceLines   = 8
)

type (
	spokenMsg  string
	brailleMsg string

	resultMsg struct {
		command string
		ok      bool
		err     error
		status  statusInfo
	}

	statusMsg struct {
		status statusInfo
	}

	clearStatusMsg struct {
		seq int
	}
)

// statusInfo is what the status bar and source pane show about the
// focused document.
type statusInfo struct {
	location    string
	granularity string
	shifter     string
	state       string
	source      string
}

// snapshot reads the status of m. Call it on the engine goroutine.
func snapshot(m *navigation.Manager) statusInfo {
	st := statusInfo{
		location:    m.Document().Location(),
		granularity: m.GranularityName(),
		shifter:     m.Stack().Active().Name(),
		state:       m.State().String(),
	}
	doc, ok := m.Document().(*htmldom.Document)
	if !ok {
		return st
	}
	n := m.CurrentSelection().Node()
	if n != nil && n.Name() == dom.TextNodeName {
		n = n.Parent()
	}
	if n == nil {
		return st
	}
	if src, err := doc.Render(n); err == nil {
		st.source = src
	}
	return st
}

// model is the interactive reader.
type model struct {
	ctx    context.Context
	engine *engine
	keys   KeyMap

	viewport viewport.Model
	input    textinput.Model
	help     help.Model

	transcript []string
	braille    string
	status     statusInfo

	message    string
	messageErr bool
	messageSeq int

	showBraille   bool
	sourceStyle   string
	statusTimeout time.Duration

	commandMode bool
	showSource  bool

	width  int
	height int
	ready  bool
}

func newModel(ctx context.Context, e *engine, ui *appconfig.UISection) *model {
	input := textinput.New()
	input.Prompt = "/"
	input.Placeholder = "command, e.g. find heading"
	input.CharLimit = 200

	m := &model{
		ctx:           ctx,
		engine:        e,
		keys:          DefaultKeyMap(),
		input:         input,
		help:          help.New(),
		showBraille:   true,
		sourceStyle:   "monokai",
		statusTimeout: 2 * time.Second,
	}
	if ui != nil {
		m.showBraille, m.sourceStyle, m.statusTimeout = ui.Snapshot()
	}
	return m
}

func (m *model) Init() tea.Cmd {
	return m.refresh()
}

// call runs fn on the engine goroutine and waits for its message.
func (m *model) call(fn func() tea.Msg) tea.Cmd {
	ctx, e := m.ctx, m.engine
	return func() tea.Msg {
		done := make(chan tea.Msg, 1)
		e.do(func() { done <- fn() })
		select {
		case msg := <-done:
			return msg
		case <-ctx.Done():
			return nil
		}
	}
}

// execute runs a command line against the focused document.
func (m *model) execute(line string) tea.Cmd {
	e := m.engine
	return m.call(func() tea.Msg {
		res, err := e.dispatcher.ExecuteLine(line)
		return resultMsg{command: res.Command, ok: res.OK, err: err, status: snapshot(e.session.Focused())}
	})
}

func (m *model) refresh() tea.Cmd {
	e := m.engine
	return m.call(func() tea.Msg {
		return statusMsg{status: snapshot(e.session.Focused())}
	})
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, 1)
			m.ready = true
		}
		m.input.Width = msg.Width - 8
		m.help.Width = msg.Width
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if m.commandMode {
			return m.handleCommandKey(msg)
		}
		return m.handleKey(msg)

	case spokenMsg:
		m.transcript = append(m.transcript, string(msg))
		if len(m.transcript) > maxTranscript {
			m.transcript = m.transcript[len(m.transcript)-maxTranscript:]
		}
		m.renderTranscript()
		return m, m.refresh()

	case brailleMsg:
		m.braille = string(msg)
		return m, nil

	case statusMsg:
		m.status = msg.status
		return m, nil

	case resultMsg:
		m.status = msg.status
		if msg.err != nil {
			debugLog.Debugf("Command %q failed: %v", msg.command, msg.err)
			return m, m.flash(msg.err.Error(), true)
		}
		return m, nil

	case clearStatusMsg:
		if msg.seq == m.messageSeq {
			m.message = ""
		}
		return m, nil
	}

	if m.commandMode {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Command):
		m.commandMode = true
		m.input.Reset()
		m.layout()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Source):
		m.showSource = !m.showSource
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyLast()
	}

	for _, b := range m.keys.commandFor() {
		if key.Matches(msg, b.binding) {
			return m, m.execute(b.command)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *model) handleCommandKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closeInput()
		return m, nil

	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEnter:
		line := strings.TrimSpace(m.input.Value())
		m.closeInput()
		if line == "" {
			return m, nil
		}
		return m, m.execute(line)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) closeInput() {
	m.commandMode = false
	m.input.Blur()
	m.input.Reset()
	m.layout()
}

func (m *model) copyLast() tea.Cmd {
	if len(m.transcript) == 0 {
		return m.flash("Nothing to copy", true)
	}
	if err := clipboard.WriteAll(m.transcript[len(m.transcript)-1]); err != nil {
		return m.flash(fmt.Sprintf("Copy failed: %v", err), true)
	}
	return m.flash("Copied to clipboard", false)
}

// flash shows a status message for the configured timeout.
func (m *model) flash(text string, isErr bool) tea.Cmd {
	m.messageSeq++
	m.message, m.messageErr = text, isErr
	seq := m.messageSeq
	return tea.Tick(m.statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

// layout gives the transcript whatever height the other panes leave.
func (m *model) layout() {
	if !m.ready {
		return
	}
	used := 2 // header and status bar
	if m.showBraille {
		used++
	}
	if m.showSource {
		used += sourceLines + 2
	}
	if m.commandMode {
		used += 3
	}
	used += lipgloss.Height(m.help.View(m.keys))

	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-used, 1)
	m.renderTranscript()
}

func (m *model) renderTranscript() {
	if !m.ready {
		return
	}
	var sb strings.Builder
	for i, line := range m.transcript {
		if i > 0 {
			sb.WriteByte('\n')
		}
		style := spokenStyle
		if i == len(m.transcript)-1 {
			style = latestStyle
		}
		sb.WriteString(style.Render(line))
	}
	m.viewport.SetContent(sb.String())
	m.viewport.GotoBottom()
}

func (m *model) View() string {
	if !m.ready {
		return "Loading..."
	}

	parts := []string{
		headerStyle.Render("cursornav") + " " + locationStyle.Render(m.status.location),
		m.viewport.View(),
	}
	if m.showBraille {
		parts = append(parts, brailleStyle.Render("⠿ "+m.braille))
	}
	if m.showSource {
		parts = append(parts, m.buildSource())
	}
	if m.commandMode {
		parts = append(parts, inputBoxStyle.Width(m.width-2).Render(m.input.View()))
	}
	parts = append(parts, m.buildStatusBar(), m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *model) buildSource() string {
	src := m.status.source
	if src == "" {
		src = "(nothing selected)"
	} else {
		src = highlightSource(src, m.sourceStyle)
	}
	lines := strings.Split(src, "\n")
	if len(lines) > sourceLines {
		lines = lines[:sourceLines]
	}
	return sourcePaneStyle.Width(m.width - 2).Height(sourceLines).Render(strings.Join(lines, "\n"))
}

func (m *model) buildStatusBar() string {
	if m.message != "" {
		style := statusBarStyle
		if m.messageErr {
			style = errorStyle.Padding(0, 1)
		}
		return style.Render(m.message)
	}
	fields := []string{m.status.granularity, m.status.shifter, m.status.state}
	return statusBarStyle.Render(strings.Join(fields, " • "))
}

// runTUI runs the interactive reader until the user quits.
func runTUI(ctx context.Context, s *setup) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	speechOut := newLineWriter(func(line string) tea.Msg { return spokenMsg(line) })
	brailleOut := newLineWriter(func(line string) tea.Msg {
		return brailleMsg(strings.TrimPrefix(line, "⠿ "))
	})
	e := newEngine(s, func(sched eventloop.Scheduler) speech.Sink {
		return speech.NewTextSink(speechOut, brailleOut, sched)
	})

	p := tea.NewProgram(newModel(ctx, e, s.ui), tea.WithAltScreen(), tea.WithContext(ctx))
	speechOut.attach(p.Send)
	brailleOut.attach(p.Send)

	loopDone := make(chan error, 1)
	go func() { loopDone <- e.loop.Run(ctx) }()

	_, err := p.Run()
	cancel()
	if loopErr := <-loopDone; loopErr != nil && !errors.Is(loopErr, context.Canceled) {
		debugLog.Warnf("Engine stopped: %v", loopErr)
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal interface failed: %w", err)
	}
	return nil
}
