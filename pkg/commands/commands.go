// Package commands maps named user commands, typed or bound to keys, onto
// navigation manager verbs and speaks the outcome.
package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/entrhq/cursornav/pkg/description"
	"github.com/entrhq/cursornav/pkg/logging"
	"github.com/entrhq/cursornav/pkg/navigation"
	"github.com/entrhq/cursornav/pkg/shifter"
	"github.com/entrhq/cursornav/pkg/speech"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("commands")
	if err != nil {
		debugLog.Warnf("Failed to initialize commands logger, using stderr fallback: %v", err)
	}
}

var (
	// ErrUnknownCommand is returned for names that are neither commands nor
	// actions of the active shifter.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrInvalidArgs is returned when a command gets the wrong argument count.
	ErrInvalidArgs = errors.New("invalid arguments")
)

// Handler runs a command against the manager holding navigation and
// reports whether the verb succeeded.
type Handler func(m *navigation.Manager, args []string) bool

// Command is one registered command.
type Command struct {
	Name        string
	Description string
	Handler     Handler
	MinArgs     int
	MaxArgs     int // -1 for unlimited
}

// Result is the outcome of Execute.
type Result struct {
	Command string
	OK      bool

	// Spoken is what the command said, if anything.
	Spoken []description.Description
}

// Dispatcher resolves command names and runs them on the focused manager.
type Dispatcher struct {
	focus    func() *navigation.Manager
	commands map[string]*Command
}

// NewDispatcher creates a dispatcher with the built-in commands. focus
// returns the manager that currently holds navigation.
func NewDispatcher(focus func() *navigation.Manager) *Dispatcher {
	d := &Dispatcher{focus: focus, commands: make(map[string]*Command)}
	for _, cmd := range builtins() {
		d.commands[cmd.Name] = cmd
	}
	return d
}

// Register adds a command. Names must be unique.
func (d *Dispatcher) Register(cmd *Command) error {
	if cmd == nil || cmd.Name == "" || cmd.Handler == nil {
		return fmt.Errorf("%w: command needs a name and a handler", ErrInvalidArgs)
	}
	if _, exists := d.commands[cmd.Name]; exists {
		return fmt.Errorf("command %q already registered", cmd.Name)
	}
	d.commands[cmd.Name] = cmd
	return nil
}

// Lookup returns a registered command.
func (d *Dispatcher) Lookup(name string) (*Command, bool) {
	cmd, ok := d.commands[name]
	return cmd, ok
}

// Commands lists registered commands by name.
func (d *Dispatcher) Commands() []*Command {
	out := make([]*Command, 0, len(d.commands))
	for _, cmd := range d.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Parse splits typed input such as "/find heading" into a command name and
// its arguments. The leading slash is optional.
func Parse(input string) (string, []string, bool) {
	parts := strings.Fields(strings.TrimPrefix(strings.TrimSpace(input), "/"))
	if len(parts) == 0 {
		return "", nil, false
	}
	return parts[0], parts[1:], true
}

// Execute runs name on the focused manager. Names that are not commands
// are tried as actions of the active shifter.
func (d *Dispatcher) Execute(name string, args ...string) (Result, error) {
	m := d.focus()
	if m == nil {
		return Result{}, errors.New("no document to navigate")
	}

	cmd, ok := d.commands[name]
	if !ok {
		if !m.Stack().Active().HasAction(name) {
			return Result{Command: name}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
		}
		cmd = &Command{Name: name, Handler: performAction(name)}
	}
	if len(args) < cmd.MinArgs || (cmd.MaxArgs >= 0 && len(args) > cmd.MaxArgs) {
		return Result{Command: name}, fmt.Errorf("%w: %s takes %d to %d arguments, got %d", ErrInvalidArgs, name, cmd.MinArgs, cmd.MaxArgs, len(args))
	}

	debugLog.Debugf("Executing %s %v in %s", name, args, m.Document().Location())
	before := m.Utterances()
	res := Result{Command: name, OK: cmd.Handler(m, args)}

	// After a frame hand-off the other document speaks once its message
	// arrives.
	if m.Utterances() != before {
		res.Spoken = m.LastDescriptions()
	}
	return res, nil
}

// ExecuteLine parses and runs typed input.
func (d *Dispatcher) ExecuteLine(input string) (Result, error) {
	name, args, ok := Parse(input)
	if !ok {
		return Result{}, fmt.Errorf("%w: empty command", ErrUnknownCommand)
	}
	return d.Execute(name, args...)
}

// finish speaks the cursor after a successful verb, or the page-end hint
// after a failed step.
func finish(m *navigation.Manager, ok bool, prefix string) bool {
	switch {
	case ok && m.HasFocus():
		m.FinishNavCommand(prefix, true, speech.Flush)
	case !ok && m.AtPageEnd():
		m.AnnouncePageEnd(speech.Flush)
	}
	return ok
}

func move(reversed, sub bool) Handler {
	return func(m *navigation.Manager, _ []string) bool {
		m.StopReading(true)
		m.SetReversed(reversed)
		if sub {
			return finish(m, m.Subnavigate(), "")
		}
		return finish(m, m.Navigate(), "")
	}
}

func find(name, noun string, reversed bool) Handler {
	return func(m *navigation.Manager, _ []string) bool {
		m.StopReading(true)
		m.SetReversed(reversed)
		ok := m.FindNext(nil, name, false)
		if !ok {
			m.AnnounceNoMatch(noun)
			return false
		}
		return finish(m, ok, "")
	}
}

func performAction(name string) Handler {
	return func(m *navigation.Manager, _ []string) bool {
		return finish(m, m.PerformAction(name), "")
	}
}

func granularity(more bool) Handler {
	return func(m *navigation.Manager, _ []string) bool {
		if more {
			m.MakeMoreGranular()
		} else {
			m.MakeLessGranular()
		}
		return finish(m, true, m.GranularityName())
	}
}

// structural lists the predicates bound to next/previous commands and how
// they are named when nothing is found.
var structural = []struct {
	command   string
	predicate string
	noun      string
}{
	{"Heading", "heading", "headings"},
	{"Link", "link", "links"},
	{"Table", "table", "tables"},
	{"Landmark", "landmark", "landmarks"},
	{"FormField", "formField", "form fields"},
	{"List", "list", "lists"},
	{"Button", "button", "buttons"},
	{"Graphic", "graphic", "graphics"},
	{"Math", "math", "math"},
	{"Frame", "frame", "frames"},
}

func builtins() []*Command {
	cmds := []*Command{
		{Name: "forward", Description: "Move to the next item", Handler: move(false, false)},
		{Name: "backward", Description: "Move to the previous item", Handler: move(true, false)},
		{Name: "subForward", Description: "Move to the next character in the item", Handler: move(false, true)},
		{Name: "subBackward", Description: "Move to the previous character in the item", Handler: move(true, true)},
		{Name: "moreGranular", Description: "Navigate in smaller steps", Handler: granularity(true)},
		{Name: "lessGranular", Description: "Navigate in larger steps", Handler: granularity(false)},
		{
			Name:        "granularity",
			Description: "Set the navigation unit: character, word, line, object or group",
			MinArgs:     1,
			MaxArgs:     1,
			Handler: func(m *navigation.Manager, args []string) bool {
				g, err := shifter.ParseGranularity(args[0])
				if err != nil {
					debugLog.Debugf("granularity: %v", err)
					return false
				}
				if !m.SetGranularity(g, false) {
					return false
				}
				return finish(m, true, m.GranularityName())
			},
		},
		{
			Name:        "readFromHere",
			Description: "Read continuously from the cursor",
			Handler: func(m *navigation.Manager, _ []string) bool {
				m.SetReversed(false)
				m.StartReading(speech.Flush)
				return true
			},
		},
		{
			Name:        "stopSpeech",
			Description: "Stop reading and speech",
			Handler: func(m *navigation.Manager, _ []string) bool {
				m.StopReading(true)
				return true
			},
		},
		{
			Name:        "skip",
			Description: "Skip ahead while reading",
			Handler: func(m *navigation.Manager, _ []string) bool {
				return m.Skip()
			},
		},
		{Name: navigation.ActionEnterShifter, Description: "Enter table or math navigation", Handler: performAction(navigation.ActionEnterShifter)},
		{Name: navigation.ActionExitShifter, Description: "Leave table or math navigation", Handler: performAction(navigation.ActionExitShifter)},
		{Name: navigation.ActionExitShifterContent, Description: "Leave table or math navigation after its content", Handler: performAction(navigation.ActionExitShifterContent)},
		{
			Name:        "toggleSelection",
			Description: "Start or end selecting text",
			Handler: func(m *navigation.Manager, _ []string) bool {
				return finish(m, m.TogglePageSelection(), "")
			},
		},
		{
			Name:        "find",
			Description: "Move to the next node matching a named predicate",
			MinArgs:     1,
			MaxArgs:     1,
			Handler: func(m *navigation.Manager, args []string) bool {
				return find(args[0], args[0], m.IsReversed())(m, nil)
			},
		},
		{
			Name:        "whereAmI",
			Description: "Describe the cursor again",
			Handler: func(m *navigation.Manager, _ []string) bool {
				return finish(m, m.CurrentSelection() != nil, "")
			},
		},
	}
	for _, s := range structural {
		cmds = append(cmds,
			&Command{Name: "next" + s.command, Description: "Move to the next " + strings.TrimSuffix(s.noun, "s"), Handler: find(s.predicate, s.noun, false)},
			&Command{Name: "previous" + s.command, Description: "Move to the previous " + strings.TrimSuffix(s.noun, "s"), Handler: find(s.predicate, s.noun, true)},
		)
	}
	return cmds
}
