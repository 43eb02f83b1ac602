package main

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	// Navigation
	Forward     key.Binding
	Backward    key.Binding
	SubForward  key.Binding
	SubBackward key.Binding
	Finer       key.Binding
	Coarser     key.Binding

	// Structure
	NextHeading     key.Binding
	PreviousHeading key.Binding
	NextLink        key.Binding
	PreviousLink    key.Binding
	NextTable       key.Binding
	PreviousTable   key.Binding
	NextFormField   key.Binding
	PreviousField   key.Binding
	NextLandmark    key.Binding
	PreviousMark    key.Binding

	// Strategies
	EnterShifter key.Binding
	ExitShifter  key.Binding
	NextRow      key.Binding
	PreviousRow  key.Binding
	NextCol      key.Binding
	PreviousCol  key.Binding

	// Reading
	Read  key.Binding
	Stop  key.Binding
	Skip  key.Binding
	Where key.Binding

	// Tools
	Select  key.Binding
	Source  key.Binding
	Copy    key.Binding
	Command key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// commandFor maps each navigation binding to the command it runs.
func (k KeyMap) commandFor() []struct {
	binding key.Binding
	command string
} {
	return []struct {
		binding key.Binding
		command string
	}{
		{k.Forward, "forward"},
		{k.Backward, "backward"},
		{k.SubForward, "subForward"},
		{k.SubBackward, "subBackward"},
		{k.Finer, "moreGranular"},
		{k.Coarser, "lessGranular"},
		{k.NextHeading, "nextHeading"},
		{k.PreviousHeading, "previousHeading"},
		{k.NextLink, "nextLink"},
		{k.PreviousLink, "previousLink"},
		{k.NextTable, "nextTable"},
		{k.PreviousTable, "previousTable"},
		{k.NextFormField, "nextFormField"},
		{k.PreviousField, "previousFormField"},
		{k.NextLandmark, "nextLandmark"},
		{k.PreviousMark, "previousLandmark"},
		{k.EnterShifter, "enterShifter"},
		{k.ExitShifter, "exitShifter"},
		{k.NextRow, "nextRow"},
		{k.PreviousRow, "previousRow"},
		{k.NextCol, "nextCol"},
		{k.PreviousCol, "previousCol"},
		{k.Read, "readFromHere"},
		{k.Stop, "stopSpeech"},
		{k.Skip, "skip"},
		{k.Where, "whereAmI"},
		{k.Select, "toggleSelection"},
	}
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Forward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next"),
		),
		Backward: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous"),
		),
		SubForward: key.NewBinding(
			key.WithKeys("shift+right", "L"),
			key.WithHelp("⇧→", "next character"),
		),
		SubBackward: key.NewBinding(
			key.WithKeys("shift+left", "H"),
			key.WithHelp("⇧←", "previous character"),
		),
		Finer: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "finer steps"),
		),
		Coarser: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "larger steps"),
		),

		NextHeading: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next heading"),
		),
		PreviousHeading: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous heading"),
		),
		NextLink: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next link"),
		),
		PreviousLink: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("⇧tab", "previous link"),
		),
		NextTable: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "next table"),
		),
		PreviousTable: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "previous table"),
		),
		NextFormField: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "next form field"),
		),
		PreviousField: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "previous form field"),
		),
		NextLandmark: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "next landmark"),
		),
		PreviousMark: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "previous landmark"),
		),

		EnterShifter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "enter table/math"),
		),
		ExitShifter: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "leave table/math"),
		),
		NextRow: key.NewBinding(
			key.WithKeys("alt+down"),
			key.WithHelp("alt+↓", "next row"),
		),
		PreviousRow: key.NewBinding(
			key.WithKeys("alt+up"),
			key.WithHelp("alt+↑", "previous row"),
		),
		NextCol: key.NewBinding(
			key.WithKeys("alt+right"),
			key.WithHelp("alt+→", "next column"),
		),
		PreviousCol: key.NewBinding(
			key.WithKeys("alt+left"),
			key.WithHelp("alt+←", "previous column"),
		),

		Read: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "read from here"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		Skip: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "skip"),
		),
		Where: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "where am I"),
		),

		Select: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "select"),
		),
		Source: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "view source"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy last"),
		),
		Command: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "command"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Forward, k.Backward, k.Coarser, k.Finer, k.Read, k.Command, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Forward, k.Backward, k.SubForward, k.SubBackward, k.Finer, k.Coarser},
		{k.NextHeading, k.PreviousHeading, k.NextLink, k.PreviousLink, k.NextTable, k.NextFormField, k.NextLandmark},
		{k.EnterShifter, k.ExitShifter, k.NextRow, k.PreviousRow, k.NextCol, k.PreviousCol},
		{k.Read, k.Stop, k.Skip, k.Where, k.Select, k.Source, k.Copy, k.Command, k.Quit},
	}
}
