// Package shifter implements granularity strategies: pluggable traversal
// algorithms that define what "next" means for the cursor. The default
// NavigationShifter walks objects, words, characters, lines and groups;
// TableShifter walks table cells; MathShifter walks MathML sub-expressions.
//
// A Stack holds the active shifter plus the shifters it was entered from.
package shifter

import (
	"github.com/entrhq/cursornav/pkg/cursor"
	"github.com/entrhq/cursornav/pkg/description"
	"github.com/entrhq/cursornav/pkg/dom"
	"github.com/entrhq/cursornav/pkg/logging"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("shifter")
	if err != nil {
		debugLog.Warnf("Failed to initialize shifter logger, using stderr fallback: %v", err)
	}
}

// StateVersion is the version of State understood by ReadFrom.
const StateVersion = 1

// State is the plain-data form of a shifter's settings, carried across
// frame boundaries.
type State struct {
	Version       int    `json:"version"`
	Shifter       string `json:"shifter"`
	Granularity   int    `json:"granularity"`
	Reversed      bool   `json:"reversed"`
	Subnavigating bool   `json:"subnavigating,omitempty"`
}

// Shifter is one traversal strategy. Selections passed in are never mutated;
// every method that moves the cursor returns a fresh selection, or nil when
// there is nowhere to go.
type Shifter interface {
	// Name identifies the strategy, e.g. "navigation" or "table".
	Name() string

	// Next moves one unit from sel in sel's direction.
	Next(sel *cursor.Selection) *cursor.Selection

	// Sync returns the unit of this strategy that contains sel.
	Sync(sel *cursor.Selection) *cursor.Selection

	// Begin returns the first unit, or the last when reversed.
	Begin(reversed bool) *cursor.Selection

	Description(prev, cur *cursor.Selection) []description.Description
	Braille(prev, cur *cursor.Selection) description.Braille

	Granularity() int
	SetGranularity(g int)
	GranularityName() string
	MakeMoreGranular()
	MakeLessGranular()

	// HasAction reports whether PerformAction understands name.
	HasAction(name string) bool

	// PerformAction runs a named action from sel and returns the new
	// selection, or nil if the action could not move.
	PerformAction(name string, sel *cursor.Selection) *cursor.Selection

	IsSubnavigating() bool
	EnsureSubnavigating()
	EnsureNotSubnavigating()

	StoreOn(st *State)
	ReadFrom(st State)
}

// ContentCommitter is implemented by shifters that apply pending content
// before being exited, leaving the cursor where the parent should resume.
type ContentCommitter interface {
	CommitContent(sel *cursor.Selection) *cursor.Selection
}

// Env is what a shifter needs from its document.
type Env struct {
	Doc      dom.Document
	Root     dom.Node
	Provider description.Provider
}

// Factory builds a shifter for sel, or returns nil if the strategy does not
// apply there.
type Factory func(env Env, sel *cursor.Selection) Shifter

// DefaultFactories lists strategies most specific first.
var DefaultFactories = []Factory{
	NewMathShifter,
	NewTableShifter,
	func(env Env, _ *cursor.Selection) Shifter { return NewNavigationShifter(env) },
}

// Match returns the first strategy in factories that applies to sel.
func Match(env Env, sel *cursor.Selection, factories []Factory) Shifter {
	if sel == nil {
		return nil
	}
	for _, f := range factories {
		if s := f(env, sel); s != nil {
			return s
		}
	}
	return nil
}

func directed(sel *cursor.Selection, reversed bool) *cursor.Selection {
	if sel == nil {
		return nil
	}
	return sel.SetReversed(reversed)
}

func isReversed(sel *cursor.Selection) bool {
	return sel != nil && sel.IsReversed()
}
