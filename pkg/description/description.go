// Package description carries what the engine says about the cursor: spoken
// description segments, braille output and earcons.
package description

import (
	"strings"

	"github.com/entrhq/cursornav/pkg/cursor"
)

// Earcon is a symbolic audio cue attached to a description.
type Earcon string

const (
	EarconSkip           Earcon = "skip"            // EarconSkip marks an interrupted and restarted read.
	EarconRecoveredFocus Earcon = "recovered_focus" // EarconRecoveredFocus marks a cursor restored from history.
	EarconWrap           Earcon = "wrap"            // EarconWrap marks the end of the page and a pending wrap.
	EarconEnterStrategy  Earcon = "enter_strategy"  // EarconEnterStrategy marks entry into a nested strategy.
	EarconExitStrategy   Earcon = "exit_strategy"   // EarconExitStrategy marks a return to the parent strategy.
)

// Description is one segment of spoken output.
type Description struct {
	// Context is spoken before the text, e.g. "Navigation" when entering a landmark.
	Context string `json:"context,omitempty"`

	Text string `json:"text"`

	// UserValue is the value of a control, e.g. the contents of an edit box.
	UserValue string `json:"userValue,omitempty"`

	// Annotation is spoken after the text, e.g. "Link" or "Heading 2".
	Annotation string `json:"annotation,omitempty"`

	Earcons []Earcon `json:"earcons,omitempty"`
}

// IsEmpty reports whether the segment would say nothing.
func (d Description) IsEmpty() bool {
	return d.Context == "" && d.Text == "" && d.UserValue == "" && d.Annotation == "" && len(d.Earcons) == 0
}

// String joins the spoken parts with single spaces.
func (d Description) String() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{d.Context, d.Text, d.UserValue, d.Annotation} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// PushEarcon attaches an earcon to the segment.
func (d *Description) PushEarcon(e Earcon) {
	d.Earcons = append(d.Earcons, e)
}

// Join renders a list of segments as one utterance.
func Join(descs []Description) string {
	parts := make([]string, 0, len(descs))
	for _, d := range descs {
		if s := d.String(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// Braille is a line of braille output with the cursor span marked.
type Braille struct {
	Text       string `json:"text"`
	StartIndex int    `json:"startIndex"`
	EndIndex   int    `json:"endIndex"`
}

// Provider computes the linguistic content of a cursor move. The engine
// orders and augments what it returns but never composes text itself.
type Provider interface {
	Describe(prev, cur *cursor.Selection) []Description
	Braille(prev, cur *cursor.Selection) Braille
}
