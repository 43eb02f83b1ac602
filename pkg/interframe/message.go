package interframe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/entrhq/cursornav/pkg/shifter"
	"github.com/google/uuid"
)

// Version is the wire format version this package reads and writes.
const Version = 1

// Command names a cross-frame message.
type Command string

const (
	CmdAssignID    Command = "assignId"    // CmdAssignID gives a child frame its id.
	CmdAckID       Command = "ackId"       // CmdAckID confirms an assigned id to the parent.
	CmdEnterIframe Command = "enterIframe" // CmdEnterIframe hands navigation into a child.
	CmdExitIframe  Command = "exitIframe"  // CmdExitIframe hands navigation back to the parent.
)

var (
	// ErrMalformed is returned for messages missing required fields or
	// carrying unknown ones.
	ErrMalformed = errors.New("malformed cross-frame message")

	// ErrUnsupportedVersion is returned for messages of another version.
	ErrUnsupportedVersion = errors.New("unsupported cross-frame message version")
)

// Message is one cross-frame message. Optional fields are pointers so a
// missing field can be told apart from a zero value.
type Message struct {
	Version     int     `json:"version"`
	Command     Command `json:"command"`
	ID          *int    `json:"id,omitempty"`
	SourceID    *int    `json:"sourceId,omitempty"`
	Granularity *int    `json:"granularity,omitempty"`
	Reversed    *bool   `json:"reversed,omitempty"`
	Shifter     *string `json:"shifter,omitempty"`
	FindNext    string  `json:"findNext,omitempty"`
	Nonce       string  `json:"nonce,omitempty"`
}

// NewAssignID creates the parent's id assignment for a child frame.
func NewAssignID(id int) Message {
	return Message{Version: Version, Command: CmdAssignID, ID: &id, Nonce: uuid.NewString()}
}

// NewAckID creates a child's acknowledgement of its id.
func NewAckID(sourceID int) Message {
	return Message{Version: Version, Command: CmdAckID, SourceID: &sourceID, Nonce: uuid.NewString()}
}

// NewEnterIframe hands navigation into child frame id.
func NewEnterIframe(id int, st shifter.State, findNext string) Message {
	return withState(Message{Version: Version, Command: CmdEnterIframe, ID: &id, FindNext: findNext}, st)
}

// NewExitIframe hands navigation from child frame sourceID back to its parent.
func NewExitIframe(sourceID int, st shifter.State, findNext string) Message {
	return withState(Message{Version: Version, Command: CmdExitIframe, SourceID: &sourceID, FindNext: findNext}, st)
}

func withState(m Message, st shifter.State) Message {
	g, r, s := st.Granularity, st.Reversed, st.Shifter
	m.Granularity, m.Reversed, m.Shifter = &g, &r, &s
	m.Nonce = uuid.NewString()
	return m
}

// State returns the shifter state carried by an enter or exit message.
func (m Message) State() shifter.State {
	st := shifter.State{Version: shifter.StateVersion}
	if m.Granularity != nil {
		st.Granularity = *m.Granularity
	}
	if m.Reversed != nil {
		st.Reversed = *m.Reversed
	}
	if m.Shifter != nil {
		st.Shifter = *m.Shifter
	}
	return st
}

// Validate checks the version and the fields required by the command.
func (m Message) Validate() error {
	if m.Version != Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, m.Version)
	}
	var missing []string
	require := func(ok bool, field string) {
		if !ok {
			missing = append(missing, field)
		}
	}
	switch m.Command {
	case CmdAssignID:
		require(m.ID != nil, "id")
	case CmdAckID:
		require(m.SourceID != nil, "sourceId")
	case CmdEnterIframe:
		require(m.ID != nil, "id")
		require(m.Granularity != nil, "granularity")
		require(m.Reversed != nil, "reversed")
		require(m.Shifter != nil, "shifter")
	case CmdExitIframe:
		require(m.SourceID != nil, "sourceId")
		require(m.Granularity != nil, "granularity")
		require(m.Reversed != nil, "reversed")
		require(m.Shifter != nil, "shifter")
	default:
		return fmt.Errorf("%w: unknown command %q", ErrMalformed, m.Command)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s missing %v", ErrMalformed, m.Command, missing)
	}
	return nil
}

// Encode validates and serialises m.
func (m Message) Encode() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", m.Command, err)
	}
	return data, nil
}

// Decode parses and validates a message. Unknown fields are rejected.
func Decode(data []byte) (Message, error) {
	var m Message
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}
