package mindflux

import (
	"encoding"
	"encoding/json"
)

// State is the stored learning stage of an item, as kept by the due engine.
// It encodes like Tier: by name, in text and JSON.
type State int

const (
	New        State = iota + 1 // Never studied.
	Learning                    // In initial learning steps.
	Review                      // In the long-term review cycle.
	Relearning                  // Forgotten, relearning.
	Suspended                   // Excluded from study.
)

var stateCodec = newEnumCodec[State]("State", ErrInvalidState, "New", "Learning", "Review", "Relearning", "Suspended")

var (
	_ json.Marshaler           = State(0)
	_ json.Unmarshaler         = (*State)(nil)
	_ encoding.TextUnmarshaler = (*State)(nil)
)

func (s State) isValid() bool { return stateCodec.valid(s) }
func (s State) String() string { return stateCodec.name(s) }
func (s State) MarshalText() ([]byte, error) { return stateCodec.marshalText(s) }
func (s State) MarshalJSON() ([]byte, error) { return stateCodec.marshalJSON(s) }

func (s *State) UnmarshalText(text []byte) error {
	v, err := stateCodec.unmarshalText(text)
	if err == nil {
		*s = v
	}
	return err
}

func (s *State) UnmarshalJSON(data []byte) error {
	v, err := stateCodec.unmarshalJSON(data)
	if err == nil {
		*s = v
	}
	return err
}
