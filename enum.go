package mindflux

import (
	"encoding/json"
	"fmt"
)

// enumCodec names the values 1..n of an int enum and encodes them as text
// and JSON strings. Unknown values and names fail with err.
type enumCodec[T ~int] struct {
	kind   string
	names  []string
	byName map[string]T
	err    error
}

func newEnumCodec[T ~int](kind string, err error, names ...string) enumCodec[T] {
	c := enumCodec[T]{kind: kind, names: names, byName: make(map[string]T, len(names)), err: err}
	for i, name := range names {
		c.byName[name] = T(i + 1)
	}
	return c
}

func (c enumCodec[T]) valid(v T) bool {
	return v >= 1 && int(v) <= len(c.names)
}

// name returns the name of v, or "Kind(n)" when v is out of range.
func (c enumCodec[T]) name(v T) string {
	if c.valid(v) {
		return c.names[v-1]
	}
	return fmt.Sprintf("%s(%d)", c.kind, int(v))
}

func (c enumCodec[T]) marshalText(v T) ([]byte, error) {
	if !c.valid(v) {
		return nil, fmt.Errorf("%w: %d", c.err, int(v))
	}
	return []byte(c.names[v-1]), nil
}

func (c enumCodec[T]) unmarshalText(text []byte) (T, error) {
	v, ok := c.byName[string(text)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", c.err, text)
	}
	return v, nil
}

func (c enumCodec[T]) marshalJSON(v T) ([]byte, error) {
	text, err := c.marshalText(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// unmarshalJSON expects a JSON string. null decodes as the empty name and
// is rejected.
func (c enumCodec[T]) unmarshalJSON(data []byte) (T, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, fmt.Errorf("%w: %s", c.err, data)
	}
	return c.unmarshalText([]byte(s))
}
