// Package codec centralizes value encoding for index snapshots.
//
// Snapshot files are self-describing: the codec name is recorded in the
// snapshot header, and the matching codec is selected by name on load.
// Changing the default codec therefore never breaks existing snapshots.
package codec

import "fmt"

// Codec encodes/decodes snapshot section values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Default is the codec used when none is configured. Persisted snapshots
// always record the codec name, so this may change between releases.
var Default Codec = GoJSON{}

// MustMarshal is a helper for internal tests/benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
