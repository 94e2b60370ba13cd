// Package fragment defines diagnostic glycan fragment ions and their
// generation. An oxonium ion is a small, chemically characteristic ion
// produced during glycan fragmentation whose presence signals specific
// sugar sub-structures.
package fragment

import (
	"fmt"

	"github.com/glycokit/oxonium/glycan"
)

// Fragment is a diagnostic ion. Identity is by Name: two fragments with
// equal mass but different names are distinct, and equal names emitted for
// different compositions must denote chemically identical ions.
type Fragment struct {
	Name string  `json:"name"`
	Mass float64 `json:"mass"`
}

func (f Fragment) String() string {
	return fmt.Sprintf("%s (%.4f)", f.Name, f.Mass)
}

// Options controls fragment generation.
type Options struct {
	// MaxCombination is the largest residue multiset size to emit ions
	// for. 0 means the default of 2 (singles and pairs).
	MaxCombination int

	// WaterLosses adds -H2O and -2H2O variants for every base ion.
	WaterLosses bool
}

func (o Options) maxCombination() int {
	if o.MaxCombination <= 0 {
		return 2
	}
	return o.MaxCombination
}

// Generator produces the diagnostic fragment set for a composition.
// Implementations must be deterministic per (composition, options) and
// must emit name-identical ions for chemically identical species across
// compositions.
type Generator interface {
	Generate(c *glycan.Composition, opts Options) ([]Fragment, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(c *glycan.Composition, opts Options) ([]Fragment, error)

func (fn GeneratorFunc) Generate(c *glycan.Composition, opts Options) ([]Fragment, error) {
	return fn(c, opts)
}
