package glycan

import (
	"fmt"
	"sync"
)

// Residue is a canonical, interned monosaccharide type. Two residues are
// the same residue iff they are the same pointer.
type Residue struct {
	name string
	mass float64
}

// Name returns the canonical residue name.
func (r *Residue) Name() string { return r.name }

// Mass returns the monoisotopic residue mass (the free monosaccharide mass
// minus one water, i.e. the mass contributed inside a chain).
func (r *Residue) Mass() float64 { return r.mass }

func (r *Residue) String() string { return r.name }

// ErrUnknownResidue indicates a residue name that is not registered.
type ErrUnknownResidue struct {
	Name string
}

func (e *ErrUnknownResidue) Error() string {
	return fmt.Sprintf("unknown residue: %q", e.Name)
}

var registry = struct {
	mu      sync.RWMutex
	byName  map[string]*Residue
	aliases map[string]string
}{
	byName:  make(map[string]*Residue),
	aliases: make(map[string]string),
}

// Monoisotopic residue masses for the common mammalian monosaccharides,
// matching the values used by glycan informatics toolkits.
func init() {
	Register("Hex", 162.0528234315)
	Register("HexNAc", 203.0793725337)
	Register("HexN", 161.0688078356)
	Register("HexA", 176.0320879894)
	Register("Fuc", 146.0579088094, "dHex")
	Register("NeuAc", 291.0954165066, "Neu5Ac")
	Register("NeuGc", 307.0903311252, "Neu5Gc")
	Register("Xyl", 132.0422587452, "Pen")
}

// Register interns a residue under its canonical name plus any aliases and
// returns the canonical pointer. Registering an existing name returns the
// already-interned residue unchanged.
func Register(name string, mass float64, aliases ...string) *Residue {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	r, ok := registry.byName[name]
	if !ok {
		r = &Residue{name: name, mass: mass}
		registry.byName[name] = r
	}
	for _, alias := range aliases {
		registry.aliases[alias] = name
	}
	return r
}

// FromName resolves a canonical name or alias to its interned residue.
func FromName(name string) (*Residue, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	if canonical, ok := registry.aliases[name]; ok {
		name = canonical
	}
	r, ok := registry.byName[name]
	if !ok {
		return nil, &ErrUnknownResidue{Name: name}
	}
	return r, nil
}

// MustFromName is like FromName but panics on unknown names. Intended for
// static residue tables and tests.
func MustFromName(name string) *Residue {
	r, err := FromName(name)
	if err != nil {
		panic(err)
	}
	return r
}
