package glycan

import "fmt"

// Resolver is implemented by values that wrap a composition behind one or
// more layers of indirection. ResolveGlycan returns the next inner value,
// which may itself be a Resolver or the terminal *Composition.
type Resolver interface {
	ResolveGlycan() any
}

// ErrNotComposition indicates that unwrapping terminated on a value that is
// neither a *Composition nor a Resolver.
type ErrNotComposition struct {
	Value any
}

func (e *ErrNotComposition) Error() string {
	return fmt.Sprintf("not a glycan composition: %T", e.Value)
}

// Resolve unwraps v until it reaches a terminal *Composition.
func Resolve(v any) (*Composition, error) {
	for {
		switch t := v.(type) {
		case *Composition:
			return t, nil
		case Resolver:
			v = t.ResolveGlycan()
		default:
			return nil, &ErrNotComposition{Value: v}
		}
	}
}
