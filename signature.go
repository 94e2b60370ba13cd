package oxonium

import (
	"math"
	"strings"

	"github.com/glycokit/oxonium/glycan"
	"github.com/glycokit/oxonium/spectrum"
)

// countSentinel caps CountOf from below when a signature declares no
// components. The degenerate empty signature therefore counts as
// "present arbitrarily often" rather than erroring.
const countSentinel = math.MaxInt32

// SignatureSpecification describes a structural motif: a required
// combination of residues plus the diagnostic masses at which the combined
// signature may manifest (e.g. cross-ring cleavage variants).
//
// Constructed once and read-only afterward.
type SignatureSpecification struct {
	components []*glycan.Residue
	masses     []float64
	key        string
}

// NewSignatureSpecification resolves componentNames to canonical residues
// and copies masses into a buffer owned by the specification.
func NewSignatureSpecification(componentNames []string, masses []float64) (*SignatureSpecification, error) {
	components := make([]*glycan.Residue, len(componentNames))
	names := make([]string, len(componentNames))
	for i, name := range componentNames {
		r, err := glycan.FromName(name)
		if err != nil {
			return nil, err
		}
		components[i] = r
		names[i] = r.Name()
	}

	owned := make([]float64, len(masses))
	copy(owned, masses)

	return &SignatureSpecification{
		components: components,
		masses:     owned,
		key:        strings.Join(names, "|"),
	}, nil
}

// Key returns the identity key over the ordered component sequence.
func (s *SignatureSpecification) Key() string { return s.key }

func (s *SignatureSpecification) String() string { return s.key }

// Components returns the required residues in declaration order.
// Callers must not modify the returned slice.
func (s *SignatureSpecification) Components() []*glycan.Residue { return s.components }

// Masses returns the diagnostic masses in declaration order.
// Callers must not modify the returned slice.
func (s *SignatureSpecification) Masses() []float64 { return s.masses }

// IsExpected reports whether the composition behind v contains every
// required residue at least once. v may wrap the composition in any number
// of glycan.Resolver layers.
func (s *SignatureSpecification) IsExpected(v any) (bool, error) {
	c, err := glycan.Resolve(v)
	if err != nil {
		return false, err
	}
	for _, r := range s.components {
		if c.CountOf(r) == 0 {
			return false, nil
		}
	}
	return true, nil
}

// CountOf returns how many complete copies of the signature the
// composition behind v can supply: the minimum count across all required
// residues, capped at a large sentinel when no components are declared.
func (s *SignatureSpecification) CountOf(v any) (int, error) {
	c, err := glycan.Resolve(v)
	if err != nil {
		return 0, err
	}
	limit := countSentinel
	for _, r := range s.components {
		if n := c.CountOf(r); n < limit {
			limit = n
		}
	}
	return limit, nil
}

// PeakOf locates the spectral evidence for this signature: across every
// diagnostic mass, the peak within tolerance with strictly greatest
// intensity. Iteration order is the mass buffer first, then the spectrum's
// own per-mass order, so the first-encountered peak wins ties. ok is false
// when no diagnostic mass has a peak in tolerance.
func (s *SignatureSpecification) PeakOf(sp *spectrum.Spectrum, tol spectrum.Tolerance) (best spectrum.Peak, ok bool) {
	for _, mass := range s.masses {
		for _, p := range sp.AllPeaksFor(mass, tol) {
			if !ok || p.Intensity > best.Intensity {
				best, ok = p, true
			}
		}
	}
	return best, ok
}
