// Package spectrum provides a deconvoluted peak list queryable by neutral
// mass within a tolerance window.
package spectrum

import (
	"fmt"
	"sort"
)

// Peak is a single deconvoluted peak.
type Peak struct {
	NeutralMass float64 `json:"neutral_mass"`
	Intensity   float64 `json:"intensity"`
}

// Tolerance bounds the acceptable mass error of a match. Use PPM for
// relative (parts-per-million) windows or Da for absolute ones.
type Tolerance struct {
	value    float64
	relative bool
}

// PPM returns a relative tolerance of v parts per million.
func PPM(v float64) Tolerance {
	return Tolerance{value: v, relative: true}
}

// Da returns an absolute tolerance in daltons.
func Da(v float64) Tolerance {
	return Tolerance{value: v}
}

// Window returns the inclusive [lo, hi] mass window around mass.
func (t Tolerance) Window(mass float64) (lo, hi float64) {
	w := t.value
	if t.relative {
		w = w * 1e-6 * mass
	}
	return mass - w, mass + w
}

func (t Tolerance) String() string {
	if t.relative {
		return fmt.Sprintf("%gppm", t.value)
	}
	return fmt.Sprintf("%gDa", t.value)
}

// Spectrum is an immutable collection of peaks sorted ascending by neutral
// mass. Safe for concurrent readers.
type Spectrum struct {
	peaks []Peak
}

// New copies peaks into a new spectrum, sorting them by neutral mass.
// The sort is stable so equal-mass peaks keep their input order.
func New(peaks []Peak) *Spectrum {
	sorted := make([]Peak, len(peaks))
	copy(sorted, peaks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].NeutralMass < sorted[j].NeutralMass
	})
	return &Spectrum{peaks: sorted}
}

// Len returns the number of peaks.
func (s *Spectrum) Len() int { return len(s.peaks) }

// Peaks returns the sorted backing slice. Callers must not modify it.
func (s *Spectrum) Peaks() []Peak { return s.peaks }

// AllPeaksFor returns every peak within tolerance of mass, in ascending
// mass order. The returned slice aliases the spectrum and must be treated
// as read-only.
func (s *Spectrum) AllPeaksFor(mass float64, tol Tolerance) []Peak {
	lo, hi := tol.Window(mass)
	i := sort.Search(len(s.peaks), func(k int) bool {
		return s.peaks[k].NeutralMass >= lo
	})
	j := i
	for j < len(s.peaks) && s.peaks[j].NeutralMass <= hi {
		j++
	}
	if i == j {
		return nil
	}
	return s.peaks[i:j]
}

// HasPeak returns the single highest-intensity peak within tolerance of
// mass. On intensity ties the lower-mass peak wins. ok is false when the
// window is empty.
func (s *Spectrum) HasPeak(mass float64, tol Tolerance) (best Peak, ok bool) {
	for _, p := range s.AllPeaksFor(mass, tol) {
		if !ok || p.Intensity > best.Intensity {
			best, ok = p, true
		}
	}
	return best, ok
}
