package oxonium

import (
	"github.com/glycokit/oxonium/fragment"
	"github.com/glycokit/oxonium/glycan"
)

// FragmentPeak pairs a catalog fragment with the observed neutral mass of
// the peak that matched it.
type FragmentPeak struct {
	Fragment fragment.Fragment
	PeakMass float64
}

// Match is the immutable result of one Index.Match call. It owns its match
// lists and borrows the index's id-translation maps read-only.
//
// Lookups return nil for "no result"; an id unknown to the index and a
// known id whose class matched nothing are indistinguishable, since match
// lists are only created on a successful fragment hit.
type Match struct {
	matchIndex        map[int][]FragmentPeak
	glycanToIndex     map[string]int
	indexToSimplified map[int]int
}

// Len returns the number of classes with at least one matched fragment.
func (m *Match) Len() int { return len(m.matchIndex) }

// ByGlycan returns the matched fragments for the class containing the
// given composition, nil when there are none.
func (m *Match) ByGlycan(c *glycan.Composition) []FragmentPeak {
	if c == nil {
		return nil
	}
	class, ok := m.glycanToIndex[c.Key()]
	if !ok {
		return nil
	}
	return m.matchIndex[class]
}

// ByID returns the matched fragments for the class containing the original
// candidate id, nil when there are none. The translation goes through the
// total original-id to class-id map, a deliberately separate path from
// ByGlycan's already-collapsed composition map.
func (m *Match) ByID(originalID int) []FragmentPeak {
	class, ok := m.indexToSimplified[originalID]
	if !ok {
		return nil
	}
	return m.matchIndex[class]
}
