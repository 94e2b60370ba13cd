package oxonium

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glycokit/oxonium/fragment"
	"github.com/glycokit/oxonium/glycan"
	"github.com/glycokit/oxonium/spectrum"
)

func comp(t *testing.T, counts map[string]int) *glycan.Composition {
	t.Helper()
	c, err := glycan.FromCounts(counts)
	require.NoError(t, err)
	return c
}

// stubGenerator returns canned fragments per composition key, for tests
// that pin down exact membership sets.
type stubGenerator struct {
	frags map[string][]fragment.Fragment
}

func (g stubGenerator) Generate(c *glycan.Composition, _ fragment.Options) ([]fragment.Fragment, error) {
	return g.frags[c.Key()], nil
}

var (
	fragA = fragment.Fragment{Name: "a", Mass: 204.0}
	fragB = fragment.Fragment{Name: "b", Mass: 366.0}
)

// threeRecordIndex builds the catalog from the equivalence-class scenario:
// records 1 and 2 share the fragment set {a, b}, record 3 emits only {a}.
func threeRecordIndex(t *testing.T, opts ...Option) (*Index, []Record) {
	t.Helper()

	records := []Record{
		{ID: 1, Composition: comp(t, map[string]int{"Hex": 1})},
		{ID: 2, Composition: comp(t, map[string]int{"Hex": 2})},
		{ID: 3, Composition: comp(t, map[string]int{"HexNAc": 1})},
	}
	gen := stubGenerator{frags: map[string][]fragment.Fragment{
		records[0].Composition.Key(): {fragA, fragB},
		records[1].Composition.Key(): {fragA, fragB},
		records[2].Composition.Key(): {fragA},
	}}

	ix := New(gen, opts...)
	require.NoError(t, ix.BuildIndex(records, fragment.Options{}))
	return ix, records
}

func TestBuildIndexStates(t *testing.T) {
	ix := New(stubGenerator{})
	assert.Equal(t, StateEmpty, ix.State())

	_, err := ix.Match(spectrum.New(nil), spectrum.Da(0.02))
	assert.ErrorIs(t, err, ErrNotBuilt)

	ix, _ = threeRecordIndex(t)
	assert.Equal(t, StateSimplified, ix.State())
}

func TestBuildIndexSortsFragmentsByMass(t *testing.T) {
	ix, _ := threeRecordIndex(t)

	frags := ix.Fragments()
	require.Len(t, frags, 2)
	assert.Equal(t, "a", frags[0].Name)
	assert.Equal(t, "b", frags[1].Name)
	assert.Less(t, frags[0].Mass, frags[1].Mass)
}

func TestSimplifyEquivalenceClasses(t *testing.T) {
	ix, records := threeRecordIndex(t)

	// Exactly 2 classes: {1,2} and {3}.
	assert.Equal(t, 2, ix.Classes())
	assert.Equal(t, ix.indexToSimplified[1], ix.indexToSimplified[2])
	assert.NotEqual(t, ix.indexToSimplified[1], ix.indexToSimplified[3])

	// Deterministic numbering: class containing the smallest original id
	// comes first.
	assert.Equal(t, 0, ix.indexToSimplified[1])
	assert.Equal(t, 1, ix.indexToSimplified[3])

	// Post-build invariant: the translation map is total and every
	// original composition is reachable through its class.
	for _, rec := range records {
		class, ok := ix.indexToSimplified[rec.ID]
		require.True(t, ok, "id %d", rec.ID)
		assert.Contains(t, ix.indexToGlycan[class], rec.Composition)
	}

	// Posting lists carry class ids after compression.
	assert.Equal(t, []int{0, 1}, ix.fragmentIndex["a"])
	assert.Equal(t, []int{0}, ix.fragmentIndex["b"])
}

func TestSimplifyGroupsOnlyEqualSets(t *testing.T) {
	records := []Record{
		{ID: 10, Composition: comp(t, map[string]int{"Hex": 1})},
		{ID: 11, Composition: comp(t, map[string]int{"Hex": 2})},
		{ID: 12, Composition: comp(t, map[string]int{"Hex": 3})},
	}
	gen := stubGenerator{frags: map[string][]fragment.Fragment{
		records[0].Composition.Key(): {fragA, fragB},
		records[1].Composition.Key(): {fragB, fragA}, // same set, different order
		records[2].Composition.Key(): {fragB},        // proper subset
	}}

	ix := New(gen)
	require.NoError(t, ix.BuildIndex(records, fragment.Options{}))

	assert.Equal(t, ix.indexToSimplified[10], ix.indexToSimplified[11])
	assert.NotEqual(t, ix.indexToSimplified[10], ix.indexToSimplified[12])
}

func TestSimplifyRecordWithoutFragments(t *testing.T) {
	records := []Record{
		{ID: 1, Composition: comp(t, map[string]int{"Hex": 1})},
		{ID: 2, Composition: comp(t, map[string]int{"NeuGc": 9})},
	}
	gen := stubGenerator{frags: map[string][]fragment.Fragment{
		records[0].Composition.Key(): {fragA},
	}}

	ix := New(gen)
	require.NoError(t, ix.BuildIndex(records, fragment.Options{}))

	// The fragment-less record still gets a (distinct, empty-set) class.
	class, ok := ix.indexToSimplified[2]
	require.True(t, ok)
	assert.NotEqual(t, ix.indexToSimplified[1], class)

	m, err := ix.Match(spectrum.New([]spectrum.Peak{{NeutralMass: 204.0, Intensity: 1}}), spectrum.Da(0.02))
	require.NoError(t, err)
	assert.NotNil(t, m.ByID(1))
	assert.Nil(t, m.ByID(2))
}

func TestMatchScenario(t *testing.T) {
	ix, records := threeRecordIndex(t)

	s := spectrum.New([]spectrum.Peak{
		{NeutralMass: 204.001, Intensity: 100},
		{NeutralMass: 500.0, Intensity: 50},
	})
	m, err := ix.Match(s, spectrum.Da(0.02))
	require.NoError(t, err)

	// Fragment a matched; both classes contain it.
	assert.Equal(t, 2, m.Len())

	one := m.ByID(1)
	require.Len(t, one, 1)
	assert.Equal(t, fragA, one[0].Fragment)
	assert.Equal(t, 204.001, one[0].PeakMass)

	// Records sharing a class share match lists.
	assert.Equal(t, one, m.ByID(2))

	three := m.ByID(3)
	require.Len(t, three, 1)
	assert.Equal(t, fragA, three[0].Fragment)

	// ByGlycan goes through the collapsed composition map.
	assert.Equal(t, one, m.ByGlycan(records[0].Composition))
	assert.Equal(t, one, m.ByGlycan(records[1].Composition))

	// Unknown id and unknown composition give the nil no-result marker.
	assert.Nil(t, m.ByID(99))
	assert.Nil(t, m.ByGlycan(comp(t, map[string]int{"Fuc": 7})))
}

func TestMatchBestPeakPerFragment(t *testing.T) {
	ix, _ := threeRecordIndex(t)

	// Two peaks inside the window for fragment a: the stronger one wins.
	s := spectrum.New([]spectrum.Peak{
		{NeutralMass: 203.995, Intensity: 10},
		{NeutralMass: 204.005, Intensity: 90},
	})
	m, err := ix.Match(s, spectrum.Da(0.02))
	require.NoError(t, err)

	one := m.ByID(1)
	require.Len(t, one, 1)
	assert.Equal(t, 204.005, one[0].PeakMass)
}

func TestMatchNoPeaksYieldsEmptyResult(t *testing.T) {
	ix, records := threeRecordIndex(t)

	s := spectrum.New([]spectrum.Peak{{NeutralMass: 999.0, Intensity: 1000}})
	m, err := ix.Match(s, spectrum.Da(0.02))
	require.NoError(t, err)

	assert.Equal(t, 0, m.Len())
	// Known compositions still yield nil, not an empty list: match lists
	// only exist once a fragment actually hit.
	for _, rec := range records {
		assert.Nil(t, m.ByGlycan(rec.Composition))
		assert.Nil(t, m.ByID(rec.ID))
	}
}

func TestMatchDeterminism(t *testing.T) {
	ix, _ := threeRecordIndex(t)
	s := spectrum.New([]spectrum.Peak{
		{NeutralMass: 204.0, Intensity: 10},
		{NeutralMass: 366.0, Intensity: 20},
	})

	first, err := ix.Match(s, spectrum.Da(0.02))
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := ix.Match(s, spectrum.Da(0.02))
		require.NoError(t, err)
		assert.Equal(t, first.matchIndex, again.matchIndex)
	}
}

func TestMatchWithRealGenerator(t *testing.T) {
	records := []Record{
		{ID: 1, Composition: comp(t, map[string]int{"Hex": 5, "HexNAc": 4, "NeuAc": 2})},
		{ID: 2, Composition: comp(t, map[string]int{"Hex": 5, "HexNAc": 4, "Fuc": 1})},
	}
	ix := New(fragment.OxoniumGenerator{})
	require.NoError(t, ix.BuildIndex(records, fragment.Options{WaterLosses: true}))

	// HexNAc oxonium at 204.0866 and NeuAc at 292.1027: only record 1
	// carries NeuAc.
	s := spectrum.New([]spectrum.Peak{
		{NeutralMass: 204.0866, Intensity: 100},
		{NeutralMass: 292.1027, Intensity: 80},
	})
	m, err := ix.Match(s, spectrum.PPM(20))
	require.NoError(t, err)

	hits1 := m.ByID(1)
	hits2 := m.ByID(2)
	require.NotNil(t, hits1)
	require.NotNil(t, hits2)
	assert.Greater(t, len(hits1), len(hits2))
}

func TestMatchBatch(t *testing.T) {
	ix, _ := threeRecordIndex(t)

	spectra := []*spectrum.Spectrum{
		spectrum.New([]spectrum.Peak{{NeutralMass: 204.0, Intensity: 1}}),
		spectrum.New([]spectrum.Peak{{NeutralMass: 999.0, Intensity: 1}}),
		spectrum.New([]spectrum.Peak{{NeutralMass: 366.0, Intensity: 1}}),
	}

	batch, err := ix.MatchBatch(context.Background(), spectra, spectrum.Da(0.02))
	require.NoError(t, err)
	require.Len(t, batch, 3)

	for i, s := range spectra {
		want, err := ix.Match(s, spectrum.Da(0.02))
		require.NoError(t, err)
		assert.Equal(t, want.matchIndex, batch[i].matchIndex, "spectrum %d", i)
	}
}

func TestMatchBatchEmptyIndex(t *testing.T) {
	ix := New(stubGenerator{})
	_, err := ix.MatchBatch(context.Background(), nil, spectrum.Da(0.02))
	assert.ErrorIs(t, err, ErrNotBuilt)
}

func TestMetricsCollection(t *testing.T) {
	mc := &BasicMetricsCollector{}
	ix, _ := threeRecordIndex(t, WithMetricsCollector(mc))

	s := spectrum.New([]spectrum.Peak{{NeutralMass: 204.0, Intensity: 1}})
	_, err := ix.Match(s, spectrum.Da(0.02))
	require.NoError(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.BuildCount)
	assert.Equal(t, int64(1), stats.MatchCount)
	assert.Equal(t, int64(2), stats.MatchAvgHits)
}
