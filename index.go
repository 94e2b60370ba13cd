package oxonium

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/glycokit/oxonium/fragment"
	"github.com/glycokit/oxonium/glycan"
	"github.com/glycokit/oxonium/spectrum"
)

// State tracks the index lifecycle. Match is valid in StateBuilt and
// StateSimplified, but the ids it reports differ: raw candidate ids before
// Simplify, equivalence-class ids after.
type State int

const (
	StateEmpty State = iota
	StateBuilt
	StateSimplified
)

func (s State) String() string {
	switch s {
	case StateBuilt:
		return "built"
	case StateSimplified:
		return "simplified"
	default:
		return "empty"
	}
}

// Record is one catalog entry: a candidate glycan composition with its
// database id.
type Record struct {
	ID          int
	Composition *glycan.Composition
}

// Index is an inverted index from diagnostic fragment ions to the candidate
// compositions that produce them.
//
// Build once per search space with BuildIndex (which compresses candidates
// into equivalence classes as its final step), then call Match once per
// spectrum. After simplification the index is immutable and safe for
// concurrent Match calls.
type Index struct {
	gen  fragment.Generator
	opts options

	state State

	// fragments holds every retained ion sorted ascending by mass.
	fragments []fragment.Fragment

	// fragmentIndex maps fragment name to the candidate ids producing it
	// (class ids once simplified).
	fragmentIndex map[string][]int

	// glycanToIndex maps composition key to candidate id (class id once
	// simplified); glycans keeps the composition behind each key.
	glycanToIndex map[string]int
	glycans       map[string]*glycan.Composition

	// indexToGlycan maps candidate/class id back to its compositions.
	indexToGlycan map[int][]*glycan.Composition

	// indexToSimplified totally maps every original id to its class id.
	// Populated by Simplify.
	indexToSimplified map[int]int
}

// New creates an empty index that generates fragments with gen.
func New(gen fragment.Generator, optFns ...Option) *Index {
	return &Index{
		gen:  gen,
		opts: applyOptions(optFns),
	}
}

// State reports the index lifecycle state.
func (ix *Index) State() State { return ix.state }

// Fragments returns the retained fragments sorted ascending by mass.
// Callers must not modify the returned slice.
func (ix *Index) Fragments() []fragment.Fragment { return ix.fragments }

// Classes returns the number of candidate ids (equivalence classes once
// simplified) the index distinguishes.
func (ix *Index) Classes() int { return len(ix.indexToGlycan) }

// BuildIndex populates the index from a candidate catalog and finishes by
// calling Simplify. It is a one-time, single-writer operation: it must
// complete before any concurrent Match call.
//
// Fragment names are global: when two records emit the same name the later
// mass wins, which by the generator contract denotes the same ion.
func (ix *Index) BuildIndex(records []Record, genOpts fragment.Options) error {
	start := time.Now()

	byName := make(map[string]fragment.Fragment)
	ix.fragmentIndex = make(map[string][]int)
	ix.glycanToIndex = make(map[string]int, len(records))
	ix.glycans = make(map[string]*glycan.Composition, len(records))
	ix.indexToGlycan = make(map[int][]*glycan.Composition, len(records))

	for _, rec := range records {
		frags, err := ix.gen.Generate(rec.Composition, genOpts)
		if err != nil {
			ix.opts.logger.LogBuild(context.Background(), len(records), 0, 0, time.Since(start), err)
			ix.opts.metrics.RecordBuild(len(records), time.Since(start), err)
			return err
		}
		for _, f := range frags {
			byName[f.Name] = f
			ix.fragmentIndex[f.Name] = append(ix.fragmentIndex[f.Name], rec.ID)
		}

		key := rec.Composition.Key()
		ix.glycanToIndex[key] = rec.ID
		ix.glycans[key] = rec.Composition
		ix.indexToGlycan[rec.ID] = []*glycan.Composition{rec.Composition}
	}

	ix.fragments = make([]fragment.Fragment, 0, len(byName))
	for _, f := range byName {
		ix.fragments = append(ix.fragments, f)
	}
	sort.Slice(ix.fragments, func(i, j int) bool {
		if ix.fragments[i].Mass != ix.fragments[j].Mass {
			return ix.fragments[i].Mass < ix.fragments[j].Mass
		}
		return ix.fragments[i].Name < ix.fragments[j].Name
	})

	ix.state = StateBuilt
	ix.Simplify()

	ix.opts.logger.LogBuild(context.Background(), len(records), len(ix.fragments), len(ix.indexToGlycan), time.Since(start), nil)
	ix.opts.metrics.RecordBuild(len(records), time.Since(start), nil)
	return nil
}

// Simplify collapses candidates whose diagnostic-fragment name sets are
// identical into equivalence classes, shrinking posting lists and matching
// cost from O(#candidates) to O(#distinct sets). Original per-candidate
// identity stays recoverable through the id-translation maps.
//
// Class ids are assigned in ascending order of the smallest original id in
// each class, so they are stable across runs.
func (ix *Index) Simplify() {
	if ix.state == StateEmpty {
		return
	}

	// Membership set per original candidate: a bitmap over interned
	// fragment-name ids.
	nameIDs := make(map[string]uint32, len(ix.fragmentIndex))
	members := make(map[int]*roaring.Bitmap)
	for name, ids := range ix.fragmentIndex {
		nid, ok := nameIDs[name]
		if !ok {
			nid = uint32(len(nameIDs))
			nameIDs[name] = nid
		}
		for _, id := range ids {
			bm := members[id]
			if bm == nil {
				bm = roaring.New()
				members[id] = bm
			}
			bm.Add(nid)
		}
	}

	// Walk original ids ascending so class numbering is deterministic.
	// Candidates that generated no fragments share the empty set.
	origIDs := make([]int, 0, len(ix.indexToGlycan))
	for id := range ix.indexToGlycan {
		origIDs = append(origIDs, id)
	}
	sort.Ints(origIDs)

	empty := roaring.New()
	classOf := make(map[string]int)
	newIndexToGlycan := make(map[int][]*glycan.Composition)
	ix.indexToSimplified = make(map[int]int, len(origIDs))

	for _, id := range origIDs {
		bm := members[id]
		if bm == nil {
			bm = empty
		}
		setKey := bm.String()
		class, ok := classOf[setKey]
		if !ok {
			class = len(classOf)
			classOf[setKey] = class
		}
		ix.indexToSimplified[id] = class
		newIndexToGlycan[class] = append(newIndexToGlycan[class], ix.indexToGlycan[id]...)
	}

	// Posting lists now carry class ids.
	newFragmentIndex := make(map[string][]int, len(ix.fragmentIndex))
	for name, ids := range ix.fragmentIndex {
		seen := roaring.New()
		classes := make([]int, 0, len(ids))
		for _, id := range ids {
			class := ix.indexToSimplified[id]
			if seen.CheckedAdd(uint32(class)) {
				classes = append(classes, class)
			}
		}
		sort.Ints(classes)
		newFragmentIndex[name] = classes
	}

	newGlycanToIndex := make(map[string]int, len(ix.glycanToIndex))
	for key, id := range ix.glycanToIndex {
		newGlycanToIndex[key] = ix.indexToSimplified[id]
	}

	ix.fragmentIndex = newFragmentIndex
	ix.glycanToIndex = newGlycanToIndex
	ix.indexToGlycan = newIndexToGlycan
	ix.state = StateSimplified

	ix.opts.logger.LogSimplify(context.Background(), len(origIDs), len(classOf))
}

// Match scans the spectrum for every catalog fragment and records, per
// equivalence class, the fragments whose best peak fell within tolerance.
// The result shares the index's id-translation maps without copying; each
// call owns its own match state.
func (ix *Index) Match(s *spectrum.Spectrum, tol spectrum.Tolerance) (*Match, error) {
	if ix.state == StateEmpty {
		return nil, ErrNotBuilt
	}
	start := time.Now()

	m := &Match{
		matchIndex:        make(map[int][]FragmentPeak),
		glycanToIndex:     ix.glycanToIndex,
		indexToSimplified: ix.indexToSimplified,
	}

	fragmentsHit := 0
	for _, f := range ix.fragments {
		peak, ok := s.HasPeak(f.Mass, tol)
		if !ok {
			continue
		}
		fragmentsHit++
		for _, class := range ix.fragmentIndex[f.Name] {
			m.matchIndex[class] = append(m.matchIndex[class], FragmentPeak{
				Fragment: f,
				PeakMass: peak.NeutralMass,
			})
		}
	}

	ix.opts.logger.LogMatch(context.Background(), fragmentsHit, len(m.matchIndex))
	ix.opts.metrics.RecordMatch(len(m.matchIndex), time.Since(start))
	return m, nil
}

// MatchBatch matches many spectra concurrently against an immutable index.
// Results are positionally aligned with spectra. The context is checked
// between spectra; a running Match is never interrupted.
func (ix *Index) MatchBatch(ctx context.Context, spectra []*spectrum.Spectrum, tol spectrum.Tolerance) ([]*Match, error) {
	if ix.state == StateEmpty {
		return nil, ErrNotBuilt
	}

	out := make([]*Match, len(spectra))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, s := range spectra {
		i, s := i, s
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := ix.Match(s, tol)
			if err != nil {
				return err
			}
			out[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
