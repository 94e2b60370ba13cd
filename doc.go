// Package oxonium matches glycan compositions against observed mass
// spectra using diagnostic oxonium fragment ions.
//
// The core type is Index: built once per candidate catalog, compressed
// into equivalence classes of compositions that share identical
// diagnostic-fragment sets, then queried once per spectrum.
//
//	idx := oxonium.New(fragment.OxoniumGenerator{})
//	if err := idx.BuildIndex(records, fragment.Options{WaterLosses: true}); err != nil { ... }
//
//	m, _ := idx.Match(spec, spectrum.PPM(20))
//	hits := m.ByGlycan(candidate) // nil when nothing matched
//
// Once simplified (BuildIndex simplifies automatically), an Index is
// immutable and safe for concurrent Match calls. SignatureSpecification
// provides independent per-motif checks: is a required residue combination
// present, and which peak supports it.
package oxonium
