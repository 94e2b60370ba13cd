// Package glycan models glycan compositions: unordered multisets of
// monosaccharide residues, independent of sequence or linkage.
//
// Residues are interned: FromName always returns the same *Residue pointer
// for the same canonical name, so residue equality is pointer equality and
// compositions can be compared and keyed cheaply.
//
// Values that carry a composition indirectly (database records, scored
// candidates, lazily parsed structures) implement Resolver; Resolve unwraps
// any number of layers until it reaches the terminal *Composition.
package glycan
