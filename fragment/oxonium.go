package fragment

import (
	"strconv"
	"strings"

	"github.com/glycokit/oxonium/glycan"
)

// Monoisotopic masses (u).
const (
	ProtonMass = 1.00727646688
	WaterMass  = 18.0105646863
)

// OxoniumGenerator is the default Generator. For a composition it emits
// singly-protonated oxonium ions for every residue multiset of size 1 up
// to Options.MaxCombination that the composition can supply, plus water
// loss variants when requested.
//
// Names are canonical over the residue multiset ("HexNAc", "Hex2",
// "HexHexNAc", "HexNAc-H2O"), so the same species generated for different
// compositions always shares one name and one mass.
type OxoniumGenerator struct{}

func (OxoniumGenerator) Generate(c *glycan.Composition, opts Options) ([]Fragment, error) {
	residues := c.Residues()
	maxSize := opts.maxCombination()

	var out []Fragment
	counts := make([]int, len(residues))

	emit := func(mass float64) {
		name := comboName(residues, counts)
		out = append(out, Fragment{Name: name, Mass: mass + ProtonMass})
		if opts.WaterLosses {
			out = append(out,
				Fragment{Name: name + "-H2O", Mass: mass + ProtonMass - WaterMass},
				Fragment{Name: name + "-2H2O", Mass: mass + ProtonMass - 2*WaterMass},
			)
		}
	}

	// Enumerate residue multisets in canonical order. Starting each level
	// at the current residue index keeps every multiset unique.
	var walk func(start, taken int, mass float64)
	walk = func(start, taken int, mass float64) {
		if taken > 0 {
			emit(mass)
		}
		if taken == maxSize {
			return
		}
		for i := start; i < len(residues); i++ {
			if counts[i] >= c.CountOf(residues[i]) {
				continue
			}
			counts[i]++
			walk(i, taken+1, mass+residues[i].Mass())
			counts[i]--
		}
	}
	walk(0, 0, 0)

	return out, nil
}

func comboName(residues []*glycan.Residue, counts []int) string {
	var sb strings.Builder
	for i, n := range counts {
		if n == 0 {
			continue
		}
		sb.WriteString(residues[i].Name())
		if n > 1 {
			sb.WriteString(strconv.Itoa(n))
		}
	}
	return sb.String()
}
