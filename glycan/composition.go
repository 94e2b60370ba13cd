package glycan

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Composition is a multiset of residues. The zero count is implicit:
// CountOf returns 0 for any residue not present.
//
// A Composition is not safe for concurrent mutation; once handed to an
// index it must be treated as read-only.
type Composition struct {
	counts map[*Residue]int

	// Canonical key cache, invalidated on mutation.
	key string
}

// NewComposition returns an empty composition.
func NewComposition() *Composition {
	return &Composition{counts: make(map[*Residue]int)}
}

// FromCounts builds a composition from residue names and counts.
// Zero and negative counts are dropped.
func FromCounts(counts map[string]int) (*Composition, error) {
	c := NewComposition()
	for name, n := range counts {
		r, err := FromName(name)
		if err != nil {
			return nil, err
		}
		c.Set(r, n)
	}
	return c, nil
}

// Set replaces the count for a residue. Setting a count <= 0 removes it.
func (c *Composition) Set(r *Residue, n int) {
	c.key = ""
	if n <= 0 {
		delete(c.counts, r)
		return
	}
	c.counts[r] = n
}

// CountOf returns the count for a residue, zero when absent.
func (c *Composition) CountOf(r *Residue) int {
	return c.counts[r]
}

// Len returns the number of distinct residue types present.
func (c *Composition) Len() int { return len(c.counts) }

// Total returns the total residue count across all types.
func (c *Composition) Total() int {
	n := 0
	for _, v := range c.counts {
		n += v
	}
	return n
}

// Residues returns the residue types present, ordered by mass then name.
// This is the canonical iteration order used by Key and by fragment
// generation.
func (c *Composition) Residues() []*Residue {
	rs := make([]*Residue, 0, len(c.counts))
	for r := range c.counts {
		rs = append(rs, r)
	}
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].mass != rs[j].mass {
			return rs[i].mass < rs[j].mass
		}
		return rs[i].name < rs[j].name
	})
	return rs
}

// Mass returns the summed monoisotopic residue mass.
func (c *Composition) Mass() float64 {
	m := 0.0
	for r, n := range c.counts {
		m += r.mass * float64(n)
	}
	return m
}

// Key returns the canonical serialized form, e.g. "{Hex:2; HexNAc:1}".
// Equal compositions produce equal keys, so Key is usable as a map key.
func (c *Composition) Key() string {
	if c.key != "" || len(c.counts) == 0 {
		if c.key == "" {
			c.key = "{}"
		}
		return c.key
	}

	var sb strings.Builder
	sb.WriteByte('{')
	for i, r := range c.Residues() {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(r.name)
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(c.counts[r]))
	}
	sb.WriteByte('}')
	c.key = sb.String()
	return c.key
}

func (c *Composition) String() string { return c.Key() }

// Parse is the inverse of Key: it accepts "{Hex:2; HexNAc:1}" style
// serializations (whitespace between entries is flexible).
func Parse(s string) (*Composition, error) {
	body := strings.TrimSpace(s)
	if len(body) < 2 || body[0] != '{' || body[len(body)-1] != '}' {
		return nil, fmt.Errorf("malformed composition %q", s)
	}
	body = body[1 : len(body)-1]

	c := NewComposition()
	if strings.TrimSpace(body) == "" {
		return c, nil
	}
	for _, part := range strings.Split(body, ";") {
		name, count, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("malformed composition entry %q", part)
		}
		r, err := FromName(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil {
			return nil, fmt.Errorf("malformed composition count %q: %w", part, err)
		}
		c.Set(r, n)
	}
	return c, nil
}
