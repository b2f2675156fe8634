package sitestats

import (
	"fmt"
	"strings"

	"github.com/dd0wney/cluso-bindstat/pkg/binding"
	"github.com/dd0wney/cluso-bindstat/pkg/errs"
	"github.com/dd0wney/cluso-bindstat/pkg/moltype"
)

// Ligand sites compared by the steric hindrance table.
const (
	SiteA = 0
	SiteB = 1
)

// StericCounts is the number of ligand molecules of one type seen with site
// A bound, site B bound, and both, summed over every added line.
type StericCounts struct {
	SiteA int
	SiteB int
	Both  int
}

// Hindrance holds the two conditional probabilities for one ligand type.
type Hindrance struct {
	Type    int
	AGivenB float64
	BGivenA float64
}

// StericTable accumulates per-ligand-type site occupancy across lines,
// typically one final-state line per run.
type StericTable struct {
	types  moltype.Config
	counts []StericCounts // indexed by type; index 0 (receptors) stays zero
	lines  int
}

// NewStericTable returns an empty table for every type of types.
func NewStericTable(types moltype.Config) *StericTable {
	return &StericTable{
		types:  types,
		counts: make([]StericCounts, types.NumTypes()),
	}
}

// Add folds one line's edges into the table. Only edges whose first
// endpoint is a ligand contribute; a molecule counts at most once per site
// per line.
func (s *StericTable) Add(edges []binding.Edge) error {
	type occupancy struct{ a, b bool }
	seen := make(map[int]*occupancy)
	var order []int

	for _, e := range edges {
		t, err := s.types.TypeOf(e.Mol1)
		if err != nil {
			return errs.New("steric hindrance").Line(s.lines + 1).Cause(err).Err()
		}
		if t == moltype.Receptor {
			continue
		}
		occ, ok := seen[e.Mol1]
		if !ok {
			occ = &occupancy{}
			seen[e.Mol1] = occ
			order = append(order, e.Mol1)
		}
		switch e.Site1 {
		case SiteA:
			occ.a = true
		case SiteB:
			occ.b = true
		}
	}

	for _, id := range order {
		t, _ := s.types.TypeOf(id)
		occ := seen[id]
		c := &s.counts[t]
		if occ.a {
			c.SiteA++
		}
		if occ.b {
			c.SiteB++
		}
		if occ.a && occ.b {
			c.Both++
		}
	}
	s.lines++
	return nil
}

// Lines returns the number of lines added.
func (s *StericTable) Lines() int {
	return s.lines
}

// Counts returns the accumulated counts of type t; zero for unknown types.
func (s *StericTable) Counts(t int) StericCounts {
	if t < 0 || t >= len(s.counts) {
		return StericCounts{}
	}
	return s.counts[t]
}

// Hindrance returns P(A|B) = both/B and P(B|A) = both/A for type t, with
// ZeroDenominator for an empty denominator.
func (s *StericTable) Hindrance(t int) Hindrance {
	c := s.Counts(t)
	return Hindrance{
		Type:    t,
		AGivenB: ratio(c.Both, c.SiteB),
		BGivenA: ratio(c.Both, c.SiteA),
	}
}

// Hindrances returns Hindrance for every ligand type in order.
func (s *StericTable) Hindrances() []Hindrance {
	out := make([]Hindrance, 0, len(s.counts))
	for t := moltype.Receptor + 1; t < len(s.counts); t++ {
		out = append(out, s.Hindrance(t))
	}
	return out
}

// Report renders two lines per ligand type:
//
//	1: P(A|B) = 0.5
//	1: P(B|A) = 1
func (s *StericTable) Report() string {
	var b strings.Builder
	for _, h := range s.Hindrances() {
		fmt.Fprintf(&b, "%d: P(A|B) = %s\n", h.Type, FormatFloat(h.AGivenB))
		fmt.Fprintf(&b, "%d: P(B|A) = %s\n", h.Type, FormatFloat(h.BGivenA))
	}
	return b.String()
}
