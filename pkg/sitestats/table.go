// Package sitestats answers site-occupancy questions about one molecule
// type directly from parsed edges, without building a binding graph.
package sitestats

import (
	"sort"

	"github.com/dd0wney/cluso-bindstat/pkg/binding"
	"github.com/dd0wney/cluso-bindstat/pkg/moltype"
)

// ZeroDenominator is returned by every ratio whose denominator is zero.
const ZeroDenominator = 0.0

// BoundSitesTable maps each molecule of a target type to the set of its
// occupied site ids.
type BoundSitesTable struct {
	target moltype.Range
	sites  []map[int]struct{} // indexed by id - target.Start
}

// NewTable scans edges once. Every id of target gets an entry, bound or not.
// An edge's site is attributed to its first endpoint inside target; when
// Mol1 matches, Mol2 is not looked at.
func NewTable(edges []binding.Edge, target moltype.Range) *BoundSitesTable {
	t := &BoundSitesTable{
		target: target,
		sites:  make([]map[int]struct{}, max(target.Count, 0)),
	}
	for _, e := range edges {
		switch {
		case target.Contains(e.Mol1):
			t.add(e.Mol1, e.Site1)
		case target.Contains(e.Mol2):
			t.add(e.Mol2, e.Site2)
		}
	}
	return t
}

func (t *BoundSitesTable) add(id, site int) {
	i := id - t.target.Start
	if t.sites[i] == nil {
		t.sites[i] = make(map[int]struct{}, 2)
	}
	t.sites[i][site] = struct{}{}
}

// Target returns the id range the table covers.
func (t *BoundSitesTable) Target() moltype.Range {
	return t.target
}

// Sites returns the occupied sites of id in ascending order; nil when id is
// unbound or outside the target range.
func (t *BoundSitesTable) Sites(id int) []int {
	if !t.target.Contains(id) {
		return nil
	}
	set := t.sites[id-t.target.Start]
	if len(set) == 0 {
		return nil
	}
	out := make([]int, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

// CountSingleSiteBound counts molecules with site occupied.
func (t *BoundSitesTable) CountSingleSiteBound(site int) int {
	n := 0
	for _, set := range t.sites {
		if _, ok := set[site]; ok {
			n++
		}
	}
	return n
}

// CountTwoSitesBound counts molecules with both a and b occupied.
func (t *BoundSitesTable) CountTwoSitesBound(a, b int) int {
	n := 0
	for _, set := range t.sites {
		_, okA := set[a]
		_, okB := set[b]
		if okA && okB {
			n++
		}
	}
	return n
}

// ProbSiteBound is the fraction of target molecules with site occupied.
func (t *BoundSitesTable) ProbSiteBound(site int) float64 {
	return ratio(t.CountSingleSiteBound(site), t.target.Count)
}

// ProbGiven is P(x bound | y bound). It returns ZeroDenominator when no
// molecule has y bound.
func (t *BoundSitesTable) ProbGiven(x, y int) float64 {
	return ratio(t.CountTwoSitesBound(x, y), t.CountSingleSiteBound(y))
}

func ratio(num, den int) float64 {
	if den <= 0 {
		return ZeroDenominator
	}
	return float64(num) / float64(den)
}
