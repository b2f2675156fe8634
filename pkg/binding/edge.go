package binding

import (
	"strconv"
	"strings"
)

// Edge is one occupied bond between site Site1 of molecule Mol1 and site
// Site2 of molecule Mol2 at a single timestep.
type Edge struct {
	Mol1  int
	Site1 int
	Mol2  int
	Site2 int
}

// Reverse returns the same bond seen from the other endpoint.
func (e Edge) Reverse() Edge {
	return Edge{Mol1: e.Mol2, Site1: e.Site2, Mol2: e.Mol1, Site2: e.Site1}
}

// String renders the edge in flat tuple form.
func (e Edge) String() string {
	var b strings.Builder
	e.appendTo(&b)
	return b.String()
}

func (e Edge) appendTo(b *strings.Builder) {
	b.WriteByte('(')
	b.WriteString(strconv.Itoa(e.Mol1))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(e.Site1))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(e.Mol2))
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(e.Site2))
	b.WriteByte(')')
}

// Vertices returns the distinct molecule ids of edges in first-seen order.
func Vertices(edges []Edge) []int {
	seen := make(map[int]struct{}, len(edges)*2)
	out := make([]int, 0, len(edges)*2)
	add := func(id int) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, e := range edges {
		add(e.Mol1)
		add(e.Mol2)
	}
	return out
}

// Symmetrize returns edges plus the reverse of every edge whose reverse is
// not already present. The input order is kept and missing reverses are
// appended after it.
func Symmetrize(edges []Edge) []Edge {
	present := make(map[Edge]struct{}, len(edges))
	for _, e := range edges {
		present[e] = struct{}{}
	}
	out := make([]Edge, len(edges), len(edges)*2)
	copy(out, edges)
	for _, e := range edges {
		r := e.Reverse()
		if _, ok := present[r]; ok {
			continue
		}
		present[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// RenderFlat renders edges as one flat-form line: "(m1,s1,m2,s2),...;".
func RenderFlat(edges []Edge) string {
	var b strings.Builder
	for i, e := range edges {
		if i > 0 {
			b.WriteByte(',')
		}
		e.appendTo(&b)
	}
	b.WriteByte(';')
	return b.String()
}
