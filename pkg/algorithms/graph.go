package algorithms

import (
	"sort"

	"github.com/dd0wney/cluso-bindstat/pkg/binding"
)

// BindingGraph is the per-timestep adjacency map: molecule id -> edges whose
// first endpoint is that id. Reverse edges are never synthesized; if the
// relation is symmetric the edge list must already carry both directions.
type BindingGraph struct {
	adj      map[int][]binding.Edge
	numEdges int
}

// Build creates a BindingGraph from one timestep's edges.
func Build(edges []binding.Edge) *BindingGraph {
	g := &BindingGraph{
		adj:      make(map[int][]binding.Edge, len(edges)),
		numEdges: len(edges),
	}
	for _, e := range edges {
		g.adj[e.Mol1] = append(g.adj[e.Mol1], e)
	}
	return g
}

// Keys returns the molecule ids that have outgoing edges, ascending.
func (g *BindingGraph) Keys() []int {
	keys := make([]int, 0, len(g.adj))
	for id := range g.adj {
		keys = append(keys, id)
	}
	sort.Ints(keys)
	return keys
}

// Edges returns the edges whose first endpoint is id.
func (g *BindingGraph) Edges(id int) []binding.Edge {
	return g.adj[id]
}

// HasKey reports whether id has outgoing edges.
func (g *BindingGraph) HasKey(id int) bool {
	_, ok := g.adj[id]
	return ok
}

// NumKeys returns the number of adjacency keys.
func (g *BindingGraph) NumKeys() int {
	return len(g.adj)
}

// NumEdges returns the number of edges the graph was built from.
func (g *BindingGraph) NumEdges() int {
	return g.numEdges
}
