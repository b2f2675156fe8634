package algorithms

// ConnectedComponents partitions the graph into aggregates with an
// iterative BFS. Keys are taken in ascending order, so component ids are
// deterministic. Molecules reached only as a second endpoint join the
// component that reaches them.
//
// Time: O(V+E).
func ConnectedComponents(g *BindingGraph) *ComponentResult {
	keys := g.Keys()

	visited := make(map[int]bool, len(keys))
	membership := make(map[int]int, len(keys))
	components := make([]Component, 0)
	componentID := 0

	// BFS to find each component
	for _, start := range keys {
		if visited[start] {
			continue
		}

		// New component found
		component := Component{ID: componentID}

		queue := []int{start}
		visited[start] = true

		for qi := 0; qi < len(queue); qi++ {
			id := queue[qi]
			component.Members = append(component.Members, id)
			membership[id] = componentID

			for _, edge := range g.Edges(id) {
				if !visited[edge.Mol2] {
					visited[edge.Mol2] = true
					queue = append(queue, edge.Mol2)
				}
			}
		}

		components = append(components, component)
		componentID++
	}

	return &ComponentResult{
		Components: components,
		Membership: membership,
	}
}
