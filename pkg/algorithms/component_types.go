package algorithms

// Component is the set of molecule ids of one aggregate, in BFS visit order.
type Component struct {
	ID      int
	Members []int
}

// Size returns the number of molecules in the component.
func (c Component) Size() int {
	return len(c.Members)
}

// ComponentResult contains the connected components of one timestep.
type ComponentResult struct {
	Components []Component
	Membership map[int]int // Molecule ID -> Component ID
}
