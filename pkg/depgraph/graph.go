package depgraph

import "slices"

// Graph is a mutable adjacency list mapping package names to the ordered
// names of their declared dependencies. Duplicate entries within one list are
// kept as declared.
//
// The zero value is not usable - use [NewGraph].
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	deps  map[string][]string
	order []string // node names in first-insertion order
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{deps: make(map[string][]string)}
}

// Set replaces the dependency list of name, adding name if it is new.
// A replaced node keeps its original insertion position.
func (g *Graph) Set(name string, deps []string) {
	if _, ok := g.deps[name]; !ok {
		g.order = append(g.order, name)
	}
	g.deps[name] = slices.Clone(deps)
}

// Deps returns the declared dependencies of name, or nil if name has no entry.
// The returned slice must not be modified.
func (g *Graph) Deps(name string) []string {
	return g.deps[name]
}

// Has reports whether name has an entry, even an empty one.
func (g *Graph) Has(name string) bool {
	_, ok := g.deps[name]
	return ok
}

// Names returns all node names with an entry, in insertion order.
func (g *Graph) Names() []string {
	return slices.Clone(g.order)
}

// Len returns the number of nodes with an entry.
func (g *Graph) Len() int { return len(g.order) }

// EdgeCount returns the total number of declared dependency entries.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, deps := range g.deps {
		n += len(deps)
	}
	return n
}

// Edges returns every declared edge in node insertion order.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.EdgeCount())
	for _, from := range g.order {
		for _, to := range g.deps[from] {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	return edges
}

// Edge is a directed dependency from From to To.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}
