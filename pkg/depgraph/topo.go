package depgraph

import (
	"errors"
	"fmt"
)

var (
	// ErrCycle is returned by [Result.InstallOrder] when the build detected a
	// cycle. The install order is undefined and no partial order is returned.
	ErrCycle = errors.New("install order undefined due to cycle")

	// ErrIncompleteOrder is returned by [TopoSort] when Kahn's reduction ends
	// before every node was emitted, meaning a cycle the traversal did not flag.
	ErrIncompleteOrder = errors.New("install order incomplete: unresolved cycle")
)

// TopoSort computes an install order over nodes using Kahn's algorithm.
// Only edges between members of nodes are considered; edges leaving the set
// are ignored. Every dependency appears before the packages that declare it.
//
// A node's in-degree is the number of its declared dependencies inside the
// set. Nodes are emitted once their count reaches zero, in FIFO order of when
// that happened, with the initial queue following the order of nodes. The
// result is therefore deterministic for a deterministic graph.
//
// If the reduction stalls, TopoSort returns [ErrIncompleteOrder] along with
// no order.
func TopoSort(g *Graph, nodes []string) ([]string, error) {
	members := make(map[string]bool, len(nodes))
	var universe []string
	for _, n := range nodes {
		if !members[n] {
			members[n] = true
			universe = append(universe, n)
		}
	}

	indegree := make(map[string]int, len(universe))
	dependents := make(map[string][]string, len(universe))
	for _, n := range universe {
		for _, d := range g.Deps(n) {
			if !members[d] {
				continue
			}
			indegree[n]++
			dependents[d] = append(dependents[d], n)
		}
	}

	queue := make([]string, 0, len(universe))
	for _, n := range universe {
		if indegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	order := make([]string, 0, len(universe))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for _, p := range dependents[n] {
			indegree[p]--
			if indegree[p] == 0 {
				queue = append(queue, p)
			}
		}
	}

	if len(order) < len(universe) {
		return nil, fmt.Errorf("%w: %d of %d nodes ordered", ErrIncompleteOrder, len(order), len(universe))
	}
	return order, nil
}
