package depgraph

import "slices"

// LoadOrder derives a root-first ordering by reverse post-order traversal.
//
// Children are fully processed before their parent is appended, guarded by a
// single visited set, and the sequence is reversed at the end. A cyclic graph
// simply has already-visited nodes skipped, so LoadOrder always succeeds.
//
// The result approximates the order in which requiring root first touches
// each dependency. It is heuristic and weaker than [TopoSort]: do not use it
// as an install order for arbitrary graphs.
func LoadOrder(root string, g *Graph) []string {
	type item struct {
		name string
		next int
	}

	visited := map[string]bool{root: true}
	var order []string
	stack := []*item{{name: root}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		deps := g.Deps(top.name)
		if top.next < len(deps) {
			child := deps[top.next]
			top.next++
			if !visited[child] {
				visited[child] = true
				stack = append(stack, &item{name: child})
			}
			continue
		}
		order = append(order, top.name)
		stack = stack[:len(stack)-1]
	}

	slices.Reverse(order)
	return order
}
