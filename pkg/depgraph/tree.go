package depgraph

import "iter"

// CycleMarker is appended to a tree line whose name is already on the
// current path.
const CycleMarker = " [cycle]"

const (
	branchMid  = "├── "
	branchLast = "└── "
	indentMid  = "│   "
	indentLast = "    "
)

// RenderTree lazily yields the lines of an indented, box-drawn tree rooted at
// root. The root line carries no connector; each child line is prefixed with
// "├── " or "└── " and the continuation columns of its ancestors.
//
// Cycle detection uses only the names on the current path: a revisit of an
// ancestor is suffixed with [CycleMarker] and not expanded. Shared
// dependencies are printed and re-expanded on every occurrence, so output can
// grow exponentially with depth on diamond-heavy graphs. maxDepth bounds the
// depth of printed nodes (root = 0); a negative value means no bound. The
// sequence is finite for any graph.
func RenderTree(root string, g *Graph, maxDepth int) iter.Seq[string] {
	return func(yield func(string) bool) {
		type item struct {
			name   string
			prefix string // continuation columns for this node's children
			depth  int
			next   int
		}

		if !yield(root) {
			return
		}

		expandable := func(depth int) bool { return maxDepth < 0 || depth < maxDepth }
		if !expandable(0) {
			return
		}

		onPath := map[string]int{root: 1}
		stack := []*item{{name: root}}

		for len(stack) > 0 {
			top := stack[len(stack)-1]
			deps := g.Deps(top.name)
			if top.next >= len(deps) {
				onPath[top.name]--
				stack = stack[:len(stack)-1]
				continue
			}

			child := deps[top.next]
			top.next++
			last := top.next == len(deps)

			connector, indent := branchMid, indentMid
			if last {
				connector, indent = branchLast, indentLast
			}
			line := top.prefix + connector + child

			if onPath[child] > 0 {
				if !yield(line + CycleMarker) {
					return
				}
				continue
			}
			if !yield(line) {
				return
			}

			depth := top.depth + 1
			if expandable(depth) && len(g.Deps(child)) > 0 {
				onPath[child]++
				stack = append(stack, &item{name: child, prefix: top.prefix + indent, depth: depth})
			}
		}
	}
}
