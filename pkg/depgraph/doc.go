// Package depgraph is the graph engine behind deptree.
//
// # Overview
//
// A [Graph] is an adjacency list keyed by package name. Each node maps to the
// ordered list of dependency names it declares; versions live on edges and are
// never part of node identity, so a package appears once no matter how many
// version specs referenced it.
//
// A [Builder] traverses the graph from a root under a depth bound and produces
// a [Result]: the reachable set, the cycle flag, and the set of back-edges.
// Builders run in one of two modes:
//
//   - Static: dependency lists come from a pre-loaded [Graph] (see
//     [NewStaticBuilder]). A node without an entry has no dependencies.
//   - Resolved: dependency lists are obtained on demand from a
//     [DependencyResolver], once per node (see [NewResolvedBuilder]).
//
// # Cycle Detection
//
// Traversal is a depth-first search with three colors:
//
//   - unvisited: not seen yet
//   - active: on the current path
//   - finished: fully expanded
//
// Reaching an active node is a cycle; the (parent, node) edge is recorded and
// the branch is not descended. Reaching a finished node is ordinary sharing
// (a diamond) and costs nothing. The traversal uses an explicit work stack, so
// deep graphs do not grow the goroutine stack.
//
// # Orderings
//
//   - [Result.InstallOrder] / [TopoSort]: Kahn's algorithm over the reachable
//     set. Dependencies come before their dependents. Fails with [ErrCycle]
//     when the build saw a cycle.
//   - [LoadOrder]: reverse post-order from the root. Root-first and always
//     defined, but heuristic: it is not a safe install order for arbitrary
//     graphs.
//
// # Rendering and Comparison
//
// [RenderTree] lazily yields a box-drawn tree. Revisits of a name already on
// the current path get [CycleMarker]; shared dependencies are re-expanded on
// every occurrence, so bound the depth for diamond-heavy graphs.
//
// [Compare] diffs two orderings into names unique to each side and per-name
// index pairs.
package depgraph
