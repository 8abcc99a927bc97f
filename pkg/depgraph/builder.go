package depgraph

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deptree/pkg/resolve"
)

var (
	// ErrRootNotFound is returned by a static [Builder] when the root has no
	// entry in the pre-loaded graph. The run produces no graph.
	ErrRootNotFound = errors.New("root package not found in graph")

	// ErrInvalidDepth is returned by [Builder.Build] for a negative depth bound.
	ErrInvalidDepth = errors.New("max depth must not be negative")
)

// DependencyResolver answers "what does this package declare at this version".
// Implementations never fail: an unresolvable package yields no dependencies.
// [resolve.Resolver] is the registry-backed implementation.
type DependencyResolver interface {
	Resolve(ctx context.Context, name, spec string) resolve.Dependencies
}

// color is the DFS state of a node during one build.
type color uint8

const (
	unvisited color = iota
	active          // on the current path
	finished        // fully expanded
)

// Result is the outcome of one [Builder.Build] call. It owns no traversal
// state; all fields are read-only snapshots.
type Result struct {
	Root      string
	Graph     *Graph   // adjacency list the traversal read (or populated)
	Reachable []string // discovered names in discovery order, depth <= MaxDepth
	MaxDepth  int

	// HasCycle is set when a node on the current path was reached again.
	HasCycle bool
	// CycleEdges holds each recognized back-edge once, in detection order.
	CycleEdges []Edge
	// Specs holds the version spec of each edge seen in resolved mode.
	Specs map[Edge]string

	reachable map[string]bool
}

// IsReachable reports whether name was discovered within the depth bound.
func (r *Result) IsReachable(name string) bool { return r.reachable[name] }

// IsCycleEdge reports whether (from, to) was recognized as a back-edge.
func (r *Result) IsCycleEdge(from, to string) bool {
	for _, e := range r.CycleEdges {
		if e.From == from && e.To == to {
			return true
		}
	}
	return false
}

// InstallOrder returns the topological install order over the reachable set.
// It fails immediately with [ErrCycle] when the build detected a cycle; no
// partial order is returned.
func (r *Result) InstallOrder() ([]string, error) {
	if r.HasCycle {
		return nil, ErrCycle
	}
	return TopoSort(r.Graph, r.Reachable)
}

// LoadOrder returns the heuristic root-first load order. See [LoadOrder].
func (r *Result) LoadOrder() []string {
	return LoadOrder(r.Root, r.Graph)
}

// Builder performs cycle-aware, depth-bounded traversals and owns the graph
// it reads or populates. Traversal state is reset at the start of every
// [Builder.Build] call, so a Builder may be reused for several roots, but it
// must not be shared between goroutines.
type Builder struct {
	graph    *Graph
	resolver DependencyResolver
	logger   *log.Logger

	// per-build traversal state
	state map[string]color
	res   *Result
}

// NewStaticBuilder creates a Builder that reads dependency lists from g
// without making any resolution calls.
func NewStaticBuilder(g *Graph) *Builder {
	return &Builder{graph: g, logger: log.Default()}
}

// NewResolvedBuilder creates a Builder that asks r for each node's
// dependencies, populating an initially empty graph. Each node is resolved at
// most once per build, even when reachable through several paths.
func NewResolvedBuilder(r DependencyResolver, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{graph: NewGraph(), resolver: r, logger: logger}
}

// Graph returns the builder's adjacency list.
func (b *Builder) Graph() *Graph { return b.graph }

// frame is one entry on the explicit DFS work stack.
type frame struct {
	name  string
	depth int
	deps  []string
	specs []string // parallel to deps in resolved mode
	next  int
}

// Build traverses from root, visiting nodes whose depth (root = 0) is at most
// maxDepth. version is the root's version spec and is ignored in static mode.
//
// A node at exactly maxDepth is entered and its dependency list read, but its
// children are neither expanded nor marked reachable. Back-edges to an active
// node are recorded even at the depth boundary.
func (b *Builder) Build(ctx context.Context, root, version string, maxDepth int) (*Result, error) {
	if maxDepth < 0 {
		return nil, ErrInvalidDepth
	}
	if b.resolver == nil && !b.graph.Has(root) {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}

	b.state = make(map[string]color)
	b.res = &Result{
		Root:      root,
		Graph:     b.graph,
		MaxDepth:  maxDepth,
		Specs:     make(map[Edge]string),
		reachable: make(map[string]bool),
	}
	defer func() { b.state = nil }()

	stack := []*frame{b.enter(ctx, root, version, 0)}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		top := stack[len(stack)-1]
		if top.next >= len(top.deps) {
			b.state[top.name] = finished
			stack = stack[:len(stack)-1]
			continue
		}

		i := top.next
		top.next++
		child := top.deps[i]

		switch b.state[child] {
		case active:
			b.markCycle(top.name, child)
		case finished:
			// shared dependency, already expanded
		case unvisited:
			if top.depth+1 > maxDepth {
				continue
			}
			spec := ""
			if top.specs != nil {
				spec = top.specs[i]
			}
			stack = append(stack, b.enter(ctx, child, spec, top.depth+1))
		}
	}

	res := b.res
	b.res = nil
	b.logger.Debug("built dependency graph",
		"root", root,
		"reachable", len(res.Reachable),
		"cycle", res.HasCycle)
	return res, nil
}

// enter marks name active and reachable and loads its dependency list.
func (b *Builder) enter(ctx context.Context, name, spec string, depth int) *frame {
	b.state[name] = active
	if !b.res.reachable[name] {
		b.res.reachable[name] = true
		b.res.Reachable = append(b.res.Reachable, name)
	}

	f := &frame{name: name, depth: depth}
	if b.resolver == nil {
		f.deps = b.graph.Deps(name)
		return f
	}

	deps := b.resolver.Resolve(ctx, name, spec)
	f.deps = deps.Names()
	f.specs = deps.Specs()
	b.graph.Set(name, f.deps)
	for _, d := range deps {
		e := Edge{From: name, To: d.Name}
		if _, ok := b.res.Specs[e]; !ok {
			b.res.Specs[e] = d.Spec
		}
	}
	return f
}

func (b *Builder) markCycle(parent, child string) {
	b.res.HasCycle = true
	if !b.res.IsCycleEdge(parent, child) {
		b.res.CycleEdges = append(b.res.CycleEdges, Edge{From: parent, To: child})
	}
	b.logger.Debug("cycle detected", "from", parent, "to", child)
}
