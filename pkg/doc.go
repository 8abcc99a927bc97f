// Package pkg provides the libraries behind deptree, an npm dependency graph
// analyzer.
//
// # Overview
//
// deptree walks a package's transitive dependencies, either resolved live
// from an npm registry or read from an adjacency-list file, and derives:
//
//   - the reachable set under a depth bound, with cycle edges
//   - an install order (dependencies first, undefined on cycles)
//   - a heuristic load order (reverse post-order from the root)
//   - an indented tree rendering with cycle markers
//   - a diff of the load order against "npm ls"
//
// # Architecture
//
//	npm registry / adjacency file
//	         ↓
//	    [resolve] (version fallback: exact, cleaned, latest)
//	         ↓
//	    [depgraph] (three-color DFS, Kahn sort, load order, tree, compare)
//	         ↓
//	    [pipeline] (one analysis run, npm comparison, output files)
//	         ↓
//	    console / JSON / DOT / SVG / PNG
//
// # Quick Start
//
// Analyze a static graph:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/deptree/pkg/depgraph"
//	    deptreeio "github.com/matzehuels/deptree/pkg/io"
//	)
//
//	g, _ := deptreeio.ImportAdjacency("deps.txt")
//	res, _ := depgraph.NewStaticBuilder(g).Build(context.Background(), "app", "", 10)
//	order, err := res.InstallOrder() // depgraph.ErrCycle if res.HasCycle
//
// Resolve from the registry:
//
//	client := npm.NewClient(cache.NewNullCache(), 24*time.Hour)
//	resolver := resolve.RootResolver{Resolver: resolve.NewResolver(client, nil), Root: "express"}
//	builder := depgraph.NewResolvedBuilder(resolver, nil)
//	res, _ := builder.Build(ctx, "express", "latest", 3)
//	for line := range depgraph.RenderTree("express", res.Graph, 3) {
//	    fmt.Println(line)
//	}
//
// # Main Packages
//
// [depgraph] - Graph store, cycle-aware builder, orders, tree renderer and
// order comparator. No I/O.
//
// [resolve] - Maps a (name, spec) edge to the dependencies of one concrete
// version using a [resolve.ManifestSource].
//
// [integrations] - Cached registry HTTP client; [integrations/npm] adds the
// npm manifest source and the "npm ls" reference order.
//
// [io] - Adjacency-list and JSON graph loaders, JSON report export.
//
// [render/nodelink] - Graphviz DOT export and SVG/PNG rendering.
//
// [cache] - Byte cache with file, Redis and null backends.
//
// [pipeline] - The analysis run shared by the CLI and the HTTP server.
//
// [observability] - Hooks for metrics; no-ops until a host registers them.
//
// [errors] - Coded errors and input validation.
//
// # Testing
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/depgraph/...  # Specific package
//	go test -run Example        # Examples only
//
// [depgraph]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/depgraph
// [resolve]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/resolve
// [integrations]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/integrations
// [integrations/npm]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/integrations/npm
// [io]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/io
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/pipeline
// [observability]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/errors
package pkg
