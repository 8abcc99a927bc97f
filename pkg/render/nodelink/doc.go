// Package nodelink renders analyzed dependency graphs as node-link diagrams.
//
// [ToDOT] turns a [depgraph.Result] into Graphviz DOT source. Only reachable
// packages and the edges between them are drawn; the root is bold, and edges
// recognized as cycle back-edges are red. [RenderSVG] and [RenderPNG] lay the
// DOT out with the embedded Graphviz of goccy/go-graphviz, so no system
// Graphviz installation is needed.
//
//	dot := nodelink.ToDOT(res, nodelink.Options{EdgeSpecs: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [depgraph.Result]: github.com/matzehuels/deptree/pkg/depgraph.Result
package nodelink
