package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/deptree/pkg/depgraph"
)

// Options configures DOT generation.
type Options struct {
	// EdgeSpecs labels edges with the version range the parent asked for
	// (registry mode only).
	EdgeSpecs bool
}

const cycleColor = "#d62728"

// ToDOT converts the reachable part of res to Graphviz DOT source.
// Nodes appear in discovery order, edges in declaration order.
func ToDOT(res *depgraph.Result, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph deps {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [color=\"#555555\"];\n\n")

	for _, n := range res.Reachable {
		if n == res.Root {
			fmt.Fprintf(&buf, "  %q [penwidth=2, fillcolor=\"#eef3fb\"];\n", n)
			continue
		}
		fmt.Fprintf(&buf, "  %q;\n", n)
	}

	buf.WriteString("\n")
	for _, from := range res.Reachable {
		for _, to := range res.Graph.Deps(from) {
			if !res.IsReachable(to) {
				continue
			}
			var attrs []string
			if res.IsCycleEdge(from, to) {
				attrs = append(attrs, "color=\""+cycleColor+"\"", "penwidth=2", "style=dashed")
			}
			if opts.EdgeSpecs {
				if spec := res.Specs[depgraph.Edge{From: from, To: to}]; spec != "" {
					attrs = append(attrs, fmt.Sprintf("label=%q", spec), "fontsize=10")
				}
			}
			if len(attrs) == 0 {
				fmt.Fprintf(&buf, "  %q -> %q;\n", from, to)
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", from, to, strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG lays out dot and returns SVG bytes with a normalized viewBox.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG lays out dot and returns PNG bytes.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the image scales from a
// zero-origin viewBox instead of Graphviz's pt-sized canvas.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
