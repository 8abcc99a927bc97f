package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/deptree/pkg/depgraph"
)

type graphDoc struct {
	Nodes []nodeDoc       `json:"nodes"`
	Edges []depgraph.Edge `json:"edges"`
}

type nodeDoc struct {
	ID string `json:"id"`
}

// ReadJSON decodes a node/edge JSON graph from r. Every node gets an entry,
// even without outgoing edges. Edges keep document order per source node.
// An edge from an undeclared node adds that node. Empty node IDs are an
// error. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*depgraph.Graph, error) {
	var doc graphDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	var order []string
	deps := make(map[string][]string)
	declare := func(id string) {
		if _, ok := deps[id]; !ok {
			deps[id] = nil
			order = append(order, id)
		}
	}
	for i, n := range doc.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node %d: empty id", i)
		}
		declare(n.ID)
	}
	for _, e := range doc.Edges {
		if e.From == "" || e.To == "" {
			return nil, fmt.Errorf("edge %q->%q: empty endpoint", e.From, e.To)
		}
		declare(e.From)
		deps[e.From] = append(deps[e.From], e.To)
	}

	g := depgraph.NewGraph()
	for _, id := range order {
		g.Set(id, deps[id])
	}
	return g, nil
}

// ImportJSON reads a JSON graph file at path.
func ImportJSON(path string) (*depgraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// WriteJSON encodes g in the node/edge format. Nodes referenced only as
// dependencies are listed after the declared ones so the document is
// self-contained.
func WriteJSON(g *depgraph.Graph, w io.Writer) error {
	doc := graphDoc{Nodes: []nodeDoc{}, Edges: g.Edges()}
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			doc.Nodes = append(doc.Nodes, nodeDoc{ID: id})
		}
	}
	for _, n := range g.Names() {
		add(n)
	}
	for _, e := range doc.Edges {
		add(e.To)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
