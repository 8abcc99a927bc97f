package io

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/matzehuels/deptree/pkg/depgraph"
)

// ReadAdjacency parses the adjacency text format from r.
// ReadAdjacency does not close r.
func ReadAdjacency(r io.Reader) (*depgraph.Graph, error) {
	g := depgraph.NewGraph()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		name, rest, ok := strings.Cut(line, ":")
		if line == "" || !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		g.Set(name, splitDeps(rest))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read adjacency: %w", err)
	}
	return g, nil
}

func splitDeps(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// ImportAdjacency reads the adjacency file at path.
func ImportAdjacency(path string) (*depgraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadAdjacency(f)
}

// ImportGraph reads a static graph, using the JSON node/edge format for
// .json files and the adjacency format otherwise.
func ImportGraph(path string) (*depgraph.Graph, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ImportJSON(path)
	}
	return ImportAdjacency(path)
}
