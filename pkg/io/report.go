package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/deptree/pkg/depgraph"
)

// Report is the JSON form of one analysis.
type Report struct {
	Root     string `json:"root"`
	Version  string `json:"version,omitempty"`
	Mode     string `json:"mode"`
	MaxDepth int    `json:"max_depth"`

	// Direct holds the root's declared dependencies as name -> spec pairs;
	// specs are empty in static mode.
	Direct []DirectDependency `json:"direct"`

	Reachable  []string        `json:"reachable"`
	Edges      []depgraph.Edge `json:"edges"`
	HasCycle   bool            `json:"has_cycle"`
	CycleEdges []depgraph.Edge `json:"cycle_edges"`

	// InstallOrder is omitted when a cycle makes it undefined.
	InstallOrder []string `json:"install_order,omitempty"`
	LoadOrder    []string `json:"load_order,omitempty"`

	Comparison *ComparisonReport `json:"comparison,omitempty"`
}

// DirectDependency is one of the root's declared dependencies.
type DirectDependency struct {
	Name string `json:"name"`
	Spec string `json:"spec,omitempty"`
}

// ComparisonReport is the JSON form of a comparison with npm's ordering.
type ComparisonReport struct {
	Reference []string `json:"reference"`
	depgraph.Comparison
	SameSet bool `json:"same_set"`
}

// NewComparisonReport bundles a reference ordering with its comparison.
func NewComparisonReport(reference []string, c depgraph.Comparison) *ComparisonReport {
	return &ComparisonReport{Reference: reference, Comparison: c, SameSet: c.SameSet()}
}

// WriteReport encodes r as indented JSON.
func WriteReport(r *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// ExportReport writes r to the file at path.
func ExportReport(r *Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteReport(r, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
