package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/deptree/pkg/depgraph"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestComparisonTable(t *testing.T) {
	out := comparisonTable([]depgraph.PositionDiff{
		{Name: "lodash", OurIndex: 1, ReferenceIndex: 3},
		{Name: "debug", OurIndex: 4, ReferenceIndex: 2},
	})
	for _, want := range []string{"Package", "deptree", "npm", "lodash", "+2", "debug", "-2"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestPrintComparison(t *testing.T) {
	buf := captureStdout(t)
	printComparison(depgraph.Compare([]string{"a", "b", "c"}, []string{"a", "b", "d"}), []string{"a", "b", "d"})

	out := buf.String()
	for _, want := range []string{"npm listed 3 packages", "only in deptree: c", "only in npm: d", "no position differences"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintNumbered(t *testing.T) {
	buf := captureStdout(t)
	printNumbered([]string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[0] != "   1. a" || lines[9] != "  10. j" {
		t.Errorf("numbering not right-aligned: %q, %q", lines[0], lines[9])
	}
}
