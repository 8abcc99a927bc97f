package depgraph

import (
	"slices"
	"strings"
	"testing"
)

func TestRenderTree_Cycle(t *testing.T) {
	g := graphOf(map[string][]string{"A": {"B"}, "B": {"C"}, "C": {"A"}}, "A", "B", "C")

	got := slices.Collect(RenderTree("A", g, -1))
	want := []string{
		"A",
		"└── B",
		"    └── C",
		"        └── A" + CycleMarker,
	}
	if !slices.Equal(got, want) {
		t.Errorf("RenderTree() =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestRenderTree_Connectors(t *testing.T) {
	g := graphOf(map[string][]string{
		"A": {"B", "C"}, "B": {"D", "E"}, "C": {"F"},
	}, "A", "B", "C")

	got := slices.Collect(RenderTree("A", g, -1))
	want := []string{
		"A",
		"├── B",
		"│   ├── D",
		"│   └── E",
		"└── C",
		"    └── F",
	}
	if !slices.Equal(got, want) {
		t.Errorf("RenderTree() =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestRenderTree_SharedDependencyRepeated(t *testing.T) {
	g := graphOf(map[string][]string{
		"A": {"B", "C"}, "B": {"D"}, "C": {"D"}, "D": {"E"},
	}, "A", "B", "C", "D")

	lines := slices.Collect(RenderTree("A", g, -1))
	count := 0
	for _, l := range lines {
		if strings.HasSuffix(l, "E") {
			count++
		}
		if strings.Contains(l, CycleMarker) {
			t.Errorf("diamond line marked as cycle: %q", l)
		}
	}
	if count != 2 {
		t.Errorf("shared subtree expanded %d times, want 2:\n%s", count, strings.Join(lines, "\n"))
	}
}

func TestRenderTree_MaxDepth(t *testing.T) {
	g := graphOf(map[string][]string{"A": {"B"}, "B": {"C"}, "C": {"D"}}, "A", "B", "C")

	tests := []struct {
		maxDepth int
		want     int
	}{
		{0, 1},
		{1, 2},
		{2, 3},
		{-1, 4},
	}
	for _, tt := range tests {
		got := slices.Collect(RenderTree("A", g, tt.maxDepth))
		if len(got) != tt.want {
			t.Errorf("maxDepth=%d: %d lines, want %d: %v", tt.maxDepth, len(got), tt.want, got)
		}
	}
}

func TestRenderTree_StopsEarly(t *testing.T) {
	g := graphOf(map[string][]string{"A": {"B", "C", "D"}}, "A")
	var got []string
	for line := range RenderTree("A", g, -1) {
		got = append(got, line)
		if len(got) == 2 {
			break
		}
	}
	if len(got) != 2 {
		t.Errorf("got %d lines, want 2", len(got))
	}
}

func TestRenderTree_UnknownRoot(t *testing.T) {
	got := slices.Collect(RenderTree("ghost", NewGraph(), -1))
	if want := []string{"ghost"}; !slices.Equal(got, want) {
		t.Errorf("RenderTree() = %v, want %v", got, want)
	}
}
