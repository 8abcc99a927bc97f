package depgraph

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func build(t *testing.T, g *Graph, root string, maxDepth int) *Result {
	t.Helper()
	res, err := NewStaticBuilder(g).Build(context.Background(), root, "", maxDepth)
	if err != nil {
		t.Fatalf("Build(%s) error: %v", root, err)
	}
	return res
}

// assertDependenciesFirst checks that for every edge p -> d inside the
// reachable set, d is emitted before p.
func assertDependenciesFirst(t *testing.T, res *Result, order []string) {
	t.Helper()
	index := make(map[string]int, len(order))
	for i, n := range order {
		if _, dup := index[n]; dup {
			t.Fatalf("%s emitted twice in %v", n, order)
		}
		index[n] = i
	}
	for _, n := range res.Reachable {
		if _, ok := index[n]; !ok {
			t.Fatalf("reachable node %s missing from %v", n, order)
		}
	}
	if len(order) != len(res.Reachable) {
		t.Fatalf("order has %d nodes, reachable set has %d", len(order), len(res.Reachable))
	}
	for _, p := range res.Reachable {
		for _, d := range res.Graph.Deps(p) {
			if !res.IsReachable(d) {
				continue
			}
			if index[p] <= index[d] {
				t.Errorf("%s (at %d) emitted before its dependency %s (at %d)", p, index[p], d, index[d])
			}
		}
	}
}

func TestInstallOrder_Scenario(t *testing.T) {
	g := graphOf(map[string][]string{
		"A": {"B", "C"}, "B": {"C"}, "C": nil,
	}, "A", "B", "C")

	order, err := build(t, g, "A", 10).InstallOrder()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"C", "B", "A"}; !slices.Equal(order, want) {
		t.Errorf("InstallOrder() = %v, want %v", order, want)
	}
}

func TestInstallOrder_Property(t *testing.T) {
	tests := []struct {
		name  string
		adj   map[string][]string
		order []string
	}{
		{
			name:  "diamond",
			adj:   map[string][]string{"A": {"B", "C"}, "B": {"D"}, "C": {"D"}},
			order: []string{"A", "B", "C"},
		},
		{
			name:  "wide",
			adj:   map[string][]string{"r": {"a", "b", "c", "d"}, "a": {"d"}, "b": {"a", "c"}},
			order: []string{"r", "a", "b"},
		},
		{
			name:  "duplicates in list",
			adj:   map[string][]string{"A": {"B", "B", "C"}, "B": {"C"}},
			order: []string{"A", "B"},
		},
		{
			name:  "edges to unrelated nodes",
			adj:   map[string][]string{"A": {"B"}, "X": {"A"}},
			order: []string{"A", "X"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := build(t, graphOf(tt.adj, tt.order...), tt.order[0], 10)
			order, err := res.InstallOrder()
			if err != nil {
				t.Fatal(err)
			}
			assertDependenciesFirst(t, res, order)
		})
	}
}

func TestInstallOrder_DepthBoundIgnoresOutsideEdges(t *testing.T) {
	g := graphOf(map[string][]string{"A": {"B"}, "B": {"C"}}, "A", "B")
	order, err := build(t, g, "A", 1).InstallOrder()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"B", "A"}; !slices.Equal(order, want) {
		t.Errorf("InstallOrder() = %v, want %v", order, want)
	}
}

func TestInstallOrder_CycleFails(t *testing.T) {
	g := graphOf(map[string][]string{"A": {"B"}, "B": {"C"}, "C": {"A"}}, "A", "B", "C")
	order, err := build(t, g, "A", 10).InstallOrder()
	if !errors.Is(err, ErrCycle) {
		t.Errorf("error = %v, want ErrCycle", err)
	}
	if order != nil {
		t.Errorf("order = %v, want nil", order)
	}
}

func TestTopoSort_IncompleteIsDistinct(t *testing.T) {
	g := graphOf(map[string][]string{"A": {"B"}, "B": {"A"}, "C": nil}, "A", "B", "C")
	_, err := TopoSort(g, []string{"A", "B", "C"})
	if !errors.Is(err, ErrIncompleteOrder) {
		t.Fatalf("error = %v, want ErrIncompleteOrder", err)
	}
	if errors.Is(err, ErrCycle) {
		t.Error("incomplete order must not be reported as ErrCycle")
	}
}

func TestTopoSort_FIFOTieBreak(t *testing.T) {
	// z, y, x are all leaves; they are emitted in the order given, not sorted.
	g := graphOf(map[string][]string{"r": {"z", "y", "x"}}, "r")
	order, err := TopoSort(g, []string{"r", "z", "y", "x"})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"z", "y", "x", "r"}; !slices.Equal(order, want) {
		t.Errorf("TopoSort() = %v, want %v", order, want)
	}
}

func TestLoadOrder(t *testing.T) {
	tests := []struct {
		name  string
		adj   map[string][]string
		keys  []string
		root  string
		want  []string
	}{
		{
			name: "scenario",
			adj:  map[string][]string{"A": {"B", "C"}, "B": {"C"}},
			keys: []string{"A", "B"},
			root: "A",
			want: []string{"A", "B", "C"},
		},
		{
			name: "children reversed",
			adj:  map[string][]string{"A": {"C", "B"}},
			keys: []string{"A"},
			root: "A",
			want: []string{"A", "B", "C"},
		},
		{
			name: "cycle terminates",
			adj:  map[string][]string{"A": {"B"}, "B": {"C"}, "C": {"A"}},
			keys: []string{"A", "B", "C"},
			root: "A",
			want: []string{"A", "B", "C"},
		},
		{
			name: "unknown root",
			adj:  map[string][]string{},
			root: "solo",
			want: []string{"solo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LoadOrder(tt.root, graphOf(tt.adj, tt.keys...))
			if !slices.Equal(got, tt.want) {
				t.Errorf("LoadOrder() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadOrder_RootFirst(t *testing.T) {
	g := graphOf(map[string][]string{
		"A": {"B", "C"}, "B": {"D"}, "C": {"D"}, "D": {"E"},
	}, "A", "B", "C", "D")
	got := LoadOrder("A", g)
	if len(got) != 5 || got[0] != "A" {
		t.Errorf("LoadOrder() = %v, want 5 nodes starting with A", got)
	}
}
