package depgraph

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"testing"

	"github.com/matzehuels/deptree/pkg/resolve"
)

func graphOf(adj map[string][]string, order ...string) *Graph {
	g := NewGraph()
	for _, n := range order {
		g.Set(n, adj[n])
	}
	return g
}

func TestBuild_Static(t *testing.T) {
	g := graphOf(map[string][]string{
		"A": {"B", "C"},
		"B": {"C"},
		"C": nil,
	}, "A", "B", "C")

	res, err := NewStaticBuilder(g).Build(context.Background(), "A", "", 10)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if want := []string{"A", "B", "C"}; !slices.Equal(res.Reachable, want) {
		t.Errorf("Reachable = %v, want %v", res.Reachable, want)
	}
	if res.HasCycle {
		t.Error("HasCycle = true, want false")
	}
}

func TestBuild_UnrelatedNodesNotReachable(t *testing.T) {
	g := graphOf(map[string][]string{
		"A": {"B"},
		"B": nil,
		"X": {"Y"},
	}, "A", "B", "X")

	res, err := NewStaticBuilder(g).Build(context.Background(), "A", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if res.IsReachable("X") || res.IsReachable("Y") {
		t.Errorf("unrelated nodes reachable: %v", res.Reachable)
	}
	if g.Len() != 3 {
		t.Errorf("graph Len = %d, want 3", g.Len())
	}
}

func TestBuild_RootNotFound(t *testing.T) {
	g := graphOf(map[string][]string{"A": nil}, "A")
	_, err := NewStaticBuilder(g).Build(context.Background(), "missing", "", 10)
	if !errors.Is(err, ErrRootNotFound) {
		t.Errorf("error = %v, want ErrRootNotFound", err)
	}
}

func TestBuild_NegativeDepth(t *testing.T) {
	g := graphOf(map[string][]string{"A": nil}, "A")
	_, err := NewStaticBuilder(g).Build(context.Background(), "A", "", -1)
	if !errors.Is(err, ErrInvalidDepth) {
		t.Errorf("error = %v, want ErrInvalidDepth", err)
	}
}

func TestBuild_DepthBound(t *testing.T) {
	// chain A -> B -> C -> D -> E
	g := graphOf(map[string][]string{
		"A": {"B"}, "B": {"C"}, "C": {"D"}, "D": {"E"},
	}, "A", "B", "C", "D")

	tests := []struct {
		maxDepth int
		want     []string
	}{
		{0, []string{"A"}},
		{1, []string{"A", "B"}},
		{2, []string{"A", "B", "C"}},
		{4, []string{"A", "B", "C", "D", "E"}},
		{10, []string{"A", "B", "C", "D", "E"}},
	}

	for _, tt := range tests {
		res, err := NewStaticBuilder(g).Build(context.Background(), "A", "", tt.maxDepth)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(res.Reachable, tt.want) {
			t.Errorf("maxDepth=%d: Reachable = %v, want %v", tt.maxDepth, res.Reachable, tt.want)
		}
	}
}

func TestBuild_Cycle(t *testing.T) {
	g := graphOf(map[string][]string{
		"A": {"B"}, "B": {"C"}, "C": {"A"},
	}, "A", "B", "C")

	res, err := NewStaticBuilder(g).Build(context.Background(), "A", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if !res.HasCycle {
		t.Fatal("HasCycle = false, want true")
	}
	if want := []Edge{{From: "C", To: "A"}}; !slices.Equal(res.CycleEdges, want) {
		t.Errorf("CycleEdges = %v, want %v", res.CycleEdges, want)
	}
	if len(res.Reachable) != 3 {
		t.Errorf("Reachable = %v, want 3 nodes", res.Reachable)
	}
}

func TestBuild_SelfLoop(t *testing.T) {
	g := graphOf(map[string][]string{"A": {"A"}}, "A")
	res, err := NewStaticBuilder(g).Build(context.Background(), "A", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if !res.HasCycle || !res.IsCycleEdge("A", "A") {
		t.Errorf("self loop not detected: %+v", res.CycleEdges)
	}
}

func TestBuild_DiamondIsNotCycle(t *testing.T) {
	g := graphOf(map[string][]string{
		"A": {"B", "C"}, "B": {"D"}, "C": {"D"}, "D": nil,
	}, "A", "B", "C", "D")

	res, err := NewStaticBuilder(g).Build(context.Background(), "A", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if res.HasCycle {
		t.Errorf("diamond flagged as cycle: %v", res.CycleEdges)
	}
	if want := []string{"A", "B", "D", "C"}; !slices.Equal(res.Reachable, want) {
		t.Errorf("Reachable = %v, want %v", res.Reachable, want)
	}
}

func TestBuild_CycleThroughSharedAncestor(t *testing.T) {
	// D is shared by B and C; the cycle D -> B is only visible while B is active.
	g := graphOf(map[string][]string{
		"A": {"C", "B"}, "B": {"D"}, "C": {"D"}, "D": {"B"},
	}, "A", "B", "C", "D")

	res, err := NewStaticBuilder(g).Build(context.Background(), "A", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if !res.HasCycle {
		t.Fatal("cycle through shared node not detected")
	}
	if !res.IsCycleEdge("B", "D") && !res.IsCycleEdge("D", "B") {
		t.Errorf("CycleEdges = %v, want an edge between B and D", res.CycleEdges)
	}
}

func TestBuild_CycleAtDepthBoundary(t *testing.T) {
	g := graphOf(map[string][]string{"A": {"B"}, "B": {"A"}}, "A", "B")
	res, err := NewStaticBuilder(g).Build(context.Background(), "A", "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if !res.HasCycle {
		t.Error("back-edge from node at max depth not detected")
	}
}

func TestBuild_StateResetBetweenRuns(t *testing.T) {
	g := graphOf(map[string][]string{
		"A": {"B"}, "B": {"A"}, "X": {"Y"}, "Y": nil,
	}, "A", "B", "X", "Y")
	b := NewStaticBuilder(g)

	first, err := b.Build(context.Background(), "A", "", 10)
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Build(context.Background(), "X", "", 10)
	if err != nil {
		t.Fatal(err)
	}

	if !first.HasCycle {
		t.Error("first build should see the cycle")
	}
	if second.HasCycle || len(second.CycleEdges) != 0 {
		t.Error("cycle state leaked into second build")
	}
	if want := []string{"X", "Y"}; !slices.Equal(second.Reachable, want) {
		t.Errorf("second Reachable = %v, want %v", second.Reachable, want)
	}
}

func TestBuild_DeepChainDoesNotRecurse(t *testing.T) {
	const n = 100000
	g := NewGraph()
	names := make([]string, n)
	for i := range names {
		names[i] = "p" + strconv.Itoa(i)
	}
	for i := 0; i < n-1; i++ {
		g.Set(names[i], []string{names[i+1]})
	}

	res, err := NewStaticBuilder(g).Build(context.Background(), names[0], "", n)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Reachable) != n {
		t.Errorf("Reachable = %d, want %d", len(res.Reachable), n)
	}
}

// fakeResolver serves fixed dependency lists and counts calls per package.
type fakeResolver struct {
	deps  map[string]resolve.Dependencies
	calls map[string]int
	specs map[string][]string
}

func newFakeResolver(deps map[string]resolve.Dependencies) *fakeResolver {
	return &fakeResolver{deps: deps, calls: map[string]int{}, specs: map[string][]string{}}
}

func (f *fakeResolver) Resolve(_ context.Context, name, spec string) resolve.Dependencies {
	f.calls[name]++
	f.specs[name] = append(f.specs[name], spec)
	return f.deps[name]
}

func TestBuild_ResolvedResolvesEachNodeOnce(t *testing.T) {
	r := newFakeResolver(map[string]resolve.Dependencies{
		"app":   {{Name: "left", Spec: "^1.0.0"}, {Name: "right", Spec: "~2.0.0"}},
		"left":  {{Name: "util", Spec: "^3.0.0"}},
		"right": {{Name: "util", Spec: "^3.1.0"}},
	})

	b := NewResolvedBuilder(r, nil)
	res, err := b.Build(context.Background(), "app", "1.0.0", 10)
	if err != nil {
		t.Fatal(err)
	}

	for name, n := range r.calls {
		if n != 1 {
			t.Errorf("%s resolved %d times, want 1", name, n)
		}
	}
	if got := r.specs["app"]; !slices.Equal(got, []string{"1.0.0"}) {
		t.Errorf("root spec = %v, want [1.0.0]", got)
	}
	if got := r.specs["util"]; !slices.Equal(got, []string{"^3.0.0"}) {
		t.Errorf("util spec = %v, want first-seen [^3.0.0]", got)
	}
	if want := []string{"left", "right"}; !slices.Equal(b.Graph().Deps("app"), want) {
		t.Errorf("Deps(app) = %v, want %v", b.Graph().Deps("app"), want)
	}
	if res.Specs[Edge{From: "right", To: "util"}] != "^3.1.0" {
		t.Errorf("edge spec = %q, want ^3.1.0", res.Specs[Edge{From: "right", To: "util"}])
	}
	if !b.Graph().Has("util") {
		t.Error("leaf util should have an (empty) entry")
	}
}

func TestBuild_ResolvedCycle(t *testing.T) {
	r := newFakeResolver(map[string]resolve.Dependencies{
		"a": {{Name: "b", Spec: "1"}},
		"b": {{Name: "a", Spec: "1"}},
	})
	res, err := NewResolvedBuilder(r, nil).Build(context.Background(), "a", "1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if !res.HasCycle || !res.IsCycleEdge("b", "a") {
		t.Errorf("CycleEdges = %v, want [b->a]", res.CycleEdges)
	}
	if r.calls["a"] != 1 {
		t.Errorf("a resolved %d times, want 1", r.calls["a"])
	}
}

func TestBuild_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newFakeResolver(map[string]resolve.Dependencies{"a": {{Name: "b"}}})
	_, err := NewResolvedBuilder(r, nil).Build(ctx, "a", "1", 10)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
