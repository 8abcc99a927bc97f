package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deptree/pkg/cache"
	"github.com/matzehuels/deptree/pkg/depgraph"
	deperrors "github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/integrations/npm"
	"github.com/matzehuels/deptree/pkg/io"
	"github.com/matzehuels/deptree/pkg/observability"
	"github.com/matzehuels/deptree/pkg/resolve"
)

// Runner executes analyses with caching. Both the CLI and the HTTP server
// use it.
//
// The Runner holds no per-analysis state: every call builds a fresh
// [depgraph.Builder], so one Runner may serve concurrent analyses.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL applies to cached manifests and reports.
	TTL time.Duration
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses [cache.DefaultKeyer], and a nil logger uses log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    DefaultCacheTTL,
	}
}

// Analysis is the outcome of one run.
type Analysis struct {
	Options Options
	Result  *depgraph.Result

	// Direct lists the root's declared dependencies in declaration order.
	Direct []io.DirectDependency

	// InstallOrder is nil and InstallErr is set when a cycle makes the
	// order undefined.
	InstallOrder []string
	InstallErr   error
	LoadOrder    []string

	// Reference and Comparison are set by a successful npm comparison;
	// ReferenceErr records why the comparison was skipped.
	Reference    []string
	Comparison   *depgraph.Comparison
	ReferenceErr error

	Stats Stats
}

// Stats holds per-stage timings and sizes.
type Stats struct {
	BuildTime   time.Duration
	CompareTime time.Duration
	Nodes       int
	Edges       int
}

// Analyze builds the graph for opts and derives its orders. A detected
// cycle or an unavailable npm reference is recorded on the Analysis, not
// returned as an error.
func (r *Runner) Analyze(ctx context.Context, opts Options) (*Analysis, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	logger := opts.Logger
	mode := opts.Mode()
	hooks := observability.Analysis()

	builder := r.builder(opts)

	hooks.OnBuildStart(ctx, mode, opts.Root)
	start := time.Now()
	res, err := builder.Build(ctx, opts.Root, opts.Version, opts.MaxDepth)
	elapsed := time.Since(start)
	if err != nil {
		hooks.OnBuildComplete(ctx, mode, opts.Root, 0, false, elapsed, err)
		return nil, classify(err, opts.Root)
	}
	hooks.OnBuildComplete(ctx, mode, opts.Root, len(res.Reachable), res.HasCycle, elapsed, nil)

	a := &Analysis{
		Options: opts,
		Result:  res,
		Direct:  directDependencies(res),
	}
	a.Stats.BuildTime = elapsed
	a.Stats.Nodes = len(res.Reachable)
	a.Stats.Edges = len(reachableEdges(res))

	logger.Info("built dependency graph",
		"root", opts.Root,
		"mode", mode,
		"nodes", a.Stats.Nodes,
		"edges", a.Stats.Edges,
		"cycle", res.HasCycle,
		"duration", elapsed)

	a.InstallOrder, a.InstallErr = res.InstallOrder()
	if a.InstallErr != nil {
		logger.Warn("install order unavailable", "root", opts.Root, "err", a.InstallErr)
	}
	a.LoadOrder = res.LoadOrder()

	if opts.CompareNpm {
		r.Compare(ctx, a)
	}
	return a, nil
}

// Compare runs "npm ls" for the analysis root and compares npm's ordering
// with the derived load order. Failures are recorded on a.ReferenceErr and
// never affect the graph results.
func (r *Runner) Compare(ctx context.Context, a *Analysis) {
	opts := a.Options
	r.applyLogger(&opts)
	ls := &npm.LsRunner{
		Binary: opts.NpmBinary,
		Dir:    opts.NpmDir,
		Logger: opts.Logger,
	}

	start := time.Now()
	ref, err := ls.ReferenceOrder(ctx, opts.Root, opts.MaxDepth)
	a.Stats.CompareTime = time.Since(start)
	if err != nil {
		a.ReferenceErr = deperrors.Wrap(deperrors.ErrCodeReferenceUnavailable, err, "npm ls %s", opts.Root)
		opts.Logger.Warn("npm comparison skipped", "package", opts.Root, "err", err)
		return
	}

	c := depgraph.Compare(a.LoadOrder, ref)
	a.Reference = ref
	a.Comparison = &c
	observability.Analysis().OnCompare(ctx, opts.Root, c.SameSet(), len(c.Moved()))
	opts.Logger.Debug("compared with npm",
		"reference", len(ref),
		"only_ours", len(c.OnlyOurs),
		"only_npm", len(c.OnlyReference),
		"moved", len(c.Moved()),
		"duration", a.Stats.CompareTime)
}

// Report runs Analyze and converts the outcome, caching registry-mode
// reports under [cache.Keyer.ReportKey]. The bool reports a cache hit.
// Reports that include an npm comparison depend on the local install and
// are never cached.
func (r *Runner) Report(ctx context.Context, opts Options) (*io.Report, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	cacheable := opts.Mode() == ModeRegistry && !opts.CompareNpm
	key := r.Keyer.ReportKey(opts.Root, opts.ReportKeyOpts())
	hooks := observability.Cache()

	if cacheable && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var rep io.Report
			if err := json.Unmarshal(data, &rep); err == nil {
				hooks.OnCacheHit(ctx, "report")
				return &rep, true, nil
			}
		}
		hooks.OnCacheMiss(ctx, "report")
	}

	a, err := r.Analyze(ctx, opts)
	if err != nil {
		return nil, false, err
	}
	rep := a.Report()

	if cacheable {
		if data, err := json.Marshal(rep); err == nil {
			if err := r.Cache.Set(ctx, key, data, r.TTL); err == nil {
				hooks.OnCacheSet(ctx, "report", len(data))
			}
		}
	}
	return rep, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// Report converts the analysis into its JSON form.
func (a *Analysis) Report() *io.Report {
	res := a.Result
	rep := &io.Report{
		Root:         res.Root,
		Version:      a.Options.Version,
		Mode:         a.Options.Mode(),
		MaxDepth:     res.MaxDepth,
		Direct:       a.Direct,
		Reachable:    res.Reachable,
		Edges:        reachableEdges(res),
		HasCycle:     res.HasCycle,
		CycleEdges:   res.CycleEdges,
		InstallOrder: a.InstallOrder,
		LoadOrder:    a.LoadOrder,
	}
	if rep.CycleEdges == nil {
		rep.CycleEdges = []depgraph.Edge{}
	}
	if a.Comparison != nil {
		rep.Comparison = io.NewComparisonReport(a.Reference, *a.Comparison)
	}
	return rep
}

func (r *Runner) builder(opts Options) *depgraph.Builder {
	if opts.Graph != nil {
		return depgraph.NewStaticBuilder(opts.Graph)
	}
	client := npm.NewClient(r.Cache, r.TTL,
		npm.WithBaseURL(opts.Registry),
		npm.WithRefresh(opts.Refresh),
	)
	resolver := resolve.RootResolver{Resolver: resolve.NewResolver(client, opts.Logger), Root: opts.Root}
	return depgraph.NewResolvedBuilder(resolver, opts.Logger)
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// directDependencies lists the root's declared dependencies with the specs
// recorded during resolution (empty in static mode).
func directDependencies(res *depgraph.Result) []io.DirectDependency {
	names := res.Graph.Deps(res.Root)
	direct := make([]io.DirectDependency, 0, len(names))
	for _, name := range names {
		direct = append(direct, io.DirectDependency{
			Name: name,
			Spec: res.Specs[depgraph.Edge{From: res.Root, To: name}],
		})
	}
	return direct
}

// reachableEdges returns the edges whose endpoints were both discovered.
func reachableEdges(res *depgraph.Result) []depgraph.Edge {
	edges := []depgraph.Edge{}
	for _, e := range res.Graph.Edges() {
		if res.IsReachable(e.From) && res.IsReachable(e.To) {
			edges = append(edges, e)
		}
	}
	return edges
}

// classify maps builder failures onto coded errors.
func classify(err error, root string) error {
	switch {
	case errors.Is(err, depgraph.ErrRootNotFound):
		return deperrors.Wrap(deperrors.ErrCodeRootNotFound, err, "root %q not in graph", root)
	case errors.Is(err, depgraph.ErrInvalidDepth):
		return deperrors.Wrap(deperrors.ErrCodeInvalidDepth, err, "invalid depth")
	case errors.Is(err, context.Canceled):
		return deperrors.Wrap(deperrors.ErrCodeCancelled, err, "analysis of %s cancelled", root)
	case errors.Is(err, context.DeadlineExceeded):
		return deperrors.Wrap(deperrors.ErrCodeTimeout, err, "analysis of %s timed out", root)
	default:
		return fmt.Errorf("build %s: %w", root, err)
	}
}
