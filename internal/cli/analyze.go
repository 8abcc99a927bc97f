package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/deptree/pkg/depgraph"
	deperrors "github.com/matzehuels/deptree/pkg/errors"
	pkgio "github.com/matzehuels/deptree/pkg/io"
	"github.com/matzehuels/deptree/pkg/pipeline"
)

// analyzeOpts holds the flags of the analyze command that are not part of
// pipeline.Options.
type analyzeOpts struct {
	file      string // static graph file; registry mode when empty
	tree      bool   // print the dependency tree
	treeDepth int    // tree depth limit, -1 for unlimited
	pager     bool   // page the tree interactively
	loadOrder bool   // print the load order
	output    string // .dot, .svg, .png or .json output file
	noCache   bool
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var opts pipeline.Options
	flags := analyzeOpts{tree: true, treeDepth: -1}

	cmd := &cobra.Command{
		Use:   "analyze <package>",
		Short: "Analyze a package's dependency graph",
		Long: `Analyze a package's transitive dependency graph.

Without --file the graph is resolved from the npm registry, starting at the
requested version of <package>. With --file it is read from an adjacency-list
file ("name: dep1, dep2" per line) or a JSON graph, and <package> names the
root inside that file.

The command prints the effective configuration, the root's direct
dependencies, the dependency tree, and the install order (dependencies
first). A cycle makes the install order undefined; it is reported, and the
tree and load order are still produced.`,
		Example: `  deptree analyze express
  deptree analyze express --version 4.18.2 --max-depth 3 --load-order
  deptree analyze app --file deps.txt --output graph.svg
  deptree analyze express --compare-npm --npm-dir ./my-project`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Root = args[0]
			if !cmd.Flags().Changed("max-depth") {
				opts.MaxDepth = c.config.MaxDepth
			}
			if !cmd.Flags().Changed("registry") {
				opts.Registry = c.config.Registry
			}
			if opts.NpmBinary == "" {
				opts.NpmBinary = c.config.NpmBinary
			}
			return c.runAnalyze(cmd.Context(), opts, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "read the graph from an adjacency-list or JSON file instead of the registry")
	cmd.Flags().StringVar(&opts.Registry, "registry", "", "npm registry base URL (default from config, else https://registry.npmjs.org)")
	cmd.Flags().StringVar(&opts.Version, "version", pipeline.DefaultVersion, "version or dist-tag of the root package")
	cmd.Flags().IntVarP(&opts.MaxDepth, "max-depth", "d", pipeline.DefaultMaxDepth, "maximum dependency depth (root is 0)")
	cmd.Flags().BoolVar(&flags.tree, "tree", flags.tree, "print the dependency tree")
	cmd.Flags().IntVar(&flags.treeDepth, "tree-depth", flags.treeDepth, "limit the printed tree depth (-1 for unlimited)")
	cmd.Flags().BoolVar(&flags.pager, "pager", false, "browse the tree in an interactive pager")
	cmd.Flags().BoolVar(&flags.loadOrder, "load-order", false, "print the load order")
	cmd.Flags().BoolVar(&opts.CompareNpm, "compare-npm", false, "compare the load order with \"npm ls\"")
	cmd.Flags().StringVar(&opts.NpmDir, "npm-dir", "", "project directory for \"npm ls\" (default current directory)")
	cmd.Flags().StringVar(&opts.NpmBinary, "npm", "", "npm executable (default from config, else npm)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the graph to a .dot, .svg, .png or .json file")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass cached registry manifests")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the manifest cache")

	return cmd
}

// runAnalyze loads or resolves the graph and prints the analysis.
func (c *CLI) runAnalyze(ctx context.Context, opts pipeline.Options, flags analyzeOpts) error {
	logger := loggerFromContext(ctx)
	opts.Logger = logger

	if flags.output != "" {
		if err := deperrors.ValidateOutputPath(flags.output); err != nil {
			return err
		}
	}
	if flags.file != "" {
		g, err := loadGraphFile(flags.file)
		if err != nil {
			return err
		}
		opts.Graph = g
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	printTitle("Configuration")
	for _, s := range opts.Settings() {
		printKeyValue(s.Key, s.Value)
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(logger)
	spinner := newSpinner(ctx, fmt.Sprintf("Resolving %s...", opts.Root))
	if opts.Mode() == pipeline.ModeRegistry {
		spinner.Start()
	}
	a, err := runner.Analyze(ctx, opts)
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return err
	}
	spinner.Stop()
	prog.done("analyzed "+opts.Root, "nodes", a.Stats.Nodes)

	printDirect(a)

	printTitle("Dependency graph")
	printStats(a.Stats.Nodes, a.Stats.Edges, a.Result.HasCycle, false)
	if a.Result.HasCycle {
		printWarning("cycle detected")
		printCycleEdges(a.Result.CycleEdges)
	}

	if flags.tree {
		lines := slices.Collect(depgraph.RenderTree(opts.Root, a.Result.Graph, treeLimit(flags.treeDepth, opts.MaxDepth)))
		if flags.pager && isatty.IsTerminal(os.Stdout.Fd()) {
			if err := runPager(ctx, "Dependency tree of "+opts.Root, lines); err != nil {
				return fmt.Errorf("pager: %w", err)
			}
		} else {
			printTitle("Dependency tree")
			for _, line := range lines {
				fmt.Fprintln(stdout, line)
			}
		}
	}

	printTitle("Install order")
	if a.InstallErr != nil {
		printWarning("%v", a.InstallErr)
	} else {
		printNumbered(a.InstallOrder)
	}

	if flags.loadOrder {
		printTitle("Load order")
		printNumbered(a.LoadOrder)
	}

	if opts.CompareNpm {
		printTitle("Comparison with npm ls")
		if a.ReferenceErr != nil {
			printWarning("comparison skipped: %s", deperrors.UserMessage(a.ReferenceErr))
		} else {
			printComparison(*a.Comparison, a.Reference)
		}
	}

	if flags.output != "" {
		if err := pipeline.WriteOutput(ctx, a, flags.output); err != nil {
			return err
		}
		fmt.Fprintln(stdout)
		printSuccess("Wrote graph")
		printFile(flags.output)
	}
	return nil
}

// printDirect echoes the root's direct dependencies with their specs.
func printDirect(a *pipeline.Analysis) {
	printTitle("Direct dependencies")
	if len(a.Direct) == 0 {
		printInfo("%s has no dependencies", a.Options.Root)
		return
	}
	for _, d := range a.Direct {
		spec := d.Spec
		if spec == "" {
			spec = "-"
		}
		printKeyValue(d.Name, spec)
	}
}

// treeLimit caps the printed tree at the traversal depth; deeper levels of a
// registry graph were never resolved.
func treeLimit(treeDepth, maxDepth int) int {
	if treeDepth < 0 || treeDepth > maxDepth {
		return maxDepth
	}
	return treeDepth
}

func loadGraphFile(path string) (*depgraph.Graph, error) {
	g, err := pkgio.ImportGraph(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, deperrors.Wrap(deperrors.ErrCodeFileNotFound, err, "graph file %s", path)
	}
	if err != nil {
		return nil, deperrors.Wrap(deperrors.ErrCodeInvalidInput, err, "load graph file %s", path)
	}
	return g, nil
}
