// Package pipeline runs one dependency analysis end to end.
//
// An analysis loads or resolves the graph below a root package, detects
// cycles, derives the install and load orders and, when requested, compares
// the load order with npm's own view of the installed tree. The CLI and the
// HTTP server both drive analyses through [Runner].
//
// # Modes
//
// Static mode reads a pre-loaded adjacency list ([Options.Graph]) and never
// touches the network. Registry mode resolves each package against an npm
// registry, one manifest fetch per package per run.
package pipeline

import (
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deptree/pkg/cache"
	"github.com/matzehuels/deptree/pkg/depgraph"
	deperrors "github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/integrations/npm"
	"github.com/matzehuels/deptree/pkg/resolve"
)

// Analysis modes.
const (
	ModeStatic   = "static"
	ModeRegistry = "registry"
)

// Defaults applied by [Options.ValidateAndSetDefaults] and the CLI.
const (
	DefaultMaxDepth = 10
	DefaultVersion  = resolve.LatestTag
	DefaultCacheTTL = 24 * time.Hour
)

// Options configures one analysis.
type Options struct {
	Root     string `json:"root"`
	Version  string `json:"version,omitempty"`
	MaxDepth int    `json:"max_depth"`

	// Graph is the pre-loaded adjacency list for static mode. When nil the
	// analysis resolves against Registry.
	Graph *depgraph.Graph `json:"-"`

	Registry string `json:"registry,omitempty"`
	// Refresh bypasses cached manifests and reports (they are still written).
	Refresh bool `json:"-"`

	CompareNpm bool   `json:"compare_npm,omitempty"`
	NpmBinary  string `json:"-"`
	NpmDir     string `json:"-"`

	// Logger overrides the runner's logger for this analysis.
	Logger *log.Logger `json:"-"`

	validated bool
}

// Mode returns ModeStatic when a graph was supplied and ModeRegistry otherwise.
func (o *Options) Mode() string {
	if o.Graph != nil {
		return ModeStatic
	}
	return ModeRegistry
}

// ValidateAndSetDefaults checks the options and fills in registry defaults.
// Registry mode requires a valid npm package name; static mode accepts any
// name the adjacency file can express. Calling it twice is a no-op.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := deperrors.ValidatePackageName(o.Root); err != nil {
		return err
	}
	if err := deperrors.ValidateDepth(o.MaxDepth); err != nil {
		return err
	}
	if o.Mode() == ModeRegistry {
		if err := deperrors.ValidateNpmPackageName(o.Root); err != nil {
			return err
		}
		if o.Version == "" {
			o.Version = DefaultVersion
		}
		if o.Registry == "" {
			o.Registry = npm.DefaultRegistry
		}
		if err := deperrors.ValidateURL(o.Registry); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// ReportKeyOpts returns the cache key inputs for this analysis' report.
func (o *Options) ReportKeyOpts() cache.ReportKeyOpts {
	return cache.ReportKeyOpts{
		Registry: o.Registry,
		Version:  o.Version,
		MaxDepth: o.MaxDepth,
	}
}

// Setting is one line of the configuration echo.
type Setting struct {
	Key   string
	Value string
}

// Settings lists the effective configuration in display order.
func (o *Options) Settings() []Setting {
	s := []Setting{
		{"package", o.Root},
		{"mode", o.Mode()},
	}
	if o.Mode() == ModeRegistry {
		s = append(s,
			Setting{"version", o.Version},
			Setting{"registry", o.Registry},
		)
	} else {
		s = append(s, Setting{"graph nodes", strconv.Itoa(o.Graph.Len())})
	}
	s = append(s,
		Setting{"max depth", strconv.Itoa(o.MaxDepth)},
		Setting{"compare with npm", strconv.FormatBool(o.CompareNpm)},
	)
	return s
}
