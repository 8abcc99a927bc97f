package cache

import "strconv"

// Keyer builds cache keys for the different kinds of cached data.
type Keyer interface {
	// ManifestKey is the key of a raw registry manifest.
	ManifestKey(name string) string
	// ReportKey is the key of a finished analysis report.
	ReportKey(root string, opts ReportKeyOpts) string
}

// ReportKeyOpts holds the inputs that change a report for the same root.
type ReportKeyOpts struct {
	Registry string `json:"registry"`
	Version  string `json:"version"`
	MaxDepth int    `json:"max_depth"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ManifestKey returns "manifest:<name>".
func (DefaultKeyer) ManifestKey(name string) string {
	return "manifest:" + name
}

// ReportKey hashes the options so the key stays short for any input.
func (DefaultKeyer) ReportKey(root string, opts ReportKeyOpts) string {
	return hashKey("report", root, opts.Registry, opts.Version, strconv.Itoa(opts.MaxDepth))
}
