// Package resolve maps a dependency range to one concrete published version
// and answers which dependencies that version declares.
//
// # Lookup Order
//
// [Resolver.Resolve] tries, first hit wins:
//
//  1. Exact: the raw spec is a published version.
//  2. Cleaned: the spec with leading range operators (^ ~ > < = and
//     whitespace) stripped is a published version.
//  3. Dist-tag: the manifest's "latest" tag points at a published version.
//     A warning is logged.
//
// Otherwise the package is treated as a leaf. A dependency declared as a tag
// name ("next") therefore gets the latest fallback and its warning.
//
// The analysis root is different: its version comes from the user and may
// name any dist-tag. [RootResolver] applies [SelectRoot] to the root and
// [Select] to everything else. This is deliberately crude:
// there is no interval arithmetic, one concrete version per edge, and no
// conflict detection between requesters of the same package.
package resolve

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
)

// LatestTag is the dist-tag used as the last-resort fallback.
const LatestTag = "latest"

// Match describes which lookup step produced a resolution.
type Match int

const (
	MatchNone Match = iota
	MatchExact
	MatchTag
	MatchCleaned
	MatchLatest
)

// String returns the lookup step name.
func (m Match) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchTag:
		return "tag"
	case MatchCleaned:
		return "cleaned"
	case MatchLatest:
		return "latest"
	default:
		return "none"
	}
}

// Resolver resolves version specs against manifests from a [ManifestSource].
type Resolver struct {
	source ManifestSource
	logger *log.Logger
}

// NewResolver creates a Resolver. A nil logger uses log.Default().
func NewResolver(source ManifestSource, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{source: source, logger: logger}
}

// Resolve returns the declared dependencies of name at the version selected
// for spec. It never fails: a missing manifest, a fetch error, or a spec that
// matches nothing yields an empty mapping and a warning, so traversal can
// continue with name as a leaf.
func (r *Resolver) Resolve(ctx context.Context, name, spec string) Dependencies {
	deps, _, _ := r.ResolveVersion(ctx, name, spec)
	return deps
}

// ResolveVersion is like [Resolver.Resolve] but also reports the concrete
// version chosen and how it was matched. version is "" when nothing matched.
func (r *Resolver) ResolveVersion(ctx context.Context, name, spec string) (deps Dependencies, version string, how Match) {
	return r.resolve(ctx, name, spec, Select)
}

// ResolveRoot is like [Resolver.ResolveVersion] but lets version name a
// dist-tag. See [SelectRoot].
func (r *Resolver) ResolveRoot(ctx context.Context, name, version string) (Dependencies, string, Match) {
	return r.resolve(ctx, name, version, SelectRoot)
}

func (r *Resolver) resolve(ctx context.Context, name, spec string, sel func(*Manifest, string) (string, Match)) (deps Dependencies, version string, how Match) {
	m, err := r.source.FetchManifest(ctx, name)
	if err != nil || m == nil {
		r.logger.Warn("manifest unavailable, treating as leaf", "package", name, "err", err)
		return Dependencies{}, "", MatchNone
	}

	version, how = sel(m, spec)
	switch how {
	case MatchNone:
		r.logger.Warn("version not found and no fallback applied", "package", name, "spec", spec)
		return Dependencies{}, "", MatchNone
	case MatchLatest:
		r.logger.Warn("version not found, falling back to latest", "package", name, "spec", spec, "fallback", version)
	}

	deps = m.Versions[version].Dependencies
	if deps == nil {
		deps = Dependencies{}
	}
	return deps, version, how
}

// Select picks the published version for spec following the lookup order.
// It returns "" and [MatchNone] when nothing matches.
func Select(m *Manifest, spec string) (string, Match) {
	if _, ok := m.Versions[spec]; ok {
		return spec, MatchExact
	}
	if cleaned := CleanVersion(spec); cleaned != "" {
		if _, ok := m.Versions[cleaned]; ok {
			return cleaned, MatchCleaned
		}
	}
	if latest := m.DistTags[LatestTag]; latest != "" {
		if _, ok := m.Versions[latest]; ok {
			return latest, MatchLatest
		}
	}
	return "", MatchNone
}

// SelectRoot picks the root's version: a published version, then a dist-tag
// of that name ("latest", "beta"), then the [Select] order.
func SelectRoot(m *Manifest, version string) (string, Match) {
	if _, ok := m.Versions[version]; ok {
		return version, MatchExact
	}
	if tagged := m.DistTags[version]; tagged != "" {
		if _, ok := m.Versions[tagged]; ok {
			return tagged, MatchTag
		}
	}
	return Select(m, version)
}

// RootResolver resolves Root with [SelectRoot] and every other package with
// [Select]. The root is entered once per build, so the name check is enough.
type RootResolver struct {
	*Resolver
	Root string
}

// Resolve implements depgraph.DependencyResolver.
func (r RootResolver) Resolve(ctx context.Context, name, spec string) Dependencies {
	if name == r.Root {
		deps, _, _ := r.ResolveRoot(ctx, name, spec)
		return deps
	}
	return r.Resolver.Resolve(ctx, name, spec)
}

// CleanVersion strips leading range operators and whitespace from spec,
// so "^1.2.3" and ">= 1.2.3" both become "1.2.3".
func CleanVersion(spec string) string {
	return strings.TrimLeft(spec, "^~<>= \t\r\n")
}
