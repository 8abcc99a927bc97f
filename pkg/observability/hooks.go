// Package observability lets a host process observe analyses, cache traffic
// and registry requests without the library depending on a metrics backend.
//
// Hooks are registered once at startup (the server installs Prometheus
// collectors) and called by library code:
//
//	observability.Analysis().OnBuildStart(ctx, mode, root)
//	// ... traverse ...
//	observability.Analysis().OnBuildComplete(ctx, mode, root, nodes, hasCycle, elapsed, err)
//
// Until something is registered every hook is a no-op.
package observability

import (
	"context"
	"sync"
	"time"
)

// AnalysisHooks receives events from graph builds.
type AnalysisHooks interface {
	OnBuildStart(ctx context.Context, mode, root string)
	OnBuildComplete(ctx context.Context, mode, root string, nodes int, hasCycle bool, duration time.Duration, err error)
	// OnCompare records a comparison against a reference ordering.
	OnCompare(ctx context.Context, root string, sameSet bool, moved int)
}

// CacheHooks receives events from cache lookups. keyType is "manifest" or
// "report".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from outgoing registry requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError records a transport failure (no response at all).
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopAnalysisHooks ignores every event.
type NoopAnalysisHooks struct{}

func (NoopAnalysisHooks) OnBuildStart(context.Context, string, string) {}
func (NoopAnalysisHooks) OnBuildComplete(context.Context, string, string, int, bool, time.Duration, error) {
}
func (NoopAnalysisHooks) OnCompare(context.Context, string, bool, int) {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

var (
	analysisHooks AnalysisHooks = NoopAnalysisHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetAnalysisHooks registers analysis hooks. nil is ignored.
func SetAnalysisHooks(h AnalysisHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		analysisHooks = h
	}
}

// SetCacheHooks registers cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Analysis returns the registered analysis hooks.
func Analysis() AnalysisHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return analysisHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op defaults. Tests use it to undo registrations.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	analysisHooks = NoopAnalysisHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
