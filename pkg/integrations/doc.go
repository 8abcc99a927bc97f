// Package integrations provides the HTTP plumbing for registry clients.
//
// [Client] performs GET requests with a fixed timeout, maps status codes to
// [ErrNotFound] and [ErrNetwork], reports every request to the registered
// observability hooks, and caches decoded responses through a [cache.Cache].
// Requests are issued exactly once: a failed fetch is returned to the caller
// as-is and never retried.
//
// The npm subpackage builds on it:
//
//	client := npm.NewClient(cache.NewNullCache(), 24*time.Hour)
//	m, err := client.FetchManifest(ctx, "express")
//
// [cache.Cache]: github.com/matzehuels/deptree/pkg/cache.Cache
package integrations
