package npm

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/deptree/pkg/cache"
	"github.com/matzehuels/deptree/pkg/integrations"
	"github.com/matzehuels/deptree/pkg/resolve"
)

// DefaultRegistry is the public npm registry.
const DefaultRegistry = "https://registry.npmjs.org"

// acceptHeader asks for the abbreviated install metadata, which carries
// dist-tags and per-version dependencies at a fraction of the full size.
// Registries without it answer with the full document, which decodes the same.
const acceptHeader = "application/vnd.npm.install-v1+json; q=1.0, application/json; q=0.8"

// Client fetches manifests from an npm registry. It implements
// [resolve.ManifestSource].
type Client struct {
	*integrations.Client
	baseURL string
	keyer   cache.Keyer
	refresh bool
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL points the client at another registry (mirror, Verdaccio,
// test server). A trailing slash is ignored.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithRefresh bypasses cached manifests on read; fresh ones are still stored.
func WithRefresh(refresh bool) Option {
	return func(c *Client) { c.refresh = refresh }
}

// WithKeyer overrides the cache keyer. By default keys are scoped by the
// registry host.
func WithKeyer(k cache.Keyer) Option {
	return func(c *Client) { c.keyer = k }
}

// NewClient creates a registry client backed by c (nil disables caching).
func NewClient(c cache.Cache, ttl time.Duration, opts ...Option) *Client {
	client := &Client{
		Client:  integrations.NewClient(c, "manifest", ttl, map[string]string{"Accept": acceptHeader}),
		baseURL: DefaultRegistry,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.keyer == nil {
		client.keyer = cache.NewScopedKeyer(nil, registryScope(client.baseURL))
	}
	return client
}

// BaseURL returns the registry base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchManifest fetches the manifest of name. A 404 yields an error wrapping
// [integrations.ErrNotFound].
func (c *Client) FetchManifest(ctx context.Context, name string) (*resolve.Manifest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("empty package name")
	}

	var m resolve.Manifest
	err := c.Cached(ctx, c.keyer.ManifestKey(name), c.refresh, &m, func() error {
		return c.fetch(ctx, name, &m)
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) fetch(ctx context.Context, name string, m *resolve.Manifest) error {
	if err := c.Get(ctx, c.manifestURL(name), m); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: npm package %s", err, name)
		}
		return err
	}
	if m.Name == "" {
		m.Name = name
	}
	return nil
}

// manifestURL escapes the scope separator: @types/node -> @types%2Fnode.
func (c *Client) manifestURL(name string) string {
	return c.baseURL + "/" + url.PathEscape(name)
}

func registryScope(base string) string {
	if u, err := url.Parse(base); err == nil && u.Host != "" {
		return u.Host + u.Path + ":"
	}
	return base + ":"
}

var _ resolve.ManifestSource = (*Client)(nil)
