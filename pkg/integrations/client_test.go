package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/deptree/pkg/cache"
	"github.com/matzehuels/deptree/pkg/observability"
)

type response struct {
	Message string `json:"message"`
}

func newTestClient(t *testing.T, server *httptest.Server, headers map[string]string) (*Client, cache.Cache) {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	client := NewClient(c, "manifest", time.Hour, headers)
	if server != nil {
		client.SetHTTPClient(server.Client())
	}
	return client, c
}

func TestNewClient(t *testing.T) {
	client, c := newTestClient(t, nil, map[string]string{"Authorization": "Bearer token"})
	if client.http == nil {
		t.Error("http client is nil")
	}
	if client.cache != c {
		t.Error("cache not set")
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("headers not set")
	}
}

func TestNewClientNilCache(t *testing.T) {
	client := NewClient(nil, "manifest", time.Hour, nil)
	if _, ok := client.cache.(*cache.NullCache); !ok {
		t.Errorf("nil cache should become NullCache, got %T", client.cache)
	}
}

func TestClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client, _ := newTestClient(t, server, nil)
	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Message = %q, want hello", resp.Message)
	}
}

func TestClientGetWithHeadersOverridesDefaults(t *testing.T) {
	var got, custom, agent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Accept")
		custom = r.Header.Get("X-Custom")
		agent = r.Header.Get("User-Agent")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server, map[string]string{"Accept": "application/json", "X-Custom": "default"})
	var resp response
	err := client.GetWithHeaders(context.Background(), server.URL, map[string]string{"Accept": "text/plain"}, &resp)
	if err != nil {
		t.Fatal(err)
	}
	if got != "text/plain" {
		t.Errorf("Accept = %q, want override", got)
	}
	if custom != "default" {
		t.Errorf("X-Custom = %q, want default", custom)
	}
	if !strings.HasPrefix(agent, "deptree/") {
		t.Errorf("User-Agent = %q", agent)
	}
}

func TestClientGetBytes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain body"))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server, nil)
	data, err := client.GetBytes(context.Background(), server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "plain body" {
		t.Errorf("GetBytes() = %q", data)
	}
}

func TestClientStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusInternalServerError, ErrNetwork},
		{http.StatusTooManyRequests, ErrNetwork},
		{http.StatusForbidden, ErrNetwork},
	}
	for _, tt := range tests {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(tt.status)
		}))

		client, _ := newTestClient(t, server, nil)
		var resp response
		err := client.Get(context.Background(), server.URL, &resp)
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: error = %v, want %v", tt.status, err, tt.want)
		}
		if n := calls.Load(); n != 1 {
			t.Errorf("status %d: %d requests, want exactly 1", tt.status, n)
		}
		server.Close()
	}
}

func TestClientMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server, nil)
	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err == nil {
		t.Error("expected decode error")
	}
}

func TestClientTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client, _ := newTestClient(t, nil, nil)
	var resp response
	if err := client.Get(context.Background(), url, &resp); !errors.Is(err, ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
}

func TestClientCached(t *testing.T) {
	client, _ := newTestClient(t, nil, nil)
	ctx := context.Background()

	calls := 0
	fetch := func(v *response) func() error {
		return func() error {
			calls++
			v.Message = "fetched"
			return nil
		}
	}

	var first response
	if err := client.Cached(ctx, "k", false, &first, fetch(&first)); err != nil {
		t.Fatal(err)
	}
	var second response
	if err := client.Cached(ctx, "k", false, &second, fetch(&second)); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
	if second.Message != "fetched" {
		t.Errorf("cached value = %q", second.Message)
	}

	var third response
	if err := client.Cached(ctx, "k", true, &third, fetch(&third)); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("refresh should bypass cache, fetch called %d times", calls)
	}
}

func TestClientCachedFetchErrorNotStored(t *testing.T) {
	client, c := newTestClient(t, nil, nil)
	ctx := context.Background()

	boom := errors.New("boom")
	var v response
	if err := client.Cached(ctx, "k", false, &v, func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("failed fetch should not be cached")
	}
}

type countingCacheHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestClientCachedHooks(t *testing.T) {
	hooks := &countingCacheHooks{}
	observability.SetCacheHooks(hooks)
	t.Cleanup(observability.Reset)

	client, _ := newTestClient(t, nil, nil)
	ctx := context.Background()
	var v response
	fetch := func() error { v.Message = "x"; return nil }
	client.Cached(ctx, "k", false, &v, fetch)
	client.Cached(ctx, "k", false, &v, fetch)

	if hooks.misses != 1 || hooks.sets != 1 || hooks.hits != 1 {
		t.Errorf("hooks = %d hits, %d misses, %d sets; want 1 each", hooks.hits, hooks.misses, hooks.sets)
	}
}

func TestCheckStatus(t *testing.T) {
	for _, code := range []int{200, 203} {
		if err := checkStatus(code); err != nil {
			t.Errorf("checkStatus(%d) = %v", code, err)
		}
	}
	if err := checkStatus(404); !errors.Is(err, ErrNotFound) {
		t.Errorf("checkStatus(404) = %v", err)
	}
	if err := checkStatus(503); !errors.Is(err, ErrNetwork) {
		t.Errorf("checkStatus(503) = %v", err)
	}
}

func TestNewHTTPClient(t *testing.T) {
	if c := NewHTTPClient(); c.Timeout != httpTimeout {
		t.Errorf("Timeout = %v, want %v", c.Timeout, httpTimeout)
	}
}
