package msteams

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/flemzord/teamgate/internal/graph"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeGraph is an httptest-backed Graph double. It records every request
// ("METHOD /path") and the last body seen per request key, then routes to
// handlers registered with the Go 1.22 method-aware mux patterns.
type fakeGraph struct {
	t   *testing.T
	mux *http.ServeMux
	srv *httptest.Server

	mu       sync.Mutex
	requests []string
	bodies   map[string]string
}

func newFakeGraph(t *testing.T) *fakeGraph {
	t.Helper()
	f := &fakeGraph{t: t, mux: http.NewServeMux(), bodies: make(map[string]string)}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		key := r.Method + " " + r.URL.Path
		f.mu.Lock()
		f.requests = append(f.requests, key)
		f.bodies[key] = string(body)
		f.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		f.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeGraph) handle(pattern string, h http.HandlerFunc) {
	f.mux.HandleFunc(pattern, h)
}

// object registers a handler that serves v as a single JSON object.
func (f *fakeGraph) object(pattern string, v any) {
	f.handle(pattern, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(f.t, w, v)
	})
}

// list registers a handler that serves items wrapped in the Graph
// collection envelope, in one page.
func (f *fakeGraph) list(pattern string, items any) {
	f.handle(pattern, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(f.t, w, map[string]any{"value": items})
	})
}

// count returns how many recorded requests start with prefix.
func (f *fakeGraph) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

// body returns the last request body recorded for "METHOD /path".
func (f *fakeGraph) body(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func staticTokens(tok string) graph.TokenSource {
	return graph.TokenFunc(func(context.Context) (string, error) { return tok, nil })
}

// newTestProvider builds a Provider pointed at the fake.
func newTestProvider(f *fakeGraph) *Provider {
	client := graph.NewClient(staticTokens("test-token"), f.srv.URL)
	return NewProvider(client, nil, discardLogger())
}

// identityFixture registers /me and a two-team joined-teams listing.
func identityFixture(f *fakeGraph) {
	f.object("GET /v1.0/me", user{ID: "U1", DisplayName: "Test Caller"})
	f.list("GET /v1.0/me/joinedTeams", []team{
		{ID: "T1", DisplayName: "Engineering"},
		{ID: "T2", DisplayName: "Operations"},
	})
}

// connect runs Connect against the fixture and fails the test on error.
func connect(t *testing.T, p *Provider) {
	t.Helper()
	if err := p.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
}
