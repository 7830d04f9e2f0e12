package testutil

import (
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"finitefield.org/dex-web/internal/dex"
	"finitefield.org/dex-web/internal/httpserver"
	"finitefield.org/dex-web/internal/pokeapi"
	"finitefield.org/dex-web/internal/pokeapi/pokeapitest"
	"finitefield.org/dex-web/internal/widget"
)

// Server bundles the running widget server with its fake upstream.
type Server struct {
	*httptest.Server
	API     *pokeapitest.Server
	Widgets *widget.Store
}

type serverOptions struct {
	sampler     dex.IDSampler
	apiOptions  []pokeapitest.Option
	concurrency int
	loader      widget.Loader
}

// ServerOption customises the test server.
type ServerOption func(*serverOptions)

// WithIDs makes every mounted widget load the given ids.
func WithIDs(ids ...int) ServerOption {
	return func(o *serverOptions) {
		o.sampler = dex.FixedIDs(ids)
	}
}

// WithAPIOptions configures the fake PokeAPI.
func WithAPIOptions(opts ...pokeapitest.Option) ServerOption {
	return func(o *serverOptions) {
		o.apiOptions = append(o.apiOptions, opts...)
	}
}

// WithConcurrency sets the enricher fan-out.
func WithConcurrency(n int) ServerOption {
	return func(o *serverOptions) {
		o.concurrency = n
	}
}

// WithLoader bypasses the PokeAPI pipeline entirely.
func WithLoader(loader widget.Loader) ServerOption {
	return func(o *serverOptions) {
		o.loader = loader
	}
}

// NewServer constructs an httptest server running the widget HTTP stack
// against a fake PokeAPI.
func NewServer(t testing.TB, opts ...ServerOption) *Server {
	t.Helper()

	options := serverOptions{
		sampler:     dex.FixedIDs{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(&options)
	}

	logger := zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))
	api := pokeapitest.NewServer(t, options.apiOptions...)

	loader := options.loader
	if loader == nil {
		client, err := pokeapi.NewClient(api.URL, api.Client())
		if err != nil {
			t.Fatalf("pokeapi client: %v", err)
		}
		enricher, err := dex.NewEnricher(client, dex.WithConcurrency(options.concurrency), dex.WithLogger(logger))
		if err != nil {
			t.Fatalf("enricher: %v", err)
		}
		fetcher, err := dex.NewFetcher(options.sampler, enricher)
		if err != nil {
			t.Fatalf("fetcher: %v", err)
		}
		loader = fetcher
	}

	store, err := widget.NewStore(loader, widget.WithLogger(logger))
	if err != nil {
		t.Fatalf("widget store: %v", err)
	}

	srv := httpserver.New(httpserver.Config{
		Address: ":0",
		Logger:  logger,
		Widgets: store,
	})
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		store.Close()
	})
	return &Server{Server: ts, API: api, Widgets: store}
}
