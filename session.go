package frond

import (
	"log/slog"
	"time"

	"github.com/frond-ui/frond/pkg/build"
	"github.com/frond-ui/frond/pkg/descriptor"
	"github.com/frond-ui/frond/pkg/remote"
	"github.com/frond-ui/frond/pkg/render"
	"github.com/frond-ui/frond/pkg/state"
)

// Config configures a Session.
type Config struct {
	// InitialState seeds the session store, keyed by path.
	InitialState map[string]any

	// Registry supplies the kind implementations. Nil gets a registry
	// with the built-in HTML kinds.
	Registry *build.Registry

	// Sources are the remote data sources available to remote-fetch
	// directives, by name.
	Sources map[string]remote.Source

	// FetchTimeout bounds each remote fetch. Zero uses the fetcher
	// default.
	FetchTimeout time.Duration

	// Observer receives build and flush events (metrics, tracing).
	Observer build.Observer

	// Logger is the session logger. Nil uses slog.Default().
	Logger *slog.Logger
}

// Session owns one UI tree: a state store, a kind registry, a remote
// fetcher, and the builder that ties them together. Sessions are
// independent; a server creates one per client.
type Session struct {
	store   *state.Store
	fetcher *remote.Fetcher
	builder *build.Builder
	logger  *slog.Logger
}

// NewSession creates a Session from cfg.
func NewSession(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := cfg.Registry
	if registry == nil {
		registry = build.NewRegistry()
		render.RegisterBuiltins(registry)
	}

	store := state.NewStoreWith(cfg.InitialState)

	var fopts []remote.FetcherOption
	if cfg.FetchTimeout > 0 {
		fopts = append(fopts, remote.WithTimeout(cfg.FetchTimeout))
	}
	fetcher := remote.NewFetcher(store, fopts...)
	for name, src := range cfg.Sources {
		fetcher.RegisterSource(name, src)
	}

	bopts := []build.BuilderOption{build.WithFetcher(fetcher)}
	if cfg.Observer != nil {
		bopts = append(bopts, build.WithObserver(cfg.Observer))
	}

	return &Session{
		store:   store,
		fetcher: fetcher,
		builder: build.New(store, registry, bopts...),
		logger:  logger,
	}
}

// Store returns the session state store.
func (s *Session) Store() *state.Store {
	return s.store
}

// Builder returns the session's tree builder.
func (s *Session) Builder() *build.Builder {
	return s.builder
}

// Fetcher returns the session's remote fetcher.
func (s *Session) Fetcher() *remote.Fetcher {
	return s.fetcher
}

// Mount builds desc as the session's root tree.
func (s *Session) Mount(desc *descriptor.Descriptor, inherited map[string]any) (*build.Node, error) {
	root, err := s.builder.Mount(desc, inherited)
	if err != nil {
		s.logger.Warn("mount failed", "path", root.Path, "error", err)
	}
	return root, err
}

// MountJSON decodes a JSON descriptor and mounts it.
func (s *Session) MountJSON(data []byte) (*build.Node, error) {
	desc, err := descriptor.FromJSON(data)
	if err != nil {
		return nil, err
	}
	return s.Mount(desc, nil)
}

// MountYAML decodes a YAML descriptor and mounts it.
func (s *Session) MountYAML(data []byte) (*build.Node, error) {
	desc, err := descriptor.FromYAML(data)
	if err != nil {
		return nil, err
	}
	return s.Mount(desc, nil)
}

// Root returns the current root node, nil before Mount.
func (s *Session) Root() *build.Node {
	return s.builder.Root()
}

// Set writes a state value, marking dependent nodes for rebuild.
func (s *Session) Set(path string, value any) {
	s.store.Set(path, value)
}

// Get reads a state value without subscribing.
func (s *Session) Get(path string) (any, bool) {
	return s.store.Peek(path)
}

// Invalidate drops a fetched remote value so the next build refetches it.
func (s *Session) Invalidate(target string) {
	s.fetcher.Invalidate(target)
}

// Flush rebuilds every dirty node once and returns the replacement
// subtree roots.
func (s *Session) Flush() []*build.Node {
	return s.builder.Scheduler().Flush()
}

// Updates returns a channel that receives whenever rebuild work may be
// pending. Hosts drive their update loop from it and call Flush.
func (s *Session) Updates() <-chan struct{} {
	return s.builder.Scheduler().Signal()
}

// Close tears down the session. Pending fetches settle as no-ops.
func (s *Session) Close() {
	s.store.Close()
}
