package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frond-ui/frond/internal/errors"
	"github.com/frond-ui/frond/pkg/build"
	"github.com/frond-ui/frond/pkg/render"
	"github.com/frond-ui/frond/pkg/state"
)

// Config configures the preview server.
type Config struct {
	// Address is the listen address (default ":8420").
	Address string

	// Title is the document title of the served page.
	Title string

	// Styles are stylesheet URLs linked into the page head.
	Styles []string

	// EnableMetrics exposes Prometheus metrics on /metrics.
	EnableMetrics bool

	// ReadTimeout and WriteTimeout bound HTTP request handling.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown (default 5s).
	ShutdownTimeout time.Duration

	// Logger is the server logger. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the default preview server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:         ":8420",
		Title:           "Frond Preview",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Server serves one built tree over HTTP: the full document on GET /, live
// fragment updates over a websocket, and state writes over POST /state.
// It is the development preview surface, one tree per process.
type Server struct {
	config   *Config
	builder  *build.Builder
	renderer *render.Renderer
	page     render.Page
	logger   *slog.Logger

	upgrader websocket.Upgrader

	// treeMu serializes tree access. Scheduler flushes splice replacement
	// nodes into the live tree, so a render must never overlap a flush.
	treeMu sync.Mutex

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}

	httpServer *http.Server
	done       chan struct{}
	closeOnce  sync.Once
}

// New creates a preview server over an already mounted builder.
func New(builder *build.Builder, config *Config) *Server {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	}
	if config.Address == "" {
		config.Address = defaults.Address
	}
	if config.Title == "" {
		config.Title = defaults.Title
	}
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		config:   config,
		builder:  builder,
		renderer: render.NewRenderer(render.Config{IncludePaths: true}),
		page: render.Page{
			Title:   config.Title,
			Styles:  config.Styles,
			LiveURL: "/live",
		},
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		conns: make(map[*websocket.Conn]struct{}),
		done:  make(chan struct{}),
	}
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/live", s.handleLive)
	r.Post("/state", s.handleState)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if s.config.EnableMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}
	return r
}

// ListenAndServe starts the server and blocks until ctx is canceled or the
// listener fails. The update loop that pushes rebuilt fragments to live
// connections runs for the lifetime of the call.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.config.Address,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	go s.updateLoop()

	errc := make(chan error, 1)
	go func() {
		errc <- s.httpServer.ListenAndServe()
	}()

	s.logger.Info("preview server listening", "address", s.config.Address)

	select {
	case <-ctx.Done():
		return s.Shutdown()
	case err := <-errc:
		if err != nil && err != http.ErrServerClosed {
			return errors.New("E030").Wrap(err)
		}
		return nil
	}
}

// Shutdown stops the update loop, closes live connections, and shuts the
// HTTP server down gracefully.
func (s *Server) Shutdown() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})

	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.conns = make(map[*websocket.Conn]struct{})
	s.mu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// updateLoop drains the scheduler signal, flushing and broadcasting
// replaced fragments to live connections.
func (s *Server) updateLoop() {
	signal := s.builder.Scheduler().Signal()
	for {
		select {
		case <-s.done:
			return
		case <-signal:
			s.flushAndBroadcast()
		}
	}
}

// fragment is one live-update message: the replaced node's path and its
// new HTML.
type fragment struct {
	Path string `json:"path"`
	HTML string `json:"html"`
}

func (s *Server) flushAndBroadcast() {
	s.treeMu.Lock()
	replaced := s.builder.Scheduler().Flush()
	frags := make([]fragment, 0, len(replaced))
	for _, n := range replaced {
		html, err := s.renderer.RenderToString(n)
		if err != nil {
			s.logger.Error("fragment render failed", "path", n.Path, "error", err)
			continue
		}
		frags = append(frags, fragment{Path: n.Path, HTML: html})
	}
	s.treeMu.Unlock()

	if len(frags) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		for _, f := range frags {
			if err := conn.WriteJSON(f); err != nil {
				s.logger.Warn("live write failed", "error", err)
				conn.Close()
				delete(s.conns, conn)
				break
			}
		}
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	s.treeMu.Lock()
	err := s.page.WriteTo(w, s.builder.Root(), s.renderer)
	s.treeMu.Unlock()
	if err != nil {
		s.logger.Error("page render failed", "error", err)
	}
}

// handleState applies a JSON object of path/value pairs to the store in
// one batch, then flushes and broadcasts the result.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var writes map[string]any
	if err := json.NewDecoder(r.Body).Decode(&writes); err != nil {
		http.Error(w, errors.Newf(errors.CategoryServe, "invalid state payload: %v", err).Error(), http.StatusBadRequest)
		return
	}

	store := s.builder.Store()
	state.Batch(func() {
		for path, value := range writes {
			store.Set(path, value)
		}
	})
	s.flushAndBroadcast()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	// Reads are discarded; the connection exists for server push. The
	// loop exits when the client goes away.
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.conns, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
