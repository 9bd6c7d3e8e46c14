// Package devtools exposes a running engine over HTTP for live
// inspection.
//
// Endpoints:
//   - GET /healthz: liveness probe
//   - GET /snapshot: registered cells and engine counters as JSON
//   - GET /metrics: Prometheus text exposition
//   - GET /ws: WebSocket stream of engine events
//
// # Quick Start
//
//	srv := devtools.New(devtools.WithAddr("127.0.0.1:6360"))
//	go srv.Run()
//	defer srv.Shutdown(context.Background())
//
// Run attaches the event feed to the engine for the lifetime of the
// server. A Server also implements http.Handler, so it can be mounted
// inside a larger router instead:
//
//	srv := devtools.New()
//	defer srv.Attach()()
//	r.Mount("/debug/quiver", srv)
package devtools

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quiver-dev/quiver"
	"github.com/quiver-dev/quiver/pkg/store"
)

// Config holds devtools server configuration.
type Config struct {
	// Addr is the listen address. The default binds loopback only;
	// the feed has no authentication.
	// Default: "127.0.0.1:6360"
	Addr string

	// Store is the cell registry served by GET /snapshot.
	// Default: store.Default()
	Store *store.Store

	// EventBuffer is the capacity of the event queue between the
	// engine and the broadcast loop.
	// Default: 256
	EventBuffer int

	// MaxEventsPerSecond caps events forwarded to clients. Events past
	// the cap count as dropped. Zero means no cap.
	MaxEventsPerSecond int

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 5s
	ShutdownTimeout time.Duration

	// ReadHeaderTimeout guards against slow-header clients.
	// Default: 10s
	ReadHeaderTimeout time.Duration

	// Logger receives lifecycle logs.
	// Default: slog.Default()
	Logger *slog.Logger
}

// Option configures the devtools server.
type Option func(*Config)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(c *Config) {
		c.Addr = addr
	}
}

// WithStore sets the store served by GET /snapshot.
func WithStore(s *store.Store) Option {
	return func(c *Config) {
		c.Store = s
	}
}

// WithEventBuffer sets the event queue capacity.
func WithEventBuffer(n int) Option {
	return func(c *Config) {
		c.EventBuffer = n
	}
}

// WithMaxEventsPerSecond caps the events forwarded per second.
func WithMaxEventsPerSecond(n int) Option {
	return func(c *Config) {
		c.MaxEventsPerSecond = n
	}
}

// WithShutdownTimeout sets the graceful shutdown deadline.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.ShutdownTimeout = d
	}
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

func defaultConfig() *Config {
	return &Config{
		Addr:              "127.0.0.1:6360",
		EventBuffer:       256,
		ShutdownTimeout:   5 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Server serves the inspection endpoints.
type Server struct {
	config     *Config
	feed       *Feed
	router     *chi.Mux
	httpServer *http.Server
	logger     *slog.Logger
	detach     func()
}

// New creates a devtools server. The event feed does not receive
// engine events until Run or Attach is called.
func New(opts ...Option) *Server {
	config := defaultConfig()
	for _, opt := range opts {
		opt(config)
	}
	if config.Store == nil {
		config.Store = store.Default()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	s := &Server{
		config: config,
		feed:   NewFeed(config.EventBuffer, config.MaxEventsPerSecond),
		logger: config.Logger.With("component", "devtools"),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/snapshot", s.handleSnapshot)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", s.feed.HandleWebSocket)
	s.router = r

	return s
}

// ServeHTTP serves the devtools routes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Feed returns the event feed, for manual registration or for reading
// its drop counter.
func (s *Server) Feed() *Feed {
	return s.feed
}

// Attach registers the event feed with the engine and returns a
// function that detaches it again.
func (s *Server) Attach() (detach func()) {
	return quiver.RegisterInstrument(s.feed)
}

// Run attaches the feed, starts the server, and blocks until shutdown.
func (s *Server) Run() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	s.detach = s.Attach()

	// Set up graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Error channel for ListenAndServe
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("devtools listening", "address", s.config.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	// Wait for shutdown signal or error
	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil

	case <-shutdown:
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown detaches the feed from the engine, closes client
// connections, and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.detach != nil {
		s.detach()
	}
	s.feed.Close()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("devtools shutdown complete")
	return nil
}

type healthResponse struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(healthResponse{
		Status:  "ok",
		Clients: s.feed.ClientCount(),
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := TakeSnapshot(s.config.Store)
	snap.Clients = s.feed.ClientCount()
	snap.DroppedEvents = s.feed.Dropped()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.logger.Error("snapshot encode failed", "error", err)
	}
}

// EngineCounters mirrors quiver.EngineStats with JSON field names.
type EngineCounters struct {
	SignalsCreated uint64 `json:"signals_created"`
	MemosCreated   uint64 `json:"memos_created"`
	EffectsCreated uint64 `json:"effects_created"`
	ActiveEffects  int64  `json:"active_effects"`
	Flushes        uint64 `json:"flushes"`
	FlushRounds    uint64 `json:"flush_rounds"`
}

// Snapshot is the document served by GET /snapshot.
type Snapshot struct {
	TakenAt       time.Time        `json:"taken_at"`
	Cells         []store.CellInfo `json:"cells"`
	Engine        EngineCounters   `json:"engine"`
	Clients       int              `json:"clients"`
	DroppedEvents uint64           `json:"dropped_events"`
}

// TakeSnapshot captures the registered cells of the given store and
// the engine counters. A nil store reads the package default store.
// Dirty memos are evaluated, so taking a snapshot is not free.
func TakeSnapshot(st *store.Store) Snapshot {
	if st == nil {
		st = store.Default()
	}

	stats := quiver.Stats()
	return Snapshot{
		TakenAt: time.Now().UTC(),
		Cells:   st.Snapshot(),
		Engine: EngineCounters{
			SignalsCreated: stats.SignalsCreated,
			MemosCreated:   stats.MemosCreated,
			EffectsCreated: stats.EffectsCreated,
			ActiveEffects:  stats.ActiveEffects,
			Flushes:        stats.Flushes,
			FlushRounds:    stats.FlushRounds,
		},
	}
}
