// Package server hosts the local preview of a built site: the output
// tree over HTTP, a health endpoint, and a websocket channel that tells
// open browser tabs to reload after a source change triggers a rebuild.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/inkpress-dev/inkpress/internal/build"
	"github.com/inkpress-dev/inkpress/internal/config"
)

// Status reports the server's lifecycle state.
type Status string

const (
	StatusStarting Status = "starting"
	StatusReady    Status = "ready"
	StatusDraining Status = "draining"
)

// Logger is the minimal logging surface the server needs.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Server serves the output folder and rebuilds on source changes.
type Server struct {
	settings Settings
	cfg      *config.Config
	builder  *build.Builder
	logger   Logger
	clock    func() time.Time
	hub      *hub

	mu        sync.RWMutex
	server    *http.Server
	listener  net.Listener
	status    Status
	startTime time.Time
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock allows tests to control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New prepares a preview server for the given site. builder may be nil
// when the caller only wants to serve an existing output tree.
func New(settings Settings, cfg *config.Config, builder *build.Builder, opts ...Option) *Server {
	s := &Server{
		settings: settings,
		cfg:      cfg,
		builder:  builder,
		logger:   nopLogger{},
		clock:    func() time.Time { return time.Now().UTC() },
		hub:      newHub(),
		status:   StatusStarting,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("server: already started")
	}
	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	s.listener = listener
	s.startTime = s.clock()

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet, http.MethodHead)
	router.HandleFunc("/ws", s.hub.handle)
	router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.cfg.OutputDir())))

	server := &http.Server{
		Handler:     router,
		ReadTimeout: s.settings.ReadTimeout,
		IdleTimeout: s.settings.IdleTimeout,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server
	s.status = StatusReady
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("server: serve error: %v", err)
		}
	}()
	s.logger.Printf("server: listening on %s", listener.Addr().String())
	return nil
}

// Run builds once, starts serving, watches the source trees, and blocks
// until the context ends.
func (s *Server) Run(ctx context.Context) error {
	if s.builder != nil {
		if _, err := s.builder.Run(ctx); err != nil {
			return err
		}
	}
	if err := s.Start(ctx); err != nil {
		return err
	}
	if s.builder != nil {
		w, err := newWatcher(s.settings.Debounce, func() { s.rebuild(ctx) }, s.logger)
		if err != nil {
			return s.abort(err)
		}
		for _, dir := range s.watchRoots() {
			if err := w.addTree(dir); err != nil {
				return s.abort(err)
			}
		}
		go w.run(ctx)
	}
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// abort closes the listener after a post-Start failure so Run never
// leaves the server up without its watcher. The original error wins.
func (s *Server) abort(err error) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := s.Shutdown(shutdownCtx); shutdownErr != nil {
		s.logger.Printf("server: shutdown after failed start: %v", shutdownErr)
	}
	return err
}

func (s *Server) watchRoots() []string {
	roots := s.cfg.ContentDirs()
	for _, folder := range s.cfg.ExamplesFolders() {
		roots = append(roots, folder.Source)
	}
	roots = append(roots, s.cfg.PluginsDir())
	return roots
}

// rebuild runs the pipeline after a source change and notifies every
// connected tab. Build failures are logged and the old output stays up.
func (s *Server) rebuild(ctx context.Context) {
	if _, err := s.builder.Run(ctx); err != nil {
		s.logger.Printf("server: rebuild failed: %v", err)
		return
	}
	s.hub.broadcast()
}

// Shutdown stops accepting new connections and drains in-flight
// requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil || s.server == nil {
		return nil
	}
	s.status = StatusDraining
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.listener = nil
	s.server = nil
	return nil
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the HTTP base URL for the running server.
func (s *Server) BaseURL() string {
	addr := s.Addr()
	if addr == "" {
		return s.settings.URL()
	}
	return "http://" + addr
}

// Status reports the server's lifecycle state.
func (s *Server) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

type healthResponse struct {
	Status        string `json:"status"`
	Clients       int    `json:"clients"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	started := s.startTime
	s.mu.RUnlock()
	uptime := int64(0)
	if !started.IsZero() {
		uptime = int64(s.clock().Sub(started).Seconds())
	}
	resp := healthResponse{
		Status:        string(s.Status()),
		Clients:       s.hub.count(),
		UptimeSeconds: uptime,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
