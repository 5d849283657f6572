package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/studiowebux/taskdeck/internal/api"
	"github.com/studiowebux/taskdeck/internal/events"
	"github.com/studiowebux/taskdeck/internal/store"
)

// Collections served by the backend
var Collections = []string{api.CollectionTasks, api.CollectionHabits, api.CollectionSchedules}

const shutdownTimeout = 5 * time.Second

// Server is the task backend: chi routes over a SQLite store
type Server struct {
	store      *store.Store
	logger     *zap.Logger
	hub        *events.Hub
	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a backend over st
func New(st *store.Store, opts ...Option) *Server {
	s := &Server{
		store:  st,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = events.NewHub(s.logger)
	return s
}

// Events returns the hub behind the change feed
func (s *Server) Events() *events.Hub {
	return s.hub
}

// Handler returns the HTTP handler serving every collection
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(s.logger))
	r.Use(recoverer(s.logger))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	for _, collection := range Collections {
		h := &collectionHandler{name: collection, store: s.store, logger: s.logger, hub: s.hub}
		r.Route("/"+collection, func(r chi.Router) {
			r.Get("/", h.list)
			r.Post("/", h.create)
			r.Get("/{id}", h.get)
			r.Put("/{id}", h.update)
			r.Delete("/{id}", h.delete)
		})
	}

	// Change feed for clients that keep a view open
	r.Get(events.Path, s.hub.ServeHTTP)

	return r
}

// Start listens on addr and serves in the background.
// Use port 0 to pick a free port; Address reports the bound one.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer != nil {
		return fmt.Errorf("server already started on %s", s.listener.Addr())
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("backend stopped", zap.Error(err))
		}
	}(s.httpServer)

	s.logger.Info("backend listening", zap.String("address", s.Address()))
	return nil
}

// Stop shuts the server down, waiting for in-flight requests
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	// Shutdown does not wait for hijacked websockets
	s.hub.Close()
	return srv.Shutdown(ctx)
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	if err := s.Start(addr); err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Stop(shutdownCtx)
}

// Address returns the base URL of a started server
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}
	return "http://" + s.listener.Addr().String()
}
