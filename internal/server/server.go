// Package server exposes a liquid world over HTTP and websockets.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"liquid-ca/internal/server/middleware"
)

// DefaultAddr is the listen address used when none is given.
const DefaultAddr = ":5808"

// HTTPServer serves the API routes. It implements Component.
type HTTPServer struct {
	router chi.Router
	server *http.Server
	addr   string
}

// NewHTTPServer builds the router for driver and binds it to addr.
func NewHTTPServer(addr string, driver *Driver, log *slog.Logger) *HTTPServer {
	if addr == "" {
		addr = DefaultAddr
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(log))
	r.Use(middleware.Recover)
	r.Use(middleware.Compression)
	h := &handlers{driver: driver, log: log}
	r.Route("/v1", func(v1 chi.Router) {
		v1.Get("/state", h.state)
		v1.Get("/stats", h.stats)
		v1.Get("/params", h.params)
		v1.Post("/params", h.setParam)
		v1.Post("/paint", h.paint)
		v1.Post("/reset", h.reset)
		v1.Post("/pause", h.pause)
		v1.Post("/step", h.step)
		v1.Get("/ws", h.stream)
	})
	return &HTTPServer{
		router: r,
		server: &http.Server{
			Addr:        addr,
			Handler:     r,
			ReadTimeout: 10 * time.Second,
			IdleTimeout: 120 * time.Second,
		},
		addr: addr,
	}
}

// Handler exposes the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler { return s.router }

// Address returns the listen address.
func (s *HTTPServer) Address() string { return s.addr }

// Run listens until Shutdown.
func (s *HTTPServer) Run() error {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and drains active requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
