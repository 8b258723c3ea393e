// internal/feed/server.go
package feed

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jason-s-yu/blackjack/internal/middleware"
	"github.com/sirupsen/logrus"
)

// NewRouter exposes the hub:
//
//	GET /ping      heartbeat
//	GET /snapshot  latest session snapshot as JSON
//	GET /feed      websocket stream of snapshots
func NewRouter(h *Hub, logger *logrus.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/ping"))
	r.Use(middleware.LogMiddleware(logger))

	r.Get("/snapshot", h.ServeSnapshot)
	r.Get("/feed", h.ServeWS)
	return r
}

// Server serves a hub on a TCP address.
type Server struct {
	srv    *http.Server
	ln     net.Listener
	logger *logrus.Logger
}

// Listen binds addr and prepares the feed server. Call Serve to start it.
func Listen(addr string, h *Hub, logger *logrus.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		srv: &http.Server{
			Handler:     NewRouter(h, logger),
			ReadTimeout: 10 * time.Second,
		},
		ln:     ln,
		logger: logger,
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve blocks until the server is shut down.
func (s *Server) Serve() error {
	s.logger.Infof("Snapshot feed listening on %s", s.ln.Addr())
	if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for handlers to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
