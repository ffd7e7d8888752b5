// Package httpserver wraps http.Server with the timeouts the service uses
// everywhere, so main only decides the address and the handler.
package httpserver

import (
	"context"
	"net/http"
	"time"
)

type Server struct {
	srv *http.Server
}

func New(addr string, handler http.Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			// Document uploads and synchronous chain writes can legitimately
			// take a while; the per-request middleware timeout is the real bound.
			ReadTimeout:  2 * time.Minute,
			WriteTimeout: 3 * time.Minute,
			IdleTimeout:  2 * time.Minute,
		},
	}
}

func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
