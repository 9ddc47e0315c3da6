package http

import (
	"context"
	stdhttp "net/http"
	"time"
)

// Server envuelve http.Server con timeouts razonables y shutdown gracioso.
type Server struct {
	srv *stdhttp.Server
}

// NewServer crea el servidor HTTP listo para Start.
func NewServer(addr string, handler stdhttp.Handler) *Server {
	return &Server{
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Start bloquea sirviendo requests hasta Shutdown o error.
func (s *Server) Start() error {
	err := s.srv.ListenAndServe()
	if err == stdhttp.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drena conexiones en curso respetando el deadline del contexto.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
