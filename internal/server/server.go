package server

import (
	"context"
	"net/http"
	"time"
)

type Config struct {
	ListenAddr string
}

type Server struct {
	cfg     Config
	httpSrv *http.Server
}

func New(cfg Config, app *App) *Server {
	return &Server{
		cfg: cfg,
		httpSrv: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           app.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// ListenAndServe blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) ListenAndServe() error {
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}
