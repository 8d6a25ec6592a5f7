// Package server assembles the HTTP surface: JSON API, live-reload websocket,
// health and metrics endpoints and an optional static site directory.
package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/user/agentcatalog/internal/hub"
	"github.com/user/agentcatalog/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

type Options struct {
	Addr      string
	StaticDir string
	Hub       *hub.Hub
	Metrics   *telemetry.Metrics
	API       http.Handler
	Logger    *slog.Logger
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

func New(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
	})
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}
	if opts.Hub != nil {
		mux.HandleFunc("/ws", opts.Hub.HandleWebSocket)
	}
	if opts.API != nil {
		mux.Handle("/api/", opts.API)
	}

	if opts.StaticDir != "" {
		info, err := os.Stat(opts.StaticDir)
		if err != nil {
			return nil, fmt.Errorf("static dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("static dir %q is not a directory", opts.StaticDir)
		}
		mux.Handle("/", staticHandler(os.DirFS(opts.StaticDir)))
	}

	var handler http.Handler = mux
	handler = telemetry.AccessLog(opts.Metrics)(handler)
	handler = telemetry.RequestIDMiddleware(logger)(handler)

	return &Server{
		logger: logger,
		httpServer: &http.Server{
			Addr:              opts.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// staticHandler serves files from root and falls back to index.html so client
// side routes resolve.
func staticHandler(root fs.FS) http.Handler {
	fileServer := http.FileServer(http.FS(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/ws" {
			http.NotFound(w, r)
			return
		}

		cleanPath := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if cleanPath == "" || cleanPath == "." {
			cleanPath = "index.html"
		}

		if _, err := fs.Stat(root, cleanPath); err == nil {
			fileServer.ServeHTTP(w, r)
			return
		}
		if _, err := fs.Stat(root, "index.html"); err != nil {
			http.NotFound(w, r)
			return
		}

		fallbackReq := r.Clone(r.Context())
		fallbackURL := *r.URL
		fallbackURL.Path = "/"
		fallbackReq.URL = &fallbackURL
		fileServer.ServeHTTP(w, fallbackReq)
	})
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
