// Package httpapi serves stored artifacts over HTTP: screenshots taken by
// the local store, and images uploaded to the standalone image server.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"browser-mcp/internal/application/port/output"
	"browser-mcp/internal/infrastructure/artifact"
	"browser-mcp/internal/infrastructure/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog"
	"github.com/rs/zerolog"
	"golang.org/x/net/netutil"
)

const (
	maxUploadBytes  = 32 << 20
	shutdownTimeout = 5 * time.Second
)

type Config struct {
	Host string
	Port int
	// PublicURL overrides the base of returned upload URLs.
	PublicURL string
	// Token enables bearer authentication on mutating routes.
	Token          string
	MaxConnections int

	// Screenshots enables GET /screenshots/{name}.
	Screenshots *artifact.DiskStore
	// Uploads enables the /upload and /uploads routes.
	Uploads *artifact.DiskStore
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprint(c.Port))
}

// BaseURL is where clients reach the server.
func (c Config) BaseURL() string {
	if c.PublicURL != "" {
		return c.PublicURL
	}
	host := c.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, fmt.Sprint(c.Port))
}

type Server struct {
	cfg    Config
	logger output.LoggerPort
	reqLog zerolog.Logger
	router chi.Router
}

func NewServer(cfg Config, logger output.LoggerPort) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger.WithField("component", "artifact_server"),
		reqLog: zerolog.New(os.Stderr).With().Timestamp().Str("service", "artifact-server").Logger(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httplog.RequestLogger(s.reqLog))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", metrics.Handler().ServeHTTP)

	if s.cfg.Screenshots != nil {
		r.Get("/screenshots/{name}", s.handleScreenshot)
	}

	if s.cfg.Uploads != nil {
		r.Get("/uploads/{filename}", s.handleGetUpload)
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/upload", s.handleUpload)
			r.Delete("/uploads/{filename}", s.handleDeleteUpload)
			r.Delete("/uploads", s.handleClearUploads)
		})
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})
	return r
}

// Serve listens on cfg.Addr until ctx is cancelled, then shuts down
// gracefully. ready, when non-nil, receives the bound address.
func (s *Server) Serve(ctx context.Context, ready func(addr net.Addr)) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr(), err)
	}
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}
	if ready != nil {
		ready(ln.Addr())
	}

	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info("artifact server listening", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("artifact server shutting down")
		return httpServer.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}
