// Package api serves the pipeline and open documents over HTTP.
//
// Routes:
//
//	GET    /health
//	GET    /v1/version
//	POST   /v1/canonical
//	POST   /v1/layout
//	POST   /v1/documents
//	GET    /v1/documents/{id}
//	DELETE /v1/documents/{id}
//	POST   /v1/documents/{id}/delete
//	POST   /v1/documents/{id}/replace
//	POST   /v1/documents/{id}/connect
//	GET    /v1/documents/{id}/layout
//
// Failures are returned as an [ErrorResponse] carrying the error code.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/helmdraw/pkg/document"
	"github.com/matzehuels/helmdraw/pkg/pipeline"
)

const (
	DefaultAddr         = "127.0.0.1:8080"
	DefaultMaxBodyBytes = 1 << 20
	shutdownTimeout     = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	Addr           string
	AllowedOrigins []string // CORS is disabled when empty
	MaxBodyBytes   int64
	// CleanupInterval is how often idle documents are closed. Zero disables
	// the sweep.
	CleanupInterval time.Duration
	Logger          *log.Logger
}

// Server is the HTTP front end.
type Server struct {
	runner   *pipeline.Runner
	docs     *document.Store
	validate *validator.Validate
	logger   *log.Logger
	cfg      Config
}

// New creates a server backed by runner and docs.
func New(runner *pipeline.Runner, docs *document.Store, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Server{
		runner:   runner,
		docs:     docs,
		validate: newValidator(),
		logger:   cfg.Logger,
		cfg:      cfg,
	}
}

// Handler returns the router with all middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.health)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/version", s.version)
		r.Post("/canonical", s.canonical)
		r.Post("/layout", s.layout)

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", s.createDocument)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getDocument)
				r.Delete("/", s.closeDocument)
				r.Post("/delete", s.deleteSelection)
				r.Post("/replace", s.replaceNode)
				r.Post("/connect", s.connect)
				r.Get("/layout", s.documentLayout)
			})
		})
	})
	return r
}

// Serve listens on the configured address until ctx is cancelled, then
// drains in-flight requests.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.CleanupInterval > 0 {
		go s.docs.RunCleanup(ctx, s.cfg.CleanupInterval)
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
