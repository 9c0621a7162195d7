package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/docquery/internal/config"
	"github.com/dgallion1/docquery/internal/pipeline"
)

// Service is the query pipeline surface the HTTP layer depends on.
type Service interface {
	Run(ctx context.Context, documentURL string, questions []string) []string
	Status(ctx context.Context) pipeline.Status
	ClearIndex(ctx context.Context) error
}

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	service Service
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(service Service, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		service: service,
		log:     log,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APISecret, s.log))

		r.Post("/api/v1/query", s.handleQuery)
		r.Get("/api/v1/status", s.handleStatus)
		r.Delete("/api/v1/index", s.handleClearIndex)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
