// Package api exposes the session store over HTTP: huma operations on a chi
// router, plus the SSE event stream.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/xkazm04/goat-sub002/internal/ratelimit"
	"github.com/xkazm04/goat-sub002/internal/sessionstore"
	"github.com/xkazm04/goat-sub002/internal/sse"
	"github.com/xkazm04/goat-sub002/internal/validation"
)

// Options configures the HTTP surface.
type Options struct {
	// CORSOrigins lists allowed origins; empty allows any.
	CORSOrigins []string
	// RequestsPerSecond per client IP; 0 disables rate limiting.
	RequestsPerSecond float64
	Burst             int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	sessions   *sessionstore.Store
	sseManager *sse.Manager
	validator  *validation.Validator
	limiter    *ratelimit.KeyedRateLimiter
	router     *chi.Mux
	api        huma.API
	logger     *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(sessions *sessionstore.Store, sseManager *sse.Manager, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		sessions:   sessions,
		sseManager: sseManager,
		validator:  validation.New(),
		router:     chi.NewRouter(),
		logger:     logger,
	}
	if opts.RequestsPerSecond > 0 {
		s.limiter = ratelimit.New(opts.RequestsPerSecond, max(opts.Burst, 1))
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("Goat Ranking Sessions API", "1.0.0")
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerSessionRoutes()
	s.registerBacklogRoutes()
	s.registerGridRoutes()

	if sseManager != nil {
		s.router.Get("/api/v1/events", sse.NewHandler(sseManager, logger.With("component", "sse")).ServeHTTP)
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, used for OpenAPI generation and tests.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	if s.limiter != nil {
		s.router.Use(RateLimitMiddleware(s.limiter, s.logger))
	}
}
