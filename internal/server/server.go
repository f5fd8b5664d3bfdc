// Package server provides the HTTP server and routing for the trit service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/di"
	diagnosticshandlers "github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/diagnostics/handlers"
	stabilityhandlers "github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/stability/handlers"
	trithandlers "github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/trit/handlers"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Port      int
	DevMode   bool
	Container *di.Container // DI container with all services
	Jobs      *di.JobInstances
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	port           int
	container      *di.Container
	systemHandlers *SystemHandlers
	eventsStream   *EventsStreamHandler
	statusMonitor  *StatusMonitor
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	systemHandlers := NewSystemHandlers(cfg.Log, cfg.Container, cfg.Jobs)

	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		port:           cfg.Port,
		container:      cfg.Container,
		systemHandlers: systemHandlers,
		eventsStream:   NewEventsStreamHandler(cfg.Container.EventBus, cfg.Log),
	}

	s.statusMonitor = NewStatusMonitor(cfg.Container.EventManager, cfg.Container.SessionRegistry, cfg.Log)

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// Event streams are long-lived; other routes are bounded by middleware.Timeout
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	if s.container.Metrics != nil {
		s.router.Handle("/metrics", s.container.Metrics.Handler())
	}

	s.router.Route("/api", func(r chi.Router) {
		// Unified event streams (SSE and WebSocket), not subject to the request timeout
		r.Get("/events/stream", s.eventsStream.ServeSSE)
		r.Get("/events/ws", s.eventsStream.ServeWS)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Route("/system", func(r chi.Router) {
				r.Get("/status", s.systemHandlers.HandleSystemStatus)
				r.Post("/jobs/drift", s.systemHandlers.HandleTriggerDrift)
			})

			trithandlers.NewHandler(s.log).RegisterRoutes(r)

			stabilityhandlers.NewHandler(
				s.container.SessionRegistry,
				s.container.Config.Stability,
				s.log,
			).RegisterRoutes(r)

			diagnosticshandlers.NewHandler(s.log).RegisterRoutes(r)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	// Start status monitor (check every 60 seconds)
	if s.statusMonitor != nil {
		s.statusMonitor.Start(60 * time.Second)
		s.log.Info().Msg("Status monitor started")
	}

	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	if s.statusMonitor != nil {
		s.statusMonitor.Stop()
	}
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if s.container.Metrics != nil {
			s.container.Metrics.HTTPRequest(r.Method, ww.Status())
		}

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
