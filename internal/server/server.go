// Package server provides the HTTP server and routing for Varuna.
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

	"github.com/varuna/varuna/internal/config"
	"github.com/varuna/varuna/internal/di"
	analyticshandlers "github.com/varuna/varuna/internal/modules/analytics/handlers"
	bankinghandlers "github.com/varuna/varuna/internal/modules/banking/handlers"
	compliancehandlers "github.com/varuna/varuna/internal/modules/compliance/handlers"
	poolinghandlers "github.com/varuna/varuna/internal/modules/pooling/handlers"
	routeshandlers "github.com/varuna/varuna/internal/modules/routes/handlers"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Container *di.Container
	Port      int
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
	eventsStream   *EventsStreamHandler
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg.Config,
		container: cfg.Container,
		systemHandlers: NewSystemHandlers(
			cfg.Log,
			cfg.Container.Databases,
			cfg.Container.Scheduler,
		),
		eventsStream: NewEventsStreamHandler(cfg.Container.EventManager, cfg.Log),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE connections stay open indefinitely
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	routesHandler := routeshandlers.NewHandler(s.container.RoutesService, s.log)
	complianceHandler := compliancehandlers.NewHandler(s.container.ComplianceService, s.log)
	bankingHandler := bankinghandlers.NewHandler(s.container.BankingService, s.log)
	poolingHandler := poolinghandlers.NewHandler(s.container.PoolingService, s.log)
	analyticsHandler := analyticshandlers.NewHandler(s.container.AnalyticsService, s.log)

	s.router.Get("/health", s.systemHandlers.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/routes", func(r chi.Router) {
			r.Get("/", routesHandler.HandleListRoutes)
			r.Get("/comparison", routesHandler.HandleComparison)
			r.Post("/{routeID}/baseline", routesHandler.HandleSetBaseline)
		})

		r.Route("/compliance", func(r chi.Router) {
			r.Get("/cb", complianceHandler.HandleGetBalance)
			r.Get("/adjusted-cb", complianceHandler.HandleGetAdjustedBalance)
		})

		r.Route("/banking", func(r chi.Router) {
			r.Get("/records", bankingHandler.HandleGetRecords)
			r.Post("/bank", bankingHandler.HandleBank)
			r.Post("/apply", bankingHandler.HandleApply)
		})

		r.Route("/pools", func(r chi.Router) {
			r.Post("/", poolingHandler.HandleCreatePool)
			r.Get("/", poolingHandler.HandleListPools)
			r.Get("/{poolID}", poolingHandler.HandleGetPool)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/fleet", analyticsHandler.HandleGetFleetStats)
		})

		r.Route("/system", func(r chi.Router) {
			r.Get("/info", s.systemHandlers.HandleSystemInfo)
			r.Get("/jobs", s.systemHandlers.HandleListJobs)
			r.Post("/jobs/{jobName}/run", s.systemHandlers.HandleRunJob)
		})

		r.Get("/events/stream", s.eventsStream.ServeHTTP)
	})
}

// requestLogger logs each request with zerolog
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration_ms", time.Since(start)).
			Msg("Request handled")
	})
}

// Router exposes the router, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server starting")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("HTTP server shutting down")
	return s.server.Shutdown(ctx)
}
