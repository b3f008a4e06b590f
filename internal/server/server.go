// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nats-io/nats.go"

	"sovlens/internal/config"
	"sovlens/internal/pkg/logger"
	"sovlens/internal/server/handlers"
	"sovlens/internal/service/analysis"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	analysisCfg config.AnalysisConfig,
	natsConn *nats.Conn,
	runner *analysis.Runner,
	log *logger.Logger,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	runHandler := handlers.NewRunHandler(runner)
	configHandler := handlers.NewConfigHandler(analysisCfg)

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			r.Get("/config", configHandler.GetConfig)

			// Runs API
			r.Route("/runs", func(r chi.Router) {
				r.Get("/", runHandler.ListRuns)
				r.Post("/", runHandler.CreateRun)
				r.Get("/{id}", runHandler.GetRun)
				r.Get("/{id}/scores", runHandler.GetScores)
				r.Get("/{id}/insights", runHandler.GetInsights)
			})
		})
	})

	// WebSocket endpoint for run lifecycle events
	router.Get("/ws/runs/{id}", handlers.RunWebSocketHandler(natsConn, analysisCfg.EventsTopic, log))

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
