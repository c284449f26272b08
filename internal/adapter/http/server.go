package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/simaogato/fundbalance-backend/internal/usecase/dashboard"
	"github.com/simaogato/fundbalance-backend/internal/usecase/history"
	"github.com/simaogato/fundbalance-backend/internal/usecase/portfolio"
	"github.com/simaogato/fundbalance-backend/internal/usecase/rebalance"
)

// Config holds server configuration
type Config struct {
	Log            zerolog.Logger
	Port           int
	HistoryLimit   int      // Used when a history request has no valid limit
	RateLimitRPS   float64  // Mutating requests per second; 0 disables the limiter
	AllowedOrigins []string // CORS origins; empty allows any

	PortfolioService *portfolio.PortfolioService
	RebalanceService *rebalance.RebalanceService
	HistoryService   *history.HistoryService
	DashboardService *dashboard.DashboardService
}

// Server represents the HTTP API gateway
type Server struct {
	router  *chi.Mux
	server  *http.Server
	log     zerolog.Logger
	port    int
	limiter *rate.Limiter

	historyLimit int

	portfolio *portfolio.PortfolioService
	rebalance *rebalance.RebalanceService
	history   *history.HistoryService
	dashboard *dashboard.DashboardService
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		log:          cfg.Log.With().Str("component", "http").Logger(),
		port:         cfg.Port,
		historyLimit: cfg.HistoryLimit,
		portfolio:    cfg.PortfolioService,
		rebalance:    cfg.RebalanceService,
		history:      cfg.HistoryService,
		dashboard:    cfg.DashboardService,
	}
	if s.historyLimit <= 0 {
		s.historyLimit = history.DefaultLimit
	}
	if cfg.RateLimitRPS > 0 {
		burst := int(cfg.RateLimitRPS)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}

	s.setupMiddleware(cfg.AllowedOrigins)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(allowedOrigins []string) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/buckets", s.handleListBuckets)
		r.Get("/overview", s.handleOverview)

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimitMiddleware)

			r.Post("/funds", s.handleAddFund)
			r.Put("/funds", s.handleUpdateFundField)
			r.Patch("/funds", s.handlePatchFund)
			r.Delete("/funds", s.handleDeleteFund)
			r.Post("/rebalance", s.handleRebalance)
		})

		r.Get("/rebalance/history", s.handleListHistory)
		r.Get("/rebalance/history/chart.png", s.handleHistoryChart)
		r.Get("/rebalance/history/{id}", s.handleGetHistory)
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

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

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			writeMessage(w, http.StatusTooManyRequests, "too many requests, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}
