package http

import (
	"net/http"
	"time"

	"cyberhunt/internal/app"
	"cyberhunt/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Options tunes the HTTP surface.
type Options struct {
	// RefreshInterval is the leaderboard auto-refresh period per stream.
	RefreshInterval time.Duration
	// BaseURL is encoded into the join QR code. Derived from the request when empty.
	BaseURL string
}

// Server wires the game service into routes.
type Server struct {
	service *app.GameService
	admin   *app.AdminGate
	metrics *metrics.Metrics
	log     *zap.Logger
	opts    Options
	views   *views
	ws      *WSHandler
	router  *chi.Mux
}

func NewServer(service *app.GameService, admin *app.AdminGate, m *metrics.Metrics, log *zap.Logger, opts Options) *Server {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 2 * time.Second
	}
	s := &Server{
		service: service,
		admin:   admin,
		metrics: m,
		log:     log,
		opts:    opts,
		views:   mustLoadViews(),
		ws:      NewWSHandler(service, log, opts.RefreshInterval),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())
	r.Get("/qr", s.handleQR)
	r.Get("/ws/leaderboard", s.ws.ServeWS)

	r.Get("/", s.handleSetupView)
	r.Get("/game", s.handleGameView)
	r.Get("/leaderboard", s.handleLeaderboardView)
	r.Get("/admin", s.handleAdminView)
	r.Get("/static/*", s.handleStatic)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/questions", s.handleQuestions)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Post("/teams", s.handleRegisterTeam)

		r.Route("/game", func(r chi.Router) {
			r.Post("/start", s.handleStart)
			r.Post("/select", s.handleSelect)
			r.Post("/answer", s.handleAnswer)
			r.Post("/hint", s.handleHint)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", s.handleAdminLogin)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Post("/game/start", s.handleStart)
				r.Post("/game/stop", s.handleStop)
				r.Post("/game/reset", s.handleReset)
				r.Post("/teams", s.handleAdminAddTeam)
				r.Delete("/teams/{id}", s.handleRemoveTeam)
				r.Post("/questions/reload", s.handleReloadQuestions)
			})
		})
	})

	s.router = r
}
