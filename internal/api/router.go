package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/doxastic/beliefd/internal/api/handlers"
	mw "github.com/doxastic/beliefd/internal/api/middleware"
	"github.com/doxastic/beliefd/internal/buildconfig"
	"github.com/doxastic/beliefd/internal/config"
	"github.com/doxastic/beliefd/internal/domain"
	"github.com/doxastic/beliefd/internal/service"
	"github.com/doxastic/beliefd/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router *chi.Mux
	Decay  *service.DecayService

	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	floor := config.MinConfidenceFloor()
	dims := config.FingerprintDims()

	// Stores
	beliefStore := store.NewBeliefStore(db, floor, config.ConfidenceDecayPerDay())
	eventStore := store.NewEventStore(db)
	sessionStore := store.NewSessionStore(db)

	// Services
	beliefSvc := service.NewBeliefService(beliefStore, dims, floor, logger)
	retrievalSvc := service.NewRetrievalService(beliefStore, dims, logger)
	trackerSvc := service.NewTrackerService(beliefStore, config.ContradictionThreshold(), logger)
	decaySvc := service.NewDecayService(beliefStore, logger)
	decaySvc.SetInterval(config.DecayInterval())

	// Handlers
	beliefHandler := handlers.NewBeliefHandler(beliefSvc)
	searchHandler := handlers.NewSearchHandler(retrievalSvc)
	trackHandler := handlers.NewTrackHandler(trackerSvc)
	cognitiveHandler := handlers.NewCognitiveHandler(decaySvc, beliefSvc)
	eventHandler := handlers.NewEventHandler(eventStore)
	sessionHandler := handlers.NewSessionHandler(sessionStore)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Decay:     decaySvc,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health and metrics (no auth)
	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(config.APIKey()))

		r.Route("/beliefs", func(r chi.Router) {
			r.Post("/", beliefHandler.Create)
			r.Get("/", beliefHandler.List)
			r.Get("/domain/{domain}", beliefHandler.ByDomain)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", beliefHandler.GetByID)
				r.Patch("/", beliefHandler.Update)
				r.Delete("/", beliefHandler.Invalidate)
				r.Post("/reinforce", trackHandler.Reinforce)
				r.Post("/contradict", trackHandler.Contradict)
				r.Get("/review", trackHandler.Review)
			})
		})

		r.Get("/search", searchHandler.Search)

		r.Route("/cognitive", func(r chi.Router) {
			r.Post("/decay", cognitiveHandler.TriggerDecay)
		})
		r.Get("/stats/domains", cognitiveHandler.DomainStats)

		r.Route("/events", func(r chi.Router) {
			r.Post("/", eventHandler.Append)
			r.Get("/", eventHandler.List)
			r.Get("/{id}", eventHandler.GetByID)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)
			r.Get("/", sessionHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.GetByID)
				r.Post("/end", sessionHandler.End)
			})
		})
	})

	return app
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"build":      buildconfig.VersionInfo(),
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores satisfy the domain interfaces at compile time.
var (
	_ domain.BeliefStore  = (*store.BeliefStore)(nil)
	_ domain.EventStore   = (*store.EventStore)(nil)
	_ domain.SessionStore = (*store.SessionStore)(nil)
)
