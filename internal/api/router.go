package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/docqa/internal/api/handlers"
	"github.com/nikhilbhutani/docqa/internal/api/middleware"
	"github.com/nikhilbhutani/docqa/internal/auth"
	"github.com/nikhilbhutani/docqa/internal/config"
	"github.com/nikhilbhutani/docqa/internal/document"
	"github.com/nikhilbhutani/docqa/internal/metrics"
	"github.com/nikhilbhutani/docqa/internal/qa"
)

// Generator is the generation client as the router sees it: the completion
// call plus its readiness. *llm.Gateway satisfies it.
type Generator interface {
	qa.Generator
	handlers.GenerationStatus
}

type Router struct {
	mux     *chi.Mux
	cfg     *config.Config
	store   *document.Store
	gen     Generator
	redis   *redis.Client
	limiter *middleware.RateLimiter
}

// NewRouter wires the HTTP surface. rdb may be nil, in which case rate
// limiting stays in process.
func NewRouter(cfg *config.Config, store *document.Store, gen Generator, rdb *redis.Client) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		cfg:   cfg,
		store: store,
		gen:   gen,
		redis: rdb,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	if rt.cfg.Server.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.Server.AllowedOrigins))

	reg := metrics.NewRegistry()
	metrics.DocumentsStored.Set(float64(rt.store.Count()))

	// Health and metrics (no auth, no rate limit)
	health := handlers.NewHealthHandler(rt.cfg.App.Version, rt.store, rt.gen, rt.redis)
	r.Get("/health", health.Health)
	r.Get("/readyz", health.Readyz)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Initialize services
	docSvc := document.NewService(rt.store, rt.cfg.Limits.MaxUploadBytes)
	qaSvc := qa.NewService(rt.store, rt.gen, qa.Options{
		Model:             rt.cfg.LLM.Model,
		Temperature:       rt.cfg.LLM.Temperature,
		MaxTokens:         rt.cfg.LLM.MaxTokens,
		ContextMaxChars:   rt.cfg.Limits.ContextMaxChars,
		MaxQuestionLength: rt.cfg.Limits.MaxQuestionLength,
	})

	docH := handlers.NewDocumentHandler(rt.store, docSvc, rt.cfg.Limits.MaxUploadBytes)
	askH := handlers.NewAskHandler(qaSvc)

	r.Route("/documents", func(r chi.Router) {
		if rt.cfg.Auth.JWTSecret != "" {
			r.Use(auth.NewJWTMiddleware(rt.cfg.Auth.JWTSecret).Authenticate)
		}
		r.Use(rt.rateLimit())

		r.Post("/", docH.Create)
		r.Get("/", docH.List)
		r.Post("/upload", docH.Upload)
		r.Get("/{id}", docH.Get)
		r.Delete("/{id}", docH.Delete)
		r.Post("/{id}/ask", askH.Ask)
	})

	return r
}

func (rt *Router) rateLimit() func(http.Handler) http.Handler {
	if rt.redis != nil {
		return middleware.RedisRateLimit(rt.redis, rt.cfg.RateLimit.RPS, rt.cfg.RateLimit.Burst, time.Second)
	}
	rt.limiter = middleware.NewRateLimiter(rt.cfg.RateLimit.RPS, rt.cfg.RateLimit.Burst)
	return rt.limiter.Limit
}

// Close releases background resources started by Setup.
func (rt *Router) Close() {
	if rt.limiter != nil {
		rt.limiter.Close()
	}
}
