package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/easyfitness/easyfitness-data/docs"
	"github.com/easyfitness/easyfitness-data/internal/api/handler"
	"github.com/easyfitness/easyfitness-data/internal/cache"
	"github.com/easyfitness/easyfitness-data/internal/config"
	"github.com/easyfitness/easyfitness-data/internal/db"
	"github.com/easyfitness/easyfitness-data/internal/reference"
)

// Deps bundles the services the router hands to the handlers.
type Deps struct {
	Pool    *db.Pool
	Cache   *cache.Cache
	Catalog handler.CatalogService
	AI      handler.PlanService
	Enrich  handler.Enricher
	Store   reference.Store
}

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(cfg *config.Config, deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "Link", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(deps.Pool, deps.Cache, cfg, deps.Catalog, deps.AI, deps.Enrich, deps.Store)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
		r.Get("/exercisedb", h.HealthCheckExerciseDB)
		r.Get("/ai", h.HealthCheckAI)
	})

	// Swagger UI backed by the embedded OpenAPI document.
	r.Get("/docs/doc.json", docs.ServeOpenAPI)
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// AI plan generation
		r.Post("/ai/workout-plan", h.GenerateWorkoutPlan)
		r.Post("/ai/meal-plan", h.GenerateMealPlan)

		// Exercise catalog
		r.Get("/exercises", h.ListExercises)
		r.Get("/exercises/search", h.SearchExercises)
		r.Get("/exercises/{id}", h.GetExerciseByID)

		// Reference data
		r.Get("/reference", h.GetReferenceData)
		r.Get("/reference/db", h.GetReferenceTables)
	})

	return r
}
