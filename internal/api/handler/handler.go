// Package handler provides HTTP handlers for all API endpoints.
// Handlers hold narrow service interfaces so tests can substitute mocks.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/easyfitness/easyfitness-data/internal/api/respond"
	"github.com/easyfitness/easyfitness-data/internal/cache"
	"github.com/easyfitness/easyfitness-data/internal/config"
	"github.com/easyfitness/easyfitness-data/internal/db"
	"github.com/easyfitness/easyfitness-data/internal/enrich"
	"github.com/easyfitness/easyfitness-data/internal/exercisedb"
	"github.com/easyfitness/easyfitness-data/internal/fault"
	"github.com/easyfitness/easyfitness-data/internal/plan"
	"github.com/easyfitness/easyfitness-data/internal/reference"
)

// CatalogService is the slice of the ExerciseDB client the handlers use.
type CatalogService interface {
	TestConnection(ctx context.Context) (bool, string)
	SearchExercises(ctx context.Context, term string) ([]exercisedb.SearchResult, error)
	GetExercises(ctx context.Context, name, keywords string, limit int) ([]exercisedb.SearchResult, error)
	GetExerciseByID(ctx context.Context, id string) (*exercisedb.ExerciseDetail, error)
	GetReferenceData(ctx context.Context) (*exercisedb.ReferenceData, error)
}

// PlanService is the slice of the generation client the handlers use.
type PlanService interface {
	TestConnection(ctx context.Context) (bool, string)
	GenerateWorkoutPlan(ctx context.Context, req plan.Request) (*plan.WorkoutPlan, bool, error)
	GenerateMealPlan(ctx context.Context, req plan.Request) (*plan.MealPlan, bool, error)
}

// Enricher resolves generated plans against the catalog.
type Enricher interface {
	EnrichWorkoutPlan(ctx context.Context, p *plan.WorkoutPlan) (*enrich.EnrichedPlan, error)
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	pool    *db.Pool
	cache   *cache.Cache
	cfg     *config.Config
	catalog CatalogService
	ai      PlanService
	enrich  Enricher
	store   reference.Store
}

// New creates a Handler with shared dependencies.
func New(pool *db.Pool, c *cache.Cache, cfg *config.Config, catalog CatalogService, ai PlanService, enricher Enricher, store reference.Store) *Handler {
	return &Handler{
		pool:    pool,
		cache:   c,
		cfg:     cfg,
		catalog: catalog,
		ai:      ai,
		enrich:  enricher,
		store:   store,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "EasyFitness Data API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.pool.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckExerciseDB probes the catalog liveness endpoint.
// @Summary ExerciseDB health check
// @Description Probes the ExerciseDB liveness endpoint.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/exercisedb [get]
func (h *Handler) HealthCheckExerciseDB(w http.ResponseWriter, r *http.Request) {
	ok, msg := h.catalog.TestConnection(r.Context())
	status := http.StatusOK
	state := "healthy"
	if !ok {
		status = http.StatusServiceUnavailable
		state = "unhealthy"
	}
	respond.WriteJSONObject(w, status, map[string]interface{}{
		"status":    state,
		"message":   msg,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckAI probes the generation API with a trivial prompt.
// @Summary Generation API health check
// @Description Verifies Gemini connectivity with a trivial prompt.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/ai [get]
func (h *Handler) HealthCheckAI(w http.ResponseWriter, r *http.Request) {
	ok, msg := h.ai.TestConnection(r.Context())
	status := http.StatusOK
	state := "healthy"
	if !ok {
		status = http.StatusServiceUnavailable
		state = "unhealthy"
	}
	respond.WriteJSONObject(w, status, map[string]interface{}{
		"status":    state,
		"message":   msg,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// writeFault maps a fault code to an HTTP status and writes the standard
// error envelope.
func writeFault(w http.ResponseWriter, err error) {
	code := fault.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case fault.CodeValidation:
		status = http.StatusBadRequest
	case fault.CodeNotFound:
		status = http.StatusNotFound
	case fault.CodeConnection:
		status = http.StatusGatewayTimeout
	case fault.CodeBadStatus, fault.CodeParse, fault.CodeGeneration:
		status = http.StatusBadGateway
	}

	var fe *fault.Error
	if errors.As(err, &fe) {
		respond.WriteError(w, status, string(fe.Code), fe.Message)
		return
	}
	respond.WriteError(w, status, string(fault.CodeInternal), err.Error())
}
