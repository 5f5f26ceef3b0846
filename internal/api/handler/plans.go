package handler

import (
	"encoding/json"
	"net/http"

	"github.com/easyfitness/easyfitness-data/internal/api/respond"
	"github.com/easyfitness/easyfitness-data/internal/plan"
)

const maxPlanRequestBody = 64 << 10 // 64 KiB

// GenerateWorkoutPlan generates a workout plan and enriches it against the
// exercise catalog.
// @Summary Generate and enrich a workout plan
// @Description Generates a workout plan from user parameters and resolves every exercise against ExerciseDB.
// @Tags ai
// @Accept json
// @Produce json
// @Param request body plan.Request true "Plan parameters"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /ai/workout-plan [post]
func (h *Handler) GenerateWorkoutPlan(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePlanRequest(w, r)
	if !ok {
		return
	}
	if req.DaysPerWeek < 1 || req.DaysPerWeek > 7 {
		respond.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "days_per_week must be between 1 and 7")
		return
	}

	generated, partial, err := h.ai.GenerateWorkoutPlan(r.Context(), req)
	if err != nil {
		writeFault(w, err)
		return
	}

	enriched, err := h.enrich.EnrichWorkoutPlan(r.Context(), generated)
	if err != nil {
		writeFault(w, err)
		return
	}

	resp := map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"plan_name":        enriched.PlanName,
			"plan_description": enriched.PlanDescription,
			"days":             enriched.Days,
		},
		"message":          "Workout plan generated and enriched",
		"enrichment_stats": enriched.Stats,
	}
	if len(enriched.Warnings) > 0 {
		resp["warnings"] = enriched.Warnings
	}
	if partial {
		resp["partial"] = true
		resp["message"] = "Workout plan generated from a truncated response and enriched"
	}
	respond.WriteJSONObject(w, http.StatusOK, resp)
}

// GenerateMealPlan generates a meal plan. Meal plans have no catalog to
// enrich against and pass through unmodified.
// @Summary Generate a meal plan
// @Description Generates a meal plan from user parameters.
// @Tags ai
// @Accept json
// @Produce json
// @Param request body plan.Request true "Plan parameters"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /ai/meal-plan [post]
func (h *Handler) GenerateMealPlan(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePlanRequest(w, r)
	if !ok {
		return
	}

	generated, partial, err := h.ai.GenerateMealPlan(r.Context(), req)
	if err != nil {
		writeFault(w, err)
		return
	}

	resp := map[string]interface{}{
		"success": true,
		"data":    generated,
		"message": "Meal plan generated",
	}
	if partial {
		resp["partial"] = true
		resp["message"] = "Meal plan generated from a truncated response"
	}
	respond.WriteJSONObject(w, http.StatusOK, resp)
}

// decodePlanRequest decodes and validates the shared request body. Reports
// ok=false after writing the error response.
func decodePlanRequest(w http.ResponseWriter, r *http.Request) (plan.Request, bool) {
	var req plan.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPlanRequestBody))
	if err := dec.Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return req, false
	}
	if req.Goal == "" {
		respond.WriteError(w, http.StatusBadRequest, "VALIDATION_ERROR", "goal is required")
		return req, false
	}
	if req.DaysPerWeek == 0 {
		req.DaysPerWeek = 3
	}
	return req, true
}
