package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/easyfitness/easyfitness-data/internal/api/respond"
	"github.com/easyfitness/easyfitness-data/internal/cache"
	"github.com/easyfitness/easyfitness-data/internal/config"
)

// ListExercises proxies the catalog's filtered exercise listing.
// @Summary List exercises
// @Description Filtered exercise listing from the ExerciseDB catalog.
// @Tags exercises
// @Produce json
// @Param name query string false "Exercise name filter"
// @Param keywords query string false "Keyword filter"
// @Param limit query int false "Maximum results (default 10)"
// @Success 200 {object} map[string]interface{}
// @Router /exercises [get]
func (h *Handler) ListExercises(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	results, err := h.catalog.GetExercises(r.Context(), q.Get("name"), q.Get("keywords"), limit)
	if err != nil {
		writeFault(w, err)
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    results,
		"message": "Exercises retrieved",
	})
}

// SearchExercises proxies a keyword search against the catalog.
// @Summary Search exercises
// @Description Keyword search against the ExerciseDB catalog.
// @Tags exercises
// @Produce json
// @Param q query string true "Search term"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /exercises/search [get]
func (h *Handler) SearchExercises(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")

	results, err := h.catalog.SearchExercises(r.Context(), term)
	if err != nil {
		writeFault(w, err)
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"data":        results,
		"search_term": term,
		"message":     "Search completed",
	})
}

// GetExerciseByID fetches the full catalog record for one exercise, cached
// per ID.
// @Summary Get exercise details
// @Description Full catalog record for a single exercise.
// @Tags exercises
// @Produce json
// @Param id path string true "Exercise ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /exercises/{id} [get]
func (h *Handler) GetExerciseByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cacheKey := "exercise:" + id

	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLExerciseDetail, true)
		return
	}

	detail, err := h.catalog.GetExerciseByID(r.Context(), id)
	if err != nil {
		writeFault(w, err)
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"success": true,
		"data":    detail,
		"message": "Exercise details retrieved",
	})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "encode response")
		return
	}

	etag := h.cache.Set(cacheKey, body, cache.TTLExerciseDetail)
	respond.WriteJSON(w, body, etag, cache.TTLExerciseDetail, false)
}

// GetReferenceData serves the catalog's four reference lists, cached.
// @Summary Catalog reference data
// @Description Equipments, exercise types, body parts, and muscles from the catalog. All four or nothing.
// @Tags reference
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 502 {object} respond.ErrorResponse
// @Router /reference [get]
func (h *Handler) GetReferenceData(w http.ResponseWriter, r *http.Request) {
	const cacheKey = "reference:catalog"

	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLReferenceData, true)
		return
	}

	data, err := h.catalog.GetReferenceData(r.Context())
	if err != nil {
		writeFault(w, err)
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"success": true,
		"data":    data,
		"counts":  data.Counts(),
		"message": "Reference data retrieved",
	})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "encode response")
		return
	}

	etag := h.cache.Set(cacheKey, body, cache.TTLReferenceData)
	respond.WriteJSON(w, body, etag, cache.TTLReferenceData, false)
}

// GetReferenceTables serves the current contents of the local lookup
// tables.
// @Summary Lookup table contents
// @Description Current contents of the muscle, equipment, body-part, and keyword lookup tables.
// @Tags reference
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /reference/db [get]
func (h *Handler) GetReferenceTables(w http.ResponseWriter, r *http.Request) {
	tables := make(map[string][]string, len(config.Categories))
	for _, category := range config.Categories {
		names, err := h.store.ListCategory(r.Context(), category)
		if err != nil {
			writeFault(w, err)
			return
		}
		if names == nil {
			names = []string{}
		}
		tables[category] = names
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    tables,
		"message": "Lookup tables retrieved",
	})
}
