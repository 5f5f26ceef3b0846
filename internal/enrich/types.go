// Package enrich implements the exercise enrichment engine: resolving the
// free-text exercise names in an AI-generated plan against the ExerciseDB
// catalog and back-filling the reference lookup tables from what it finds.
package enrich

import (
	"context"

	"github.com/easyfitness/easyfitness-data/internal/exercisedb"
	"github.com/easyfitness/easyfitness-data/internal/plan"
)

// DataSource records how an exercise was resolved. Exactly one per
// exercise; ExerciseDetails is non-nil iff the source is not ai_only.
type DataSource string

const (
	SourceAIOnly   DataSource = "ai_only"
	SourceSearch   DataSource = "exercisedb_api_search"
	SourceDetailed DataSource = "exercisedb_api_detailed"
)

// MatchConfidence is the engine's self-reported quality tier for a match.
type MatchConfidence string

const (
	ConfidenceNone   MatchConfidence = "none"
	ConfidenceLow    MatchConfidence = "low"
	ConfidenceMedium MatchConfidence = "medium"
	ConfidenceHigh   MatchConfidence = "high"
)

// Search strategy tags reported per exercise.
const (
	StrategyExactSearch    = "exact_search"
	StrategySearchFallback = "search_fallback"
	StrategyNoMatch        = "no_match"
)

// EnrichedExercise is a plan exercise plus the best available catalog
// match.
type EnrichedExercise struct {
	plan.Exercise
	ExerciseDetails     *exercisedb.ExerciseDetail `json:"exercise_details"`
	DataSource          DataSource                 `json:"data_source"`
	MatchConfidence     MatchConfidence            `json:"match_confidence"`
	SearchStrategy      string                     `json:"search_strategy"`
	MatchedExerciseName string                     `json:"matched_exercise_name,omitempty"`
}

// EnrichedDay mirrors a plan day with enriched exercises, order preserved.
type EnrichedDay struct {
	DayNumber int                `json:"day_number"`
	DayName   string             `json:"day_name,omitempty"`
	Exercises []EnrichedExercise `json:"exercises"`
}

// EnrichedPlan is the full enrichment result returned to the caller.
// Warnings carry non-fatal failures (reference reconciliation) that never
// affect the success path.
type EnrichedPlan struct {
	PlanName        string        `json:"plan_name"`
	PlanDescription string        `json:"plan_description"`
	Days            []EnrichedDay `json:"days"`
	Stats           Stats         `json:"enrichment_stats"`
	Warnings        []string      `json:"warnings,omitempty"`
}

// Stats aggregates run-level counts. Computed in one pass after the full
// iteration and immutable once returned.
type Stats struct {
	TotalExercises   int     `json:"total_exercises"`
	DetailedEnriched int     `json:"detailed_enriched"`
	SearchEnriched   int     `json:"search_enriched"`
	AIOnly           int     `json:"ai_only"`
	EnrichmentRate   float64 `json:"enrichment_rate"`

	HighConfidenceMatches   int `json:"high_confidence_matches"`
	MediumConfidenceMatches int `json:"medium_confidence_matches"`
	NoMatches               int `json:"no_matches"`

	MusclesCreated   int `json:"muscles_auto_populated"`
	EquipmentCreated int `json:"equipment_auto_populated"`
	BodyPartsCreated int `json:"body_parts_auto_populated"`
	KeywordsCreated  int `json:"keywords_auto_populated"`
}

// Catalog is the slice of the ExerciseDB client the engine depends on.
type Catalog interface {
	SearchExercises(ctx context.Context, term string) ([]exercisedb.SearchResult, error)
	GetExerciseByID(ctx context.Context, id string) (*exercisedb.ExerciseDetail, error)
}

// Populator is the slice of the reference store the engine depends on.
type Populator interface {
	PopulateCategory(ctx context.Context, category string, terms []string) (int, error)
}
