package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/easyfitness/easyfitness-data/internal/config"
	"github.com/easyfitness/easyfitness-data/internal/exercisedb"
	"github.com/easyfitness/easyfitness-data/internal/fault"
	"github.com/easyfitness/easyfitness-data/internal/plan"
	"github.com/easyfitness/easyfitness-data/internal/reference"
)

// Engine enriches generated workout plans against the exercise catalog.
type Engine struct {
	catalog   Catalog
	populator Populator
	logger    *slog.Logger
}

// NewEngine creates an enrichment engine.
func NewEngine(catalog Catalog, populator Populator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{catalog: catalog, populator: populator, logger: logger}
}

// termSets accumulates normalized reference terms across a whole run, one
// set per category. Populated only from successfully detailed exercises.
type termSets map[string]map[string]struct{}

func newTermSets() termSets {
	s := make(termSets, len(config.Categories))
	for _, cat := range config.Categories {
		s[cat] = make(map[string]struct{})
	}
	return s
}

func (s termSets) add(category string, raw []string) {
	for _, term := range raw {
		normalized := reference.Normalize(category, term)
		if normalized == "" {
			continue
		}
		s[category][normalized] = struct{}{}
	}
}

func (s termSets) sorted(category string) []string {
	terms := make([]string, 0, len(s[category]))
	for t := range s[category] {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// EnrichWorkoutPlan resolves every exercise in p to its best catalog match
// and back-fills the reference tables from the metadata discovered along
// the way.
//
// Per-exercise lookup failures never abort the run: the exercise degrades
// to ai_only and iteration continues. Only a malformed plan fails the whole
// run. Day and exercise order is preserved exactly.
func (e *Engine) EnrichWorkoutPlan(ctx context.Context, p *plan.WorkoutPlan) (enriched *EnrichedPlan, err error) {
	defer func() {
		if r := recover(); r != nil {
			enriched = nil
			err = fault.Newf(fault.CodeInternal, "enrichment failed: %v", r)
		}
	}()

	if p == nil || len(p.Days) == 0 {
		return nil, fault.New(fault.CodeValidation, "workout plan has no days to enrich")
	}

	terms := newTermSets()
	result := &EnrichedPlan{
		PlanName:        p.PlanName,
		PlanDescription: p.PlanDescription,
		Days:            make([]EnrichedDay, 0, len(p.Days)),
	}

	total, detailed, searchOnly, aiOnly := 0, 0, 0, 0
	high, medium, none := 0, 0, 0

	for _, day := range p.Days {
		enrichedDay := EnrichedDay{
			DayNumber: day.DayNumber,
			DayName:   day.DayName,
			Exercises: make([]EnrichedExercise, 0, len(day.Exercises)),
		}

		for _, ex := range day.Exercises {
			ee := e.enrichExercise(ctx, ex, terms)
			total++
			switch ee.DataSource {
			case SourceDetailed:
				detailed++
			case SourceSearch:
				searchOnly++
			default:
				aiOnly++
			}
			switch ee.MatchConfidence {
			case ConfidenceHigh:
				high++
			case ConfidenceMedium:
				medium++
			case ConfidenceNone:
				none++
			}
			enrichedDay.Exercises = append(enrichedDay.Exercises, ee)
		}
		result.Days = append(result.Days, enrichedDay)
	}

	// One populate call per category with the run's accumulated set, not
	// per exercise: redundant upserts are the common case otherwise.
	created := make(map[string]int, len(config.Categories))
	for _, category := range config.Categories {
		batch := terms.sorted(category)
		n, perr := e.populator.PopulateCategory(ctx, category, batch)
		if perr != nil {
			// Best-effort: reference population must never block
			// returning the enriched plan.
			e.logger.Error("reference population failed", "category", category, "error", perr)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("reference population failed for %s: %v", category, perr))
			n = 0
		}
		created[category] = n
	}

	rate := 0.0
	if total > 0 {
		rate = math.Round(float64(detailed+searchOnly)/float64(total)*100*100) / 100
	}

	result.Stats = Stats{
		TotalExercises:          total,
		DetailedEnriched:        detailed,
		SearchEnriched:          searchOnly,
		AIOnly:                  aiOnly,
		EnrichmentRate:          rate,
		HighConfidenceMatches:   high,
		MediumConfidenceMatches: medium,
		NoMatches:               none,
		MusclesCreated:          created["muscles"],
		EquipmentCreated:        created["equipment"],
		BodyPartsCreated:        created["bodyparts"],
		KeywordsCreated:         created["keywords"],
	}

	e.logger.Info("workout plan enriched",
		"total", total, "detailed", detailed, "search_only", searchOnly,
		"ai_only", aiOnly, "rate", rate, "warnings", len(result.Warnings))

	return result, nil
}

// enrichExercise runs the per-exercise resolution ladder:
//
//  1. search for the verbatim exercise name;
//  2. no results or search failure -> ai_only;
//  3. detail lookup on the first candidate -> detailed match;
//  4. detail failure with a surviving search candidate -> partial
//     search-result fields only.
//
// The search endpoint is cheap and high-recall but low-detail; the detail
// endpoint is authoritative but can fail independently. Degrading to
// partial data beats discarding the exercise.
func (e *Engine) enrichExercise(ctx context.Context, ex plan.Exercise, terms termSets) EnrichedExercise {
	ee := EnrichedExercise{
		Exercise:        ex,
		DataSource:      SourceAIOnly,
		MatchConfidence: ConfidenceNone,
		SearchStrategy:  StrategyNoMatch,
	}

	results, err := e.catalog.SearchExercises(ctx, ex.ExerciseName)
	if err != nil {
		e.logger.Warn("exercise search failed", "exercise", ex.ExerciseName, "error", err)
		return ee
	}
	if len(results) == 0 {
		e.logger.Debug("no catalog match", "exercise", ex.ExerciseName)
		return ee
	}

	first := results[0]
	detail, err := e.catalog.GetExerciseByID(ctx, first.ExerciseID)
	if err != nil {
		// Candidate exists but the detail lookup failed: keep the
		// partial search-result fields.
		e.logger.Warn("detail lookup failed, using search result",
			"exercise", ex.ExerciseName, "exercise_id", first.ExerciseID, "error", err)
		ee.ExerciseDetails = &exercisedb.ExerciseDetail{
			ExerciseID: first.ExerciseID,
			Name:       first.Name,
			ImageURL:   first.ImageURL,
		}
		ee.DataSource = SourceSearch
		ee.MatchConfidence = ConfidenceLow
		ee.SearchStrategy = StrategySearchFallback
		ee.MatchedExerciseName = first.Name
		return ee
	}

	ee.ExerciseDetails = detail
	ee.DataSource = SourceDetailed
	ee.SearchStrategy = StrategyExactSearch
	ee.MatchedExerciseName = detail.Name
	if strings.EqualFold(strings.TrimSpace(detail.Name), strings.TrimSpace(ex.ExerciseName)) {
		ee.MatchConfidence = ConfidenceHigh
	} else {
		ee.MatchConfidence = ConfidenceMedium
	}

	terms.add("muscles", detail.TargetMuscles)
	terms.add("muscles", detail.SecondaryMuscles)
	terms.add("equipment", detail.Equipments)
	terms.add("bodyparts", detail.BodyParts)
	terms.add("keywords", detail.Keywords)

	return ee
}
