package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/easyfitness/easyfitness-data/internal/exercisedb"
	"github.com/easyfitness/easyfitness-data/internal/fault"
	"github.com/easyfitness/easyfitness-data/internal/plan"
)

// mockCatalog implements Catalog with function fields.
type mockCatalog struct {
	searchFn func(ctx context.Context, term string) ([]exercisedb.SearchResult, error)
	detailFn func(ctx context.Context, id string) (*exercisedb.ExerciseDetail, error)
}

func (m *mockCatalog) SearchExercises(ctx context.Context, term string) ([]exercisedb.SearchResult, error) {
	return m.searchFn(ctx, term)
}

func (m *mockCatalog) GetExerciseByID(ctx context.Context, id string) (*exercisedb.ExerciseDetail, error) {
	return m.detailFn(ctx, id)
}

// mockPopulator records every PopulateCategory call.
type mockPopulator struct {
	calls   map[string][][]string
	created map[string]int
	err     error
}

func newMockPopulator() *mockPopulator {
	return &mockPopulator{
		calls:   make(map[string][][]string),
		created: make(map[string]int),
	}
}

func (m *mockPopulator) PopulateCategory(ctx context.Context, category string, terms []string) (int, error) {
	m.calls[category] = append(m.calls[category], terms)
	if m.err != nil {
		return 0, m.err
	}
	if n, ok := m.created[category]; ok {
		return n, nil
	}
	return len(terms), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func singleExercisePlan(name string) *plan.WorkoutPlan {
	return &plan.WorkoutPlan{
		PlanName: "Test Plan",
		Days: []plan.WorkoutDay{
			{DayNumber: 1, DayName: "Push", Exercises: []plan.Exercise{
				{ExerciseName: name, Sets: 3, Reps: "8-12"},
			}},
		},
	}
}

func TestEnrichWorkoutPlanDetailedMatch(t *testing.T) {
	catalog := &mockCatalog{
		searchFn: func(ctx context.Context, term string) ([]exercisedb.SearchResult, error) {
			return []exercisedb.SearchResult{{ExerciseID: "ex1", Name: "Push-up", ImageURL: "img"}}, nil
		},
		detailFn: func(ctx context.Context, id string) (*exercisedb.ExerciseDetail, error) {
			return &exercisedb.ExerciseDetail{
				ExerciseID:       "ex1",
				Name:             "Push-up",
				TargetMuscles:    []string{"chest"},
				SecondaryMuscles: []string{"triceps"},
				Equipments:       []string{"body weight"},
				BodyParts:        []string{"chest"},
				Keywords:         []string{"Push", "Chest Workout"},
			}, nil
		},
	}
	pop := newMockPopulator()
	engine := NewEngine(catalog, pop, testLogger())

	enriched, err := engine.EnrichWorkoutPlan(context.Background(), singleExercisePlan("Push-up"))
	if err != nil {
		t.Fatalf("EnrichWorkoutPlan: %v", err)
	}

	ee := enriched.Days[0].Exercises[0]
	if ee.DataSource != SourceDetailed {
		t.Errorf("data source = %q, want %q", ee.DataSource, SourceDetailed)
	}
	if ee.MatchConfidence != ConfidenceHigh {
		t.Errorf("confidence = %q, want %q", ee.MatchConfidence, ConfidenceHigh)
	}
	if ee.SearchStrategy != StrategyExactSearch {
		t.Errorf("strategy = %q, want %q", ee.SearchStrategy, StrategyExactSearch)
	}
	if ee.ExerciseDetails == nil || ee.ExerciseDetails.ExerciseID != "ex1" {
		t.Errorf("exercise details = %+v, want ex1", ee.ExerciseDetails)
	}

	stats := enriched.Stats
	if stats.TotalExercises != 1 || stats.DetailedEnriched != 1 {
		t.Errorf("stats = %+v, want 1 total / 1 detailed", stats)
	}
	if stats.EnrichmentRate != 100.0 {
		t.Errorf("enrichment rate = %v, want 100.0", stats.EnrichmentRate)
	}
	if stats.HighConfidenceMatches != 1 {
		t.Errorf("high confidence = %d, want 1", stats.HighConfidenceMatches)
	}
}

func TestEnrichWorkoutPlanConfidenceMediumOnNameMismatch(t *testing.T) {
	catalog := &mockCatalog{
		searchFn: func(ctx context.Context, term string) ([]exercisedb.SearchResult, error) {
			return []exercisedb.SearchResult{{ExerciseID: "ex2", Name: "Barbell Bench Press"}}, nil
		},
		detailFn: func(ctx context.Context, id string) (*exercisedb.ExerciseDetail, error) {
			return &exercisedb.ExerciseDetail{ExerciseID: "ex2", Name: "Barbell Bench Press"}, nil
		},
	}
	engine := NewEngine(catalog, newMockPopulator(), testLogger())

	enriched, err := engine.EnrichWorkoutPlan(context.Background(), singleExercisePlan("Bench Press"))
	if err != nil {
		t.Fatalf("EnrichWorkoutPlan: %v", err)
	}

	ee := enriched.Days[0].Exercises[0]
	if ee.MatchConfidence != ConfidenceMedium {
		t.Errorf("confidence = %q, want %q", ee.MatchConfidence, ConfidenceMedium)
	}
	if ee.MatchedExerciseName != "Barbell Bench Press" {
		t.Errorf("matched name = %q, want catalog name", ee.MatchedExerciseName)
	}
}

func TestEnrichWorkoutPlanSearchFallbackOnDetailFailure(t *testing.T) {
	catalog := &mockCatalog{
		searchFn: func(ctx context.Context, term string) ([]exercisedb.SearchResult, error) {
			return []exercisedb.SearchResult{{ExerciseID: "ex3", Name: "Squat", ImageURL: "img3"}}, nil
		},
		detailFn: func(ctx context.Context, id string) (*exercisedb.ExerciseDetail, error) {
			return nil, fault.Newf(fault.CodeNotFound, "no exercise found with ID: %s", id)
		},
	}
	pop := newMockPopulator()
	engine := NewEngine(catalog, pop, testLogger())

	enriched, err := engine.EnrichWorkoutPlan(context.Background(), singleExercisePlan("Squat"))
	if err != nil {
		t.Fatalf("EnrichWorkoutPlan: %v", err)
	}

	ee := enriched.Days[0].Exercises[0]
	if ee.DataSource != SourceSearch {
		t.Errorf("data source = %q, want %q", ee.DataSource, SourceSearch)
	}
	if ee.MatchConfidence != ConfidenceLow {
		t.Errorf("confidence = %q, want %q", ee.MatchConfidence, ConfidenceLow)
	}
	if ee.SearchStrategy != StrategySearchFallback {
		t.Errorf("strategy = %q, want %q", ee.SearchStrategy, StrategySearchFallback)
	}
	// Partial detail from the search result only.
	if ee.ExerciseDetails == nil || ee.ExerciseDetails.Name != "Squat" || ee.ExerciseDetails.ImageURL != "img3" {
		t.Errorf("exercise details = %+v, want partial search fields", ee.ExerciseDetails)
	}
	if len(ee.ExerciseDetails.TargetMuscles) != 0 {
		t.Errorf("partial detail should carry no muscle metadata")
	}

	// No metadata observed, so populate runs on empty batches only.
	for cat, calls := range pop.calls {
		for _, batch := range calls {
			if len(batch) != 0 {
				t.Errorf("category %s populated with %v, want empty", cat, batch)
			}
		}
	}

	if enriched.Stats.SearchEnriched != 1 || enriched.Stats.EnrichmentRate != 100.0 {
		t.Errorf("stats = %+v, want search-enriched counted in rate", enriched.Stats)
	}
}

func TestEnrichWorkoutPlanAIOnlyOnNoResults(t *testing.T) {
	catalog := &mockCatalog{
		searchFn: func(ctx context.Context, term string) ([]exercisedb.SearchResult, error) {
			return nil, nil
		},
		detailFn: func(ctx context.Context, id string) (*exercisedb.ExerciseDetail, error) {
			t.Fatal("detail lookup must not run when search returns nothing")
			return nil, nil
		},
	}
	engine := NewEngine(catalog, newMockPopulator(), testLogger())

	enriched, err := engine.EnrichWorkoutPlan(context.Background(), singleExercisePlan("Magic Flying Exercise"))
	if err != nil {
		t.Fatalf("EnrichWorkoutPlan: %v", err)
	}

	ee := enriched.Days[0].Exercises[0]
	if ee.DataSource != SourceAIOnly {
		t.Errorf("data source = %q, want %q", ee.DataSource, SourceAIOnly)
	}
	if ee.ExerciseDetails != nil {
		t.Errorf("exercise details = %+v, want nil", ee.ExerciseDetails)
	}
	if ee.MatchConfidence != ConfidenceNone || ee.SearchStrategy != StrategyNoMatch {
		t.Errorf("got confidence=%q strategy=%q, want none/no_match", ee.MatchConfidence, ee.SearchStrategy)
	}
	if enriched.Stats.EnrichmentRate != 0.0 {
		t.Errorf("enrichment rate = %v, want 0", enriched.Stats.EnrichmentRate)
	}
	// The exercise survives with its generated fields intact.
	if ee.ExerciseName != "Magic Flying Exercise" || ee.Sets != 3 {
		t.Errorf("generated fields lost: %+v", ee.Exercise)
	}
}

func TestEnrichWorkoutPlanSearchErrorDegradesToAIOnly(t *testing.T) {
	catalog := &mockCatalog{
		searchFn: func(ctx context.Context, term string) ([]exercisedb.SearchResult, error) {
			return nil, fault.New(fault.CodeConnection, "connection refused")
		},
		detailFn: func(ctx context.Context, id string) (*exercisedb.ExerciseDetail, error) {
			return nil, nil
		},
	}
	engine := NewEngine(catalog, newMockPopulator(), testLogger())

	enriched, err := engine.EnrichWorkoutPlan(context.Background(), singleExercisePlan("Deadlift"))
	if err != nil {
		t.Fatalf("search failure must not abort the run: %v", err)
	}
	if enriched.Days[0].Exercises[0].DataSource != SourceAIOnly {
		t.Errorf("data source = %q, want ai_only", enriched.Days[0].Exercises[0].DataSource)
	}
}

func TestEnrichWorkoutPlanPreservesOrder(t *testing.T) {
	names := []string{"Squat", "Bench Press", "Deadlift", "Overhead Press"}
	p := &plan.WorkoutPlan{
		PlanName: "Order",
		Days: []plan.WorkoutDay{
			{DayNumber: 1, Exercises: []plan.Exercise{
				{ExerciseName: names[0]}, {ExerciseName: names[1]},
			}},
			{DayNumber: 2, Exercises: []plan.Exercise{
				{ExerciseName: names[2]}, {ExerciseName: names[3]},
			}},
		},
	}
	catalog := &mockCatalog{
		searchFn: func(ctx context.Context, term string) ([]exercisedb.SearchResult, error) {
			// Odd lookups fail outright, even ones match.
			if term == names[1] || term == names[3] {
				return nil, fault.New(fault.CodeBadStatus, "boom")
			}
			return []exercisedb.SearchResult{{ExerciseID: term, Name: term}}, nil
		},
		detailFn: func(ctx context.Context, id string) (*exercisedb.ExerciseDetail, error) {
			return &exercisedb.ExerciseDetail{ExerciseID: id, Name: id}, nil
		},
	}
	engine := NewEngine(catalog, newMockPopulator(), testLogger())

	enriched, err := engine.EnrichWorkoutPlan(context.Background(), p)
	if err != nil {
		t.Fatalf("EnrichWorkoutPlan: %v", err)
	}

	got := []string{}
	for _, day := range enriched.Days {
		for _, ee := range day.Exercises {
			got = append(got, ee.ExerciseName)
		}
	}
	if strings.Join(got, ",") != strings.Join(names, ",") {
		t.Errorf("order = %v, want %v", got, names)
	}
	if enriched.Days[0].DayNumber != 1 || enriched.Days[1].DayNumber != 2 {
		t.Errorf("day numbers reordered: %+v", enriched.Days)
	}
	if enriched.Stats.EnrichmentRate != 50.0 {
		t.Errorf("enrichment rate = %v, want 50.0", enriched.Stats.EnrichmentRate)
	}
}

func TestEnrichWorkoutPlanNormalizesAndDeduplicatesTerms(t *testing.T) {
	catalog := &mockCatalog{
		searchFn: func(ctx context.Context, term string) ([]exercisedb.SearchResult, error) {
			return []exercisedb.SearchResult{{ExerciseID: "ex", Name: term}}, nil
		},
		detailFn: func(ctx context.Context, id string) (*exercisedb.ExerciseDetail, error) {
			return &exercisedb.ExerciseDetail{
				ExerciseID:       "ex",
				Name:             "x",
				TargetMuscles:    []string{" biceps ", "Biceps"},
				SecondaryMuscles: []string{"FOREARMS"},
				Equipments:       []string{"dumbbell", "  "},
				BodyParts:        []string{"upper arms"},
				Keywords:         []string{" Push ", "PUSH"},
			}, nil
		},
	}
	pop := newMockPopulator()
	engine := NewEngine(catalog, pop, testLogger())

	p := &plan.WorkoutPlan{
		PlanName: "Dedup",
		Days: []plan.WorkoutDay{{DayNumber: 1, Exercises: []plan.Exercise{
			{ExerciseName: "Curl"}, {ExerciseName: "Hammer Curl"},
		}}},
	}
	if _, err := engine.EnrichWorkoutPlan(context.Background(), p); err != nil {
		t.Fatalf("EnrichWorkoutPlan: %v", err)
	}

	// Exactly one populate call per category regardless of exercise count.
	for _, cat := range []string{"muscles", "equipment", "bodyparts", "keywords"} {
		if len(pop.calls[cat]) != 1 {
			t.Fatalf("category %s populated %d times, want 1", cat, len(pop.calls[cat]))
		}
	}

	muscles := pop.calls["muscles"][0]
	if strings.Join(muscles, ",") != "BICEPS,FOREARMS" {
		t.Errorf("muscles batch = %v, want [BICEPS FOREARMS]", muscles)
	}
	equipment := pop.calls["equipment"][0]
	if strings.Join(equipment, ",") != "DUMBBELL" {
		t.Errorf("equipment batch = %v, want [DUMBBELL] with blanks dropped", equipment)
	}
	keywords := pop.calls["keywords"][0]
	if strings.Join(keywords, ",") != "push" {
		t.Errorf("keywords batch = %v, want [push]", keywords)
	}
}

func TestEnrichWorkoutPlanPopulateFailureIsNonFatal(t *testing.T) {
	catalog := &mockCatalog{
		searchFn: func(ctx context.Context, term string) ([]exercisedb.SearchResult, error) {
			return []exercisedb.SearchResult{{ExerciseID: "ex", Name: term}}, nil
		},
		detailFn: func(ctx context.Context, id string) (*exercisedb.ExerciseDetail, error) {
			return &exercisedb.ExerciseDetail{ExerciseID: "ex", Name: "x", TargetMuscles: []string{"chest"}}, nil
		},
	}
	pop := newMockPopulator()
	pop.err = fault.WrapRetryable(fmt.Errorf("db down"), fault.CodeReconcile, "populate muscles")
	engine := NewEngine(catalog, pop, testLogger())

	enriched, err := engine.EnrichWorkoutPlan(context.Background(), singleExercisePlan("Fly"))
	if err != nil {
		t.Fatalf("populate failure must not fail the run: %v", err)
	}
	if len(enriched.Warnings) != 4 {
		t.Errorf("warnings = %v, want one per category", enriched.Warnings)
	}
	if enriched.Stats.MusclesCreated != 0 || enriched.Stats.KeywordsCreated != 0 {
		t.Errorf("created counts = %+v, want zeros on failure", enriched.Stats)
	}
	if enriched.Stats.DetailedEnriched != 1 {
		t.Errorf("enrichment result degraded by populate failure: %+v", enriched.Stats)
	}
}

func TestEnrichWorkoutPlanCreatedCounts(t *testing.T) {
	catalog := &mockCatalog{
		searchFn: func(ctx context.Context, term string) ([]exercisedb.SearchResult, error) {
			return []exercisedb.SearchResult{{ExerciseID: "ex", Name: term}}, nil
		},
		detailFn: func(ctx context.Context, id string) (*exercisedb.ExerciseDetail, error) {
			return &exercisedb.ExerciseDetail{
				ExerciseID:    "ex",
				Name:          "x",
				TargetMuscles: []string{"chest", "triceps"},
				Equipments:    []string{"barbell"},
				BodyParts:     []string{"chest"},
				Keywords:      []string{"press"},
			}, nil
		},
	}
	pop := newMockPopulator()
	pop.created = map[string]int{"muscles": 1, "equipment": 0, "bodyparts": 1, "keywords": 1}
	engine := NewEngine(catalog, pop, testLogger())

	enriched, err := engine.EnrichWorkoutPlan(context.Background(), singleExercisePlan("Bench"))
	if err != nil {
		t.Fatalf("EnrichWorkoutPlan: %v", err)
	}
	s := enriched.Stats
	if s.MusclesCreated != 1 || s.EquipmentCreated != 0 || s.BodyPartsCreated != 1 || s.KeywordsCreated != 1 {
		t.Errorf("created counts = %+v", s)
	}
}

func TestEnrichWorkoutPlanRejectsEmptyPlan(t *testing.T) {
	engine := NewEngine(&mockCatalog{}, newMockPopulator(), testLogger())

	for _, p := range []*plan.WorkoutPlan{nil, {PlanName: "empty"}} {
		_, err := engine.EnrichWorkoutPlan(context.Background(), p)
		if err == nil {
			t.Fatal("expected error for empty plan")
		}
		if fault.GetCode(err) != fault.CodeValidation {
			t.Errorf("code = %q, want VALIDATION_ERROR", fault.GetCode(err))
		}
	}
}

func TestEnrichWorkoutPlanEnrichmentRateRounding(t *testing.T) {
	// 1 of 3 enriched: 33.333... rounds to 33.33.
	n := 0
	catalog := &mockCatalog{
		searchFn: func(ctx context.Context, term string) ([]exercisedb.SearchResult, error) {
			n++
			if n == 1 {
				return []exercisedb.SearchResult{{ExerciseID: "ex", Name: term}}, nil
			}
			return nil, nil
		},
		detailFn: func(ctx context.Context, id string) (*exercisedb.ExerciseDetail, error) {
			return &exercisedb.ExerciseDetail{ExerciseID: id, Name: "x"}, nil
		},
	}
	engine := NewEngine(catalog, newMockPopulator(), testLogger())

	p := &plan.WorkoutPlan{
		PlanName: "Rate",
		Days: []plan.WorkoutDay{{DayNumber: 1, Exercises: []plan.Exercise{
			{ExerciseName: "A"}, {ExerciseName: "B"}, {ExerciseName: "C"},
		}}},
	}
	enriched, err := engine.EnrichWorkoutPlan(context.Background(), p)
	if err != nil {
		t.Fatalf("EnrichWorkoutPlan: %v", err)
	}
	if enriched.Stats.EnrichmentRate != 33.33 {
		t.Errorf("enrichment rate = %v, want 33.33", enriched.Stats.EnrichmentRate)
	}
}

func TestEnrichWorkoutPlanRecoversFromPanic(t *testing.T) {
	catalog := &mockCatalog{
		searchFn: func(ctx context.Context, term string) ([]exercisedb.SearchResult, error) {
			panic("catalog blew up")
		},
	}
	engine := NewEngine(catalog, newMockPopulator(), testLogger())

	_, err := engine.EnrichWorkoutPlan(context.Background(), singleExercisePlan("Squat"))
	if err == nil {
		t.Fatal("expected error from panicking catalog")
	}
	if fault.GetCode(err) != fault.CodeInternal {
		t.Errorf("code = %q, want INTERNAL_ERROR", fault.GetCode(err))
	}
	if !strings.Contains(err.Error(), "enrichment failed") {
		t.Errorf("error = %v, want enrichment failed message", err)
	}
}
