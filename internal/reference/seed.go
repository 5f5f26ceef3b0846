package reference

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/easyfitness/easyfitness-data/internal/exercisedb"
)

// Catalog is the slice of the ExerciseDB client that seeding needs.
type Catalog interface {
	GetEquipments(ctx context.Context) ([]exercisedb.ReferenceItem, error)
	GetBodyParts(ctx context.Context) ([]exercisedb.ReferenceItem, error)
	GetMuscles(ctx context.Context) ([]exercisedb.ReferenceItem, error)
}

// SeedResult tracks counts and errors from a seeding operation.
type SeedResult struct {
	MusclesCreated   int
	EquipmentCreated int
	BodyPartsCreated int
	TermsObserved    int
	Errors           []string
}

// Add merges another SeedResult into this one.
func (r *SeedResult) Add(other SeedResult) {
	r.MusclesCreated += other.MusclesCreated
	r.EquipmentCreated += other.EquipmentCreated
	r.BodyPartsCreated += other.BodyPartsCreated
	r.TermsObserved += other.TermsObserved
	r.Errors = append(r.Errors, other.Errors...)
}

// AddErrorf records a formatted error message.
func (r *SeedResult) AddErrorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the seed operation.
func (r *SeedResult) Summary() string {
	return fmt.Sprintf(
		"muscles=%d equipment=%d body_parts=%d observed=%d errors=%d",
		r.MusclesCreated, r.EquipmentCreated, r.BodyPartsCreated,
		r.TermsObserved, len(r.Errors),
	)
}

// SeedCategory fetches one category's reference list from the catalog and
// populates its lookup table. Keywords have no catalog endpoint; they are
// only ever observed during enrichment.
func SeedCategory(ctx context.Context, catalog Catalog, store Store, category string, logger *slog.Logger) SeedResult {
	var result SeedResult

	var (
		items []exercisedb.ReferenceItem
		err   error
	)
	switch category {
	case "muscles":
		items, err = catalog.GetMuscles(ctx)
	case "equipment":
		items, err = catalog.GetEquipments(ctx)
	case "bodyparts":
		items, err = catalog.GetBodyParts(ctx)
	default:
		result.AddErrorf("unknown seedable category: %s", category)
		return result
	}
	if err != nil {
		result.AddErrorf("fetch %s: %v", category, err)
		return result
	}

	terms := make([]string, 0, len(items))
	for _, item := range items {
		normalized := Normalize(category, item.Name)
		if normalized == "" {
			logger.Warn("skipping blank reference term", "category", category)
			continue
		}
		terms = append(terms, normalized)
	}
	result.TermsObserved = len(terms)

	created, err := store.PopulateCategory(ctx, category, terms)
	if err != nil {
		result.AddErrorf("populate %s: %v", category, err)
		return result
	}

	switch category {
	case "muscles":
		result.MusclesCreated = created
	case "equipment":
		result.EquipmentCreated = created
	case "bodyparts":
		result.BodyPartsCreated = created
	}

	logger.Info("category seeded", "category", category, "observed", len(terms), "created", created)
	return result
}

// SeedAll seeds every catalog-backed category. Per-category failures
// accumulate in the result; one failing category never aborts the rest.
func SeedAll(ctx context.Context, catalog Catalog, store Store, logger *slog.Logger) SeedResult {
	var result SeedResult
	for _, category := range []string{"muscles", "equipment", "bodyparts"} {
		result.Add(SeedCategory(ctx, catalog, store, category, logger))
	}
	logger.Info("reference seed complete", "summary", result.Summary())
	return result
}
