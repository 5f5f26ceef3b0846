// Package reference maintains the canonical lookup tables (muscles,
// equipment, body parts, keywords) populated lazily from catalog data
// observed during enrichment.
package reference

import (
	"strings"

	"github.com/easyfitness/easyfitness-data/internal/config"
)

// Normalize canonicalizes a raw catalog term for its category: muscles,
// equipment, and body parts are upper-cased and trimmed; keywords are
// lower-cased and trimmed. Unknown categories get the trimmed input back.
func Normalize(category, term string) string {
	t := strings.TrimSpace(term)
	cat, ok := config.CategoryRegistry[category]
	if !ok {
		return t
	}
	if cat.Mode == config.NormalizeLower {
		return strings.ToLower(t)
	}
	return strings.ToUpper(t)
}
