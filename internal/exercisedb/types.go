package exercisedb

// SearchResult is the partial exercise record returned by the search
// endpoint. Cheap and high-recall; detail lookups are authoritative.
type SearchResult struct {
	ExerciseID string `json:"exerciseId"`
	Name       string `json:"name"`
	ImageURL   string `json:"imageUrl"`
}

// ExerciseDetail is the full catalog record for a single exercise.
type ExerciseDetail struct {
	ExerciseID       string   `json:"exerciseId"`
	Name             string   `json:"name"`
	ImageURL         string   `json:"imageUrl"`
	VideoURL         string   `json:"videoUrl,omitempty"`
	ExerciseType     string   `json:"exerciseType,omitempty"`
	BodyParts        []string `json:"bodyParts"`
	Equipments       []string `json:"equipments"`
	TargetMuscles    []string `json:"targetMuscles"`
	SecondaryMuscles []string `json:"secondaryMuscles"`
	Keywords         []string `json:"keywords"`
	Overview         string   `json:"overview,omitempty"`
	Instructions     []string `json:"instructions"`
	ExerciseTips     []string `json:"exerciseTips"`
	Variations       []string `json:"variations"`
}

// ReferenceItem is one entry from the static reference-list endpoints
// (equipments, exercise types, body parts, muscles).
type ReferenceItem struct {
	Name string `json:"name"`
}

// ReferenceData bundles the four reference lists fetched by
// GetReferenceData. All four are present or the call failed — there is no
// partial success.
type ReferenceData struct {
	Equipments    []ReferenceItem `json:"equipments"`
	ExerciseTypes []ReferenceItem `json:"exercise_types"`
	BodyParts     []ReferenceItem `json:"bodyparts"`
	Muscles       []ReferenceItem `json:"muscles"`
}

// Counts returns the per-list sizes, mainly for logging and the API
// response envelope.
func (r *ReferenceData) Counts() map[string]int {
	return map[string]int{
		"equipments":     len(r.Equipments),
		"exercise_types": len(r.ExerciseTypes),
		"bodyparts":      len(r.BodyParts),
		"muscles":        len(r.Muscles),
	}
}
