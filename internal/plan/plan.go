// Package plan defines the canonical workout and meal plan shapes shared by
// the generation client, the enrichment engine, and the API layer.
//
// Generated plans are immutable inputs to enrichment: the engine copies, it
// never mutates.
package plan

// Request carries the caller-supplied parameters for plan generation.
// Transient; never persisted.
type Request struct {
	Goal               string            `json:"goal"`
	ExperienceLevel    string            `json:"experience_level,omitempty"`
	CalorieTarget      int               `json:"calorie_target,omitempty"`
	DaysPerWeek        int               `json:"days_per_week"`
	DietaryPreferences []string          `json:"dietary_preferences,omitempty"`
	Profile            map[string]string `json:"profile,omitempty"`
}

// --------------------------------------------------------------------------
// Workout plans
// --------------------------------------------------------------------------

// WorkoutPlan is the structured plan produced by the generation client.
type WorkoutPlan struct {
	PlanName        string       `json:"plan_name"`
	PlanDescription string       `json:"plan_description"`
	Days            []WorkoutDay `json:"days"`
}

type WorkoutDay struct {
	DayNumber int        `json:"day_number"`
	DayName   string     `json:"day_name,omitempty"`
	Exercises []Exercise `json:"exercises"`
}

type Exercise struct {
	ExerciseName string `json:"exercise_name"`
	Sets         int    `json:"sets"`
	Reps         string `json:"reps"`
}

// --------------------------------------------------------------------------
// Meal plans
// --------------------------------------------------------------------------

// MealPlan is the structured meal plan produced by the generation client.
// Meal plans have no catalog to enrich against; they pass through
// unmodified.
type MealPlan struct {
	PlanName        string    `json:"plan_name"`
	PlanDescription string    `json:"plan_description"`
	DailyCalories   int       `json:"daily_calories,omitempty"`
	Days            []MealDay `json:"days"`
}

type MealDay struct {
	DayNumber int    `json:"day_number"`
	Meals     []Meal `json:"meals"`
}

type Meal struct {
	MealName    string    `json:"meal_name"`
	MealType    string    `json:"meal_type,omitempty"` // breakfast, lunch, dinner, snack
	Description string    `json:"description,omitempty"`
	Nutrition   Nutrition `json:"nutrition"`
}

type Nutrition struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}
