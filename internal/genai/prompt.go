package genai

import (
	"fmt"
	"sort"
	"strings"

	"github.com/easyfitness/easyfitness-data/internal/plan"
)

// Example documents embedded in the prompts. The model is told to follow
// these shapes exactly; the parser only understands these fields.

const workoutExample = `{
  "plan_name": "string",
  "plan_description": "string",
  "days": [
    {
      "day_number": 1,
      "day_name": "string",
      "exercises": [
        {"exercise_name": "string", "sets": 3, "reps": "8-12"}
      ]
    }
  ]
}`

const mealExample = `{
  "plan_name": "string",
  "plan_description": "string",
  "daily_calories": 2000,
  "days": [
    {
      "day_number": 1,
      "meals": [
        {
          "meal_name": "string",
          "meal_type": "breakfast",
          "description": "string",
          "nutrition": {"calories": 500, "protein_g": 30, "carbs_g": 50, "fat_g": 15}
        }
      ]
    }
  ]
}`

// buildWorkoutPrompt renders the workout-plan prompt from structured
// parameters.
func buildWorkoutPrompt(req plan.Request) string {
	var sb strings.Builder
	sb.WriteString("You are a certified personal trainer. Create a weekly workout plan.\n\n")
	fmt.Fprintf(&sb, "Goal: %s\n", req.Goal)
	if req.ExperienceLevel != "" {
		fmt.Fprintf(&sb, "Experience level: %s\n", req.ExperienceLevel)
	}
	fmt.Fprintf(&sb, "Training days per week: %d\n", req.DaysPerWeek)
	writeProfile(&sb, req.Profile)
	sb.WriteString("\nUse common, searchable exercise names (e.g. \"Push-up\", \"Barbell Squat\").\n")
	sb.WriteString("Respond with a single JSON document matching exactly this shape:\n")
	sb.WriteString(workoutExample)
	sb.WriteString("\nReturn only JSON, no commentary.")
	return sb.String()
}

// buildMealPrompt renders the meal-plan prompt from structured parameters.
func buildMealPrompt(req plan.Request) string {
	var sb strings.Builder
	sb.WriteString("You are a registered dietitian. Create a weekly meal plan.\n\n")
	fmt.Fprintf(&sb, "Goal: %s\n", req.Goal)
	if req.CalorieTarget > 0 {
		fmt.Fprintf(&sb, "Daily calorie target: %d\n", req.CalorieTarget)
	}
	fmt.Fprintf(&sb, "Days: %d\n", req.DaysPerWeek)
	if len(req.DietaryPreferences) > 0 {
		fmt.Fprintf(&sb, "Dietary preferences: %s\n", strings.Join(req.DietaryPreferences, ", "))
	}
	writeProfile(&sb, req.Profile)
	sb.WriteString("\nRespond with a single JSON document matching exactly this shape:\n")
	sb.WriteString(mealExample)
	sb.WriteString("\nReturn only JSON, no commentary.")
	return sb.String()
}

// writeProfile appends profile fields in a stable order so the same request
// always yields the same prompt.
func writeProfile(sb *strings.Builder, profile map[string]string) {
	if len(profile) == 0 {
		return
	}
	keys := make([]string, 0, len(profile))
	for k := range profile {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sb.WriteString("Profile:\n")
	for _, k := range keys {
		fmt.Fprintf(sb, "  %s: %s\n", k, profile[k])
	}
}
