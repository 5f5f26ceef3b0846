// Command ingest is the EasyFitness reference data and plan CLI.
//
// Usage:
//
//	easyfitness-ingest seed muscles
//	easyfitness-ingest seed equipment
//	easyfitness-ingest seed bodyparts
//	easyfitness-ingest seed all
//	easyfitness-ingest plan workout --goal "build muscle" --level intermediate --days 4
//	easyfitness-ingest plan meal --goal "cut" --calories 2200 --diet vegetarian
//	easyfitness-ingest check
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/easyfitness/easyfitness-data/internal/config"
	"github.com/easyfitness/easyfitness-data/internal/db"
	"github.com/easyfitness/easyfitness-data/internal/enrich"
	"github.com/easyfitness/easyfitness-data/internal/exercisedb"
	"github.com/easyfitness/easyfitness-data/internal/genai"
	"github.com/easyfitness/easyfitness-data/internal/plan"
	"github.com/easyfitness/easyfitness-data/internal/reference"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "easyfitness-ingest",
		Short: "EasyFitness reference data and plan CLI",
	}

	root.AddCommand(seedCmd())
	root.AddCommand(planCmd())
	root.AddCommand(checkCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// seed command
// --------------------------------------------------------------------------

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed reference tables from the exercise catalog",
	}
	for _, category := range []string{"muscles", "equipment", "bodyparts"} {
		cmd.AddCommand(seedCategoryCmd(category))
	}
	cmd.AddCommand(seedAllCmd())
	return cmd
}

func seedCategoryCmd(category string) *cobra.Command {
	return &cobra.Command{
		Use:   category,
		Short: fmt.Sprintf("Seed the %s reference table", category),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				catalog := newCatalog(cfg)
				store := reference.NewPgStore(pool.Pool, logger)

				start := time.Now()
				result := reference.SeedCategory(ctx, catalog, store, category, logger)
				logger.Info("Seed finished",
					"category", category,
					"duration", time.Since(start).Round(time.Second),
					"summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("seed error", "error", e)
				}
				return nil
			})
		},
	}
}

func seedAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Seed all reference tables the catalog exposes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				catalog := newCatalog(cfg)
				store := reference.NewPgStore(pool.Pool, logger)

				start := time.Now()
				result := reference.SeedAll(ctx, catalog, store, logger)
				logger.Info("Seed finished",
					"duration", time.Since(start).Round(time.Second),
					"summary", result.Summary())
				for _, e := range result.Errors {
					logger.Error("seed error", "error", e)
				}
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// plan command
// --------------------------------------------------------------------------

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate fitness plans from the command line",
	}
	cmd.AddCommand(planWorkoutCmd())
	cmd.AddCommand(planMealCmd())
	return cmd
}

func planWorkoutCmd() *cobra.Command {
	var (
		goal  string
		level string
		days  int
	)
	cmd := &cobra.Command{
		Use:   "workout",
		Short: "Generate and enrich a workout plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			if goal == "" {
				return fmt.Errorf("--goal is required")
			}
			return runWithDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				if cfg.GeminiAPIKey == "" {
					return fmt.Errorf("GEMINI_API_KEY is required")
				}
				catalog := newCatalog(cfg)
				ai := genai.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel,
					cfg.GenerationTokens, cfg.GenerationTemp, cfg.GenerationTimeout, logger)
				store := reference.NewPgStore(pool.Pool, logger)
				engine := enrich.NewEngine(catalog, store, logger)

				start := time.Now()
				generated, partial, err := ai.GenerateWorkoutPlan(ctx, plan.Request{
					Goal:            goal,
					ExperienceLevel: level,
					DaysPerWeek:     days,
				})
				if err != nil {
					return err
				}
				if partial {
					logger.Warn("Generated plan was recovered from a truncated response")
				}

				enriched, err := engine.EnrichWorkoutPlan(ctx, generated)
				if err != nil {
					return err
				}
				logger.Info("Plan ready",
					"duration", time.Since(start).Round(time.Second),
					"exercises", enriched.Stats.TotalExercises,
					"enrichment_rate", enriched.Stats.EnrichmentRate)
				for _, w := range enriched.Warnings {
					logger.Warn("enrichment warning", "warning", w)
				}
				return printJSON(enriched)
			})
		},
	}
	cmd.Flags().StringVar(&goal, "goal", "", "Training goal, e.g. \"build muscle\"")
	cmd.Flags().StringVar(&level, "level", "beginner", "Experience level (beginner, intermediate, advanced)")
	cmd.Flags().IntVar(&days, "days", 3, "Training days per week (1-7)")
	return cmd
}

func planMealCmd() *cobra.Command {
	var (
		goal     string
		calories int
		diet     []string
	)
	cmd := &cobra.Command{
		Use:   "meal",
		Short: "Generate a meal plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			if goal == "" {
				return fmt.Errorf("--goal is required")
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.GeminiAPIKey == "" {
				return fmt.Errorf("GEMINI_API_KEY is required")
			}
			ai := genai.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel,
				cfg.GenerationTokens, cfg.GenerationTemp, cfg.GenerationTimeout, logger)

			generated, partial, err := ai.GenerateMealPlan(ctx, plan.Request{
				Goal:               goal,
				CalorieTarget:      calories,
				DietaryPreferences: diet,
			})
			if err != nil {
				return err
			}
			if partial {
				logger.Warn("Generated plan was recovered from a truncated response")
			}
			return printJSON(generated)
		},
	}
	cmd.Flags().StringVar(&goal, "goal", "", "Nutrition goal, e.g. \"cut\"")
	cmd.Flags().IntVar(&calories, "calories", 0, "Daily calorie target (0 = let the model choose)")
	cmd.Flags().StringSliceVar(&diet, "diet", nil, "Dietary preferences, e.g. vegetarian,gluten-free")
	return cmd
}

// --------------------------------------------------------------------------
// check command
// --------------------------------------------------------------------------

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check connectivity to the database, catalog, and AI provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithDB(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				if err := pool.HealthCheck(ctx); err != nil {
					logger.Error("Database check failed", "error", err)
				} else {
					logger.Info("Database OK")
				}

				catalog := newCatalog(cfg)
				if ok, detail := catalog.TestConnection(ctx); ok {
					logger.Info("Exercise catalog OK", "detail", detail)
				} else {
					logger.Error("Exercise catalog check failed", "detail", detail)
				}

				if cfg.GeminiAPIKey == "" {
					logger.Warn("AI check skipped (no GEMINI_API_KEY)")
					return nil
				}
				ai := genai.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel,
					cfg.GenerationTokens, cfg.GenerationTemp, cfg.GenerationTimeout, logger)
				if ok, detail := ai.TestConnection(ctx); ok {
					logger.Info("AI provider OK", "detail", detail)
				} else {
					logger.Error("AI provider check failed", "detail", detail)
				}
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

func newCatalog(cfg *config.Config) *exercisedb.Client {
	return exercisedb.NewClient(cfg.ExerciseDBBaseURL, cfg.ExerciseDBAPIKey, cfg.ExerciseDBAPIHost,
		cfg.CatalogRPM, cfg.CatalogTimeout, logger)
}

// runWithDB handles config loading, DB connection, and context cancellation.
func runWithDB(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
