// Package maintenance runs periodic background tasks as Go tickers.
// All scheduled work is driven from Go since the API is already a
// persistent, long-running service.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/easyfitness/easyfitness-data/internal/cache"
	"github.com/easyfitness/easyfitness-data/internal/reference"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	ReferenceRefreshInterval time.Duration // Re-seed reference tables from the catalog
	CacheStatsInterval       time.Duration // Log cache hit/size statistics
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		ReferenceRefreshInterval: 24 * time.Hour,
		CacheStatsInterval:       1 * time.Hour,
	}
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, catalog reference.Catalog, store reference.Store, appCache *cache.Cache, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"reference_refresh", cfg.ReferenceRefreshInterval,
		"cache_stats", cfg.CacheStatsInterval)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	// Reference refresh: pick up terms the catalog added since the last seed
	if cfg.ReferenceRefreshInterval > 0 {
		t := time.NewTicker(cfg.ReferenceRefreshInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { refreshReference(ctx, catalog, store, logger) })
	}

	// Cache stats: periodic visibility into cache size and churn
	if cfg.CacheStatsInterval > 0 && appCache != nil {
		t := time.NewTicker(cfg.CacheStatsInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { logCacheStats(appCache, logger) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// refreshReference re-seeds the reference tables from the catalog's
// reference endpoints. Per-category failures are logged and skipped.
func refreshReference(ctx context.Context, catalog reference.Catalog, store reference.Store, logger *slog.Logger) {
	start := time.Now()
	result := reference.SeedAll(ctx, catalog, store, logger)
	dur := time.Since(start).Round(time.Millisecond)

	if len(result.Errors) > 0 {
		logger.Warn("Reference refresh finished with errors",
			"duration", dur,
			"errors", len(result.Errors),
			"summary", result.Summary())
		return
	}
	logger.Info("Reference refresh complete", "duration", dur, "summary", result.Summary())
}

func logCacheStats(appCache *cache.Cache, logger *slog.Logger) {
	stats := appCache.Stats()
	logger.Info("Cache stats",
		"total_keys", stats["total_keys"],
		"active_keys", stats["active_keys"],
		"expired_keys", stats["expired_keys"])
}
