package reference

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/easyfitness/easyfitness-data/internal/config"
	"github.com/easyfitness/easyfitness-data/internal/fault"
)

// Store is the persistence interface for reference terms. The enrichment
// engine and CLI seeding both go through it; tests substitute a mock.
type Store interface {
	// PopulateCategory ensures every term exists in the category's lookup
	// table and returns the number of rows actually created. Terms must
	// already be normalized.
	PopulateCategory(ctx context.Context, category string, terms []string) (int, error)

	// ListCategory returns all stored names for a category in sorted order.
	ListCategory(ctx context.Context, category string) ([]string, error)
}

// PgStore implements Store on a pgx connection pool. Idempotence under
// concurrent callers comes from the UNIQUE constraint on name: two runs may
// both attempt the insert, exactly one wins, the other's RowsAffected is 0.
type PgStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPgStore creates a Postgres-backed reference store.
func NewPgStore(pool *pgxpool.Pool, logger *slog.Logger) *PgStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PgStore{pool: pool, logger: logger}
}

// PopulateCategory inserts every non-blank term inside a single transaction
// so a failure partway through never leaves a half-committed batch. The
// insert statements are prepared at connect time (see internal/db).
func (s *PgStore) PopulateCategory(ctx context.Context, category string, terms []string) (int, error) {
	cat, ok := config.CategoryRegistry[category]
	if !ok {
		return 0, fault.Newf(fault.CodeValidation, "unknown reference category: %s", category)
	}
	if len(terms) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fault.WrapRetryable(err, fault.CodeReconcile, "begin transaction")
	}
	defer tx.Rollback(ctx)

	created := 0
	for _, term := range terms {
		if term == "" {
			continue
		}
		tag, err := tx.Exec(ctx, "insert_"+cat.ID, term)
		if err != nil {
			return 0, fault.WrapRetryable(err, fault.CodeReconcile, "insert "+cat.ID+" term")
		}
		if tag.RowsAffected() == 1 {
			created++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fault.WrapRetryable(err, fault.CodeReconcile, "commit "+cat.ID+" batch")
	}

	if created > 0 {
		s.logger.Info("reference terms created", "category", cat.ID, "created", created, "observed", len(terms))
	}
	return created, nil
}

// ListCategory returns all stored names for a category.
func (s *PgStore) ListCategory(ctx context.Context, category string) ([]string, error) {
	cat, ok := config.CategoryRegistry[category]
	if !ok {
		return nil, fault.Newf(fault.CodeValidation, "unknown reference category: %s", category)
	}

	rows, err := s.pool.Query(ctx, "list_"+cat.ID)
	if err != nil {
		return nil, fault.WrapRetryable(err, fault.CodeReconcile, "list "+cat.ID)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fault.Wrap(err, fault.CodeReconcile, "scan "+cat.ID+" row")
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
