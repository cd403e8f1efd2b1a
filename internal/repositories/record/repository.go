package record

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/poppy/pkg/database"
	"github.com/Ramsey-B/poppy/pkg/metrics"
	"github.com/Ramsey-B/poppy/pkg/models"
	"github.com/Ramsey-B/poppy/pkg/schema"
	"github.com/Ramsey-B/poppy/pkg/tracing"
)

// RecordRepository is the generic data access path for every managed
// table: list, insert, update and delete with no per-table code.
type RecordRepository interface {
	List(ctx context.Context, table schema.Table) ([]models.Row, error)
	Insert(ctx context.Context, table schema.Table, body models.Row) (models.Row, error)
	Update(ctx context.Context, table schema.Table, id string, body models.Row) (models.Row, error)
	Delete(ctx context.Context, table schema.Table, id string) (models.Row, error)
	Count(ctx context.Context, table schema.Table) (models.Row, error)
}

// Repository implements RecordRepository against the shared pool.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new generic record repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// List returns every row of a managed table. Ordering is whatever the
// database gives back.
func (r *Repository) List(ctx context.Context, table schema.Table) ([]models.Row, error) {
	ctx, span := tracing.StartSpan(ctx, "RecordRepository.List")
	defer span.End()

	query, args := BuildList(table)
	return r.queryRows(ctx, table.Name, "list", query, args)
}

// Insert adds one row and returns it as persisted, defaults and all.
func (r *Repository) Insert(ctx context.Context, table schema.Table, body models.Row) (models.Row, error) {
	ctx, span := tracing.StartSpan(ctx, "RecordRepository.Insert")
	defer span.End()

	query, args, err := BuildInsert(table, body)
	if err != nil {
		return nil, err
	}

	rows, err := r.queryRows(ctx, table.Name, "insert", query, args)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Update mutates the addressed row and returns the post-update state.
// Returns (nil, nil) when no row matches the primary key.
func (r *Repository) Update(ctx context.Context, table schema.Table, id string, body models.Row) (models.Row, error) {
	ctx, span := tracing.StartSpan(ctx, "RecordRepository.Update")
	defer span.End()

	query, args, err := BuildUpdate(table, id, body)
	if err != nil {
		return nil, err
	}

	rows, err := r.queryRows(ctx, table.Name, "update", query, args)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Delete removes the addressed row and returns it. Returns (nil, nil)
// when no row matches the primary key.
func (r *Repository) Delete(ctx context.Context, table schema.Table, id string) (models.Row, error) {
	ctx, span := tracing.StartSpan(ctx, "RecordRepository.Delete")
	defer span.End()

	query, args := BuildDelete(table, id)

	rows, err := r.queryRows(ctx, table.Name, "delete", query, args)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Count returns a single row shaped {"count": n}.
func (r *Repository) Count(ctx context.Context, table schema.Table) (models.Row, error) {
	ctx, span := tracing.StartSpan(ctx, "RecordRepository.Count")
	defer span.End()

	query, args := BuildCount(table)

	rows, err := r.queryRows(ctx, table.Name, "count", query, args)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return models.Row{"count": int64(0)}, nil
	}
	return rows[0], nil
}

// queryRows executes one statement and drains the result set. The SQL
// text and parameter vector are logged; parameters are user-supplied but
// not secret.
func (r *Repository) queryRows(ctx context.Context, table, operation, query string, args []any) ([]models.Row, error) {
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"table": table,
		"query": query,
		"args":  args,
	}).Infof("Executing %s query", operation)

	start := time.Now()
	rows, err := r.db.QueryxContext(ctx, query, args...)
	metrics.ObserveQuery(table, operation, time.Since(start).Seconds(), err)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("table", table).Errorf("Failed to execute %s query", operation)
		return nil, err
	}

	return database.CollectRows(rows)
}
