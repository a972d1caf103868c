package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	evaluation "restroom-cloud/internal/evaluation/domain"
)

const defaultEvaluationsTable = "evaluations"

// Repository is a Postgres implementation of the evaluation repository.
type Repository struct {
	db    *sql.DB
	table string
}

// Option configures the repository.
type Option func(*Repository)

// WithTable overrides the default table name.
func WithTable(table string) Option {
	return func(r *Repository) {
		if table != "" {
			r.table = table
		}
	}
}

// NewRepository constructs a repository.
func NewRepository(db *sql.DB, opts ...Option) *Repository {
	repo := &Repository{db: db, table: defaultEvaluationsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Save inserts an evaluation.
func (r *Repository) Save(ctx context.Context, eval evaluation.Evaluation) error {
	if r == nil || r.db == nil {
		return errors.New("evaluation repo: nil db")
	}
	if err := eval.Validate(); err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	employee,
	evaluator,
	cleanliness,
	supplies,
	floor,
	odor,
	comment,
	created_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9
)
ON CONFLICT (id) DO NOTHING`, r.table)

	_, err := r.db.ExecContext(
		ctx,
		query,
		eval.ID,
		eval.Employee,
		eval.Evaluator,
		eval.Cleanliness,
		eval.Supplies,
		eval.Floor,
		eval.Odor,
		eval.Comment,
		eval.CreatedAt.UTC(),
	)
	return err
}

// List returns up to limit evaluations, newest first, optionally filtered by
// employee.
func (r *Repository) List(ctx context.Context, employee string, limit int) ([]evaluation.Evaluation, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("evaluation repo: nil db")
	}
	if limit <= 0 {
		limit = 200
	}

	var rows *sql.Rows
	var err error
	if employee == "" {
		query := fmt.Sprintf(`
SELECT id, employee, evaluator, cleanliness, supplies, floor, odor, comment, created_at
FROM %s
ORDER BY created_at DESC
LIMIT $1`, r.table)
		rows, err = r.db.QueryContext(ctx, query, limit)
	} else {
		query := fmt.Sprintf(`
SELECT id, employee, evaluator, cleanliness, supplies, floor, odor, comment, created_at
FROM %s
WHERE employee = $1
ORDER BY created_at DESC
LIMIT $2`, r.table)
		rows, err = r.db.QueryContext(ctx, query, employee, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evals []evaluation.Evaluation
	for rows.Next() {
		var eval evaluation.Evaluation
		if err := rows.Scan(
			&eval.ID,
			&eval.Employee,
			&eval.Evaluator,
			&eval.Cleanliness,
			&eval.Supplies,
			&eval.Floor,
			&eval.Odor,
			&eval.Comment,
			&eval.CreatedAt,
		); err != nil {
			return nil, err
		}
		eval.CreatedAt = eval.CreatedAt.UTC()
		evals = append(evals, eval)
	}
	return evals, rows.Err()
}
