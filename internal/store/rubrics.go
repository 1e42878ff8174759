package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/caesar/internal/rubric"
)

// ErrNotFound is returned when a named rubric or evaluation does not exist.
var ErrNotFound = errors.New("not found")

// RubricInfo is the listing view of a stored rubric.
type RubricInfo struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Method      string    `json:"method"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpsertRubric stores a validated rubric document under its name. The raw
// document is kept verbatim so GetRubric re-validates exactly what was
// submitted.
func (s *Store) UpsertRubric(ctx context.Context, r *rubric.Rubric, document []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO rubrics (name, description, method, document, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (name) DO UPDATE
		SET description = $2, method = $3, document = $4, updated_at = now()`,
		r.Name, r.Description, string(r.Method), document,
	)
	if err != nil {
		return fmt.Errorf("upsert rubric: %w", err)
	}
	return nil
}

// GetRubric loads and re-validates a stored rubric by name.
func (s *Store) GetRubric(ctx context.Context, name string) (*rubric.Rubric, error) {
	var document []byte
	err := s.pool.QueryRow(ctx, `
		SELECT document FROM rubrics WHERE name = $1`, name,
	).Scan(&document)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("rubric %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get rubric: %w", err)
	}
	return rubric.Parse(document)
}

// ListRubrics returns the stored rubrics, most recently updated first.
func (s *Store) ListRubrics(ctx context.Context) ([]RubricInfo, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT name, description, method, updated_at
		FROM rubrics ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list rubrics: %w", err)
	}
	defer rows.Close()

	var out []RubricInfo
	for rows.Next() {
		var info RubricInfo
		if err := rows.Scan(&info.Name, &info.Description, &info.Method, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan rubric row: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}
