package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/caesar/internal/engine"
)

// EvaluationRecord is the stored view of one evaluation.
type EvaluationRecord struct {
	ID         uuid.UUID       `json:"id"`
	SessionRef string          `json:"session_ref"`
	Source     string          `json:"source"`
	RubricName string          `json:"rubric_name"`
	Overall    float64         `json:"overall_score"`
	Verdict    string          `json:"verdict"`
	Quality    string          `json:"transcription_quality"`
	Outcome    *engine.Outcome `json:"result,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// WriteEvaluation writes an evaluation and its per-criterion scores in one
// transaction. Tables: evaluations, evaluation_scores.
func (s *Store) WriteEvaluation(ctx context.Context, sessionRef, source, rubricName string, out *engine.Outcome) (uuid.UUID, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	payload, err := json.Marshal(out)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal outcome: %w", err)
	}

	evalID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO evaluations (id, session_ref, source, rubric_name, overall_score, verdict, quality_rating, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`,
		evalID, sessionRef, source, rubricName,
		out.Evaluation.Overall, string(out.Evaluation.Verdict), string(out.Quality.Rating), payload,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert evaluation: %w", err)
	}

	for _, score := range out.Evaluation.PerCriterion {
		_, err = tx.Exec(ctx, `
			INSERT INTO evaluation_scores (id, evaluation_id, criterion_id, raw_score, note)
			VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), evalID, score.CriterionID, score.RawScore, score.Note,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert score: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}

	return evalID, nil
}

// GetEvaluation loads one evaluation with its full outcome document.
func (s *Store) GetEvaluation(ctx context.Context, id uuid.UUID) (*EvaluationRecord, error) {
	var rec EvaluationRecord
	var payload []byte
	err := s.pool.QueryRow(ctx, `
		SELECT id, session_ref, source, rubric_name, overall_score, verdict, quality_rating, result, created_at
		FROM evaluations WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.SessionRef, &rec.Source, &rec.RubricName,
		&rec.Overall, &rec.Verdict, &rec.Quality, &payload, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("evaluation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get evaluation: %w", err)
	}

	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &rec.Outcome); err != nil {
			return nil, fmt.Errorf("unmarshal outcome: %w", err)
		}
	}
	return &rec, nil
}

// ListEvaluations returns recent evaluations without their full outcome
// documents, newest first.
func (s *Store) ListEvaluations(ctx context.Context, limit int) ([]EvaluationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_ref, source, rubric_name, overall_score, verdict, quality_rating, created_at
		FROM evaluations ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var out []EvaluationRecord
	for rows.Next() {
		var rec EvaluationRecord
		if err := rows.Scan(&rec.ID, &rec.SessionRef, &rec.Source, &rec.RubricName,
			&rec.Overall, &rec.Verdict, &rec.Quality, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan evaluation row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
