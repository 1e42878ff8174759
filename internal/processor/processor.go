// Package processor handles transcript events off the message bus: resolve
// the rubric, run the evaluation, persist and file the results, announce
// completion.
package processor

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/MikeSquared-Agency/caesar/internal/engine"
	"github.com/MikeSquared-Agency/caesar/internal/hermes"
	"github.com/MikeSquared-Agency/caesar/internal/results"
	"github.com/MikeSquared-Agency/caesar/internal/rubric"
	"github.com/MikeSquared-Agency/caesar/internal/store"
)

// Processor orchestrates Caesar's transcript evaluation pipeline.
// store may be nil (stateless mode: evaluations land in result files only).
type Processor struct {
	store         *store.Store
	engine        *engine.Engine
	hermes        *hermes.Client
	results       *results.Writer
	defaultRubric *rubric.Rubric
	logger        *slog.Logger
}

func New(s *store.Store, e *engine.Engine, h *hermes.Client, w *results.Writer, defaultRubric *rubric.Rubric, logger *slog.Logger) *Processor {
	if defaultRubric == nil {
		defaultRubric = rubric.Default()
	}
	return &Processor{
		store:         s,
		engine:        e,
		hermes:        h,
		results:       w,
		defaultRubric: defaultRubric,
		logger:        logger,
	}
}

// HandleTranscriptStored is the NATS handler for swarm.scribe.transcript.stored.
func (p *Processor) HandleTranscriptStored(subject string, data []byte) {
	ctx := context.Background()

	var evt hermes.TranscriptStoredEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse transcript event", "error", err)
		return
	}
	if evt.Transcription.Text == "" {
		p.logger.Error("transcript event has no transcription text", "session_id", evt.SessionID)
		return
	}

	p.logger.Info("processing transcript",
		"session_id", evt.SessionID,
		"source", evt.Source,
		"rubric", evt.RubricName,
	)

	r := p.resolveRubric(ctx, evt.RubricName)

	out, err := p.engine.Evaluate(ctx, r, &evt.Transcription, evt.VisualContext)
	if err != nil {
		p.logger.Error("evaluation failed", "session_id", evt.SessionID, "error", err)
		return
	}

	var evaluationID string
	if p.store != nil {
		id, err := p.store.WriteEvaluation(ctx, evt.SessionID, evt.Source, r.Name, out)
		if err != nil {
			// Persistence trouble must not lose the evaluation; the result
			// file below still gets written.
			p.logger.Error("failed to persist evaluation", "session_id", evt.SessionID, "error", err)
		} else {
			evaluationID = id.String()
		}
	}

	var resultsPath string
	if p.results != nil {
		path, err := p.results.Write(&results.Record{
			SessionID: evt.SessionID,
			Source:    evt.Source,
			Rubric:    r.Name,
			Submitter: evt.Submitter,
			Outcome:   out,
		})
		if err != nil {
			p.logger.Error("failed to write results file", "session_id", evt.SessionID, "error", err)
		} else {
			resultsPath = path
		}
	}

	if p.hermes != nil {
		completed := hermes.EvaluationCompletedEvent{
			SessionID:    evt.SessionID,
			EvaluationID: evaluationID,
			Source:       evt.Source,
			RubricName:   r.Name,
			Overall:      out.Evaluation.Overall,
			Verdict:      string(out.Evaluation.Verdict),
			Quality:      string(out.Quality.Rating),
			ResultsPath:  resultsPath,
		}
		if err := p.hermes.Publish(hermes.SubjectEvaluationCompleted, completed); err != nil {
			p.logger.Error("failed to publish evaluation completed", "session_id", evt.SessionID, "error", err)
		}
	}

	p.logger.Info("transcript evaluated",
		"session_id", evt.SessionID,
		"rubric", r.Name,
		"overall", out.Evaluation.Overall,
		"verdict", out.Evaluation.Verdict,
	)
}

// resolveRubric picks the rubric for an evaluation: the named stored rubric
// when available, the default otherwise. A stored rubric that no longer
// validates also falls back rather than blocking the evaluation.
func (p *Processor) resolveRubric(ctx context.Context, name string) *rubric.Rubric {
	if name == "" || p.store == nil {
		return p.defaultRubric
	}

	r, err := p.store.GetRubric(ctx, name)
	if err != nil {
		var schemaErr *rubric.SchemaError
		switch {
		case errors.Is(err, store.ErrNotFound):
			p.logger.Warn("rubric not found, using default", "rubric", name)
		case errors.As(err, &schemaErr):
			p.logger.Warn("stored rubric failed validation, using default", "rubric", name, "violations", len(schemaErr.Violations))
		default:
			p.logger.Error("failed to load rubric, using default", "rubric", name, "error", err)
		}
		return p.defaultRubric
	}
	return r
}
