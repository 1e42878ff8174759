// Package engine wires the scoring oracle, the transcription quality
// classifier, and the feedback synthesizer into a single evaluation entry
// point. Everything downstream (event processor, HTTP API, batch replay)
// calls Evaluate and nothing else.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/caesar/internal/eval"
	"github.com/MikeSquared-Agency/caesar/internal/feedback"
	"github.com/MikeSquared-Agency/caesar/internal/oracle"
	"github.com/MikeSquared-Agency/caesar/internal/quality"
	"github.com/MikeSquared-Agency/caesar/internal/rubric"
	"github.com/MikeSquared-Agency/caesar/internal/transcript"
)

// Outcome is the complete result of evaluating one submission.
type Outcome struct {
	Evaluation *eval.Result      `json:"evaluation"`
	Quality    quality.Report    `json:"transcription_quality"`
	Feedback   feedback.Feedback `json:"feedback"`
}

// Engine runs evaluations. Safe for concurrent use: it holds no per-request
// state and its collaborators are read-only after construction.
type Engine struct {
	coordinator *eval.Coordinator
	synthesizer *feedback.Synthesizer
	logger      *slog.Logger
}

// New builds an engine around a scoring oracle. llm may be nil, in which
// case feedback uses its deterministic fallback.
func New(o oracle.Oracle, llm oracle.Completer, maxCriteriaPerCall int, logger *slog.Logger) *Engine {
	return &Engine{
		coordinator: eval.NewCoordinator(o, maxCriteriaPerCall, logger),
		synthesizer: feedback.NewSynthesizer(llm, logger),
		logger:      logger,
	}
}

// Evaluate grades one transcription against a rubric. Oracle trouble
// degrades scores rather than failing the run; the only hard error is a
// rubric with nothing to score.
func (e *Engine) Evaluate(ctx context.Context, r *rubric.Rubric, tr *transcript.Transcription, visualContext string) (*Outcome, error) {
	if r.CriterionCount() == 0 {
		return nil, fmt.Errorf("rubric %q has no criteria", r.Name)
	}

	result, err := e.coordinator.Evaluate(ctx, r, tr.Text, visualContext)
	if err != nil {
		return nil, fmt.Errorf("evaluate rubric %q: %w", r.Name, err)
	}

	report := quality.FromSegments(tr.Segments)
	fb := e.synthesizer.Synthesize(ctx, tr.Text, visualContext, r, result, tr.Segments)

	e.logger.Info("evaluation complete",
		"rubric", r.Name,
		"overall", result.Overall,
		"verdict", result.Verdict,
		"quality", report.Rating,
		"tone", fb.Tone,
	)

	return &Outcome{
		Evaluation: result,
		Quality:    report,
		Feedback:   fb,
	}, nil
}
