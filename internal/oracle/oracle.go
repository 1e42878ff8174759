// Package oracle abstracts the component that assigns raw numeric scores to
// rubric criteria given a transcript. The evaluation engine is written once
// against the Oracle interface; concrete providers are an Anthropic adapter,
// an OpenAI adapter, and a deterministic heuristic for offline operation.
package oracle

import "context"

// Bound is the inclusive range a raw score must fall in for one criterion.
type Bound struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// CriterionRef is the view of a criterion an oracle is shown: identity,
// human-readable description, and the score bound. Oracles never see the
// rubric's weights or thresholds.
type CriterionRef struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"desc"`
	Bound       Bound  `json:"bound"`
}

// CriterionScore is one raw judgment. Produced by an oracle, consumed
// exactly once by the aggregator, never mutated.
type CriterionScore struct {
	CriterionID string  `json:"criterion_id"`
	RawScore    float64 `json:"raw_score"`
	Note        string  `json:"note,omitempty"`
}

// Request carries one batch of criteria plus the full evaluation context.
type Request struct {
	Criteria      []CriterionRef
	Transcript    string
	VisualContext string
}

// Oracle scores a batch of criteria. Implementations must return one entry
// per input criterion id; the coordinator tolerates and repairs violations.
type Oracle interface {
	Score(ctx context.Context, req Request) ([]CriterionScore, error)
}

// Completer is the minimal completion surface an LLM provider exposes.
// Both vendor clients implement it; the scoring adapter and the feedback
// synthesizer share it.
type Completer interface {
	Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error)
}
