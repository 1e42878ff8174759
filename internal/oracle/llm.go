package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

const scoringMaxTokens = 1600

// LLM adapts a text-completion provider to the Oracle interface. It builds
// the scoring prompt for one batch, requests strict JSON, and decodes the
// per-criterion judgments.
type LLM struct {
	llm    Completer
	logger *slog.Logger
}

func NewLLM(llm Completer, logger *slog.Logger) *LLM {
	return &LLM{llm: llm, logger: logger}
}

type scoresResponse struct {
	Scores []CriterionScore `json:"scores"`
}

func (l *LLM) Score(ctx context.Context, req Request) ([]CriterionScore, error) {
	prompt := fmt.Sprintf(scoringUserPrompt, formatCriteria(req.Criteria), req.Transcript, orNone(req.VisualContext))

	raw, err := l.llm.Complete(ctx, scoringSystemPrompt, prompt, scoringMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("llm scoring: %w", err)
	}

	var resp scoresResponse
	if err := json.Unmarshal([]byte(StripFences(raw)), &resp); err != nil {
		l.logger.Error("failed to parse scoring response", "error", err, "raw", raw)
		return nil, fmt.Errorf("parse scores: %w", err)
	}

	l.logger.Debug("batch scored", "criteria", len(req.Criteria), "scores", len(resp.Scores))
	return resp.Scores, nil
}

func formatCriteria(refs []CriterionRef) string {
	var sb strings.Builder
	for _, ref := range refs {
		fmt.Fprintf(&sb, "- %s (%s): %s [score range %g-%g]\n",
			ref.ID, ref.Label, ref.Description, ref.Bound.Min, ref.Bound.Max)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

// StripFences removes a surrounding markdown code fence from an LLM
// response. Providers are told to return bare JSON but occasionally wrap it
// anyway.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
