package oracle

import (
	"context"
	"math"
)

// conservativeFraction places heuristic scores at 60% of each criterion's
// ceiling: 6/10 on the standard flat scale.
const conservativeFraction = 0.6

// Heuristic is the deterministic fallback oracle used when no LLM provider
// is configured. It assigns a conservative score to every criterion so an
// evaluation always completes with a complete, explicable score set.
type Heuristic struct{}

func (Heuristic) Score(_ context.Context, req Request) ([]CriterionScore, error) {
	scores := make([]CriterionScore, 0, len(req.Criteria))
	for _, ref := range req.Criteria {
		scores = append(scores, CriterionScore{
			CriterionID: ref.ID,
			RawScore:    math.Round(ref.Bound.Max * conservativeFraction),
			Note:        "conservative heuristic score (no scoring provider configured)",
		})
	}
	return scores, nil
}
