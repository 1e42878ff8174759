package eval

import (
	"fmt"

	"github.com/MikeSquared-Agency/caesar/internal/oracle"
	"github.com/MikeSquared-Agency/caesar/internal/rubric"
)

// CategoryBreakdown records one category's subtotal for hierarchical
// rubrics. It is mandatory output — the per-category view is the main
// reason the hierarchical shape exists.
type CategoryBreakdown struct {
	CategoryID string  `json:"category_id"`
	Label      string  `json:"label"`
	Points     float64 `json:"points"`
	MaxPoints  float64 `json:"max_points"`
	Percentage float64 `json:"percentage"`
}

// Result is the aggregation output for one evaluation. Created once,
// never mutated afterwards.
type Result struct {
	PerCriterion map[string]oracle.CriterionScore `json:"per_criterion"`
	Overall      float64                          `json:"overall_score"`
	Method       rubric.Method                    `json:"method"`
	Verdict      rubric.Verdict                   `json:"verdict"`
	Categories   []CategoryBreakdown              `json:"category_breakdown,omitempty"`
	Warnings     []string                         `json:"warnings,omitempty"`
}

// Aggregate folds a complete per-criterion score set into an overall score
// and verdict using the rubric's method. The score map must contain an
// entry for every rubric criterion (the coordinator guarantees this).
// Aggregation is order-independent: the overall score depends only on the
// id→score mapping, never on arrival order.
func Aggregate(r *rubric.Rubric, scores map[string]oracle.CriterionScore) *Result {
	res := &Result{
		PerCriterion: scores,
		Method:       r.Method,
	}

	if r.Hierarchical() {
		aggregateTotalPoints(r, res)
	} else {
		aggregateWeightedMean(r, res)
	}

	// Oracles and rounding can push the total outside the declared scale;
	// clamp and report rather than fail.
	if res.Overall > r.Scale.Max {
		res.Warnings = append(res.Warnings, fmt.Sprintf("overall score %.4f exceeded scale max %g, clamped", res.Overall, r.Scale.Max))
		res.Overall = r.Scale.Max
	}
	if res.Overall < r.Scale.Min {
		res.Warnings = append(res.Warnings, fmt.Sprintf("overall score %.4f fell below scale min %g, clamped", res.Overall, r.Scale.Min))
		res.Overall = r.Scale.Min
	}

	res.Verdict = r.Classify(res.Overall)
	return res
}

func aggregateWeightedMean(r *rubric.Rubric, res *Result) {
	overall := 0.0
	for _, c := range r.Criteria {
		overall += res.PerCriterion[c.ID].RawScore * c.Weight
	}
	res.Overall = overall
}

func aggregateTotalPoints(r *rubric.Rubric, res *Result) {
	total := 0.0
	for _, cat := range r.Categories {
		subtotal := 0.0
		for _, c := range cat.Criteria {
			subtotal += res.PerCriterion[c.ID].RawScore
		}
		max := float64(cat.MaxPoints)
		if subtotal > max {
			res.Warnings = append(res.Warnings, fmt.Sprintf("category %q subtotal %.2f exceeded max %g, capped", cat.ID, subtotal, max))
			subtotal = max
		}
		if subtotal < 0 {
			subtotal = 0
		}

		pct := 0.0
		if max > 0 {
			pct = subtotal / max * 100
		}
		res.Categories = append(res.Categories, CategoryBreakdown{
			CategoryID: cat.ID,
			Label:      cat.Label,
			Points:     subtotal,
			MaxPoints:  max,
			Percentage: pct,
		})
		total += subtotal
	}
	res.Overall = total
}
