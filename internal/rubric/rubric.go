// Package rubric defines the evaluation contract for demo submissions: the
// criteria to score, how per-criterion scores roll up into an overall score,
// and the thresholds that turn that score into a verdict.
//
// Two rubric shapes are supported. The flat shape carries weighted criteria
// scored on a shared scale and aggregated by weighted mean. The hierarchical
// shape groups point-based criteria into weighted categories and aggregates
// by total points. A Rubric value holds exactly one of the two.
package rubric

// Verdict is the three-way classification of an overall score.
type Verdict string

const (
	VerdictPass   Verdict = "pass"
	VerdictRevise Verdict = "revise"
	VerdictFail   Verdict = "fail"
)

// Method identifies how per-criterion scores combine into an overall score.
type Method string

const (
	MethodWeightedMean Method = "weighted_mean"
	MethodTotalPoints  Method = "total_points"
)

// Scale is the inclusive range of the overall score.
type Scale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Thresholds split the scale into pass / revise / fail bands.
// Revise must be strictly below Pass.
type Thresholds struct {
	Pass   float64 `json:"pass"`
	Revise float64 `json:"revise"`
}

// Criterion is one scorable dimension. Flat rubrics set Weight; hierarchical
// rubrics set MaxPoints. A criterion belongs to exactly one rubric (or one
// category within it) and is never shared.
type Criterion struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Description string  `json:"desc"`
	Weight      float64 `json:"weight,omitempty"`
	MaxPoints   int     `json:"max_points,omitempty"`
}

// Category groups criteria in a hierarchical rubric. Its MaxPoints must
// equal the exact sum of its criteria's MaxPoints.
type Category struct {
	ID        string      `json:"category_id"`
	Label     string      `json:"label"`
	Weight    float64     `json:"weight"`
	MaxPoints int         `json:"max_points"`
	Criteria  []Criterion `json:"criteria"`
}

// Rubric is a validated evaluation contract. Exactly one of Criteria
// (flat) or Categories (hierarchical) is populated.
type Rubric struct {
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Method      Method      `json:"overall_method"`
	Criteria    []Criterion `json:"criteria,omitempty"`
	Categories  []Category  `json:"categories,omitempty"`
	Scale       Scale       `json:"scale"`
	Thresholds  Thresholds  `json:"thresholds"`
}

// Hierarchical reports whether the rubric uses the category/points shape.
func (r *Rubric) Hierarchical() bool {
	return len(r.Categories) > 0
}

// Classify maps an overall score to a verdict using the rubric thresholds.
// The pass band is inclusive of the pass threshold, the revise band of the
// revise threshold.
func (r *Rubric) Classify(overall float64) Verdict {
	switch {
	case overall >= r.Thresholds.Pass:
		return VerdictPass
	case overall >= r.Thresholds.Revise:
		return VerdictRevise
	default:
		return VerdictFail
	}
}

// FlatCriterion is a criterion flattened out of its rubric together with the
// score bound the oracle must respect. CategoryID is empty for flat rubrics.
type FlatCriterion struct {
	Criterion
	CategoryID string
	BoundMin   float64
	BoundMax   float64
}

// Flatten returns the rubric's criteria in declaration order: categories in
// declaration order, criteria within each category in declaration order.
// Flat criteria are bounded by the rubric scale, hierarchical criteria by
// [0, max_points].
func (r *Rubric) Flatten() []FlatCriterion {
	if !r.Hierarchical() {
		out := make([]FlatCriterion, 0, len(r.Criteria))
		for _, c := range r.Criteria {
			out = append(out, FlatCriterion{
				Criterion: c,
				BoundMin:  r.Scale.Min,
				BoundMax:  r.Scale.Max,
			})
		}
		return out
	}

	var out []FlatCriterion
	for _, cat := range r.Categories {
		for _, c := range cat.Criteria {
			out = append(out, FlatCriterion{
				Criterion:  c,
				CategoryID: cat.ID,
				BoundMax:   float64(c.MaxPoints),
			})
		}
	}
	return out
}

// CriterionCount is the total number of scorable criteria across both shapes.
func (r *Rubric) CriterionCount() int {
	if !r.Hierarchical() {
		return len(r.Criteria)
	}
	n := 0
	for _, cat := range r.Categories {
		n += len(cat.Criteria)
	}
	return n
}

// Labels returns a criterion_id → label map for feedback rendering.
func (r *Rubric) Labels() map[string]string {
	labels := make(map[string]string, r.CriterionCount())
	for _, fc := range r.Flatten() {
		labels[fc.ID] = fc.Label
	}
	return labels
}
