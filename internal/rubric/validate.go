package rubric

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// weightTolerance absorbs floating-point rounding in externally authored
// JSON. Points-sum checks are exact integer comparisons with no tolerance.
const weightTolerance = 0.01

// SchemaError reports every structural violation found in a rubric document,
// not just the first, so authors can fix a rubric in one pass.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid rubric: %s", strings.Join(e.Violations, "; "))
}

// document is the raw JSON shape before validation. The hierarchical variant
// names its criterion fields differently from the flat one, so criteria are
// decoded separately per shape.
type document struct {
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Criteria      []flatDoc     `json:"criteria"`
	Categories    []categoryDoc `json:"categories"`
	Scale         *Scale        `json:"scale"`
	OverallMethod string        `json:"overall_method"`
	Thresholds    *Thresholds   `json:"thresholds"`
}

type flatDoc struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Desc   string  `json:"desc"`
	Weight float64 `json:"weight"`
}

type categoryDoc struct {
	CategoryID string           `json:"category_id"`
	Label      string           `json:"label"`
	Weight     float64          `json:"weight"`
	MaxPoints  int              `json:"max_points"`
	Criteria   []catCriterionDoc `json:"criteria"`
}

type catCriterionDoc struct {
	CriterionID string `json:"criterion_id"`
	Label       string `json:"label"`
	Desc        string `json:"desc"`
	MaxPoints   int    `json:"max_points"`
}

// Parse decodes and validates a rubric document. On validation failure it
// returns a *SchemaError listing every violation; the caller is expected to
// fall back to a known-good rubric (see Default). Parse never repairs.
func Parse(data []byte) (*Rubric, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode rubric: %w", err)
	}
	return doc.build()
}

func (d *document) build() (*Rubric, error) {
	var violations []string

	hasFlat := len(d.Criteria) > 0
	hasHier := len(d.Categories) > 0
	if hasFlat == hasHier {
		violations = append(violations, "ambiguous or missing variant marker: rubric must have exactly one of criteria or categories")
	}

	switch {
	case hasFlat && !hasHier:
		violations = append(violations, d.validateFlat()...)
	case hasHier && !hasFlat:
		violations = append(violations, d.validateHierarchical()...)
	}

	violations = append(violations, d.validateScaleAndThresholds()...)

	if len(violations) > 0 {
		return nil, &SchemaError{Violations: violations}
	}

	r := &Rubric{
		Name:        d.Name,
		Description: d.Description,
		Scale:       *d.Scale,
		Thresholds:  *d.Thresholds,
	}
	if hasFlat {
		r.Method = MethodWeightedMean
		r.Criteria = make([]Criterion, 0, len(d.Criteria))
		for _, c := range d.Criteria {
			r.Criteria = append(r.Criteria, Criterion{
				ID:          c.ID,
				Label:       c.Label,
				Description: c.Desc,
				Weight:      c.Weight,
			})
		}
	} else {
		r.Method = MethodTotalPoints
		r.Categories = make([]Category, 0, len(d.Categories))
		for _, cat := range d.Categories {
			built := Category{
				ID:        cat.CategoryID,
				Label:     cat.Label,
				Weight:    cat.Weight,
				MaxPoints: cat.MaxPoints,
			}
			for _, c := range cat.Criteria {
				built.Criteria = append(built.Criteria, Criterion{
					ID:          c.CriterionID,
					Label:       c.Label,
					Description: c.Desc,
					MaxPoints:   c.MaxPoints,
				})
			}
			r.Categories = append(r.Categories, built)
		}
	}
	return r, nil
}

func (d *document) validateFlat() []string {
	var violations []string

	if d.OverallMethod != "" && d.OverallMethod != string(MethodWeightedMean) {
		violations = append(violations, fmt.Sprintf("overall_method must be %q for flat rubrics, got %q", MethodWeightedMean, d.OverallMethod))
	}

	seen := make(map[string]bool, len(d.Criteria))
	totalWeight := 0.0
	for i, c := range d.Criteria {
		if c.ID == "" {
			violations = append(violations, fmt.Sprintf("criterion %d: missing id", i))
		} else if seen[c.ID] {
			violations = append(violations, fmt.Sprintf("duplicate criterion id %q", c.ID))
		}
		seen[c.ID] = true

		if c.Label == "" {
			violations = append(violations, fmt.Sprintf("criterion %q: missing label", c.ID))
		}
		if c.Desc == "" {
			violations = append(violations, fmt.Sprintf("criterion %q: missing desc", c.ID))
		}
		if c.Weight <= 0 || c.Weight > 1 {
			violations = append(violations, fmt.Sprintf("criterion %q: weight must be in (0,1], got %g", c.ID, c.Weight))
		}
		totalWeight += c.Weight
	}

	if math.Abs(totalWeight-1.0) > weightTolerance {
		violations = append(violations, fmt.Sprintf("criterion weights must sum to 1.0 ±%g, got %.4f", weightTolerance, totalWeight))
	}

	return violations
}

func (d *document) validateHierarchical() []string {
	var violations []string

	if d.OverallMethod != "" && d.OverallMethod != string(MethodTotalPoints) {
		violations = append(violations, fmt.Sprintf("overall_method must be %q for hierarchical rubrics, got %q", MethodTotalPoints, d.OverallMethod))
	}

	seenCats := make(map[string]bool, len(d.Categories))
	totalWeight := 0.0
	totalPoints := 0
	for i, cat := range d.Categories {
		if cat.CategoryID == "" {
			violations = append(violations, fmt.Sprintf("category %d: missing category_id", i))
		} else if seenCats[cat.CategoryID] {
			violations = append(violations, fmt.Sprintf("duplicate category id %q", cat.CategoryID))
		}
		seenCats[cat.CategoryID] = true

		if cat.Label == "" {
			violations = append(violations, fmt.Sprintf("category %q: missing label", cat.CategoryID))
		}
		if cat.Weight <= 0 || cat.Weight > 1 {
			violations = append(violations, fmt.Sprintf("category %q: weight must be in (0,1], got %g", cat.CategoryID, cat.Weight))
		}
		totalWeight += cat.Weight

		if cat.MaxPoints <= 0 {
			violations = append(violations, fmt.Sprintf("category %q: max_points must be positive", cat.CategoryID))
		}
		totalPoints += cat.MaxPoints

		if len(cat.Criteria) == 0 {
			violations = append(violations, fmt.Sprintf("category %q: criteria must be non-empty", cat.CategoryID))
		}

		seenCrits := make(map[string]bool, len(cat.Criteria))
		catPoints := 0
		for j, c := range cat.Criteria {
			if c.CriterionID == "" {
				violations = append(violations, fmt.Sprintf("category %q criterion %d: missing criterion_id", cat.CategoryID, j))
			} else if seenCrits[c.CriterionID] {
				violations = append(violations, fmt.Sprintf("category %q: duplicate criterion id %q", cat.CategoryID, c.CriterionID))
			}
			seenCrits[c.CriterionID] = true

			if c.Label == "" {
				violations = append(violations, fmt.Sprintf("criterion %q: missing label", c.CriterionID))
			}
			if c.Desc == "" {
				violations = append(violations, fmt.Sprintf("criterion %q: missing desc", c.CriterionID))
			}
			if c.MaxPoints <= 0 {
				violations = append(violations, fmt.Sprintf("criterion %q: max_points must be positive", c.CriterionID))
			}
			catPoints += c.MaxPoints
		}

		// Exact integer check, no tolerance.
		if len(cat.Criteria) > 0 && catPoints != cat.MaxPoints {
			violations = append(violations, fmt.Sprintf("category %q: max_points (%d) must equal sum of criterion max_points (%d)", cat.CategoryID, cat.MaxPoints, catPoints))
		}
	}

	if math.Abs(totalWeight-1.0) > weightTolerance {
		violations = append(violations, fmt.Sprintf("category weights must sum to 1.0 ±%g, got %.4f", weightTolerance, totalWeight))
	}

	if d.Scale != nil && d.Scale.Max != float64(totalPoints) {
		violations = append(violations, fmt.Sprintf("scale max (%g) must equal total category max_points (%d)", d.Scale.Max, totalPoints))
	}

	return violations
}

func (d *document) validateScaleAndThresholds() []string {
	var violations []string

	if d.Scale == nil {
		violations = append(violations, "missing scale")
	} else if d.Scale.Min >= d.Scale.Max {
		violations = append(violations, fmt.Sprintf("scale min (%g) must be less than max (%g)", d.Scale.Min, d.Scale.Max))
	}

	if d.Thresholds == nil {
		violations = append(violations, "missing thresholds")
	} else if d.Thresholds.Revise >= d.Thresholds.Pass {
		violations = append(violations, fmt.Sprintf("revise threshold (%g) must be less than pass threshold (%g)", d.Thresholds.Revise, d.Thresholds.Pass))
	}

	return violations
}
