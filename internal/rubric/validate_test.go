package rubric

import (
	"errors"
	"strings"
	"testing"
)

const validFlatDoc = `{
	"name": "flat",
	"criteria": [
		{"id": "accuracy", "label": "Accuracy", "desc": "claims are correct", "weight": 0.6},
		{"id": "clarity", "label": "Clarity", "desc": "easy to follow", "weight": 0.4}
	],
	"scale": {"min": 1, "max": 10},
	"overall_method": "weighted_mean",
	"thresholds": {"pass": 6.5, "revise": 5.0}
}`

const validHierDoc = `{
	"name": "hier",
	"categories": [
		{
			"category_id": "content", "label": "Content", "weight": 0.6, "max_points": 60,
			"criteria": [
				{"criterion_id": "depth", "label": "Depth", "desc": "goes beyond surface", "max_points": 40},
				{"criterion_id": "breadth", "label": "Breadth", "desc": "covers the feature set", "max_points": 20}
			]
		},
		{
			"category_id": "delivery", "label": "Delivery", "weight": 0.4, "max_points": 40,
			"criteria": [
				{"criterion_id": "pacing", "label": "Pacing", "desc": "neither rushed nor padded", "max_points": 40}
			]
		}
	],
	"scale": {"min": 0, "max": 100},
	"overall_method": "total_points",
	"thresholds": {"pass": 70, "revise": 50}
}`

func parseViolations(t *testing.T, doc string) []string {
	t.Helper()
	_, err := Parse([]byte(doc))
	if err == nil {
		t.Fatal("expected validation error")
	}
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %T: %v", err, err)
	}
	return schemaErr.Violations
}

func requireViolation(t *testing.T, violations []string, substr string) {
	t.Helper()
	for _, v := range violations {
		if strings.Contains(v, substr) {
			return
		}
	}
	t.Errorf("no violation mentioning %q in %v", substr, violations)
}

func TestParse_ValidFlat(t *testing.T) {
	r, err := Parse([]byte(validFlatDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Method != MethodWeightedMean {
		t.Errorf("method = %q, want weighted_mean", r.Method)
	}
	if r.Hierarchical() {
		t.Error("flat rubric reported as hierarchical")
	}
	if len(r.Criteria) != 2 || r.Criteria[0].ID != "accuracy" {
		t.Errorf("unexpected criteria: %+v", r.Criteria)
	}
}

func TestParse_ValidHierarchical(t *testing.T) {
	r, err := Parse([]byte(validHierDoc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Method != MethodTotalPoints {
		t.Errorf("method = %q, want total_points", r.Method)
	}
	if !r.Hierarchical() {
		t.Error("hierarchical rubric reported as flat")
	}
	if r.CriterionCount() != 3 {
		t.Errorf("criterion count = %d, want 3", r.CriterionCount())
	}
}

func TestParse_WeightSumRejected(t *testing.T) {
	doc := `{
		"criteria": [
			{"id": "a", "label": "A", "desc": "d", "weight": 0.3},
			{"id": "b", "label": "B", "desc": "d", "weight": 0.2}
		],
		"scale": {"min": 1, "max": 10},
		"thresholds": {"pass": 6.5, "revise": 5.0}
	}`
	requireViolation(t, parseViolations(t, doc), "weights must sum to 1.0")
}

func TestParse_WeightSumWithinTolerance(t *testing.T) {
	doc := `{
		"criteria": [
			{"id": "a", "label": "A", "desc": "d", "weight": 0.33},
			{"id": "b", "label": "B", "desc": "d", "weight": 0.33},
			{"id": "c", "label": "C", "desc": "d", "weight": 0.33}
		],
		"scale": {"min": 1, "max": 10},
		"thresholds": {"pass": 6.5, "revise": 5.0}
	}`
	if _, err := Parse([]byte(doc)); err != nil {
		t.Errorf("0.99 total should pass within tolerance, got %v", err)
	}
}

func TestParse_CategoryPointsMismatchRejected(t *testing.T) {
	doc := `{
		"categories": [
			{
				"category_id": "content", "label": "Content", "weight": 1.0, "max_points": 40,
				"criteria": [
					{"criterion_id": "depth", "label": "Depth", "desc": "d", "max_points": 20},
					{"criterion_id": "breadth", "label": "Breadth", "desc": "d", "max_points": 18}
				]
			}
		],
		"scale": {"min": 0, "max": 40},
		"thresholds": {"pass": 28, "revise": 20}
	}`
	requireViolation(t, parseViolations(t, doc), "must equal sum of criterion max_points")
}

func TestParse_ScaleMaxMismatchRejected(t *testing.T) {
	doc := strings.Replace(validHierDoc, `"max": 100`, `"max": 90`, 1)
	requireViolation(t, parseViolations(t, doc), "scale max")
}

func TestParse_BothVariantsRejected(t *testing.T) {
	doc := `{
		"criteria": [{"id": "a", "label": "A", "desc": "d", "weight": 1.0}],
		"categories": [
			{
				"category_id": "c", "label": "C", "weight": 1.0, "max_points": 10,
				"criteria": [{"criterion_id": "x", "label": "X", "desc": "d", "max_points": 10}]
			}
		],
		"scale": {"min": 1, "max": 10},
		"thresholds": {"pass": 6.5, "revise": 5.0}
	}`
	requireViolation(t, parseViolations(t, doc), "exactly one of criteria or categories")
}

func TestParse_NeitherVariantRejected(t *testing.T) {
	doc := `{"scale": {"min": 1, "max": 10}, "thresholds": {"pass": 6.5, "revise": 5.0}}`
	requireViolation(t, parseViolations(t, doc), "exactly one of criteria or categories")
}

func TestParse_DuplicateCriterionID(t *testing.T) {
	doc := `{
		"criteria": [
			{"id": "a", "label": "A", "desc": "d", "weight": 0.5},
			{"id": "a", "label": "A again", "desc": "d", "weight": 0.5}
		],
		"scale": {"min": 1, "max": 10},
		"thresholds": {"pass": 6.5, "revise": 5.0}
	}`
	requireViolation(t, parseViolations(t, doc), `duplicate criterion id "a"`)
}

func TestParse_ThresholdOrderRejected(t *testing.T) {
	doc := strings.Replace(validFlatDoc, `"thresholds": {"pass": 6.5, "revise": 5.0}`, `"thresholds": {"pass": 5.0, "revise": 6.5}`, 1)
	requireViolation(t, parseViolations(t, doc), "revise threshold")
}

func TestParse_CollectsAllViolations(t *testing.T) {
	// Bad weight sum, missing label, and inverted thresholds at once.
	doc := `{
		"criteria": [
			{"id": "a", "desc": "d", "weight": 0.3}
		],
		"scale": {"min": 10, "max": 1},
		"thresholds": {"pass": 5.0, "revise": 6.5}
	}`
	violations := parseViolations(t, doc)
	if len(violations) < 4 {
		t.Fatalf("expected all violations collected, got %d: %v", len(violations), violations)
	}
	requireViolation(t, violations, "missing label")
	requireViolation(t, violations, "weights must sum")
	requireViolation(t, violations, "scale min")
	requireViolation(t, violations, "revise threshold")
}

func TestParse_MalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{"criteria": [`))
	if err == nil {
		t.Fatal("expected decode error")
	}
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		t.Error("decode failure should not be a SchemaError")
	}
}

func TestSchemaError_MessageJoinsViolations(t *testing.T) {
	err := &SchemaError{Violations: []string{"first", "second"}}
	msg := err.Error()
	if !strings.Contains(msg, "first") || !strings.Contains(msg, "second") {
		t.Errorf("error message should include every violation: %q", msg)
	}
}
