// Package eval runs a rubric evaluation: it splits the rubric's criteria
// into oracle-sized batches, collects raw judgments, repairs whatever the
// oracle got wrong, and aggregates the complete score set into a verdict.
package eval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/caesar/internal/oracle"
	"github.com/MikeSquared-Agency/caesar/internal/rubric"
)

// DefaultMaxCriteriaPerCall bounds how many criteria one oracle call is
// asked to score. Large prompts are the main source of truncated or
// malformed responses, so the default stays small.
const DefaultMaxCriteriaPerCall = 8

const omittedNote = "oracle omitted this criterion"

// Batch is a contiguous slice of criteria assigned to one oracle call. The
// ordinal index allows deterministic reassembly regardless of which call
// returns what.
type Batch struct {
	Index    int
	Criteria []oracle.CriterionRef
}

// SplitBatches cuts the flattened criteria into ordered batches of at most
// maxPerCall entries.
func SplitBatches(refs []oracle.CriterionRef, maxPerCall int) []Batch {
	if maxPerCall <= 0 {
		maxPerCall = DefaultMaxCriteriaPerCall
	}
	var batches []Batch
	for start := 0; start < len(refs); start += maxPerCall {
		end := start + maxPerCall
		if end > len(refs) {
			end = len(refs)
		}
		batches = append(batches, Batch{
			Index:    len(batches),
			Criteria: refs[start:end],
		})
	}
	return batches
}

// Coordinator owns the batching protocol around a scoring oracle.
type Coordinator struct {
	oracle     oracle.Oracle
	maxPerCall int
	logger     *slog.Logger
}

func NewCoordinator(o oracle.Oracle, maxPerCall int, logger *slog.Logger) *Coordinator {
	if maxPerCall <= 0 {
		maxPerCall = DefaultMaxCriteriaPerCall
	}
	return &Coordinator{oracle: o, maxPerCall: maxPerCall, logger: logger}
}

// Evaluate scores every criterion of the rubric against the transcript and
// aggregates the results.
//
// Batches are issued sequentially — oracle providers are rate-limited and
// ordering must stay deterministic. A failed batch never aborts the
// evaluation: its criteria fall back to zero scores and the run continues.
// The merge step guarantees the aggregator sees exactly one in-bound score
// per criterion.
func (c *Coordinator) Evaluate(ctx context.Context, r *rubric.Rubric, transcript, visualContext string) (*Result, error) {
	flat := r.Flatten()
	refs := make([]oracle.CriterionRef, 0, len(flat))
	for _, fc := range flat {
		refs = append(refs, oracle.CriterionRef{
			ID:          fc.ID,
			Label:       fc.Label,
			Description: fc.Description,
			Bound:       oracle.Bound{Min: fc.BoundMin, Max: fc.BoundMax},
		})
	}

	batches := SplitBatches(refs, c.maxPerCall)
	c.logger.Info("evaluating rubric",
		"rubric", r.Name,
		"criteria", len(refs),
		"batches", len(batches),
	)

	raw := make([][]oracle.CriterionScore, len(batches))
	failedNotes := make(map[string]string)
	var warnings []string
	for _, b := range batches {
		scores, err := c.oracle.Score(ctx, oracle.Request{
			Criteria:      b.Criteria,
			Transcript:    transcript,
			VisualContext: visualContext,
		})
		if err != nil {
			// Batch failure degrades that batch's scores, nothing more.
			c.logger.Warn("oracle batch failed", "batch", b.Index, "criteria", len(b.Criteria), "error", err)
			warnings = append(warnings, fmt.Sprintf("batch %d failed: %v", b.Index, err))
			for _, ref := range b.Criteria {
				failedNotes[ref.ID] = "oracle call failed for this batch"
			}
			continue
		}
		raw[b.Index] = scores
	}

	merged, mergeWarnings := c.merge(refs, raw, failedNotes)
	res := Aggregate(r, merged)
	res.Warnings = append(append(warnings, mergeWarnings...), res.Warnings...)
	return res, nil
}

// merge reassembles batch responses into exactly one score per rubric
// criterion. Unknown ids are dropped, duplicates keep the first occurrence,
// out-of-bound scores are clamped, and missing criteria are zero-filled —
// all criterion-level repairs, reported as warnings, never errors.
func (c *Coordinator) merge(refs []oracle.CriterionRef, raw [][]oracle.CriterionScore, failedNotes map[string]string) (map[string]oracle.CriterionScore, []string) {
	bounds := make(map[string]oracle.Bound, len(refs))
	for _, ref := range refs {
		bounds[ref.ID] = ref.Bound
	}

	var warnings []string
	merged := make(map[string]oracle.CriterionScore, len(refs))
	for _, batch := range raw {
		for _, score := range batch {
			bound, known := bounds[score.CriterionID]
			if !known {
				c.logger.Warn("oracle returned unknown criterion", "criterion_id", score.CriterionID)
				warnings = append(warnings, fmt.Sprintf("unknown criterion %q in oracle response", score.CriterionID))
				continue
			}
			if _, dup := merged[score.CriterionID]; dup {
				c.logger.Warn("oracle returned duplicate criterion, keeping first", "criterion_id", score.CriterionID)
				warnings = append(warnings, fmt.Sprintf("duplicate score for criterion %q, kept first", score.CriterionID))
				continue
			}
			if score.RawScore < bound.Min || score.RawScore > bound.Max {
				clamped := score.RawScore
				if clamped < bound.Min {
					clamped = bound.Min
				}
				if clamped > bound.Max {
					clamped = bound.Max
				}
				c.logger.Warn("oracle score out of bound, clamped",
					"criterion_id", score.CriterionID, "raw", score.RawScore, "clamped", clamped)
				warnings = append(warnings, fmt.Sprintf("score %.2f for criterion %q out of bound [%g,%g], clamped", score.RawScore, score.CriterionID, bound.Min, bound.Max))
				score.RawScore = clamped
			}
			merged[score.CriterionID] = score
		}
	}

	// Zero-fill anything the oracle skipped so aggregation always sees a
	// complete score set. Criteria from failed batches carry the failure
	// note instead of the omission one.
	for _, ref := range refs {
		if _, ok := merged[ref.ID]; !ok {
			note := omittedNote
			if n, failed := failedNotes[ref.ID]; failed {
				note = n
			} else {
				c.logger.Warn("criterion missing from oracle responses", "criterion_id", ref.ID)
			}
			merged[ref.ID] = oracle.CriterionScore{
				CriterionID: ref.ID,
				RawScore:    0,
				Note:        note,
			}
		}
	}

	return merged, warnings
}
