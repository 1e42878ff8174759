// Package feedback turns a finished evaluation into two strengths and two
// areas for improvement, addressed to the submitter. An LLM writes the prose
// when a provider is available; a deterministic score-based fallback covers
// every other case, so feedback is never absent or partial.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/caesar/internal/eval"
	"github.com/MikeSquared-Agency/caesar/internal/oracle"
	"github.com/MikeSquared-Agency/caesar/internal/rubric"
	"github.com/MikeSquared-Agency/caesar/internal/transcript"
)

const (
	feedbackMaxTokens = 1000

	// transcriptExcerptLimit keeps the feedback prompt small; the scores
	// already carry the evaluation detail.
	transcriptExcerptLimit = 2500

	maxLowConfidenceRefs = 3
)

// Tone is the register feedback is written in, keyed off the verdict.
type Tone string

const (
	ToneCongratulatory Tone = "congratulatory"
	ToneSupportive     Tone = "supportive"
)

// SelectTone is congratulatory only for a passing verdict. Revise and fail
// both get the supportive register.
func SelectTone(v rubric.Verdict) Tone {
	if v == rubric.VerdictPass {
		return ToneCongratulatory
	}
	return ToneSupportive
}

// Item is one feedback point.
type Item struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Feedback always carries two strengths and two improvements (fewer only
// when the rubric itself has fewer criteria).
type Feedback struct {
	Tone         Tone   `json:"tone"`
	Strengths    []Item `json:"strengths"`
	Improvements []Item `json:"improvements"`
}

// Synthesizer produces feedback for evaluation results. A nil Completer
// selects the deterministic fallback path.
type Synthesizer struct {
	llm    oracle.Completer
	logger *slog.Logger
}

func NewSynthesizer(llm oracle.Completer, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{llm: llm, logger: logger}
}

// rankedCriterion pairs a flattened criterion with its score for ordering.
type rankedCriterion struct {
	rubric.FlatCriterion
	Score oracle.CriterionScore
}

// Synthesize writes feedback for one evaluation. The LLM path and the
// fallback path draw from the same ranking: highest-scoring criteria become
// strengths, lowest-scoring become improvements. Ties keep rubric
// declaration order, so output is deterministic for a given score set.
func (s *Synthesizer) Synthesize(ctx context.Context, transcriptText, visualContext string, r *rubric.Rubric, res *eval.Result, segs []transcript.Segment) Feedback {
	tone := SelectTone(res.Verdict)
	ranked := rank(r, res)
	top := ranked[:min(2, len(ranked))]
	bottom := ranked[max(0, len(ranked)-2):]

	if s.llm == nil {
		return fallback(tone, top, bottom)
	}

	prompt := fmt.Sprintf(feedbackUserPrompt,
		toneInstruction(tone),
		summarize(top),
		summarize(bottom),
		res.Overall, r.Scale.Max, res.Verdict,
		excerpt(transcriptText),
		timingAnalysis(segs),
		orNotAvailable(visualContext),
	)

	raw, err := s.llm.Complete(ctx, feedbackSystemPrompt, prompt, feedbackMaxTokens)
	if err != nil {
		s.logger.Warn("feedback generation failed, using fallback", "error", err)
		return fallback(tone, top, bottom)
	}

	var fb Feedback
	if err := json.Unmarshal([]byte(oracle.StripFences(raw)), &fb); err != nil {
		s.logger.Warn("failed to parse feedback response, using fallback", "error", err)
		return fallback(tone, top, bottom)
	}
	if len(fb.Strengths) != len(top) || len(fb.Improvements) != len(bottom) {
		s.logger.Warn("feedback response had wrong shape, using fallback",
			"strengths", len(fb.Strengths), "improvements", len(fb.Improvements))
		return fallback(tone, top, bottom)
	}

	fb.Tone = tone
	return fb
}

// rank orders criteria by score descending, declaration order breaking ties.
func rank(r *rubric.Rubric, res *eval.Result) []rankedCriterion {
	flat := r.Flatten()
	ranked := make([]rankedCriterion, 0, len(flat))
	for _, fc := range flat {
		ranked = append(ranked, rankedCriterion{FlatCriterion: fc, Score: res.PerCriterion[fc.ID]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score.RawScore > ranked[j].Score.RawScore
	})
	return ranked
}

func fallback(tone Tone, top, bottom []rankedCriterion) Feedback {
	fb := Feedback{Tone: tone}
	for _, rc := range top {
		note := rc.Score.Note
		if note == "" {
			note = "Good performance in this area."
		}
		fb.Strengths = append(fb.Strengths, Item{
			Title:       rc.Label,
			Description: fmt.Sprintf("You scored %g/%g. %s", rc.Score.RawScore, rc.BoundMax, note),
		})
	}
	for _, rc := range bottom {
		fb.Improvements = append(fb.Improvements, Item{
			Title:       rc.Label,
			Description: fmt.Sprintf("You scored %g/%g. Consider focusing on improving this aspect.", rc.Score.RawScore, rc.BoundMax),
		})
	}
	return fb
}

func summarize(criteria []rankedCriterion) string {
	var sb strings.Builder
	for _, rc := range criteria {
		fmt.Fprintf(&sb, "- %s: %g/%g - %s\n", rc.Label, rc.Score.RawScore, rc.BoundMax, rc.Score.Note)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func excerpt(text string) string {
	if len(text) > transcriptExcerptLimit {
		return text[:transcriptExcerptLimit]
	}
	return text
}

// timingAnalysis lists up to three low-confidence segments so feedback can
// point at the moments in the recording that likely need attention.
func timingAnalysis(segs []transcript.Segment) string {
	low := transcript.LowConfidence(segs, maxLowConfidenceRefs)
	if len(low) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\nTIMING ANALYSIS (areas that may need attention):\n")
	for i, seg := range low {
		preview := strings.TrimSpace(seg.Text)
		if len(preview) > 50 {
			preview = preview[:50]
		}
		fmt.Fprintf(&sb, "%d. %s: Low confidence (%.2f) - %q\n",
			i+1, transcript.FormatTimestamp(seg.Start), seg.AvgLogprob, preview)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func toneInstruction(t Tone) string {
	if t == ToneCongratulatory {
		return toneCongratulatory
	}
	return toneSupportive
}

func orNotAvailable(s string) string {
	if s == "" {
		return "Not available"
	}
	return s
}
