// Package quality rates how trustworthy a transcription is, from the
// speech engine's own confidence signals. The rating and warnings travel
// with the evaluation result so a low score can be read in context — a
// "fail" on a barely-audible recording is a recording problem, not a demo
// problem.
package quality

import (
	"github.com/MikeSquared-Agency/caesar/internal/transcript"
)

// Rating is the three-tier transcription quality classification.
type Rating string

const (
	RatingHigh    Rating = "high"
	RatingMedium  Rating = "medium"
	RatingLow     Rating = "low"
	RatingUnknown Rating = "unknown" // no segments to judge from
)

// Report is a value object recomputed per evaluation and never shared.
type Report struct {
	AvgConfidence       float64  `json:"avg_confidence"`
	SpeechPercentage    float64  `json:"speech_percentage"`
	AvgCompressionRatio float64  `json:"avg_compression_ratio"`
	Rating              Rating   `json:"rating"`
	Warnings            []string `json:"warnings,omitempty"`
}

// Classify maps the three aggregate confidence signals to a quality report.
//
// The engine's average log probability empirically ranges about -1.5..0, so
// confidence remaps it linearly onto 0..100. The tier checks are ordered:
// high requires all three signals, medium only two.
func Classify(avgLogprob, avgNoSpeechProb, avgCompressionRatio float64) Report {
	confidence := clamp((avgLogprob+1.5)*66.67, 0, 100)
	speechPct := (1 - avgNoSpeechProb) * 100

	var warnings []string
	if confidence < 50 {
		warnings = append(warnings, "low transcription confidence — audio may be unclear")
	}
	if avgCompressionRatio > 2.5 {
		warnings = append(warnings, "high compression ratio — transcript may contain repetitions")
	}
	if speechPct < 70 {
		warnings = append(warnings, "low speech detection — audio may contain long silences or background noise")
	}

	var rating Rating
	switch {
	case confidence >= 80 && speechPct >= 85 && avgCompressionRatio < 2.0:
		rating = RatingHigh
	case confidence >= 60 && speechPct >= 70:
		rating = RatingMedium
	default:
		rating = RatingLow
	}

	return Report{
		AvgConfidence:       confidence,
		SpeechPercentage:    speechPct,
		AvgCompressionRatio: avgCompressionRatio,
		Rating:              rating,
		Warnings:            warnings,
	}
}

// FromSegments averages the per-segment signals and classifies them. An
// empty segment list yields RatingUnknown rather than a misleading tier.
func FromSegments(segs []transcript.Segment) Report {
	if len(segs) == 0 {
		return Report{
			Rating:   RatingUnknown,
			Warnings: []string{"no segments available"},
		}
	}

	var logprob, noSpeech, compression float64
	for _, s := range segs {
		logprob += s.AvgLogprob
		noSpeech += s.NoSpeechProb
		compression += s.CompressionRatio
	}
	n := float64(len(segs))
	return Classify(logprob/n, noSpeech/n, compression/n)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
