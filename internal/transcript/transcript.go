// Package transcript defines the transcription document produced by the
// external speech-recognition engine and small helpers over its segments.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
)

// lowConfidenceLogprob marks a segment as likely mis-transcribed.
const lowConfidenceLogprob = -1.0

// Segment is one timestamped span of recognized speech with the engine's
// confidence signals.
type Segment struct {
	Start            float64 `json:"start"`
	End              float64 `json:"end"`
	Text             string  `json:"text"`
	AvgLogprob       float64 `json:"avg_logprob"`
	NoSpeechProb     float64 `json:"no_speech_prob"`
	CompressionRatio float64 `json:"compression_ratio"`
}

// Transcription is the full document handed to the evaluation engine.
type Transcription struct {
	Text     string    `json:"text"`
	Language string    `json:"language,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
}

// LoadFile reads a transcription document from disk.
func LoadFile(path string) (*Transcription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcription: %w", err)
	}
	var tr Transcription
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("parse transcription %s: %w", path, err)
	}
	return &tr, nil
}

// LowConfidence returns up to limit segments whose average log probability
// falls below the low-confidence threshold, in transcript order. These are
// the moments feedback should call out for attention.
func LowConfidence(segs []Segment, limit int) []Segment {
	var out []Segment
	for _, s := range segs {
		if s.AvgLogprob < lowConfidenceLogprob {
			out = append(out, s)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// FormatTimestamp renders seconds as m:ss for human-readable feedback.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
