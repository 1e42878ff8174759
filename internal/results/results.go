// Package results persists finished evaluations as files: a JSON document
// for programmatic access and a plain-text report for people. Filenames
// carry the submitter and a timestamp so repeated runs never overwrite.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/caesar/internal/engine"
	"github.com/MikeSquared-Agency/caesar/internal/feedback"
)

// Submitter identifies who submitted the demo. All three fields are
// required upstream; empty values still produce a usable filename.
type Submitter struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PartnerName string `json:"partner_name"`
}

// Record is the full document written per evaluation.
type Record struct {
	SessionID string          `json:"session_id,omitempty"`
	Source    string          `json:"source"`
	Rubric    string          `json:"rubric"`
	Submitter Submitter       `json:"submitter"`
	Outcome   *engine.Outcome `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

// Writer writes result files into a single directory, creating it on first
// use.
type Writer struct {
	dir string
}

func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write persists the record as JSON and as a text report. It returns the
// JSON path; the text report sits next to it with a .txt extension.
func (w *Writer) Write(rec *Record) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	base := fmt.Sprintf("%s_%s_%s_%s",
		sanitize(rec.Submitter.FirstName),
		sanitize(rec.Submitter.LastName),
		sanitize(rec.Submitter.PartnerName),
		rec.CreatedAt.Format("20060102_150405"),
	)

	// Same submitter twice in one second still must not overwrite.
	jsonPath := filepath.Join(w.dir, base+".json")
	for n := 2; ; n++ {
		if _, err := os.Stat(jsonPath); os.IsNotExist(err) {
			break
		}
		jsonPath = filepath.Join(w.dir, fmt.Sprintf("%s_%d.json", base, n))
	}
	base = strings.TrimSuffix(filepath.Base(jsonPath), ".json")
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write json results: %w", err)
	}

	txtPath := filepath.Join(w.dir, base+".txt")
	if err := os.WriteFile(txtPath, []byte(renderText(rec)), 0o644); err != nil {
		return "", fmt.Errorf("write text results: %w", err)
	}

	return jsonPath, nil
}

// renderText builds the human-readable report.
func renderText(rec *Record) string {
	var sb strings.Builder
	rule := strings.Repeat("=", 70)

	sb.WriteString(rule + "\n")
	sb.WriteString("DEMO VIDEO EVALUATION RESULTS\n")
	sb.WriteString(rule + "\n\n")

	ev := rec.Outcome.Evaluation
	fmt.Fprintf(&sb, "Verdict: %s\n", strings.ToUpper(string(ev.Verdict)))
	fmt.Fprintf(&sb, "Overall Score: %.1f\n", ev.Overall)
	if len(ev.Categories) > 0 {
		sb.WriteString("\nCategory Breakdown:\n")
		for _, cat := range ev.Categories {
			fmt.Fprintf(&sb, "  %s: %.1f/%g (%.1f%%)\n", cat.Label, cat.Points, cat.MaxPoints, cat.Percentage)
		}
	}
	sb.WriteString("\n")

	q := rec.Outcome.Quality
	fmt.Fprintf(&sb, "Transcription Quality: %s\n", strings.ToUpper(string(q.Rating)))
	fmt.Fprintf(&sb, "  Confidence: %.1f%%\n", q.AvgConfidence)
	fmt.Fprintf(&sb, "  Speech Detection: %.1f%%\n", q.SpeechPercentage)
	fmt.Fprintf(&sb, "  Compression Ratio: %.2f\n", q.AvgCompressionRatio)
	if len(q.Warnings) > 0 {
		sb.WriteString("  Quality Warnings:\n")
		for _, warning := range q.Warnings {
			fmt.Fprintf(&sb, "    - %s\n", warning)
		}
	}
	sb.WriteString("\n")

	fb := rec.Outcome.Feedback
	fmt.Fprintf(&sb, "FEEDBACK (%s TONE)\n\n", strings.ToUpper(string(fb.Tone)))
	sb.WriteString("STRENGTHS:\n\n")
	writeItems(&sb, fb.Strengths)
	sb.WriteString("AREAS FOR IMPROVEMENT:\n\n")
	writeItems(&sb, fb.Improvements)

	if len(ev.Warnings) > 0 {
		sb.WriteString("EVALUATION WARNINGS:\n")
		for _, warning := range ev.Warnings {
			fmt.Fprintf(&sb, "  - %s\n", warning)
		}
	}

	return sb.String()
}

func writeItems(sb *strings.Builder, items []feedback.Item) {
	for i, item := range items {
		fmt.Fprintf(sb, "%d. %s\n   %s\n\n", i+1, item.Title, item.Description)
	}
}

// sanitize makes a name safe as a filename component.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "unknown"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, s)
}
