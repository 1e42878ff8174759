package results

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/caesar/internal/engine"
	"github.com/MikeSquared-Agency/caesar/internal/eval"
	"github.com/MikeSquared-Agency/caesar/internal/feedback"
	"github.com/MikeSquared-Agency/caesar/internal/quality"
	"github.com/MikeSquared-Agency/caesar/internal/rubric"
)

func sampleRecord() *Record {
	return &Record{
		Source: "demo.mp4",
		Rubric: "default",
		Submitter: Submitter{
			FirstName:   "Ada",
			LastName:    "Lovelace",
			PartnerName: "Initech",
		},
		Outcome: &engine.Outcome{
			Evaluation: &eval.Result{
				Overall: 7.2,
				Method:  rubric.MethodWeightedMean,
				Verdict: rubric.VerdictPass,
			},
			Quality: quality.Report{
				AvgConfidence:       88.5,
				SpeechPercentage:    95.0,
				AvgCompressionRatio: 1.5,
				Rating:              quality.RatingHigh,
			},
			Feedback: feedback.Feedback{
				Tone: feedback.ToneCongratulatory,
				Strengths: []feedback.Item{
					{Title: "Accuracy", Description: "Claims were correct."},
					{Title: "Clarity", Description: "Easy to follow."},
				},
				Improvements: []feedback.Item{
					{Title: "Pacing", Description: "Slow down in the middle."},
					{Title: "Value", Description: "Lead with the outcome."},
				},
			},
		},
		CreatedAt: time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC),
	}
}

func TestWrite_CreatesJSONAndText(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(filepath.Join(dir, "results"))

	jsonPath, err := w.Write(sampleRecord())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Base(jsonPath) != "Ada_Lovelace_Initech_20260314_150926.json" {
		t.Errorf("unexpected filename: %s", filepath.Base(jsonPath))
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("written JSON does not parse: %v", err)
	}
	if rec.Outcome.Evaluation.Verdict != rubric.VerdictPass {
		t.Errorf("verdict = %q after round trip", rec.Outcome.Evaluation.Verdict)
	}

	txt, err := os.ReadFile(strings.TrimSuffix(jsonPath, ".json") + ".txt")
	if err != nil {
		t.Fatalf("text report missing: %v", err)
	}
	report := string(txt)
	for _, want := range []string{
		"DEMO VIDEO EVALUATION RESULTS",
		"Verdict: PASS",
		"Overall Score: 7.2",
		"Transcription Quality: HIGH",
		"FEEDBACK (CONGRATULATORY TONE)",
		"1. Accuracy",
		"2. Value",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("text report missing %q", want)
		}
	}
}

func TestWrite_SanitizesNames(t *testing.T) {
	rec := sampleRecord()
	rec.Submitter = Submitter{FirstName: "A/d:a", LastName: "", PartnerName: "Acme Corp"}

	w := NewWriter(t.TempDir())
	jsonPath, err := w.Write(rec)
	if err != nil {
		t.Fatal(err)
	}
	base := filepath.Base(jsonPath)
	if strings.ContainsAny(base, "/:") || !strings.HasPrefix(base, "A_d_a_unknown_Acme_Corp_") {
		t.Errorf("unexpected filename: %s", base)
	}
}

func TestWrite_RepeatedRunsDoNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	first := sampleRecord()
	second := sampleRecord()
	second.CreatedAt = first.CreatedAt.Add(time.Second)

	p1, err := w.Write(first)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := w.Write(second)
	if err != nil {
		t.Fatal(err)
	}
	if p1 == p2 {
		t.Errorf("distinct runs wrote the same file: %s", p1)
	}
}
