package oracle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

type fakeCompleter struct {
	system string
	prompt string
	reply  string
	err    error
}

func (f *fakeCompleter) Complete(_ context.Context, system, prompt string, _ int) (string, error) {
	f.system = system
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleRequest() Request {
	return Request{
		Criteria: []CriterionRef{
			{ID: "technical_accuracy", Label: "Technical Accuracy", Description: "claims are correct", Bound: Bound{Min: 1, Max: 10}},
			{ID: "clarity", Label: "Clarity", Description: "explanation is easy to follow", Bound: Bound{Min: 1, Max: 10}},
		},
		Transcript: "today I will demo the deployment pipeline",
	}
}

func TestLLMScore(t *testing.T) {
	fc := &fakeCompleter{reply: `{"scores":[
		{"criterion_id":"technical_accuracy","raw_score":8,"note":"claims check out"},
		{"criterion_id":"clarity","raw_score":6.5,"note":"some jargon"}
	]}`}

	scores, err := NewLLM(fc, testLogger()).Score(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	if scores[0].CriterionID != "technical_accuracy" || scores[0].RawScore != 8 {
		t.Errorf("unexpected first score: %+v", scores[0])
	}
	if scores[1].RawScore != 6.5 {
		t.Errorf("unexpected second score: %+v", scores[1])
	}

	// The prompt must show the oracle each criterion with its bound, and the
	// transcript itself.
	for _, want := range []string{
		"technical_accuracy (Technical Accuracy)",
		"[score range 1-10]",
		"today I will demo the deployment pipeline",
	} {
		if !strings.Contains(fc.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if fc.system == "" {
		t.Error("expected a system prompt")
	}
}

func TestLLMScore_FencedResponse(t *testing.T) {
	fc := &fakeCompleter{reply: "```json\n{\"scores\":[{\"criterion_id\":\"clarity\",\"raw_score\":7}]}\n```"}

	scores, err := NewLLM(fc, testLogger()).Score(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 1 || scores[0].RawScore != 7 {
		t.Errorf("unexpected scores: %+v", scores)
	}
}

func TestLLMScore_ProviderError(t *testing.T) {
	provErr := errors.New("connection reset")
	_, err := NewLLM(&fakeCompleter{err: provErr}, testLogger()).Score(context.Background(), sampleRequest())
	if !errors.Is(err, provErr) {
		t.Errorf("expected wrapped provider error, got %v", err)
	}
}

func TestLLMScore_MalformedJSON(t *testing.T) {
	fc := &fakeCompleter{reply: "I would rate this demo quite highly overall."}
	if _, err := NewLLM(fc, testLogger()).Score(context.Background(), sampleRequest()); err == nil {
		t.Fatal("expected parse error for non-JSON response")
	}
}

func TestHeuristicScore(t *testing.T) {
	req := Request{
		Criteria: []CriterionRef{
			{ID: "a", Bound: Bound{Min: 1, Max: 10}},
			{ID: "b", Bound: Bound{Min: 0, Max: 25}},
		},
	}

	scores, err := Heuristic{}.Score(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	if scores[0].RawScore != 6 {
		t.Errorf("score for max 10 = %g, want 6", scores[0].RawScore)
	}
	if scores[1].RawScore != 15 {
		t.Errorf("score for max 25 = %g, want 15", scores[1].RawScore)
	}
	if scores[0].Note == "" {
		t.Error("heuristic scores should carry an explanatory note")
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tc := range cases {
		if got := StripFences(tc.in); got != tc.want {
			t.Errorf("StripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
