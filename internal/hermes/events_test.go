package hermes

import (
	"encoding/json"
	"testing"
)

func TestTranscriptStoredEventParsing(t *testing.T) {
	raw := `{
		"session_id": "sess-001",
		"source": "demo.mp4",
		"rubric_name": "q3-partner-demos",
		"submitter": {"first_name": "Ada", "last_name": "Lovelace", "partner_name": "Initech"},
		"transcription": {
			"text": "today I will demo the pipeline",
			"language": "en",
			"segments": [
				{"start": 0, "end": 3.5, "text": "today I will demo the pipeline", "avg_logprob": -0.2, "no_speech_prob": 0.02, "compression_ratio": 1.4}
			]
		},
		"visual_context": "screen shows a dashboard"
	}`

	var evt TranscriptStoredEvent
	err := json.Unmarshal([]byte(raw), &evt)
	if err != nil {
		t.Fatalf("failed to parse TranscriptStoredEvent: %v", err)
	}

	if evt.SessionID != "sess-001" {
		t.Errorf("expected session_id 'sess-001', got '%s'", evt.SessionID)
	}
	if evt.RubricName != "q3-partner-demos" {
		t.Errorf("expected rubric_name 'q3-partner-demos', got '%s'", evt.RubricName)
	}
	if evt.Submitter.FirstName != "Ada" {
		t.Errorf("expected first_name 'Ada', got '%s'", evt.Submitter.FirstName)
	}
	if evt.Transcription.Text != "today I will demo the pipeline" {
		t.Errorf("unexpected transcription text '%s'", evt.Transcription.Text)
	}
	if len(evt.Transcription.Segments) != 1 || evt.Transcription.Segments[0].AvgLogprob != -0.2 {
		t.Errorf("unexpected segments: %+v", evt.Transcription.Segments)
	}
	if evt.VisualContext != "screen shows a dashboard" {
		t.Errorf("unexpected visual_context '%s'", evt.VisualContext)
	}
}

func TestEvaluationCompletedEventRoundTrip(t *testing.T) {
	evt := EvaluationCompletedEvent{
		SessionID:    "sess-rt",
		EvaluationID: "6a1f0a9e-0000-0000-0000-000000000000",
		Source:       "demo.mp4",
		RubricName:   "default",
		Overall:      7.2,
		Verdict:      "pass",
		Quality:      "high",
		ResultsPath:  "results/Ada_Lovelace_Initech_20260314_150926.json",
	}

	data, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var parsed EvaluationCompletedEvent
	err = json.Unmarshal(data, &parsed)
	if err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if parsed != evt {
		t.Errorf("round-trip mismatch: got %+v, want %+v", parsed, evt)
	}
}

func TestSubjectConstants(t *testing.T) {
	if SubjectTranscriptStored != "swarm.scribe.transcript.stored" {
		t.Errorf("unexpected SubjectTranscriptStored '%s'", SubjectTranscriptStored)
	}
	if SubjectEvaluationCompleted != "swarm.caesar.evaluation.completed" {
		t.Errorf("unexpected SubjectEvaluationCompleted '%s'", SubjectEvaluationCompleted)
	}
}
