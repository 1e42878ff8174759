package hermes

import (
	"github.com/MikeSquared-Agency/caesar/internal/results"
	"github.com/MikeSquared-Agency/caesar/internal/transcript"
)

// SubjectTranscriptStored is the NATS subject Scribe publishes to once a
// demo video has been transcribed.
const SubjectTranscriptStored = "swarm.scribe.transcript.stored"

// SubjectEvaluationCompleted is the NATS subject Caesar publishes to once
// an evaluation has finished.
const SubjectEvaluationCompleted = "swarm.caesar.evaluation.completed"

// TranscriptStoredEvent is the payload of SubjectTranscriptStored. The
// transcription is embedded in the event; RubricName selects a stored
// rubric and is optional (empty picks the default).
type TranscriptStoredEvent struct {
	SessionID     string                   `json:"session_id"`
	Source        string                   `json:"source"`
	RubricName    string                   `json:"rubric_name,omitempty"`
	Submitter     results.Submitter        `json:"submitter"`
	Transcription transcript.Transcription `json:"transcription"`
	VisualContext string                   `json:"visual_context,omitempty"`
}

// EvaluationCompletedEvent is the payload of SubjectEvaluationCompleted,
// a summary for downstream consumers; the full outcome lives in the store
// and the results file.
type EvaluationCompletedEvent struct {
	SessionID    string  `json:"session_id"`
	EvaluationID string  `json:"evaluation_id,omitempty"`
	Source       string  `json:"source"`
	RubricName   string  `json:"rubric_name"`
	Overall      float64 `json:"overall_score"`
	Verdict      string  `json:"verdict"`
	Quality      string  `json:"transcription_quality"`
	ResultsPath  string  `json:"results_path,omitempty"`
}
