package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultStatePath is where replay progress lives unless overridden.
const DefaultStatePath = "~/.caesar/batch-state.json"

// ReplayState tracks progress for resumable batch replays.
type ReplayState struct {
	StartedAt       time.Time      `json:"started_at"`
	LastProcessedAt time.Time      `json:"last_processed_at"`
	FilesProcessed  []string       `json:"files_processed"`
	FilesRemaining  int            `json:"files_remaining"`
	EvaluationsRun  int            `json:"evaluations_run"`
	Verdicts        map[string]int `json:"verdicts"`
	Errors          []string       `json:"errors"`

	path string // not serialized
}

// LoadState loads replay state from disk, or creates a new one. An empty
// path uses DefaultStatePath.
func LoadState(path string) (*ReplayState, error) {
	if path == "" {
		path = DefaultStatePath
	}
	p := expandHome(path)

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return &ReplayState{
				StartedAt: time.Now().UTC(),
				Verdicts:  make(map[string]int),
				path:      p,
			}, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var s ReplayState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	if s.Verdicts == nil {
		s.Verdicts = make(map[string]int)
	}
	s.path = p
	return &s, nil
}

// Save persists the state to disk.
func (s *ReplayState) Save() error {
	s.LastProcessedAt = time.Now().UTC()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	return os.WriteFile(s.path, data, 0o644)
}

// IsProcessed returns true if the given file has already been processed.
func (s *ReplayState) IsProcessed(path string) bool {
	for _, f := range s.FilesProcessed {
		if f == path {
			return true
		}
	}
	return false
}

// MarkProcessed records a file as processed.
func (s *ReplayState) MarkProcessed(path string) {
	s.FilesProcessed = append(s.FilesProcessed, path)
}

// AddError records a processing error.
func (s *ReplayState) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}

func expandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
