// Package batch replays a directory of stored transcription files through
// the evaluation engine, resumably: interrupt it and the next run picks up
// where it stopped.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/MikeSquared-Agency/caesar/internal/engine"
	"github.com/MikeSquared-Agency/caesar/internal/results"
	"github.com/MikeSquared-Agency/caesar/internal/rubric"
	"github.com/MikeSquared-Agency/caesar/internal/store"
	"github.com/MikeSquared-Agency/caesar/internal/transcript"
)

// Config holds the batch replay configuration.
type Config struct {
	Dir        string // directory of transcription JSON files
	SingleFile string // process a single file only
	DryRun     bool   // evaluate but write nothing
	StatePath  string // override the resumable state location
	Submitter  results.Submitter
}

// Runner orchestrates the replay.
type Runner struct {
	cfg     Config
	engine  *engine.Engine
	rubric  *rubric.Rubric
	store   *store.Store
	results *results.Writer
	logger  *slog.Logger
}

// NewRunner creates a batch runner. store and results may be nil; a nil
// rubric uses the default.
func NewRunner(cfg Config, e *engine.Engine, r *rubric.Rubric, s *store.Store, w *results.Writer, logger *slog.Logger) *Runner {
	if r == nil {
		r = rubric.Default()
	}
	return &Runner{
		cfg:     cfg,
		engine:  e,
		rubric:  r,
		store:   s,
		results: w,
		logger:  logger,
	}
}

// Run executes the replay.
func (r *Runner) Run(ctx context.Context) error {
	state, err := LoadState(r.cfg.StatePath)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	files, err := r.discoverFiles()
	if err != nil {
		return fmt.Errorf("discover files: %w", err)
	}

	var pending []string
	for _, path := range files {
		if !state.IsProcessed(path) {
			pending = append(pending, path)
		}
	}
	state.FilesRemaining = len(pending)

	r.logger.Info("replay starting",
		"rubric", r.rubric.Name,
		"files", len(files),
		"pending", len(pending),
		"dry_run", r.cfg.DryRun,
	)

	processed := 0
	for _, path := range pending {
		select {
		case <-ctx.Done():
			r.logger.Info("replay interrupted, saving state")
			_ = state.Save()
			return ctx.Err()
		default:
		}

		verdict, err := r.processFile(ctx, path)
		if err != nil {
			r.logger.Error("file failed", "path", path, "error", err)
			state.AddError(fmt.Sprintf("%s: %v", path, err))
		} else {
			state.EvaluationsRun++
			state.Verdicts[verdict]++
			processed++
		}

		state.MarkProcessed(path)
		state.FilesRemaining--
		if err := state.Save(); err != nil {
			r.logger.Warn("failed to save state", "error", err)
		}
	}

	r.logger.Info("replay complete",
		"files_processed", processed,
		"errors", len(state.Errors),
		"dry_run", r.cfg.DryRun,
	)

	fmt.Printf("\n=== Replay Summary ===\n")
	fmt.Printf("Files processed: %d\n", processed)
	for _, v := range []string{"pass", "revise", "fail"} {
		if n := state.Verdicts[v]; n > 0 {
			fmt.Printf("  %s: %d\n", v, n)
		}
	}
	fmt.Printf("Errors: %d\n", len(state.Errors))
	if r.cfg.DryRun {
		fmt.Printf("Mode: DRY RUN (nothing written)\n")
	}

	return nil
}

func (r *Runner) processFile(ctx context.Context, path string) (string, error) {
	tr, err := transcript.LoadFile(path)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(tr.Text) == "" {
		return "", fmt.Errorf("transcription has no text")
	}

	r.logger.Info("evaluating file", "path", path, "segments", len(tr.Segments))

	out, err := r.engine.Evaluate(ctx, r.rubric, tr, "")
	if err != nil {
		return "", err
	}

	if !r.cfg.DryRun {
		sessionRef := "replay-" + filepath.Base(path)
		if r.store != nil {
			if _, err := r.store.WriteEvaluation(ctx, sessionRef, path, r.rubric.Name, out); err != nil {
				return "", fmt.Errorf("persist: %w", err)
			}
		}
		if r.results != nil {
			if _, err := r.results.Write(&results.Record{
				SessionID: sessionRef,
				Source:    path,
				Rubric:    r.rubric.Name,
				Submitter: r.cfg.Submitter,
				Outcome:   out,
			}); err != nil {
				return "", fmt.Errorf("write results: %w", err)
			}
		}
	}

	return string(out.Evaluation.Verdict), nil
}

func (r *Runner) discoverFiles() ([]string, error) {
	if r.cfg.SingleFile != "" {
		path := expandHome(r.cfg.SingleFile)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("single file not found: %s", path)
		}
		return []string{path}, nil
	}

	dir := expandHome(r.cfg.Dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
