package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MikeSquared-Agency/caesar/internal/anthropic"
	"github.com/MikeSquared-Agency/caesar/internal/api"
	"github.com/MikeSquared-Agency/caesar/internal/batch"
	"github.com/MikeSquared-Agency/caesar/internal/config"
	"github.com/MikeSquared-Agency/caesar/internal/engine"
	"github.com/MikeSquared-Agency/caesar/internal/hermes"
	"github.com/MikeSquared-Agency/caesar/internal/openai"
	"github.com/MikeSquared-Agency/caesar/internal/oracle"
	"github.com/MikeSquared-Agency/caesar/internal/processor"
	"github.com/MikeSquared-Agency/caesar/internal/results"
	"github.com/MikeSquared-Agency/caesar/internal/rubric"
	"github.com/MikeSquared-Agency/caesar/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database (optional — without it Caesar runs stateless).
	var db *store.Store
	if cfg.DatabaseURL != "" {
		var err error
		db, err = store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("database connected")
	} else {
		slog.Warn("DATABASE_URL not set — running stateless, results land in files only")
	}

	// Scoring provider.
	scorer, llm := buildOracle(cfg)

	// Default rubric: built-in unless a rubric file is configured.
	defaultRubric := loadDefaultRubric(cfg.RubricPath)

	eng := engine.New(scorer, llm, cfg.MaxCriteriaPerCall, slog.Default())
	writer := results.NewWriter(cfg.ResultsDir)

	// One-shot replay mode: caesar batch <dir>
	if len(os.Args) > 2 && os.Args[1] == "batch" {
		runner := batch.NewRunner(batch.Config{Dir: os.Args[2]}, eng, defaultRubric, db, writer, slog.Default())
		if err := runner.Run(ctx); err != nil {
			slog.Error("batch replay failed", "error", err)
			os.Exit(1)
		}
		return
	}

	slog.Info("caesar starting", "port", cfg.Port)

	// NATS/Hermes
	hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer hermesClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	// Processor — the main pipeline
	proc := processor.New(db, eng, hermesClient, writer, defaultRubric, slog.Default())

	// Subscribe to transcript events
	if err := hermesClient.Subscribe(hermes.SubjectTranscriptStored, proc.HandleTranscriptStored); err != nil {
		slog.Error("failed to subscribe to transcript events", "error", err)
		os.Exit(1)
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, db, eng, defaultRubric, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if err := hermesClient.Publish("swarm.agent.caesar.registered", map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      cfg.Port,
		"provider":  cfg.Provider,
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	slog.Info("caesar ready", "port", cfg.Port, "rubric", defaultRubric.Name)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("caesar stopped")
}

// buildOracle picks the scoring provider from configuration. Missing keys
// degrade to the deterministic heuristic rather than refusing to start.
func buildOracle(cfg config.Config) (oracle.Oracle, oracle.Completer) {
	switch cfg.Provider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			slog.Warn("ANTHROPIC_API_KEY not set — falling back to heuristic scoring")
			return oracle.Heuristic{}, nil
		}
		llm := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		slog.Info("anthropic client ready", "model", cfg.AnthropicModel)
		return oracle.NewLLM(llm, slog.Default()), llm
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			slog.Warn("OPENAI_API_KEY not set — falling back to heuristic scoring")
			return oracle.Heuristic{}, nil
		}
		llm := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		slog.Info("openai client ready", "model", cfg.OpenAIModel)
		return oracle.NewLLM(llm, slog.Default()), llm
	case "heuristic":
		slog.Info("heuristic scoring selected")
		return oracle.Heuristic{}, nil
	default:
		slog.Warn("unknown provider — falling back to heuristic scoring", "provider", cfg.Provider)
		return oracle.Heuristic{}, nil
	}
}

// loadDefaultRubric reads the configured rubric file, falling back to the
// built-in rubric when unset or invalid.
func loadDefaultRubric(path string) *rubric.Rubric {
	if path == "" {
		return rubric.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("failed to read rubric file, using built-in default", "path", path, "error", err)
		return rubric.Default()
	}
	r, err := rubric.Parse(data)
	if err != nil {
		slog.Warn("rubric file failed validation, using built-in default", "path", path, "error", err)
		return rubric.Default()
	}
	slog.Info("rubric loaded", "path", path, "name", r.Name, "criteria", r.CriterionCount())
	return r
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
