package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port               int
	NatsURL            string
	NatsToken          string
	DatabaseURL        string
	LogLevel           string
	Provider           string
	AnthropicAPIKey    string
	AnthropicModel     string
	OpenAIAPIKey       string
	OpenAIModel        string
	MaxCriteriaPerCall int
	ResultsDir         string
	RubricPath         string
	APIToken           string
}

func Load() Config {
	return Config{
		Port:               envInt("CAESAR_PORT", 8760),
		NatsURL:            envStr("NATS_URL", "nats://hermes:4222"),
		NatsToken:          envStr("NATS_TOKEN", ""),
		DatabaseURL:        envStr("DATABASE_URL", ""),
		LogLevel:           envStr("LOG_LEVEL", "info"),
		Provider:           envStr("CAESAR_PROVIDER", "anthropic"),
		AnthropicAPIKey:    envStr("ANTHROPIC_API_KEY", ""),
		AnthropicModel:     envStr("CAESAR_MODEL", "claude-3-5-haiku-20241022"),
		OpenAIAPIKey:       envStr("OPENAI_API_KEY", ""),
		OpenAIModel:        envStr("CAESAR_OPENAI_MODEL", "gpt-4o-mini"),
		MaxCriteriaPerCall: envInt("CAESAR_MAX_CRITERIA_PER_CALL", 8),
		ResultsDir:         envStr("CAESAR_RESULTS_DIR", "results"),
		RubricPath:         envStr("CAESAR_RUBRIC_PATH", ""),
		APIToken:           envStr("CAESAR_API_TOKEN", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
