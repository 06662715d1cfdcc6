// Package config assembles runtime settings from an optional .env file and
// the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/quizbank/internal/llm"
	"github.com/abhisek/quizbank/internal/observability"
	"github.com/abhisek/quizbank/internal/questiongen"
	"github.com/abhisek/quizbank/internal/quizbank"
)

type Config struct {
	// DBPath is empty when the default XDG location should be used.
	DBPath  string
	LogMode string

	LLM               llm.Config
	GenerationTimeout time.Duration
	DifficultyWindow  float64

	Tracing observability.TracingConfig

	// Warnings are settings that were ignored rather than rejected, for the
	// caller to log once a logger exists.
	Warnings []string
}

// Load reads .env (if present) and then the environment. Values that are
// set but malformed are errors.
func Load() (*Config, error) {
	// A missing .env is normal; real variables always win over it.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the environment alone.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DBPath:            strings.TrimSpace(os.Getenv("QUIZBANK_DB")),
		LogMode:           getenvDefault("QUIZBANK_LOG_MODE", "dev"),
		LLM:               llm.ConfigFromEnv(),
		GenerationTimeout: questiongen.DefaultTimeout,
		DifficultyWindow:  quizbank.DefaultWindow,
		Tracing: observability.TracingConfig{
			ServiceName: getenvDefault("OTEL_SERVICE_NAME", "quizbank"),
			Endpoint:    strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
			SampleRatio: 1,
		},
	}

	switch cfg.LogMode {
	case "dev", "prod", "production":
	default:
		return nil, fmt.Errorf("config: QUIZBANK_LOG_MODE=%q must be dev or prod", cfg.LogMode)
	}

	var err error
	if cfg.GenerationTimeout, err = getDuration("QUIZBANK_GENERATION_TIMEOUT", cfg.GenerationTimeout); err != nil {
		return nil, err
	}
	if cfg.DifficultyWindow, err = getFloat("QUIZBANK_DIFFICULTY_WINDOW", cfg.DifficultyWindow); err != nil {
		return nil, err
	}
	if cfg.DifficultyWindow <= 0 || cfg.DifficultyWindow > 1 {
		return nil, fmt.Errorf("config: QUIZBANK_DIFFICULTY_WINDOW=%v must be in (0,1]", cfg.DifficultyWindow)
	}
	if cfg.Tracing.Enabled, err = getBool("QUIZBANK_OTEL_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.Tracing.Insecure, err = getBool("OTEL_EXPORTER_OTLP_INSECURE", false); err != nil {
		return nil, err
	}
	if cfg.Tracing.SampleRatio, err = getFloat("QUIZBANK_OTEL_SAMPLE_RATIO", cfg.Tracing.SampleRatio); err != nil {
		return nil, err
	}

	// A provider without its key degrades to offline questions; an unknown
	// provider name is still an error.
	if err := cfg.LLM.Validate(); errors.Is(err, llm.ErrMissingAPIKey) {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("%v; using template questions", err))
		cfg.LLM.Provider = llm.ProviderNone
	} else if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func getenvDefault(k, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return fallback
}

func getDuration(k string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a valid duration: %w", k, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s=%q must be positive", k, v)
	}
	return d, nil
}

func getFloat(k string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a number: %w", k, v, err)
	}
	return f, nil
}

func getBool(k string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s=%q is not a boolean: %w", k, v, err)
	}
	return b, nil
}
