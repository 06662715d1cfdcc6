package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizbank/internal/config"
	"github.com/abhisek/quizbank/internal/ledger"
	"github.com/abhisek/quizbank/internal/llm"
	"github.com/abhisek/quizbank/internal/logger"
	"github.com/abhisek/quizbank/internal/observability"
	"github.com/abhisek/quizbank/internal/questiongen"
	"github.com/abhisek/quizbank/internal/quizbank"
	"github.com/abhisek/quizbank/internal/store"
	"github.com/abhisek/quizbank/internal/tutor"
)

// env holds what every command needs: configuration, a logger, the open
// store and, when configured, an LLM provider.
type env struct {
	cfg      *config.Config
	log      *logger.Logger
	store    *store.Store
	provider llm.Provider

	shutdownTracing func(context.Context) error
}

// openEnv loads configuration and opens the database. Callers must Close it.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	cfg.Tracing.Version = version
	shutdown, err := observability.InitTracing(cmd.Context(), log, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	log.Debug("database opened", "path", dbPath)

	return &env{cfg: cfg, log: log, store: st, shutdownTracing: shutdown}, nil
}

func (e *env) Close() {
	if err := e.shutdownTracing(context.Background()); err != nil {
		e.log.Warn("tracing shutdown failed", "error", err)
	}
	if err := e.store.Close(); err != nil {
		e.log.Warn("closing database failed", "error", err)
	}
	e.log.Sync()
}

// llmProvider builds the provider on first use. It returns nil when none is
// configured; every caller then falls back to offline content.
func (e *env) llmProvider(ctx context.Context) llm.Provider {
	if e.provider != nil {
		return e.provider
	}
	p, err := llm.NewProvider(ctx, e.cfg.LLM, e.store.Events(), e.log)
	switch {
	case errors.Is(err, llm.ErrNoProvider):
		e.log.Info("no LLM provider configured, using template questions")
		return nil
	case err != nil:
		e.log.Warn("LLM provider unavailable, using template questions", "error", err)
		return nil
	}
	e.provider = p
	return p
}

func (e *env) generator(ctx context.Context) *questiongen.Chain {
	var primary questiongen.Generator
	if p := e.llmProvider(ctx); p != nil {
		primary = questiongen.NewLLMGenerator(p, questiongen.DefaultConfig())
	}
	return questiongen.NewChain(primary, e.cfg.GenerationTimeout, e.log)
}

func (e *env) allocator(ctx context.Context) *quizbank.Allocator {
	return quizbank.New(e.store, e.generator(ctx),
		quizbank.WithWindow(e.cfg.DifficultyWindow),
		quizbank.WithLogger(e.log),
	)
}

func (e *env) ledger() *ledger.Service {
	return ledger.NewService(e.store, e.log)
}

func (e *env) tutor(ctx context.Context) *tutor.Tutor {
	return tutor.New(e.llmProvider(ctx), tutor.DefaultTimeout, e.log)
}
