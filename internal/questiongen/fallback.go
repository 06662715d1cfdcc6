package questiongen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/quizbank/internal/logger"
	"github.com/abhisek/quizbank/internal/store"
)

// DefaultTimeout bounds a single primary generation.
const DefaultTimeout = 45 * time.Second

// Chain runs the primary generator under a timeout and falls back to the
// template generator on any failure or malformed output. With no primary
// it goes straight to the template without touching the network.
type Chain struct {
	primary  Generator
	template Generator
	timeout  time.Duration
	log      *logger.Logger
}

// NewChain builds a chain. primary may be nil.
func NewChain(primary Generator, timeout time.Duration, log *logger.Logger) *Chain {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Chain{
		primary:  primary,
		template: NewTemplateGenerator(),
		timeout:  timeout,
		log:      log,
	}
}

// Generate never reports a generation failure; it only returns an error when
// ctx itself is done or the template generator produced nothing.
func (c *Chain) Generate(ctx context.Context, in Input) (*Result, error) {
	if c.primary != nil {
		qs, err := c.tryPrimary(ctx, in)
		if err == nil {
			return &Result{Questions: qs, Source: store.SourceAI}, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn("question generator failed, using templates",
			"objective", in.ObjectiveText,
			"difficulty", in.Difficulty,
			"error", err,
		)
		return c.fromTemplate(ctx, in, err)
	}
	return c.fromTemplate(ctx, in, nil)
}

func (c *Chain) tryPrimary(ctx context.Context, in Input) ([]RawQuestion, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	qs, err := c.primary.Generate(ctx, in)
	if err != nil {
		var gen *ErrGeneration
		var bad *ErrMalformedOutput
		if errors.As(err, &gen) || errors.As(err, &bad) {
			return nil, err
		}
		return nil, &ErrGeneration{Err: err}
	}
	if err := CheckStructure(qs); err != nil {
		return nil, err
	}
	if len(qs) > in.Count {
		qs = qs[:in.Count]
	}
	return qs, nil
}

func (c *Chain) fromTemplate(ctx context.Context, in Input, reason error) (*Result, error) {
	qs, err := c.template.Generate(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("template generator: %w", err)
	}
	if len(qs) == 0 {
		return nil, errors.New("template generator returned no questions")
	}
	return &Result{Questions: qs, Source: store.SourceTemplate, FallbackReason: reason}, nil
}
