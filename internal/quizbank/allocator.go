package quizbank

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/quizbank/internal/logger"
	"github.com/abhisek/quizbank/internal/observability"
	"github.com/abhisek/quizbank/internal/questiongen"
	"github.com/abhisek/quizbank/internal/store"
)

const (
	// DefaultWindow is the half-width of the difficulty acceptance window.
	DefaultWindow = 0.15

	// MaxQuestions caps a single request.
	MaxQuestions = 50

	// float slack so a bank exactly on the window edge is accepted
	windowSlack = 1e-9

	// sharedTimeout bounds one shared allocation once it no longer follows
	// any single caller's context.
	sharedTimeout = 2 * time.Minute
)

// ErrInvalidRequest reports a request that can never be satisfied.
var ErrInvalidRequest = errors.New("invalid allocation request")

// Source tells the caller whether the bank was reused or freshly generated.
type Source string

const (
	SourceReused  Source = "reused"
	SourceCreated Source = "created"
)

// Request asks for a quiz for one student.
type Request struct {
	StudentID    int
	EnrollmentID int
	ObjectiveID  int
	Difficulty   float64
	Count        int
}

// Allocation is the bank handed to the student.
type Allocation struct {
	BankID    int
	Questions []store.Question
	Source    Source

	// Difficulty is the bank's stored difficulty. A reused bank may sit
	// anywhere in the window around the requested one.
	Difficulty float64

	// Generation is the bank's generation_source.
	Generation store.GenerationSource
}

// Generator is the question source used on a cache miss. It must absorb
// generation failures itself; *questiongen.Chain does.
type Generator interface {
	Generate(ctx context.Context, in questiongen.Input) (*questiongen.Result, error)
}

// Repos is the storage the allocator works against; *store.Store satisfies it.
type Repos interface {
	Objectives() store.ObjectiveRepo
	Banks() store.BankRepo
}

// Allocator hands out quiz banks, reusing an unseen bank in the difficulty
// window when one exists and generating a new one otherwise.
//
// Identical concurrent requests (same student, objective, difficulty and
// count) share one execution. The shared run outlives any one caller and is
// cancelled only when every caller waiting on it has gone. Different
// students racing on an empty window may each create a bank; every such bank
// is complete and is reused later.
type Allocator struct {
	objectives store.ObjectiveRepo
	banks      store.BankRepo
	gen        Generator
	shuffler   *Shuffler
	window     float64
	log        *logger.Logger

	inflight singleflight.Group
	mu       sync.Mutex
	flights  map[string]*flight
}

// flight is the context of one shared allocation and the number of
// callers still waiting for it.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithWindow overrides DefaultWindow.
func WithWindow(w float64) Option {
	return func(a *Allocator) { a.window = w }
}

// WithRandSource makes option shuffling reproducible.
func WithRandSource(src rand.Source) Option {
	return func(a *Allocator) { a.shuffler = NewShuffler(src) }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(a *Allocator) { a.log = l }
}

// New returns an Allocator over repos using gen for cache misses.
func New(repos Repos, gen Generator, opts ...Option) *Allocator {
	a := &Allocator{
		objectives: repos.Objectives(),
		banks:      repos.Banks(),
		gen:        gen,
		window:     DefaultWindow,
		log:        logger.Nop(),
		flights:    make(map[string]*flight),
	}
	for _, o := range opts {
		o(a)
	}
	if a.shuffler == nil {
		a.shuffler = NewShuffler(nil)
	}
	return a
}

// Window returns the clamped acceptance interval around difficulty.
func Window(difficulty, width float64) (lo, hi float64) {
	lo = max(difficulty-width-windowSlack, 0)
	hi = min(difficulty+width+windowSlack, 1)
	return lo, hi
}

func validate(objectiveID int, difficulty float64, count int) error {
	switch {
	case math.IsNaN(difficulty) || difficulty < 0 || difficulty > 1:
		return fmt.Errorf("%w: difficulty %v outside [0,1]", ErrInvalidRequest, difficulty)
	case count <= 0:
		return fmt.Errorf("%w: count must be positive", ErrInvalidRequest)
	case count > MaxQuestions:
		return fmt.Errorf("%w: count %d exceeds %d", ErrInvalidRequest, count, MaxQuestions)
	case objectiveID <= 0:
		return fmt.Errorf("objective %d: %w", objectiveID, store.ErrNotFound)
	}
	return nil
}

// Allocate returns a bank for the request. It fails only on invalid input,
// an unknown objective, a storage error or ctx cancellation; generator
// failures fall back to templates inside the Generator.
func (a *Allocator) Allocate(ctx context.Context, req Request) (*Allocation, error) {
	if err := validate(req.ObjectiveID, req.Difficulty, req.Count); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%d/%d/%.6f/%d", req.StudentID, req.ObjectiveID, req.Difficulty, req.Count)
	for {
		alloc, retry, err := a.await(ctx, key, req)
		if !retry {
			return alloc, err
		}
	}
}

// await joins (or starts) the shared run for key. retry is true when the
// run was cancelled because its other callers left just as this one
// joined; ctx is still live, so the caller starts a fresh run.
func (a *Allocator) await(ctx context.Context, key string, req Request) (alloc *Allocation, retry bool, err error) {
	f := a.join(ctx, key)
	defer a.leave(key, f)

	ch := a.inflight.DoChan(key, func() (any, error) {
		return a.allocate(f.ctx, req)
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			if errors.Is(res.Err, context.Canceled) && ctx.Err() == nil {
				return nil, true, nil
			}
			return nil, false, res.Err
		}
		return res.Val.(*Allocation), false, nil
	}
}

func (a *Allocator) join(ctx context.Context, key string) *flight {
	a.mu.Lock()
	defer a.mu.Unlock()
	f, ok := a.flights[key]
	if !ok {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedTimeout)
		f = &flight{ctx: fctx, cancel: cancel}
		a.flights[key] = f
	}
	f.waiters++
	return f
}

func (a *Allocator) leave(key string, f *flight) {
	a.mu.Lock()
	defer a.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if a.flights[key] == f {
		delete(a.flights, key)
	}
}

func (a *Allocator) allocate(ctx context.Context, req Request) (alloc *Allocation, err error) {
	ctx, span := observability.Tracer().Start(ctx, "quizbank.Allocate")
	span.SetAttributes(
		attribute.Int("quizbank.student_id", req.StudentID),
		attribute.Int("quizbank.objective_id", req.ObjectiveID),
		attribute.Float64("quizbank.difficulty", req.Difficulty),
		attribute.Int("quizbank.count", req.Count),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(
				attribute.Int("quizbank.bank_id", alloc.BankID),
				attribute.String("quizbank.source", string(alloc.Source)),
			)
		}
		span.End()
	}()

	log := a.log.With("request_id", uuid.NewString(), "student", req.StudentID, "objective", req.ObjectiveID)

	lo, hi := Window(req.Difficulty, a.window)
	assignment := store.Assignment{StudentID: req.StudentID, EnrollmentID: req.EnrollmentID}
	cand, err := a.banks.ClaimCandidate(ctx, assignment, req.ObjectiveID, lo, hi)
	if err != nil {
		return nil, err
	}

	if cand != nil {
		qs, err := a.banks.BankQuestions(ctx, cand.ID)
		if err != nil {
			return nil, err
		}
		log.Info("bank reused", "bank", cand.ID, "difficulty", cand.Difficulty, "usage_count", cand.UsageCount)
		return &Allocation{BankID: cand.ID, Questions: qs, Source: SourceReused, Difficulty: cand.Difficulty, Generation: cand.Source}, nil
	}

	bank, err := a.createBank(ctx, req.ObjectiveID, req.Difficulty, req.Count, &assignment, log)
	if err != nil {
		return nil, err
	}
	qs, err := a.banks.BankQuestions(ctx, bank.ID)
	if err != nil {
		return nil, err
	}
	log.Info("bank created", "bank", bank.ID, "questions", len(qs), "generation", bank.Source)
	return &Allocation{BankID: bank.ID, Questions: qs, Source: SourceCreated, Difficulty: bank.Difficulty, Generation: bank.Source}, nil
}

// createBank generates outside any transaction, then persists in one.
func (a *Allocator) createBank(ctx context.Context, objectiveID int, difficulty float64, count int,
	assign *store.Assignment, log *logger.Logger) (*store.Bank, error) {
	text, err := a.objectives.ObjectiveText(ctx, objectiveID)
	if err != nil {
		return nil, err
	}

	res, err := a.gen.Generate(ctx, questiongen.Input{ObjectiveText: text, Difficulty: difficulty, Count: count})
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}
	if res.FallbackReason != nil {
		log.Warn("using template questions", "reason", res.FallbackReason)
	}

	raw := res.Questions
	if len(raw) > count {
		raw = raw[:count]
	}
	return a.banks.CreateBank(ctx, store.NewBank{
		ObjectiveID: objectiveID,
		Difficulty:  difficulty,
		Source:      res.Source,
		Questions:   a.shuffler.prepare(raw, difficulty),
		Assign:      assign,
	})
}

// Prebuild makes sure an active bank exists in the window around difficulty
// without assigning it to anyone. It returns the new bank, or nil when the
// window was already covered.
func (a *Allocator) Prebuild(ctx context.Context, objectiveID int, difficulty float64, count int) (*store.Bank, error) {
	if err := validate(objectiveID, difficulty, count); err != nil {
		return nil, err
	}

	ctx, span := observability.Tracer().Start(ctx, "quizbank.Prebuild")
	defer span.End()

	lo, hi := Window(difficulty, a.window)
	covered, err := a.banks.HasActiveInWindow(ctx, objectiveID, lo, hi)
	if err != nil {
		return nil, err
	}
	if covered {
		return nil, nil
	}

	log := a.log.With("objective", objectiveID, "difficulty", difficulty)
	bank, err := a.createBank(ctx, objectiveID, difficulty, count, nil, log)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	log.Info("bank prebuilt", "bank", bank.ID, "questions", bank.QuestionsCount)
	return bank, nil
}
