package quizbank

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/quizbank/internal/llm"
	"github.com/abhisek/quizbank/internal/logger"
	"github.com/abhisek/quizbank/internal/questiongen"
	"github.com/abhisek/quizbank/internal/store"
)

// stubGen returns n distinct questions and counts calls. When release is
// set, it blocks until release is closed or ctx is done.
type stubGen struct {
	n       int
	source  store.GenerationSource
	calls   atomic.Int32
	release chan struct{}
}

func (g *stubGen) Generate(ctx context.Context, in questiongen.Input) (*questiongen.Result, error) {
	g.calls.Add(1)
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	n := min(g.n, in.Count)
	qs := make([]questiongen.RawQuestion, n)
	for i := range qs {
		qs[i] = questiongen.RawQuestion{
			Question:      fmt.Sprintf("Question %d about %s?", i+1, in.ObjectiveText),
			CorrectAnswer: fmt.Sprintf("right %d", i),
			Distractors:   []string{"wrong a", "wrong b", "wrong c"},
			Explanation:   "because",
		}
	}
	src := g.source
	if src == "" {
		src = store.SourceAI
	}
	return &questiongen.Result{Questions: qs, Source: src}, nil
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "quizbank.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedObjective(t *testing.T, s *store.Store, text string) int {
	t.Helper()
	ctx := context.Background()
	u, err := s.Objectives().CreateUnit(ctx, "Unit", "")
	require.NoError(t, err)
	o, err := s.Objectives().CreateObjective(ctx, u.ID, text)
	require.NoError(t, err)
	return o.ID
}

func newAllocator(s *store.Store, gen Generator) *Allocator {
	return New(s, gen, WithRandSource(rand.NewPCG(1, 2)))
}

func req(student, objective int, difficulty float64, count int) Request {
	return Request{StudentID: student, EnrollmentID: 100 + student, ObjectiveID: objective, Difficulty: difficulty, Count: count}
}

func TestAllocateScenario(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	obj := seedObjective(t, s, "Solve linear equations")
	gen := &stubGen{n: 10}
	a := newAllocator(s, gen)

	first, err := a.Allocate(ctx, req(1, obj, 0.5, 5))
	require.NoError(t, err)
	assert.Equal(t, SourceCreated, first.Source)
	assert.Len(t, first.Questions, 5)
	assert.Equal(t, store.SourceAI, first.Generation)

	second, err := a.Allocate(ctx, req(2, obj, 0.5, 5))
	require.NoError(t, err)
	assert.Equal(t, SourceReused, second.Source)
	assert.Equal(t, first.BankID, second.BankID)
	assert.Equal(t, first.Questions, second.Questions)

	b1, err := s.Banks().Bank(ctx, first.BankID)
	require.NoError(t, err)
	assert.Equal(t, 2, b1.UsageCount)

	third, err := a.Allocate(ctx, req(1, obj, 0.5, 5))
	require.NoError(t, err)
	assert.Equal(t, SourceCreated, third.Source)
	assert.NotEqual(t, first.BankID, third.BankID)
	assert.EqualValues(t, 2, gen.calls.Load())

	e, err := s.Ledger().Entry(ctx, 2, first.BankID)
	require.NoError(t, err)
	assert.Equal(t, 102, e.EnrollmentID)
}

func TestAllocateLogsOutcome(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	obj := seedObjective(t, s, "x")
	core, logs := observer.New(zap.InfoLevel)
	a := New(s, &stubGen{n: 3}, WithLogger(&logger.Logger{SugaredLogger: zap.New(core).Sugar()}))

	first, err := a.Allocate(ctx, req(1, obj, 0.5, 3))
	require.NoError(t, err)
	_, err = a.Allocate(ctx, req(2, obj, 0.5, 3))
	require.NoError(t, err)

	created := logs.FilterMessage("bank created").All()
	require.Len(t, created, 1)
	assert.EqualValues(t, first.BankID, created[0].ContextMap()["bank"])
	assert.EqualValues(t, 1, created[0].ContextMap()["student"])
	assert.Equal(t, 1, logs.FilterMessage("bank reused").Len())
}

func TestAllocateDifficultyWindow(t *testing.T) {
	tests := []struct {
		difficulty float64
		reused     bool
	}{
		{0.60, true},
		{0.65, true},
		{0.35, true},
		{0.80, false},
		{0.20, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.2f", tt.difficulty), func(t *testing.T) {
			s := openStore(t)
			ctx := context.Background()
			obj := seedObjective(t, s, "x")
			a := newAllocator(s, &stubGen{n: 3})

			bank, err := a.Prebuild(ctx, obj, 0.5, 3)
			require.NoError(t, err)
			require.NotNil(t, bank)

			got, err := a.Allocate(ctx, req(1, obj, tt.difficulty, 3))
			require.NoError(t, err)
			assert.Equal(t, tt.reused, got.BankID == bank.ID)
			if tt.reused {
				assert.Equal(t, SourceReused, got.Source)
				assert.Equal(t, bank.Difficulty, got.Difficulty)
			} else {
				assert.Equal(t, SourceCreated, got.Source)
				assert.Equal(t, tt.difficulty, got.Difficulty)
			}
		})
	}
}

func TestAllocateTieBreak(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	obj := seedObjective(t, s, "x")
	a := newAllocator(s, &stubGen{n: 2})

	older, err := a.Prebuild(ctx, obj, 0.5, 2)
	require.NoError(t, err)
	// Outside older's window so Prebuild does not skip it.
	newer, err := a.Prebuild(ctx, obj, 0.7, 2)
	require.NoError(t, err)
	require.NotNil(t, newer)

	// 0.6 sees both; equal usage so the older one wins.
	got, err := a.Allocate(ctx, req(1, obj, 0.6, 2))
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.BankID)

	// older now has usage 1, newer 0: least used wins.
	got, err = a.Allocate(ctx, req(2, obj, 0.6, 2))
	require.NoError(t, err)
	assert.Equal(t, newer.ID, got.BankID)

	// Both at usage 1 again: back to the older bank.
	got, err = a.Allocate(ctx, req(3, obj, 0.6, 2))
	require.NoError(t, err)
	assert.Equal(t, older.ID, got.BankID)
}

func TestAllocateClampsToGeneratorOutput(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	obj := seedObjective(t, s, "Solve linear equations")
	a := newAllocator(s, &stubGen{n: 3})

	got, err := a.Allocate(ctx, req(1, obj, 0.5, 8))
	require.NoError(t, err)
	assert.Len(t, got.Questions, 3)

	bank, err := s.Banks().Bank(ctx, got.BankID)
	require.NoError(t, err)
	assert.Equal(t, 3, bank.QuestionsCount)
}

func TestAllocateTemplateFallback(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	obj := seedObjective(t, s, "Solve linear equations")

	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Provider: "mock", Err: errors.New("down")}})
	chain := questiongen.NewChain(questiongen.NewLLMGenerator(mock, questiongen.DefaultConfig()), time.Second, nil)
	a := newAllocator(s, chain)

	got, err := a.Allocate(ctx, req(1, obj, 0.5, 4))
	require.NoError(t, err)
	assert.Equal(t, SourceCreated, got.Source)
	assert.Equal(t, store.SourceTemplate, got.Generation)
	assert.Len(t, got.Questions, 4)

	bank, err := s.Banks().Bank(ctx, got.BankID)
	require.NoError(t, err)
	assert.Equal(t, store.SourceTemplate, bank.Source)
}

func TestAllocateStoredQuestionsMatchShuffle(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	obj := seedObjective(t, s, "Solve linear equations")
	a := newAllocator(s, questiongen.NewChain(nil, 0, nil))

	got, err := a.Allocate(ctx, req(1, obj, 0.8, 6))
	require.NoError(t, err)
	require.Len(t, got.Questions, 6)
	for i, q := range got.Questions {
		assert.Equal(t, i+1, q.Order)
		assert.Equal(t, store.CognitiveApply, q.Cognitive)
		idx := q.Correct.Index()
		require.GreaterOrEqual(t, idx, 0)
		assert.NotEmpty(t, q.Options[idx])
	}
}

func TestAllocateErrors(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	obj := seedObjective(t, s, "x")
	a := newAllocator(s, &stubGen{n: 3})

	_, err := a.Allocate(ctx, req(1, 999, 0.5, 3))
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = a.Allocate(ctx, req(1, obj, 1.5, 3))
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = a.Allocate(ctx, req(1, obj, 0.5, 0))
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = a.Allocate(ctx, req(1, obj, 0.5, MaxQuestions+1))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestAllocateSkipsInactiveBanks(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	obj := seedObjective(t, s, "x")
	a := newAllocator(s, &stubGen{n: 3})

	bank, err := a.Prebuild(ctx, obj, 0.5, 3)
	require.NoError(t, err)
	require.NoError(t, s.Banks().DeactivateBank(ctx, bank.ID))

	got, err := a.Allocate(ctx, req(1, obj, 0.5, 3))
	require.NoError(t, err)
	assert.Equal(t, SourceCreated, got.Source)
	assert.NotEqual(t, bank.ID, got.BankID)
}

func TestAllocateCancelledLeavesNoBank(t *testing.T) {
	s := openStore(t)
	obj := seedObjective(t, s, "x")
	gen := &stubGen{n: 3, release: make(chan struct{})}
	a := newAllocator(s, gen)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for gen.calls.Load() == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	_, err := a.Allocate(ctx, req(1, obj, 0.5, 3))
	assert.ErrorIs(t, err, context.Canceled)

	banks, err := s.Banks().ListBanks(context.Background(), store.BankFilter{})
	require.NoError(t, err)
	assert.Empty(t, banks)
}

func TestAllocateCollapsesDuplicateRequests(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	obj := seedObjective(t, s, "x")
	gen := &stubGen{n: 3, release: make(chan struct{})}
	a := newAllocator(s, gen)

	const callers = 5
	ids := make([]int, callers)
	var g errgroup.Group
	for i := range callers {
		g.Go(func() error {
			got, err := a.Allocate(ctx, req(1, obj, 0.5, 3))
			if err != nil {
				return err
			}
			ids[i] = got.BankID
			return nil
		})
	}
	time.Sleep(100 * time.Millisecond)
	close(gen.release)
	require.NoError(t, g.Wait())

	assert.EqualValues(t, 1, gen.calls.Load())
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func (a *Allocator) waiters(key string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if f, ok := a.flights[key]; ok {
		return f.waiters
	}
	return 0
}

func TestAllocateSurvivesOtherCallerCancel(t *testing.T) {
	s := openStore(t)
	obj := seedObjective(t, s, "x")
	gen := &stubGen{n: 3, release: make(chan struct{})}
	a := newAllocator(s, gen)
	r := req(1, obj, 0.5, 3)
	key := fmt.Sprintf("%d/%d/%.6f/%d", r.StudentID, r.ObjectiveID, r.Difficulty, r.Count)

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	errA := make(chan error, 1)
	go func() {
		_, err := a.Allocate(ctxA, r)
		errA <- err
	}()

	type result struct {
		alloc *Allocation
		err   error
	}
	resB := make(chan result, 1)
	go func() {
		got, err := a.Allocate(context.Background(), r)
		resB <- result{got, err}
	}()

	require.Eventually(t, func() bool {
		return gen.calls.Load() == 1 && a.waiters(key) == 2
	}, 5*time.Second, time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)
	require.Eventually(t, func() bool { return a.waiters(key) == 1 }, 5*time.Second, time.Millisecond)

	close(gen.release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, SourceCreated, b.alloc.Source)
	assert.Len(t, b.alloc.Questions, 3)
	assert.EqualValues(t, 1, gen.calls.Load())

	bank, err := s.Banks().Bank(context.Background(), b.alloc.BankID)
	require.NoError(t, err)
	assert.Equal(t, 1, bank.UsageCount)
	assert.Zero(t, a.waiters(key))
}

func TestAllocateConcurrentStudentsShareBank(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	obj := seedObjective(t, s, "x")
	gen := &stubGen{n: 3}
	a := newAllocator(s, gen)

	bank, err := a.Prebuild(ctx, obj, 0.5, 3)
	require.NoError(t, err)

	const students = 8
	var g errgroup.Group
	for i := range students {
		g.Go(func() error {
			got, err := a.Allocate(ctx, req(i+1, obj, 0.5, 3))
			if err != nil {
				return err
			}
			if got.BankID != bank.ID {
				return fmt.Errorf("student %d got bank %d, want %d", i+1, got.BankID, bank.ID)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	stored, err := s.Banks().Bank(ctx, bank.ID)
	require.NoError(t, err)
	assert.Equal(t, students, stored.UsageCount)
	assert.EqualValues(t, 1, gen.calls.Load())
}

func TestPrebuildSkipsCoveredWindow(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	obj := seedObjective(t, s, "x")
	gen := &stubGen{n: 3}
	a := newAllocator(s, gen)

	first, err := a.Prebuild(ctx, obj, 0.5, 3)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Zero(t, first.UsageCount)

	again, err := a.Prebuild(ctx, obj, 0.55, 3)
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.EqualValues(t, 1, gen.calls.Load())
}

func TestPopulate(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	o1 := seedObjective(t, s, "a")
	o2 := seedObjective(t, s, "b")
	a := newAllocator(s, &stubGen{n: 2})

	results, err := a.Populate(ctx, []int{o1, o2, 999}, nil, 2, 3)
	require.NoError(t, err)
	require.Len(t, results, 9)

	var created, failed int
	for i, r := range results {
		assert.Equal(t, DefaultLevels[i%3], r.Difficulty)
		switch {
		case r.Err != nil:
			failed++
			assert.Equal(t, 999, r.ObjectiveID)
			assert.ErrorIs(t, r.Err, store.ErrNotFound)
		case r.BankID > 0:
			created++
		}
	}
	assert.Equal(t, 6, created)
	assert.Equal(t, 3, failed)

	// A second run finds every window covered.
	results, err = a.Populate(ctx, []int{o1, o2}, nil, 2, 2)
	require.NoError(t, err)
	for _, r := range results {
		assert.NoError(t, r.Err)
		assert.Zero(t, r.BankID)
	}
}

func TestWindow(t *testing.T) {
	lo, hi := Window(0.05, 0.15)
	assert.Zero(t, lo)
	assert.InDelta(t, 0.2, hi, 1e-6)

	lo, hi = Window(0.95, 0.15)
	assert.InDelta(t, 0.8, lo, 1e-6)
	assert.Equal(t, 1.0, hi)
}
