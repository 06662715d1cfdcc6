package stats

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizbank/internal/ledger"
	"github.com/abhisek/quizbank/internal/questiongen"
	"github.com/abhisek/quizbank/internal/quizbank"
	"github.com/abhisek/quizbank/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "stats.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestReportEmpty(t *testing.T) {
	r := NewReporter(openStore(t))

	rep, err := r.Report(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, rep.Overview.ActiveBanks)
	assert.Zero(t, rep.Overview.AvgUsage)
	assert.Empty(t, rep.PerObjective)
	assert.Empty(t, rep.RecentBanks)
	assert.False(t, rep.Students.HasScores)
	assert.Zero(t, rep.Students.AvgScore)

	costs, total, err := r.LLMCosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, costs)
	assert.Zero(t, total)
}

func TestCompletionReflectedInStats(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	u, err := s.Objectives().CreateUnit(ctx, "Algebra", "")
	require.NoError(t, err)
	o, err := s.Objectives().CreateObjective(ctx, u.ID, "Solve linear equations")
	require.NoError(t, err)

	alloc := quizbank.New(s, questiongen.NewChain(nil, 0, nil), quizbank.WithRandSource(rand.NewPCG(3, 4)))
	led := ledger.NewService(s, nil)
	r := NewReporter(s)

	a1, err := alloc.Allocate(ctx, quizbank.Request{StudentID: 1, ObjectiveID: o.ID, Difficulty: 0.5, Count: 4})
	require.NoError(t, err)
	a2, err := alloc.Allocate(ctx, quizbank.Request{StudentID: 2, ObjectiveID: o.ID, Difficulty: 0.5, Count: 4})
	require.NoError(t, err)
	require.Equal(t, a1.BankID, a2.BankID)

	require.NoError(t, led.RecordCompletion(ctx, 1, a1.BankID, 50, 0.05))

	st, err := r.GetStats(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Banks)
	assert.Equal(t, 2, st.TotalUsage)
	assert.Equal(t, 1, st.Completions)
	assert.InDelta(t, 50, st.AvgScore, 1e-9)
	require.NotNil(t, st.Oldest)
	assert.Equal(t, *st.Oldest, *st.Newest)

	require.NoError(t, led.RecordCompletion(ctx, 2, a1.BankID, 100, 0.1))
	st, err = r.GetStats(ctx, o.ID)
	require.NoError(t, err)
	assert.InDelta(t, 75, st.AvgScore, 1e-9)

	rep, err := r.Report(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Overview.ActiveBanks)
	assert.Equal(t, 2, rep.Students.UniqueStudents)
	assert.Equal(t, 2, rep.Students.Completions)
	require.Len(t, rep.RecentBanks, 1)
	assert.Equal(t, a1.BankID, rep.RecentBanks[0].ID)
	require.Len(t, rep.PerObjective, 1)
	assert.Equal(t, "Solve linear equations", rep.PerObjective[0].ObjectiveText)
}

func TestGetStatsUnknownObjective(t *testing.T) {
	r := NewReporter(openStore(t))
	_, err := r.GetStats(context.Background(), 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLLMCosts(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	events := []store.LLMRequestEvent{
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "question-gen", InputTokens: 1_000_000, OutputTokens: 0, Success: true},
		{Provider: "anthropic", Model: "claude-sonnet-4-5", Purpose: "tutor", InputTokens: 1_000_000, OutputTokens: 0, Success: true},
		{Provider: "local", Model: "unknown-model", Purpose: "tutor", InputTokens: 10, OutputTokens: 10, Success: false, ErrorMessage: "boom"},
	}
	for _, ev := range events {
		require.NoError(t, s.Events().AppendLLMRequest(ctx, ev))
	}

	r := NewReporter(s)
	costs, total, err := r.LLMCosts(ctx)
	require.NoError(t, err)
	require.Len(t, costs, 3)
	assert.Equal(t, "claude-sonnet-4-5", costs[0].Key)
	assert.InDelta(t, 3.0, *costs[0].CostUSD, 1e-9)
	assert.Equal(t, "gpt-4o-mini", costs[1].Key)
	assert.Equal(t, "unknown-model", costs[2].Key)
	assert.Nil(t, costs[2].CostUSD)
	assert.InDelta(t, 3.15, total, 1e-9)

	purposes, err := r.LLMByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, purposes, 2)
	assert.Equal(t, "tutor", purposes[0].Key)
	assert.Equal(t, 1, purposes[0].Failures)

	recent, err := r.RecentLLMRequests(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "unknown-model", recent[0].Model)
}
