package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsEmpty(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	stats := s.Stats()

	o, err := stats.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, Overview{}, *o)

	per, err := stats.PerObjective(ctx)
	require.NoError(t, err)
	assert.Empty(t, per)

	st, err := stats.Students(ctx)
	require.NoError(t, err)
	assert.Equal(t, StudentStats{}, *st)

	objID := seedObjective(t, s, "x")
	os, err := stats.ObjectiveStats(ctx, objID)
	require.NoError(t, err)
	assert.Zero(t, os.Banks)
	assert.Nil(t, os.Oldest)
	assert.False(t, os.HasScores)
}

func TestStatsAggregates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	obj1 := seedObjective(t, s, "first")
	obj2 := seedObjective(t, s, "second")

	a := newBank(t, s, obj1, 0.3)
	b := newBank(t, s, obj1, 0.7)
	c := newBank(t, s, obj2, 0.5)
	dead := newBank(t, s, obj2, 0.5)
	require.NoError(t, s.Banks().DeactivateBank(ctx, dead.ID))

	for _, as := range []struct{ student, bank int }{{1, a.ID}, {2, a.ID}, {1, b.ID}, {3, c.ID}} {
		_, err := s.Ledger().MarkAssigned(ctx, as.student, as.bank, 0)
		require.NoError(t, err)
	}
	require.NoError(t, s.Ledger().RecordCompletion(ctx, 1, a.ID, 60, 0.05))
	require.NoError(t, s.Ledger().RecordCompletion(ctx, 2, a.ID, 100, 0.1))

	o, err := s.Stats().Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, o.ActiveBanks)
	assert.Equal(t, 1, o.InactiveBanks)
	assert.Equal(t, 4, o.TotalUsage)
	assert.InDelta(t, 4.0/3.0, o.AvgUsage, 1e-9)
	assert.Equal(t, 2, o.ObjectivesCovered)
	assert.Equal(t, 6, o.TotalQuestions)

	per, err := s.Stats().PerObjective(ctx)
	require.NoError(t, err)
	require.Len(t, per, 2)
	assert.Equal(t, obj1, per[0].ObjectiveID)
	assert.Equal(t, 2, per[0].Banks)
	assert.InDelta(t, 0.3, per[0].MinDifficulty, 1e-9)
	assert.InDelta(t, 0.5, per[0].AvgDifficulty, 1e-9)
	assert.InDelta(t, 0.7, per[0].MaxDifficulty, 1e-9)
	assert.Equal(t, 1, per[1].Banks)

	st, err := s.Stats().Students(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, st.UniqueStudents)
	assert.Equal(t, 4, st.Assignments)
	assert.Equal(t, 2, st.Completions)
	assert.True(t, st.HasScores)
	assert.InDelta(t, 80, st.AvgScore, 1e-9)

	os, err := s.Stats().ObjectiveStats(ctx, obj1)
	require.NoError(t, err)
	assert.Equal(t, 2, os.Banks)
	assert.Equal(t, 3, os.TotalUsage)
	assert.Equal(t, 2, os.Completions)
	assert.InDelta(t, 80, os.AvgScore, 1e-9)
	require.NotNil(t, os.Oldest)
	require.NotNil(t, os.Newest)
	assert.False(t, os.Newest.Before(*os.Oldest))
}

func TestObjectiveStatsNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Stats().ObjectiveStats(context.Background(), 12)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	events := s.Events()

	for _, ev := range []LLMRequestEvent{
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "question-gen", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "tutor", InputTokens: 10, OutputTokens: 5, LatencyMs: 100, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "question-gen", LatencyMs: 300, ErrorMessage: "boom"},
	} {
		require.NoError(t, events.AppendLLMRequest(ctx, ev))
	}

	recent, err := events.RecentLLMRequests(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "boom", recent[0].ErrorMessage)
	assert.False(t, recent[0].Timestamp.IsZero())

	byModel, err := events.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 1)
	assert.Equal(t, LLMUsage{Key: "gpt-4o-mini", Requests: 3, Failures: 1, InputTokens: 110, OutputTokens: 55, AvgLatencyMs: 200}, byModel[0])

	byPurpose, err := events.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, "question-gen", byPurpose[0].Key)
	assert.Equal(t, 2, byPurpose[0].Requests)
}
