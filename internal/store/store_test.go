package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "quizbank.db"))
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

// seedObjective creates a unit and one objective and returns the objective id.
func seedObjective(t *testing.T, s *Store, text string) int {
	t.Helper()
	ctx := context.Background()
	u, err := s.Objectives().CreateUnit(ctx, "Algebra", "")
	require.NoError(t, err)
	o, err := s.Objectives().CreateObjective(ctx, u.ID, text)
	require.NoError(t, err)
	return o.ID
}

func sampleQuestions(n int) []NewQuestion {
	out := make([]NewQuestion, n)
	for i := range out {
		out[i] = NewQuestion{
			Text:        "Question " + string(rune('A'+i)),
			Options:     [4]string{"w", "x", "y", "z"},
			Correct:     Options[i%4],
			Explanation: "because",
			Cognitive:   CognitiveUnderstand,
		}
	}
	return out
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL
	}
	for _, tt := range tests {
		var got string
		err := s.DB().QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizbank.db")
	s, err := Open(path)
	require.NoError(t, err)
	objID := seedObjective(t, s, "Solve linear equations")
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	text, err := s.Objectives().ObjectiveText(context.Background(), objID)
	require.NoError(t, err)
	assert.Equal(t, "Solve linear equations", text)
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("QUIZBANK_DB", filepath.Join(dir, "explicit", "q.db"))
	p, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "explicit", "q.db"), p)
	assert.DirExists(t, filepath.Join(dir, "explicit"))

	t.Setenv("QUIZBANK_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)
	p, err = DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "quizbank", "quizbank.db"), p)
}
