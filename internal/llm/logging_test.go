package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/abhisek/quizbank/internal/store"
)

type recordingEvents struct {
	mu     sync.Mutex
	events []store.LLMRequestEvent
	err    error
}

func (r *recordingEvents) AppendLLMRequest(_ context.Context, ev store.LLMRequestEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func TestLogging_RecordsSuccessAndFailure(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`), Usage: Usage{InputTokens: 10, OutputTokens: 4}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("boom")}},
	)
	rec := &recordingEvents{}
	p := WithLogging(mock, ProviderMock, rec, nil)

	ctx := WithPurpose(context.Background(), PurposeQuestionGen)
	if _, err := p.Generate(ctx, Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error")
	}

	if len(rec.events) != 2 {
		t.Fatalf("events = %d, want 2", len(rec.events))
	}
	ok, failed := rec.events[0], rec.events[1]
	if !ok.Success || ok.InputTokens != 10 || ok.OutputTokens != 4 || ok.Purpose != PurposeQuestionGen {
		t.Fatalf("success event = %+v", ok)
	}
	if failed.Success || failed.ErrorMessage == "" {
		t.Fatalf("failure event = %+v", failed)
	}
}

func TestLogging_EventFailureDoesNotFailCall(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, ProviderMock, &recordingEvents{err: errors.New("disk full")}, nil)

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
