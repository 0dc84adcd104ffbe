package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/blagoySimandov/teachermail/internal/services"
)

type fakeAIClient struct {
	mu       sync.Mutex
	reply    string
	err      error
	calls    int
	messages [][]services.Message
}

func (f *fakeAIClient) Complete(ctx context.Context, messages []services.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.messages = append(f.messages, messages)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeAIClient) Model() string { return "fake-model" }

type fakeDebiter struct {
	err   error
	calls []string
}

func (f *fakeDebiter) DecrementTokens(ctx context.Context, userID string) error {
	f.calls = append(f.calls, userID)
	return f.err
}

type recordingObserver struct {
	outcomes []string
	latency  int
}

func (r *recordingObserver) ObserveGeneration(outcome string) {
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingObserver) ObserveProviderLatency(model string, d time.Duration) {
	r.latency++
}
