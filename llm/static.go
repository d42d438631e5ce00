package llm

import (
	"context"
	"sync/atomic"
)

// Static is a Provider that always answers with the same completion or error.
// It backs the offline mode and tests.
type Static struct {
	Completion string
	Err        error

	calls atomic.Int64
}

func NewStatic(completion string) *Static { return &Static{Completion: completion} }

func NewFailing(err error) *Static { return &Static{Err: err} }

// Offline never answers, so every generation takes the local fallback path.
func Offline() *Static {
	return &Static{Err: &ProviderError{Provider: "offline", Op: "complete", Err: ErrNotConfigured}}
}

func (s *Static) Name() string { return "static" }

func (s *Static) Complete(ctx context.Context, prompt string) (string, error) {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Err != nil {
		return "", s.Err
	}
	return s.Completion, nil
}

// Calls returns how many times Complete has been invoked.
func (s *Static) Calls() int { return int(s.calls.Load()) }
