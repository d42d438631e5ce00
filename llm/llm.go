package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// SystemPrompt is sent as the system message by chat style providers.
const SystemPrompt = "You are a mind map generator that converts text into structured mind maps."

// Provider sends a prompt to a language model and returns the text completion.
// Transport, auth and quota failures are returned as *ProviderError.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Middleware wraps a Provider with cross-cutting behavior.
type Middleware func(next Provider) Provider

// Chain applies middlewares so that the first one listed is the outermost.
func Chain(p Provider, mws ...Middleware) Provider {
	for i := len(mws) - 1; i >= 0; i-- {
		p = mws[i](p)
	}
	return p
}

var (
	ErrEmptyCompletion = errors.New("empty completion")
	ErrNotConfigured   = errors.New("no llm provider configured")
)

type ProviderError struct {
	Provider string
	Op       string
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Provider, e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Permanent reports whether retrying cannot help: bad credentials, bad
// requests and missing configuration. Rate limits and 5xx are transient.
func (e *ProviderError) Permanent() bool {
	if errors.Is(e.Err, ErrNotConfigured) {
		return true
	}
	switch {
	case e.Status == http.StatusTooManyRequests, e.Status == http.StatusRequestTimeout:
		return false
	case e.Status >= 400 && e.Status < 500:
		return true
	}
	return false
}

func isPermanent(err error) bool {
	var pErr *ProviderError
	if errors.As(err, &pErr) {
		return pErr.Permanent()
	}
	return false
}
