package llm

import (
	"context"
	"time"
)

// Retry retries Complete up to maxAttempts, waiting baseDelay before the
// second attempt and multiplying the wait by multiplier each time after.
// Permanent provider errors and context cancellation stop immediately.
func Retry(maxAttempts int, baseDelay time.Duration, multiplier float64) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	if multiplier < 1 {
		multiplier = 2
	}
	return func(next Provider) Provider {
		return &retrying{next: next, max: maxAttempts, base: baseDelay, mult: multiplier}
	}
}

type retrying struct {
	next Provider
	max  int
	base time.Duration
	mult float64
}

func (r *retrying) Name() string { return r.next.Name() }

func (r *retrying) Complete(ctx context.Context, prompt string) (string, error) {
	var last error
	delay := r.base
	for i := 0; i < r.max; i++ {
		out, err := r.next.Complete(ctx, prompt)
		if err == nil {
			return out, nil
		}
		if isPermanent(err) {
			return "", err
		}
		last = err
		if i == r.max-1 {
			break
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", ctx.Err()
		case <-t.C:
		}
		delay = time.Duration(float64(delay) * r.mult)
	}
	return "", last
}

// Timeout bounds each call to the wrapped provider. Placed inside Retry it
// limits every attempt rather than the whole exchange.
func Timeout(d time.Duration) Middleware {
	return func(next Provider) Provider {
		if d <= 0 {
			return next
		}
		return &timing{next: next, d: d}
	}
}

type timing struct {
	next Provider
	d    time.Duration
}

func (t *timing) Name() string { return t.next.Name() }

func (t *timing) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	return t.next.Complete(ctx, prompt)
}
