package graph

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig configures retry behavior for nodes
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	RetryableErrors func(error) bool // Determines if an error should trigger retry
}

// DefaultRetryConfig returns a default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		RetryableErrors: func(_ error) bool {
			return true
		},
	}
}

// WithRetry wraps a node function so failed calls are retried with exponential backoff.
// The executor itself never retries; wrap the node before AddNode to opt in.
//
//	g.AddNode("agent", "calls the model", graph.WithRetry(callModel, nil))
func WithRetry(fn NodeFunc, config *RetryConfig) NodeFunc {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return func(ctx context.Context, state State) (State, error) {
		var lastErr error
		delay := config.InitialDelay

		for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("retry cancelled: %w", ctx.Err())
			default:
			}

			update, err := fn(ctx, state.Clone())
			if err == nil {
				return update, nil
			}
			lastErr = err

			if config.RetryableErrors != nil && !config.RetryableErrors(err) {
				return nil, fmt.Errorf("non-retryable error: %w", err)
			}

			if attempt < config.MaxAttempts {
				select {
				case <-time.After(delay):
					delay = time.Duration(float64(delay) * config.BackoffFactor)
					if config.MaxDelay > 0 {
						delay = min(delay, config.MaxDelay)
					}
				case <-ctx.Done():
					return nil, fmt.Errorf("retry cancelled during backoff: %w", ctx.Err())
				}
			}
		}

		return nil, fmt.Errorf("max retries (%d) exceeded: %w", config.MaxAttempts, lastErr)
	}
}

// WithTimeout bounds each call of fn by timeout.
func WithTimeout(fn NodeFunc, timeout time.Duration) NodeFunc {
	return func(ctx context.Context, state State) (State, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		type result struct {
			update State
			err    error
		}
		resultChan := make(chan result, 1)

		go func() {
			update, err := fn(ctx, state)
			resultChan <- result{update: update, err: err}
		}()

		select {
		case res := <-resultChan:
			return res.update, res.err
		case <-ctx.Done():
			return nil, fmt.Errorf("node timed out after %v: %w", timeout, ctx.Err())
		}
	}
}
