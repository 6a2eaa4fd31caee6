package research

import (
	"context"
	"time"

	"github.com/MimeLyc/deep-research-agent/internal/agent"
	"github.com/MimeLyc/deep-research-agent/internal/llm"
	"github.com/MimeLyc/deep-research-agent/pkg/log"
)

const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 2 * time.Second
)

// RetryPolicy controls RunWithRetry. MaxRetries is the total number of
// attempts, not the number of retries after the first.
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: DefaultMaxRetries, Delay: DefaultRetryDelay}
}

// RunWithRetry invokes the agent until one attempt succeeds or
// policy.MaxRetries attempts have failed, waiting policy.Delay between
// attempts. The error of the last attempt is returned as is.
// With MaxRetries <= 0 nothing is invoked and (nil, nil) is returned.
func RunWithRetry(ctx context.Context, invoker agent.Invoker, messages []llm.Message, policy RetryPolicy) (*agent.Result, error) {
	result, _, err := runWithRetry(ctx, invoker, messages, policy)
	return result, err
}

func runWithRetry(ctx context.Context, invoker agent.Invoker, messages []llm.Message, policy RetryPolicy) (*agent.Result, int, error) {
	for attempt := 1; attempt <= policy.MaxRetries; attempt++ {
		log.Info("Attempt %d/%d...", attempt, policy.MaxRetries)

		result, err := invoker.Invoke(ctx, agent.Input{Messages: messages})
		if err == nil {
			return result, attempt, nil
		}

		log.Warn("Attempt %d/%d failed: %v", attempt, policy.MaxRetries, err)
		if attempt == policy.MaxRetries {
			return nil, attempt, err
		}

		select {
		case <-ctx.Done():
			return nil, attempt, ctx.Err()
		case <-time.After(policy.Delay):
		}
	}
	return nil, 0, nil
}
