package oracle

import (
	"context"
	"time"
)

// RetryPolicy defines retry behavior for oracle round trips. Retries are
// exhausted before a call is treated as a failure; the failure is then
// handled at the stage boundary, never propagated to halt the pipeline.
type RetryPolicy struct {
	MaxRetries     int           `yaml:"max_retries"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
	BackoffFactor  float64       `yaml:"backoff_factor"`
}

// DefaultRetryPolicy returns the default retry policy: three attempts in
// total, exponential backoff between two and ten seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     2,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     10 * time.Second,
		BackoffFactor:  2.0,
	}
}

// CalculateBackoff calculates the backoff duration before the given retry
// attempt (0-based).
func (p RetryPolicy) CalculateBackoff(retryCount int) time.Duration {
	if retryCount <= 0 {
		return p.InitialBackoff
	}
	backoff := p.InitialBackoff
	for i := 0; i < retryCount; i++ {
		backoff = time.Duration(float64(backoff) * p.BackoffFactor)
		if backoff > p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	return backoff
}

// Sleep blocks for the attempt's backoff duration or until ctx is done.
// Returns ctx.Err() when the context ended the wait.
func (p RetryPolicy) Sleep(ctx context.Context, retryCount int) error {
	timer := time.NewTimer(p.CalculateBackoff(retryCount))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
