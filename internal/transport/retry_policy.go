package transport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/googleapi"
)

// RetryPolicy defines how failed sends to the collector are retried
type RetryPolicy struct {
	MaxAttempts    int           `json:"max_attempts" yaml:"max_attempts"`
	InitialBackoff time.Duration `json:"initial_backoff" yaml:"initial_backoff"`
	MaxBackoff     time.Duration `json:"max_backoff" yaml:"max_backoff"`
	BackoffFactor  float64       `json:"backoff_factor" yaml:"backoff_factor"`
}

// NewDefaultRetryPolicy creates a retry policy with sensible defaults
func NewDefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 200 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		BackoffFactor:  2.0,
	}
}

// NoRetryPolicy sends exactly once.
func NoRetryPolicy() *RetryPolicy {
	return &RetryPolicy{MaxAttempts: 1}
}

func (p *RetryPolicy) backoff() *gax.Backoff {
	return &gax.Backoff{
		Initial:    p.InitialBackoff,
		Max:        p.MaxBackoff,
		Multiplier: p.BackoffFactor,
	}
}

// IsRetryableError determines if a failed send is worth retrying: server
// errors, throttling and network failures are; client errors and
// cancellation are not.
func (p *RetryPolicy) IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= http.StatusInternalServerError || apiErr.Code == http.StatusTooManyRequests
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// Do runs send until it succeeds, fails permanently, or runs out of attempts.
func (p *RetryPolicy) Do(ctx context.Context, send func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	bo := p.backoff()

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = send(ctx)
		if err == nil || attempt == attempts || !p.IsRetryableError(err) {
			return err
		}
		if sleepErr := gax.Sleep(ctx, bo.Pause()); sleepErr != nil {
			return err
		}
	}
	return err
}
