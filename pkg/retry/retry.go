// Package retry runs an operation again after transient failures, waiting
// an exponentially growing, jittered interval between attempts.
package retry

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Config contains retry configuration
type Config struct {
	// MaxRetries is the number of extra attempts after the first (0 disables retry)
	MaxRetries int
	// InitialInterval is the wait before the first retry (default: 1s)
	InitialInterval time.Duration
	// MaxInterval caps the wait between attempts (default: 10s)
	MaxInterval time.Duration
	// Multiplier grows the interval after each retry (default: 2.0)
	Multiplier float64
	// JitterFactor is the random +/- fraction applied to each interval (0-1)
	JitterFactor float64
}

// Disabled returns a configuration that never retries
func Disabled() Config {
	return Config{}
}

// Enabled reports whether any retry will be attempted
func (c Config) Enabled() bool {
	return c.MaxRetries > 0
}

// Operation is the function to be retried
type Operation func(ctx context.Context) error

// Classifier decides whether a failed attempt may be retried
type Classifier func(err error) bool

// Always retries every failure
func Always(error) bool { return true }

// Callback is invoked before waiting for the next attempt
type Callback func(attempt int, err error, wait time.Duration)

// Retrier runs operations under a Config
type Retrier struct {
	config  Config
	retryIf Classifier
	rand    func() float64
}

// New creates a Retrier. A nil classifier retries every failure.
func New(config Config, retryIf Classifier) *Retrier {
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.InitialInterval <= 0 {
		config.InitialInterval = time.Second
	}
	if config.MaxInterval <= 0 {
		config.MaxInterval = 10 * time.Second
	}
	if config.MaxInterval < config.InitialInterval {
		config.MaxInterval = config.InitialInterval
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.JitterFactor < 0 {
		config.JitterFactor = 0
	}
	if config.JitterFactor > 1 {
		config.JitterFactor = 1
	}
	if retryIf == nil {
		retryIf = Always
	}

	return &Retrier{
		config:  config,
		retryIf: retryIf,
		rand:    rand.Float64,
	}
}

// Config returns the effective configuration
func (r *Retrier) Config() Config {
	return r.config
}

// Do runs op until it succeeds, the classifier rejects its error, the retry
// budget is spent, or ctx is done. It returns the number of attempts made
// and the error of the last attempt, unchanged. A canceled context during a
// wait also returns the last attempt's error.
func (r *Retrier) Do(ctx context.Context, op Operation, onRetry Callback) (int, error) {
	attempts := 0
	for {
		attempts++
		err := op(ctx)
		if err == nil {
			return attempts, nil
		}

		if attempts > r.config.MaxRetries || !r.retryIf(err) || ctx.Err() != nil {
			return attempts, err
		}

		wait := r.Backoff(attempts - 1)
		if onRetry != nil {
			onRetry(attempts, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempts, err
		case <-timer.C:
		}
	}
}

// Backoff returns the wait before retry number n+1 (n starting at 0)
func (r *Retrier) Backoff(n int) time.Duration {
	interval := float64(r.config.InitialInterval) * math.Pow(r.config.Multiplier, float64(n))

	if r.config.JitterFactor > 0 {
		jitter := interval * r.config.JitterFactor
		interval += (r.rand()*2 - 1) * jitter
	}

	if interval > float64(r.config.MaxInterval) {
		interval = float64(r.config.MaxInterval)
	}
	if interval <= 0 {
		interval = float64(r.config.InitialInterval)
	}

	return time.Duration(interval)
}
