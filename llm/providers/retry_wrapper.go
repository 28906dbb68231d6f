package providers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/schemaflow/llm"
	"github.com/BaSui01/schemaflow/llm/retry"
)

// RetryConfig holds retry configuration for an adapter wrapper.
type RetryConfig struct {
	MaxRetries    int           `json:"max_retries" yaml:"max_retries"`       // Maximum retry attempts, default 3
	InitialDelay  time.Duration `json:"initial_delay" yaml:"initial_delay"`   // Initial backoff delay, default 1s
	MaxDelay      time.Duration `json:"max_delay" yaml:"max_delay"`           // Maximum backoff delay, default 30s
	BackoffFactor float64       `json:"backoff_factor" yaml:"backoff_factor"` // Exponential backoff factor, default 2.0
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
	}
}

// RetryableAdapter wraps an llm.Adapter and retries Send when it fails with a
// retryable *llm.Error. Only the connection phase is retried: once Send has
// returned a channel, errors carried by units are passed through untouched,
// so no partial output is ever replayed.
type RetryableAdapter struct {
	inner   llm.Adapter
	retryer retry.Retryer
	logger  *zap.Logger
}

// NewRetryableAdapter creates a retrying wrapper around the given adapter.
func NewRetryableAdapter(inner llm.Adapter, config RetryConfig, logger *zap.Logger) *RetryableAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "retry_adapter"), zap.String("provider", inner.Name()))
	return &RetryableAdapter{
		inner: inner,
		retryer: retry.NewBackoffRetryer(&retry.RetryPolicy{
			MaxRetries:   config.MaxRetries,
			InitialDelay: config.InitialDelay,
			MaxDelay:     config.MaxDelay,
			Multiplier:   config.BackoffFactor,
			Jitter:       true,
			RetryIf:      retry.IsTransient,
			OnRetry: func(attempt int, err error, delay time.Duration) {
				logger.Warn("send failed, will retry",
					zap.Int("attempt", attempt),
					zap.Duration("delay", delay),
					zap.Error(err))
			},
		}, logger),
		logger: logger,
	}
}

// Compile-time interface check.
var _ llm.Adapter = (*RetryableAdapter)(nil)

func (a *RetryableAdapter) Name() string { return a.inner.Name() }

// Send calls the inner adapter, retrying transient connection failures.
// The last *llm.Error stays reachable through errors.As.
func (a *RetryableAdapter) Send(ctx context.Context, req *llm.Request) (<-chan llm.Unit, error) {
	return retry.DoWithResultTyped(a.retryer, ctx, func() (<-chan llm.Unit, error) {
		return a.inner.Send(ctx, req)
	})
}
