package retry

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultAttempts = 3
	defaultDelay    = 200 * time.Millisecond
	defaultMaxDelay = 2 * time.Second

	defaultExtraAttempts = 1
	defaultBackoff       = 500 * time.Millisecond
	defaultMaxBackoff    = 5 * time.Second
)

// RetryConfig configures retries of outbound HTTP calls.
type RetryConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"3"`
	Delay    time.Duration `env:"DELAY" envDefault:"200ms"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"2s"`
}

func (rc *RetryConfig) ToRetryOptions(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(max(rc.Attempts, 1)),
		retry.MaxDelay(rc.MaxDelay),
		retry.Delay(rc.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	}
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Attempts: defaultAttempts,
		Delay:    defaultDelay,
		MaxDelay: defaultMaxDelay,
	}
}

// Policy bounds an iterative process: MaxAttempts regular tries followed by
// ExtraAttempts best-effort ones, spaced by exponential backoff.
type Policy struct {
	MaxAttempts   uint          `env:"MAX_ATTEMPTS" envDefault:"3"`
	ExtraAttempts uint          `env:"EXTRA_ATTEMPTS" envDefault:"1"`
	Backoff       time.Duration `env:"BACKOFF" envDefault:"500ms"`
	MaxBackoff    time.Duration `env:"MAX_BACKOFF" envDefault:"5s"`
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:   defaultAttempts,
		ExtraAttempts: defaultExtraAttempts,
		Backoff:       defaultBackoff,
		MaxBackoff:    defaultMaxBackoff,
	}
}

// Total is the overall number of tries allowed.
func (p Policy) Total() uint {
	return p.MaxAttempts + p.ExtraAttempts
}

// Options converts the policy into retry-go options. Total must be positive:
// retry-go treats zero attempts as unlimited.
func (p Policy) Options(ctx context.Context, extra ...retry.Option) []retry.Option {
	opts := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(p.Total()),
		retry.Delay(p.Backoff),
		retry.MaxDelay(p.MaxBackoff),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	}
	return append(opts, extra...)
}
