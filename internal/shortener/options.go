package shortener

import "time"

// DefaultMaxAttempts is how many codes Create tries before failing with ErrCapacityExhausted.
const DefaultMaxAttempts = 10

// RetryPolicy bounds how transient read failures are retried.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy retries a failed read three times, starting at 50ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
	}
}

type settings struct {
	maxAttempts int
	retry       RetryPolicy
	now         func() time.Time
}

func newSettings(opts []Option) settings {
	s := settings{
		maxAttempts: DefaultMaxAttempts,
		retry:       DefaultRetryPolicy(),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(&s)
	}

	return s
}

// Option configures a Service or Resolver.
type Option func(*settings)

// WithMaxAttempts sets how many codes Create tries before giving up.
func WithMaxAttempts(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithRetryPolicy overrides the read retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *settings) {
		s.retry = p
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}
