package shortener

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"
)

// retryRead runs op, retrying only storage outages. Other errors return immediately.
func retryRead[T any](ctx context.Context, policy RetryPolicy, op func() (T, error)) (T, error) {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = policy.InitialInterval
	expo.MaxInterval = policy.MaxInterval
	expo.MaxElapsedTime = 0
	expo.Reset()

	b := backoff.WithContext(backoff.WithMaxRetries(expo, policy.MaxRetries), ctx)

	return backoff.RetryWithData(func() (T, error) {
		v, err := op()
		if err != nil && !errors.Is(err, ErrStorageUnavailable) {
			return v, backoff.Permanent(err)
		}

		return v, err
	}, b)
}
