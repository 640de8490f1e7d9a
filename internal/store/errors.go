package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/serroba/shortlinks/internal/shortener"
)

// unavailable wraps an infrastructure error so callers can match shortener.ErrStorageUnavailable.
// Context errors are returned as-is.
func unavailable(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return fmt.Errorf("%s: %w: %w", op, shortener.ErrStorageUnavailable, err)
}
