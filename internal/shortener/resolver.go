package shortener

import (
	"context"
	"errors"
	"time"

	"github.com/serroba/shortlinks/internal/messaging"
	"go.uber.org/zap"
)

// Resolver maps codes to destinations and records visits asynchronously.
type Resolver struct {
	store          Repository
	publishVisited messaging.Publish[VisitedEvent]
	retry          RetryPolicy
	now            func() time.Time
	logger         *zap.Logger
}

// NewResolver creates a resolver. Visits are counted by whatever consumes publishVisited.
// publishVisited runs on the redirect path and must not block; broker publishers are
// wrapped in a messaging.AsyncPublisher.
func NewResolver(
	store Repository,
	publishVisited messaging.Publish[VisitedEvent],
	logger *zap.Logger,
	opts ...Option,
) *Resolver {
	s := newSettings(opts)

	return &Resolver{
		store:          store,
		publishVisited: publishVisited,
		retry:          s.retry,
		now:            s.now,
		logger:         logger,
	}
}

// Resolve returns the original URL for code. It does not wait for the visit to be counted.
func (r *Resolver) Resolve(ctx context.Context, code Code) (string, error) {
	entry, err := retryRead(ctx, r.retry, func() (*Entry, error) {
		return r.store.Get(ctx, code)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			r.logger.Debug("code not found", zap.String("code", string(code)))
		}

		return "", err
	}

	caller := CallerFrom(ctx)
	event := &VisitedEvent{
		Code:      string(entry.Code),
		VisitedAt: r.now().UTC(),
		ClientIP:  caller.ClientIP,
		UserAgent: caller.UserAgent,
		Referrer:  caller.Referrer,
	}

	if err = r.publishVisited(event); err != nil {
		r.logger.Error("failed to publish visit event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	return entry.OriginalURL, nil
}
