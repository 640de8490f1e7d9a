package shortener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/serroba/shortlinks/internal/messaging"
	"go.uber.org/zap"
)

// Service orchestrates entry creation, listing and resolution. It holds no locks.
type Service struct {
	store          Repository
	generateCode   CodeGenerator
	resolver       *Resolver
	urls           *URLValidator
	publishCreated messaging.Publish[CreatedEvent]
	maxAttempts    int
	retry          RetryPolicy
	now            func() time.Time
	logger         *zap.Logger
}

// NewService creates a shortening service.
func NewService(
	store Repository,
	generator CodeGenerator,
	resolver *Resolver,
	publishCreated messaging.Publish[CreatedEvent],
	logger *zap.Logger,
	opts ...Option,
) *Service {
	s := newSettings(opts)

	return &Service{
		store:          store,
		generateCode:   generator,
		resolver:       resolver,
		urls:           NewURLValidator(),
		publishCreated: publishCreated,
		maxAttempts:    s.maxAttempts,
		retry:          s.retry,
		now:            s.now,
		logger:         logger,
	}
}

// Create stores a new entry for rawURL under a freshly generated code.
func (s *Service) Create(ctx context.Context, rawURL string) (*Entry, error) {
	if err := s.urls.Check(rawURL); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry := &Entry{
			Code:        Code(s.generateCode()),
			OriginalURL: rawURL,
			CreatedAt:   s.now().UTC(),
		}

		err := s.store.InsertIfAbsent(ctx, entry)
		if err == nil {
			s.announce(ctx, entry)

			return entry, nil
		}

		if !errors.Is(err, ErrCodeExists) {
			return nil, err
		}

		s.logger.Debug("code collision",
			zap.String("code", string(entry.Code)),
			zap.Int("attempt", attempt),
		)
	}

	s.logger.Warn("code space exhausted", zap.Int("attempts", s.maxAttempts))

	return nil, fmt.Errorf("%w after %d attempts", ErrCapacityExhausted, s.maxAttempts)
}

func (s *Service) announce(ctx context.Context, entry *Entry) {
	caller := CallerFrom(ctx)
	event := &CreatedEvent{
		Code:        string(entry.Code),
		OriginalURL: entry.OriginalURL,
		CreatedAt:   entry.CreatedAt,
		ClientIP:    caller.ClientIP,
		UserAgent:   caller.UserAgent,
	}

	if err := s.publishCreated(event); err != nil {
		s.logger.Error("failed to publish created event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}
}

// Get returns the entry for code, including its current visit count.
func (s *Service) Get(ctx context.Context, code Code) (*Entry, error) {
	return retryRead(ctx, s.retry, func() (*Entry, error) {
		return s.store.Get(ctx, code)
	})
}

// List returns entries in creation order.
func (s *Service) List(ctx context.Context, page Page) ([]Entry, error) {
	if page.Offset < 0 || page.Limit < 0 {
		return nil, fmt.Errorf("invalid page: offset=%d limit=%d", page.Offset, page.Limit)
	}

	return retryRead(ctx, s.retry, func() ([]Entry, error) {
		return s.store.List(ctx, page)
	})
}

// Resolve returns the original URL for code and records a visit.
func (s *Service) Resolve(ctx context.Context, code Code) (string, error) {
	return s.resolver.Resolve(ctx, code)
}
