package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/serroba/shortlinks/internal/messaging"
	"github.com/serroba/shortlinks/internal/shortener"
	"go.uber.org/zap"
)

// VisitRecorder persists a single visit.
type VisitRecorder interface {
	IncrementVisits(ctx context.Context, code shortener.Code) (int64, error)
}

// VisitCounter applies visit events to the store.
//
// Accounting is at most once: each event gets a single increment attempt. A failed
// increment may still have been applied by the store, so it is logged and dropped,
// never retried or redelivered.
type VisitCounter struct {
	recorder VisitRecorder
	timeout  time.Duration
	logger   *zap.Logger
}

// NewVisitCounter creates a visit counter. timeout bounds each increment.
func NewVisitCounter(recorder VisitRecorder, timeout time.Duration, logger *zap.Logger) *VisitCounter {
	return &VisitCounter{
		recorder: recorder,
		timeout:  timeout,
		logger:   logger,
	}
}

// Handle records one visit. Every failure is returned as messaging.Permanent.
func (c *VisitCounter) Handle(ctx context.Context, event *shortener.VisitedEvent) error {
	if event.Code == "" {
		return messaging.Permanent(errors.New("visit event without code"))
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	visits, err := c.recorder.IncrementVisits(ctx, shortener.Code(event.Code))
	if err != nil {
		return messaging.Permanent(fmt.Errorf("record visit for %s: %w", event.Code, err))
	}

	c.logger.Debug("visit recorded",
		zap.String("code", event.Code),
		zap.Int64("visits", visits),
	)

	return nil
}
