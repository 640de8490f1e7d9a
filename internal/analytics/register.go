package analytics

import (
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/shortlinks/internal/messaging"
	"github.com/serroba/shortlinks/internal/shortener"
	"go.uber.org/zap"
)

// DefaultIncrementTimeout bounds a single visit increment.
const DefaultIncrementTimeout = 5 * time.Second

// Register adds the visit counter and audit consumers to group.
// Visit events are acked on receipt so a redelivery can never count a visit twice.
func Register(
	group *messaging.ConsumerGroup,
	subscriber message.Subscriber,
	recorder VisitRecorder,
	logger *zap.Logger,
) {
	counter := NewVisitCounter(recorder, DefaultIncrementTimeout, logger)
	audit := NewAuditLog(logger)

	group.Add(messaging.NewConsumer(subscriber, shortener.TopicEntryVisited, counter.Handle, logger,
		messaging.AckOnReceipt()))
	group.Add(messaging.NewConsumer(subscriber, shortener.TopicEntryCreated, audit.HandleCreated, logger))
}
