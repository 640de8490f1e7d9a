package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Publish is a function that publishes a typed event.
type Publish[T any] func(event *T) error

// NewPublishFunc creates a typed publish function for a specific topic.
func NewPublishFunc[T any](publisher message.Publisher, topic string) Publish[T] {
	return func(event *T) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal %s event: %w", topic, err)
		}

		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.Metadata.Set("topic", topic)

		return publisher.Publish(topic, msg)
	}
}

// Discard is a Publish that drops every event.
func Discard[T any]() Publish[T] {
	return func(*T) error { return nil }
}

// PublisherGroup owns the underlying publisher so it can be closed once on shutdown.
type PublisherGroup struct {
	publisher message.Publisher
	logger    *zap.Logger
}

// NewPublisherGroup creates a new publisher group.
func NewPublisherGroup(publisher message.Publisher, logger *zap.Logger) *PublisherGroup {
	return &PublisherGroup{publisher: publisher, logger: logger}
}

// Publisher returns the underlying message publisher for creating typed publish functions.
func (g *PublisherGroup) Publisher() message.Publisher {
	return g.publisher
}

// Shutdown closes the underlying publisher.
func (g *PublisherGroup) Shutdown() error {
	g.logger.Info("closing publisher")

	if err := g.publisher.Close(); err != nil {
		return fmt.Errorf("close publisher: %w", err)
	}

	return nil
}
