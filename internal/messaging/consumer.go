package messaging

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Handler processes a single event. Handlers are synchronous and easy to test.
type Handler[T any] func(ctx context.Context, event *T) error

// Consumer subscribes to a topic and processes messages with a typed handler.
//
// A nil handler error acks the message. Errors marked with Permanent, and payloads
// that cannot be decoded, are logged and acked so they are not redelivered.
// Any other error nacks the message.
type Consumer[T any] struct {
	subscriber   message.Subscriber
	topic        string
	handler      Handler[T]
	ackOnReceipt bool
	logger       *zap.Logger
	cancel       context.CancelFunc
	done         chan struct{}
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*consumerSettings)

type consumerSettings struct {
	ackOnReceipt bool
}

// AckOnReceipt acks each message before the handler runs, so a message is handled at most once.
// Handler errors are logged and the message is never redelivered.
func AckOnReceipt() ConsumerOption {
	return func(s *consumerSettings) {
		s.ackOnReceipt = true
	}
}

// NewConsumer creates a new generic consumer for a specific event type.
func NewConsumer[T any](
	subscriber message.Subscriber,
	topic string,
	handler Handler[T],
	logger *zap.Logger,
	opts ...ConsumerOption,
) *Consumer[T] {
	var s consumerSettings
	for _, opt := range opts {
		opt(&s)
	}

	return &Consumer[T]{
		subscriber:   subscriber,
		topic:        topic,
		handler:      handler,
		ackOnReceipt: s.ackOnReceipt,
		logger:       logger.With(zap.String("topic", topic)),
		done:         make(chan struct{}),
	}
}

// Topic returns the topic this consumer subscribes to.
func (c *Consumer[T]) Topic() string {
	return c.topic
}

// Start subscribes and processes messages in a background goroutine until ctx ends or Shutdown is called.
func (c *Consumer[T]) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	msgs, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		c.cancel()
		close(c.done)

		return err
	}

	go c.consumeLoop(ctx, msgs)

	return nil
}

func (c *Consumer[T]) consumeLoop(ctx context.Context, msgs <-chan *message.Message) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			c.handleMessage(ctx, msg)
		}
	}
}

func (c *Consumer[T]) handleMessage(ctx context.Context, msg *message.Message) {
	var event T
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		c.logger.Error("dropping undecodable event",
			zap.String("messageId", msg.UUID),
			zap.Error(err),
		)
		msg.Ack()

		return
	}

	if c.ackOnReceipt {
		msg.Ack()

		if err := c.handler(ctx, &event); err != nil {
			c.logger.Warn("dropping event",
				zap.String("messageId", msg.UUID),
				zap.Error(err),
			)

			return
		}

		c.logger.Debug("processed event", zap.String("messageId", msg.UUID))

		return
	}

	err := c.handler(ctx, &event)

	switch {
	case err == nil:
		msg.Ack()
		c.logger.Debug("processed event", zap.String("messageId", msg.UUID))
	case IsPermanent(err):
		c.logger.Warn("dropping event",
			zap.String("messageId", msg.UUID),
			zap.Error(err),
		)
		msg.Ack()
	default:
		c.logger.Error("failed to handle event",
			zap.String("messageId", msg.UUID),
			zap.Error(err),
		)
		msg.Nack()
	}
}

// Shutdown stops the consumer and waits for the in-flight message to complete.
func (c *Consumer[T]) Shutdown() error {
	if c.cancel != nil {
		c.cancel()
	}

	<-c.done

	return nil
}
