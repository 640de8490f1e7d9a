package container

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/samber/do"
	"github.com/serroba/shortlinks/internal/analytics"
	"github.com/serroba/shortlinks/internal/messaging"
	"github.com/serroba/shortlinks/internal/shortener"
	"go.uber.org/zap"
)

const (
	goChannelBuffer = 1024
	publishQueue    = 1024
)

// GoChannelPackage provides the in-process pub/sub shared by publishers and consumers.
func GoChannelPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*gochannel.GoChannel, error) {
		return messaging.NewGoChannel(goChannelBuffer, do.MustInvoke[*zap.Logger](i)), nil
	})
}

// PublisherGroupPackage provides the publisher for Options.Broker.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var publisher message.Publisher

		switch opts.Broker {
		case BrokerRedis:
			client, err := do.Invoke[*RedisClient](i)
			if err != nil {
				return nil, err
			}

			pub, err := messaging.NewRedisPublisher(client.Client, logger)
			if err != nil {
				return nil, err
			}

			publisher = pub
		default:
			publisher = do.MustInvoke[*gochannel.GoChannel](i)
		}

		return messaging.NewPublisherGroup(publisher, logger), nil
	})
}

// AsyncPublishPackage provides queued publishers so requests never wait on the broker.
func AsyncPublishPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.AsyncPublisher[shortener.VisitedEvent], error) {
		publisher := do.MustInvoke[*messaging.PublisherGroup](i).Publisher()

		return messaging.NewAsyncPublisher(
			messaging.NewPublishFunc[shortener.VisitedEvent](publisher, shortener.TopicEntryVisited),
			publishQueue,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.AsyncPublisher[shortener.CreatedEvent], error) {
		publisher := do.MustInvoke[*messaging.PublisherGroup](i).Publisher()

		return messaging.NewAsyncPublisher(
			messaging.NewPublishFunc[shortener.CreatedEvent](publisher, shortener.TopicEntryCreated),
			publishQueue,
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}

// ConsumerGroupPackage provides the visit counter and audit consumers for Options.Broker.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		repo, err := do.Invoke[shortener.Repository](i)
		if err != nil {
			return nil, err
		}

		var subscriber message.Subscriber

		switch opts.Broker {
		case BrokerRedis:
			client, err := do.Invoke[*RedisClient](i)
			if err != nil {
				return nil, err
			}

			sub, err := messaging.NewRedisSubscriber(client.Client, opts.ConsumerGroup, logger)
			if err != nil {
				return nil, err
			}

			subscriber = sub
		default:
			subscriber = do.MustInvoke[*gochannel.GoChannel](i)
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		analytics.Register(group, subscriber, repo, logger)

		return group, nil
	})
}
