package messaging

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned by AsyncPublisher.Publish when the queue has no room.
	ErrQueueFull = errors.New("publish queue full")
	// ErrPublisherClosed is returned by AsyncPublisher.Publish after Shutdown.
	ErrPublisherClosed = errors.New("publisher closed")
)

// AsyncPublisher queues events and publishes them from a background goroutine,
// so callers never wait on the broker. Events that do not fit the queue are dropped.
type AsyncPublisher[T any] struct {
	publish Publish[T]
	queue   chan *T
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	logger  *zap.Logger
}

// NewAsyncPublisher starts a worker draining a queue of size buffer into publish.
func NewAsyncPublisher[T any](publish Publish[T], buffer int, logger *zap.Logger) *AsyncPublisher[T] {
	p := &AsyncPublisher[T]{
		publish: publish,
		queue:   make(chan *T, buffer),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		logger:  logger,
	}

	go p.run()

	return p
}

// Publish enqueues event without blocking.
func (p *AsyncPublisher[T]) Publish(event *T) error {
	select {
	case <-p.stop:
		return ErrPublisherClosed
	default:
	}

	select {
	case p.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

func (p *AsyncPublisher[T]) run() {
	defer close(p.done)

	for {
		select {
		case event := <-p.queue:
			p.send(event)
		case <-p.stop:
			p.drain()

			return
		}
	}
}

func (p *AsyncPublisher[T]) drain() {
	for {
		select {
		case event := <-p.queue:
			p.send(event)
		default:
			return
		}
	}
}

func (p *AsyncPublisher[T]) send(event *T) {
	if err := p.publish(event); err != nil {
		p.logger.Error("failed to publish queued event", zap.Error(err))
	}
}

// Shutdown stops accepting events and publishes what is already queued.
func (p *AsyncPublisher[T]) Shutdown() error {
	p.once.Do(func() { close(p.stop) })
	<-p.done

	return nil
}
