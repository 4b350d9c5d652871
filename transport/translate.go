package transport

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
)

// TopicMapper rewrites a coaty topic or subscription pattern into the
// subject syntax of a specific broker, for example "/" to "." and "+" to
// "*" for NATS.
type TopicMapper func(topic string) string

// Translated wraps a publisher/subscriber pair so that every topic passed
// through it is rewritten by the mapper. Message payload and metadata are
// untouched; the concrete coaty topic still travels in metadata.
func Translated(t Transport, mapper TopicMapper) Transport {
	return Transport{
		Publisher:  &translatingPublisher{inner: t.Publisher, mapper: mapper},
		Subscriber: &translatingSubscriber{inner: t.Subscriber, mapper: mapper},
	}
}

type translatingPublisher struct {
	inner  message.Publisher
	mapper TopicMapper
}

func (p *translatingPublisher) Publish(topic string, messages ...*message.Message) error {
	return p.inner.Publish(p.mapper(topic), messages...)
}

func (p *translatingPublisher) Close() error {
	return p.inner.Close()
}

type translatingSubscriber struct {
	inner  message.Subscriber
	mapper TopicMapper
}

func (s *translatingSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return s.inner.Subscribe(ctx, s.mapper(topic))
}

func (s *translatingSubscriber) Close() error {
	return s.inner.Close()
}
