// Package channel provides an in-memory transport backed by Watermill's
// gochannel pub/sub. It is the default for tests and single-process setups.
//
// gochannel has no broker-side wildcard matching, so all traffic is routed
// over one internal fan-out topic and subscription patterns are matched
// client-side against the concrete topic stamped in message metadata.
package channel

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/coatyio/coaty-go/internal/runtime/topics"
	"github.com/coatyio/coaty-go/transport"
)

// TransportName is the name used to register this transport.
const TransportName = "channel"

// fanoutTopic is the single internal gochannel topic all traffic flows on.
const fanoutTopic = "coaty"

// Factory allows overriding the gochannel creation for testing.
var Factory = func(cfg gochannel.Config, logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(cfg, logger)
}

func init() {
	transport.RegisterWithCapabilities(TransportName, Build, transport.ChannelCapabilities)
}

// Register registers the channel transport with the default registry.
// Importing this package has the same effect.
func Register() {
	transport.RegisterWithCapabilities(TransportName, Build, transport.ChannelCapabilities)
}

// Build creates a new in-memory channel transport.
func Build(ctx context.Context, cfg transport.Config, logger watermill.LoggerAdapter) (transport.Transport, error) {
	pubSub := Factory(gochannel.Config{}, logger)
	ps := &patternPubSub{inner: pubSub}
	return transport.Transport{
		Publisher:  ps,
		Subscriber: ps,
	}, nil
}

// Capabilities returns the capabilities of this transport.
func Capabilities() transport.Capabilities {
	return transport.ChannelCapabilities
}

// patternPubSub adapts gochannel's exact-topic delivery to wildcard
// subscription patterns.
type patternPubSub struct {
	inner *gochannel.GoChannel
}

func (p *patternPubSub) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.Metadata.Get(transport.MetadataKeyTopic) == "" {
			msg.Metadata.Set(transport.MetadataKeyTopic, topic)
		}
	}
	return p.inner.Publish(fanoutTopic, messages...)
}

func (p *patternPubSub) Subscribe(ctx context.Context, pattern string) (<-chan *message.Message, error) {
	all, err := p.inner.Subscribe(ctx, fanoutTopic)
	if err != nil {
		return nil, err
	}

	matched := make(chan *message.Message)
	go func() {
		defer close(matched)
		for msg := range all {
			topic := msg.Metadata.Get(transport.MetadataKeyTopic)
			if !topics.Matches(pattern, topic) {
				msg.Ack()
				continue
			}
			select {
			case matched <- msg:
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()
	return matched, nil
}

func (p *patternPubSub) Close() error {
	return p.inner.Close()
}
