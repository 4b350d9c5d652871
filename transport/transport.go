// Package transport defines the pub/sub backend contract for coaty agents.
// Each backend lives in its own sub-package and registers itself with the
// transport registry; applications import the backends they need for side
// effect:
//
//	import _ "github.com/coatyio/coaty-go/transport/nats"
//
// Backends deliver raw bytes on topic strings. The five-level coaty topic
// travels once as the publish topic (translated to the backend's subject
// syntax where needed) and once verbatim in message metadata, so consumers
// of wildcard subscriptions always see the concrete publication topic.
package transport

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Metadata keys stamped on every published message.
const (
	// MetadataKeyTopic carries the concrete coaty topic of the message.
	MetadataKeyTopic = "coaty_topic"

	// MetadataKeyEventType carries the event type token for quick
	// inspection without decoding the topic.
	MetadataKeyEventType = "coaty_event_type"
)

// Transport combines a publisher and subscriber pair produced by a builder.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

// Close closes both halves. Backends where publisher and subscriber are the
// same object must tolerate the double close.
func (t Transport) Close() error {
	var firstErr error
	if t.Publisher != nil {
		if err := t.Publisher.Close(); err != nil {
			firstErr = err
		}
	}
	if t.Subscriber != nil {
		if err := t.Subscriber.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Builder is the function signature for creating a transport from config.
type Builder func(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (Transport, error)

// Config provides the configuration values needed by transports. The
// interface keeps backends decoupled from the full configuration package.
type Config interface {
	// GetTransportName returns the registry name of the selected backend.
	GetTransportName() string

	// GetNATSURL returns the NATS server URL.
	GetNATSURL() string

	// GetAMQPURL returns the AMQP broker URI.
	GetAMQPURL() string
}
