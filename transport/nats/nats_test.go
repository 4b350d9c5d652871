package nats

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coatyio/coaty-go/transport"
)

type mockConfig struct{}

func (m *mockConfig) GetTransportName() string { return "nats" }
func (m *mockConfig) GetNATSURL() string       { return "nats://localhost:4222" }
func (m *mockConfig) GetAMQPURL() string       { return "" }

type mockPublisher struct {
	topics []string
}

func (m *mockPublisher) Publish(topic string, messages ...*message.Message) error {
	m.topics = append(m.topics, topic)
	return nil
}
func (m *mockPublisher) Close() error { return nil }

type mockSubscriber struct {
	topics []string
}

func (m *mockSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	m.topics = append(m.topics, topic)
	return make(chan *message.Message), nil
}
func (m *mockSubscriber) Close() error { return nil }

func withMockFactories(t *testing.T, pub *mockPublisher, sub *mockSubscriber) {
	t.Helper()
	originalPub := PublisherFactory
	originalSub := SubscriberFactory
	t.Cleanup(func() {
		PublisherFactory = originalPub
		SubscriberFactory = originalSub
	})
	PublisherFactory = func(cfg wmnats.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
		assert.Equal(t, "nats://localhost:4222", cfg.URL)
		return pub, nil
	}
	SubscriberFactory = func(cfg wmnats.SubscriberConfig, logger watermill.LoggerAdapter) (message.Subscriber, error) {
		assert.Equal(t, "nats://localhost:4222", cfg.URL)
		return sub, nil
	}
}

func TestRegister(t *testing.T) {
	original := transport.DefaultRegistry
	defer func() { transport.DefaultRegistry = original }()
	transport.DefaultRegistry = transport.NewRegistry()
	Register()

	caps := transport.GetCapabilities(TransportName)
	assert.Equal(t, "nats", caps.Name)
	assert.True(t, caps.NativeWildcards)
	assert.True(t, caps.Brokered)
}

func TestSubjectMapper(t *testing.T) {
	assert.Equal(t, "Advertise.coaty.Task.-.id.-", SubjectMapper("Advertise/coaty.Task/-/id/-"))
	assert.Equal(t, "Advertise.*.*.*.*", SubjectMapper("Advertise/+/+/+/+"))
	assert.Equal(t, "Advertise.>", SubjectMapper("Advertise/#"))
}

func TestBuildTranslatesTopics(t *testing.T) {
	pub := &mockPublisher{}
	sub := &mockSubscriber{}
	withMockFactories(t, pub, sub)

	tr, err := Build(context.Background(), &mockConfig{}, watermill.NopLogger{})
	require.NoError(t, err)

	require.NoError(t, tr.Publisher.Publish("Advertise/coaty.Task/-/id/-", message.NewMessage("1", nil)))
	assert.Equal(t, []string{"Advertise.coaty.Task.-.id.-"}, pub.topics)

	_, err = tr.Subscriber.Subscribe(context.Background(), "Advertise/+/+/+/+")
	require.NoError(t, err)
	assert.Equal(t, []string{"Advertise.*.*.*.*"}, sub.topics)
}

func TestBuildPublisherError(t *testing.T) {
	originalPub := PublisherFactory
	defer func() { PublisherFactory = originalPub }()

	buildErr := errors.New("connection refused")
	PublisherFactory = func(cfg wmnats.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
		return nil, buildErr
	}

	_, err := Build(context.Background(), &mockConfig{}, watermill.NopLogger{})
	assert.True(t, errors.Is(err, buildErr))
}

func TestCapabilities(t *testing.T) {
	assert.Equal(t, transport.NATSCapabilities, Capabilities())
}
