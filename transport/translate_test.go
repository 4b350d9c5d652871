package transport

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturingPublisher struct {
	mu     sync.Mutex
	topics []string
	closed bool
}

func (p *capturingPublisher) Publish(topic string, messages ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *capturingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

type capturingSubscriber struct {
	mu     sync.Mutex
	topics []string
	closed bool
}

func (s *capturingSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics = append(s.topics, topic)
	return make(chan *message.Message), nil
}

func (s *capturingSubscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func dotMapper(topic string) string {
	return strings.ReplaceAll(topic, "/", ".")
}

func TestTranslatedRewritesTopics(t *testing.T) {
	pub := &capturingPublisher{}
	sub := &capturingSubscriber{}
	tr := Translated(Transport{Publisher: pub, Subscriber: sub}, dotMapper)

	require.NoError(t, tr.Publisher.Publish("a/b/c", message.NewMessage("1", nil)))
	assert.Equal(t, []string{"a.b.c"}, pub.topics)

	_, err := tr.Subscriber.Subscribe(context.Background(), "a/+/c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.+.c"}, sub.topics)
}

func TestTranslatedPreservesMetadata(t *testing.T) {
	pub := &capturingPublisher{}
	tr := Translated(Transport{Publisher: pub, Subscriber: &capturingSubscriber{}}, dotMapper)

	msg := message.NewMessage("1", []byte("payload"))
	msg.Metadata.Set(MetadataKeyTopic, "a/b/c")
	require.NoError(t, tr.Publisher.Publish("a/b/c", msg))

	// Translation touches the publish topic only, not the metadata copy.
	assert.Equal(t, "a/b/c", msg.Metadata.Get(MetadataKeyTopic))
}

func TestTranslatedClose(t *testing.T) {
	pub := &capturingPublisher{}
	sub := &capturingSubscriber{}
	tr := Translated(Transport{Publisher: pub, Subscriber: sub}, dotMapper)

	require.NoError(t, tr.Close())
	assert.True(t, pub.closed)
	assert.True(t, sub.closed)
}

func TestTransportCloseReportsFirstError(t *testing.T) {
	tr := Transport{}
	assert.NoError(t, tr.Close())
}
