package runtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/require"

	configpkg "github.com/coatyio/coaty-go/internal/runtime/config"
	idspkg "github.com/coatyio/coaty-go/internal/runtime/ids"
	loggingpkg "github.com/coatyio/coaty-go/internal/runtime/logging"
	"github.com/coatyio/coaty-go/internal/runtime/objects"
	"github.com/coatyio/coaty-go/internal/runtime/topics"
	transportpkg "github.com/coatyio/coaty-go/transport"
)

const testTimeout = 5 * time.Second

// mockPublisher records every published message for inspection.
type mockPublisher struct {
	mu       sync.Mutex
	topics   []string
	messages []*message.Message
	err      error
}

func (p *mockPublisher) Publish(topic string, messages ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	for _, msg := range messages {
		p.topics = append(p.topics, topic)
		p.messages = append(p.messages, msg)
	}
	return nil
}

func (p *mockPublisher) Close() error { return nil }

func (p *mockPublisher) published() (topics []string, messages []*message.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...), append([]*message.Message(nil), p.messages...)
}

// mockSubscriber hands out one channel per subscription pattern and lets
// tests inject inbound messages matching those patterns.
type mockSubscriber struct {
	mu       sync.Mutex
	patterns map[string][]chan *message.Message
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{patterns: make(map[string][]chan *message.Message)}
}

func (s *mockSubscriber) Subscribe(ctx context.Context, pattern string) (<-chan *message.Message, error) {
	ch := make(chan *message.Message, 64)
	s.mu.Lock()
	s.patterns[pattern] = append(s.patterns[pattern], ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		chans := s.patterns[pattern]
		for i, c := range chans {
			if c == ch {
				s.patterns[pattern] = append(chans[:i], chans[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

func (s *mockSubscriber) Close() error { return nil }

// deliver injects a raw message on the given concrete topic, fanning it out
// to every subscription whose pattern matches.
func (s *mockSubscriber) deliver(topic string, payload []byte) {
	msg := message.NewMessage(idspkg.NewMessageID(), payload)
	msg.Metadata.Set(transportpkg.MetadataKeyTopic, topic)

	s.mu.Lock()
	defer s.mu.Unlock()
	for pattern, chans := range s.patterns {
		if !topics.Matches(pattern, topic) {
			continue
		}
		for _, ch := range chans {
			ch <- msg
		}
	}
}

// deliverRaw injects a message on every open subscription regardless of
// pattern matching, for exercising the inbound drop paths.
func (s *mockSubscriber) deliverRaw(topic string, payload []byte) {
	msg := message.NewMessage(idspkg.NewMessageID(), payload)
	msg.Metadata.Set(transportpkg.MetadataKeyTopic, topic)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chans := range s.patterns {
		for _, ch := range chans {
			ch <- msg
		}
	}
}

func (s *mockSubscriber) subscriptionCount(pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.patterns[pattern])
}

// mockTransport bundles the mocks and registers them under the "mock" name
// in a fresh registry.
type mockTransport struct {
	pub *mockPublisher
	sub *mockSubscriber
}

func newMockRegistry(tp *mockTransport) *transportpkg.Registry {
	reg := transportpkg.NewRegistry()
	reg.Register("mock", func(ctx context.Context, cfg transportpkg.Config, logger watermill.LoggerAdapter) (transportpkg.Transport, error) {
		return transportpkg.Transport{Publisher: tp.pub, Subscriber: tp.sub}, nil
	})
	return reg
}

func newTestConfig() *configpkg.Configuration {
	return &configpkg.Configuration{
		Common:        configpkg.CommonOptions{AgentName: "test-agent"},
		Communication: configpkg.CommunicationOptions{Transport: "mock"},
	}
}

// newTestManager creates a started manager backed by recording mocks.
func newTestManager(t *testing.T) (*CommunicationManager, *mockTransport) {
	t.Helper()
	tp := &mockTransport{pub: &mockPublisher{}, sub: newMockSubscriber()}
	m, err := NewCommunicationManager(newTestConfig(), objects.NewRegistry(), loggingpkg.NewNopLogger(), ManagerDependencies{
		TransportRegistry: newMockRegistry(tp),
	})
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))
	t.Cleanup(func() { _ = m.Stop() })
	return m, tp
}

// recvEvent waits for one value on ch or fails the test after the timeout.
func recvEvent[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed before a value arrived")
		return v
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for event")
		panic("unreachable")
	}
}

// expectNoEvent asserts that nothing arrives on ch within the grace period.
func expectNoEvent[T any](t *testing.T, ch <-chan T, grace time.Duration) {
	t.Helper()
	select {
	case v, ok := <-ch:
		if ok {
			t.Fatalf("unexpected event %v", v)
		}
	case <-time.After(grace):
	}
}
