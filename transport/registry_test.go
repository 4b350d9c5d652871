package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockConfig struct {
	transport string
}

func (m *mockConfig) GetTransportName() string { return m.transport }
func (m *mockConfig) GetNATSURL() string       { return "" }
func (m *mockConfig) GetAMQPURL() string       { return "" }

type mockPublisher struct{}

func (m *mockPublisher) Publish(topic string, messages ...*message.Message) error { return nil }
func (m *mockPublisher) Close() error                                             { return nil }

type mockSubscriber struct{}

func (m *mockSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return make(chan *message.Message), nil
}
func (m *mockSubscriber) Close() error { return nil }

func mockBuilder(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (Transport, error) {
	return Transport{Publisher: &mockPublisher{}, Subscriber: &mockSubscriber{}}, nil
}

func TestRegistryRegisterAndBuild(t *testing.T) {
	reg := NewRegistry()
	reg.Register("mock", mockBuilder)

	assert.True(t, reg.Has("mock"))
	assert.False(t, reg.Has("other"))
	assert.Equal(t, []string{"mock"}, reg.Names())

	tr, err := reg.Build(context.Background(), &mockConfig{transport: "mock"}, watermill.NopLogger{})
	require.NoError(t, err)
	assert.NotNil(t, tr.Publisher)
	assert.NotNil(t, tr.Subscriber)
}

func TestRegistryBuildUnknownTransport(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Build(context.Background(), &mockConfig{transport: "missing"}, watermill.NopLogger{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown transport")
}

func TestRegistryBuildNilConfig(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Build(context.Background(), nil, watermill.NopLogger{})
	require.Error(t, err)
}

func TestRegistryCapabilities(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterWithCapabilities("mock", mockBuilder, Capabilities{
		Name:            "mock",
		NativeWildcards: true,
	})

	caps := reg.GetCapabilities("mock")
	assert.Equal(t, "mock", caps.Name)
	assert.True(t, caps.NativeWildcards)

	unknown := reg.GetCapabilities("other")
	assert.Equal(t, "other", unknown.Name)
	assert.False(t, unknown.NativeWildcards)
}

func TestRegistryBuilderError(t *testing.T) {
	reg := NewRegistry()
	buildErr := errors.New("broker unreachable")
	reg.Register("failing", func(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (Transport, error) {
		return Transport{}, buildErr
	})

	_, err := reg.Build(context.Background(), &mockConfig{transport: "failing"}, watermill.NopLogger{})
	assert.True(t, errors.Is(err, buildErr))
}

func TestDefaultRegistryWrappers(t *testing.T) {
	original := DefaultRegistry
	defer func() { DefaultRegistry = original }()
	DefaultRegistry = NewRegistry()

	RegisterWithCapabilities("mock", mockBuilder, Capabilities{Name: "mock"})
	assert.True(t, DefaultRegistry.Has("mock"))
	assert.Equal(t, "mock", GetCapabilities("mock").Name)

	tr, err := Build(context.Background(), &mockConfig{transport: "mock"}, watermill.NopLogger{})
	require.NoError(t, err)
	assert.NotNil(t, tr.Publisher)
}
