package coaty

import (
	"errors"
	"testing"
	"time"

	_ "github.com/coatyio/coaty-go/transport/channel"
)

const integrationTimeout = 5 * time.Second

func newChannelConfig() *Configuration {
	return &Configuration{
		Common: CommonOptions{AgentName: "integration-agent"},
		Communication: CommunicationOptions{
			Transport:       "channel",
			ShouldAutoStart: true,
		},
	}
}

func TestResolveAndShutdown(t *testing.T) {
	container, err := Resolve(Components{}, newChannelConfig(), nil, NewNopLogger(), ManagerDependencies{})
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	if container.CommunicationManager().State() != StateStarted {
		t.Fatalf("expected started state, got %s", container.CommunicationManager().State())
	}
	container.Shutdown()
	if container.CommunicationManager().State() != StateStopped {
		t.Fatalf("expected stopped state, got %s", container.CommunicationManager().State())
	}
}

func TestAdvertiseLoopback(t *testing.T) {
	container, err := Resolve(Components{}, newChannelConfig(), nil, NewNopLogger(), ManagerDependencies{})
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	defer container.Shutdown()
	com := container.CommunicationManager()

	evts, cancel, err := com.ObserveAdvertiseWithCoreType(CoreTypeTask)
	if err != nil {
		t.Fatalf("unexpected observe error: %v", err)
	}
	defer cancel()

	task := NewObject(CoreTypeTask, "coaty.Task", "water the plants")
	if err := com.PublishAdvertise(com.EventFactory().Advertise(&task)); err != nil {
		t.Fatalf("unexpected publish error: %v", err)
	}

	select {
	case evt := <-evts:
		if evt.Data.Object.GetName() != "water the plants" {
			t.Fatalf("unexpected object %v", evt.Data.Object)
		}
		if evt.SourceID() != com.Identity().ObjectID {
			t.Fatal("expected own identity as source")
		}
	case <-time.After(integrationTimeout):
		t.Fatal("timed out waiting for advertise loopback")
	}
}

func TestDiscoverResolveLoopback(t *testing.T) {
	container, err := Resolve(Components{}, newChannelConfig(), nil, NewNopLogger(), ManagerDependencies{})
	if err != nil {
		t.Fatalf("unexpected resolve error: %v", err)
	}
	defer container.Shutdown()
	com := container.CommunicationManager()

	requests, cancelObserve, err := com.ObserveDiscover()
	if err != nil {
		t.Fatalf("unexpected observe error: %v", err)
	}
	defer cancelObserve()

	go func() {
		for req := range requests {
			task := NewObject(CoreTypeTask, "coaty.Task", "found")
			_ = req.Resolve(com.EventFactory().Resolve(ResolvePayload{Object: &task}))
		}
	}()

	resolves, cancelRequest, err := com.PublishDiscover(com.EventFactory().Discover(DiscoverPayload{
		ObjectTypes: []string{"coaty.Task"},
	}))
	if err != nil {
		t.Fatalf("unexpected publish error: %v", err)
	}
	defer cancelRequest()

	select {
	case evt := <-resolves:
		if evt.Data.Object.GetName() != "found" {
			t.Fatalf("unexpected resolved object %v", evt.Data.Object)
		}
	case <-time.After(integrationTimeout):
		t.Fatal("timed out waiting for resolve")
	}
}

func TestObjectCodecExports(t *testing.T) {
	family := NewObjectFamily()
	task := NewObject(CoreTypeTask, "coaty.Task", "job")

	data, err := EncodeObject(&task)
	if err != nil {
		t.Fatalf("encode alias failed: %v", err)
	}
	obj, err := DecodeObject(family, data)
	if err != nil {
		t.Fatalf("decode alias failed: %v", err)
	}
	if obj.GetObjectID() != task.ObjectID {
		t.Fatal("expected decoded object to keep its id")
	}

	typed, err := DecodeObjectAs[*CoatyObject](family, data)
	if err != nil {
		t.Fatalf("typed decode alias failed: %v", err)
	}
	if typed.Name != "job" {
		t.Fatalf("expected name to survive, got %q", typed.Name)
	}
}

func TestTopicCodecExports(t *testing.T) {
	pattern := TopicPattern(EventTypeAdvertise, "coaty.Task", "")
	if pattern != "Advertise/coaty.Task/+/+/+" {
		t.Fatalf("unexpected pattern %q", pattern)
	}

	tpc := Topic{Event: EventTypeAdvertise, Filter: "coaty.Task", SourceObjectID: NewObjectID()}
	if !TopicMatches(pattern, tpc.Encode()) {
		t.Fatal("expected concrete topic to match its pattern")
	}

	decoded, err := DecodeTopic(tpc.Encode())
	if err != nil {
		t.Fatalf("decode topic alias failed: %v", err)
	}
	if decoded.Event != EventTypeAdvertise {
		t.Fatalf("unexpected event %q", decoded.Event)
	}

	if _, err := DecodeTopic("not/a/topic"); !errors.Is(err, ErrMalformedTopic) {
		t.Fatalf("expected malformed topic error, got %v", err)
	}
}

func TestEncodingExportAliases(t *testing.T) {
	payload := map[string]string{"hello": "world"}
	if _, err := Marshal(payload); err != nil {
		t.Fatalf("marshal alias failed: %v", err)
	}
	if _, err := MarshalIndent(payload, "", "  "); err != nil {
		t.Fatalf("marshal indent alias failed: %v", err)
	}
	if err := Unmarshal([]byte(`{"hello":"world"}`), &payload); err != nil {
		t.Fatalf("unmarshal alias failed: %v", err)
	}
}

func TestCoreTypeConstants(t *testing.T) {
	if CoreTypeComponent != "Component" {
		t.Fatalf("expected CoreTypeComponent to be 'Component', got %q", CoreTypeComponent)
	}
	if CoreTypeComponent.ObjectType() != "coaty.Component" {
		t.Fatalf("unexpected object type %q", CoreTypeComponent.ObjectType())
	}
}
