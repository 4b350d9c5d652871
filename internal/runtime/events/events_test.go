package events

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errspkg "github.com/coatyio/coaty-go/internal/runtime/errors"
	"github.com/coatyio/coaty-go/internal/runtime/objects"
	"github.com/coatyio/coaty-go/internal/runtime/topics"
)

func newTestFactory(t *testing.T) *Factory {
	t.Helper()
	return NewFactory(objects.NewIdentity("test-agent"))
}

func TestFactoryOneWayEventsCarryNoToken(t *testing.T) {
	f := newTestFactory(t)
	task := objects.New(objects.CoreTypeTask, "com.example.test.Job", "job-1")

	for name, evt := range map[string]Event{
		"advertise":   f.Advertise(&task),
		"deadvertise": f.Deadvertise(task.ObjectID),
		"channel":     f.Channel("alerts", &task),
	} {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, evt.CorrelationToken())
			assert.Equal(t, f.Identity().ObjectID, evt.SourceID())
		})
	}
}

func TestFactoryRequestsAllocateUniqueTokens(t *testing.T) {
	f := newTestFactory(t)

	seen := map[string]struct{}{}
	for _, evt := range []Event{
		f.Discover(DiscoverPayload{ExternalID: "x"}),
		f.Query(QueryPayload{CoreTypes: []objects.CoreType{objects.CoreTypeTask}}),
		f.Update(uuid.New(), map[string]any{"name": "renamed"}),
		f.Call("lights.switch", nil),
		f.Discover(DiscoverPayload{ExternalID: "y"}),
	} {
		token := evt.CorrelationToken()
		require.NotEmpty(t, token)
		_, dup := seen[token]
		assert.False(t, dup, "token %q allocated twice", token)
		seen[token] = struct{}{}
	}
}

func TestFactoryResponsesLeaveTokenToPublish(t *testing.T) {
	f := newTestFactory(t)
	task := objects.New(objects.CoreTypeTask, "com.example.test.Job", "job-1")

	for name, evt := range map[string]Event{
		"resolve":      f.Resolve(ResolvePayload{Object: &task}),
		"retrieve":     f.Retrieve(RetrievePayload{Objects: []objects.Object{&task}}),
		"complete":     f.Complete(&task),
		"returnResult": f.ReturnResult(21, nil),
		"returnError":  f.ReturnError(-32603, "internal error"),
	} {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, evt.CorrelationToken())
		})
	}
}

func TestFactoryChannelObjectPlacement(t *testing.T) {
	f := newTestFactory(t)
	a := objects.New(objects.CoreTypeObject, "com.example.test.A", "a")
	b := objects.New(objects.CoreTypeObject, "com.example.test.B", "b")

	t.Run("single object", func(t *testing.T) {
		evt := f.Channel("alerts", &a)
		assert.NotNil(t, evt.Data.Object)
		assert.Nil(t, evt.Data.Objects)
	})

	t.Run("multiple objects", func(t *testing.T) {
		evt := f.Channel("alerts", &a, &b)
		assert.Nil(t, evt.Data.Object)
		assert.Len(t, evt.Data.Objects, 2)
	})

	t.Run("no objects", func(t *testing.T) {
		evt := f.Channel("alerts")
		assert.Nil(t, evt.Data.Object)
		assert.Nil(t, evt.Data.Objects)
	})
}

func TestResponseType(t *testing.T) {
	assert.Equal(t, topics.EventResolve, ResponseType(topics.EventDiscover))
	assert.Equal(t, topics.EventRetrieve, ResponseType(topics.EventQuery))
	assert.Equal(t, topics.EventComplete, ResponseType(topics.EventUpdate))
	assert.Equal(t, topics.EventReturn, ResponseType(topics.EventCall))
	assert.Equal(t, Type(""), ResponseType(topics.EventAdvertise))
	assert.Equal(t, Type(""), ResponseType(topics.EventResolve))
}

func TestEncodeDecodeAdvertise(t *testing.T) {
	f := newTestFactory(t)
	task := objects.New(objects.CoreTypeTask, "coaty.Task", "refill")
	src := f.Advertise(&task)

	payload, err := Encode(src)
	require.NoError(t, err)

	tpc := topics.Topic{
		Event:          topics.EventAdvertise,
		Filter:         "coaty.Task",
		SourceObjectID: src.SourceID(),
	}
	decoded, err := Decode(nil, tpc, payload)
	require.NoError(t, err)

	evt, ok := decoded.(*AdvertiseEvent)
	require.True(t, ok, "expected AdvertiseEvent, got %T", decoded)
	assert.Equal(t, topics.EventAdvertise, evt.EventType())
	assert.Equal(t, src.SourceID(), evt.SourceID())
	assert.Equal(t, task.ObjectID, evt.Data.Object.GetObjectID())
	assert.Equal(t, "refill", evt.Data.Object.GetName())
}

func TestEncodeDecodeDeadvertise(t *testing.T) {
	f := newTestFactory(t)
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	src := f.Deadvertise(ids...)

	payload, err := Encode(src)
	require.NoError(t, err)

	decoded, err := Decode(nil, topics.Topic{
		Event:          topics.EventDeadvertise,
		SourceObjectID: src.SourceID(),
	}, payload)
	require.NoError(t, err)

	evt := decoded.(*DeadvertiseEvent)
	assert.Equal(t, ids, evt.Data.ObjectIDs)
}

func TestDecodeFillsEnvelopeFromTopic(t *testing.T) {
	f := newTestFactory(t)
	src := f.Discover(DiscoverPayload{ObjectTypes: []string{"coaty.Task"}})

	payload, err := Encode(src)
	require.NoError(t, err)

	tpc := topics.Topic{
		Event:            topics.EventDiscover,
		SourceObjectID:   src.SourceID(),
		CorrelationToken: src.CorrelationToken(),
	}
	decoded, err := Decode(nil, tpc, payload)
	require.NoError(t, err)

	assert.Equal(t, src.CorrelationToken(), decoded.CorrelationToken())
	assert.Equal(t, src.SourceID(), decoded.SourceID())

	evt := decoded.(*DiscoverEvent)
	assert.Equal(t, []string{"coaty.Task"}, evt.Data.ObjectTypes)
}

func TestDecodeResolveWithRelatedObjects(t *testing.T) {
	f := newTestFactory(t)
	main := objects.New(objects.CoreTypeTask, "coaty.Task", "main")
	rel := objects.New(objects.CoreTypeAnnotation, "coaty.Annotation", "note")
	src := f.Resolve(ResolvePayload{Object: &main, RelatedObjects: []objects.Object{&rel}})

	payload, err := Encode(src)
	require.NoError(t, err)

	decoded, err := Decode(nil, topics.Topic{
		Event:            topics.EventResolve,
		SourceObjectID:   src.SourceID(),
		CorrelationToken: "tok-1",
	}, payload)
	require.NoError(t, err)

	evt := decoded.(*ResolveEvent)
	assert.Equal(t, "tok-1", evt.CorrelationToken())
	require.NotNil(t, evt.Data.Object)
	assert.Equal(t, main.ObjectID, evt.Data.Object.GetObjectID())
	require.Len(t, evt.Data.RelatedObjects, 1)
	assert.Equal(t, rel.ObjectID, evt.Data.RelatedObjects[0].GetObjectID())
}

func TestDecodeReturnError(t *testing.T) {
	f := newTestFactory(t)
	src := f.ReturnError(-32603, "operation failed")

	payload, err := Encode(src)
	require.NoError(t, err)

	decoded, err := Decode(nil, topics.Topic{
		Event:            topics.EventReturn,
		SourceObjectID:   src.SourceID(),
		CorrelationToken: "tok-9",
	}, payload)
	require.NoError(t, err)

	evt := decoded.(*ReturnEvent)
	require.NotNil(t, evt.Data.Error)
	assert.Equal(t, -32603, evt.Data.Error.Code)
	assert.Equal(t, "operation failed", evt.Data.Error.Message)
	assert.Nil(t, evt.Data.Result)
}

func TestDecodeFailures(t *testing.T) {
	source := uuid.New()

	t.Run("advertise without object", func(t *testing.T) {
		_, err := Decode(nil, topics.Topic{Event: topics.EventAdvertise, SourceObjectID: source}, []byte(`{}`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errspkg.ErrDecodingFailure))
	})

	t.Run("complete without object", func(t *testing.T) {
		_, err := Decode(nil, topics.Topic{Event: topics.EventComplete, SourceObjectID: source}, []byte(`{}`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errspkg.ErrDecodingFailure))
	})

	t.Run("structurally invalid payload", func(t *testing.T) {
		_, err := Decode(nil, topics.Topic{Event: topics.EventUpdate, SourceObjectID: source}, []byte(`{"objectId":`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errspkg.ErrDecodingFailure))
	})

	t.Run("unresolvable embedded object", func(t *testing.T) {
		payload := []byte(`{"object":{"coreType":"Nonsense","objectType":"?"}}`)
		_, err := Decode(nil, topics.Topic{Event: topics.EventAdvertise, SourceObjectID: source}, payload)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errspkg.ErrDecodingFailure))
	})
}

func TestEncodeRejectsUnknownEnvelope(t *testing.T) {
	_, err := Encode(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errspkg.ErrInvalidArgument))
}
