package events

import (
	"github.com/google/uuid"

	"github.com/coatyio/coaty-go/internal/runtime/ids"
	"github.com/coatyio/coaty-go/internal/runtime/objects"
	"github.com/coatyio/coaty-go/internal/runtime/topics"
)

// Factory builds event envelopes bound to a source identity. It is
// stateless apart from that binding. Two-way request constructors allocate
// a fresh correlation token; callers never choose tokens themselves.
type Factory struct {
	identity *objects.Identity
}

// NewFactory creates a factory whose envelopes name the given identity as
// their source.
func NewFactory(identity *objects.Identity) *Factory {
	return &Factory{identity: identity}
}

// Identity returns the bound source identity.
func (f *Factory) Identity() *objects.Identity {
	return f.identity
}

func (f *Factory) oneWay(t Type) base {
	return base{eventType: t, sourceID: f.identity.ObjectID}
}

func (f *Factory) request(t Type) base {
	return base{eventType: t, sourceID: f.identity.ObjectID, token: ids.NewCorrelationToken()}
}

// response builds the base for a response envelope. The correlation token is
// left empty; it is taken from the request's topic when the response is
// published.
func (f *Factory) response(t Type) base {
	return base{eventType: t, sourceID: f.identity.ObjectID}
}

// Advertise builds an Advertise envelope for the given object.
func (f *Factory) Advertise(obj objects.Object) *AdvertiseEvent {
	return &AdvertiseEvent{
		base: f.oneWay(topics.EventAdvertise),
		Data: AdvertisePayload{Object: obj},
	}
}

// Deadvertise builds a Deadvertise envelope withdrawing the given ids.
func (f *Factory) Deadvertise(objectIDs ...uuid.UUID) *DeadvertiseEvent {
	return &DeadvertiseEvent{
		base: f.oneWay(topics.EventDeadvertise),
		Data: DeadvertisePayload{ObjectIDs: objectIDs},
	}
}

// Channel builds a Channel envelope delivering objects on a channel id.
func (f *Factory) Channel(channelID string, objs ...objects.Object) *ChannelEvent {
	payload := ChannelPayload{ChannelID: channelID}
	switch len(objs) {
	case 0:
	case 1:
		payload.Object = objs[0]
	default:
		payload.Objects = objs
	}
	return &ChannelEvent{base: f.oneWay(topics.EventChannel), Data: payload}
}

// Discover builds a Discover request with a fresh correlation token.
func (f *Factory) Discover(payload DiscoverPayload) *DiscoverEvent {
	return &DiscoverEvent{base: f.request(topics.EventDiscover), Data: payload}
}

// Resolve builds a Resolve response envelope.
func (f *Factory) Resolve(payload ResolvePayload) *ResolveEvent {
	return &ResolveEvent{base: f.response(topics.EventResolve), Data: payload}
}

// Query builds a Query request with a fresh correlation token.
func (f *Factory) Query(payload QueryPayload) *QueryEvent {
	return &QueryEvent{base: f.request(topics.EventQuery), Data: payload}
}

// Retrieve builds a Retrieve response envelope.
func (f *Factory) Retrieve(payload RetrievePayload) *RetrieveEvent {
	return &RetrieveEvent{base: f.response(topics.EventRetrieve), Data: payload}
}

// Update builds an Update request with a fresh correlation token.
func (f *Factory) Update(objectID uuid.UUID, changes map[string]any) *UpdateEvent {
	return &UpdateEvent{
		base: f.request(topics.EventUpdate),
		Data: UpdatePayload{ObjectID: objectID, Changes: changes},
	}
}

// Complete builds a Complete response envelope carrying the updated object.
func (f *Factory) Complete(obj objects.Object) *CompleteEvent {
	return &CompleteEvent{
		base: f.response(topics.EventComplete),
		Data: CompletePayload{Object: obj},
	}
}

// Call builds a Call request with a fresh correlation token.
func (f *Factory) Call(operation string, parameters map[string]any) *CallEvent {
	return &CallEvent{
		base: f.request(topics.EventCall),
		Data: CallPayload{Operation: operation, Parameters: parameters},
	}
}

// ReturnResult builds a Return response envelope for a successful call.
func (f *Factory) ReturnResult(result any, executionInfo map[string]any) *ReturnEvent {
	return &ReturnEvent{
		base: f.response(topics.EventReturn),
		Data: ReturnPayload{Result: result, ExecutionInfo: executionInfo},
	}
}

// ReturnError builds a Return response envelope for a failed call.
func (f *Factory) ReturnError(code int, message string) *ReturnEvent {
	return &ReturnEvent{
		base: f.response(topics.EventReturn),
		Data: ReturnPayload{Error: &ReturnError{Code: code, Message: message}},
	}
}
