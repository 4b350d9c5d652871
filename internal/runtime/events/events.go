// Package events defines the typed event envelopes of the protocol and the
// codec between envelopes and their wire payloads.
//
// One-way events (Advertise, Deadvertise, Channel) carry no correlation
// token. Two-way events travel as request/response pairs (Discover/Resolve,
// Query/Retrieve, Update/Complete, Call/Return) correlated by a token that
// the factory allocates at construction time; the token itself travels in
// the topic, not in the payload.
package events

import (
	"github.com/google/uuid"

	"github.com/coatyio/coaty-go/internal/runtime/objects"
	"github.com/coatyio/coaty-go/internal/runtime/topics"
)

// Type identifies the protocol event pattern of an envelope.
type Type = topics.Event

// Event is the common envelope contract.
type Event interface {
	// EventType returns the protocol pattern of this envelope.
	EventType() Type

	// SourceID returns the object id of the identity that published the
	// envelope.
	SourceID() uuid.UUID

	// CorrelationToken returns the token linking a two-way request to its
	// responses. Empty for one-way events.
	CorrelationToken() string
}

type base struct {
	eventType Type
	sourceID  uuid.UUID
	token     string
}

func (b *base) EventType() Type          { return b.eventType }
func (b *base) SourceID() uuid.UUID      { return b.sourceID }
func (b *base) CorrelationToken() string { return b.token }

// AdvertisePayload announces a domain object to all interested observers.
type AdvertisePayload struct {
	Object      objects.Object `json:"object"`
	PrivateData map[string]any `json:"privateData,omitempty"`
}

// AdvertiseEvent broadcasts the existence or change of a domain object.
type AdvertiseEvent struct {
	base
	Data AdvertisePayload
}

// DeadvertisePayload withdraws previously advertised objects by id.
type DeadvertisePayload struct {
	ObjectIDs []uuid.UUID `json:"objectIds"`
}

// DeadvertiseEvent broadcasts that the listed objects are no longer alive.
type DeadvertiseEvent struct {
	base
	Data DeadvertisePayload
}

// ChannelPayload delivers objects on an application-chosen channel id,
// routed by that id instead of by object type.
type ChannelPayload struct {
	ChannelID   string           `json:"channelId"`
	Object      objects.Object   `json:"object,omitempty"`
	Objects     []objects.Object `json:"objects,omitempty"`
	PrivateData map[string]any   `json:"privateData,omitempty"`
}

// ChannelEvent broadcasts objects on a named channel.
type ChannelEvent struct {
	base
	Data ChannelPayload
}

// DiscoverPayload describes which objects the requester is looking for. At
// least one of the constraint fields must be set.
type DiscoverPayload struct {
	ExternalID  string             `json:"externalId,omitempty"`
	ObjectID    *uuid.UUID         `json:"objectId,omitempty"`
	ObjectTypes []string           `json:"objectTypes,omitempty"`
	CoreTypes   []objects.CoreType `json:"coreTypes,omitempty"`
}

// DiscoverEvent requests objects matching the payload's constraints.
type DiscoverEvent struct {
	base
	Data DiscoverPayload
}

// ResolvePayload answers a Discover request with a matching object and
// optionally objects related to it.
type ResolvePayload struct {
	Object         objects.Object   `json:"object,omitempty"`
	RelatedObjects []objects.Object `json:"relatedObjects,omitempty"`
	PrivateData    map[string]any   `json:"privateData,omitempty"`
}

// ResolveEvent is the response to a Discover request.
type ResolveEvent struct {
	base
	Data ResolvePayload
}

// QueryPayload describes a query over the agents' object universes. The
// filter holds free-form condition clauses interpreted by the responder.
type QueryPayload struct {
	ObjectTypes  []string           `json:"objectTypes,omitempty"`
	CoreTypes    []objects.CoreType `json:"coreTypes,omitempty"`
	ObjectFilter map[string]any     `json:"objectFilter,omitempty"`
}

// QueryEvent requests objects matching a query description.
type QueryEvent struct {
	base
	Data QueryPayload
}

// RetrievePayload answers a Query request with the matching objects.
type RetrievePayload struct {
	Objects     []objects.Object `json:"objects"`
	PrivateData map[string]any   `json:"privateData,omitempty"`
}

// RetrieveEvent is the response to a Query request.
type RetrieveEvent struct {
	base
	Data RetrievePayload
}

// UpdatePayload requests a partial update of the identified object. Changes
// maps attribute names to their new values; it is a request description,
// not a domain object.
type UpdatePayload struct {
	ObjectID uuid.UUID      `json:"objectId"`
	Changes  map[string]any `json:"changes"`
}

// UpdateEvent requests an object update from whoever owns the object.
type UpdateEvent struct {
	base
	Data UpdatePayload
}

// CompletePayload acknowledges an Update request with the full updated
// object.
type CompletePayload struct {
	Object      objects.Object `json:"object"`
	PrivateData map[string]any `json:"privateData,omitempty"`
}

// CompleteEvent is the response to an Update request.
type CompleteEvent struct {
	base
	Data CompletePayload
}

// CallPayload requests execution of a remote operation. Filter optionally
// constrains which agents should consider themselves addressed.
type CallPayload struct {
	Operation  string         `json:"operation"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Filter     map[string]any `json:"filter,omitempty"`
}

// CallEvent requests a remote operation call.
type CallEvent struct {
	base
	Data CallPayload
}

// ReturnError describes a failed remote operation.
type ReturnError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ReturnPayload carries either the result of a successful remote operation
// or a structured error, never both.
type ReturnPayload struct {
	Result        any            `json:"result,omitempty"`
	Error         *ReturnError   `json:"error,omitempty"`
	ExecutionInfo map[string]any `json:"executionInfo,omitempty"`
}

// ReturnEvent is the response to a Call request.
type ReturnEvent struct {
	base
	Data ReturnPayload
}

// ResponseType maps a two-way request pattern to its response pattern.
// Non-request patterns map to the empty type.
func ResponseType(request Type) Type {
	switch request {
	case topics.EventDiscover:
		return topics.EventResolve
	case topics.EventQuery:
		return topics.EventRetrieve
	case topics.EventUpdate:
		return topics.EventComplete
	case topics.EventCall:
		return topics.EventReturn
	}
	return ""
}
