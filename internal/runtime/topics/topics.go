// Package topics implements the wire-format codec for coaty topic strings.
//
// Every message travels on a topic of exactly five positional levels:
//
//	eventType/filter/associatedUserId/sourceObjectId/correlationToken
//
// Levels that carry no value are encoded as the reserved placeholder "-",
// never as an empty level, so the level count stays stable for wildcard
// subscriptions. Subscription patterns replace unconstrained levels with the
// single-level wildcard "+"; publication topics are always fully concrete.
package topics

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/coatyio/coaty-go/internal/runtime/errors"
)

const (
	// Separator joins topic levels.
	Separator = "/"

	// Placeholder marks a level whose value is absent on a concrete topic.
	Placeholder = "-"

	// Wildcard matches any single level in a subscription pattern.
	Wildcard = "+"

	levelCount = 5
)

// Event is the wire token identifying the protocol event pattern of a topic.
type Event string

const (
	EventAdvertise   Event = "Advertise"
	EventDeadvertise Event = "Deadvertise"
	EventChannel     Event = "Channel"
	EventDiscover    Event = "Discover"
	EventResolve     Event = "Resolve"
	EventQuery       Event = "Query"
	EventRetrieve    Event = "Retrieve"
	EventUpdate      Event = "Update"
	EventComplete    Event = "Complete"
	EventCall        Event = "Call"
	EventReturn      Event = "Return"
)

var knownEvents = map[Event]struct{}{
	EventAdvertise:   {},
	EventDeadvertise: {},
	EventChannel:     {},
	EventDiscover:    {},
	EventResolve:     {},
	EventQuery:       {},
	EventRetrieve:    {},
	EventUpdate:      {},
	EventComplete:    {},
	EventCall:        {},
	EventReturn:      {},
}

// IsValid reports whether e is one of the protocol event tokens.
func (e Event) IsValid() bool {
	_, ok := knownEvents[e]
	return ok
}

// IsTwoWay reports whether e belongs to a request/response pair and
// therefore always carries a correlation token on the wire.
func (e Event) IsTwoWay() bool {
	switch e {
	case EventDiscover, EventResolve, EventQuery, EventRetrieve,
		EventUpdate, EventComplete, EventCall, EventReturn:
		return true
	}
	return false
}

// Topic is the decoded projection of an event's wire metadata.
type Topic struct {
	Event Event

	// Filter is the event-specific routing filter (object type, core type
	// or channel id). Empty when the event carries none.
	Filter string

	// AssociatedUserID identifies the user this event is associated with.
	// Empty when there is no associated user.
	AssociatedUserID string

	// SourceObjectID is the object id of the publishing identity.
	SourceObjectID uuid.UUID

	// CorrelationToken links a two-way request to its responses. Empty on
	// one-way events.
	CorrelationToken string
}

// Encode renders the fully concrete publication topic for t.
func (t Topic) Encode() string {
	return strings.Join([]string{
		string(t.Event),
		orPlaceholder(t.Filter),
		orPlaceholder(t.AssociatedUserID),
		t.SourceObjectID.String(),
		orPlaceholder(t.CorrelationToken),
	}, Separator)
}

// Pattern builds a subscription pattern for the given event. Empty filter
// and token constrain nothing and become wildcards; the associated-user and
// source levels are never constrained by subscribers.
func Pattern(event Event, filter, token string) string {
	return strings.Join([]string{
		string(event),
		orWildcard(filter),
		Wildcard,
		Wildcard,
		orWildcard(token),
	}, Separator)
}

// Decode parses a concrete topic string back into its metadata. It fails
// with ErrMalformedTopic when the level count is wrong, the event token is
// unrecognized, or the source level is not a UUID.
func Decode(topic string) (Topic, error) {
	levels := strings.Split(topic, Separator)
	if len(levels) != levelCount {
		return Topic{}, fmt.Errorf("%w: expected %d levels, got %d in %q",
			errors.ErrMalformedTopic, levelCount, len(levels), topic)
	}

	event := Event(levels[0])
	if !event.IsValid() {
		return Topic{}, fmt.Errorf("%w: unknown event type %q", errors.ErrMalformedTopic, levels[0])
	}

	sourceID, err := uuid.Parse(levels[3])
	if err != nil {
		return Topic{}, fmt.Errorf("%w: source object id %q is not a UUID",
			errors.ErrMalformedTopic, levels[3])
	}

	return Topic{
		Event:            event,
		Filter:           fromPlaceholder(levels[1]),
		AssociatedUserID: fromPlaceholder(levels[2]),
		SourceObjectID:   sourceID,
		CorrelationToken: fromPlaceholder(levels[4]),
	}, nil
}

func orPlaceholder(level string) string {
	if level == "" {
		return Placeholder
	}
	return level
}

func orWildcard(level string) string {
	if level == "" {
		return Wildcard
	}
	return level
}

func fromPlaceholder(level string) string {
	if level == Placeholder {
		return ""
	}
	return level
}

// Matches reports whether the concrete topic string matches the subscription
// pattern, level by level, treating "+" as match-any. Transports without
// native wildcard support use this for client-side filtering.
func Matches(pattern, topic string) bool {
	pl := strings.Split(pattern, Separator)
	tl := strings.Split(topic, Separator)
	if len(pl) != len(tl) {
		return false
	}
	for i, p := range pl {
		if p != Wildcard && p != tl[i] {
			return false
		}
	}
	return true
}
