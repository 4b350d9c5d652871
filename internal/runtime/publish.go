package runtime

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	errspkg "github.com/coatyio/coaty-go/internal/runtime/errors"
	"github.com/coatyio/coaty-go/internal/runtime/events"
	idspkg "github.com/coatyio/coaty-go/internal/runtime/ids"
	"github.com/coatyio/coaty-go/internal/runtime/objects"
	"github.com/coatyio/coaty-go/internal/runtime/topics"
	transportpkg "github.com/coatyio/coaty-go/transport"
)

const tracerName = "coaty-go/communication"

// topicFor projects an envelope's metadata onto a concrete publication
// topic with the given routing filter.
func (m *CommunicationManager) topicFor(evt events.Event, filter string) topics.Topic {
	return topics.Topic{
		Event:            evt.EventType(),
		Filter:           filter,
		AssociatedUserID: m.cfg.Common.AssociatedUserID,
		SourceObjectID:   evt.SourceID(),
		CorrelationToken: evt.CorrelationToken(),
	}
}

// publishOn serializes the envelope once and hands one message per topic to
// the transport. Publishing is fire-and-continue: success means local
// encoding plus transport handoff, not broker acknowledgment. The transport
// stays writable while the manager is stopping, so tracked objects can be
// deadvertised and stopping hooks can send final events.
func (m *CommunicationManager) publishOn(evt events.Event, tpcs ...topics.Topic) error {
	m.mu.Lock()
	if m.state != StateStarted && m.state != StateStopping {
		m.mu.Unlock()
		return errspkg.ErrNotStarted
	}
	pub := m.tp.Publisher
	m.mu.Unlock()

	payload, err := events.Encode(evt)
	if err != nil {
		return err
	}

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(context.Background(), "PublishEvent")
	defer span.End()
	span.SetAttributes(attribute.String("event.type", string(evt.EventType())))

	for _, tpc := range tpcs {
		topicStr := tpc.Encode()
		span.SetAttributes(attribute.String("topic", topicStr))

		msg := message.NewMessage(idspkg.NewMessageID(), payload)
		msg.SetContext(ctx)
		msg.Metadata.Set(transportpkg.MetadataKeyTopic, topicStr)
		msg.Metadata.Set(transportpkg.MetadataKeyEventType, string(evt.EventType()))

		if err := pub.Publish(topicStr, msg); err != nil {
			return fmt.Errorf("publishing %s event: %w", evt.EventType(), err)
		}
		m.metrics.Published.WithLabelValues(string(evt.EventType())).Inc()
	}
	return nil
}

// PublishAdvertise broadcasts the envelope's object twice, once routed by
// its objectType and once by its coreType, so observers filtering on either
// axis receive it exactly once each. Component and Device objects are
// recorded for deadvertisement on Stop.
func (m *CommunicationManager) PublishAdvertise(evt *events.AdvertiseEvent) error {
	if evt == nil || evt.Data.Object == nil {
		return fmt.Errorf("%w: %v", errspkg.ErrInvalidArgument, errspkg.ErrObjectRequired)
	}
	obj := evt.Data.Object
	err := m.publishOn(evt,
		m.topicFor(evt, obj.GetObjectType()),
		m.topicFor(evt, string(obj.GetCoreType())),
	)
	if err != nil {
		return err
	}
	// Track only after the broadcast went out, so a failed advertise leaves
	// the deadvertise set unchanged.
	m.trackForDeadvertise(obj)
	return nil
}

func (m *CommunicationManager) trackForDeadvertise(obj objects.Object) {
	switch obj.GetCoreType() {
	case objects.CoreTypeComponent, objects.CoreTypeDevice:
	default:
		return
	}
	m.trackMu.Lock()
	defer m.trackMu.Unlock()
	m.tracked[obj.GetObjectID()] = struct{}{}
}

// PublishDeadvertise broadcasts that the envelope's object ids are no
// longer alive and removes them from the tracking set.
func (m *CommunicationManager) PublishDeadvertise(evt *events.DeadvertiseEvent) error {
	if evt == nil || len(evt.Data.ObjectIDs) == 0 {
		return fmt.Errorf("%w: deadvertise requires at least one object id", errspkg.ErrInvalidArgument)
	}
	if err := m.publishOn(evt, m.topicFor(evt, "")); err != nil {
		return err
	}
	m.trackMu.Lock()
	for _, id := range evt.Data.ObjectIDs {
		delete(m.tracked, id)
	}
	m.trackMu.Unlock()
	return nil
}

// PublishChannel broadcasts objects on the envelope's channel id. An
// envelope without a channel id is rejected.
func (m *CommunicationManager) PublishChannel(evt *events.ChannelEvent) error {
	if evt == nil || evt.Data.ChannelID == "" {
		return fmt.Errorf("%w: channel event requires a channel id", errspkg.ErrInvalidArgument)
	}
	return m.publishOn(evt, m.topicFor(evt, evt.Data.ChannelID))
}

// publishRequest subscribes to the response pattern constrained by the
// request's correlation token before the request goes out, so responses
// cannot slip past the subscription. The returned stream stays open for any
// number of responses until the caller cancels.
func (m *CommunicationManager) publishRequest(evt events.Event, filter string) (<-chan events.Event, func(), error) {
	token := evt.CorrelationToken()
	if token == "" {
		return nil, nil, fmt.Errorf("%w: %v", errspkg.ErrInvalidArgument, errspkg.ErrTokenRequired)
	}
	respType := events.ResponseType(evt.EventType())
	if respType == "" {
		return nil, nil, fmt.Errorf("%w: %s is not a two-way request", errspkg.ErrInvalidArgument, evt.EventType())
	}

	in, cancel, err := m.subscribe(topics.Pattern(respType, "", token))
	if err != nil {
		return nil, nil, err
	}
	if err := m.publishOn(evt, m.topicFor(evt, filter)); err != nil {
		cancel()
		return nil, nil, err
	}
	return in, cancel, nil
}

// PublishDiscover publishes a Discover request and returns the live stream
// of Resolve responses correlated to it. Zero responses is the normal "no
// match" outcome, not an error.
func (m *CommunicationManager) PublishDiscover(evt *events.DiscoverEvent) (<-chan *events.ResolveEvent, func(), error) {
	if evt == nil {
		return nil, nil, fmt.Errorf("%w: discover event required", errspkg.ErrInvalidArgument)
	}
	d := evt.Data
	if d.ExternalID == "" && d.ObjectID == nil && len(d.ObjectTypes) == 0 && len(d.CoreTypes) == 0 {
		return nil, nil, fmt.Errorf("%w: discover requires at least one constraint", errspkg.ErrInvalidArgument)
	}
	in, cancel, err := m.publishRequest(evt, "")
	if err != nil {
		return nil, nil, err
	}
	return typedEvents[*events.ResolveEvent](m, in), cancel, nil
}

// PublishQuery publishes a Query request and returns the live stream of
// Retrieve responses correlated to it.
func (m *CommunicationManager) PublishQuery(evt *events.QueryEvent) (<-chan *events.RetrieveEvent, func(), error) {
	if evt == nil {
		return nil, nil, fmt.Errorf("%w: query event required", errspkg.ErrInvalidArgument)
	}
	q := evt.Data
	if len(q.ObjectTypes) == 0 && len(q.CoreTypes) == 0 && len(q.ObjectFilter) == 0 {
		return nil, nil, fmt.Errorf("%w: query requires at least one constraint", errspkg.ErrInvalidArgument)
	}
	in, cancel, err := m.publishRequest(evt, "")
	if err != nil {
		return nil, nil, err
	}
	return typedEvents[*events.RetrieveEvent](m, in), cancel, nil
}

// PublishUpdate publishes an Update request and returns the live stream of
// Complete responses correlated to it.
func (m *CommunicationManager) PublishUpdate(evt *events.UpdateEvent) (<-chan *events.CompleteEvent, func(), error) {
	if evt == nil {
		return nil, nil, fmt.Errorf("%w: update event required", errspkg.ErrInvalidArgument)
	}
	if evt.Data.ObjectID == uuid.Nil {
		return nil, nil, fmt.Errorf("%w: update requires an object id", errspkg.ErrInvalidArgument)
	}
	in, cancel, err := m.publishRequest(evt, "")
	if err != nil {
		return nil, nil, err
	}
	return typedEvents[*events.CompleteEvent](m, in), cancel, nil
}

// PublishCall publishes a Call request and returns the live stream of
// Return responses correlated to it. The call's operation name acts as the
// routing filter so observers can subscribe per operation.
func (m *CommunicationManager) PublishCall(evt *events.CallEvent) (<-chan *events.ReturnEvent, func(), error) {
	if evt == nil || evt.Data.Operation == "" {
		return nil, nil, fmt.Errorf("%w: call requires an operation name", errspkg.ErrInvalidArgument)
	}
	in, cancel, err := m.publishRequest(evt, evt.Data.Operation)
	if err != nil {
		return nil, nil, err
	}
	return typedEvents[*events.ReturnEvent](m, in), cancel, nil
}

// publishResponse publishes a response envelope reusing the correlation
// token of the request it answers.
func (m *CommunicationManager) publishResponse(evt events.Event, token string) error {
	if token == "" {
		return fmt.Errorf("%w: %v", errspkg.ErrInvalidArgument, errspkg.ErrTokenRequired)
	}
	tpc := topics.Topic{
		Event:            evt.EventType(),
		AssociatedUserID: m.cfg.Common.AssociatedUserID,
		SourceObjectID:   evt.SourceID(),
		CorrelationToken: token,
	}
	return m.publishOn(evt, tpc)
}
