package runtime

import (
	"fmt"

	errspkg "github.com/coatyio/coaty-go/internal/runtime/errors"
	"github.com/coatyio/coaty-go/internal/runtime/events"
	loggingpkg "github.com/coatyio/coaty-go/internal/runtime/logging"
	"github.com/coatyio/coaty-go/internal/runtime/objects"
	"github.com/coatyio/coaty-go/internal/runtime/topics"
)

// ObserveAdvertiseWithObjectType returns the live stream of Advertise
// events whose object carries the given objectType. The cancel function
// releases the observer; the transport subscription is dropped when the
// last observer on the same pattern cancels.
func (m *CommunicationManager) ObserveAdvertiseWithObjectType(objectType string) (<-chan *events.AdvertiseEvent, func(), error) {
	if objectType == "" {
		return nil, nil, fmt.Errorf("%w: object type filter required", errspkg.ErrInvalidArgument)
	}
	return m.observeAdvertise(objectType)
}

// ObserveAdvertiseWithCoreType returns the live stream of Advertise events
// whose object carries the given coreType.
func (m *CommunicationManager) ObserveAdvertiseWithCoreType(coreType objects.CoreType) (<-chan *events.AdvertiseEvent, func(), error) {
	if !coreType.IsValid() {
		return nil, nil, fmt.Errorf("%w: unknown core type %q", errspkg.ErrInvalidArgument, coreType)
	}
	return m.observeAdvertise(string(coreType))
}

func (m *CommunicationManager) observeAdvertise(filter string) (<-chan *events.AdvertiseEvent, func(), error) {
	in, cancel, err := m.subscribe(topics.Pattern(topics.EventAdvertise, filter, ""))
	if err != nil {
		return nil, nil, err
	}
	return typedEvents[*events.AdvertiseEvent](m, in), cancel, nil
}

// ObserveDeadvertise returns the live stream of Deadvertise events from any
// agent.
func (m *CommunicationManager) ObserveDeadvertise() (<-chan *events.DeadvertiseEvent, func(), error) {
	in, cancel, err := m.subscribe(topics.Pattern(topics.EventDeadvertise, "", ""))
	if err != nil {
		return nil, nil, err
	}
	return typedEvents[*events.DeadvertiseEvent](m, in), cancel, nil
}

// ObserveChannel returns the live stream of Channel events on the given
// channel id.
func (m *CommunicationManager) ObserveChannel(channelID string) (<-chan *events.ChannelEvent, func(), error) {
	if channelID == "" {
		return nil, nil, fmt.Errorf("%w: channel id required", errspkg.ErrInvalidArgument)
	}
	in, cancel, err := m.subscribe(topics.Pattern(topics.EventChannel, channelID, ""))
	if err != nil {
		return nil, nil, err
	}
	return typedEvents[*events.ChannelEvent](m, in), cancel, nil
}

// DiscoverRequest is an incoming Discover event paired with its bound
// respond function. Resolve publishes a response reusing the request's
// correlation token, with this agent's identity as source.
type DiscoverRequest struct {
	Event   *events.DiscoverEvent
	Resolve func(*events.ResolveEvent) error
}

// ObserveDiscover returns the live stream of incoming Discover requests.
func (m *CommunicationManager) ObserveDiscover() (<-chan DiscoverRequest, func(), error) {
	in, cancel, err := m.subscribe(topics.Pattern(topics.EventDiscover, "", ""))
	if err != nil {
		return nil, nil, err
	}
	out := make(chan DiscoverRequest, consumerBuffer)
	go func() {
		defer close(out)
		for evt := range in {
			req, ok := evt.(*events.DiscoverEvent)
			if !ok || req.CorrelationToken() == "" {
				m.logDroppedRequest(evt)
				continue
			}
			token := req.CorrelationToken()
			request := DiscoverRequest{
				Event: req,
				Resolve: func(resp *events.ResolveEvent) error {
					if resp == nil {
						return fmt.Errorf("%w: resolve event required", errspkg.ErrInvalidArgument)
					}
					return m.publishResponse(resp, token)
				},
			}
			select {
			case out <- request:
			default:
				m.logDroppedSlow(evt)
			}
		}
	}()
	return out, cancel, nil
}

// QueryRequest is an incoming Query event paired with its bound respond
// function.
type QueryRequest struct {
	Event    *events.QueryEvent
	Retrieve func(*events.RetrieveEvent) error
}

// ObserveQuery returns the live stream of incoming Query requests.
func (m *CommunicationManager) ObserveQuery() (<-chan QueryRequest, func(), error) {
	in, cancel, err := m.subscribe(topics.Pattern(topics.EventQuery, "", ""))
	if err != nil {
		return nil, nil, err
	}
	out := make(chan QueryRequest, consumerBuffer)
	go func() {
		defer close(out)
		for evt := range in {
			req, ok := evt.(*events.QueryEvent)
			if !ok || req.CorrelationToken() == "" {
				m.logDroppedRequest(evt)
				continue
			}
			token := req.CorrelationToken()
			request := QueryRequest{
				Event: req,
				Retrieve: func(resp *events.RetrieveEvent) error {
					if resp == nil {
						return fmt.Errorf("%w: retrieve event required", errspkg.ErrInvalidArgument)
					}
					return m.publishResponse(resp, token)
				},
			}
			select {
			case out <- request:
			default:
				m.logDroppedSlow(evt)
			}
		}
	}()
	return out, cancel, nil
}

// UpdateRequest is an incoming Update event paired with its bound respond
// function.
type UpdateRequest struct {
	Event    *events.UpdateEvent
	Complete func(*events.CompleteEvent) error
}

// ObserveUpdate returns the live stream of incoming Update requests.
func (m *CommunicationManager) ObserveUpdate() (<-chan UpdateRequest, func(), error) {
	in, cancel, err := m.subscribe(topics.Pattern(topics.EventUpdate, "", ""))
	if err != nil {
		return nil, nil, err
	}
	out := make(chan UpdateRequest, consumerBuffer)
	go func() {
		defer close(out)
		for evt := range in {
			req, ok := evt.(*events.UpdateEvent)
			if !ok || req.CorrelationToken() == "" {
				m.logDroppedRequest(evt)
				continue
			}
			token := req.CorrelationToken()
			request := UpdateRequest{
				Event: req,
				Complete: func(resp *events.CompleteEvent) error {
					if resp == nil || resp.Data.Object == nil {
						return fmt.Errorf("%w: complete event with object required", errspkg.ErrInvalidArgument)
					}
					return m.publishResponse(resp, token)
				},
			}
			select {
			case out <- request:
			default:
				m.logDroppedSlow(evt)
			}
		}
	}()
	return out, cancel, nil
}

// CallRequest is an incoming Call event paired with its bound respond
// function.
type CallRequest struct {
	Event  *events.CallEvent
	Return func(*events.ReturnEvent) error
}

// ObserveCall returns the live stream of incoming Call requests for the
// given operation name.
func (m *CommunicationManager) ObserveCall(operation string) (<-chan CallRequest, func(), error) {
	if operation == "" {
		return nil, nil, fmt.Errorf("%w: operation name required", errspkg.ErrInvalidArgument)
	}
	in, cancel, err := m.subscribe(topics.Pattern(topics.EventCall, operation, ""))
	if err != nil {
		return nil, nil, err
	}
	out := make(chan CallRequest, consumerBuffer)
	go func() {
		defer close(out)
		for evt := range in {
			req, ok := evt.(*events.CallEvent)
			if !ok || req.CorrelationToken() == "" {
				m.logDroppedRequest(evt)
				continue
			}
			token := req.CorrelationToken()
			request := CallRequest{
				Event: req,
				Return: func(resp *events.ReturnEvent) error {
					if resp == nil {
						return fmt.Errorf("%w: return event required", errspkg.ErrInvalidArgument)
					}
					return m.publishResponse(resp, token)
				},
			}
			select {
			case out <- request:
			default:
				m.logDroppedSlow(evt)
			}
		}
	}()
	return out, cancel, nil
}

func (m *CommunicationManager) logDroppedRequest(evt events.Event) {
	m.logger.Debug("Dropping request without correlation token",
		loggingpkg.LogFields{"event_type": string(evt.EventType())})
}

// logDroppedSlow reports an event discarded because its consumer stopped
// draining its buffered channel.
func (m *CommunicationManager) logDroppedSlow(evt events.Event) {
	m.logger.Debug("Dropping event for slow consumer",
		loggingpkg.LogFields{"event_type": string(evt.EventType())})
}
