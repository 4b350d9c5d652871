package runtime

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"

	errspkg "github.com/coatyio/coaty-go/internal/runtime/errors"
	"github.com/coatyio/coaty-go/internal/runtime/events"
	loggingpkg "github.com/coatyio/coaty-go/internal/runtime/logging"
	"github.com/coatyio/coaty-go/internal/runtime/topics"
	transportpkg "github.com/coatyio/coaty-go/transport"
)

// consumerBuffer bounds the per-consumer event queue. A consumer that falls
// this far behind loses the oldest pending events rather than stalling the
// shared dispatch loop.
const consumerBuffer = 256

// patternSub is one shared transport subscription on an exact pattern,
// fanned out to any number of consumers. The transport subscription is
// released when the last consumer cancels. cancel stays nil while the
// subscription is deferred, waiting for the transport to come up.
type patternSub struct {
	pattern string
	cancel  context.CancelFunc

	mu        sync.Mutex
	consumers map[int]chan events.Event
	nextID    int
	closed    bool
}

func (ps *patternSub) addConsumer() (int, chan events.Event) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	id := ps.nextID
	ps.nextID++
	ch := make(chan events.Event, consumerBuffer)
	ps.consumers[id] = ch
	return id, ch
}

// removeConsumer detaches one consumer and reports whether the subscription
// is now unused.
func (ps *patternSub) removeConsumer(id int) bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ch, ok := ps.consumers[id]; ok {
		delete(ps.consumers, id)
		close(ch)
	}
	return len(ps.consumers) == 0
}

func (ps *patternSub) broadcast(evt events.Event) (dropped bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for _, ch := range ps.consumers {
		select {
		case ch <- evt:
		default:
			dropped = true
		}
	}
	return dropped
}

func (ps *patternSub) closeAll() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.closed {
		return
	}
	ps.closed = true
	for id, ch := range ps.consumers {
		delete(ps.consumers, id)
		close(ch)
	}
}

// subscribe attaches a consumer to the shared subscription for the given
// pattern, opening the transport subscription on first use. A subscription
// requested while the manager is starting is deferred and activated as soon
// as the transport is up, so controllers can establish observations from
// their starting hook. The returned cancel function is idempotent; the last
// cancel unsubscribes from the transport.
func (m *CommunicationManager) subscribe(pattern string) (<-chan events.Event, func(), error) {
	m.mu.Lock()
	if m.state != StateStarted && m.state != StateStarting {
		m.mu.Unlock()
		return nil, nil, errspkg.ErrNotStarted
	}

	ps, ok := m.subs[pattern]
	if !ok {
		ps = &patternSub{
			pattern:   pattern,
			consumers: make(map[int]chan events.Event),
		}
		if m.state == StateStarted {
			if err := m.activateLocked(ps); err != nil {
				m.mu.Unlock()
				return nil, nil, err
			}
		}
		m.subs[pattern] = ps
	}
	id, ch := ps.addConsumer()
	m.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			if ps.removeConsumer(id) {
				m.mu.Lock()
				if m.subs[pattern] == ps {
					delete(m.subs, pattern)
				}
				cancelSub := ps.cancel
				m.mu.Unlock()
				if cancelSub != nil {
					cancelSub()
				}
			}
		})
	}
	return ch, cancel, nil
}

// activateLocked opens the transport subscription for ps and starts its
// dispatch loop. The caller holds m.mu and the manager is started.
func (m *CommunicationManager) activateLocked(ps *patternSub) error {
	subCtx, subCancel := context.WithCancel(m.rootCtx)
	msgs, err := m.tp.Subscriber.Subscribe(subCtx, ps.pattern)
	if err != nil {
		subCancel()
		return err
	}
	ps.cancel = subCancel
	go m.dispatch(ps, msgs)
	return nil
}

// dispatch is the inbound loop for one pattern subscription: decode once,
// fan out to all consumers. A message that cannot be decoded is logged,
// counted and dropped; the subscription itself stays alive.
func (m *CommunicationManager) dispatch(ps *patternSub, msgs <-chan *message.Message) {
	defer ps.closeAll()

	for msg := range msgs {
		topicStr := msg.Metadata.Get(transportpkg.MetadataKeyTopic)
		tpc, err := topics.Decode(topicStr)
		if err != nil {
			m.logger.Error("Dropping message with malformed topic", err,
				loggingpkg.LogFields{"topic": topicStr})
			m.metrics.DecodeErrors.WithLabelValues("unknown").Inc()
			msg.Ack()
			continue
		}

		evt, err := events.Decode(m.family, tpc, msg.Payload)
		if err != nil {
			m.logger.Error("Dropping undecodable payload", err, loggingpkg.LogFields{
				"topic":      topicStr,
				"event_type": string(tpc.Event),
			})
			m.metrics.DecodeErrors.WithLabelValues(string(tpc.Event)).Inc()
			msg.Ack()
			continue
		}

		m.metrics.Received.WithLabelValues(string(tpc.Event)).Inc()
		if ps.broadcast(evt) {
			m.logger.Debug("Dropped event for slow consumer", loggingpkg.LogFields{
				"pattern":    ps.pattern,
				"event_type": string(tpc.Event),
			})
		}
		msg.Ack()
	}
}

// typedEvents converts the untyped event stream of a shared subscription
// into a stream of one concrete envelope type. Events of a different type
// on the same pattern are dropped with a log entry. Sends never block, so a
// consumer that stops draining cannot park the pump goroutine; the overflow
// is dropped like in broadcast.
func typedEvents[T events.Event](m *CommunicationManager, in <-chan events.Event) <-chan T {
	out := make(chan T, consumerBuffer)
	go func() {
		defer close(out)
		for evt := range in {
			typed, ok := evt.(T)
			if !ok {
				m.logger.Debug("Dropping event of unexpected type",
					loggingpkg.LogFields{"event_type": string(evt.EventType())})
				continue
			}
			select {
			case out <- typed:
			default:
				m.logDroppedSlow(evt)
			}
		}
	}()
	return out
}
