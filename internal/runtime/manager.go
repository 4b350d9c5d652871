package runtime

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	configpkg "github.com/coatyio/coaty-go/internal/runtime/config"
	errspkg "github.com/coatyio/coaty-go/internal/runtime/errors"
	"github.com/coatyio/coaty-go/internal/runtime/events"
	loggingpkg "github.com/coatyio/coaty-go/internal/runtime/logging"
	metricspkg "github.com/coatyio/coaty-go/internal/runtime/metrics"
	"github.com/coatyio/coaty-go/internal/runtime/objects"
	transportpkg "github.com/coatyio/coaty-go/transport"
)

// ManagerDependencies holds optional collaborators for a communication
// manager. Zero values select the defaults.
type ManagerDependencies struct {
	// TransportRegistry resolves the configured transport name. Nil uses
	// transport.DefaultRegistry.
	TransportRegistry *transportpkg.Registry

	// MetricsRegisterer receives the communication counters. Nil uses a
	// private registry.
	MetricsRegisterer prometheus.Registerer
}

// CommunicationManager turns typed event envelopes into publish and
// subscribe actions on the configured transport, correlates two-way
// request/response pairs by token, and drives the operating-state machine.
//
// The manager exclusively owns the transport handle, the agent Identity and
// the deadvertise tracking set.
type CommunicationManager struct {
	cfg      *configpkg.Configuration
	logger   loggingpkg.ServiceLogger
	family   *objects.Registry
	factory  *events.Factory
	identity *objects.Identity
	metrics  *metricspkg.CommunicationMetrics

	transportRegistry *transportpkg.Registry

	mu      sync.Mutex
	state   OperatingState
	tp      transportpkg.Transport
	rootCtx context.Context
	cancel  context.CancelFunc
	subs    map[string]*patternSub

	stateMu       sync.Mutex
	stateHandlers map[int]func(OperatingState)
	stateChans    map[int]chan OperatingState
	nextStateID   int

	trackMu sync.Mutex
	tracked map[uuid.UUID]struct{}
}

// NewCommunicationManager creates a manager for the given configuration and
// application object family. The agent Identity is created here, once per
// manager.
func NewCommunicationManager(
	cfg *configpkg.Configuration,
	family *objects.Registry,
	log loggingpkg.ServiceLogger,
	deps ManagerDependencies,
) (*CommunicationManager, error) {
	if cfg == nil {
		return nil, errspkg.ErrConfigRequired
	}
	if log == nil {
		return nil, errspkg.ErrLoggerRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry := deps.TransportRegistry
	if registry == nil {
		registry = transportpkg.DefaultRegistry
	}

	identity := objects.NewIdentity(cfg.AgentName())

	m := &CommunicationManager{
		cfg:               cfg,
		logger:            log.With(loggingpkg.LogFields{"component": "communication-manager"}),
		family:            family,
		factory:           events.NewFactory(identity),
		identity:          identity,
		metrics:           metricspkg.New(deps.MetricsRegisterer),
		transportRegistry: registry,
		state:             StateOffline,
		subs:              make(map[string]*patternSub),
		stateHandlers:     make(map[int]func(OperatingState)),
		stateChans:        make(map[int]chan OperatingState),
		tracked:           make(map[uuid.UUID]struct{}),
	}
	return m, nil
}

// Identity returns the agent's identity object.
func (m *CommunicationManager) Identity() *objects.Identity {
	return m.identity
}

// EventFactory returns the factory bound to this manager's identity.
func (m *CommunicationManager) EventFactory() *events.Factory {
	return m.factory
}

// ObjectFamily returns the application object family used for decoding.
func (m *CommunicationManager) ObjectFamily() *objects.Registry {
	return m.family
}

// State returns the current operating state.
func (m *CommunicationManager) State() OperatingState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start connects the transport and moves the state machine from offline (or
// stopped) through starting to started. On failure the manager reports the
// error and stays offline.
func (m *CommunicationManager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateOffline && m.state != StateStopped {
		m.mu.Unlock()
		return fmt.Errorf("%w: state is %s", errspkg.ErrAlreadyStarted, m.state)
	}
	m.state = StateStarting
	m.mu.Unlock()
	m.notifyState(StateStarting)

	wmLogger := loggingpkg.NewWatermillAdapter(m.logger)
	tp, err := m.transportRegistry.Build(ctx, m.cfg, wmLogger)
	if err != nil {
		m.mu.Lock()
		m.state = StateOffline
		pending := m.subs
		m.subs = make(map[string]*patternSub)
		m.mu.Unlock()
		for _, ps := range pending {
			ps.closeAll()
		}
		m.notifyState(StateOffline)
		return fmt.Errorf("starting transport %q: %w", m.cfg.GetTransportName(), err)
	}

	rootCtx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	m.tp = tp
	m.rootCtx = rootCtx
	m.cancel = cancel
	m.state = StateStarted
	// Subscriptions requested during the starting hooks were deferred;
	// open them on the transport now.
	for pattern, ps := range m.subs {
		if ps.cancel != nil {
			continue
		}
		if err := m.activateLocked(ps); err != nil {
			m.logger.Error("Failed to activate deferred subscription", err,
				loggingpkg.LogFields{"pattern": pattern})
			delete(m.subs, pattern)
			ps.closeAll()
		}
	}
	m.mu.Unlock()
	m.notifyState(StateStarted)

	m.logger.Info("Communication manager started", loggingpkg.LogFields{
		"transport": m.cfg.GetTransportName(),
		"identity":  m.identity.ObjectID.String(),
	})

	if m.cfg.Communication.ShouldAdvertiseIdentity {
		if err := m.PublishAdvertise(m.factory.Advertise(m.identity)); err != nil {
			m.logger.Error("Failed to advertise identity", err, nil)
		}
	}
	return nil
}

// Stop deadvertises all tracked objects, tears down the transport and moves
// the state machine through stopping to stopped. Held subscriptions become
// inactive and must be re-established after the next Start. Stop on a
// manager that is not started is a no-op.
func (m *CommunicationManager) Stop() error {
	m.mu.Lock()
	if m.state != StateStarted {
		m.mu.Unlock()
		return nil
	}
	m.state = StateStopping
	m.mu.Unlock()
	m.notifyState(StateStopping)

	if ids := m.trackedIDs(); len(ids) > 0 {
		if err := m.PublishDeadvertise(m.factory.Deadvertise(ids...)); err != nil {
			m.logger.Error("Failed to deadvertise tracked objects", err, nil)
		}
	}

	m.mu.Lock()
	cancel := m.cancel
	tp := m.tp
	m.cancel = nil
	m.rootCtx = nil
	m.tp = transportpkg.Transport{}
	m.subs = make(map[string]*patternSub)
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	var closeErr error
	if tp.Publisher != nil || tp.Subscriber != nil {
		closeErr = tp.Close()
	}

	m.trackMu.Lock()
	m.tracked = make(map[uuid.UUID]struct{})
	m.trackMu.Unlock()

	m.mu.Lock()
	m.state = StateStopped
	m.mu.Unlock()
	m.notifyState(StateStopped)

	m.logger.Info("Communication manager stopped", nil)
	return closeErr
}

// RegisterStateHandler registers a function invoked synchronously on every
// state transition, in registration order. The returned function removes
// the handler and is idempotent.
func (m *CommunicationManager) RegisterStateHandler(fn func(OperatingState)) func() {
	m.stateMu.Lock()
	id := m.nextStateID
	m.nextStateID++
	m.stateHandlers[id] = fn
	m.stateMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.stateMu.Lock()
			delete(m.stateHandlers, id)
			m.stateMu.Unlock()
		})
	}
}

// ObserveOperatingState returns a channel receiving every state transition
// from now on, plus a cancel function releasing the observer. A slow
// observer that falls more than a few transitions behind misses the oldest
// ones.
func (m *CommunicationManager) ObserveOperatingState() (<-chan OperatingState, func()) {
	ch := make(chan OperatingState, 16)

	m.stateMu.Lock()
	id := m.nextStateID
	m.nextStateID++
	m.stateChans[id] = ch
	m.stateMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.stateMu.Lock()
			delete(m.stateChans, id)
			m.stateMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (m *CommunicationManager) notifyState(s OperatingState) {
	m.stateMu.Lock()
	handlerIDs := make([]int, 0, len(m.stateHandlers))
	for id := range m.stateHandlers {
		handlerIDs = append(handlerIDs, id)
	}
	sort.Ints(handlerIDs)
	handlers := make([]func(OperatingState), 0, len(handlerIDs))
	for _, id := range handlerIDs {
		handlers = append(handlers, m.stateHandlers[id])
	}
	chans := make([]chan OperatingState, 0, len(m.stateChans))
	for _, ch := range m.stateChans {
		chans = append(chans, ch)
	}
	m.stateMu.Unlock()

	for _, fn := range handlers {
		fn(s)
	}
	for _, ch := range chans {
		select {
		case ch <- s:
		default:
			m.logger.Debug("Dropping state notification for slow observer",
				loggingpkg.LogFields{"state": s.String()})
		}
	}
}

func (m *CommunicationManager) trackedIDs() []uuid.UUID {
	m.trackMu.Lock()
	defer m.trackMu.Unlock()
	ids := make([]uuid.UUID, 0, len(m.tracked))
	for id := range m.tracked {
		ids = append(ids, id)
	}
	return ids
}

// TrackedObjectIDs returns the ids of every Component or Device object this
// agent has advertised and not yet deadvertised.
func (m *CommunicationManager) TrackedObjectIDs() []uuid.UUID {
	return m.trackedIDs()
}
