package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	configpkg "github.com/coatyio/coaty-go/internal/runtime/config"
	errspkg "github.com/coatyio/coaty-go/internal/runtime/errors"
	"github.com/coatyio/coaty-go/internal/runtime/events"
	loggingpkg "github.com/coatyio/coaty-go/internal/runtime/logging"
	"github.com/coatyio/coaty-go/internal/runtime/objects"
)

// Container is the dependency-injection root of an agent. It owns the
// Runtime, the CommunicationManager and the controller registry, and drives
// controller lifecycle hooks off the manager's operating-state machine.
type Container struct {
	runtime *Runtime
	manager *CommunicationManager

	queue *opQueue

	mu          sync.RWMutex
	controllers map[string]Controller
	order       []string
	isShutdown  bool

	removeStateHandler func()
}

// Resolve constructs a complete container: one Runtime, one
// CommunicationManager, one event factory, then every configured controller
// by name via constructor injection. Controllers are constructed in
// lexical name order; each receives OnInit immediately and
// OnContainerResolved once all initial controllers exist. When auto-start
// is configured the communication manager is started as the final step.
func Resolve(
	components Components,
	cfg *configpkg.Configuration,
	family *objects.Registry,
	log loggingpkg.ServiceLogger,
	deps ManagerDependencies,
) (*Container, error) {
	if cfg == nil {
		return nil, errspkg.ErrConfigRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = loggingpkg.NewSlogServiceLogger(slog.Default())
	}

	manager, err := NewCommunicationManager(cfg, family, log, deps)
	if err != nil {
		return nil, err
	}

	c := &Container{
		runtime:     NewRuntime(cfg, family, log),
		manager:     manager,
		queue:       newOpQueue(),
		controllers: make(map[string]Controller),
	}

	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		factory := components[name]
		if factory == nil {
			return nil, fmt.Errorf("%w: %v (%q)", errspkg.ErrInvalidConfiguration, errspkg.ErrControllerRequired, name)
		}
		ctrl := factory(c.runtime, cfg.ControllerOptionsFor(name), manager)
		ctrl.OnInit()
		c.controllers[name] = ctrl
		c.order = append(c.order, name)
	}

	for _, name := range c.order {
		c.controllers[name].OnContainerResolved(c)
	}

	c.removeStateHandler = manager.RegisterStateHandler(c.dispatchState)

	if cfg.Communication.ShouldAutoStart {
		if err := manager.Start(context.Background()); err != nil {
			c.Shutdown()
			return nil, err
		}
	}
	return c, nil
}

// dispatchState fans out starting/stopping transitions to every controller
// registered at the time of the transition. Other states carry no hook.
func (c *Container) dispatchState(state OperatingState) {
	if state != StateStarting && state != StateStopping {
		return
	}

	c.mu.RLock()
	ctrls := make([]Controller, 0, len(c.order))
	for _, name := range c.order {
		ctrls = append(ctrls, c.controllers[name])
	}
	c.mu.RUnlock()

	for _, ctrl := range ctrls {
		switch state {
		case StateStarting:
			ctrl.OnCommunicationManagerStarting()
		case StateStopping:
			ctrl.OnCommunicationManagerStopping()
		}
	}
}

// Runtime returns the container's runtime.
func (c *Container) Runtime() *Runtime { return c.runtime }

// CommunicationManager returns the shared communication manager.
func (c *Container) CommunicationManager() *CommunicationManager { return c.manager }

// EventFactory returns the event factory bound to this agent's identity.
func (c *Container) EventFactory() *events.Factory { return c.manager.EventFactory() }

// Identity returns the agent's identity object.
func (c *Container) Identity() *objects.Identity { return c.manager.Identity() }

// RegisterController adds a controller to a resolved container. The
// operation is serialized through the container's queue, so concurrent
// registrations cannot race on the uniqueness check. Registering a name
// that already exists fails with ErrInvalidConfiguration and leaves the
// existing controller intact. On a container that has been shut down the
// call is a silent no-op returning a nil controller.
func (c *Container) RegisterController(name string, factory ControllerFactory, opts configpkg.ControllerOptions) (Controller, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: controller name required", errspkg.ErrInvalidConfiguration)
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: %v", errspkg.ErrInvalidConfiguration, errspkg.ErrControllerRequired)
	}

	var (
		ctrl   Controller
		regErr error
	)
	err := c.queue.do(func() {
		c.mu.Lock()
		if c.isShutdown {
			c.mu.Unlock()
			return
		}
		if _, exists := c.controllers[name]; exists {
			c.mu.Unlock()
			regErr = fmt.Errorf("%w: controller %q is already registered", errspkg.ErrInvalidConfiguration, name)
			return
		}
		c.mu.Unlock()

		newCtrl := factory(c.runtime, opts, c.manager)
		newCtrl.OnInit()

		c.mu.Lock()
		c.controllers[name] = newCtrl
		c.order = append(c.order, name)
		c.mu.Unlock()

		newCtrl.OnContainerResolved(c)
		ctrl = newCtrl
	})
	if err != nil {
		// Queue already closed: the container was shut down.
		return nil, nil
	}
	return ctrl, regErr
}

// GetController returns the controller registered under the given name, or
// nil if there is none.
func (c *Container) GetController(name string) Controller {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.controllers[name]
}

// Shutdown stops the communication manager first, so the stopping hooks
// fire while all controllers are still alive, then disposes every
// controller and clears the registry. A second call is a no-op.
func (c *Container) Shutdown() {
	err := c.queue.do(func() {
		c.mu.Lock()
		if c.isShutdown {
			c.mu.Unlock()
			return
		}
		c.isShutdown = true
		order := c.order
		ctrls := c.controllers
		c.mu.Unlock()

		if err := c.manager.Stop(); err != nil {
			c.runtime.Logger().Error("Error stopping communication manager", err, nil)
		}
		if c.removeStateHandler != nil {
			c.removeStateHandler()
		}

		for _, name := range order {
			ctrls[name].OnDispose()
		}

		c.mu.Lock()
		c.controllers = make(map[string]Controller)
		c.order = nil
		c.mu.Unlock()
	})
	if err != nil {
		return
	}
	c.queue.close()
}
