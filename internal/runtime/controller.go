package runtime

import (
	configpkg "github.com/coatyio/coaty-go/internal/runtime/config"
)

// Controller is a user business-logic unit managed by a container. The
// container drives the lifecycle hooks; all hooks have no-op defaults on
// ControllerBase, so controllers override only what they need.
type Controller interface {
	// OnInit is called once directly after construction.
	OnInit()

	// OnContainerResolved is called once all initially configured
	// controllers exist and the container is fully assembled.
	OnContainerResolved(container *Container)

	// OnCommunicationManagerStarting is called on every transition of the
	// communication manager into the starting state. Observations
	// established from this hook are deferred and become active as soon as
	// the transport is up.
	OnCommunicationManagerStarting()

	// OnCommunicationManagerStopping is called on every transition of the
	// communication manager into the stopping state.
	OnCommunicationManagerStopping()

	// OnDispose is called once during container shutdown. Communication
	// has already been stopped at this point.
	OnDispose()
}

// ControllerFactory constructs a controller with its dependencies injected:
// the container runtime, the controller's configured options and the shared
// communication manager.
type ControllerFactory func(rt *Runtime, opts configpkg.ControllerOptions, com *CommunicationManager) Controller

// Components maps controller names to their factories for container
// resolution. Names must be unique within a container.
type Components map[string]ControllerFactory

// ControllerBase provides no-op implementations of every lifecycle hook.
// Embed it in concrete controllers.
type ControllerBase struct{}

func (ControllerBase) OnInit()                         {}
func (ControllerBase) OnContainerResolved(*Container)  {}
func (ControllerBase) OnCommunicationManagerStarting() {}
func (ControllerBase) OnCommunicationManagerStopping() {}
func (ControllerBase) OnDispose()                      {}
