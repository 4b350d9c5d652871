// Package config defines the agent configuration consumed by the container
// and the communication manager. Loading configuration from files or the
// environment is up to the application; this package only validates the
// populated struct.
package config

import (
	"fmt"

	"github.com/coatyio/coaty-go/internal/runtime/errors"
)

// Configuration groups all settings for one agent container.
type Configuration struct {
	Common        CommonOptions
	Communication CommunicationOptions

	// Controllers maps controller names to their options. A controller
	// receives its entry at construction time; controllers without an
	// entry receive empty options.
	Controllers map[string]ControllerOptions
}

// CommonOptions holds identity-related settings shared by all components.
type CommonOptions struct {
	// AgentName is the display name of the agent's identity object.
	// Defaults to "coaty-agent" when empty.
	AgentName string

	// AssociatedUserID optionally names the user this agent acts for.
	// When set it is stamped into the associated-user level of every
	// published topic.
	AssociatedUserID string
}

// CommunicationOptions configures the communication manager and its
// transport.
type CommunicationOptions struct {
	// Transport selects the backing pub/sub infrastructure by registry
	// name: "channel", "nats", or "amqp".
	Transport string

	// NATSURL is the NATS server URL, required for the nats transport.
	NATSURL string

	// AMQPURL is the AMQP broker URI, required for the amqp transport.
	AMQPURL string

	// ShouldAutoStart starts the communication manager as the final step
	// of container resolution.
	ShouldAutoStart bool

	// ShouldAdvertiseIdentity advertises the agent's identity object
	// whenever the manager reaches the started state.
	ShouldAdvertiseIdentity bool
}

// ControllerOptions is the free-form options map handed to one controller.
type ControllerOptions map[string]any

// DefaultAgentName is used when CommonOptions.AgentName is empty.
const DefaultAgentName = "coaty-agent"

// Validate checks the configuration for completeness. It is called by the
// container before any component is constructed.
func (c *Configuration) Validate() error {
	if c == nil {
		return errors.ErrConfigRequired
	}
	if c.Communication.Transport == "" {
		return fmt.Errorf("%w: communication transport must be set", errors.ErrInvalidConfiguration)
	}
	switch c.Communication.Transport {
	case "nats":
		if c.Communication.NATSURL == "" {
			return fmt.Errorf("%w: nats transport requires NATSURL", errors.ErrInvalidConfiguration)
		}
	case "amqp":
		if c.Communication.AMQPURL == "" {
			return fmt.Errorf("%w: amqp transport requires AMQPURL", errors.ErrInvalidConfiguration)
		}
	}
	return nil
}

// AgentName returns the configured agent name or the default.
func (c *Configuration) AgentName() string {
	if c.Common.AgentName == "" {
		return DefaultAgentName
	}
	return c.Common.AgentName
}

// ControllerOptionsFor returns the options map for a named controller,
// never nil.
func (c *Configuration) ControllerOptionsFor(name string) ControllerOptions {
	if opts, ok := c.Controllers[name]; ok && opts != nil {
		return opts
	}
	return ControllerOptions{}
}

// Getter methods satisfying the transport.Config interface.

func (c *Configuration) GetTransportName() string { return c.Communication.Transport }
func (c *Configuration) GetNATSURL() string       { return c.Communication.NATSURL }
func (c *Configuration) GetAMQPURL() string       { return c.Communication.AMQPURL }
