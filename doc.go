// Package coaty is a client-side communication layer for building
// decentralized applications from collaborating agents. Agents discover
// each other and exchange typed domain objects over a generic pub/sub
// transport using a small fixed vocabulary of event patterns; all protocol
// semantics live in the clients, the broker stays dumb.
//
// An agent is assembled by resolving a Container from a Configuration, a
// set of controller factories, and an application object family. The
// container constructs the Runtime, the CommunicationManager and every
// controller via constructor injection, drives controller lifecycle hooks
// off the manager's operating-state machine, and optionally auto-starts
// communication.
//
// # Event patterns
//
// One-way events broadcast without an expected reply:
//   - Advertise: announce a domain object, routed by objectType and coreType
//   - Deadvertise: withdraw objects by id
//   - Channel: deliver objects on an application-chosen channel id
//
// Two-way events travel as request/response pairs correlated by a token
// allocated at construction time:
//   - Discover/Resolve: find objects by external id, object id or type
//   - Query/Retrieve: query objects by type and filter
//   - Update/Complete: request a partial object update and receive the result
//   - Call/Return: invoke a named remote operation
//
// Publishing a two-way request returns a live stream of responses that
// stays open until cancelled, so any number of agents may answer one
// request.
//
// # Transports
//
// Transports are pluggable via the transport registry and selected by
// configuration:
//   - channel: in-memory Go channels for testing and single-process agents
//   - nats: NATS Core subjects with native wildcard matching
//   - amqp: AMQP 0.9.1 topic exchanges
//
// Import the backends you need for side effect:
//
//	import _ "github.com/coatyio/coaty-go/transport/nats"
//
// # Object model
//
// Domain objects embed CoatyObject for the shared attributes and register a
// factory for their objectType discriminator with an ObjectFamily. Decoding
// resolves concrete shapes dynamically through the family, falling back to
// the built-in shapes, so applications can introduce new wire-compatible
// object types without touching the framework.
package coaty
