package transport

// Capabilities describes the features of a transport backend. The
// communication layer works identically on all backends; capabilities exist
// for runtime introspection and diagnostics.
type Capabilities struct {
	// Name is the registry name of the backend.
	Name string

	// NativeWildcards indicates the broker matches subscription wildcards
	// itself. When false the backend filters client-side.
	NativeWildcards bool

	// SupportsOrdering indicates per-topic delivery order is preserved.
	SupportsOrdering bool

	// Brokered indicates messages cross a network broker. False for the
	// in-process channel backend.
	Brokered bool
}

// ChannelCapabilities describes the in-memory channel backend.
var ChannelCapabilities = Capabilities{
	Name:             "channel",
	NativeWildcards:  false,
	SupportsOrdering: true,
	Brokered:         false,
}

// NATSCapabilities describes the NATS backend.
var NATSCapabilities = Capabilities{
	Name:             "nats",
	NativeWildcards:  true,
	SupportsOrdering: true,
	Brokered:         true,
}

// AMQPCapabilities describes the AMQP topic-exchange backend.
var AMQPCapabilities = Capabilities{
	Name:             "amqp",
	NativeWildcards:  true,
	SupportsOrdering: true,
	Brokered:         true,
}
