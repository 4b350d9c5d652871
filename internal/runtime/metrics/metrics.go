// Package metrics exposes prometheus counters for the communication
// manager's message flow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CommunicationMetrics counts messages crossing the communication manager,
// labeled by protocol event type.
type CommunicationMetrics struct {
	Published    *prometheus.CounterVec
	Received     *prometheus.CounterVec
	DecodeErrors *prometheus.CounterVec
}

// New registers the communication counters against the given registerer. A
// nil registerer gets a private registry so tests never collide on the
// default one.
func New(reg prometheus.Registerer) *CommunicationMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &CommunicationMetrics{
		Published: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coaty",
			Subsystem: "communication",
			Name:      "messages_published_total",
			Help:      "Messages published to the transport, by event type.",
		}, []string{"event_type"}),
		Received: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coaty",
			Subsystem: "communication",
			Name:      "messages_received_total",
			Help:      "Messages received from the transport, by event type.",
		}, []string{"event_type"}),
		DecodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "coaty",
			Subsystem: "communication",
			Name:      "decode_errors_total",
			Help:      "Inbound messages dropped because they could not be decoded.",
		}, []string{"event_type"}),
	}
}
