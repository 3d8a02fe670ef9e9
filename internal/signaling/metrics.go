package signaling

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the hub's instrumentation. All counters are maintained by
// the Run loop, so no additional synchronization is needed beyond what the
// prometheus types provide.
type Metrics struct {
	RoomsActive        prometheus.Gauge
	ParticipantsActive prometheus.Gauge
	JoinsTotal         prometheus.Counter
	RelaysTotal        prometheus.Counter
	RelaysDropped      prometheus.Counter
}

// NewMetrics registers the hub metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RoomsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "furever",
			Subsystem: "signaling",
			Name:      "rooms_active",
			Help:      "Number of rooms with at least one participant.",
		}),
		ParticipantsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "furever",
			Subsystem: "signaling",
			Name:      "participants_active",
			Help:      "Number of participants currently joined to a room.",
		}),
		JoinsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "furever",
			Subsystem: "signaling",
			Name:      "joins_total",
			Help:      "Total room joins processed.",
		}),
		RelaysTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "furever",
			Subsystem: "signaling",
			Name:      "relays_total",
			Help:      "Signal envelopes relayed to at least one member.",
		}),
		RelaysDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "furever",
			Subsystem: "signaling",
			Name:      "relays_dropped_total",
			Help:      "Signal envelopes dropped because the room had no other members.",
		}),
	}
}
