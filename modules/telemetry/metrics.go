package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks room and message activity. Counters are fed from the audit
// events on the bus, so they reflect what the coordinator actually applied.
type Metrics struct {
	RoomsCreated prometheus.Counter
	RoomsOpen    prometheus.Gauge
	Joins        prometheus.Counter
	Leaves       prometheus.Counter
	Messages     prometheus.Counter
}

// NewMetrics registers the collectors with the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		RoomsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veilchat_rooms_created_total",
			Help: "Total number of rooms created.",
		}),
		RoomsOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "veilchat_rooms_open",
			Help: "Number of rooms currently open.",
		}),
		Joins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veilchat_room_joins_total",
			Help: "Total number of room joins.",
		}),
		Leaves: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veilchat_room_leaves_total",
			Help: "Total number of room leaves, including disconnects.",
		}),
		Messages: promauto.NewCounter(prometheus.CounterOpts{
			Name: "veilchat_messages_total",
			Help: "Total number of messages accepted into room logs.",
		}),
	}
}
