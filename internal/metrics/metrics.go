package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RoomsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rooms_created_total",
			Help: "Total rooms created",
		},
	)
	ActiveRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rooms_active",
			Help: "Rooms currently held in memory",
		},
	)
	Intents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intents_total",
			Help: "Client intents processed, by type",
		},
		[]string{"type"},
	)
	Rejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_rejections_total",
			Help: "Intents rejected by validation, by reason code",
		},
		[]string{"code"},
	)
	SnapshotWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_writes_total",
			Help: "Best-effort snapshot writes, by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(RoomsCreated)
	prometheus.MustRegister(ActiveRooms)
	prometheus.MustRegister(Intents)
	prometheus.MustRegister(Rejections)
	prometheus.MustRegister(SnapshotWrites)
}
