package egress

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EgressFailures tracks transport failures recorded against each egress path.
	EgressFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rbx_egress_failures_total",
			Help: "Total number of transport failures recorded per egress path",
		},
		[]string{"egress"}, // redacted descriptor or "direct"
	)

	// EgressRotations tracks failover rotations.
	EgressRotations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rbx_egress_rotations_total",
			Help: "Total number of egress rotations after a failed attempt",
		},
	)

	// EgressCursor reports the index of the egress path the next request uses.
	EgressCursor = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rbx_egress_cursor",
			Help: "Index of the egress path used by the next request",
		},
	)

	// EgressDescriptors reports the configured pool size.
	EgressDescriptors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rbx_egress_descriptors",
			Help: "Number of configured egress paths (0 means direct connection)",
		},
	)
)
