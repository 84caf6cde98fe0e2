package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion side of the state store
var (
	SwapsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapboard_swaps_applied_total",
		Help: "Swaps accepted into the recent swaps snapshot",
	})

	SwapsDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapboard_swaps_duplicate_total",
		Help: "Swaps dropped because their transaction hash was already seen",
	})

	SnapshotSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swapboard_snapshot_swaps",
		Help: "Number of swaps currently held in memory",
	})
)

// Rendering
var (
	WidgetRenders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapboard_widget_renders_total",
			Help: "Widget fragments rendered, by variant and outcome",
		},
		[]string{"variant", "outcome"},
	)

	WidgetRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swapboard_widget_render_duration_seconds",
			Help:    "Time taken to render a widget fragment",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"variant"},
	)

	AmountMismatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapboard_amount_mismatches_total",
			Help: "Applied swaps whose formatted amount disagrees with raw units and token decimals",
		},
		[]string{"side"},
	)

	FormatErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swapboard_format_errors_total",
		Help: "Amounts that could not be parsed while rendering",
	})
)

// Live updates
var (
	WSSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swapboard_ws_subscribers",
		Help: "Open websocket subscriptions",
	})

	WSBroadcasts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapboard_ws_broadcasts_total",
			Help: "Fragments pushed to websocket subscribers, by variant",
		},
		[]string{"variant"},
	)
)
