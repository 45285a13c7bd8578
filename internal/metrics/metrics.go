// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PendingIconLoads = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "photomap_pending_icon_loads",
		Help: "Icon decodes currently in flight",
	})
	IconDecodeFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "photomap_icon_decode_failures_total",
		Help: "Marker thumbnails that could not be decoded; the marker is dropped",
	})
	MarkersAttached = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "photomap_markers_attached",
		Help: "Markers currently attached to the map",
	})
	ArrowsAttached = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "photomap_arrows_attached",
		Help: "Arrow overlays currently attached to the map",
	})
	MetadataFetchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "photomap_metadata_fetches_total",
		Help: "Metadata requests issued for popups",
	})
	MetadataFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "photomap_metadata_failures_total",
		Help: "Metadata requests that returned an error",
	})
	MetadataDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "photomap_metadata_duration_ms",
		Help:    "Metadata request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	StaleCompletionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "photomap_stale_completions_total",
		Help: "Async completions ignored because their marker or image is no longer current",
	}, []string{"kind"})
	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "photomap_notifications_total",
		Help: "Host notifications by sink and kind",
	}, []string{"sink", "kind"})
	BridgeCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "photomap_bridge_calls_total",
		Help: "Host bridge calls by function and status",
	}, []string{"fn", "status"})
)

func init() {
	prometheus.MustRegister(PendingIconLoads)
	prometheus.MustRegister(IconDecodeFailuresTotal)
	prometheus.MustRegister(MarkersAttached)
	prometheus.MustRegister(ArrowsAttached)
	prometheus.MustRegister(MetadataFetchesTotal)
	prometheus.MustRegister(MetadataFailuresTotal)
	prometheus.MustRegister(MetadataDurationMs)
	prometheus.MustRegister(StaleCompletionsTotal)
	prometheus.MustRegister(NotificationsTotal)
	prometheus.MustRegister(BridgeCallsTotal)
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
