// Package metrics defines the Prometheus collectors of the map service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ScaleEstimates  *prometheus.CounterVec
	ScaleDistance   prometheus.Histogram
	ViewChanges     *prometheus.CounterVec
	MarkerMutations *prometheus.CounterVec
	Markers         prometheus.Gauge
	RequestSeconds  *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		ScaleEstimates: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "mapview_scale_estimates_total",
			Help: "Total number of scale estimates served, by output format.",
		}, []string{"format"}),
		ScaleDistance: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "mapview_scale_distance_meters",
			Help:    "Distance selected for the scale indicator.",
			Buckets: []float64{10, 20, 50, 100, 200, 500, 1000, 2000},
		}),
		ViewChanges: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "mapview_view_changes_total",
			Help: "Total number of view state changes, by kind.",
		}, []string{"kind"}),
		MarkerMutations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "mapview_marker_mutations_total",
			Help: "Total number of marker store mutations, by operation.",
		}, []string{"op"}),
		Markers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "mapview_markers",
			Help: "Current number of markers in the store.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mapview_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
}
