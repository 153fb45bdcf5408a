package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every collector exported by the proximity service.
type Metrics struct {
	HTTPRequests     *prometheus.CounterVec
	HTTPSeconds      *prometheus.HistogramVec
	SearchResults    prometheus.Histogram
	SearchRejected   *prometheus.CounterVec
	InitTasks        *prometheus.CounterVec
	InitTaskSeconds  *prometheus.HistogramVec
	ActiveInitTasks  prometheus.Gauge
	GeocoderSeconds  *prometheus.HistogramVec
	GeocoderErrors   prometheus.Counter
	BusinessesStored *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "proximity_http_requests_total",
			Help: "Total number of handled HTTP requests.",
		}, []string{"route", "code"}),
		HTTPSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "proximity_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		SearchResults: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "proximity_search_results",
			Help:    "Number of businesses returned by a proximity search.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		SearchRejected: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "proximity_search_rejected_total",
			Help: "Total number of proximity searches rejected before reaching storage.",
		}, []string{"reason"}),
		InitTasks: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "proximity_initializer_tasks_total",
			Help: "Total number of finished startup initializer tasks.",
		}, []string{"task", "status"}),
		InitTaskSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "proximity_initializer_task_duration_seconds",
			Help:    "Duration of startup initializer tasks.",
			Buckets: prometheus.DefBuckets,
		}, []string{"task"}),
		ActiveInitTasks: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "proximity_initializer_active_tasks",
			Help: "Current number of initializer tasks holding an admission slot.",
		}),
		GeocoderSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "proximity_geocoder_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		GeocoderErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "proximity_geocoder_errors_total",
			Help: "Total number of errors received from the geocoding provider API.",
		}),
		BusinessesStored: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "proximity_business_writes_total",
			Help: "Total number of business writes by operation.",
		}, []string{"op"}),
	}
}
