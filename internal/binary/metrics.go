package binary

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Acquisition outcomes used as the "outcome" label.
const (
	OutcomeCacheHit   = "cache_hit"
	OutcomeDownloaded = "downloaded"
	OutcomeFailed     = "failed"
)

// Metrics holds the acquisition collectors. A nil *Metrics records nothing.
type Metrics struct {
	acquisitions  *prometheus.CounterVec
	downloadBytes *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	cacheClears   prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		acquisitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wdb_acquisitions_total",
				Help: "Driver acquisitions by family and outcome",
			},
			[]string{"family", "outcome"},
		),
		downloadBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wdb_download_bytes_total",
				Help: "Bytes downloaded per driver family",
			},
			[]string{"family"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wdb_acquisition_duration_seconds",
				Help:    "Time spent acquiring a driver",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"family"},
		),
		cacheClears: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "wdb_cache_clears_total",
				Help: "Number of times the driver cache was cleared",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.acquisitions, m.downloadBytes, m.duration, m.cacheClears)
	}
	return m
}

func (m *Metrics) recordAcquisition(family, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.acquisitions.WithLabelValues(family, outcome).Inc()
	m.duration.WithLabelValues(family).Observe(elapsed.Seconds())
}

func (m *Metrics) recordDownload(family string, bytes int64) {
	if m == nil {
		return
	}
	m.downloadBytes.WithLabelValues(family).Add(float64(bytes))
}

func (m *Metrics) recordClear() {
	if m == nil {
		return
	}
	m.cacheClears.Inc()
}
