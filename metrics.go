package winfilter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records filter applications. A nil *Metrics records nothing.
type Metrics struct {
	FiltersApplied *prometheus.CounterVec
	PixelsProduced *prometheus.CounterVec
	EmptyOutputs   *prometheus.CounterVec
	ApplyDuration  *prometheus.HistogramVec
}

// NewMetrics creates the filter metrics and registers them with reg.
// If reg is nil the metrics are created but not registered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		FiltersApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "winfilter",
				Subsystem: "filter",
				Name:      "applied_total",
				Help:      "Total number of filter applications",
			},
			[]string{"filter"},
		),
		PixelsProduced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "winfilter",
				Subsystem: "filter",
				Name:      "pixels_total",
				Help:      "Total number of output pixels computed",
			},
			[]string{"filter"},
		),
		EmptyOutputs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "winfilter",
				Subsystem: "filter",
				Name:      "empty_outputs_total",
				Help:      "Filter applications that produced an empty image",
			},
			[]string{"filter"},
		),
		ApplyDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "winfilter",
				Subsystem: "filter",
				Name:      "apply_duration_seconds",
				Help:      "Time spent applying a filter in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"filter"},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.FiltersApplied, m.PixelsProduced, m.EmptyOutputs, m.ApplyDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(filter string, pixels int, d time.Duration) {
	if m == nil {
		return
	}
	m.FiltersApplied.WithLabelValues(filter).Inc()
	m.PixelsProduced.WithLabelValues(filter).Add(float64(pixels))
	if pixels == 0 {
		m.EmptyOutputs.WithLabelValues(filter).Inc()
	}
	m.ApplyDuration.WithLabelValues(filter).Observe(d.Seconds())
}
