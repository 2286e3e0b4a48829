package memrt

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "objbridge"
	metricsSubsystem = "memrt"
)

// metrics tracks heap activity. Collectors are only exported when a
// Registerer is configured.
type metrics struct {
	live     prometheus.Gauge
	allocs   *prometheus.CounterVec
	deallocs *prometheus.CounterVec
	increfs  prometheus.Counter
	decrefs  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "live_objects",
			Help:      "Number of objects currently allocated",
		}),
		allocs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "allocations_total",
				Help:      "Total number of object allocations by type",
			},
			[]string{"type"},
		),
		deallocs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "deallocations_total",
				Help:      "Total number of object deallocations by type",
			},
			[]string{"type"},
		),
		increfs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "increfs_total",
			Help:      "Total number of reference count increments",
		}),
		decrefs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "decrefs_total",
			Help:      "Total number of reference count decrements",
		}),
	}

	if reg != nil {
		collectors := []prometheus.Collector{m.live, m.allocs, m.deallocs, m.increfs, m.decrefs}
		for i, c := range collectors {
			if err := reg.Register(c); err != nil {
				for _, done := range collectors[:i] {
					reg.Unregister(done)
				}
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *metrics) allocated(typeName string) {
	m.live.Inc()
	m.allocs.WithLabelValues(typeName).Inc()
}

func (m *metrics) deallocated(typeName string) {
	m.live.Dec()
	m.deallocs.WithLabelValues(typeName).Inc()
}
