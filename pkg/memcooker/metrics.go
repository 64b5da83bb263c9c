package memcooker

import "github.com/prometheus/client_golang/prometheus"

const prometheusNamespace = "memcooker"

// MetricsListener exports monitor transitions as prometheus metrics.
type MetricsListener struct {
	thresholdExceeded prometheus.Gauge
	exceededTotal     prometheus.Counter
	recoveredTotal    prometheus.Counter
	probeErrorsTotal  prometheus.Counter
	lastFailedUsable  prometheus.Gauge
}

func NewMetricsListener(reg prometheus.Registerer) *MetricsListener {
	l := &MetricsListener{
		thresholdExceeded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: prometheusNamespace,
			Name:      "memory_threshold_exceeded",
			Help:      "free memory is currently below (1) or above (0) threshold",
		}),
		exceededTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: prometheusNamespace,
			Name:      "memory_threshold_exceeded_total",
			Help:      "number of times free memory dropped below the threshold",
		}),
		recoveredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: prometheusNamespace,
			Name:      "memory_recovered_total",
			Help:      "number of times free memory on the node recovered",
		}),
		probeErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: prometheusNamespace,
			Name:      "probe_errors_total",
			Help:      "number of failed memory samples",
		}),
		lastFailedUsable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: prometheusNamespace,
			Name:      "last_failed_usable_bytes",
			Help:      "usable memory reported by the sample that last exceeded the threshold",
		}),
	}

	reg.MustRegister(l.thresholdExceeded, l.exceededTotal, l.recoveredTotal, l.probeErrorsTotal, l.lastFailedUsable)

	return l
}

func (l *MetricsListener) Failed(s Sample) {
	l.thresholdExceeded.Set(1)
	l.exceededTotal.Inc()
	l.lastFailedUsable.Set(float64(s.Usable))
}

func (l *MetricsListener) Cleared() {
	l.thresholdExceeded.Set(0)
	l.recoveredTotal.Inc()
}

func (l *MetricsListener) Errored(error) {
	l.probeErrorsTotal.Inc()
}
