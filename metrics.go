package pacing

import "github.com/prometheus/client_golang/prometheus"

// DefaultMetricsNamespace prefixes every exported metric.
const DefaultMetricsNamespace = "pacing"

type governorMetrics struct {
	Ticks        prometheus.Counter
	Skips        prometheus.Counter
	Overruns     prometheus.Counter
	SleepSeconds prometheus.Histogram
	Deficit      prometheus.Gauge
	Alpha        prometheus.Gauge
}

func newGovernorMetrics(o options) governorMetrics {
	subsystem := "governor"

	return governorMetrics{
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Subsystem:   subsystem,
			Name:        "ticks_total",
			Help:        "Total steady-state ticks processed.",
			ConstLabels: o.labels,
		}),
		Skips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Subsystem:   subsystem,
			Name:        "skips_total",
			Help:        "Total skip advisories returned.",
			ConstLabels: o.labels,
		}),
		Overruns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Subsystem:   subsystem,
			Name:        "overruns_total",
			Help:        "Total ticks where no sleep was possible.",
			ConstLabels: o.labels,
		}),
		SleepSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   o.namespace,
			Subsystem:   subsystem,
			Name:        "sleep_seconds",
			Help:        "Histogram of requested sleep per tick.",
			Buckets:     []float64{0.001, 0.0025, 0.005, 0.01, 0.016, 0.033, 0.05, 0.1, 0.25, 0.5, 1},
			ConstLabels: o.labels,
		}),
		Deficit: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   o.namespace,
			Subsystem:   subsystem,
			Name:        "deficit_seconds",
			Help:        "Accumulated overrun not yet drained by skips.",
			ConstLabels: o.labels,
		}),
		Alpha: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   o.namespace,
			Subsystem:   subsystem,
			Name:        "alpha",
			Help:        "Current learning rate.",
			ConstLabels: o.labels,
		}),
	}
}

func (m governorMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Ticks, m.Skips, m.Overruns, m.SleepSeconds, m.Deficit, m.Alpha}
}

type timerMetrics struct {
	Checks prometheus.Counter
	Fires  prometheus.Counter
}

func newTimerMetrics(o options) timerMetrics {
	subsystem := "timer"

	return timerMetrics{
		Checks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Subsystem:   subsystem,
			Name:        "checks_total",
			Help:        "Total checks while enabled.",
			ConstLabels: o.labels,
		}),
		Fires: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Subsystem:   subsystem,
			Name:        "fires_total",
			Help:        "Total checks that found the alarm elapsed.",
			ConstLabels: o.labels,
		}),
	}
}

func (m timerMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Checks, m.Fires}
}
