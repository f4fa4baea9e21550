package pacing

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Governor or Timer.
type Option func(*options)

type options struct {
	clock     TimeSource
	logger    *slog.Logger
	namespace string
	labels    prometheus.Labels
}

func defaultOptions() options {
	return options{
		clock:     SystemClock{},
		logger:    slog.Default(),
		namespace: DefaultMetricsNamespace,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithTimeSource replaces the SystemClock, e.g. with a ManualClock.
func WithTimeSource(ts TimeSource) Option {
	return func(o *options) {
		if ts != nil {
			o.clock = ts
		}
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsNamespace sets the prometheus namespace of exported metrics.
func WithMetricsNamespace(ns string) Option {
	return func(o *options) {
		o.namespace = ns
	}
}

// WithMetricsLabels attaches constant labels, so several instances can be
// registered with one registry.
func WithMetricsLabels(labels prometheus.Labels) Option {
	return func(o *options) {
		o.labels = labels
	}
}
