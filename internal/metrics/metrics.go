// Package metrics holds Prometheus instruments that are used across the
// charm agent.  All collectors are registered with the global registry,
// so importing this package in main.go is enough to expose them on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ConfigReloadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "charm_config_reload_total",
			Help: "Cumulative number of successful configuration loads.",
		})

	ConfigLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "charm_config_load_errors_total",
			Help: "Cumulative number of configuration read or parse errors.",
		})

	ConfigValidationErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "charm_config_validation_errors_total",
			Help: "Cumulative number of configurations rejected by validation.",
		})

	ProvisionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "charm_provision_duration_seconds",
			Help:    "Wall-clock time of one install-and-provision pass.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		})

	ProvisionErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "charm_provision_errors_total",
			Help: "Cumulative number of failed install-and-provision passes.",
		})
)

func init() {
	prometheus.MustRegister(
		ConfigReloadTotal,
		ConfigLoadErrorsTotal,
		ConfigValidationErrorsTotal,
		ProvisionDurationSeconds,
		ProvisionErrorsTotal,
	)
}
