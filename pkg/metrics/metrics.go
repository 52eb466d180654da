package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Simulation lifecycle metrics
	SimulationsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dss_simulations_completed_total",
			Help: "Total number of simulations that finished successfully",
		},
	)

	SimulationsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dss_simulations_failed_total",
			Help: "Total number of simulation executions that failed",
		},
	)

	SimulationsRecovered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dss_simulations_recovered_total",
			Help: "Total number of interrupted simulations resolved at startup",
		},
	)

	SimulationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dss_simulation_duration_seconds",
			Help:    "Engine execution duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	// Dispatcher metrics
	DispatcherRetries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dss_dispatcher_retries_total",
			Help: "Total number of dispatcher calls retried after a connectivity fault",
		},
	)

	DispatcherFaults = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dss_dispatcher_faults_total",
			Help: "Total number of logical faults reported by the dispatcher",
		},
	)

	EmptyPolls = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dss_empty_polls_total",
			Help: "Total number of polls that found the simulation queue empty",
		},
	)
)

func init() {
	prometheus.MustRegister(SimulationsCompleted)
	prometheus.MustRegister(SimulationsFailed)
	prometheus.MustRegister(SimulationsRecovered)
	prometheus.MustRegister(SimulationDuration)
	prometheus.MustRegister(DispatcherRetries)
	prometheus.MustRegister(DispatcherFaults)
	prometheus.MustRegister(EmptyPolls)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
