// Package metrics defines the Prometheus instrumentation for the simulation
// worker. All collectors are registered with the default registry at init
// time and exposed through Handler, which the status server mounts at
// /metrics.
package metrics
