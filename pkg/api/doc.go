// Package api provides the worker's optional status HTTP server.
//
// Endpoints:
//
//	GET /health   liveness check
//	GET /status   worker state snapshot (identity, state, current simulation)
//	GET /metrics  Prometheus metrics
//
// The server is enabled with the --status-addr flag (or status_addr in
// simulator.yaml) and is read-only: nothing about the worker can be changed
// through it.
package api
