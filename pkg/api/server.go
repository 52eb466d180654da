package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ssbgp/dss-simulator/pkg/metrics"
	"github.com/ssbgp/dss-simulator/pkg/simulator"
)

// StatusServer exposes the worker's health, status snapshot and Prometheus
// metrics over HTTP. It is optional; the worker runs fine without it.
type StatusServer struct {
	simulator *simulator.Simulator
	logger    zerolog.Logger
	server    *http.Server
}

// NewStatusServer creates a status server over a running simulator.
func NewStatusServer(sim *simulator.Simulator, logger zerolog.Logger) *StatusServer {
	ss := &StatusServer{
		simulator: sim,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", ss.healthHandler)
	r.Get("/status", ss.statusHandler)
	r.Handle("/metrics", metrics.Handler())

	ss.server = &http.Server{
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return ss
}

// Start serves on addr until Stop is called. It blocks; run it on its own
// goroutine.
func (ss *StatusServer) Start(addr string) error {
	ss.server.Addr = addr
	ss.logger.Info().Str("addr", addr).Msg("status server listening")
	if err := ss.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down gracefully.
func (ss *StatusServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ss.server.Shutdown(ctx)
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// healthHandler is a liveness check: 200 means the process is alive.
func (ss *StatusServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
	})
}

// statusHandler reports the worker's current state snapshot.
func (ss *StatusServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ss.simulator.Status())
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
