package simulator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ssbgp/dss-simulator/pkg/dispatcher"
	"github.com/ssbgp/dss-simulator/pkg/metrics"
	"github.com/ssbgp/dss-simulator/pkg/reports"
	"github.com/ssbgp/dss-simulator/pkg/types"
)

// DefaultFailurePause is how long the loop pauses after a failed execution
// before asking for the next simulation, so the error is visible on a console
// before the log scrolls on.
const DefaultFailurePause = 2 * time.Second

// Engine is the part of the engine runner the control loop depends on.
type Engine interface {
	Run(sim *types.Simulation, outputDir string) error
	LogFile(id string) string
}

// Config holds control loop parameters.
type Config struct {
	IdentityFile string
	PollInterval time.Duration
	FailurePause time.Duration // zero means DefaultFailurePause
}

// Status is a point-in-time snapshot of the worker, served by the status
// endpoint.
type Status struct {
	WorkerID          string            `json:"worker_id"`
	State             types.WorkerState `json:"state"`
	CurrentSimulation string            `json:"current_simulation,omitempty"`
	Completed         int               `json:"completed"`
	Failed            int               `json:"failed"`
}

// Simulator is the worker control loop: it bootstraps the worker identity,
// polls the dispatcher for simulations, executes them one at a time through
// the execution store and engine, and reports every completion back.
//
// Exactly one simulation executes at a time; the loop blocks on the engine.
// Shutdown is cooperative: cancelling the Run context is observed at the
// poll and sleep suspension points, never during an in-flight execution.
type Simulator struct {
	dispatcher   dispatcher.Client
	store        *reports.Store
	engine       Engine
	identityFile string
	pollInterval time.Duration
	failurePause time.Duration
	logger       zerolog.Logger

	mu     sync.RWMutex
	status Status
}

// New creates a control loop. The dispatcher client should be a Resilient
// wrapper so that connectivity faults never surface here.
func New(d dispatcher.Client, store *reports.Store, eng Engine, cfg Config, logger zerolog.Logger) *Simulator {
	pause := cfg.FailurePause
	if pause == 0 {
		pause = DefaultFailurePause
	}
	return &Simulator{
		dispatcher:   d,
		store:        store,
		engine:       eng,
		identityFile: cfg.IdentityFile,
		pollInterval: cfg.PollInterval,
		failurePause: pause,
		logger:       logger,
		status:       Status{State: types.WorkerStateBootstrap},
	}
}

// Status returns a snapshot of the worker state.
func (s *Simulator) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Run executes the control loop until ctx is cancelled. A cancellation is a
// normal shutdown and returns nil; only unrecoverable local failures return
// an error.
func (s *Simulator) Run(ctx context.Context) error {
	defer s.update(func(st *Status) {
		st.State = types.WorkerStateStopped
		st.CurrentSimulation = ""
	})

	workerID, err := s.login(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	if err := s.store.EnsureLayout(); err != nil {
		return err
	}
	// Resolve leftovers from an unclean shutdown exactly once, before the
	// first poll.
	if err := s.store.Recover(); err != nil {
		return err
	}

	for {
		if ctx.Err() != nil {
			s.logger.Info().Msg("stop requested, shutting down")
			return nil
		}

		s.update(func(st *Status) {
			st.State = types.WorkerStatePolling
			st.CurrentSimulation = ""
		})

		sim, err := s.dispatcher.NextSimulation(ctx, workerID)
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info().Msg("stop requested, shutting down")
				return nil
			}
			var fault *dispatcher.Fault
			if errors.As(err, &fault) {
				// Asking for work is side-effect free, so a fault here is
				// safe to retry immediately.
				metrics.DispatcherFaults.Inc()
				s.logger.Error().Err(fault).Msg("dispatcher rejected poll")
				continue
			}
			return err
		}

		if sim == nil {
			metrics.EmptyPolls.Inc()
			s.logger.Info().
				Dur("wait", s.pollInterval).
				Msg("simulation queue is empty, will check again")
			if !s.sleep(ctx, s.pollInterval) {
				s.logger.Info().Msg("stop requested, shutting down")
				return nil
			}
			continue
		}

		s.execute(ctx, workerID, sim)
	}
}

// execute runs one simulation through the store and engine and reports the
// outcome. The engine itself is never interrupted; ctx only bounds the
// notification retries and the post-failure pause.
func (s *Simulator) execute(ctx context.Context, workerID string, sim *types.Simulation) {
	logger := s.logger.With().Str("simulation_id", sim.ID).Logger()

	s.update(func(st *Status) {
		st.State = types.WorkerStateExecuting
		st.CurrentSimulation = sim.ID
	})

	// The previous run may have crashed after the engine finished but before
	// the dispatcher heard about it. The complete entry is the durable
	// record, so only the notification is repeated.
	if s.store.AlreadyCompleted(sim.ID) {
		logger.Warn().Msg("simulation was already executed")
		s.notify(ctx, workerID, sim.ID, logger)
		return
	}

	logger.Info().Msg(sim.String())
	logger.Info().Msg("running simulation")

	start := time.Now()
	err := s.engine.Run(sim, s.store.RunningDir())
	metrics.SimulationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		logger.Error().Err(err).Msg("engine crashed while running simulation")
		metrics.SimulationsFailed.Inc()
		s.update(func(st *Status) { st.Failed++ })

		if _, archiveErr := s.store.ArchiveFailure(sim.ID, s.engine.LogFile(sim.ID)); archiveErr != nil {
			logger.Error().Err(archiveErr).Msg("failed to archive simulation data")
		}
		s.sleep(ctx, s.failurePause)
		return
	}

	logger.Info().Msg("finished simulation")

	if err := s.store.CompleteSuccess(sim.ID); err != nil {
		// Without the complete entry the simulation is not durably finished,
		// so it must not be reported; the dispatcher will assign it again.
		logger.Error().Err(err).Msg("failed to store simulation data")
		return
	}

	metrics.SimulationsCompleted.Inc()
	s.update(func(st *Status) { st.Completed++ })
	s.notify(ctx, workerID, sim.ID, logger)
}

// notify reports a finished simulation, blocking (through the resilient
// client's retries) until the dispatcher acknowledges or shutdown interrupts
// the wait. An interrupted notification is safe: the complete entry makes the
// next assignment of this id re-issue it.
func (s *Simulator) notify(ctx context.Context, workerID, simulationID string, logger zerolog.Logger) {
	if err := s.dispatcher.NotifyFinished(ctx, workerID, simulationID); err != nil {
		if ctx.Err() != nil {
			logger.Warn().Msg("shut down before dispatcher acknowledged; completion will be re-reported")
			return
		}
		logger.Error().Err(err).Msg("dispatcher rejected completion notification")
		return
	}
	logger.Info().Msg("notified dispatcher of completion")
}

// sleep waits for d or until ctx is cancelled, reporting whether the full
// wait elapsed.
func (s *Simulator) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Simulator) update(fn func(*Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.status)
}
