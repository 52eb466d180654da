package dispatcher

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ssbgp/dss-simulator/pkg/metrics"
	"github.com/ssbgp/dss-simulator/pkg/types"
)

// RetryPolicy retries an operation for as long as it fails with connectivity
// faults, waiting a fixed back-off between attempts. Logical faults and
// context cancellation propagate immediately. The zero back-off is invalid;
// use NewRetryPolicy.
type RetryPolicy struct {
	backoff time.Duration
	logger  zerolog.Logger

	// wait is swapped out by tests to avoid real sleeping
	wait func(ctx context.Context, d time.Duration) error
}

// NewRetryPolicy creates a retry policy with a fixed back-off.
func NewRetryPolicy(backoff time.Duration, logger zerolog.Logger) *RetryPolicy {
	return &RetryPolicy{
		backoff: backoff,
		logger:  logger,
		wait:    sleepContext,
	}
}

// Run executes op until it returns nil or a non-connectivity error. The
// returned error is nil, a logical *Fault, or the context's error if the
// back-off wait was interrupted by cancellation.
func (p *RetryPolicy) Run(ctx context.Context, name string, op func() error) error {
	for {
		err := op()
		if err == nil {
			return nil
		}
		if !IsConnectivity(err) {
			return err
		}

		metrics.DispatcherRetries.Inc()
		p.logger.Warn().
			Err(err).
			Str("call", name).
			Dur("backoff", p.backoff).
			Msg("failed to reach dispatcher, will retry")

		if err := p.wait(ctx, p.backoff); err != nil {
			return err
		}
	}
}

// sleepContext waits for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Resilient wraps a Client so that connectivity faults never escape: every
// call blocks, retrying with the policy's back-off, until the dispatcher
// answers. The only errors callers ever see are logical *Fault values and
// context cancellation.
type Resilient struct {
	client Client
	policy *RetryPolicy
}

// NewResilient wraps client with the given retry policy.
func NewResilient(client Client, policy *RetryPolicy) *Resilient {
	return &Resilient{client: client, policy: policy}
}

// Register calls Client.Register, retrying through connectivity faults.
func (r *Resilient) Register(ctx context.Context) (string, error) {
	var id string
	err := r.policy.Run(ctx, "register", func() error {
		var err error
		id, err = r.client.Register(ctx)
		return err
	})
	return id, err
}

// NextSimulation calls Client.NextSimulation, retrying through connectivity
// faults. (nil, nil) still means the queue is empty.
func (r *Resilient) NextSimulation(ctx context.Context, workerID string) (*types.Simulation, error) {
	var sim *types.Simulation
	err := r.policy.Run(ctx, "next_simulation", func() error {
		var err error
		sim, err = r.client.NextSimulation(ctx, workerID)
		return err
	})
	return sim, err
}

// NotifyFinished calls Client.NotifyFinished, retrying through connectivity
// faults.
func (r *Resilient) NotifyFinished(ctx context.Context, workerID, simulationID string) error {
	return r.policy.Run(ctx, "notify_finished", func() error {
		return r.client.NotifyFinished(ctx, workerID, simulationID)
	})
}
