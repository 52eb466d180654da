package dispatcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssbgp/dss-simulator/pkg/types"
)

// newTestPolicy returns a policy whose back-off waits are recorded instead
// of slept.
func newTestPolicy(backoff time.Duration, waits *[]time.Duration) *RetryPolicy {
	p := NewRetryPolicy(backoff, zerolog.Nop())
	p.wait = func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return ctx.Err()
	}
	return p
}

func TestRetryPolicy_ConvergesAfterConnectivityFaults(t *testing.T) {
	var waits []time.Duration
	policy := newTestPolicy(10*time.Second, &waits)

	attempts := 0
	err := policy.Run(context.Background(), "register", func() error {
		attempts++
		if attempts <= 3 {
			return &ConnectivityError{Reason: "connection refused", Err: errors.New("refused")}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, attempts, "operation should run once per attempt")
	require.Len(t, waits, 3, "one back-off wait per failed attempt")
	for _, wait := range waits {
		assert.Equal(t, 10*time.Second, wait)
	}
}

func TestRetryPolicy_PropagatesLogicalFaultImmediately(t *testing.T) {
	var waits []time.Duration
	policy := newTestPolicy(10*time.Second, &waits)

	fault := &Fault{Code: 32602, Message: "invalid params"}
	attempts := 0
	err := policy.Run(context.Background(), "notify_finished", func() error {
		attempts++
		return fault
	})

	assert.Equal(t, 1, attempts)
	assert.Empty(t, waits, "logical faults must not be retried")
	var got *Fault
	require.ErrorAs(t, err, &got)
	assert.Equal(t, fault.Code, got.Code)
}

func TestRetryPolicy_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	policy := NewRetryPolicy(time.Hour, zerolog.Nop())
	policy.wait = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	err := policy.Run(ctx, "next_simulation", func() error {
		return &ConnectivityError{Reason: "timeout", Err: errors.New("timeout")}
	})
	assert.ErrorIs(t, err, context.Canceled)
}

// flakyClient fails every call with a connectivity fault until the remaining
// budget is used up.
type flakyClient struct {
	remaining int
	sim       *types.Simulation
	notified  []string
}

func (c *flakyClient) fail() error {
	if c.remaining > 0 {
		c.remaining--
		return &ConnectivityError{Reason: "connection reset", Err: errors.New("reset")}
	}
	return nil
}

func (c *flakyClient) Register(ctx context.Context) (string, error) {
	if err := c.fail(); err != nil {
		return "", err
	}
	return "worker-1", nil
}

func (c *flakyClient) NextSimulation(ctx context.Context, workerID string) (*types.Simulation, error) {
	if err := c.fail(); err != nil {
		return nil, err
	}
	return c.sim, nil
}

func (c *flakyClient) NotifyFinished(ctx context.Context, workerID, simulationID string) error {
	if err := c.fail(); err != nil {
		return err
	}
	c.notified = append(c.notified, simulationID)
	return nil
}

func TestResilient_ReturnsResultExactlyOnce(t *testing.T) {
	var waits []time.Duration
	client := &flakyClient{remaining: 3}
	resilient := NewResilient(client, newTestPolicy(10*time.Second, &waits))

	id, err := resilient.Register(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "worker-1", id)
	assert.Len(t, waits, 3)
}

func TestResilient_EmptyQueueIsNotAnError(t *testing.T) {
	var waits []time.Duration
	client := &flakyClient{remaining: 3, sim: nil}
	resilient := NewResilient(client, newTestPolicy(10*time.Second, &waits))

	sim, err := resilient.NextSimulation(context.Background(), "worker-1")
	require.NoError(t, err)
	assert.Nil(t, sim, "empty queue must surface as (nil, nil), not an error")
	assert.Len(t, waits, 3, "the three connectivity faults should each be retried")
}

func TestResilient_NotifyFinished(t *testing.T) {
	var waits []time.Duration
	client := &flakyClient{remaining: 1}
	resilient := NewResilient(client, newTestPolicy(10*time.Second, &waits))

	err := resilient.NotifyFinished(context.Background(), "worker-1", "sim-42")
	require.NoError(t, err)
	assert.Equal(t, []string{"sim-42"}, client.notified)
}
