package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/ssbgp/dss-simulator/pkg/types"
)

// Client is the logical dispatcher surface consumed by the control loop.
// NextSimulation returns (nil, nil) when the dispatcher has no simulation
// available; that is a normal result, not an error.
type Client interface {
	Register(ctx context.Context) (string, error)
	NextSimulation(ctx context.Context, workerID string) (*types.Simulation, error)
	NotifyFinished(ctx context.Context, workerID, simulationID string) error
}

// rpcRequest is a JSON-RPC 2.0 request envelope.
type rpcRequest struct {
	Version string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

// rpcResponse is a JSON-RPC 2.0 response envelope. Result stays raw so that
// a null result is distinguishable from a missing one.
type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// HTTPClient talks JSON-RPC 2.0 to the dispatcher over HTTP. It performs a
// single attempt per call and reports transport failures as
// ConnectivityError; wrap it in a Resilient client to get retry behavior.
type HTTPClient struct {
	endpoint string
	http     *http.Client
	logger   zerolog.Logger
	seq      atomic.Int64
}

// NewHTTPClient creates a dispatcher client for the given base URL
// (e.g. "http://dispatcher.example.org:32014").
func NewHTTPClient(baseURL string, logger zerolog.Logger) *HTTPClient {
	return &HTTPClient{
		endpoint: baseURL + "/rpc",
		http:     &http.Client{},
		logger:   logger,
	}
}

// Register obtains a fresh worker identity from the dispatcher.
func (c *HTTPClient) Register(ctx context.Context) (string, error) {
	var id string
	if err := c.call(ctx, "register", nil, &id); err != nil {
		return "", err
	}
	return id, nil
}

// NextSimulation asks the dispatcher for the next simulation assigned to
// this worker. A nil simulation with nil error means the queue is empty.
func (c *HTTPClient) NextSimulation(ctx context.Context, workerID string) (*types.Simulation, error) {
	var sim *types.Simulation
	if err := c.call(ctx, "next_simulation", []interface{}{workerID}, &sim); err != nil {
		return nil, err
	}
	return sim, nil
}

// NotifyFinished reports a finished simulation to the dispatcher.
func (c *HTTPClient) NotifyFinished(ctx context.Context, workerID, simulationID string) error {
	return c.call(ctx, "notify_finished", []interface{}{workerID, simulationID}, nil)
}

// call performs one JSON-RPC round trip. result may be nil when the caller
// does not care about the payload; a null result leaves it untouched.
func (c *HTTPClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	if params == nil {
		params = []interface{}{}
	}

	body, err := json.Marshal(rpcRequest{
		Version: "2.0",
		ID:      c.seq.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classify(fmt.Errorf("unexpected status %s from %s", resp.Status, c.endpoint))
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return classify(fmt.Errorf("malformed response to %s: %w", method, err))
	}

	if rpcResp.Error != nil {
		return &Fault{Code: rpcResp.Error.Code, Message: rpcResp.Error.Message}
	}

	if result == nil || len(rpcResp.Result) == 0 || bytes.Equal(rpcResp.Result, []byte("null")) {
		return nil
	}

	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return classify(fmt.Errorf("malformed %s result: %w", method, err))
	}

	c.logger.Debug().Str("method", method).Msg("dispatcher call succeeded")
	return nil
}
