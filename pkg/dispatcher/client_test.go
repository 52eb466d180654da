package dispatcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rpcHandler answers JSON-RPC calls with canned results per method.
func rpcHandler(t *testing.T, results map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		result, ok := results[req.Method]
		if !ok {
			t.Fatalf("unexpected method %q", req.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":` +
			// echo the request id back
			jsonNumber(req.ID) + `,"result":` + result + `}`))
	}
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestHTTPClient_Register(t *testing.T) {
	srv := httptest.NewServer(rpcHandler(t, map[string]string{
		"register": `"b3c9e2f0-worker"`,
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, zerolog.Nop())
	id, err := client.Register(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b3c9e2f0-worker", id)
}

func TestHTTPClient_NextSimulation_EmptyQueue(t *testing.T) {
	srv := httptest.NewServer(rpcHandler(t, map[string]string{
		"next_simulation": `null`,
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, zerolog.Nop())
	sim, err := client.NextSimulation(context.Background(), "worker-1")
	require.NoError(t, err)
	assert.Nil(t, sim)
}

func TestHTTPClient_NextSimulation_Assigned(t *testing.T) {
	srv := httptest.NewServer(rpcHandler(t, map[string]string{
		"next_simulation": `{
			"id": "J1",
			"topology": "topoA.nf",
			"destination": 5,
			"repetitions": 10,
			"min_delay": 10,
			"max_delay": 1000,
			"threshold": 2000000,
			"stubs_file": "topoA.stubs",
			"seed": 1234,
			"report_nodes": true
		}`,
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, zerolog.Nop())
	sim, err := client.NextSimulation(context.Background(), "worker-1")
	require.NoError(t, err)
	require.NotNil(t, sim)
	assert.Equal(t, "J1", sim.ID)
	assert.Equal(t, "topoA.nf", sim.Topology)
	assert.Equal(t, 5, sim.Destination)
	assert.Equal(t, 10, sim.Repetitions)
	assert.Equal(t, int64(1234), sim.Seed)
	assert.True(t, sim.ReportNodes)
}

func TestHTTPClient_LogicalFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"unknown worker"}}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, zerolog.Nop())
	err := client.NotifyFinished(context.Background(), "worker-1", "J1")

	var fault *Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, -32602, fault.Code)
	assert.Equal(t, "unknown worker", fault.Message)
	assert.False(t, IsConnectivity(err), "a logical fault is not a connectivity fault")
}

func TestHTTPClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close() // nothing listens here anymore

	client := NewHTTPClient(addr, zerolog.Nop())
	_, err := client.Register(context.Background())

	require.Error(t, err)
	assert.True(t, IsConnectivity(err))
	var connErr *ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "connection refused", connErr.Reason)
}

func TestHTTPClient_ServerErrorIsConnectivity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, zerolog.Nop())
	_, err := client.Register(context.Background())
	assert.True(t, IsConnectivity(err), "an HTTP-level failure is transport trouble, not a fault")
}

func TestHTTPClient_UnresolvableHost(t *testing.T) {
	client := NewHTTPClient("http://dispatcher.invalid:32014", zerolog.Nop())
	_, err := client.Register(context.Background())

	require.Error(t, err)
	assert.True(t, IsConnectivity(err))
	var connErr *ConnectivityError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "name resolution failed", connErr.Reason)
}
