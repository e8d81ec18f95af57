package switchboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStoredHash = "0x4142434445464748494a4b4c4d4e4f505152535455565758595a5b5c5d5e5f60"

// crossbarServer answers the simulation and store endpoints from canned
// payloads and records what the client sent.
type crossbarServer struct {
	t            *testing.T
	simulate     interface{}
	store        interface{}
	lastSimulate simulateRequest
	lastStore    storeRequest
}

func (s *crossbarServer) client(t *testing.T) *Crossbar {
	mux := http.NewServeMux()
	mux.HandleFunc("/simulate", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(s.t, json.NewDecoder(r.Body).Decode(&s.lastSimulate))
		require.NoError(s.t, json.NewEncoder(w).Encode(s.simulate))
	})
	mux.HandleFunc("/store", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(s.t, json.NewDecoder(r.Body).Decode(&s.lastStore))
		require.NoError(s.t, json.NewEncoder(w).Encode(s.store))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return NewCrossbar(CrossbarConfig{
		CrossbarURL:   server.URL,
		SimulationURL: server.URL + "/simulate",
		Cluster:       "Devnet",
	})
}

func okResult() simulateResponse {
	result := json.RawMessage(`{"value":"123.45"}`)
	return simulateResponse{Result: &result}
}

func TestSimulate(t *testing.T) {
	server := &crossbarServer{t: t, simulate: okResult()}
	client := server.client(t)

	err := client.Simulate(context.Background(), []OracleJob{PriceJob("", "AAPL", "")})
	require.NoError(t, err)

	assert.Equal(t, "Devnet", server.lastSimulate.Cluster)
	require.Len(t, server.lastSimulate.Jobs, 1)

	want, err := PriceJob("", "AAPL", "").Serialize()
	require.NoError(t, err)
	assert.Equal(t, want, server.lastSimulate.Jobs[0])
}

func TestSimulateFailure(t *testing.T) {
	server := &crossbarServer{t: t, simulate: simulateResponse{
		Results: []json.RawMessage{json.RawMessage(`{"error":"fetch failed"}`)},
	}}
	client := server.client(t)

	err := client.Simulate(context.Background(), []OracleJob{PriceJob("", "AAPL", "")})
	assert.ErrorIs(t, err, ErrService)
	assert.Contains(t, err.Error(), "fetch failed")
}

func TestStore(t *testing.T) {
	server := &crossbarServer{t: t, store: storeResponse{FeedHash: testStoredHash}}
	client := server.client(t)

	hash, err := client.Store(context.Background(), MainnetQueue, []OracleJob{PriceJob("", "AAPL", "")})
	require.NoError(t, err)

	assert.Equal(t, testStoredHash, hash)
	assert.Equal(t, MainnetQueue.String(), server.lastStore.Queue)
	require.Len(t, server.lastStore.Jobs, 1)
}

func TestStoreRejectsMalformedHash(t *testing.T) {
	for name, hash := range map[string]string{
		"missing prefix": "4142434445464748494a4b4c4d4e4f505152535455565758595a5b5c5d5e5f60",
		"short":          "0x4142",
		"not hex":        "0xzz42434445464748494a4b4c4d4e4f505152535455565758595a5b5c5d5e5f",
	} {
		t.Run(name, func(t *testing.T) {
			server := &crossbarServer{t: t, store: storeResponse{FeedHash: hash}}
			client := server.client(t)

			_, err := client.Store(context.Background(), MainnetQueue, []OracleJob{PriceJob("", "AAPL", "")})
			assert.ErrorIs(t, err, ErrService)
		})
	}
}

func TestFeedHashSimulatesBeforeStoring(t *testing.T) {
	server := &crossbarServer{t: t, simulate: okResult(), store: storeResponse{FeedHash: testStoredHash}}
	client := server.client(t)

	hash, err := client.FeedHash(context.Background(), DevnetQueue, []OracleJob{PriceJob("", "AAPL", "")})
	require.NoError(t, err)
	assert.Equal(t, testStoredHash, hash)
	assert.NotEmpty(t, server.lastSimulate.Jobs, "jobs must pass simulation first")
}

func TestFeedHashStopsOnSimulationFailure(t *testing.T) {
	server := &crossbarServer{t: t, simulate: simulateResponse{}}
	client := server.client(t)

	_, err := client.FeedHash(context.Background(), DevnetQueue, []OracleJob{PriceJob("", "AAPL", "")})
	assert.ErrorIs(t, err, ErrService)
	assert.Empty(t, server.lastStore.Queue, "failed simulation must not store")
}

func TestPostJSONStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client := NewCrossbar(CrossbarConfig{CrossbarURL: server.URL, SimulationURL: server.URL})
	err := client.Simulate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrService)
}
