package switchboard

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
)

// ErrService marks failures of the crossbar gateway or the simulation API.
var ErrService = errors.New("switchboard: service error")

const defaultTimeout = 30 * time.Second

// CrossbarConfig carries the off-chain endpoints. Zero values use the public
// deployments and a 30s timeout.
type CrossbarConfig struct {
	CrossbarURL   string
	SimulationURL string
	Cluster       string
	Timeout       time.Duration
}

// Crossbar stores oracle job definitions and simulates them before storage.
// Safe for concurrent use.
type Crossbar struct {
	httpClient    *http.Client
	crossbarURL   string
	simulationURL string
	cluster       string
}

func NewCrossbar(cfg CrossbarConfig) *Crossbar {
	if cfg.CrossbarURL == "" {
		cfg.CrossbarURL = DefaultCrossbarURL
	}
	if cfg.SimulationURL == "" {
		cfg.SimulationURL = DefaultSimulationURL
	}
	if cfg.Cluster == "" {
		cfg.Cluster = "Mainnet"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Crossbar{
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		crossbarURL:   strings.TrimRight(cfg.CrossbarURL, "/"),
		simulationURL: cfg.SimulationURL,
		cluster:       cfg.Cluster,
	}
}

type simulateRequest struct {
	Cluster string   `json:"cluster"`
	Jobs    []string `json:"jobs"`
}

type simulateResponse struct {
	Result  *json.RawMessage  `json:"result"`
	Results []json.RawMessage `json:"results"`
}

// Simulate runs the jobs against live oracle infrastructure without storing
// anything. An absent result means every job failed; the first per-job
// payload then carries the failure detail.
func (c *Crossbar) Simulate(ctx context.Context, jobs []OracleJob) error {
	serialized := make([]string, 0, len(jobs))
	for _, job := range jobs {
		encoded, err := job.Serialize()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrService, err)
		}
		serialized = append(serialized, encoded)
	}

	var res simulateResponse
	if err := c.postJSON(ctx, c.simulationURL, simulateRequest{Cluster: c.cluster, Jobs: serialized}, &res); err != nil {
		return err
	}

	if res.Result == nil {
		if len(res.Results) > 0 {
			return fmt.Errorf("%w: simulation failed: %s", ErrService, res.Results[0])
		}
		return fmt.Errorf("%w: simulation returned no result", ErrService)
	}
	return nil
}

type storeRequest struct {
	Queue string      `json:"queue"`
	Jobs  []OracleJob `json:"jobs"`
}

type storeResponse struct {
	CID      string `json:"cid"`
	FeedHash string `json:"feedHash"`
}

// Store persists the job definitions under the queue and returns the
// 0x-prefixed feed hash that identifies them on chain.
func (c *Crossbar) Store(ctx context.Context, queue solana.PublicKey, jobs []OracleJob) (string, error) {
	var res storeResponse
	if err := c.postJSON(ctx, c.crossbarURL+"/store", storeRequest{Queue: queue.String(), Jobs: jobs}, &res); err != nil {
		return "", err
	}
	if err := validateFeedHash(res.FeedHash); err != nil {
		return "", err
	}
	return res.FeedHash, nil
}

// FeedHash simulates the jobs and, when they produce a result, stores them,
// returning the resulting feed hash. This is the one-call path the feed
// creation flow uses.
func (c *Crossbar) FeedHash(ctx context.Context, queue solana.PublicKey, jobs []OracleJob) (string, error) {
	if err := c.Simulate(ctx, jobs); err != nil {
		return "", err
	}
	return c.Store(ctx, queue, jobs)
}

func (c *Crossbar) postJSON(ctx context.Context, url string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encode request: %v", ErrService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrService, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: status %d", ErrService, url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrService, err)
	}
	return nil
}

func validateFeedHash(s string) error {
	if !strings.HasPrefix(s, "0x") {
		return fmt.Errorf("%w: feed hash %q missing 0x prefix", ErrService, s)
	}
	raw, err := hex.DecodeString(s[2:])
	if err != nil || len(raw) != 32 {
		return fmt.Errorf("%w: feed hash %q is not a 32-byte hex digest", ErrService, s)
	}
	return nil
}
