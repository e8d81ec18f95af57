// Package figi maps exchange tickers and other security identifiers to FIGI
// identifiers through the OpenFIGI v3 mapping API.
package figi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultAPIURL is the public OpenFIGI mapping endpoint.
	DefaultAPIURL = "https://api.openfigi.com/v3/mapping"

	// DefaultExchCode scopes lookups to US exchanges.
	DefaultExchCode = "US"

	defaultTimeout = 15 * time.Second

	apiKeyHeader = "X-OPENFIGI-APIKEY"
)

var (
	// ErrNotFound means the API answered but had no mapping for the identifier.
	ErrNotFound = errors.New("figi: no match")

	// ErrService means the API failed: transport error, non-2xx status, or an
	// explicit per-item error in the response.
	ErrService = errors.New("figi: service error")
)

// Config carries the client settings. Zero values fall back to the public
// endpoint, US exchange scope, and a 15s timeout. APIKey is optional; without
// one the API applies its anonymous rate limits.
type Config struct {
	APIURL   string
	APIKey   string
	ExchCode string
	Timeout  time.Duration
}

// Client is a thin transport over the mapping endpoint. Safe for concurrent
// use.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	exchCode   string
}

func New(cfg Config) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.ExchCode == "" {
		cfg.ExchCode = DefaultExchCode
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiURL:     cfg.APIURL,
		apiKey:     cfg.APIKey,
		exchCode:   cfg.ExchCode,
	}
}

// Item is one mapping result. Pointer fields are null in the API response
// when the attribute does not apply to the security.
type Item struct {
	FIGI                string  `json:"figi"`
	SecurityType        *string `json:"securityType"`
	MarketSector        *string `json:"marketSector"`
	Ticker              *string `json:"ticker"`
	Name                *string `json:"name"`
	ExchCode            *string `json:"exchCode"`
	ShareClassFIGI      *string `json:"shareClassFIGI"`
	CompositeFIGI       *string `json:"compositeFIGI"`
	SecurityType2       *string `json:"securityType2"`
	SecurityDescription *string `json:"securityDescription"`
}

type mappingRequest struct {
	IDType   string `json:"idType"`
	IDValue  string `json:"idValue"`
	ExchCode string `json:"exchCode,omitempty"`
}

type mappingResponse struct {
	Data  []Item `json:"data"`
	Error string `json:"error"`
}

// Resolve maps one ticker to its FIGI.
func (c *Client) Resolve(ctx context.Context, ticker string) (string, error) {
	item, err := c.Lookup(ctx, "TICKER", ticker)
	if err != nil {
		return "", err
	}
	return item.FIGI, nil
}

// Lookup maps one identifier of the given type (TICKER, ID_BB_GLOBAL, ...)
// to its first mapping result.
func (c *Client) Lookup(ctx context.Context, idType, idValue string) (*Item, error) {
	results, err := c.post(ctx, []mappingRequest{{
		IDType:   idType,
		IDValue:  outboundTicker(idValue),
		ExchCode: c.exchCode,
	}})
	if err != nil {
		return nil, err
	}

	res := results[0]
	if res.Error != "" {
		return nil, fmt.Errorf("%w: %s %s: %s", ErrService, idType, idValue, res.Error)
	}
	if len(res.Data) == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, idType, idValue)
	}

	item := res.Data[0]
	if item.Ticker != nil {
		restored := inboundTicker(*item.Ticker)
		item.Ticker = &restored
	}
	return &item, nil
}

// ResolveBatch maps tickers to FIGIs in one request. Tickers without a match
// are dropped from the result; an explicit per-item error fails the whole
// batch, since it signals a malformed request rather than a missing listing.
func (c *Client) ResolveBatch(ctx context.Context, tickers []string) (map[string]string, error) {
	if len(tickers) == 0 {
		return map[string]string{}, nil
	}

	requests := make([]mappingRequest, 0, len(tickers))
	for _, ticker := range tickers {
		requests = append(requests, mappingRequest{
			IDType:   "TICKER",
			IDValue:  outboundTicker(ticker),
			ExchCode: c.exchCode,
		})
	}

	results, err := c.post(ctx, requests)
	if err != nil {
		return nil, err
	}
	if len(results) != len(tickers) {
		return nil, fmt.Errorf("%w: %d results for %d tickers", ErrService, len(results), len(tickers))
	}

	figis := make(map[string]string, len(tickers))
	for i, res := range results {
		if res.Error != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrService, tickers[i], res.Error)
		}
		if len(res.Data) == 0 {
			continue
		}
		figis[tickers[i]] = res.Data[0].FIGI
	}
	return figis, nil
}

func (c *Client) post(ctx context.Context, requests []mappingRequest) ([]mappingResponse, error) {
	body, err := json.Marshal(requests)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrService, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrService, resp.StatusCode)
	}

	var results []mappingResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrService, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrService)
	}
	return results, nil
}

// The API rejects '.' in share-class tickers (BRK.B) and expects '/'
// (BRK/B); responses are restored to the exchange spelling.

func outboundTicker(ticker string) string {
	return strings.Replace(ticker, ".", "/", 1)
}

func inboundTicker(ticker string) string {
	return strings.Replace(ticker, "/", ".", 1)
}
