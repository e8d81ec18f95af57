// Package switchboard talks to the off-chain half of the Switchboard
// on-demand oracle: the crossbar gateway that stores job definitions and
// serves signed price updates, and the simulation API that sanity-checks a
// job before it is stored.
package switchboard

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// OracleJob is a pipeline of fetch/transform tasks the oracle operators run
// to produce one price sample.
type OracleJob struct {
	Tasks []Task `json:"tasks"`
}

// Task is a single pipeline step; exactly one member is set.
type Task struct {
	HTTPTask      *HTTPTask      `json:"httpTask,omitempty"`
	JSONParseTask *JSONParseTask `json:"jsonParseTask,omitempty"`
}

type HTTPTask struct {
	URL    string `json:"url"`
	Method string `json:"method,omitempty"`
}

type JSONParseTask struct {
	Path string `json:"path"`
}

// DefaultPriceTaskURL serves spot prices for the protocol's listed tickers.
const DefaultPriceTaskURL = "https://go-ginko-prices.fly.dev/api/price"

// PriceJob is the canonical two-task job for one ticker: fetch the price
// endpoint, extract the price field.
func PriceJob(taskURL, ticker, jsonPath string) OracleJob {
	if taskURL == "" {
		taskURL = DefaultPriceTaskURL
	}
	if jsonPath == "" {
		jsonPath = "price"
	}
	return OracleJob{
		Tasks: []Task{
			{HTTPTask: &HTTPTask{URL: taskURL + "/" + ticker, Method: "METHOD_GET"}},
			{JSONParseTask: &JSONParseTask{Path: jsonPath}},
		},
	}
}

// Serialize encodes the job for transport to the simulation API.
func (j OracleJob) Serialize() (string, error) {
	raw, err := json.Marshal(j)
	if err != nil {
		return "", fmt.Errorf("serialize oracle job: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}
