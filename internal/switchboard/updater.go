package switchboard

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
)

// Updater fetches oracle-signed price update instructions for existing feeds
// from the crossbar gateway. It satisfies the feed-update hook of the
// instruction builders.
type Updater struct {
	httpClient  *http.Client
	crossbarURL string
	network     string
}

// UpdaterConfig points the updater at a gateway and cluster. Zero values use
// the public gateway and mainnet.
type UpdaterConfig struct {
	CrossbarURL string
	Network     string // "mainnet" or "devnet"
	Timeout     time.Duration
}

func NewUpdater(cfg UpdaterConfig) *Updater {
	if cfg.CrossbarURL == "" {
		cfg.CrossbarURL = DefaultCrossbarURL
	}
	if cfg.Network == "" {
		cfg.Network = "mainnet"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Updater{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		crossbarURL: strings.TrimRight(cfg.CrossbarURL, "/"),
		network:     cfg.Network,
	}
}

type accountMetaJSON struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

type instructionJSON struct {
	ProgramID string            `json:"programId"`
	Data      string            `json:"data"`
	Keys      []accountMetaJSON `json:"keys"`
}

type updateResponse struct {
	Success      bool              `json:"success"`
	PullIx       []instructionJSON `json:"pullIx"`
	LookupTables []string          `json:"lookupTables"`
	Error        string            `json:"error"`
}

// FetchUpdateInstruction asks the gateway to assemble the submit instruction
// that cranks the feed, paid by signer, and returns it with the lookup tables
// the transaction should load.
func (u *Updater) FetchUpdateInstruction(ctx context.Context, feed, signer solana.PublicKey) (solana.Instruction, []solana.PublicKey, error) {
	endpoint := fmt.Sprintf("%s/updates/solana/%s/%s?payer=%s",
		u.crossbarURL, u.network, feed, url.QueryEscape(signer.String()))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: build request: %v", ErrService, err)
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("%w: feed update: status %d", ErrService, resp.StatusCode)
	}

	var res updateResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, nil, fmt.Errorf("%w: decode update response: %v", ErrService, err)
	}
	if !res.Success || len(res.PullIx) == 0 {
		if res.Error != "" {
			return nil, nil, fmt.Errorf("%w: feed update: %s", ErrService, res.Error)
		}
		return nil, nil, fmt.Errorf("%w: feed update: no instruction returned", ErrService)
	}

	ix, err := decodeInstruction(res.PullIx[0])
	if err != nil {
		return nil, nil, err
	}

	luts := make([]solana.PublicKey, 0, len(res.LookupTables))
	for _, raw := range res.LookupTables {
		pk, err := solana.PublicKeyFromBase58(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: lookup table %q: %v", ErrService, raw, err)
		}
		luts = append(luts, pk)
	}
	return ix, luts, nil
}

func decodeInstruction(raw instructionJSON) (solana.Instruction, error) {
	programID, err := solana.PublicKeyFromBase58(raw.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("%w: instruction program id %q: %v", ErrService, raw.ProgramID, err)
	}
	data, err := base64.StdEncoding.DecodeString(raw.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: instruction data: %v", ErrService, err)
	}

	accounts := make(solana.AccountMetaSlice, 0, len(raw.Keys))
	for _, key := range raw.Keys {
		pk, err := solana.PublicKeyFromBase58(key.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("%w: instruction account %q: %v", ErrService, key.Pubkey, err)
		}
		accounts = append(accounts, solana.NewAccountMeta(pk, key.IsWritable, key.IsSigner))
	}
	return solana.NewInstruction(programID, accounts, data), nil
}
