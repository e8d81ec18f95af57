// Package chain builds, simulates, submits, and confirms transactions
// against a Solana RPC node.
package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/rpc"
)

var (
	// ErrSimulation means preflight simulation rejected the transaction; the
	// wrapped message carries the program log detail when one was found.
	ErrSimulation = errors.New("chain: simulation failed")

	// ErrTransactionFailed means the cluster executed and rejected the
	// transaction.
	ErrTransactionFailed = errors.New("chain: transaction failed")

	// ErrConfirmationTimeout means the blockhash expired before the
	// transaction confirmed; the caller should rebuild and resend.
	ErrConfirmationTimeout = errors.New("chain: confirmation timed out")
)

// The grace window past lastValidBlockHeight before a blockhash is treated
// as expired.
const blockhashExpiryGrace = 150

const confirmPollInterval = 700 * time.Millisecond

// programLogError extracts the human-readable failure from simulation logs.
var programLogError = regexp.MustCompile(`Error: (.*)`)

// RPC is the node surface the client depends on. *rpc.Client satisfies it.
type RPC interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SimulateTransaction(ctx context.Context, tx *solana.Transaction) (*rpc.SimulateTransactionResponse, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetBlockHeight(ctx context.Context, commitment rpc.CommitmentType) (uint64, error)
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
}

// Config tunes submission behavior. Non-zero compute budget values prepend
// the corresponding budget instructions to every transaction.
type Config struct {
	Commitment                    rpc.CommitmentType
	SkipPreflight                 bool
	MaxRetries                    *uint
	ComputeUnitLimit              uint32
	ComputeUnitPriceMicroLamports uint64
}

// Client signs with one keypair and serializes the submit flow: build, sign,
// optionally simulate, send, confirm.
type Client struct {
	rpc    RPC
	signer solana.PrivateKey
	logger *slog.Logger
	cfg    Config
}

func New(rpcClient RPC, signer solana.PrivateKey, logger *slog.Logger, cfg Config) *Client {
	if cfg.Commitment == "" {
		cfg.Commitment = rpc.CommitmentConfirmed
	}
	return &Client{rpc: rpcClient, signer: signer, logger: logger, cfg: cfg}
}

func (c *Client) PublicKey() solana.PublicKey {
	return c.signer.PublicKey()
}

// SubmitOptions adjusts one submission. Tables supplies address lookup table
// contents for transactions that reference them; Simulate runs a preflight
// simulation locally before sending regardless of node-side preflight.
type SubmitOptions struct {
	Simulate bool
	Tables   map[solana.PublicKey]solana.PublicKeySlice
}

// Submit signs and sends the instructions as one transaction and blocks
// until the cluster confirms it or the blockhash expires.
func (c *Client) Submit(ctx context.Context, instructions []solana.Instruction, opts SubmitOptions) (solana.Signature, error) {
	budget, err := c.computeBudgetInstructions()
	if err != nil {
		return solana.Signature{}, err
	}
	if len(budget) > 0 {
		instructions = append(budget, instructions...)
	}

	recent, err := c.rpc.GetLatestBlockhash(ctx, c.cfg.Commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("get latest blockhash: %w", err)
	}

	txOpts := []solana.TransactionOption{solana.TransactionPayer(c.signer.PublicKey())}
	if len(opts.Tables) > 0 {
		txOpts = append(txOpts, solana.TransactionAddressTables(opts.Tables))
	}

	tx, err := solana.NewTransaction(instructions, recent.Value.Blockhash, txOpts...)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if c.signer.PublicKey().Equals(key) {
			return &c.signer
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}

	if opts.Simulate {
		if err := c.simulate(ctx, tx); err != nil {
			return solana.Signature{}, err
		}
	}

	sendOpts := rpc.TransactionOpts{
		SkipPreflight:       c.cfg.SkipPreflight,
		PreflightCommitment: c.cfg.Commitment,
	}
	if c.cfg.MaxRetries != nil {
		retries := *c.cfg.MaxRetries
		sendOpts.MaxRetries = &retries
	}

	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, sendOpts)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}

	c.logger.Debug("transaction sent", "signature", sig, "last_valid_block_height", recent.Value.LastValidBlockHeight)

	if err := c.waitForConfirmation(ctx, sig, recent.Value.LastValidBlockHeight); err != nil {
		return sig, err
	}
	return sig, nil
}

func (c *Client) computeBudgetInstructions() ([]solana.Instruction, error) {
	var out []solana.Instruction
	if c.cfg.ComputeUnitLimit > 0 {
		ix, err := computebudget.NewSetComputeUnitLimitInstruction(c.cfg.ComputeUnitLimit).ValidateAndBuild()
		if err != nil {
			return nil, fmt.Errorf("build compute unit limit instruction: %w", err)
		}
		out = append(out, ix)
	}
	if c.cfg.ComputeUnitPriceMicroLamports > 0 {
		ix, err := computebudget.NewSetComputeUnitPriceInstruction(c.cfg.ComputeUnitPriceMicroLamports).ValidateAndBuild()
		if err != nil {
			return nil, fmt.Errorf("build compute unit price instruction: %w", err)
		}
		out = append(out, ix)
	}
	return out, nil
}

func (c *Client) simulate(ctx context.Context, tx *solana.Transaction) error {
	res, err := c.rpc.SimulateTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSimulation, err)
	}
	if res == nil || res.Value == nil || res.Value.Err == nil {
		return nil
	}

	logs := strings.Join(res.Value.Logs, "\n")
	if match := programLogError.FindStringSubmatch(logs); match != nil {
		return fmt.Errorf("%w: %s", ErrSimulation, match[1])
	}
	return fmt.Errorf("%w: %v", ErrSimulation, res.Value.Err)
}

func (c *Client) waitForConfirmation(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) error {
	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			result, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
			if err != nil {
				continue
			}
			if len(result.Value) > 0 && result.Value[0] != nil {
				status := result.Value[0]
				if status.Err != nil {
					return fmt.Errorf("%w: %v", ErrTransactionFailed, status.Err)
				}
				if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
					status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
					return nil
				}
			}

			height, err := c.rpc.GetBlockHeight(ctx, rpc.CommitmentFinalized)
			if err != nil {
				continue
			}
			if height > lastValidBlockHeight+blockhashExpiryGrace {
				return fmt.Errorf("%w: blockhash expired at height %d (signature %s)", ErrConfirmationTimeout, height, sig)
			}
		}
	}
}

// FetchLookupTables loads and parses the given address lookup tables into
// the shape Submit expects.
func (c *Client) FetchLookupTables(ctx context.Context, tables []solana.PublicKey) (map[solana.PublicKey]solana.PublicKeySlice, error) {
	out := make(map[solana.PublicKey]solana.PublicKeySlice, len(tables))
	for _, table := range tables {
		res, err := c.rpc.GetAccountInfo(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("fetch lookup table %s: %w", table, err)
		}
		if res == nil || res.Value == nil {
			return nil, fmt.Errorf("lookup table %s not found", table)
		}
		addresses, err := ParseLookupTableAddresses(res.Value.Data.GetBinary())
		if err != nil {
			return nil, fmt.Errorf("parse lookup table %s: %w", table, err)
		}
		out[table] = addresses
	}
	return out, nil
}

// lookupTableHeaderLen is the fixed metadata prefix of an address lookup
// table account; the address list follows as packed 32-byte keys.
const lookupTableHeaderLen = 56

// ParseLookupTableAddresses extracts the address list from a raw lookup
// table account.
func ParseLookupTableAddresses(data []byte) (solana.PublicKeySlice, error) {
	if len(data) < lookupTableHeaderLen {
		return nil, fmt.Errorf("lookup table data too short: %d bytes", len(data))
	}
	body := data[lookupTableHeaderLen:]
	if len(body)%solana.PublicKeyLength != 0 {
		return nil, fmt.Errorf("lookup table body is not a whole number of keys: %d bytes", len(body))
	}

	addresses := make(solana.PublicKeySlice, 0, len(body)/solana.PublicKeyLength)
	for i := 0; i < len(body); i += solana.PublicKeyLength {
		addresses = append(addresses, solana.PublicKeyFromBytes(body[i:i+solana.PublicKeyLength]))
	}
	return addresses, nil
}
